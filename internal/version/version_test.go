// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	tests := []struct {
		name string
		in   Build
		info *debug.BuildInfo
		want Build
	}{
		{
			name: "defaults filled from build info",
			in:   Build{Version: "dev", Commit: "none", Date: "unknown"},
			info: info,
			want: Build{Version: "v0.3.1", Commit: "0123456", Date: "2026-10-01T12:00:00Z"},
		},
		{
			name: "ldflags win",
			in:   Build{Version: "1.0.0", Commit: "abcdef0", Date: "2026-01-01"},
			info: info,
			want: Build{Version: "1.0.0", Commit: "abcdef0", Date: "2026-01-01"},
		},
		{
			name: "devel build keeps dev",
			in:   Build{Version: "dev", Commit: "none", Date: "unknown"},
			info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Build{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in, tt.info))
		})
	}
}

func TestInfo(t *testing.T) {
	assert.Contains(t, Info(), "avrobridge version "+Short())
}
