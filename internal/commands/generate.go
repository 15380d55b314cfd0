// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/engine"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/prompts"
	"github.com/dacolabs/avrobridge/internal/registry"
	"github.com/dacolabs/avrobridge/internal/session"
)

type generateOptions struct {
	schema      string
	model       string
	definitions string
	data        string
	name        string
	namespace   string
	format      string
	output      string
	minify      bool
	samples     bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a modeling schema as an Avro registry script",
		Long: fmt.Sprintf(`Render a single entity schema or a whole model bundle as Avro registry scripts.

Entity schemas may be JSON or YAML and may reference other files with $ref.
A model bundle is a JSON document with containers, entities and shared definitions.

Available script types: %s`, strings.Join(registry.Available(), ", ")),
		Example: `  # Render one entity for Confluent
  avrobridge generate --schema user.yaml --namespace shop

  # Render a model bundle for Pulsar into a file
  avrobridge generate --model model.json --format pulsarSchemaRegistry -o model.txt`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.schema, "schema", "", "Entity schema file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model bundle file (JSON)")
	cmd.Flags().StringVar(&opts.definitions, "definitions", "", "Definitions file used by the entity schema")
	cmd.Flags().StringVar(&opts.data, "data", "", "Sample data file of the entity")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Entity name (default is the schema file name)")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "Namespace of the entity")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("Script type (%s)", strings.Join(registry.Available(), ", ")))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "Minify the script")
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "Include sample data")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	s, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}
	if (opts.schema == "") == (opts.model == "") {
		return errors.New("exactly one of --schema and --model is required")
	}
	if opts.format != "" {
		if _, err := registry.Get(opts.format); err != nil {
			return err
		}
	}

	scriptOpts := engine.ScriptOptions{ScriptType: opts.format, Minify: opts.minify, IncludeSamples: opts.samples}

	var out *engine.Output
	if opts.model != "" {
		in, err := readModel(opts.model)
		if err != nil {
			return err
		}
		in.Options = mergeScriptOptions(in.Options, scriptOpts)
		out, err = s.Engine.GenerateModelScript(in)
		if err != nil {
			return err
		}
	} else {
		in, err := entityInput(opts)
		if err != nil {
			return err
		}
		in.Options = scriptOpts
		out, err = s.Engine.GenerateScript(in)
		if err != nil {
			return err
		}
	}

	return writeGenerated(cmd, opts.output, out)
}

func readModel(path string) (engine.ModelInput, error) {
	var in engine.ModelInput
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parsing model %s: %w", path, err)
	}
	return in, nil
}

func entityInput(opts *generateOptions) (engine.EntityInput, error) {
	in := engine.EntityInput{
		ContainerData: map[string]any{},
		EntityData:    map[string]any{},
	}

	var err error
	if in.JSONSchema, err = loadDocument(opts.schema); err != nil {
		return in, err
	}
	if opts.definitions != "" {
		if in.InternalDefinitions, err = loadDocument(opts.definitions); err != nil {
			return in, err
		}
	}
	if opts.data != "" {
		if in.JSONData, err = loadDocument(opts.data); err != nil {
			return in, err
		}
	}

	name := opts.name
	if name == "" {
		base := filepath.Base(opts.schema)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	in.EntityData["name"] = name
	if opts.namespace != "" {
		in.ContainerData["name"] = opts.namespace
	}
	return in, nil
}

// loadDocument reads a JSON or YAML object and inlines the files it
// references.
func loadDocument(path string) (engine.Document, error) {
	loader := jschema.NewLoader(os.DirFS(filepath.Dir(path)))
	obj, err := loader.LoadObject(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := loader.ResolveRefs(obj, "."); err != nil {
		return nil, fmt.Errorf("resolving references of %s: %w", path, err)
	}
	return engine.Document(jschema.MustString(obj)), nil
}

// mergeScriptOptions lets flags override the options of a model bundle.
func mergeScriptOptions(base, flags engine.ScriptOptions) engine.ScriptOptions {
	if flags.ScriptType != "" {
		base.ScriptType = flags.ScriptType
	}
	base.Minify = base.Minify || flags.Minify
	base.IncludeSamples = base.IncludeSamples || flags.IncludeSamples
	return base
}

func writeGenerated(cmd *cobra.Command, output string, out *engine.Output) error {
	if output == "" {
		w := cmd.OutOrStdout()
		if _, err := fmt.Fprintln(w, out.Script); err != nil {
			return err
		}
		if out.Samples != "" {
			_, err := fmt.Fprintf(w, "\n%s\n", out.Samples)
			return err
		}
		return nil
	}

	if err := os.WriteFile(output, []byte(out.Script), 0o600); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	fields := []prompts.ResultField{{Label: "Script", Value: output}}
	if out.Samples != "" {
		samplesPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".samples.json"
		if err := os.WriteFile(samplesPath, []byte(out.Samples), 0o600); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
		fields = append(fields, prompts.ResultField{Label: "Samples", Value: samplesPath})
	}
	prompts.PrintResult(cmd.OutOrStdout(), fields, "Generation completed")
	return nil
}
