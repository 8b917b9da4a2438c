package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/niemtran/assemble"
	"go.jacobcolvin.com/niemtran/catalog"
	"go.jacobcolvin.com/niemtran/compile"
	"go.jacobcolvin.com/niemtran/fileuri"
	"go.jacobcolvin.com/niemtran/nsinfo"
	"go.jacobcolvin.com/niemtran/profile"
	"go.jacobcolvin.com/niemtran/xs"
)

// defaultModelName is the fallback model filename when no initial schema
// document provides a basename.
const defaultModelName = "NIEM.no"

// modelExt is the translation-model filename extension.
const modelExt = ".no"

type compileOptions struct {
	sep    string
	output string
	quiet  bool
}

func newCompileCmd() *cobra.Command {
	opts := &compileOptions{}
	profCfg := profile.NewConfig()

	cmd := &cobra.Command{
		Use:   "compile [flags] [catalogs] schemaOrNamespaces",
		Short: "Compile a schema set into a translation model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.OutOrStdout(), profCfg, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.sep, "separator", "s", ",",
		"character that splits one argument into a list of file names")
	flags.StringVarP(&opts.output, "output", "o", "",
		"output file path (default: first schema basename with "+modelExt+" extension)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false,
		"suppress progress output")

	profCfg.RegisterFlags(flags)

	return cmd
}

func runCompile(out io.Writer, profCfg *profile.Config, opts *compileOptions, args []string) error {
	catalogs, schemas, err := splitArgs(opts.sep, args)
	if err != nil {
		return exitf(exitBootstrap, "%v", err)
	}

	prof := profCfg.NewProfiler()
	if err := prof.Start(); err != nil {
		return exitf(exitBootstrap, "%v", err)
	}
	defer func() {
		if stopErr := prof.Stop(); stopErr != nil {
			fmt.Fprintf(out, "profiling: %v\n", stopErr)
		}
	}()

	fs := afero.NewOsFs()
	resolver := catalog.New(catalog.WithFs(fs))
	asm := assemble.New(resolver, assemble.WithFs(fs))

	if err := asm.Assemble(catalogs, schemas); err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	if !opts.quiet {
		for _, line := range asm.WarningMessages() {
			fmt.Fprintln(out, line)
		}
	}

	schema, err := xs.Build(fs, asm.AbsoluteDocuments())
	if err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	m := compile.Compile(schema, nsinfo.Extract(schema))

	data, err := m.Marshal()
	if err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	outfile := opts.output
	if outfile == "" {
		outfile = defaultOutputName(schemas)
	}

	if err := os.WriteFile(outfile, data, 0o644); err != nil {
		return exitf(exitWarnings, "writing model: %v", err)
	}

	if !opts.quiet {
		fmt.Fprintf(out, "wrote %s\n", outfile)
	}

	return nil
}

// defaultOutputName derives the model filename from the first initial
// schema document: its basename with the model extension.
func defaultOutputName(schemas []string) string {
	for _, tok := range schemas {
		if fileuri.HasScheme(tok) && !fileuri.IsFileURI(tok) {
			continue
		}

		base := filepath.Base(fileuri.ToPath(tok))
		base = strings.TrimSuffix(base, filepath.Ext(base))

		if base != "" && base != "." {
			return base + modelExt
		}
	}

	return defaultModelName
}
