package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/niemtran/assemble"
	"go.jacobcolvin.com/niemtran/catalog"
	"go.jacobcolvin.com/niemtran/log"
	"go.jacobcolvin.com/niemtran/nsinfo"
	"go.jacobcolvin.com/niemtran/profile"
	"go.jacobcolvin.com/niemtran/xs"
)

// checkOptions holds the check command's flag values.
type checkOptions struct {
	sep      string
	ignore   bool
	noDomain bool
	verbose  bool
	quiet    bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	profCfg := profile.NewConfig()

	cmd := &cobra.Command{
		Use:   "check [flags] [catalogs] schemaOrNamespaces",
		Short: "Assemble a schema set and report warnings",
		Long: `check runs the initialization and assembly phases over a schema set,
reports every ambiguity found while combining the schema documents, then
attempts schema construction.

With one positional argument it is the schema-or-namespace list; with two or
more, the first is the catalog-file list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), profCfg, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.sep, "separator", "s", ",",
		"character that splits one argument into a list of file names")
	flags.BoolVarP(&opts.ignore, "ignore", "i", false,
		"exit successfully even when warnings were found")
	flags.BoolVarP(&opts.noDomain, "no-domain", "n", false,
		"suppress domain-specific warnings")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"print all sections and the resolution trace")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false,
		"print only warnings and the final status")

	profCfg.RegisterFlags(flags)

	return cmd
}

func runCheck(out io.Writer, profCfg *profile.Config, opts *checkOptions, args []string) error {
	if opts.verbose && opts.quiet {
		return exitf(exitWarnings, "-v and -q are mutually exclusive")
	}

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

	// The resolution trace is captured in memory and replayed under -v.
	rec := log.NewRecorder()
	tracer := slog.New(log.NewHandler(rec, slog.LevelDebug, log.FormatLogfmt))

	fs := afero.NewOsFs()
	resolver := catalog.New(catalog.WithFs(fs), catalog.WithLogger(tracer))
	asm := assemble.New(resolver, assemble.WithFs(fs), assemble.WithLogger(tracer))

	asmErr := asm.Assemble(catalogs, schemas)

	printSection(out, "Initialization:", asm.InitMessages(), opts.verbose, opts.quiet && asm.InitOK())

	if asmErr != nil {
		fmt.Fprintln(out, "Schema construction: FAILED")

		return exitf(exitWarnings, "%v", asmErr)
	}

	assemblyLines := asm.WarningMessages()
	if opts.verbose {
		assemblyLines = asm.LogMessages()
	}

	printSection(out, "Assembly:", assemblyLines, opts.verbose, false)

	warned := asm.HasWarnings() || !asm.InitOK()

	schema, buildErr := xs.Build(fs, asm.AbsoluteDocuments())
	if buildErr != nil {
		fmt.Fprintf(out, "%v\n", buildErr)
		fmt.Fprintln(out, "Schema construction: FAILED")

		return exitf(exitWarnings, "")
	}

	info := nsinfo.Extract(schema)

	printSection(out, "Construction:", info.GeneralWarnings, opts.verbose, false)

	if len(info.GeneralWarnings) > 0 {
		warned = true
	}

	if !opts.noDomain {
		printSection(out, "Domain:", info.DomainWarnings, opts.verbose, false)

		if len(info.DomainWarnings) > 0 {
			warned = true
		}
	}

	if opts.verbose {
		printSection(out, "Trace:", rec.Lines(), true, false)
	}

	fmt.Fprintln(out, "Schema construction: OK")

	if warned && !opts.ignore {
		return exitf(exitWarnings, "")
	}

	return nil
}

// printSection prints a titled block of lines. Empty sections collapse
// unless verbose; suppressed sections print nothing at all.
func printSection(out io.Writer, title string, lines []string, verbose, suppress bool) {
	if suppress {
		return
	}

	if len(lines) == 0 && !verbose {
		return
	}

	fmt.Fprintln(out, title)

	for _, line := range lines {
		fmt.Fprintf(out, "  %s\n", line)
	}
}
