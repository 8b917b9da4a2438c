package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/niemtran/model"
	"go.jacobcolvin.com/niemtran/translate"
)

type translateOptions struct {
	output string
	x2j    bool
}

func newTranslateCmd() *cobra.Command {
	opts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [flags] modelFile instanceFile",
		Short: "Translate an XML instance document to JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "",
		"output file path (- or empty for stdout)")
	flags.BoolVar(&opts.x2j, "x2j", true,
		"translate XML to JSON (the default and only direction)")

	return cmd
}

func runTranslate(opts *translateOptions, modelFile, instanceFile string) error {
	if !opts.x2j {
		return exitf(exitWarnings, "XML to JSON is the only supported direction")
	}

	mf, err := os.Open(modelFile)
	if err != nil {
		return exitf(exitWarnings, "model: %v", err)
	}
	defer mf.Close()

	m, err := model.Load(mf)
	if err != nil {
		return exitf(exitWarnings, "model: %v", err)
	}

	inf, err := os.Open(instanceFile)
	if err != nil {
		return exitf(exitWarnings, "instance: %v", err)
	}
	defer inf.Close()

	res, err := translate.New(m).Translate(inf)
	if err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	out, err := json.MarshalIndent(res.Document(), "", "  ")
	if err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	out = append(out, '\n')

	if opts.output == "" || opts.output == "-" {
		_, err = os.Stdout.Write(out)
		if err != nil {
			return exitf(exitWarnings, "%v", err)
		}

		return nil
	}

	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return exitf(exitWarnings, "%v", err)
	}

	return nil
}
