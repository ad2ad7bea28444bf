package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/org-reshape/modules/reshape/services"
	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type reshapeOptions struct {
	input            string
	output           string
	includeLastGroup bool
	parseDates       bool
}

type reshapeSummary struct {
	Status string        `json:"status"`
	Input  string        `json:"input"`
	Output string        `json:"output"`
	Stats  reshape.Stats `json:"stats"`
}

func newReshapeCmd(cc *cliContext) *cobra.Command {
	var opts reshapeOptions

	cmd := &cobra.Command{
		Use:   "reshape",
		Short: "Reshape a CSV/XLSX export into one row per person and organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyReshapeDefaults(cmd, cc, &opts)
			return runReshape(cmd.Context(), cc, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Input CSV or XLSX file (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output CSV file, - for stdout (default: "+services.ProcessedFilename+" next to input)")
	cmd.Flags().BoolVar(&opts.includeLastGroup, "include-last-group", false, "Also process the highest-numbered organization group")
	cmd.Flags().BoolVar(&opts.parseDates, "parse-dates", false, "Sort organization_start chronologically (yyyy.mm)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// applyReshapeDefaults fills flags the user did not set from configuration.
func applyReshapeDefaults(cmd *cobra.Command, cc *cliContext, opts *reshapeOptions) {
	if cc.conf == nil {
		return
	}
	if !cmd.Flags().Changed("include-last-group") {
		opts.includeLastGroup = cc.conf.Reshape.IncludeLastGroup
	}
	if !cmd.Flags().Changed("parse-dates") {
		opts.parseDates = cc.conf.Reshape.ParseDates
	}
}

func runReshape(ctx context.Context, cc *cliContext, opts reshapeOptions, stdout, stderr io.Writer) error {
	if strings.TrimSpace(opts.input) == "" {
		return withCode(exitUsage, gerrors.New("--input is required"))
	}
	if opts.output == "" {
		opts.output = filepath.Join(filepath.Dir(opts.input), services.ProcessedFilename)
	}

	res, err := processFile(ctx, cc, opts.input, services.Options{
		IncludeLastGroup: opts.includeLastGroup,
		ParseDates:       opts.parseDates,
	})
	if err != nil {
		return err
	}

	summaryOut := stdout
	if opts.output == "-" {
		if err := tabular.WriteCSV(stdout, res.Output); err != nil {
			return withCode(exitIO, gerrors.Wrap(err, "write csv"))
		}
		summaryOut = stderr
	} else if err := writeCSVFile(opts.output, res.Output); err != nil {
		return err
	}

	return writeJSONLine(summaryOut, reshapeSummary{
		Status: "reshaped",
		Input:  opts.input,
		Output: opts.output,
		Stats:  res.Stats,
	})
}

func processFile(ctx context.Context, cc *cliContext, path string, opts services.Options) (*services.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, withCode(exitUsage, gerrors.Wrap(err, "open input"))
	}
	defer func() { _ = f.Close() }()

	svc := services.NewReshapeService(opts, cc.logger())
	res, err := svc.Process(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func writeCSVFile(path string, t *tabular.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return withCode(exitIO, gerrors.Wrapf(err, "mkdir %s", dir))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return withCode(exitIO, err)
	}
	w := bufio.NewWriter(f)
	if err := tabular.WriteCSV(w, t); err != nil {
		_ = f.Close()
		return withCode(exitIO, gerrors.Wrapf(err, "write %s", path))
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return withCode(exitIO, gerrors.Wrapf(err, "write %s", path))
	}
	if err := f.Close(); err != nil {
		return withCode(exitIO, gerrors.Wrapf(err, "close %s", path))
	}
	return nil
}
