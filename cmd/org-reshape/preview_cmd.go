package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	gerrors "github.com/go-faster/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/iota-uz/org-reshape/modules/reshape/services"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

const previewCellWidth = 32

type previewOptions struct {
	input     string
	rows      int
	processed bool
}

func newPreviewCmd(cc *cliContext) *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the first rows of an export, or of its reshaped form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("rows") && cc.conf != nil {
				opts.rows = cc.conf.Reshape.PreviewRows
			}
			var svcOpts services.Options
			if cc.conf != nil {
				svcOpts = services.Options{
					IncludeLastGroup: cc.conf.Reshape.IncludeLastGroup,
					ParseDates:       cc.conf.Reshape.ParseDates,
				}
			}
			return runPreview(cmd.Context(), cc, opts, svcOpts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Input CSV or XLSX file (required)")
	cmd.Flags().IntVar(&opts.rows, "rows", 5, "Number of rows to show")
	cmd.Flags().BoolVar(&opts.processed, "processed", false, "Preview the reshaped output instead of the input")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPreview(ctx context.Context, cc *cliContext, opts previewOptions, svcOpts services.Options, out io.Writer) error {
	if opts.rows < 0 {
		return withCode(exitUsage, gerrors.New("--rows must be non-negative"))
	}
	res, err := processFile(ctx, cc, opts.input, svcOpts)
	if err != nil {
		return err
	}
	t := res.Input
	if opts.processed {
		t = res.Output
	}
	_, err = out.Write(renderTable(t, opts.rows))
	return err
}

// renderTable draws the first n rows of t with long cells wrapped.
func renderTable(t *tabular.Table, n int) []byte {
	head := t.Head(n)

	var buf bytes.Buffer
	w := table.NewWriter()
	w.SetOutputMirror(&buf)

	header := make(table.Row, len(head.Columns))
	configs := make([]table.ColumnConfig, len(head.Columns))
	for i, c := range head.Columns {
		header[i] = c
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: previewCellWidth}
	}
	w.AppendHeader(header)
	for _, r := range head.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		w.AppendRow(row)
	}
	w.SetColumnConfigs(configs)
	w.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", head.NumRows(), t.NumRows())})

	style := table.StyleLight
	style.Options.DrawBorder = false
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	w.SetStyle(style)
	w.Render()
	return buf.Bytes()
}
