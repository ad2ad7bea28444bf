package viewmodels

import (
	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type TablePreview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

type ReshapePreview struct {
	File   string        `json:"file"`
	Stats  reshape.Stats `json:"stats"`
	Input  TablePreview  `json:"input_preview"`
	Output TablePreview  `json:"output_preview"`
}

func NewTablePreview(t *tabular.Table, rows int) TablePreview {
	head := t.Head(rows)
	out := TablePreview{
		Columns:   head.Columns,
		Rows:      head.Rows,
		TotalRows: t.NumRows(),
	}
	if out.Rows == nil {
		out.Rows = [][]string{}
	}
	return out
}
