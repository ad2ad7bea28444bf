package services

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-reshape/pkg/metrics"
	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

const ProcessedFilename = "processed_organizations.csv"

type Options struct {
	IncludeLastGroup bool
	ParseDates       bool
}

// Result is what one upload turns into. Input is kept for previews.
type Result struct {
	Input  *tabular.Table
	Output *tabular.Table
	Stats  reshape.Stats
}

type ReshapeService struct {
	opts   Options
	logger *logrus.Logger
}

func NewReshapeService(opts Options, logger *logrus.Logger) *ReshapeService {
	return &ReshapeService{opts: opts, logger: logger}
}

// Process reads the upload named name and reshapes it. It runs to completion
// once started; a context that is already done rejects the call.
func (s *ReshapeService) Process(ctx context.Context, name string, r io.Reader) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.logger.WithField("file", name)

	in, err := tabular.Read(name, r)
	if err != nil {
		metrics.ObserveReshape(start, reshape.Stats{}, err)
		log.WithError(err).Warn("failed to read upload")
		return nil, err
	}

	out, stats, err := reshape.ReshapeWithStats(in,
		reshape.WithIncludeLastGroup(s.opts.IncludeLastGroup),
		reshape.WithParsedDates(s.opts.ParseDates),
	)
	metrics.ObserveReshape(start, stats, err)
	if err != nil {
		log.WithError(err).Warn("failed to reshape upload")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"rows":    stats.Rows,
		"groups":  stats.Groups,
		"dropped": stats.Dropped,
		"records": stats.Records,
	}).Info("reshaped upload")
	return &Result{Input: in, Output: out, Stats: stats}, nil
}
