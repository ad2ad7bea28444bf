package modules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-reshape/modules/reshape/presentation/controllers"
	"github.com/iota-uz/org-reshape/modules/reshape/services"
	"github.com/iota-uz/org-reshape/pkg/application"
	"github.com/iota-uz/org-reshape/pkg/configuration"
	"github.com/iota-uz/org-reshape/pkg/metrics"
)

// Controllers returns every HTTP controller enabled by conf.
func Controllers(conf *configuration.Configuration, logger *logrus.Logger) []application.Controller {
	svc := services.NewReshapeService(services.Options{
		IncludeLastGroup: conf.Reshape.IncludeLastGroup,
		ParseDates:       conf.Reshape.ParseDates,
	}, logger)

	out := []application.Controller{
		controllers.NewHealthController(),
		controllers.NewReshapeController(svc, logger, conf.MaxUploadSize, conf.Reshape.PreviewRows),
	}
	if conf.Prometheus.Enabled {
		out = append(out, metrics.NewPrometheusController(conf.Prometheus.Path, prometheus.DefaultGatherer))
	}
	return out
}
