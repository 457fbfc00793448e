package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/detectors/iforest"
	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/report"
)

// detect trains on training, scores queries and prints the result and
// evaluation tables to the command output.
func detect(cmd *cobra.Command, cfg detectors.Config, training, queries []features.Vector) ([]detectors.Score, error) {
	opts := []iforest.Option{
		iforest.WithConfig(cfg),
		iforest.WithLogger(logger),
	}

	var registry *prometheus.Registry
	metricsFile := viper.GetString("metrics-file")
	if metricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, iforest.WithRegisterer(registry))
	}

	detector := iforest.New(opts...)
	if err := detector.Fit(training); err != nil {
		return nil, err
	}

	scores, err := detector.Predict(queries)
	if err != nil {
		return nil, err
	}

	summary := report.Evaluate(scores)
	logger.Info().
		Int("scored", len(scores)).
		Int("flagged", summary.Flagged).
		Float64("threshold", detector.Threshold()).
		Msg("scoring complete")

	printer := report.NewPrinter(cmd.OutOrStdout())
	printer.Results(scores)
	printer.Metrics(summary)

	if registry != nil {
		if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
			return nil, errors.Wrapf(err, "write metrics %s", metricsFile)
		}
		logger.Debug().Str("path", metricsFile).Msg("metrics written")
	}

	return scores, nil
}

// withDimensions sets cfg.Dimensions to the width of data.
func withDimensions(cfg detectors.Config, data []features.Vector) detectors.Config {
	if width := features.Width(data); width > 0 {
		cfg.Dimensions = width
	}
	return cfg
}
