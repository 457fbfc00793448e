package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/io/csv"
)

func init() {
	scoreCmd.Flags().String("train", "", "csv of normal training profiles")
	scoreCmd.Flags().String("query", "", "csv of profiles to score")
	scoreCmd.Flags().String("output", "", "write results as csv to this file")
	_ = scoreCmd.MarkFlagRequired("train")
	_ = scoreCmd.MarkFlagRequired("query")
	RootCmd.AddCommand(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "score syscall frequency profiles read from csv files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trainPath, _ := cmd.Flags().GetString("train")
		queryPath, _ := cmd.Flags().GetString("query")
		outputPath, _ := cmd.Flags().GetString("output")

		training, err := readCSV(trainPath)
		if err != nil {
			return err
		}
		queries, err := readCSV(queryPath)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = withDimensions(cfg, training)

		scores, err := detect(cmd, cfg, training, queries)
		if err != nil {
			return err
		}

		if outputPath == "" {
			return nil
		}

		w, err := csv.NewWriter(outputPath)
		if err != nil {
			return err
		}
		if err := w.WriteAll(scores); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	},
}

func readCSV(path string) ([]features.Vector, error) {
	r, err := csv.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.Read()
	if err != nil {
		return nil, err
	}

	if skipped := r.Skipped(); skipped > 0 {
		logger.Warn().Str("path", path).Int("skipped", skipped).Msg("skipped malformed rows")
	}
	logger.Debug().Str("path", path).Int("rows", len(data)).Strs("features", r.FeatureNames()).Msg("loaded profiles")

	return data, nil
}
