package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/features/synthetic"
	"github.com/hed1ad/syscallguard/pkg/random"
)

func init() {
	demoCmd.Flags().Int("train-size", 20, "number of normal training processes")
	demoCmd.Flags().Int("test-size", 10, "number of test processes")
	demoCmd.Flags().Int("anomalous", 4, "number of anomalous test processes")
	RootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "train on synthetic normal processes and score a mixed test set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trainSize, err := cmd.Flags().GetInt("train-size")
		if err != nil {
			return err
		}
		testSize, err := cmd.Flags().GetInt("test-size")
		if err != nil {
			return err
		}
		anomalous, err := cmd.Flags().GetInt("anomalous")
		if err != nil {
			return err
		}
		if anomalous > testSize {
			anomalous = testSize
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Dimensions = features.NumSyscalls

		gen := synthetic.New(random.New(cfg.Seed))

		training := gen.TrainingSet("normal_process", trainSize)
		queries := gen.TestSet("test_process", testSize, anomalous)

		logger.Info().
			Int("training", len(training)).
			Int("queries", len(queries)).
			Int("anomalous", anomalous).
			Int64("seed", cfg.Seed).
			Msg("generated synthetic syscall profiles")

		_, err = detect(cmd, cfg, training, queries)
		return err
	},
}
