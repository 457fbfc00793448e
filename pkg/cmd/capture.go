package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/io/pcap"
)

func init() {
	captureCmd.Flags().String("train", "", "pcap of normal traffic")
	captureCmd.Flags().String("query", "", "pcap to score")
	captureCmd.Flags().Int("window", 0, "packets per host profile, 0 for one profile per host")
	_ = captureCmd.MarkFlagRequired("train")
	_ = captureCmd.MarkFlagRequired("query")
	RootCmd.AddCommand(captureCmd)
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "score per-host protocol profiles built from pcap files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trainPath, _ := cmd.Flags().GetString("train")
		queryPath, _ := cmd.Flags().GetString("query")
		window, _ := cmd.Flags().GetInt("window")

		training, err := readCapture(trainPath, window)
		if err != nil {
			return err
		}
		queries, err := readCapture(queryPath, window)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Dimensions = len(pcap.FeatureNames())

		_, err = detect(cmd, cfg, training, queries)
		return err
	},
}

func readCapture(path string, window int) ([]features.Vector, error) {
	r, err := pcap.NewFileReader(path, pcap.WithWindow(window))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.Read()
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("profiles", len(data)).Msg("loaded capture")
	return data, nil
}
