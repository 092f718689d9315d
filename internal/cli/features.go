package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/config"
)

var featuresCmd = &cobra.Command{
	Use:   "features <image>",
	Short: "Print the color histogram of an image",
	Long: `Print the 7-bucket color histogram that the classifiers consume.
Values are fractions of the sampled pixels.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	v, err := loadFeatures(cfg, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if jsonOut {
		data, err := json.Marshal(v.Map())
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	printVector(w, v)
	fmt.Fprintf(w, "  %-13s %.4f\n", "greenness", v.Greenness())
	return nil
}
