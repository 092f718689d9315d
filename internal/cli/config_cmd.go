package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haskel/aguacate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the effective configuration: the config file (given with
--config, or aguacate.yaml, or /etc/aguacate/config.yaml) over the
defaults, with AGUACATE_* environment overrides applied.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var (
	validateOnly bool
	showDefaults bool
)

func init() {
	configCmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate config, don't print")
	configCmd.Flags().BoolVar(&showDefaults, "defaults", false, "print the built-in defaults, ignoring files and environment")
	rootCmd.AddCommand(configCmd)
}

// configReport is the --json form of a validation result.
type configReport struct {
	Valid  bool     `json:"valid"`
	Source string   `json:"source,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	if showDefaults {
		return dumpConfig(w, config.Default(), "defaults")
	}

	cfg, source, err := config.Resolve(cfgFile)
	if source == "" {
		source = "defaults"
	}

	if err != nil {
		// errors.Join puts one problem per line.
		problems := strings.Split(err.Error(), "\n")
		if jsonOut {
			_ = json.NewEncoder(w).Encode(configReport{Source: source, Errors: problems})
		} else {
			fmt.Fprintf(w, "Configuration invalid (%s):\n", source)
			for _, p := range problems {
				fmt.Fprintf(w, "  - %s\n", p)
			}
		}
		return err
	}

	if !validateOnly {
		return dumpConfig(w, cfg, source)
	}

	if jsonOut {
		return json.NewEncoder(w).Encode(configReport{Valid: true, Source: source})
	}
	fmt.Fprintf(w, "Configuration is valid (%s)\n", source)
	return nil
}

func dumpConfig(w io.Writer, cfg *config.Config, source string) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "# source: %s\n%s", source, data)
	return err
}
