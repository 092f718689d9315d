package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version is reported by --version and the server's info endpoint.
var Version = "0.1.0"

// Flags shared by every command.
var (
	cfgFile   string
	host      string
	port      int
	serverArg string
	jsonOut   bool
	verbose   bool
	user      string
	password  string
)

var rootCmd = &cobra.Command{
	Use:   "aguacate",
	Short: "Avocado leaf, fruit and pest classifier",
	Long: `Aguacate classifies avocado photos from their color histogram.
It recognizes leaf diseases, fruit ripeness and pest damage, using small
neural networks trained at startup and a heuristic scorer until they are
ready. It runs as an HTTP service or as a one-shot command.`,
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./aguacate.yaml, /etc/aguacate/config.yaml)")
	flags.StringVar(&host, "host", "localhost", "server host")
	flags.IntVarP(&port, "port", "p", 8080, "server port")
	flags.StringVar(&serverArg, "server", "", "server base URL for client commands, overrides --host and --port")
	flags.BoolVar(&jsonOut, "json", false, "output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&user, "user", "", "auth username")
	flags.StringVar(&password, "password", "", "auth password")
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion overrides the reported version, e.g. from build flags.
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// serverURL is the base URL client commands talk to.
func serverURL() string {
	if serverArg != "" {
		return strings.TrimRight(serverArg, "/")
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
