package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/cli/tui"
)

var (
	refreshInterval time.Duration
	historyRows     int
	historyTask     string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch a running server in a terminal dashboard",
	Long: `Show model training state, host and process usage and the latest
predictions of a running server, refreshed periodically.

Keys: q quit, r refresh, p pause, t cycle the task filter, arrows scroll.

Examples:
  aguacate tui
  aguacate tui --refresh 500ms --task fruit
  aguacate tui --server http://10.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&refreshInterval, "refresh", time.Second, "refresh interval")
	tuiCmd.Flags().IntVar(&historyRows, "history", 20, "number of recent predictions to fetch")
	tuiCmd.Flags().StringVar(&historyTask, "task", "", "only show predictions for this task (leaf, fruit, pest)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	var task classify.Task
	if historyTask != "" {
		t, err := classify.ParseTask(historyTask)
		if err != nil {
			return err
		}
		task = t
	}

	return tui.Run(cmd.Context(), tui.Config{
		ServerURL:       serverURL(),
		RefreshInterval: refreshInterval,
		HistoryLimit:    historyRows,
		Task:            task,
		User:            user,
		Password:        password,
	})
}
