package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get model states and runtime metrics",
	Long:  `Query the running aguacate server for its model states and resource usage.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := NewClient().Status(cmd.Context())
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return fmt.Errorf("%w (pass --user and --password)", err)
		}
		return fmt.Errorf("get status from %s: %w", serverURL(), err)
	}

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	printStatus(cmd.OutOrStdout(), st)
	return nil
}

func printStatus(w io.Writer, st *server.StatusResponse) {
	fmt.Fprintf(w, "=== aguacate %s ===\n", st.Version)

	ready := "no"
	if st.Ready {
		ready = "yes"
	}
	fmt.Fprintf(w, "\nModels (ready: %s):\n", ready)
	for _, m := range st.Models {
		fmt.Fprintf(w, "  %-6s %-14s hidden=%d", m.Task, m.State, m.Hidden)
		if m.Epochs > 0 {
			fmt.Fprintf(w, " epochs=%d samples=%d error=%.3f time=%s", m.Epochs, m.Samples, m.Error, m.Duration)
		}
		if m.Failure != "" {
			fmt.Fprintf(w, " failure=%q", m.Failure)
		}
		fmt.Fprintln(w)
	}

	if rt := st.Runtime; rt != nil {
		fmt.Fprintf(w, "\nHost:\n")
		fmt.Fprintf(w, "  CPU: %.1f%%  load %.2f %.2f %.2f\n",
			rt.CPU.UsagePercent, rt.Load.One, rt.Load.Five, rt.Load.Fifteen)
		fmt.Fprintf(w, "  Memory: %.1f%% (%.1f of %.1f GB)\n",
			rt.Memory.UsagePercent,
			float64(rt.Memory.UsedBytes)/1024/1024/1024,
			float64(rt.Memory.TotalBytes)/1024/1024/1024,
		)

		if rt.Process.PID != 0 {
			fmt.Fprintf(w, "\nProcess:\n")
			fmt.Fprintf(w, "  PID: %d  RSS: %.1f MB  heap: %.1f MB  CPU: %.1f%%  goroutines: %d\n",
				rt.Process.PID,
				float64(rt.Process.RSSBytes)/1024/1024,
				float64(rt.Process.HeapBytes)/1024/1024,
				rt.Process.CPUPercent,
				rt.Process.Goroutines,
			)
		}

		if len(rt.Storage) > 0 {
			paths := make([]string, 0, len(rt.Storage))
			for path := range rt.Storage {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			fmt.Fprintf(w, "\nStorage:\n")
			for _, path := range paths {
				d := rt.Storage[path]
				fmt.Fprintf(w, "  %s: %.1f GB free / %.1f GB total, %.1f KB data\n", path,
					float64(d.FreeBytes)/1024/1024/1024,
					float64(d.TotalBytes)/1024/1024/1024,
					float64(d.DataBytes)/1024,
				)
			}
		}
	}

	if h := st.History; h != nil {
		fmt.Fprintf(w, "\nHistory: %d records\n", h.Records)
	}
}
