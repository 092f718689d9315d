package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/config"
)

var (
	pidFile  string
	stopWait time.Duration
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running aguacate server",
	Long: `Stop the aguacate server by sending SIGTERM to the process in the PID
file. The server stops training, saves pending history and exits.
With --wait the command blocks until the PID file is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, pid, err := signalServer(syscall.SIGTERM)
		if err != nil {
			return err
		}
		if stopWait > 0 {
			if err := waitRemoved(path, stopWait); err != nil {
				return err
			}
		}
		return printSignal(cmd.OutOrStdout(), "stopped", pid)
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the aguacate server credentials",
	Long: `Send SIGHUP to the server in the PID file. The server re-reads its
config file and applies the auth settings without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pid, err := signalServer(syscall.SIGHUP)
		if err != nil {
			return err
		}
		return printSignal(cmd.OutOrStdout(), "reload_requested", pid)
	},
}

func init() {
	for _, c := range []*cobra.Command{stopCmd, reloadCmd} {
		c.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (overrides config)")
		rootCmd.AddCommand(c)
	}
	stopCmd.Flags().DurationVar(&stopWait, "wait", 0, "wait up to this long for the server to exit")
}

func printSignal(w io.Writer, status string, pid int) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(map[string]any{"status": status, "pid": pid})
	}
	_, err := fmt.Fprintf(w, "%s: pid %d\n", strings.ReplaceAll(status, "_", " "), pid)
	return err
}

// resolvePIDFile returns the --pid-file flag or the configured path.
func resolvePIDFile() (string, error) {
	if pidFile != "" {
		return pidFile, nil
	}

	cfg := config.LoadOrDefault(cfgFile)
	if cfg.Server.PIDFile == "" {
		return "", errors.New("no PID file: pass --pid-file or set server.pid_file")
	}
	return cfg.Server.PIDFile, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("PID file %s not found, is the server running?", path)
	}
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID %q in %s", raw, path)
	}
	return pid, nil
}

// signalServer sends sig to the process named in the PID file.
func signalServer(sig syscall.Signal) (path string, pid int, err error) {
	if path, err = resolvePIDFile(); err != nil {
		return "", 0, err
	}
	if pid, err = readPID(path); err != nil {
		return "", 0, err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return "", 0, fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return "", 0, fmt.Errorf("signal %d: %w", pid, err)
	}
	return path, pid, nil
}

// waitRemoved polls until path disappears; the server removes its PID file
// on a clean exit.
func waitRemoved(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server still running after %s", timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
