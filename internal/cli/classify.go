package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/config"
	"github.com/haskel/aguacate/internal/engine"
	"github.com/haskel/aguacate/internal/features"
	"github.com/haskel/aguacate/internal/imageio"
	"github.com/haskel/aguacate/internal/logger"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <task> <image>",
	Short: "Classify an avocado photo",
	Long: `Classify a leaf, fruit or pest photo.

By default the image is scored locally by the heuristic scorer. With
--train the network of every task is trained first, which takes a few
seconds. With --remote the image is sent to a running server.

Examples:
  aguacate classify leaf leaf.jpg
  aguacate classify fruit hass.png --train
  aguacate classify pest trap.jpg --remote --host 10.0.0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runClassify,
}

var (
	classifyTrain   bool
	classifyRemote  bool
	classifyTimeout time.Duration
)

func init() {
	classifyCmd.Flags().BoolVar(&classifyTrain, "train", false, "train the networks before classifying")
	classifyCmd.Flags().BoolVar(&classifyRemote, "remote", false, "send the image to a running server")
	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", 2*time.Minute, "training timeout with --train")
	rootCmd.AddCommand(classifyCmd)
}

// classifyOutput is the JSON shape printed by the classify command.
type classifyOutput struct {
	classify.Result
	Features features.Vector `json:"features"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	task, err := classify.ParseTask(args[0])
	if err != nil {
		return err
	}
	imagePath := args[1]

	ctx, cancel := context.WithTimeout(cmd.Context(), classifyTimeout)
	defer cancel()

	if classifyRemote {
		return classifyRemoteImage(ctx, NewClient(), task, imagePath, cmd.OutOrStdout())
	}

	cfg := config.LoadOrDefault(cfgFile)
	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if !verbose {
		log = logger.Discard()
	}

	v, err := loadFeatures(cfg, imagePath)
	if err != nil {
		return err
	}

	result, err := classifyLocal(ctx, engineConfig(cfg), task, v, classifyTrain, log)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result, v)
}

// classifyLocal scores a vector in-process. When train is set it waits
// for the networks, falling back to the heuristic if training fails.
func classifyLocal(ctx context.Context, cfg engine.Config, task classify.Task, v features.Vector, train bool, log *slog.Logger) (classify.Result, error) {
	eng := engine.New(cfg, log)
	defer eng.Stop()

	if train {
		eng.Initialize(ctx)
		if err := eng.Wait(ctx); err != nil {
			return classify.Result{}, fmt.Errorf("training did not finish: %w", err)
		}
		if state := eng.TaskState(task); state != engine.StateReady {
			log.Warn("network unavailable, using heuristic", "task", task, "state", state)
		}
	}

	return eng.Classify(task, v)
}

func classifyRemoteImage(ctx context.Context, client *Client, task classify.Task, imagePath string, w io.Writer) error {
	resp, err := client.ClassifyImage(ctx, task, imagePath)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return fmt.Errorf("%w (pass --user and --password)", err)
		}
		return fmt.Errorf("classify %s: %w", imagePath, err)
	}

	var v features.Vector
	if resp.Features != nil {
		v = *resp.Features
	}
	return printResult(w, resp.Result, v)
}

// loadFeatures decodes, resamples and histograms an image file the same
// way the server does.
func loadFeatures(cfg *config.Config, path string) (features.Vector, error) {
	method, err := imageio.ParseResampler(cfg.Image.Resampler)
	if err != nil {
		return features.Vector{}, err
	}

	img, err := imageio.Load(path, cfg.Image.WorkingSize, method, cfg.Image.MaxPixels)
	if err != nil {
		return features.Vector{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	pix, width, height := imageio.Pixels(img)
	return features.Extract(pix, width, height)
}

func printResult(w io.Writer, result classify.Result, v features.Vector) error {
	if jsonOut {
		data, err := json.MarshalIndent(classifyOutput{Result: result, Features: v}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Task:       %s\n", result.Task)
	fmt.Fprintf(w, "Result:     %s (%s)\n", result.Label, result.Class)
	fmt.Fprintf(w, "Confidence: %.1f%%\n", result.Confidence*100)
	fmt.Fprintf(w, "Source:     %s\n", result.Source)

	if verbose {
		scores := make([]classify.ClassScore, len(result.Distribution))
		copy(scores, result.Distribution)
		sort.SliceStable(scores, func(i, j int) bool {
			return scores[i].Probability > scores[j].Probability
		})

		fmt.Fprintf(w, "\nDistribution:\n")
		for _, s := range scores {
			fmt.Fprintf(w, "  %-16s %5.1f%%\n", s.Class, s.Probability*100)
		}

		fmt.Fprintf(w, "\nFeatures:\n")
		printVector(w, v)
	}

	return nil
}

func printVector(w io.Writer, v features.Vector) {
	for _, b := range features.Buckets() {
		fmt.Fprintf(w, "  %-13s %.4f\n", b, v.At(b))
	}
}
