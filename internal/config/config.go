package config

import (
	"time"

	"github.com/haskel/aguacate/internal/classify"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Training TrainingConfig `yaml:"training"`
	Image    ImageConfig    `yaml:"image"`
	History  HistoryConfig  `yaml:"history"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	PIDFile   string          `yaml:"pid_file"`
	MaxBodyMB int             `yaml:"max_body_mb"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds the request rate limit. Image uploads take
// ImageCost tokens, every other request one.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	PerClient         bool    `yaml:"per_client"`
	ImageCost         int     `yaml:"image_cost"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TrainingConfig holds the parameters of the background network training.
type TrainingConfig struct {
	// Enabled starts training on service start. When false only the
	// heuristic scorer is used.
	Enabled bool `yaml:"enabled"`

	Epochs        int     `yaml:"epochs"`
	LearningRate  float64 `yaml:"learning_rate"`
	AugmentCopies int     `yaml:"augment_copies"`
	Jitter        float64 `yaml:"jitter"`

	// Seed for weight init and augmentation; 0 uses the clock.
	Seed          uint64 `yaml:"seed"`
	ProgressEvery int    `yaml:"progress_every"`

	Hidden HiddenConfig `yaml:"hidden"`
}

// HiddenConfig holds the hidden layer width per task.
type HiddenConfig struct {
	Leaf  int `yaml:"leaf"`
	Fruit int `yaml:"fruit"`
	Pest  int `yaml:"pest"`
}

// ImageConfig controls how input images are resampled before extraction.
// MaxPixels caps the width×height an image may declare in its header.
type ImageConfig struct {
	WorkingSize int    `yaml:"working_size"`
	Resampler   string `yaml:"resampler"`
	MaxPixels   int    `yaml:"max_pixels"`
}

// HistoryConfig controls the prediction history store.
type HistoryConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DataDir          string `yaml:"data_dir"`
	FlushIntervalSec int    `yaml:"flush_interval_sec"`
	MaxRecords       int    `yaml:"max_records"`
}

func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.History.FlushIntervalSec) * time.Second
}

// MaxBodyBytes returns the request body limit in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.Server.MaxBodyMB) << 20
}

// HiddenSizes maps each task to its configured hidden layer width.
func (t *TrainingConfig) HiddenSizes() map[classify.Task]int {
	return map[classify.Task]int{
		classify.TaskLeaf:  t.Hidden.Leaf,
		classify.TaskFruit: t.Hidden.Fruit,
		classify.TaskPest:  t.Hidden.Pest,
	}
}
