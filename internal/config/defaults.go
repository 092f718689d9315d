package config

import "github.com/haskel/aguacate/internal/imageio"

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			PIDFile:   "",
			MaxBodyMB: 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 20,
				Burst:             40,
				ImageCost:         4,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Training: TrainingConfig{
			Enabled:       true,
			Epochs:        2000,
			LearningRate:  0.5,
			AugmentCopies: 5,
			Jitter:        0.025,
			Seed:          0,
			ProgressEvery: 100,
			Hidden: HiddenConfig{
				Leaf:  12,
				Fruit: 10,
				Pest:  14,
			},
		},
		Image: ImageConfig{
			WorkingSize: 224,
			Resampler:   "lanczos3",
			MaxPixels:   imageio.DefaultMaxPixels,
		},
		History: HistoryConfig{
			Enabled:          true,
			DataDir:          "./data",
			FlushIntervalSec: 60,
			MaxRecords:       500,
		},
	}
}
