package corpus

import "github.com/haskel/aguacate/internal/features"

// Hand-authored color profiles, five per class. Bucket order:
// dark green, medium green, light green, brown/black, yellow, red, gray.
var seeds = map[string][]features.Vector{
	// leaf
	"healthy": {
		{0.35, 0.40, 0.15, 0.02, 0.02, 0.01, 0.05},
		{0.40, 0.35, 0.18, 0.01, 0.02, 0.00, 0.04},
		{0.30, 0.45, 0.20, 0.01, 0.01, 0.00, 0.03},
		{0.38, 0.38, 0.17, 0.02, 0.02, 0.01, 0.02},
		{0.32, 0.42, 0.19, 0.02, 0.02, 0.00, 0.03},
	},
	"anthracnose": {
		{0.10, 0.15, 0.12, 0.45, 0.08, 0.05, 0.05},
		{0.15, 0.18, 0.14, 0.38, 0.06, 0.04, 0.05},
		{0.08, 0.12, 0.10, 0.52, 0.08, 0.05, 0.05},
		{0.12, 0.16, 0.13, 0.42, 0.07, 0.04, 0.06},
		{0.14, 0.17, 0.11, 0.40, 0.09, 0.04, 0.05},
	},
	"powdery_mildew": {
		{0.12, 0.20, 0.18, 0.15, 0.28, 0.02, 0.05},
		{0.15, 0.22, 0.20, 0.12, 0.25, 0.02, 0.04},
		{0.10, 0.18, 0.16, 0.18, 0.32, 0.02, 0.04},
		{0.14, 0.21, 0.19, 0.14, 0.26, 0.02, 0.04},
		{0.13, 0.19, 0.17, 0.16, 0.29, 0.02, 0.04},
	},
	"leaf_spot": {
		{0.15, 0.22, 0.18, 0.28, 0.12, 0.02, 0.03},
		{0.18, 0.25, 0.17, 0.25, 0.10, 0.02, 0.03},
		{0.12, 0.20, 0.19, 0.30, 0.14, 0.02, 0.03},
		{0.16, 0.23, 0.18, 0.27, 0.11, 0.02, 0.03},
		{0.14, 0.21, 0.18, 0.29, 0.13, 0.02, 0.03},
	},
	"cercospora": {
		{0.08, 0.15, 0.20, 0.32, 0.18, 0.02, 0.05},
		{0.10, 0.18, 0.22, 0.28, 0.16, 0.02, 0.04},
		{0.06, 0.12, 0.18, 0.38, 0.20, 0.02, 0.04},
		{0.09, 0.16, 0.20, 0.30, 0.18, 0.02, 0.05},
		{0.07, 0.14, 0.19, 0.35, 0.19, 0.02, 0.04},
	},
	"sunburn": {
		{0.05, 0.12, 0.25, 0.30, 0.22, 0.03, 0.03},
		{0.07, 0.15, 0.28, 0.26, 0.18, 0.03, 0.03},
		{0.04, 0.10, 0.22, 0.35, 0.24, 0.02, 0.03},
		{0.06, 0.13, 0.26, 0.28, 0.20, 0.03, 0.04},
		{0.05, 0.11, 0.24, 0.32, 0.21, 0.03, 0.04},
	},

	// fruit
	"unripe": {
		{0.55, 0.30, 0.08, 0.02, 0.02, 0.01, 0.02},
		{0.58, 0.28, 0.08, 0.02, 0.02, 0.00, 0.02},
		{0.52, 0.32, 0.09, 0.02, 0.02, 0.01, 0.02},
		{0.56, 0.29, 0.08, 0.02, 0.03, 0.00, 0.02},
		{0.54, 0.31, 0.08, 0.02, 0.02, 0.01, 0.02},
	},
	"almost_ripe": {
		{0.25, 0.45, 0.20, 0.03, 0.04, 0.01, 0.02},
		{0.28, 0.42, 0.20, 0.03, 0.04, 0.01, 0.02},
		{0.22, 0.48, 0.20, 0.03, 0.04, 0.01, 0.02},
		{0.26, 0.44, 0.20, 0.03, 0.04, 0.01, 0.02},
		{0.24, 0.46, 0.20, 0.03, 0.04, 0.01, 0.02},
	},
	"ripe": {
		{0.08, 0.25, 0.40, 0.10, 0.14, 0.01, 0.02},
		{0.10, 0.28, 0.38, 0.08, 0.13, 0.01, 0.02},
		{0.06, 0.22, 0.42, 0.12, 0.15, 0.01, 0.02},
		{0.09, 0.26, 0.40, 0.09, 0.13, 0.01, 0.02},
		{0.07, 0.24, 0.41, 0.11, 0.14, 0.01, 0.02},
	},
	"overripe": {
		{0.02, 0.08, 0.15, 0.55, 0.12, 0.05, 0.03},
		{0.03, 0.10, 0.18, 0.50, 0.10, 0.06, 0.03},
		{0.01, 0.06, 0.12, 0.60, 0.14, 0.04, 0.03},
		{0.02, 0.08, 0.15, 0.54, 0.12, 0.05, 0.04},
		{0.02, 0.07, 0.14, 0.56, 0.13, 0.05, 0.03},
	},

	// pest
	"thrips": {
		{0.05, 0.08, 0.10, 0.35, 0.08, 0.12, 0.22},
		{0.06, 0.10, 0.12, 0.32, 0.06, 0.10, 0.24},
		{0.04, 0.06, 0.08, 0.38, 0.10, 0.14, 0.20},
		{0.05, 0.09, 0.11, 0.34, 0.07, 0.11, 0.23},
		{0.05, 0.07, 0.09, 0.36, 0.09, 0.13, 0.21},
	},
	"scale": {
		{0.02, 0.05, 0.08, 0.25, 0.15, 0.05, 0.40},
		{0.03, 0.06, 0.10, 0.22, 0.12, 0.04, 0.43},
		{0.01, 0.04, 0.06, 0.28, 0.18, 0.06, 0.37},
		{0.02, 0.05, 0.08, 0.25, 0.14, 0.05, 0.41},
		{0.02, 0.05, 0.07, 0.26, 0.16, 0.05, 0.39},
	},
	"mites": {
		{0.08, 0.12, 0.15, 0.38, 0.10, 0.12, 0.05},
		{0.10, 0.14, 0.17, 0.35, 0.08, 0.10, 0.06},
		{0.06, 0.10, 0.13, 0.42, 0.12, 0.14, 0.03},
		{0.08, 0.12, 0.15, 0.38, 0.10, 0.12, 0.05},
		{0.07, 0.11, 0.14, 0.40, 0.11, 0.13, 0.04},
	},
	"worms": {
		{0.25, 0.25, 0.18, 0.22, 0.04, 0.03, 0.03},
		{0.28, 0.22, 0.16, 0.24, 0.04, 0.04, 0.02},
		{0.22, 0.28, 0.20, 0.20, 0.04, 0.02, 0.04},
		{0.26, 0.24, 0.18, 0.22, 0.04, 0.03, 0.03},
		{0.24, 0.26, 0.19, 0.21, 0.04, 0.03, 0.03},
	},
	"borer": {
		{0.05, 0.08, 0.10, 0.52, 0.08, 0.12, 0.05},
		{0.07, 0.10, 0.12, 0.48, 0.06, 0.10, 0.07},
		{0.03, 0.06, 0.08, 0.58, 0.10, 0.14, 0.01},
		{0.05, 0.08, 0.10, 0.52, 0.08, 0.12, 0.05},
		{0.04, 0.07, 0.09, 0.55, 0.09, 0.13, 0.03},
	},
	"fruitfly": {
		{0.06, 0.10, 0.14, 0.32, 0.08, 0.08, 0.22},
		{0.08, 0.12, 0.16, 0.28, 0.06, 0.06, 0.24},
		{0.04, 0.08, 0.12, 0.38, 0.10, 0.10, 0.18},
		{0.06, 0.10, 0.14, 0.32, 0.08, 0.08, 0.22},
		{0.05, 0.09, 0.13, 0.35, 0.09, 0.09, 0.20},
	},
	"rootborer": {
		{0.03, 0.06, 0.08, 0.58, 0.10, 0.10, 0.05},
		{0.05, 0.08, 0.10, 0.52, 0.08, 0.08, 0.09},
		{0.02, 0.04, 0.06, 0.64, 0.12, 0.12, 0.00},
		{0.03, 0.06, 0.08, 0.58, 0.10, 0.10, 0.05},
		{0.03, 0.05, 0.07, 0.60, 0.11, 0.11, 0.03},
	},
}
