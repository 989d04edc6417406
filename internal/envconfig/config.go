// Package envconfig reads the MODELIR_* environment variables.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/born-ml/modelir/internal/logutil"
	"github.com/born-ml/modelir/internal/serialization"
	"github.com/born-ml/modelir/internal/tensor"
)

var (
	// Set via MODELIR_DEBUG in the environment
	LogLevel slog.Level
	// Set via MODELIR_VALIDATION in the environment
	Validation serialization.ValidationLevel
	// Set via MODELIR_STORAGE in the environment
	Storage tensor.StorageClass
	// Set via MODELIR_FORCE_FP32 in the environment
	ForceFP32 bool
	// Set via MODELIR_WORKERS in the environment
	Workers int
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"MODELIR_DEBUG":      {"MODELIR_DEBUG", LogLevel, "Log level: 1 for debug, 2 for trace"},
		"MODELIR_VALIDATION": {"MODELIR_VALIDATION", Validation, "IR validation: strict, normal or none (default strict)"},
		"MODELIR_STORAGE":    {"MODELIR_STORAGE", Storage, "Tensor storage class: buffer or texture (default buffer)"},
		"MODELIR_FORCE_FP32": {"MODELIR_FORCE_FP32", ForceFP32, "Ignore the model's float16 relax flag"},
		"MODELIR_WORKERS":    {"MODELIR_WORKERS", Workers, "Worker goroutines for validation (default NumCPU)"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// clean strips quotes and whitespace from an environment value.
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	LogLevel = slog.LevelInfo
	if debug := clean("MODELIR_DEBUG"); debug != "" {
		switch n, err := strconv.Atoi(debug); {
		case err != nil:
			if b, _ := strconv.ParseBool(debug); b {
				LogLevel = slog.LevelDebug
			}
		case n >= 2:
			LogLevel = logutil.LevelTrace
		case n == 1:
			LogLevel = slog.LevelDebug
		}
	}

	Validation = serialization.ValidationStrict
	if v := clean("MODELIR_VALIDATION"); v != "" {
		switch strings.ToLower(v) {
		case "strict":
		case "normal":
			Validation = serialization.ValidationNormal
		case "none", "off":
			Validation = serialization.ValidationNone
		default:
			slog.Error("invalid setting, ignoring", "MODELIR_VALIDATION", v)
		}
	}

	Storage = tensor.StorageBuffer
	if s := clean("MODELIR_STORAGE"); s != "" {
		switch strings.ToLower(s) {
		case "buffer":
		case "texture":
			Storage = tensor.StorageTexture
		default:
			slog.Error("invalid setting, ignoring", "MODELIR_STORAGE", s)
		}
	}

	ForceFP32 = false
	if f := clean("MODELIR_FORCE_FP32"); f != "" {
		b, err := strconv.ParseBool(f)
		if err != nil {
			slog.Error("invalid setting, ignoring", "MODELIR_FORCE_FP32", f, "error", err)
		}
		ForceFP32 = b
	}

	Workers = runtime.NumCPU()
	if w := clean("MODELIR_WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			slog.Error("invalid setting must be greater than zero", "MODELIR_WORKERS", w, "error", err)
		} else {
			Workers = n
		}
	}
}
