package envconfig

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/modelir/internal/logutil"
	"github.com/born-ml/modelir/internal/serialization"
	"github.com/born-ml/modelir/internal/tensor"
)

func TestConfig(t *testing.T) {
	t.Setenv("MODELIR_DEBUG", "")
	LoadConfig()
	require.Equal(t, slog.LevelInfo, LogLevel)
	t.Setenv("MODELIR_DEBUG", "1")
	LoadConfig()
	require.Equal(t, slog.LevelDebug, LogLevel)
	t.Setenv("MODELIR_DEBUG", "2")
	LoadConfig()
	require.Equal(t, logutil.LevelTrace, LogLevel)
	t.Setenv("MODELIR_DEBUG", "true")
	LoadConfig()
	require.Equal(t, slog.LevelDebug, LogLevel)
}

func TestValidationAndStorage(t *testing.T) {
	t.Setenv("MODELIR_VALIDATION", "'normal'")
	t.Setenv("MODELIR_STORAGE", "texture")
	LoadConfig()
	require.Equal(t, serialization.ValidationNormal, Validation)
	require.Equal(t, tensor.StorageTexture, Storage)

	t.Setenv("MODELIR_VALIDATION", "bogus")
	t.Setenv("MODELIR_STORAGE", "")
	LoadConfig()
	require.Equal(t, serialization.ValidationStrict, Validation)
	require.Equal(t, tensor.StorageBuffer, Storage)
}

func TestWorkersAndFP32(t *testing.T) {
	t.Setenv("MODELIR_WORKERS", "3")
	t.Setenv("MODELIR_FORCE_FP32", "1")
	LoadConfig()
	require.Equal(t, 3, Workers)
	require.True(t, ForceFP32)

	t.Setenv("MODELIR_WORKERS", "-2")
	LoadConfig()
	require.Positive(t, Workers)
	require.Contains(t, Values(), "MODELIR_WORKERS")
}
