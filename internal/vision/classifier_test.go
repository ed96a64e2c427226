package vision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lungsight/apiserver/config"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingWeights(t *testing.T) {
	c := NewClassifier(config.ModelConfig{
		WeightsPath: filepath.Join(t.TempDir(), "absent.weights"),
	})

	err := c.Load()
	require.ErrorIs(t, err, ErrWeightsNotFound)
	require.False(t, c.Loaded())
}

func TestLoadCorruptWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.weights")
	require.NoError(t, os.WriteFile(path, []byte("not a weights file"), 0o644))

	c := NewClassifier(config.ModelConfig{WeightsPath: path})

	err := c.Load()
	require.ErrorIs(t, err, ErrLoadFailure)
	require.False(t, c.Loaded())
}

func TestClassifyBeforeLoad(t *testing.T) {
	c := NewClassifier(config.ModelConfig{})

	_, err := c.Classify("image 1", 0)
	require.ErrorIs(t, err, ErrModelNotLoaded)
}
