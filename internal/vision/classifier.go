// Package vision implements the chest X-ray classifier: a fixed VGG16-based
// multi-label network loaded from a weights file, plus the image-reference
// resolution and preprocessing that feed it.
package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lungsight/apiserver/config"
	"github.com/lungsight/apiserver/types"
)

// DefaultThreshold converts a probability to a "Y" label when met.
const DefaultThreshold = 0.3

// Classifier owns the loaded model handle. The zero state is "not loaded";
// Load is idempotent and reloads into the same handle. Concurrent Classify
// calls are safe; Load serializes against them.
type Classifier struct {
	weightsPath string
	imageDir    string
	threshold   float64

	mu  sync.RWMutex
	net *network
}

func NewClassifier(cfg config.ModelConfig) *Classifier {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		weightsPath: cfg.WeightsPath,
		imageDir:    cfg.ImageDir,
		threshold:   threshold,
	}
}

// Load builds the fixed topology and reads parameters from the configured
// weights file. Returns ErrWeightsNotFound when the file is missing and
// ErrLoadFailure when the parameters do not match the topology.
func (c *Classifier) Load() error {
	if _, err := os.Stat(c.weightsPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWeightsNotFound, c.weightsPath)
		}
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	f, err := os.Open(c.weightsPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	defer f.Close()

	tensors, err := readWeights(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	net, err := buildNetwork(tensors)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	c.mu.Lock()
	c.net = net
	c.mu.Unlock()
	return nil
}

// Loaded reports whether a successful Load has happened.
func (c *Classifier) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.net != nil
}

// Classify resolves the image reference, runs one forward pass and labels
// each condition against the threshold (non-positive values fall back to
// the configured default).
func (c *Classifier) Classify(imageRef string, threshold float64) (types.ClassificationResult, error) {
	c.mu.RLock()
	net := c.net
	c.mu.RUnlock()
	if net == nil {
		return types.ClassificationResult{}, ErrModelNotLoaded
	}

	if threshold <= 0 {
		threshold = c.threshold
	}

	resolved := c.ResolveImageRef(imageRef)
	if !fileExists(resolved) {
		return types.ClassificationResult{}, fmt.Errorf(
			"%w: no file for input %q (tried %s)", ErrImageNotFound, imageRef, resolved)
	}

	img, err := decodeImage(resolved)
	if err != nil {
		return types.ClassificationResult{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	probs := net.forward(preprocess(img))

	results := make(map[string]types.ConditionScore, len(types.Conditions))
	for i, condition := range types.Conditions {
		label := "N"
		if probs[i] >= threshold {
			label = "Y"
		}
		results[condition] = types.ConditionScore{Probability: probs[i], Label: label}
	}

	return types.ClassificationResult{
		AnalyzedFile: filepath.Base(resolved),
		Results:      results,
	}, nil
}
