package vision

import "errors"

var (
	// ErrWeightsNotFound is returned when the configured weights file is missing.
	ErrWeightsNotFound = errors.New("weights file not found")

	// ErrLoadFailure is returned when the weights file does not match the
	// fixed network topology or cannot be parsed.
	ErrLoadFailure = errors.New("failed to load model weights")

	// ErrModelNotLoaded is returned by Classify before a successful Load.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrImageNotFound is returned when reference resolution yields no
	// existing file.
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidImage is returned when a file cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image format or corrupted file")
)
