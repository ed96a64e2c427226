package vision

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}

	input := preprocess(img)
	rows, cols := input.Dims()
	require.Equal(t, inputSize*inputSize, rows)
	require.Equal(t, 3, cols)

	// Uniform color survives resizing; channels come out in BGR order with
	// the training means subtracted.
	first := input.RawRowView(0)
	require.InDelta(t, 200-channelMeans[0], first[0], 1e-9)
	require.InDelta(t, 150-channelMeans[1], first[1], 1e-9)
	require.InDelta(t, 100-channelMeans[2], first[2], 1e-9)

	last := input.RawRowView(rows - 1)
	require.InDelta(t, first[0], last[0], 1e-9)
}

func TestDecodeImage(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())

	img, err := decodeImage(path)
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = decodeImage(bad)
	require.Error(t, err)
}
