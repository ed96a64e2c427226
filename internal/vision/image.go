package vision

import (
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

const inputSize = 224

// Channel means of the backbone's training distribution, in B, G, R order.
var channelMeans = [3]float64{103.939, 116.779, 123.68}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// preprocess resizes to the fixed input resolution and applies the model's
// expected normalization: channels reordered to BGR with per-channel mean
// subtraction. The result has one row per pixel and one column per channel.
func preprocess(img image.Image) *mat.Dense {
	resized := image.NewRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	input := mat.NewDense(inputSize*inputSize, 3, nil)
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			offset := resized.PixOffset(x, y)
			r := float64(resized.Pix[offset])
			g := float64(resized.Pix[offset+1])
			b := float64(resized.Pix[offset+2])

			row := input.RawRowView(y*inputSize + x)
			row[0] = b - channelMeans[0]
			row[1] = g - channelMeans[1]
			row[2] = r - channelMeans[2]
		}
	}
	return input
}
