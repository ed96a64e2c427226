package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestIm2colCenterAndPadding(t *testing.T) {
	// 2x2 single-channel image laid out row-major, one pixel per row.
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	cols := im2col(x, 2, 2, 1)
	rows, width := cols.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 9, width)

	// Kernel center always sees the pixel itself.
	for i := 0; i < 4; i++ {
		require.Equal(t, float64(i+1), cols.At(i, 4))
	}

	// Pixel (0,0): everything above and left of it is zero padding.
	topLeft := cols.RawRowView(0)
	require.Equal(t, []float64{0, 0, 0, 0, 1, 2, 0, 3, 4}, topLeft)
}

func TestConvReLU(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	// A center-only kernel makes the convolution an identity, so the
	// output is just bias plus input run through ReLU.
	kernelData := make([]float64, 9)
	kernelData[4] = 1
	layer := convLayer{
		spec:   convSpec{in: 1, out: 1},
		kernel: mat.NewDense(9, 1, kernelData),
		bias:   []float64{-2},
	}

	out := convReLU(x, 2, 2, layer)
	require.Equal(t, []float64{0, 0, 1, 2}, out.RawMatrix().Data)
}

func TestMaxPool2x2(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 8,
		2, 7,
		3, 6,
		4, 5,
	})

	out := maxPool2x2(x, 2, 2)
	rows, cols := out.Dims()
	require.Equal(t, 1, rows)
	require.Equal(t, 2, cols)
	require.Equal(t, []float64{4, 8}, out.RawRowView(0))
}

func TestGlobalAvgPool(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	require.Equal(t, []float64{2.5, 25}, globalAvgPool(x))
}

func TestDenseForward(t *testing.T) {
	weight := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 2,
	})

	out := denseForward([]float64{3, -4}, weight, []float64{0, 1}, relu)
	require.Equal(t, []float64{3, 0}, out)
}

func TestActivations(t *testing.T) {
	require.Equal(t, 0.0, relu(-1))
	require.Equal(t, 2.0, relu(2))
	require.Equal(t, 0.5, sigmoid(0))
	require.InDelta(t, 1.0, sigmoid(50), 1e-9)
	require.InDelta(t, 0.0, sigmoid(-50), 1e-9)
}
