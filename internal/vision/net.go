package vision

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fixed topology: VGG16 convolutional backbone (13 conv3x3 layers in five
// blocks, 2x2 max-pool after each block), global average pooling, a 1024-unit
// ReLU dense layer, and 13 independent sigmoid outputs.
const (
	kernelSide = 3
	hiddenSize = 1024
	numClasses = 13
)

type convSpec struct {
	name string
	in   int
	out  int
}

var backboneBlocks = [][]convSpec{
	{{"block1_conv1", 3, 64}, {"block1_conv2", 64, 64}},
	{{"block2_conv1", 64, 128}, {"block2_conv2", 128, 128}},
	{{"block3_conv1", 128, 256}, {"block3_conv2", 256, 256}, {"block3_conv3", 256, 256}},
	{{"block4_conv1", 256, 512}, {"block4_conv2", 512, 512}, {"block4_conv3", 512, 512}},
	{{"block5_conv1", 512, 512}, {"block5_conv2", 512, 512}, {"block5_conv3", 512, 512}},
}

const backboneOut = 512

type convLayer struct {
	spec convSpec

	// kernel is the 3x3 filter bank flattened to (9*in) x out, matching the
	// im2col column layout.
	kernel *mat.Dense
	bias   []float64
}

type network struct {
	blocks [][]convLayer

	fc1Weight *mat.Dense // backboneOut x hiddenSize
	fc1Bias   []float64
	outWeight *mat.Dense // hiddenSize x numClasses
	outBias   []float64
}

// buildNetwork assembles the fixed topology from a loaded tensor archive,
// validating every tensor shape against it.
func buildNetwork(tensors map[string]tensor) (*network, error) {
	n := &network{}

	for _, blockSpecs := range backboneBlocks {
		var block []convLayer
		for _, spec := range blockSpecs {
			layer, err := buildConvLayer(tensors, spec)
			if err != nil {
				return nil, err
			}
			block = append(block, layer)
		}
		n.blocks = append(n.blocks, block)
	}

	var err error
	if n.fc1Weight, n.fc1Bias, err = buildDense(tensors, "fc1", backboneOut, hiddenSize); err != nil {
		return nil, err
	}
	if n.outWeight, n.outBias, err = buildDense(tensors, "predictions", hiddenSize, numClasses); err != nil {
		return nil, err
	}

	return n, nil
}

func buildConvLayer(tensors map[string]tensor, spec convSpec) (convLayer, error) {
	kernel, ok := tensors[spec.name+"/kernel"]
	if !ok {
		return convLayer{}, fmt.Errorf("missing tensor %s/kernel", spec.name)
	}
	if !dimsEqual(kernel.dims, kernelSide, kernelSide, spec.in, spec.out) {
		return convLayer{}, fmt.Errorf("%s/kernel: unexpected shape %v", spec.name, kernel.dims)
	}

	bias, ok := tensors[spec.name+"/bias"]
	if !ok {
		return convLayer{}, fmt.Errorf("missing tensor %s/bias", spec.name)
	}
	if !dimsEqual(bias.dims, spec.out) {
		return convLayer{}, fmt.Errorf("%s/bias: unexpected shape %v", spec.name, bias.dims)
	}

	// A (ky, kx, in, out) kernel tensor flattens row-major to exactly the
	// (9*in) x out matrix the im2col product expects.
	return convLayer{
		spec:   spec,
		kernel: mat.NewDense(kernelSide*kernelSide*spec.in, spec.out, kernel.data),
		bias:   bias.data,
	}, nil
}

func buildDense(tensors map[string]tensor, name string, in, out int) (*mat.Dense, []float64, error) {
	weight, ok := tensors[name+"/kernel"]
	if !ok {
		return nil, nil, fmt.Errorf("missing tensor %s/kernel", name)
	}
	if !dimsEqual(weight.dims, in, out) {
		return nil, nil, fmt.Errorf("%s/kernel: unexpected shape %v", name, weight.dims)
	}

	bias, ok := tensors[name+"/bias"]
	if !ok {
		return nil, nil, fmt.Errorf("missing tensor %s/bias", name)
	}
	if !dimsEqual(bias.dims, out) {
		return nil, nil, fmt.Errorf("%s/bias: unexpected shape %v", name, bias.dims)
	}

	return mat.NewDense(in, out, weight.data), bias.data, nil
}

func dimsEqual(dims []int, want ...int) bool {
	if len(dims) != len(want) {
		return false
	}
	for i, d := range dims {
		if d != want[i] {
			return false
		}
	}
	return true
}

// forward runs one inference pass over a preprocessed (h*w) x 3 input and
// returns the 13 sigmoid activations.
func (n *network) forward(input *mat.Dense) []float64 {
	x := input
	h, w := inputSize, inputSize

	for _, block := range n.blocks {
		for _, layer := range block {
			x = convReLU(x, h, w, layer)
		}
		x = maxPool2x2(x, h, w)
		h, w = h/2, w/2
	}

	pooled := globalAvgPool(x)
	hidden := denseForward(pooled, n.fc1Weight, n.fc1Bias, relu)
	return denseForward(hidden, n.outWeight, n.outBias, sigmoid)
}

// convReLU applies one same-padded 3x3 convolution via im2col + matmul,
// followed by bias and ReLU.
func convReLU(x *mat.Dense, h, w int, layer convLayer) *mat.Dense {
	cols := im2col(x, h, w, layer.spec.in)

	var out mat.Dense
	out.Mul(cols, layer.kernel)

	raw := out.RawMatrix()
	for row := 0; row < raw.Rows; row++ {
		offset := row * raw.Stride
		for col := 0; col < raw.Cols; col++ {
			v := raw.Data[offset+col] + layer.bias[col]
			if v < 0 {
				v = 0
			}
			raw.Data[offset+col] = v
		}
	}
	return &out
}

// im2col lays out every 3x3 neighborhood (zero-padded at the border) as one
// row, so the convolution becomes a single dense product.
func im2col(x *mat.Dense, h, w, channels int) *mat.Dense {
	cols := mat.NewDense(h*w, kernelSide*kernelSide*channels, nil)
	for y := 0; y < h; y++ {
		for xx := 0; xx < w; xx++ {
			dst := cols.RawRowView(y*w + xx)
			for ky := 0; ky < kernelSide; ky++ {
				sy := y + ky - 1
				if sy < 0 || sy >= h {
					continue
				}
				for kx := 0; kx < kernelSide; kx++ {
					sx := xx + kx - 1
					if sx < 0 || sx >= w {
						continue
					}
					src := x.RawRowView(sy*w + sx)
					copy(dst[(ky*kernelSide+kx)*channels:(ky*kernelSide+kx+1)*channels], src)
				}
			}
		}
	}
	return cols
}

func maxPool2x2(x *mat.Dense, h, w int) *mat.Dense {
	_, channels := x.Dims()
	oh, ow := h/2, w/2
	out := mat.NewDense(oh*ow, channels, nil)

	for oy := 0; oy < oh; oy++ {
		for ox := 0; ox < ow; ox++ {
			dst := out.RawRowView(oy*ow + ox)
			a := x.RawRowView((2*oy)*w + 2*ox)
			b := x.RawRowView((2*oy)*w + 2*ox + 1)
			c := x.RawRowView((2*oy+1)*w + 2*ox)
			d := x.RawRowView((2*oy+1)*w + 2*ox + 1)
			for ch := 0; ch < channels; ch++ {
				dst[ch] = math.Max(math.Max(a[ch], b[ch]), math.Max(c[ch], d[ch]))
			}
		}
	}
	return out
}

func globalAvgPool(x *mat.Dense) []float64 {
	rows, channels := x.Dims()
	pooled := make([]float64, channels)
	for row := 0; row < rows; row++ {
		v := x.RawRowView(row)
		for ch := 0; ch < channels; ch++ {
			pooled[ch] += v[ch]
		}
	}
	for ch := range pooled {
		pooled[ch] /= float64(rows)
	}
	return pooled
}

func denseForward(v []float64, weight *mat.Dense, bias []float64, activation func(float64) float64) []float64 {
	var out mat.VecDense
	out.MulVec(weight.T(), mat.NewVecDense(len(v), v))

	result := make([]float64, len(bias))
	for i := range result {
		result[i] = activation(out.AtVec(i) + bias[i])
	}
	return result
}

func relu(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
