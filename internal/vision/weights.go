package vision

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Weights container: a flat little-endian tensor archive exported from the
// training side. Layout:
//
//	magic "CXRW" | uint32 version | uint32 tensor count
//	per tensor: uint16 name length | name | uint8 ndim | ndim×uint32 dims |
//	            prod(dims)×float32 values
const (
	weightsMagic   = "CXRW"
	weightsVersion = 1

	maxTensorName = 256
	maxTensorDims = 4
)

type tensor struct {
	dims []int
	data []float64
}

func (t tensor) size() int {
	n := 1
	for _, d := range t.dims {
		n *= d
	}
	return n
}

func readWeights(r io.Reader) (map[string]tensor, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic[:]) != weightsMagic {
		return nil, fmt.Errorf("bad magic %q", magic[:])
	}

	var version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != weightsVersion {
		return nil, fmt.Errorf("unsupported weights version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read tensor count: %w", err)
	}

	tensors := make(map[string]tensor, count)
	for i := uint32(0); i < count; i++ {
		name, t, err := readTensor(r)
		if err != nil {
			return nil, fmt.Errorf("tensor %d: %w", i, err)
		}
		if _, exists := tensors[name]; exists {
			return nil, fmt.Errorf("duplicate tensor %q", name)
		}
		tensors[name] = t
	}
	return tensors, nil
}

func readTensor(r io.Reader) (string, tensor, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return "", tensor{}, fmt.Errorf("read name length: %w", err)
	}
	if nameLen == 0 || nameLen > maxTensorName {
		return "", tensor{}, fmt.Errorf("invalid name length %d", nameLen)
	}

	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return "", tensor{}, fmt.Errorf("read name: %w", err)
	}
	name := string(nameBuf)

	var ndim uint8
	if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
		return "", tensor{}, fmt.Errorf("%s: read ndim: %w", name, err)
	}
	if ndim == 0 || ndim > maxTensorDims {
		return "", tensor{}, fmt.Errorf("%s: invalid ndim %d", name, ndim)
	}

	dims := make([]int, ndim)
	size := 1
	for d := range dims {
		var dim uint32
		if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
			return "", tensor{}, fmt.Errorf("%s: read dim: %w", name, err)
		}
		if dim == 0 {
			return "", tensor{}, fmt.Errorf("%s: zero dimension", name)
		}
		dims[d] = int(dim)
		size *= int(dim)
	}

	raw := make([]float32, size)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return "", tensor{}, fmt.Errorf("%s: read values: %w", name, err)
	}
	data := make([]float64, size)
	for i, v := range raw {
		data[i] = float64(v)
	}

	return name, tensor{dims: dims, data: data}, nil
}
