// Package tensor describes multi-dimensional strided device tensors and
// plans minimal-segment copies over them.
package tensor

import "fmt"

// Descriptor describes an N-dimensional strided tensor. Sizes holds the
// per-dimension extents and Strides the per-dimension strides in element
// units; dimension 0 is the fastest-varying. ElementBytes is the byte
// width of one element.
type Descriptor struct {
	sizes        []int
	strides      []int
	elementBytes int
}

// New builds a descriptor from extents and strides. A nil strides slice
// yields the packed layout (stride[0]=1, stride[i]=stride[i-1]*size[i-1]).
func New(elementBytes int, sizes []int, strides []int) (Descriptor, error) {
	if elementBytes <= 0 {
		return Descriptor{}, fmt.Errorf("tensor: element bytes must be positive, got %d", elementBytes)
	}
	for i, s := range sizes {
		if s < 0 {
			return Descriptor{}, fmt.Errorf("tensor: size[%d] is negative: %d", i, s)
		}
	}
	if strides == nil {
		strides = make([]int, len(sizes))
		next := 1
		for i := range sizes {
			strides[i] = next
			next *= sizes[i]
		}
	}
	if len(strides) != len(sizes) {
		return Descriptor{}, fmt.Errorf("tensor: %d strides for %d dimensions", len(strides), len(sizes))
	}
	for i, s := range strides {
		if s < 1 {
			return Descriptor{}, fmt.Errorf("tensor: stride[%d] must be at least 1, got %d", i, s)
		}
	}
	d := Descriptor{
		sizes:        append([]int(nil), sizes...),
		strides:      append([]int(nil), strides...),
		elementBytes: elementBytes,
	}
	return d, nil
}

// Dimensions returns the number of dimensions.
func (d Descriptor) Dimensions() int { return len(d.sizes) }

// Sizes returns the per-dimension extents.
func (d Descriptor) Sizes() []int { return d.sizes }

// Strides returns the per-dimension strides in element units.
func (d Descriptor) Strides() []int { return d.strides }

// ElementBytes returns the byte width of one element.
func (d Descriptor) ElementBytes() int { return d.elementBytes }

// TotalLogicalElements returns the number of addressable coordinates,
// the product of all extents. Zero dimensions yield zero.
func (d Descriptor) TotalLogicalElements() int {
	if len(d.sizes) == 0 {
		return 0
	}
	total := 1
	for _, s := range d.sizes {
		total *= s
	}
	return total
}

// Index maps a coordinate to its linear element offset.
func (d Descriptor) Index(coord []int) int {
	idx := 0
	for i, c := range coord {
		idx += c * d.strides[i]
	}
	return idx
}

func (d Descriptor) String() string {
	return fmt.Sprintf("Descriptor{sizes: %v, strides: %v, elementBytes: %d}",
		d.sizes, d.strides, d.elementBytes)
}
