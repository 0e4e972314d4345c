package tensor

// Segment is one contiguous copy range, in bytes.
type Segment struct {
	Offset int64
	Length int64
}

// Plan computes the minimal sequence of contiguous copy segments that
// covers the full logical tensor exactly once. Leading dimensions whose
// strides match the packed layout are coalesced into a single run; one
// segment is emitted per coordinate over the remaining dimensions.
// Zero-dimensional and zero-element tensors yield an empty plan.
func Plan(d Descriptor) []Segment {
	if d.Dimensions() == 0 || d.TotalLogicalElements() == 0 {
		return nil
	}

	sizes := d.Sizes()
	strides := d.Strides()
	dims := d.Dimensions()

	// Coalesce the leading dimensions that are contiguous in memory: a
	// dimension is accepted while its stride does not exceed the stride
	// expected from the dimensions before it.
	contiguous := 0
	expectedStride := 1
	for i := 0; i < dims; i++ {
		if strides[i] > expectedStride {
			break
		}
		contiguous = i + 1
		if i < dims-1 {
			expectedStride = strides[i] * sizes[i]
		}
	}

	runBytes := int64(d.ElementBytes())
	if contiguous > 0 {
		maxStride := strides[0]
		for _, s := range strides[1:contiguous] {
			if s > maxStride {
				maxStride = s
			}
		}
		runBytes = int64(maxStride) * int64(sizes[contiguous-1]) * int64(d.ElementBytes())
	}

	copyCount := 1
	for _, s := range sizes[contiguous:] {
		copyCount *= s
	}

	segments := make([]Segment, 0, copyCount)
	coord := make([]int, dims)
	for idx := 0; idx < copyCount; idx++ {
		rem := idx
		for c := contiguous; c < dims; c++ {
			coord[c] = rem % sizes[c]
			rem /= sizes[c]
		}
		offset := int64(d.Index(coord)) * int64(d.ElementBytes())
		segments = append(segments, Segment{Offset: offset, Length: runBytes})
	}
	return segments
}
