package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorNew(t *testing.T) {
	t.Run("PackedStridesComputed", func(t *testing.T) {
		d, err := New(4, []int{4, 3, 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 12}, d.Strides())
		assert.Equal(t, 24, d.TotalLogicalElements())
	})

	t.Run("ExplicitStrides", func(t *testing.T) {
		d, err := New(4, []int{4, 3, 2}, []int{1, 8, 32})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 8, 32}, d.Strides())
	})

	t.Run("RejectsBadElementBytes", func(t *testing.T) {
		_, err := New(0, []int{4}, nil)
		assert.Error(t, err)
	})

	t.Run("RejectsStrideCountMismatch", func(t *testing.T) {
		_, err := New(4, []int{4, 3}, []int{1})
		assert.Error(t, err)
	})

	t.Run("RejectsZeroStride", func(t *testing.T) {
		_, err := New(4, []int{4}, []int{0})
		assert.Error(t, err)
	})
}

func TestDescriptorIndex(t *testing.T) {
	d, err := New(4, []int{4, 3, 2}, []int{1, 8, 32})
	require.NoError(t, err)
	assert.Equal(t, 0, d.Index([]int{0, 0, 0}))
	assert.Equal(t, 3, d.Index([]int{3, 0, 0}))
	assert.Equal(t, 8, d.Index([]int{0, 1, 0}))
	assert.Equal(t, 32+16+2, d.Index([]int{2, 2, 1}))
}

func TestPlanFullyContiguous(t *testing.T) {
	// Strides exactly matching the cumulative extent product coalesce
	// to a single segment spanning the whole tensor.
	d, err := New(4, []int{4, 3, 2}, []int{1, 4, 12})
	require.NoError(t, err)

	plan := Plan(d)
	require.Len(t, plan, 1)
	assert.Equal(t, Segment{Offset: 0, Length: 24 * 4}, plan[0])
}

func TestPlanContiguousWithPaddedInnerStride(t *testing.T) {
	// Strides (1, 4, 16): the expected stride after dims 0 and 1 is
	// 4*3=12, so dimension 2's stride 16 stops the scan. Dims (0, 1)
	// coalesce into 12-element runs and dimension 2 is enumerated.
	d, err := New(4, []int{4, 3, 2}, []int{1, 4, 16})
	require.NoError(t, err)

	plan := Plan(d)
	require.Len(t, plan, 2)
	assert.Equal(t, Segment{Offset: 0, Length: 12 * 4}, plan[0])
	assert.Equal(t, Segment{Offset: 16 * 4, Length: 12 * 4}, plan[1])
}

func TestPlanGapAfterFirstDimension(t *testing.T) {
	// Extents (4, 3, 2), strides (1, 8, 32): only dimension 0 is
	// contiguous; one segment per (dim1, dim2) coordinate, dim1 fastest.
	d, err := New(4, []int{4, 3, 2}, []int{1, 8, 32})
	require.NoError(t, err)

	plan := Plan(d)
	require.Len(t, plan, 3*2)

	wantOffsets := []int64{0, 8, 16, 32, 40, 48}
	for i, seg := range plan {
		assert.Equal(t, wantOffsets[i]*4, seg.Offset, "segment %d offset", i)
		assert.Equal(t, int64(4*4), seg.Length, "segment %d length", i)
	}
}

func TestPlanDegenerateCases(t *testing.T) {
	t.Run("ZeroDimensional", func(t *testing.T) {
		d, err := New(4, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, Plan(d))
	})

	t.Run("ZeroElements", func(t *testing.T) {
		d, err := New(4, []int{4, 0, 2}, []int{1, 4, 4})
		require.NoError(t, err)
		assert.Empty(t, Plan(d))
	})
}

func TestPlanNoContiguousPrefix(t *testing.T) {
	// A non-unit innermost stride degrades to one element per segment.
	d, err := New(2, []int{3}, []int{2})
	require.NoError(t, err)

	plan := Plan(d)
	require.Len(t, plan, 3)
	for i, seg := range plan {
		assert.Equal(t, int64(i*2*2), seg.Offset)
		assert.Equal(t, int64(2), seg.Length)
	}
}

func TestPlanCoversAllBytes(t *testing.T) {
	// Total planned bytes always equal elementBytes * logical elements.
	cases := []struct {
		sizes   []int
		strides []int
	}{
		{[]int{8}, nil},
		{[]int{4, 3, 2}, nil},
		{[]int{4, 3, 2}, []int{1, 8, 32}},
		{[]int{2, 2, 2, 2}, []int{1, 2, 8, 16}},
	}
	for _, tc := range cases {
		d, err := New(4, tc.sizes, tc.strides)
		require.NoError(t, err)

		var total int64
		for _, seg := range Plan(d) {
			total += seg.Length
		}
		assert.Equal(t, int64(4*d.TotalLogicalElements()), total,
			"sizes %v strides %v", tc.sizes, tc.strides)
	}
}
