package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSubrange(t *testing.T) {
	sub, ok := ExtractSubrange([]float64{0, 0, 3, 0, 5, 0})
	require.True(t, ok)
	assert.Equal(t, 2, sub.Start)
	assert.Equal(t, 4, sub.End)

	_, ok = ExtractSubrange([]float64{0, 0, 0})
	assert.False(t, ok)

	sub, ok = ExtractSubrange([]float64{7})
	require.True(t, ok)
	assert.Equal(t, Subrange{Start: 0, End: 0}, sub)
}

func TestSmooth(t *testing.T) {
	// Active span 2..5; edges use two-point averages, interior three-point.
	in := []float64{0, 0, 4, 8, 0, 6, 0}
	out := Smooth(in)

	assert.Equal(t, 6.0, out[2])           // (4+8)/2
	assert.Equal(t, 4.0, out[3])           // (4+8+0)/3
	assert.Equal(t, 0.0, out[4])           // zero passes through
	assert.Equal(t, 3.0, out[5])           // (0+6)/2
	assert.Equal(t, []float64{0, 0, 4, 8, 0, 6, 0}, in, "input not mutated")
	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 0.0, out[6])
}

func TestSmooth_UsesOriginalNeighbors(t *testing.T) {
	// Each smoothed value must come from the snapshot, not from already
	// smoothed entries.
	in := []float64{2, 4, 6}
	out := Smooth(in)
	assert.Equal(t, 3.0, out[0]) // (2+4)/2
	assert.Equal(t, 4.0, out[1]) // (2+4+6)/3
	assert.Equal(t, 5.0, out[2]) // (4+6)/2
}

func TestSmooth_AllZerosAndSinglePoint(t *testing.T) {
	zeros := []float64{0, 0, 0}
	assert.Equal(t, zeros, Smooth(zeros))

	single := []float64{0, 9, 0}
	assert.Equal(t, single, Smooth(single))
}

func TestTrendFit_PerfectLine(t *testing.T) {
	// Values already on a line fit to themselves.
	in := []float64{0, 2, 4, 6, 8, 0}
	out := TrendFit(in)
	assert.InDelta(t, 2.0, out[1], 1e-9)
	assert.InDelta(t, 4.0, out[2], 1e-9)
	assert.InDelta(t, 8.0, out[4], 1e-9)
	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 0.0, out[5])
}

func TestTrendFit_ZerosInSpanPreserved(t *testing.T) {
	in := []float64{0, 3, 0, 9, 0}
	out := TrendFit(in)
	assert.Equal(t, 0.0, out[2])
	assert.NotEqual(t, 0.0, out[1])
	assert.NotEqual(t, 0.0, out[3])
}

func TestTrendFit_SinglePoint(t *testing.T) {
	in := []float64{0, 5, 0}
	out := TrendFit(in)
	assert.Equal(t, []float64{0, 5, 0}, out)
}

func TestFlatten_NonZeroEntriesBecomeSpanSum(t *testing.T) {
	in := []float64{0, 2, 4, 0, 6}
	out := Flatten(in)
	assert.Equal(t, []float64{0, 12, 12, 0, 12}, out)
}

func TestFlatten_AllZeros(t *testing.T) {
	in := []float64{0, 0, 0}
	assert.Equal(t, in, Flatten(in))
}

func TestMaintainOriginalSum(t *testing.T) {
	out := MaintainOriginalSum([]float64{1, 2, 3, 4}, 20)
	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 20.0, sum, 1e-9)
	assert.InDelta(t, 2.0, out[0], 1e-9)

	// Zero modified sum is a no-op.
	zeros := MaintainOriginalSum([]float64{0, 0}, 50)
	assert.Equal(t, []float64{0, 0}, zeros)
}

func TestFlattenThenMaintainSum_LevelsCurvePreservingVolume(t *testing.T) {
	in := []float64{0, 2, 4, 0, 6}
	out := MaintainOriginalSum(Flatten(in), 12)
	assert.InDelta(t, 4.0, out[1], 1e-9)
	assert.InDelta(t, 4.0, out[2], 1e-9)
	assert.Equal(t, 0.0, out[3])

	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 12.0, sum, 1e-9)
}
