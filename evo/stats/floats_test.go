package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatsSummaryStatistics(t *testing.T) {
	f := Floats{4, 1, 3, 2, 5}

	assert.Equal(t, 1.0, f.Min())
	assert.Equal(t, 5.0, f.Max())
	assert.Equal(t, 15.0, f.Sum())
	assert.Equal(t, 3.0, f.Mean())
	assert.Equal(t, 3.0, f.Median())
	assert.InDelta(t, 2.5, f.Variance(), 1e-12)
	assert.InDelta(t, 1.5811388300841898, f.StdDev(), 1e-12)
}

func TestFloatsQuantilesOnSortedData(t *testing.T) {
	f := Floats{1, 2, 3, 4, 5, 6, 7, 8}

	assert.LessOrEqual(t, f.Q25(), f.Median())
	assert.LessOrEqual(t, f.Median(), f.Q75())
}

func TestFloatsQuantileDoesNotReorderReceiver(t *testing.T) {
	f := Floats{5, 1, 3}
	_ = f.Median()
	assert.Equal(t, Floats{5, 1, 3}, f, "quantile computation must sort a copy, not the receiver")
}

func TestFloatsEmpty(t *testing.T) {
	var f Floats

	assert.Equal(t, 0.0, f.Min())
	assert.Equal(t, 0.0, f.Max())
	assert.Equal(t, 0.0, f.Sum())
	assert.Equal(t, 0.0, f.Mean())
	assert.Equal(t, 0.0, f.Variance())
	assert.Equal(t, 0.0, f.StdDev())
	assert.Equal(t, 0.0, f.Median())
}
