package stats

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alwaysErrorText = "always be failing"

type errorWriter int

func (errorWriter) Write(_ []byte) (int, error) {
	return 0, errors.New(alwaysErrorText)
}

func buildTestReport() *Report {
	r := &Report{}
	r.Record([]float64{1, 2, 3}, 2)
	r.Record([]float64{2, 4, 6}, 3)
	r.Record([]float64{5, 5, 8}, 1)
	return r
}

func TestReportRecordNumbersGenerations(t *testing.T) {
	r := buildTestReport()

	require.Len(t, r.Snapshots, 3)
	for i, s := range r.Snapshots {
		assert.Equal(t, i, s.Generation)
	}
}

func TestReportRecordCopiesScores(t *testing.T) {
	r := &Report{}
	scores := []float64{1, 2, 3}
	r.Record(scores, 1)

	scores[0] = 99
	assert.Equal(t, 1.0, r.Snapshots[0].Fitness[0], "a recorded snapshot must not alias the caller's slice")
}

func TestReportSeries(t *testing.T) {
	r := buildTestReport()

	assert.Equal(t, Floats{3, 6, 8}, r.BestFitness())
	assert.Equal(t, Floats{2, 4, 6}, r.MeanFitness())
	assert.Equal(t, []int{2, 3, 1}, r.SpeciesCounts())
}

func TestReportWriteNPZ(t *testing.T) {
	r := buildTestReport()

	var buff bytes.Buffer
	err := r.WriteNPZ(&buff)
	require.NoError(t, err, "failed to write NPZ report")
	assert.True(t, buff.Len() > 0)
}

func TestReportWriteNPZWriteError(t *testing.T) {
	r := buildTestReport()

	w := errorWriter(1)
	err := r.WriteNPZ(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), alwaysErrorText)
}
