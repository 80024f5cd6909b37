package speech

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWordTimingsEmptyText(t *testing.T) {
	assert.Empty(t, EstimateWordTimings("", 1.0))
	assert.Empty(t, EstimateWordTimings("   ", 1.0))
	assert.Empty(t, EstimateWordTimings("hello", 0))
}

func TestEstimateWordTimingsHelloWorld(t *testing.T) {
	timings := EstimateWordTimings("Hello world.", 1.0)

	assert.Len(t, timings, 2)
	assert.Equal(t, "Hello", timings[0].Word)
	assert.Equal(t, "world.", timings[1].Word)

	// The second word carries the sentence-end pause bonus, so it must be
	// longer than the first even though the char counts are close.
	first := timings[0].End - timings[0].Start
	second := timings[1].End - timings[1].Start
	assert.Greater(t, second, first)

	// Final word ends exactly at the total duration.
	assert.Equal(t, 1.000, timings[1].End)
}

func TestEstimateWordTimingsMonotonic(t *testing.T) {
	text := "Tell me about a time when you disagreed with a teammate, and how you resolved it."
	timings := EstimateWordTimings(text, 5.5)

	for i, wt := range timings {
		assert.LessOrEqual(t, wt.Start, wt.End, "word %d start must not exceed end", i)
		assert.GreaterOrEqual(t, wt.Start, 0.0)
		if i > 0 {
			assert.LessOrEqual(t, timings[i-1].End, wt.End, "ends must be non-decreasing")
		}
	}
	assert.Equal(t, 5.5, timings[len(timings)-1].End)
}

func TestEstimateWordTimingsDurationSum(t *testing.T) {
	// Post-normalization word durations sum to the total within 1ms.
	for _, total := range []float64{0.8, 1.0, 3.25, 12.345} {
		timings := EstimateWordTimings("One, two; three: four. Five! Six?", total)

		sum := 0.0
		for _, wt := range timings {
			sum += wt.End - wt.Start
		}
		assert.InDelta(t, total, sum, 0.001, "total %v", total)
	}
}

func TestEstimateWordTimingsMillisecondPrecision(t *testing.T) {
	timings := EstimateWordTimings("a bb ccc dddd", 1.0/3.0)
	for _, wt := range timings {
		assert.Equal(t, wt.Start, math.Round(wt.Start*1000)/1000)
		assert.Equal(t, wt.End, math.Round(wt.End*1000)/1000)
	}
}

func TestLongerWordsGetMoreTime(t *testing.T) {
	timings := EstimateWordTimings("hi extraordinary", 2.0)
	assert.Len(t, timings, 2)
	short := timings[0].End - timings[0].Start
	long := timings[1].End - timings[1].Start
	assert.Greater(t, long, short)
}
