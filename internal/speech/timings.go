package speech

import (
	"math"
	"strings"

	"peerprep/avatar/internal/models"
)

const (
	// sentencePause and clausePause are added after a word ending in
	// sentence or clause punctuation before the final rescale.
	sentencePause = 0.2
	clausePause   = 0.1
)

// EstimateWordTimings distributes totalDuration across the words of text
// proportionally to each word's character length, with pause bonuses after
// punctuation, then rescales so the last word ends exactly at
// totalDuration. This is a lip-sync approximation, not phoneme alignment:
// longer words simply get proportionally more time.
//
// Times are accumulated unrounded and rounded to millisecond precision
// only at the end, so rounding error never compounds across words.
func EstimateWordTimings(text string, totalDuration float64) []models.WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 || totalDuration <= 0 {
		return []models.WordTiming{}
	}

	totalChars := 0
	for _, w := range words {
		totalChars += len(w)
	}

	// Raw durations: proportional share plus punctuation pauses.
	durations := make([]float64, len(words))
	rawTotal := 0.0
	for i, w := range words {
		d := float64(len(w)) / float64(totalChars) * totalDuration
		switch w[len(w)-1] {
		case '.', '!', '?':
			d += sentencePause
		case ',', ';', ':':
			d += clausePause
		}
		durations[i] = d
		rawTotal += d
	}

	// Rescale so the final word ends exactly at the reported duration.
	scale := totalDuration / rawTotal

	timings := make([]models.WordTiming, len(words))
	elapsed := 0.0
	for i, w := range words {
		start := elapsed * scale
		elapsed += durations[i]
		end := elapsed * scale
		timings[i] = models.WordTiming{
			Word:  w,
			Start: round3(start),
			End:   round3(end),
		}
	}
	return timings
}

// round3 rounds to millisecond precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
