package scoringengine

import (
	"errors"
	"strings"

	"bambara-asr-leaderboard/internal/coreengine/metricscalculator"
	"bambara-asr-leaderboard/internal/coreengine/textnormalizer"
	"bambara-asr-leaderboard/internal/logging"
)

// ErrNoValidSamples is returned when not a single sample of a submission
// could be scored. An all-empty submission must fail loudly rather than
// produce a misleading 0.0 average.
var ErrNoValidSamples = errors.New("no valid samples for WER/CER calculation")

// ScoredSample is the per-row scoring result kept for inspection and
// archival.
type ScoredSample struct {
	ID           string  `json:"id"`
	Reference    string  `json:"reference"`
	Hypothesis   string  `json:"hypothesis"`
	RefWordCount int     `json:"ref_word_count"`
	RefCharCount int     `json:"ref_char_count"`
	WER          float64 `json:"wer"`
	CER          float64 `json:"cer"`
}

// Aggregate is the outcome of scoring one full submission.
type Aggregate struct {
	WER     float64
	CER     float64
	Samples []ScoredSample
	// Skipped counts rows that were excluded from the aggregate: empty
	// reference or hypothesis after normalization, or a metric computation
	// failure. Callers surface it so "3/5 scored" is distinguishable from
	// "5/5 scored".
	Skipped int
}

// Scored returns the number of samples that contributed to the aggregate.
func (a Aggregate) Scored() int {
	return len(a.Samples)
}

// Engine scores validated submissions against the reference set.
type Engine struct {
	// errorCeiling caps each per-sample WER/CER before aggregation.
	errorCeiling float64
}

// New creates an Engine with the given per-sample error ceiling.
func New(errorCeiling float64) *Engine {
	return &Engine{errorCeiling: errorCeiling}
}

// Score normalizes and scores every (id, hypothesis) pair against the
// reference transcripts, then aggregates with an unweighted arithmetic
// mean: every sample contributes equally regardless of its length.
//
// Rows whose reference or hypothesis normalizes to the empty string are
// skipped and counted, as are rows where a metric cannot be computed.
// If nothing remains, ErrNoValidSamples is returned.
func (e *Engine) Score(rows []Row, references map[string]string) (Aggregate, error) {
	agg := Aggregate{Samples: make([]ScoredSample, 0, len(rows))}

	var sumWER, sumCER float64
	for _, row := range rows {
		refRaw, ok := references[row.ID]
		if !ok {
			// Validation guarantees the id sets match; an unknown id here
			// means the caller skipped validation. Skip rather than panic.
			logging.Log.Warn().Str("id", row.ID).Msg("sample id not in reference set, skipping")
			agg.Skipped++
			continue
		}

		reference := textnormalizer.Normalize(refRaw)
		hypothesis := textnormalizer.Normalize(row.Text)
		if reference == "" || hypothesis == "" {
			agg.Skipped++
			continue
		}

		wer, err := metricscalculator.CalculateWER(reference, hypothesis)
		if err != nil {
			logging.Log.Warn().Err(err).Str("id", row.ID).Msg("WER computation failed, skipping sample")
			agg.Skipped++
			continue
		}
		cer, err := metricscalculator.CalculateCER(reference, hypothesis)
		if err != nil {
			logging.Log.Warn().Err(err).Str("id", row.ID).Msg("CER computation failed, skipping sample")
			agg.Skipped++
			continue
		}

		wer = metricscalculator.Clamp(wer, e.errorCeiling)
		cer = metricscalculator.Clamp(cer, e.errorCeiling)

		agg.Samples = append(agg.Samples, ScoredSample{
			ID:           row.ID,
			Reference:    reference,
			Hypothesis:   hypothesis,
			RefWordCount: len(strings.Fields(reference)),
			RefCharCount: len([]rune(reference)),
			WER:          wer,
			CER:          cer,
		})
		sumWER += wer
		sumCER += cer
	}

	if len(agg.Samples) == 0 {
		return agg, ErrNoValidSamples
	}

	agg.WER = sumWER / float64(len(agg.Samples))
	agg.CER = sumCER / float64(len(agg.Samples))
	return agg, nil
}

// Row is one (id, hypothesis) pair of a submission.
type Row struct {
	ID   string
	Text string
}
