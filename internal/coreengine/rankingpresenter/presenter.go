package rankingpresenter

import (
	"fmt"
	"sort"

	"bambara-asr-leaderboard/internal/datastore"
)

// Medals decorate the models holding the top three distinct combined
// scores. Ties share a medal.
var medals = []string{"🏆", "🥈", "🥉"}

// Weights is a WER/CER weight pair, normalized to fractions summing to 1.
type Weights struct {
	WER float64
	CER float64
}

// NormalizeWeights turns caller-supplied weights (typically 0-100 slider
// values, but any non-negative pair works) into fractions summing to 1.
// A pair that cannot be normalized, because it is negative or sums to
// zero, falls back to the provided defaults. Renormalization is the
// documented policy: skewed inputs like 30/30 are accepted and scaled,
// never silently used as-is.
func NormalizeWeights(wer, cer, defaultWER, defaultCER float64) Weights {
	if wer < 0 || cer < 0 || wer+cer == 0 {
		wer, cer = defaultWER, defaultCER
	}
	sum := wer + cer
	return Weights{WER: wer / sum, CER: cer / sum}
}

// Description renders the human caption for a weight pair, as shown next
// to the ranking controls.
func (w Weights) Description() string {
	switch {
	case w.CER == 0:
		return "Ranking by WER only"
	case w.WER == 0:
		return "Ranking by CER only"
	case w.WER == w.CER:
		return "Balanced ranking: WER and CER weighted equally"
	case w.WER > w.CER:
		return fmt.Sprintf("Ranking favors WER (%.0f%% WER / %.0f%% CER)", w.WER*100, w.CER*100)
	default:
		return fmt.Sprintf("Ranking favors CER (%.0f%% WER / %.0f%% CER)", w.WER*100, w.CER*100)
	}
}

// RankedEntry is one display row of the ranked leaderboard.
type RankedEntry struct {
	Rank          int               `json:"rank"`
	DisplayName   string            `json:"display_name"`
	ModelName     string            `json:"model_name"`
	WER           string            `json:"wer_pct"`
	CER           string            `json:"cer_pct"`
	CombinedScore string            `json:"combined_score_pct"`
	Timestamp     string            `json:"timestamp"`
	License       datastore.License `json:"license,omitempty"`
	ModelURL      string            `json:"model_url,omitempty"`
	Combined      float64           `json:"-"`
}

// Rank recomputes each entry's combined score under the given weights,
// sorts ascending (this is an error-rate leaderboard: lower is better) and
// decorates the top three distinct scores with medals. The sort is stable,
// so entries with equal combined scores keep their original table order.
func Rank(table []datastore.LeaderboardEntry, w Weights) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(table))
	for _, e := range table {
		combined := w.WER*e.WER + w.CER*e.CER
		ranked = append(ranked, RankedEntry{
			ModelName:     e.ModelName,
			WER:           FormatPercent(e.WER),
			CER:           FormatPercent(e.CER),
			CombinedScore: FormatPercent(combined),
			Timestamp:     e.Timestamp,
			License:       e.License,
			ModelURL:      e.ModelURL,
			Combined:      combined,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Combined < ranked[j].Combined
	})

	medalFor := medalAssignments(ranked)
	for i := range ranked {
		ranked[i].Rank = i + 1
		if m, ok := medalFor[ranked[i].Combined]; ok {
			ranked[i].DisplayName = m + " " + ranked[i].ModelName
		} else {
			ranked[i].DisplayName = ranked[i].ModelName
		}
	}
	return ranked
}

// medalAssignments maps the three lowest distinct combined scores to their
// medals. Ranked must already be sorted ascending.
func medalAssignments(ranked []RankedEntry) map[float64]string {
	assigned := make(map[float64]string, len(medals))
	for _, e := range ranked {
		if _, ok := assigned[e.Combined]; ok {
			continue
		}
		if len(assigned) == len(medals) {
			break
		}
		assigned[e.Combined] = medals[len(assigned)]
	}
	return assigned
}

// Best returns the entry with the lowest combined score under the given
// weights, or false when the table is empty.
func Best(table []datastore.LeaderboardEntry, w Weights) (datastore.LeaderboardEntry, bool) {
	if len(table) == 0 {
		return datastore.LeaderboardEntry{}, false
	}
	best := table[0]
	bestScore := w.WER*best.WER + w.CER*best.CER
	for _, e := range table[1:] {
		score := w.WER*e.WER + w.CER*e.CER
		if score < bestScore {
			best, bestScore = e, score
		}
	}
	return best, true
}

// DetailRow is one line of the per-model performance table.
type DetailRow struct {
	Task   string `json:"task"`
	Metric string `json:"metric"`
	Score  string `json:"score"`
}

// ModelDetail projects one model's metrics as display rows. Returns false
// when the model has no leaderboard entry; absence of data is not an
// error.
func ModelDetail(table []datastore.LeaderboardEntry, modelName string) ([]DetailRow, bool) {
	for _, e := range table {
		if e.ModelName != modelName {
			continue
		}
		return []DetailRow{
			{Task: "Bambara ASR", Metric: "Word Error Rate (WER)", Score: FormatPercent(e.WER)},
			{Task: "Bambara ASR", Metric: "Character Error Rate (CER)", Score: FormatPercent(e.CER)},
			{Task: "Bambara ASR", Metric: "Combined Score", Score: FormatPercent(e.CombinedScore)},
		}, true
	}
	return nil, false
}

// ComparisonRow is one metric line of a pairwise model comparison.
// Delta = metric(A) − metric(B); on an error-rate board a negative delta
// means model A is better. Color and label semantics belong to the caller.
type ComparisonRow struct {
	Category string  `json:"category"`
	Metric   string  `json:"metric"`
	ModelA   string  `json:"model_a"`
	ModelB   string  `json:"model_b"`
	Delta    float64 `json:"delta"`
}

// Comparison is the result of comparing two models. When Info is set the
// comparison could not be made and Rows is empty.
type Comparison struct {
	Rows []ComparisonRow `json:"rows,omitempty"`
	Info string          `json:"info,omitempty"`
}

// Compare builds the pairwise metric deltas for two distinct models. A
// same-model request or a model without data yields a structured Info
// result rather than an error.
func Compare(table []datastore.LeaderboardEntry, modelA, modelB string) Comparison {
	if modelA == modelB {
		return Comparison{Info: "Please select two different models to compare."}
	}

	a, okA := find(table, modelA)
	b, okB := find(table, modelB)
	if !okA || !okB {
		return Comparison{Info: "One or both selected models have no data to compare."}
	}

	row := func(metric string, va, vb float64) ComparisonRow {
		return ComparisonRow{
			Category: "ASR Performance",
			Metric:   metric,
			ModelA:   fmt.Sprintf("%.3f", va),
			ModelB:   fmt.Sprintf("%.3f", vb),
			Delta:    va - vb,
		}
	}
	return Comparison{Rows: []ComparisonRow{
		row("Word Error Rate (WER)", a.WER, b.WER),
		row("Character Error Rate (CER)", a.CER, b.CER),
		row("Combined Score", a.CombinedScore, b.CombinedScore),
	}}
}

func find(table []datastore.LeaderboardEntry, modelName string) (datastore.LeaderboardEntry, bool) {
	for _, e := range table {
		if e.ModelName == modelName {
			return e, true
		}
	}
	return datastore.LeaderboardEntry{}, false
}

// ModelNames returns the sorted distinct model names in the table.
func ModelNames(table []datastore.LeaderboardEntry) []string {
	names := make([]string, 0, len(table))
	for _, e := range table {
		names = append(names, e.ModelName)
	}
	sort.Strings(names)
	return names
}

// FormatPercent renders an error rate as a percentage with two decimals:
// 0.4750 → "47.50%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
