package submissionmanagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/coreengine/rankingpresenter"
	"bambara-asr-leaderboard/internal/coreengine/scoringengine"
	"bambara-asr-leaderboard/internal/datastore"
	"bambara-asr-leaderboard/internal/logging"
	"bambara-asr-leaderboard/internal/objectstore"
	"bambara-asr-leaderboard/internal/referencestore"
	"bambara-asr-leaderboard/internal/telemetry"
)

// Result is the outcome of one accepted submission.
type Result struct {
	Message       string
	WER           float64
	CER           float64
	CombinedScore float64
	Scored        int
	Skipped       int
	Table         []datastore.LeaderboardEntry
}

// Pipeline orchestrates one submission end to end: validate, score, upsert
// into the store, persist, archive. It either completes or fails at the
// point of failure; no partial leaderboard row is ever written.
type Pipeline struct {
	cfg       config.ScoringConfig
	refs      referencestore.ReferenceSet
	refIDs    map[string]struct{}
	validator *Validator
	engine    *scoringengine.Engine
	store     *datastore.LeaderboardStore
	archive   *objectstore.MinioClient

	now func() time.Time
}

// NewPipeline wires the pipeline. archive may be nil; archival is then
// skipped.
func NewPipeline(cfg config.ScoringConfig, refs referencestore.ReferenceSet, store *datastore.LeaderboardStore, archive *objectstore.MinioClient) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		refs:      refs,
		refIDs:    refs.IDs(),
		validator: NewValidator(cfg.ModelHubHost),
		engine:    scoringengine.New(cfg.ErrorCeiling),
		store:     store,
		archive:   archive,
		now:       time.Now,
	}
}

// Process validates and scores the uploaded CSV, merges the result into
// the leaderboard, and persists it. Validation and scoring failures come
// back as errors carrying a user-facing message; only store persistence
// problems are internal.
func (p *Pipeline) Process(ctx context.Context, sub Submission, header []string, rawCSV []byte, originalFilename string) (Result, error) {
	submissionID := uuid.New().String()
	log := logging.Log.With().Str("submission_id", submissionID).Str("model", sub.ModelName).Logger()
	log.Info().Int("rows", len(sub.Rows)).Msg("processing submission")

	if verr := p.validator.Validate(header, sub, p.refIDs); verr != nil {
		telemetry.SubmissionsTotal.WithLabelValues("rejected").Inc()
		log.Info().Str("kind", string(verr.Kind)).Msg("submission rejected")
		return Result{}, verr
	}

	agg, err := p.engine.Score(sub.Rows, p.refs)
	if err != nil {
		telemetry.SubmissionsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, scoringengine.ErrNoValidSamples) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("error calculating metrics: %w", err)
	}
	telemetry.SamplesScoredTotal.Add(float64(agg.Scored()))
	telemetry.SamplesSkippedTotal.Add(float64(agg.Skipped))

	weights := rankingpresenter.NormalizeWeights(p.cfg.DefaultWERWeight, p.cfg.DefaultCERWeight, p.cfg.DefaultWERWeight, p.cfg.DefaultCERWeight)
	entry := datastore.LeaderboardEntry{
		ModelName:     sub.ModelName,
		WER:           agg.WER,
		CER:           agg.CER,
		CombinedScore: weights.WER*agg.WER + weights.CER*agg.CER,
		License:       sub.License,
		ModelURL:      sub.ModelURL,
	}
	entry.Touch(p.now())

	table, err := p.store.UpsertAndPersist(entry)
	if err != nil {
		telemetry.SubmissionsTotal.WithLabelValues("failed").Inc()
		return Result{}, fmt.Errorf("failed to update leaderboard: %w", err)
	}

	// Archival is best effort: a scored and persisted submission is never
	// failed because the raw upload could not be kept.
	if p.archive != nil {
		if _, err := p.archive.ArchiveSubmission(ctx, originalFilename, rawCSV); err != nil {
			log.Warn().Err(err).Msg("failed to archive submission upload")
		}
	}

	telemetry.SubmissionsTotal.WithLabelValues("accepted").Inc()
	log.Info().
		Int("scored", agg.Scored()).
		Int("skipped", agg.Skipped).
		Float64("wer", agg.WER).
		Float64("cer", agg.CER).
		Msg("submission accepted")

	return Result{
		Message: fmt.Sprintf("Submission processed successfully! WER: %s, CER: %s, Combined Score: %s (%d/%d samples scored)",
			rankingpresenter.FormatPercent(agg.WER),
			rankingpresenter.FormatPercent(agg.CER),
			rankingpresenter.FormatPercent(entry.CombinedScore),
			agg.Scored(), agg.Scored()+agg.Skipped),
		WER:           agg.WER,
		CER:           agg.CER,
		CombinedScore: entry.CombinedScore,
		Scored:        agg.Scored(),
		Skipped:       agg.Skipped,
		Table:         table,
	}, nil
}
