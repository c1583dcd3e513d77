package main

import (
	"context"
	"os"

	"bambara-asr-leaderboard/internal/apigateway"
	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/coreengine/rankingpresenter"
	"bambara-asr-leaderboard/internal/datastore"
	"bambara-asr-leaderboard/internal/leaderboardmanagement"
	"bambara-asr-leaderboard/internal/logging"
	"bambara-asr-leaderboard/internal/objectstore"
	"bambara-asr-leaderboard/internal/referencestore"
	"bambara-asr-leaderboard/internal/submissionmanagement"
)

func main() {
	cfg, err := config.Load(os.Getenv("LEADERBOARD_CONFIG"))
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	minioClient, err := objectstore.NewMinioClient(ctx, cfg.Minio)
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if minioClient == nil {
		logging.Log.Info().Msg("object storage not configured, submission archival disabled")
	}

	// The reference set is the one thing the service cannot run without:
	// refuse to start rather than score against a partial mapping.
	refs, err := referencestore.Load(ctx, cfg.Reference, minioClient)
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to load reference set")
	}

	store := datastore.NewLeaderboardStore(cfg.Store.LeaderboardFile)
	if _, err := store.Load(); err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to open leaderboard store")
	}

	pipeline := submissionmanagement.NewPipeline(cfg.Scoring, refs, store, minioClient)
	defaultWeights := rankingpresenter.NormalizeWeights(
		cfg.Scoring.DefaultWERWeight, cfg.Scoring.DefaultCERWeight,
		cfg.Scoring.DefaultWERWeight, cfg.Scoring.DefaultCERWeight,
	)

	router := apigateway.SetupRouter(
		submissionmanagement.NewHandler(pipeline, defaultWeights),
		leaderboardmanagement.NewHandler(store, cfg.Scoring),
		len(refs),
	)

	logging.Log.Info().Str("addr", cfg.Server.ListenAddr).Msg("starting leaderboard server")
	if err := router.Run(cfg.Server.ListenAddr); err != nil {
		logging.Log.Fatal().Err(err).Msg("server exited")
	}
}
