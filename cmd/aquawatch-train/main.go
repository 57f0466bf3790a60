package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"aquawatch/common/logger"
	"aquawatch/internal/config"
	"aquawatch/internal/predictor"
	"aquawatch/internal/processing"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", "data/water_potability.csv", "training CSV with a potability column")
	out := flag.String("out", cfg.Model.Path, "artifact destination (file path or s3://bucket/key)")
	featureSet := flag.String("feature-set", cfg.Model.FeatureSet, "full or sensor")
	folds := flag.Int("folds", 5, "cross validation folds")
	seed := flag.Int64("seed", 42, "split and fold seed")
	flag.Parse()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "aquawatch-train")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), log, *csvPath, *out, strings.ToLower(*featureSet), *folds, *seed, cfg.Model.S3Region); err != nil {
		log.Fatal("Training failed", zap.Error(err))
	}
}

func run(ctx context.Context, log *zap.Logger, csvPath, out, featureSet string, folds int, seed int64, region string) error {
	// 1. load
	names, err := processing.FeatureNames(featureSet)
	if err != nil {
		return err
	}
	ds, err := processing.LoadCSVFile(csvPath, names)
	if err != nil {
		return err
	}

	summary := processing.Summarize(ds)
	log.Info("Dataset loaded",
		zap.String("path", csvPath),
		zap.Int("records", summary.TotalRecords),
		zap.Int("potable", summary.PotableCount),
		zap.Int("non_potable", summary.NonPotableCount),
		zap.Int("missing_target", summary.MissingTarget),
	)
	for _, name := range names {
		fs := summary.FeatureStats[name]
		log.Info("Feature summary",
			zap.String("feature", name),
			zap.Float64("mean", fs.Mean),
			zap.Float64("std", fs.Std),
			zap.Float64("min", fs.Min),
			zap.Float64("max", fs.Max),
			zap.Int("missing", fs.Missing),
		)
	}

	// 2. train
	trainCfg := predictor.DefaultTrainConfig(featureSet)
	trainCfg.Folds = folds
	trainCfg.Seed = seed
	artifact, err := predictor.Train(ds, trainCfg, log)
	if err != nil {
		return err
	}

	// 3. write
	data, err := artifact.Encode()
	if err != nil {
		return err
	}
	dest, err := predictor.NewArtifactSource(out, region)
	if err != nil {
		return err
	}
	if err := dest.Write(ctx, data); err != nil {
		return err
	}

	log.Info("Model artifact written",
		zap.String("location", dest.Location()),
		zap.String("version", artifact.Version),
		zap.Float64("train_accuracy", artifact.Metrics.TrainAccuracy),
		zap.Float64("test_accuracy", artifact.Metrics.TestAccuracy),
		zap.Float64s("cv_scores", artifact.Metrics.CVScores),
	)
	return nil
}
