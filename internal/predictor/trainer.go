package predictor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"aquawatch/internal/processing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrainOptions controls logistic regression fitting.
type TrainOptions struct {
	LearningRate   float64
	Epochs         int
	L2             float64
	Threshold      float64
	BalanceClasses bool
}

// DefaultTrainOptions are used by aquawatch-train.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		LearningRate:   0.1,
		Epochs:         1000,
		L2:             0.001,
		Threshold:      0.5,
		BalanceClasses: true,
	}
}

// TrainLogistic fits a logistic classifier with batch gradient descent.
// Rows are expected to be standardized already.
func TrainLogistic(X [][]float64, y []int, opts TrainOptions) (*LogisticClassifier, error) {
	if len(X) == 0 {
		return nil, processing.ErrEmptyMatrix
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("rows and labels differ: %d vs %d", len(X), len(y))
	}
	width := len(X[0])

	// per-sample weights; balanced means each class contributes equally
	sampleWeight := make([]float64, len(y))
	counts := [2]int{}
	for _, label := range y {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("labels must be 0 or 1, got %d", label)
		}
		counts[label]++
	}
	for i, label := range y {
		sampleWeight[i] = 1
		if opts.BalanceClasses && counts[label] > 0 {
			sampleWeight[i] = float64(len(y)) / (2 * float64(counts[label]))
		}
	}
	var totalWeight float64
	for _, w := range sampleWeight {
		totalWeight += w
	}

	weights := make([]float64, width)
	var bias float64
	grad := make([]float64, width)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i, row := range X {
			if len(row) != width {
				return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
			}
			z := bias
			for j, v := range row {
				z += weights[j] * v
			}
			diff := (sigmoid(z) - float64(y[i])) * sampleWeight[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			gradBias += diff
		}

		for j := range weights {
			weights[j] -= opts.LearningRate * (grad[j]/totalWeight + opts.L2*weights[j])
		}
		bias -= opts.LearningRate * gradBias / totalWeight
	}

	return &LogisticClassifier{Weights: weights, Bias: bias, Threshold: opts.Threshold}, nil
}

// Accuracy is the fraction of rows c labels correctly.
func Accuracy(c Classifier, X [][]float64, y []int) (float64, error) {
	if len(X) == 0 {
		return 0, processing.ErrEmptyMatrix
	}
	correct := 0
	for i, row := range X {
		label, err := c.Predict(row)
		if err != nil {
			return 0, err
		}
		if label == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}

// CrossValidate returns the accuracy of each of k folds.
func CrossValidate(X [][]float64, y []int, k int, seed int64, opts TrainOptions) ([]float64, error) {
	if k < 2 {
		return nil, fmt.Errorf("cross validation needs at least 2 folds, got %d", k)
	}
	if len(X) < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", len(X), k)
	}

	idx := rand.New(rand.NewSource(seed)).Perm(len(X))
	scores := make([]float64, 0, k)
	for fold := 0; fold < k; fold++ {
		var trainX, testX [][]float64
		var trainY, testY []int
		for pos, i := range idx {
			if pos%k == fold {
				testX = append(testX, X[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}

		model, err := TrainLogistic(trainX, trainY, opts)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		acc, err := Accuracy(model, testX, testY)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		scores = append(scores, acc)
	}
	return scores, nil
}

// TrainConfig configures the full training pipeline.
type TrainConfig struct {
	FeatureSet   string
	TestFraction float64
	Folds        int
	Seed         int64
	Options      TrainOptions
}

// DefaultTrainConfig returns the standard training settings.
func DefaultTrainConfig(featureSet string) TrainConfig {
	return TrainConfig{
		FeatureSet:   featureSet,
		TestFraction: 0.2,
		Folds:        5,
		Seed:         42,
		Options:      DefaultTrainOptions(),
	}
}

// Train runs clean, split, fit scaler, fit classifier, evaluate and returns
// the artifact ready to be written.
func Train(ds *processing.Dataset, cfg TrainConfig, logger *zap.Logger) (*Artifact, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("training dataset is empty")
	}

	// 1. clean
	clean, report := processing.Clean(ds)
	logger.Info("Dataset cleaned",
		zap.Int("rows", clean.Len()),
		zap.Int("dropped_rows", report.DroppedRows),
		zap.Any("filled_medians", report.FilledMedians),
	)

	// 2. split
	split, err := processing.StratifiedSplit(clean.X, clean.Labels(), cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset split", zap.Int("train", len(split.XTrain)), zap.Int("test", len(split.XTest)))

	// 3. scaler, fitted on the training half only
	processor, err := processing.NewFeatureProcessor(clean.FeatureNames, nil, logger)
	if err != nil {
		return nil, err
	}
	scaler, err := processor.Fit(split.XTrain)
	if err != nil {
		return nil, err
	}
	xTrain := processor.TransformMatrix(split.XTrain)
	xTest := processor.TransformMatrix(split.XTest)

	// 4. classifier
	model, err := TrainLogistic(xTrain, split.YTrain, cfg.Options)
	if err != nil {
		return nil, err
	}

	// 5. evaluate
	trainAcc, err := Accuracy(model, xTrain, split.YTrain)
	if err != nil {
		return nil, err
	}
	testAcc, err := Accuracy(model, xTest, split.YTest)
	if err != nil {
		return nil, err
	}
	cvScores, err := CrossValidate(xTrain, split.YTrain, cfg.Folds, cfg.Seed, cfg.Options)
	if err != nil {
		return nil, err
	}

	importance := make(map[string]float64, len(clean.FeatureNames))
	for i, v := range model.Importance() {
		importance[clean.FeatureNames[i]] = v
	}

	logger.Info("Model trained",
		zap.Float64("train_accuracy", trainAcc),
		zap.Float64("test_accuracy", testAcc),
		zap.Float64("cv_mean", mean(cvScores)),
		zap.Float64s("cv_scores", cvScores),
	)

	return &Artifact{
		Version:      uuid.NewString(),
		TrainedAt:    time.Now().UTC(),
		FeatureSet:   cfg.FeatureSet,
		FeatureNames: clean.FeatureNames,
		Scaler:       scaler,
		Classifier: ClassifierSpec{
			Type:      ClassifierLogistic,
			Weights:   model.Weights,
			Bias:      model.Bias,
			Threshold: model.Threshold,
		},
		Metrics: Metrics{
			TrainAccuracy:     trainAcc,
			TestAccuracy:      testAcc,
			CVScores:          cvScores,
			FeatureImportance: importance,
		},
	}, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
