package predictor

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when a vector width differs from the model.
var ErrShapeMismatch = errors.New("feature vector shape mismatch")

// ErrInvalidProbabilities is returned when a classifier's output is not a
// probability distribution over the two classes.
var ErrInvalidProbabilities = errors.New("invalid class probabilities")

// ClassifierLogistic is the artifact type tag of LogisticClassifier.
const ClassifierLogistic = "logistic"

// Classifier is a trained binary potability classifier.
type Classifier interface {
	// Predict returns 0 (not potable) or 1 (potable).
	Predict(x []float64) (int, error)
	// PredictProba returns [p(not potable), p(potable)].
	PredictProba(x []float64) ([2]float64, error)
}

// LogisticClassifier is a linear model over standardized features.
type LogisticClassifier struct {
	Weights   []float64
	Bias      float64
	Threshold float64
}

// PredictProba implements Classifier.
func (c *LogisticClassifier) PredictProba(x []float64) ([2]float64, error) {
	if len(x) != len(c.Weights) {
		return [2]float64{}, fmt.Errorf("%w: got %d features, model expects %d", ErrShapeMismatch, len(x), len(c.Weights))
	}

	z := c.Bias
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return [2]float64{}, fmt.Errorf("non-finite feature at position %d", i)
		}
		z += c.Weights[i] * v
	}

	p1 := sigmoid(z)
	return [2]float64{1 - p1, p1}, nil
}

// Predict implements Classifier.
func (c *LogisticClassifier) Predict(x []float64) (int, error) {
	proba, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if proba[1] >= c.threshold() {
		return 1, nil
	}
	return 0, nil
}

// Importance returns |w| normalised to sum to 1.
func (c *LogisticClassifier) Importance() []float64 {
	out := make([]float64, len(c.Weights))
	var total float64
	for i, w := range c.Weights {
		out[i] = math.Abs(w)
		total += out[i]
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

func (c *LogisticClassifier) threshold() float64 {
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return 0.5
	}
	return c.Threshold
}

func sigmoid(z float64) float64 {
	// split by sign to keep exp from overflowing
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
