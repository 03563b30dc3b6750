// Package classifier scores a voice feature vector for Parkinson's disease.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/terraincognita07/vocalis/internal/features"
)

type Classifier interface {
	Predict(ctx context.Context, vector features.Vector) (int, error)
}

var ErrInvalidModel = errors.New("invalid model")

// LinearModel standardizes each feature and applies a logistic decision.
// A probability at or above Threshold yields label 1.
type LinearModel struct {
	Means     []float64 `json:"means"`
	Scales    []float64 `json:"scales"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold"`
}

func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseLinearModel(raw)
}

func ParseLinearModel(raw []byte) (*LinearModel, error) {
	model := &LinearModel{}
	if err := json.Unmarshal(raw, model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.Threshold == 0 {
		model.Threshold = 0.5
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func (model *LinearModel) Validate() error {
	if len(model.Means) != features.Count || len(model.Scales) != features.Count || len(model.Weights) != features.Count {
		return fmt.Errorf("%w: expected %d means, scales and weights", ErrInvalidModel, features.Count)
	}
	for index, scale := range model.Scales {
		if scale == 0 || math.IsNaN(scale) {
			return fmt.Errorf("%w: zero scale for %s", ErrInvalidModel, features.All()[index].Label)
		}
	}
	if model.Threshold <= 0 || model.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be between 0 and 1", ErrInvalidModel)
	}
	return nil
}

func (model *LinearModel) Probability(vector features.Vector) float64 {
	score := model.Intercept
	for index, value := range vector {
		score += model.Weights[index] * (value - model.Means[index]) / model.Scales[index]
	}
	return 1 / (1 + math.Exp(-score))
}

func (model *LinearModel) Predict(ctx context.Context, vector features.Vector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for index, value := range vector {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, fmt.Errorf("non-finite value for %s", features.All()[index].Label)
		}
	}
	if model.Probability(vector) >= model.Threshold {
		return 1, nil
	}
	return 0, nil
}
