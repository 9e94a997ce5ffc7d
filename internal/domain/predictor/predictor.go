package predictor

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrModelUnavailable signals a model name the bank does not serve.
	ErrModelUnavailable = crerr.New("predictor model unavailable")
	// ErrFeatureMismatch signals a feature vector missing required keys.
	ErrFeatureMismatch = crerr.New("predictor feature mismatch")
)

// Model names served by the bank.
const (
	ModelShotsPerMinute      = "spm"
	ModelShotType            = "shotType"
	ModelShotQualityBaseline = "shotQuality_PLSQA"
	ModelShotQualityRefined  = "shotQuality_FFSQ"
	ModelShotQualityModifier = "shotQuality_modifier"
	ModelFoulRate            = "foulRate"
	ModelCardRate            = "cardRate"
)

// Features is the flat numeric feature vector every model scores against.
// Categorical inputs are encoded by the caller before scoring.
type Features map[string]float64

// Require reports ErrFeatureMismatch naming the first missing key.
func (f Features) Require(keys ...string) error {
	for _, k := range keys {
		if _, ok := f[k]; !ok {
			return crerr.Wrapf(ErrFeatureMismatch, "missing feature %q", k)
		}
	}
	return nil
}

// Output is a single scoring result. Value carries regression outputs,
// Classes carries class probabilities for categorical models, Confidence is
// the sample-size weight in [0,1] used for shrinkage-aware callers.
type Output struct {
	Value      float64
	Confidence float64
	Classes    map[string]float64
}

// Scorer is the uniform scoring surface over all pretrained models.
type Scorer interface {
	Score(model string, features Features) (Output, error)
}
