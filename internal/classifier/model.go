package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strings"

	apperrors "github.com/Ankursingh018as/public-pulse-ai/internal/errors"
)

// Model is a multinomial naive Bayes text classifier exported to JSON by the
// training pipeline. Class probabilities are computed from log-priors plus
// per-token log-likelihoods, with a per-class default for unseen tokens.
type Model struct {
	Classes              []string                      `json:"classes"`
	LogPriors            map[string]float64            `json:"log_priors"`
	LogLikelihoods       map[string]map[string]float64 `json:"log_likelihoods"`
	DefaultLogLikelihood map[string]float64            `json:"default_log_likelihood"`
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// LoadModel reads and validates a model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ModelError{Path: path, Err: err}
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.ModelError{Path: path, Err: err}
	}

	if err := m.validate(); err != nil {
		return nil, apperrors.ModelError{Path: path, Err: err}
	}

	return &m, nil
}

func (m *Model) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	for _, class := range m.Classes {
		if _, ok := m.LogPriors[class]; !ok {
			return fmt.Errorf("missing log prior for class %q", class)
		}
	}
	return nil
}

// Predict returns the arg-max class and its probability for the given text.
// Probabilities come from a softmax over per-class log scores, so the
// confidence is the model's own probability estimate, not a heuristic.
func (m *Model) Predict(text string) (string, float64, error) {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return "", 0, fmt.Errorf("no tokens in text")
	}

	scores := make([]float64, len(m.Classes))
	for i, class := range m.Classes {
		score := m.LogPriors[class]
		likelihoods := m.LogLikelihoods[class]
		def, hasDefault := m.DefaultLogLikelihood[class]
		for _, tok := range tokens {
			if ll, ok := likelihoods[tok]; ok {
				score += ll
			} else if hasDefault {
				score += def
			}
		}
		scores[i] = score
	}

	// Softmax with max subtraction for numerical stability
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}

	bestIdx := 0
	for i := range probs {
		probs[i] /= sum
		if probs[i] > probs[bestIdx] {
			bestIdx = i
		}
	}

	return m.Classes[bestIdx], probs[bestIdx], nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
