package classifier

import (
	"strings"
	"sync"

	"github.com/Ankursingh018as/public-pulse-ai/internal/logger"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

// Result is the outcome of classifying a report text. Confidence 0.0 is
// reserved for "no rule matched and no model available".
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// categoryRule maps an issue category to its trigger substrings. The slice
// order is the tie-break order: when hit counts are equal the earlier
// category wins, keeping classification deterministic.
type categoryRule struct {
	category string
	keywords []string
}

var rules = []categoryRule{
	{"traffic", []string{"traffic", "jam", "congestion", "stuck", "road blocked", "vehicle"}},
	{"garbage", []string{"garbage", "trash", "waste", "rubbish", "bin", "overflow", "smell", "dirty"}},
	{"water", []string{"water", "logging", "flood", "leak", "pipe", "rain"}},
	{"light", []string{"light", "street", "dark", "lamp", "pole", "electricity"}},
	{"road", []string{"pothole", "road damage", "crack", "asphalt", "speed breaker"}},
	{"drainage", []string{"drainage", "drain", "sewage", "gutter", "manhole"}},
}

// CategoryOther is returned when nothing matched.
const CategoryOther = "other"

// Categories returns the fixed rule-based category set in tie-break order.
func Categories() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.category
	}
	return out
}

// Classifier classifies report text into issue categories. A trained model,
// when present at the configured path, takes precedence; the keyword rules
// are always available as a fallback. Classify never fails outward.
type Classifier struct {
	modelPath string

	mu     sync.Mutex
	loaded bool
	model  *Model
}

// New creates a classifier. modelPath may point at a nonexistent file; that
// only disables the model path, it is not an error.
func New(modelPath string) *Classifier {
	return &Classifier{modelPath: modelPath}
}

// Classify maps raw text to an issue category and confidence
func (c *Classifier) Classify(text string) Result {
	if m := c.getModel(); m != nil {
		category, confidence, err := m.Predict(text)
		if err == nil {
			return Result{Category: category, Confidence: confidence}
		}
		logger.Error("Model prediction failed, falling back to rules", "error", err)
	}
	return c.classifyByRules(text)
}

// classifyByRules counts trigger-substring hits per category and picks the
// best one. A single hit yields 0.6; confidence saturates at 0.95.
func (c *Classifier) classifyByRules(text string) Result {
	lower := strings.ToLower(text)

	bestCategory := ""
	bestHits := 0
	for _, rule := range rules {
		hits := utils.CountHits(lower, rule.keywords)
		if hits > bestHits {
			bestHits = hits
			bestCategory = rule.category
		}
	}

	if bestHits == 0 {
		return Result{Category: CategoryOther, Confidence: 0.0}
	}

	confidence := 0.5 + float64(bestHits)*0.1
	if confidence > 0.95 {
		confidence = 0.95
	}
	return Result{Category: bestCategory, Confidence: confidence}
}

// getModel lazily loads the trained model at most once, guarded so that
// concurrent first callers trigger a single load.
func (c *Classifier) getModel() *Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.model
	}
	c.loaded = true

	if c.modelPath == "" {
		return nil
	}

	model, err := LoadModel(c.modelPath)
	if err != nil {
		if isNotExist(err) {
			logger.Info("No trained classifier model, using rule-based fallback", "path", c.modelPath)
		} else {
			logger.Error("Failed to load classifier model", "path", c.modelPath, "error", err)
		}
		return nil
	}

	logger.Info("Loaded classifier model", "path", c.modelPath, "classes", len(model.Classes))
	c.model = model
	return c.model
}

// Reload discards the cached model so the next Classify call re-reads the
// model file. Used after retraining.
func (c *Classifier) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.model = nil
}

// ModelLoaded reports whether a trained model is currently active.
func (c *Classifier) ModelLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && c.model != nil
}
