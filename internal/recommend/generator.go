package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/internal/resilience"
	"github.com/noctalia/sleepsense/pkg/models"
)

// minUsefulLength is the shortest generated body accepted as real advice.
const minUsefulLength = 50

// Generator produces recommendation text for a prediction. It never fails
// outward: the cache is consulted first, then the generative service under
// the retry policy, and finally the rule-based fallback. Whatever text is
// produced gets the standard header and disclaimer footer and is cached
// under the input fingerprint.
type Generator struct {
	client    TextClient
	cache     Cache
	retry     resilience.RetryPolicy
	publisher *events.Publisher
}

type GeneratorConfig struct {
	Client    TextClient
	Cache     Cache
	Retry     resilience.RetryPolicy
	Publisher *events.Publisher
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	cache := cfg.Cache
	if cache == nil {
		cache = NewFIFOCache(DefaultCacheCapacity)
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = resilience.DefaultRetryPolicy()
	}
	if retry.IsRateLimit == nil {
		retry.IsRateLimit = IsRateLimit
	}

	return &Generator{
		client:    cfg.Client,
		cache:     cache,
		retry:     retry,
		publisher: cfg.Publisher,
	}
}

// Generate returns formatted recommendation text for the given input and
// predicted hours.
func (g *Generator) Generate(ctx context.Context, in models.PredictionInput, prediction float64) string {
	fingerprint := Fingerprint(in, prediction)

	if text, ok := g.cache.Get(fingerprint); ok {
		logger.WithComponent("recommend").Debug("Using cached recommendation")
		return text
	}

	body, err := g.generateBody(ctx, in, prediction)
	if err != nil {
		logger.WithComponent("recommend").Warnf(
			"Generative service exhausted, using rule-based fallback: %v", err)
		g.publisher.RecommendationFallback("generative service exhausted")
		body = fallbackBody(in, prediction)
	} else if len(strings.TrimSpace(body)) < minUsefulLength {
		logger.WithComponent("recommend").Warn("Generated recommendation too short, using rule-based fallback")
		g.publisher.RecommendationFallback("generated text too short")
		body = fallbackBody(in, prediction)
	}

	text := wrap(body, prediction)
	g.cache.Put(fingerprint, text)
	return text
}

func (g *Generator) generateBody(ctx context.Context, in models.PredictionInput, prediction float64) (string, error) {
	if g.client == nil {
		return "", ErrGenerationFailed
	}

	prompt := buildPrompt(in, prediction)

	var body string
	err := g.retry.Do(ctx, func(ctx context.Context) error {
		text, err := g.client.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		body = text
		return nil
	})
	return body, err
}

func buildPrompt(in models.PredictionInput, prediction float64) string {
	return fmt.Sprintf(`As an expert sleep specialist, analyze the following sleep and lifestyle data to provide concise, practical recommendations:

**DATA:**
- Predicted Sleep: %.2f hours
- Workout: %.1fh | Reading: %.1fh
- Screen Time: %.1fh | Work: %.1fh
- Caffeine: %.0fmg | Relaxation: %.1fh

**TASK:**
Provide 3-5 specific, actionable recommendations focusing on the most impactful changes. Keep explanations brief but clear.

Format as a simple list with no markdown or special formatting:
1. Most important recommendation
2. Second priority
3. Additional suggestion
etc.

Focus only on the most critical factors affecting sleep quality.`,
		prediction,
		in.WorkoutTime, in.ReadingTime,
		in.PhoneTime, in.WorkHours,
		in.CaffeineIntake, in.RelaxationTime)
}

// wrap surrounds the advice body with the header that restates the
// prediction and the standing disclaimer footer.
func wrap(body string, prediction float64) string {
	header := fmt.Sprintf(`# Key Sleep Insights

**Your Predicted Sleep: %.2f hours**

Most important recommendations:

`, prediction)

	footer := `

---

*For detailed advice, consult a sleep specialist*`

	return header + body + footer
}
