// Package parser owns the ordered intent pattern library and turns raw text
// into a ParsedQuery. Classification is deterministic: same text, same intent.
package parser

import (
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/common/metrics"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

// DefaultConfidenceFloor is the minimum confidence required to keep a
// classified intent; anything below is forced to unknown.
const DefaultConfidenceFloor = 0.2

// scoreScale maps the accumulated pattern score onto [0,1]. A score of
// scoreScale or more saturates at confidence 1.
const scoreScale = 10.0

type Parser struct {
	defs            []intentDef
	confidenceFloor float64
	logger          logger.Logger
}

type Option func(*Parser)

// WithConfidenceFloor overrides the default classification floor.
func WithConfidenceFloor(floor float64) Option {
	return func(p *Parser) { p.confidenceFloor = floor }
}

func New(log logger.Logger, opts ...Option) *Parser {
	p := &Parser{
		defs:            intentDefs,
		confidenceFloor: DefaultConfidenceFloor,
		logger:          log.WithFields(map[string]interface{}{"component": "parser"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse classifies text into the closed intent vocabulary. Total: for any
// input it returns a ParsedQuery; the worst case is
// {intent: unknown, confidence: 0}.
func (p *Parser) Parse(text string) *query.ParsedQuery {
	lower := strings.ToLower(strings.TrimSpace(text))

	bestIntent := query.IntentUnknown
	bestScore := 0.0

	for _, def := range p.defs {
		score := p.score(lower, def)
		// Strictly greater: ties resolve to the earlier definition,
		// which mirrors handler registration order.
		if score > bestScore {
			bestScore = score
			bestIntent = def.intent
		}
	}

	confidence := bestScore / scoreScale
	if confidence > 1 {
		confidence = 1
	}

	if confidence < p.confidenceFloor {
		if bestIntent != query.IntentUnknown {
			p.logger.Debug("confidence below floor, forcing unknown", map[string]interface{}{
				"query":      text,
				"candidate":  string(bestIntent),
				"confidence": confidence,
			})
		}
		bestIntent = query.IntentUnknown
	}

	metrics.ParseConfidence.Observe(confidence)
	if bestIntent == query.IntentUnknown {
		metrics.UnknownIntents.Inc()
	}

	return &query.ParsedQuery{
		OriginalQuery: text,
		Intent:        bestIntent,
		Entities:      entities.Extract(text),
		Confidence:    confidence,
	}
}

// score accumulates pattern weights for one intent, or returns 0 when an
// exclusion rule fires.
func (p *Parser) score(lower string, def intentDef) float64 {
	for _, excl := range def.exclusions {
		if excl.MatchString(lower) {
			return 0
		}
	}

	total := 0.0
	for _, pat := range def.patterns {
		switch {
		case pat.phrase != "":
			if strings.Contains(lower, pat.phrase) {
				total += pat.weight
			}
		case pat.re != nil:
			if pat.re.MatchString(lower) {
				total += pat.weight
			}
		default:
			for _, kw := range pat.keywords {
				if containsWord(lower, kw) {
					total += pat.weight
				}
			}
		}
	}
	return total
}

func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
