// Package ranking scores catalog candidates against a search intent and filters out
// the ones that contradict it.
package ranking

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
)

// Scorer applies a ScoringConfig. It is safe for concurrent use and its configuration
// can be replaced while searches are running.
type Scorer struct {
	mu     sync.RWMutex
	config *ScoringConfig
	logger *zap.Logger
}

// NewScorer creates a Scorer. A nil config uses the defaults.
func NewScorer(config *ScoringConfig, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scorer{logger: logger}
	s.SetConfig(config)
	return s
}

// SetConfig replaces the scoring configuration. Zero fields take their defaults.
func (s *Scorer) SetConfig(config *ScoringConfig) {
	if config == nil {
		config = DefaultScoringConfig()
	}
	cfg := *config
	cfg.ApplyDefaults()

	s.mu.Lock()
	s.config = &cfg
	s.mu.Unlock()
}

// Config returns a copy of the current configuration.
func (s *Scorer) Config() ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// Score rates one candidate. The result carries the facet breakdown and is returned
// whether or not the candidate would be included.
func (s *Scorer) Score(c *models.Candidate, in *intent.SearchIntent) models.ScoredCandidate {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()
	sc, _ := score(cfg, c, in)
	return sc
}

// ScoreAndFilter scores every candidate, drops the ones that fail inclusion, and
// returns the rest by score descending. Ties keep catalog order.
func (s *Scorer) ScoreAndFilter(candidates []*models.Candidate, in *intent.SearchIntent) []models.ScoredCandidate {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	results := make([]models.ScoredCandidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		sc, ok := score(cfg, c, in)
		if !ok {
			dropped++
			continue
		}
		results = append(results, sc)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	s.logger.Debug("scored candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(results)),
		zap.Int("dropped", dropped))
	return results
}

// score computes the candidate score and whether it passes inclusion.
func score(cfg *ScoringConfig, c *models.Candidate, in *intent.SearchIntent) (models.ScoredCandidate, bool) {
	pt := newProductText(c)
	sc := models.ScoredCandidate{
		Candidate: c,
		Score:     cfg.BaseScore,
		Breakdown: map[string]float64{FacetBase: cfg.BaseScore},
	}

	var facets []facetResult
	add := func(r facetResult, active bool) {
		if active {
			facets = append(facets, r)
		}
	}
	add(scorePrice(cfg, c, in))
	add(scoreOccasion(cfg, pt, in))
	add(scoreSeason(cfg, pt, in))
	add(scoreQuality(cfg, c, in))
	add(scoreOutfit(cfg, pt, in))
	add(scoreItems(cfg, pt, in))

	strongActive, strongMatched := 0, 0
	for _, f := range facets {
		sc.Score += f.delta
		sc.Breakdown[f.name] = f.delta
		sc.MatchCount += f.hits
		if f.critical {
			sc.CriticalMismatch = true
		}
		if f.strong {
			strongActive++
			if f.matched {
				strongMatched++
			}
		}
	}

	if sc.CriticalMismatch {
		return sc, false
	}
	minScore := cfg.MinScore
	if strongActive > 0 {
		if float64(strongMatched)/float64(strongActive) < cfg.MinMatchRatio {
			return sc, false
		}
		minScore = cfg.MinScoreStrong
	}
	return sc, sc.Score >= minScore
}
