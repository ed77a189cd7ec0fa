package signals

import (
	"sort"
	"strings"
)

// IntelligenceConfig configures keyword scanning.
type IntelligenceConfig struct {
	Keywords map[string]int
	// Thresholds[i] is the minimum score for alert level i+1.
	Thresholds []int
}

// DefaultIntelligenceConfig returns the reference keyword weights.
func DefaultIntelligenceConfig() IntelligenceConfig {
	return IntelligenceConfig{
		Keywords: map[string]int{
			"national security":     3,
			"capital control":       5,
			"sanction":              4,
			"emergency powers":      5,
			"data localization":     3,
			"retroactive":           4,
			"foreign interference":  2,
			"freeze":                4,
			"currency intervention": 3,
		},
		Thresholds: []int{1, 4, 7, 10, 15},
	}
}

// Detection is a keyword hit in one headline.
type Detection struct {
	Keyword  string `json:"keyword"`
	Weight   int    `json:"weight"`
	Headline string `json:"headline"`
}

// Assessment is the structured output of a scan.
type Assessment struct {
	Score      int         `json:"score"`
	Level      int         `json:"level"`
	Detections []Detection `json:"detections"`
}

// IntelligenceScanner derives an alert level (0-5) from headlines.
type IntelligenceScanner struct {
	cfg      IntelligenceConfig
	keywords []string
}

// NewIntelligenceScanner creates an IntelligenceScanner.
func NewIntelligenceScanner(cfg IntelligenceConfig) *IntelligenceScanner {
	keywords := make([]string, 0, len(cfg.Keywords))
	for k := range cfg.Keywords {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	return &IntelligenceScanner{cfg: cfg, keywords: keywords}
}

// Scan adds the weight of every keyword found in each headline, case-insensitively.
func (s *IntelligenceScanner) Scan(headlines []string) Assessment {
	var a Assessment

	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, k := range s.keywords {
			if strings.Contains(lower, k) {
				w := s.cfg.Keywords[k]
				a.Score += w
				a.Detections = append(a.Detections, Detection{Keyword: k, Weight: w, Headline: h})
			}
		}
	}

	a.Level = s.level(a.Score)

	return a
}

func (s *IntelligenceScanner) level(score int) int {
	level := 0
	for i, threshold := range s.cfg.Thresholds {
		if score >= threshold {
			level = i + 1
		}
	}

	return level
}
