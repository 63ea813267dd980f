package application

import (
	"math"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// ReadabilityScore derives the AI readability score from page-performance
// metrics. Purely computational, no I/O; every output is an integer in
// [0,100] for inputs already clamped to [0,100] upstream.
func ReadabilityScore(m model.PageSpeedMetrics) model.ReadabilityScore {
	semanticHTML := clamp100(float64(m.Accessibility)*0.6 + float64(m.SEO)*0.4)
	schemaOrg := clamp100(float64(m.SEO)*0.7 + float64(m.BestPractices)*0.3)
	contentClarity := clamp100(float64(m.Accessibility)*0.5 + float64(m.Performance)*0.3 + float64(m.SEO)*0.2)

	technicalSEO := (bucket(m.LCPMs, 2500, 4000) + bucket(m.CLS, 100, 250) + bucket(m.FIDMs, 100, 300)) / 3

	overall := int(math.Round(float64(semanticHTML)*0.3 + float64(schemaOrg)*0.25 + float64(contentClarity)*0.25 + float64(technicalSEO)*0.2))

	return model.ReadabilityScore{
		SemanticHTML:   semanticHTML,
		SchemaOrg:      schemaOrg,
		ContentClarity: contentClarity,
		TechnicalSEO:   technicalSEO,
		Overall:        overall,
	}
}

// bucket scores a vital 100/75/50 against its good/poor thresholds.
// Boundaries are inclusive on the lower bucket: a value exactly at the good
// threshold still scores 100.
func bucket(value, good, poor float64) int {
	switch {
	case value <= good:
		return 100
	case value <= poor:
		return 75
	default:
		return 50
	}
}

func clamp100(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
