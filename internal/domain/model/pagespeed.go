package model

import "time"

// PageSpeed device strategies accepted by the page-performance API.
const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)

// PageSpeedMetrics is the flat metrics record extracted from one
// page-performance API response. Category scores are 0-100; timing metrics
// are milliseconds except CLS, which the API reports as a unitless score
// scaled by 1000 (a CLS of 0.1 arrives as 100). Absent audits default to 0.
type PageSpeedMetrics struct {
	Performance    int
	Accessibility  int
	BestPractices  int
	SEO            int
	LCPMs          float64 // Largest Contentful Paint
	FIDMs          float64 // Max Potential First Input Delay
	CLS            float64 // Cumulative Layout Shift (x1000)
	FCPMs          float64 // First Contentful Paint
	TTFBMs         float64 // Server response time
	SpeedIndexMs   float64
	BlockingTimeMs float64 // Total Blocking Time
}

// PageSpeedHistory is an immutable daily snapshot for one (domain, url,
// strategy) combination. RawPayload keeps the full API response for
// audit/debugging.
type PageSpeedHistory struct {
	ID         int64
	DomainID   int64
	URL        string
	Strategy   string
	Day        Day
	Metrics    PageSpeedMetrics
	RawPayload []byte
	CreatedAt  time.Time
}

// ReadabilityScore is the derived 0-100 blend of category scores and bucketed
// Core Web Vitals. Purely computational; see application.ReadabilityScore.
type ReadabilityScore struct {
	SemanticHTML   int `json:"semantic_html"`
	SchemaOrg      int `json:"schema_org"`
	ContentClarity int `json:"content_clarity"`
	TechnicalSEO   int `json:"technical_seo"`
	Overall        int `json:"overall"`
}
