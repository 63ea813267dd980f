// Package google implements the measurement-API driven ports against the
// Google Search Console and PageSpeed Insights HTTP APIs, plus the OAuth
// token refresh exchange.
package google

import "fmt"

// APIError is a non-2xx response from either measurement API. Body carries
// the response text for logs; it is never parsed.
type APIError struct {
	Service string
	Status  int
	Body    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Service, e.Status, e.Body)
}
