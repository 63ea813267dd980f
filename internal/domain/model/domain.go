package model

import "time"

// Domain is a user-owned tracked site. Property is the external Search Console
// property identifier ("sc-domain:example.com" or a URL-prefix property);
// domains without one are skipped by the search sync. This subsystem never
// creates or deletes domains.
type Domain struct {
	ID       int64
	UserID   int64
	Name     string
	SiteURL  string
	Property string
	AddedAt  time.Time
}

// RootURL returns the URL analyzed by the page-performance sync.
func (d Domain) RootURL() string {
	if d.SiteURL != "" {
		return d.SiteURL
	}
	return "https://" + d.Name
}
