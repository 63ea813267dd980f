package driven

import (
	"context"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// KeywordStore persists tracked keywords. GetOrCreate is the keyword upsert
// engine: (domain, text) identity is enforced here at the application level,
// not by a storage constraint.
type KeywordStore interface {
	// GetOrCreate returns the existing keyword for (domainID, text), creating
	// it attributed to userID if absent.
	GetOrCreate(ctx context.Context, domainID, userID int64, text string) (*model.Keyword, error)

	// ListByDomain returns all keywords tracked for a domain.
	ListByDomain(ctx context.Context, domainID int64) ([]model.Keyword, error)
}
