package driven

import (
	"context"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// DomainStore reads tracked domains. Domains are created and deleted outside
// this subsystem, so the port is read-only.
type DomainStore interface {
	// GetByID retrieves a domain by id. Returns (nil, nil) if not found.
	GetByID(ctx context.Context, id int64) (*model.Domain, error)

	// ListByUser returns all domains owned by the given user.
	ListByUser(ctx context.Context, userID int64) ([]model.Domain, error)

	// ListAll returns every tracked domain across all users, ordered by id.
	// The daily batch iterates this set.
	ListAll(ctx context.Context) ([]model.Domain, error)
}
