package resumes

import (
	"context"

	"resume-generator/internal/users"
)

type Repo interface {
	// Create inserts rec and returns it with ID and CreatedAt set.
	Create(ctx context.Context, rec Record) (Record, error)
	GetForOwner(ctx context.Context, ownerID, id int64) (Record, error)
	// ListForOwner returns the owner's records, newest first.
	ListForOwner(ctx context.Context, ownerID int64) ([]Record, error)
	// Unlock grants full access to a resume. Granting twice is a no-op.
	Unlock(ctx context.Context, id int64, reference string) error
	IsUnlocked(ctx context.Context, id int64) (bool, error)
}

// TxRunner runs fn with repositories bound to one transaction.
// fn's error rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, u users.Repo, r Repo) error) error
}
