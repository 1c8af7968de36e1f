package branch

import "context"

// Repository resolves which branch a user belongs to. Users are owned by the identity
// service; this service only reads the affiliation.
type Repository interface {
	// BranchOf returns nil, nil for users without a branch.
	BranchOf(ctx context.Context, userID string) (*string, error)
}
