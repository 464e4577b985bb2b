package resumes

import "context"

// Access decides whether a fetch sees the full resume.
type Access interface {
	Paid(ctx context.Context, ownerID, resumeID int64, asserted bool) (bool, error)
}

// ClientAsserted trusts the payment flag sent with the request.
type ClientAsserted struct{}

func (ClientAsserted) Paid(_ context.Context, _, _ int64, asserted bool) (bool, error) {
	return asserted, nil
}

// LedgerAccess grants full access only to resumes with an unlock row.
// The client flag is ignored.
type LedgerAccess struct {
	Unlocks interface {
		IsUnlocked(ctx context.Context, id int64) (bool, error)
	}
}

func (a LedgerAccess) Paid(ctx context.Context, _, resumeID int64, _ bool) (bool, error) {
	return a.Unlocks.IsUnlocked(ctx, resumeID)
}

// AccessForMode maps the PAYMENT_MODE setting to a policy.
func AccessForMode(mode string, unlocks Repo) Access {
	if mode == "ledger" {
		return LedgerAccess{Unlocks: unlocks}
	}
	return ClientAsserted{}
}
