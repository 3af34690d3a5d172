package services

import (
	"context"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/pkg/logger"
)

// SubAccountResolver resolves detail-line sub-account references to display
// names. Resolution may fail softly: the id is kept and the name stays null.
type SubAccountResolver struct {
	repo repository.SubAccountRepository
}

// NewSubAccountResolver creates a new sub-account resolver
func NewSubAccountResolver(repo repository.SubAccountRepository) *SubAccountResolver {
	return &SubAccountResolver{repo: repo}
}

// Resolve returns the display name for a (kind, id) pair
func (r *SubAccountResolver) Resolve(ctx context.Context, kind models.SubAccountKind, id uint) (string, error) {
	return r.repo.ResolveName(ctx, kind, id)
}

// ResolveDetails fills SubAccountName in place for every line carrying a
// sub-account reference. Lookup failures are logged and tolerated.
func (r *SubAccountResolver) ResolveDetails(ctx context.Context, details []models.VoucherDetail) {
	for i := range details {
		d := &details[i]
		if !d.HasSubAccount() {
			continue
		}
		name, err := r.repo.ResolveName(ctx, d.SubAccountKind, *d.SubAccountID)
		if err != nil {
			logger.Warn("sub-account resolution failed",
				"kind", string(d.SubAccountKind), "id", *d.SubAccountID, "error", err)
			d.SubAccountName = nil
			continue
		}
		d.SubAccountName = &name
	}
}
