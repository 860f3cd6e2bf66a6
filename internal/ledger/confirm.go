package ledger

import (
	"context"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

// Confirmer decides whether an existing customer may be overwritten.
type Confirmer interface {
	ConfirmOverwrite(ctx context.Context, existing models.CustomerRecord) (bool, error)
}

type ConfirmFunc func(ctx context.Context, existing models.CustomerRecord) (bool, error)

func (f ConfirmFunc) ConfirmOverwrite(ctx context.Context, existing models.CustomerRecord) (bool, error) {
	return f(ctx, existing)
}

var (
	AlwaysOverwrite Confirmer = ConfirmFunc(func(context.Context, models.CustomerRecord) (bool, error) {
		return true, nil
	})
	NeverOverwrite Confirmer = ConfirmFunc(func(context.Context, models.CustomerRecord) (bool, error) {
		return false, nil
	})
)
