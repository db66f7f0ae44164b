package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/uptimealert/internal/domain"
)

var ErrUnknownTarget = errors.New("unknown target")

// TargetStatus pairs a target with its current record.
type TargetStatus struct {
	Target domain.Target       `json:"target"`
	Status domain.StatusRecord `json:"status"`
}

// StatusStore is the single source of truth for transition detection. It
// holds exactly one record per configured target.
type StatusStore interface {
	// Init seeds every target with the assume-healthy record. Targets that
	// already have a record keep it.
	Init(ctx context.Context, targets []domain.Target) error
	Get(ctx context.Context, t domain.Target) (domain.StatusRecord, error)
	// Update reads the record of t, builds its replacement with next and
	// stores it, as one step with respect to other writers of t. It returns
	// both records and fails with ErrUnknownTarget for targets never seeded.
	Update(ctx context.Context, t domain.Target, next func(prev domain.StatusRecord) domain.StatusRecord) (prev, cur domain.StatusRecord, err error)
	// Snapshot returns all records in Init order.
	Snapshot(ctx context.Context) ([]TargetStatus, error)
}
