package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates all repositories plus the transaction runner.
// A Repository handed to a TxRunner callback is bound to that transaction;
// every mutation of slots, registrations, participants and assignments must
// go through such a callback so capacity checks and writes stay inseparable.
type Repository struct {
	Event        EventRepository
	Station      StationRepository
	Slot         SlotRepository
	Registration RegistrationRepository
	Participant  ParticipantRepository
	Assignment   AssignmentRepository
	Tx           TxRunner
}

// TxRunner is the unit-of-work primitive: fn runs against a Repository bound
// to a single database transaction, committed iff fn returns nil.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(txRepo *Repository) error) error
}

// NewRepository creates the Repository aggregate over a gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	r := bind(db)
	r.Tx = &gormTxRunner{db: db}
	return r
}

func bind(db *gorm.DB) *Repository {
	return &Repository{
		Event:        NewEventRepo(db),
		Station:      NewStationRepo(db),
		Slot:         NewSlotRepo(db),
		Registration: NewRegistrationRepo(db),
		Participant:  NewParticipantRepo(db),
		Assignment:   NewAssignmentRepo(db),
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (t *gormTxRunner) WithTransaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := bind(tx)
		txRepo.Tx = &nestedTxRunner{repo: txRepo}
		return fn(txRepo)
	})
}

// nestedTxRunner reuses the enclosing transaction instead of opening a
// savepoint; each logical request owns exactly one transaction.
type nestedTxRunner struct {
	repo *Repository
}

func (t *nestedTxRunner) WithTransaction(_ context.Context, fn func(txRepo *Repository) error) error {
	return fn(t.repo)
}
