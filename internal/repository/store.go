package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories is the set of stores bound to one database handle, either the
// pool or a transaction.
type Repositories struct {
	Users         UserStore
	Spaces        SpaceStore
	Availability  AvailabilityStore
	Bookings      BookingStore
	Payments      PaymentStore
	Notifications NotificationStore
}

// UnitOfWork hands out repositories and runs multi-statement work atomically.
type UnitOfWork interface {
	Repos() Repositories
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

type GormStore struct {
	db    *gorm.DB
	repos Repositories
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, repos: bind(db)}
}

func bind(db *gorm.DB) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Spaces:        NewSpaceRepository(db),
		Availability:  NewAvailabilityRepository(db),
		Bookings:      NewBookingRepository(db),
		Payments:      NewPaymentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Repos() Repositories { return s.repos }

func (s *GormStore) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}
