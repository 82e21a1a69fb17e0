// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spacebook/internal/database"
	"spacebook/internal/domain"
	"spacebook/internal/repository"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.Connect(dsn, database.PoolOptions{LogLevel: logger.Silent}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func NewStore(t *testing.T) *repository.GormStore {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// Fixture is a location managed by Manager with one space, plus a regular user and an admin.
type Fixture struct {
	Admin    *domain.User
	Manager  *domain.User
	Other    *domain.User
	User     *domain.User
	Location *domain.Location
	Space    *domain.Space
}

// Seed creates the default fixture: a space at 41.33/h with a 250.00 day rate.
func Seed(t *testing.T, store repository.UnitOfWork) *Fixture {
	t.Helper()
	ctx := context.Background()
	r := store.Repos()

	mk := func(email string, role domain.UserRole) *domain.User {
		u := &domain.User{Email: email, Name: email, Role: role, Phone: "+10000000000", FCMToken: "token-" + email}
		if err := r.Users.Create(ctx, u); err != nil {
			t.Fatalf("create user %s: %v", email, err)
		}
		return u
	}

	f := &Fixture{
		Admin:   mk("admin@example.com", domain.RoleAdmin),
		Manager: mk("manager@example.com", domain.RoleManager),
		Other:   mk("other-manager@example.com", domain.RoleManager),
		User:    mk("user@example.com", domain.RoleUser),
	}

	f.Location = &domain.Location{Name: "Downtown", ManagerID: f.Manager.ID}
	if err := r.Spaces.CreateLocation(ctx, f.Location); err != nil {
		t.Fatalf("create location: %v", err)
	}
	f.Space = &domain.Space{
		LocationID: f.Location.ID,
		Name:       "Studio A",
		Capacity:   10,
		HourlyRate: decimal.RequireFromString("41.33"),
		DailyRate:  decimal.RequireFromString("250"),
		IsActive:   true,
	}
	if err := r.Spaces.Create(ctx, f.Space); err != nil {
		t.Fatalf("create space: %v", err)
	}
	return f
}

// OpenDay declares the space available for the whole of date.
func OpenDay(t *testing.T, store repository.UnitOfWork, spaceID int64, date string) *domain.AvailabilityBlock {
	t.Helper()
	return Block(t, store, spaceID, date, "00:00", "23:59", true)
}

func Block(t *testing.T, store repository.UnitOfWork, spaceID int64, date, start, end string, available bool) *domain.AvailabilityBlock {
	t.Helper()
	b := &domain.AvailabilityBlock{SpaceID: spaceID, Date: date, StartTime: start, EndTime: end, IsAvailable: available}
	if err := store.Repos().Availability.Create(context.Background(), b); err != nil {
		t.Fatalf("create block: %v", err)
	}
	return b
}
