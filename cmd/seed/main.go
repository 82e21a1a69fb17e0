// Command seed fills an empty database with demo accounts, one location with
// two spaces and a week of opening hours.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spacebook/internal/config"
	"spacebook/internal/database"
	"spacebook/internal/domain"
	"spacebook/internal/modules/auth"
	"spacebook/internal/pkg/logger"
	"spacebook/internal/repository"
)

type account struct {
	email, password, name, phone string
	role                         domain.UserRole
}

var accounts = []account{
	{"admin@spacebook.local", "admin123", "Administrator", "", domain.RoleAdmin},
	{"manager@spacebook.local", "manager123", "Front Desk", "+10000000001", domain.RoleManager},
	{"user@spacebook.local", "user123", "Demo User", "+10000000002", domain.RoleUser},
}

func main() {
	reset := flag.Bool("reset", false, "delete existing rows first")
	days := flag.Int("days", 7, "days of availability to open, starting today")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(cfg.AppEnv, cfg.LogLevel).Named("seed")
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, database.PoolOptions{}, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if *reset {
		log.Info("cleaning old data")
		for _, table := range []string{"notifications", "payments", "bookings", "availability_blocks", "spaces", "locations", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.Fatal("cleanup failed", zap.String("table", table), zap.Error(err))
			}
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	err = store.WithinTx(ctx, func(r repository.Repositories) error {
		users := make(map[domain.UserRole]*domain.User, len(accounts))
		for _, a := range accounts {
			hash, err := auth.HashPassword(a.password)
			if err != nil {
				return err
			}
			u := &domain.User{Email: a.email, PasswordHash: hash, Name: a.name, Phone: a.phone, Role: a.role}
			if err := r.Users.Create(ctx, u); err != nil {
				return err
			}
			users[a.role] = u
			log.Info("user created", zap.String("email", a.email), zap.String("password", a.password))
		}

		loc := &domain.Location{Name: "Central Hub", Address: "1 Main Street", ManagerID: users[domain.RoleManager].ID}
		if err := r.Spaces.CreateLocation(ctx, loc); err != nil {
			return err
		}

		spaces := []*domain.Space{
			{LocationID: loc.ID, Name: "Meeting Room A", Capacity: 8, HourlyRate: decimal.RequireFromString("25.00"), DailyRate: decimal.RequireFromString("160.00"), IsActive: true},
			{LocationID: loc.ID, Name: "Photo Studio", Capacity: 4, HourlyRate: decimal.RequireFromString("41.33"), DailyRate: decimal.RequireFromString("250.00"), IsActive: true},
		}
		today := time.Now()
		for _, sp := range spaces {
			if err := r.Spaces.Create(ctx, sp); err != nil {
				return err
			}
			for i := 0; i < *days; i++ {
				b := &domain.AvailabilityBlock{
					SpaceID:     sp.ID,
					Date:        today.AddDate(0, 0, i).Format("2006-01-02"),
					StartTime:   "08:00",
					EndTime:     "22:00",
					IsAvailable: true,
				}
				if err := r.Availability.Create(ctx, b); err != nil {
					return err
				}
			}
			log.Info("space created", zap.Int64("id", sp.ID), zap.String("name", sp.Name))
		}
		return nil
	})
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed")
}
