package app

import (
	"time"

	"go.uber.org/zap"

	"spacebook/internal/events"
	"spacebook/internal/modules/admin"
	"spacebook/internal/modules/auth"
	"spacebook/internal/modules/availability"
	"spacebook/internal/modules/booking"
	"spacebook/internal/modules/catalog"
	"spacebook/internal/modules/notification"
	"spacebook/internal/modules/payment"
	"spacebook/internal/pkg/cache"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/pkg/pricing"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
)

// Deps carries the infrastructure the services are built on. Cache, Hub and
// AllowedOrigins may be zero.
type Deps struct {
	Store      *repository.GormStore
	Users      repository.UserStore
	JWT        *jwt.Service
	Publisher  events.Publisher
	Gateway    payment.Gateway
	Dispatcher *notification.Dispatcher
	Hub        *notification.Hub
	Cache      *cache.Cache
	Log        *zap.Logger

	CacheTTL            time.Duration
	DailyThresholdHours float64
	Currency            string
	AllowedOrigins      []string
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

type Services struct {
	Auth         *auth.Service
	Availability *availability.Service
	Bookings     *booking.Service
	Payments     *payment.Service
	Catalog      *catalog.Service
	Admin        *admin.Service
}

func NewServices(d Deps) Services {
	pol := policy.New()
	return Services{
		Auth:         auth.NewService(d.Users, d.JWT, d.logger().Named("auth")),
		Availability: availability.NewService(d.Store, pol, d.Cache, d.CacheTTL, d.logger().Named("availability")),
		Bookings:     booking.NewService(d.Store, pol, pricing.NewPolicy(d.DailyThresholdHours), d.Publisher, d.logger().Named("booking")),
		Payments:     payment.NewService(d.Store, pol, d.Gateway, d.Publisher, d.Currency, d.logger().Named("payment")),
		Catalog:      catalog.NewService(d.Store.Repos().Spaces),
		Admin:        admin.NewService(d.Store),
	}
}

func NewHandlers(s Services, d Deps) Handlers {
	h := Handlers{
		Auth:          auth.NewHandler(s.Auth),
		Availability:  availability.NewHandler(s.Availability),
		Bookings:      booking.NewHandler(s.Bookings),
		Payments:      payment.NewHandler(s.Payments, d.logger().Named("payment")),
		Notifications: notification.NewHandler(d.Dispatcher),
		Catalog:       catalog.NewHandler(s.Catalog),
		Admin:         admin.NewHandler(s.Admin),
	}
	if d.Hub != nil {
		h.WS = notification.NewWSHandler(d.Hub, d.JWT, d.AllowedOrigins, d.logger().Named("ws"))
	}
	return h
}
