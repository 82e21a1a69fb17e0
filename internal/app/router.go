// Package app assembles the HTTP surface from already constructed services.
package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacebook/internal/middleware"
	"spacebook/internal/modules/admin"
	"spacebook/internal/modules/auth"
	"spacebook/internal/modules/availability"
	"spacebook/internal/modules/booking"
	"spacebook/internal/modules/catalog"
	"spacebook/internal/modules/notification"
	"spacebook/internal/modules/payment"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/pkg/response"
)

type Handlers struct {
	Auth          *auth.Handler
	Availability  *availability.Handler
	Bookings      *booking.Handler
	Payments      *payment.Handler
	Notifications *notification.Handler
	Catalog       *catalog.Handler
	Admin         *admin.Handler
	// WS is optional.
	WS *notification.WSHandler
}

type RouterOptions struct {
	JWT            *jwt.Service
	Log            *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	// RateLimiter is optional; nil disables limiting.
	RateLimiter *middleware.RateLimiter
}

func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Websocket connections are long lived and stay outside the request deadline.
	if h.WS != nil {
		h.WS.RegisterRoutes(r.Group("/api/v1"))
	}

	v1 := r.Group("/api/v1")
	if opts.RequestTimeout > 0 {
		v1.Use(middleware.Deadline(opts.RequestTimeout))
	}
	{
		h.Auth.RegisterPublicRoutes(v1)
		h.Availability.RegisterPublicRoutes(v1)
		h.Catalog.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(opts.JWT))
		{
			h.Auth.RegisterProtectedRoutes(protected)
			h.Availability.RegisterRoutes(protected)
			h.Bookings.RegisterRoutes(protected)
			h.Payments.RegisterRoutes(protected)
			h.Notifications.RegisterRoutes(protected)
			h.Admin.RegisterRoutes(protected)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}
