// Package router wires HTTP routes to handlers and builds the route
// metadata table the guard chain consults at dispatch time.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-reservation/internal/config"
	"github.com/iliyamo/meeting-room-reservation/internal/handler"
	"github.com/iliyamo/meeting-room-reservation/internal/middleware"
)

// Handlers groups everything Register needs to wire.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Room      *handler.RoomHandler
	Booking   *handler.BookingHandler
	Statistic *handler.StatisticHandler
}

// Register sets up all routes, their metadata and the guard chain.
//
// The default for an unannotated route is "login required, no extra
// permission": the auth guard demands a token unless skip-login says
// otherwise, and the permission guard is satisfied by an empty
// requirement. The /v1/user controller is public as a whole, with
// refresh and the account endpoints opting back in via handler-level
// require-login, since handler metadata overrides controller metadata.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) *middleware.MetaRegistry {
	meta := middleware.NewMetaRegistry()

	// Guard order matters: authentication first, then permissions.
	e.Use(middleware.AuthGuard(cfg.JWTSecret, meta))
	e.Use(middleware.PermissionGuard(meta))

	e.GET("/healthz", handler.Health)
	meta.Handler(http.MethodGet, "/healthz", middleware.SkipLogin())

	// Credential endpoints sit behind the Redis token bucket so a
	// single client cannot brute-force logins or spam captcha mail.
	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	user := e.Group("/v1/user")
	meta.Controller("/v1/user", middleware.SkipLogin())
	user.GET("/register-captcha", h.Auth.RegisterCaptcha, limited)
	user.POST("/register", h.Auth.Register, limited)
	user.POST("/login", h.Auth.Login, limited)
	user.POST("/admin/login", h.Auth.AdminLogin, limited)
	user.GET("/update_password/captcha", h.Auth.UpdatePasswordCaptcha, limited)
	user.POST("/update_password", h.Auth.UpdatePassword, limited)

	user.GET("/refresh", h.Auth.Refresh)
	meta.Handler(http.MethodGet, "/v1/user/refresh", middleware.RequireLogin())
	user.GET("/admin/refresh", h.Auth.AdminRefresh)
	meta.Handler(http.MethodGet, "/v1/user/admin/refresh", middleware.RequireLogin())

	user.GET("/info", h.User.Info)
	meta.Handler(http.MethodGet, "/v1/user/info", middleware.RequireLogin())
	user.POST("/update", h.User.Update)
	meta.Handler(http.MethodPost, "/v1/user/update", middleware.RequireLogin())
	user.GET("/freeze", h.User.Freeze)
	meta.Handler(http.MethodGet, "/v1/user/freeze",
		middleware.RequireLogin(), middleware.RequirePermissions("user:freeze"))
	user.GET("/list", h.User.List)
	meta.Handler(http.MethodGet, "/v1/user/list",
		middleware.RequireLogin(), middleware.RequirePermissions("user:list"))

	room := e.Group("/v1/room")
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	room.GET("/list", h.Room.List, cached)
	room.GET("/:id", h.Room.Get)
	room.POST("/create", h.Room.Create)
	meta.Handler(http.MethodPost, "/v1/room/create", middleware.RequirePermissions("room:create"))
	room.POST("/update", h.Room.Update)
	meta.Handler(http.MethodPost, "/v1/room/update", middleware.RequirePermissions("room:update"))
	room.DELETE("/:id", h.Room.Delete)
	meta.Handler(http.MethodDelete, "/v1/room/:id", middleware.RequirePermissions("room:delete"))

	booking := e.Group("/v1/booking")
	booking.GET("/list", h.Booking.List)
	booking.POST("/add", h.Booking.Add)
	booking.GET("/urge/:id", h.Booking.Urge)
	booking.GET("/apply/:id", h.Booking.Apply)
	meta.Handler(http.MethodGet, "/v1/booking/apply/:id", middleware.RequirePermissions("booking:approve"))
	booking.GET("/reject/:id", h.Booking.Reject)
	meta.Handler(http.MethodGet, "/v1/booking/reject/:id", middleware.RequirePermissions("booking:approve"))
	booking.GET("/unbind/:id", h.Booking.Unbind)
	meta.Handler(http.MethodGet, "/v1/booking/unbind/:id", middleware.RequirePermissions("booking:approve"))

	e.GET("/v1/statistic/user-booking-count", h.Statistic.UserBookingCount)
	meta.Handler(http.MethodGet, "/v1/statistic/user-booking-count",
		middleware.RequirePermissions("statistic:read"))

	return meta
}
