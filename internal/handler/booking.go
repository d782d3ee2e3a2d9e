package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/cache"
	"github.com/iliyamo/meeting-room-reservation/internal/mail"
	"github.com/iliyamo/meeting-room-reservation/internal/middleware"
	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// Urge throttling: one reminder per booking per half hour. The
// admin email is cached without expiry (cache-aside); admin email
// changes are rare enough that a manual cache drop is acceptable.
const (
	urgeKeyPrefix = "urge_"
	urgeTTL       = 1800 * time.Second
	adminEmailKey = "admin_email"
)

// BookingHandler serves booking creation, the admin lifecycle
// actions and the urge notification flow.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Cache    cache.Store
	Mail     mail.Mailer
}

func NewBookingHandler(b *repository.BookingRepo, u *repository.UserRepo, store cache.Store, mailer mail.Mailer) *BookingHandler {
	return &BookingHandler{Bookings: b, Users: u, Cache: store, Mail: mailer}
}

type createBookingReq struct {
	RoomID    uint64 `json:"meetingRoomId"`
	StartTime int64  `json:"startTime"` // epoch millis
	EndTime   int64  `json:"endTime"`   // epoch millis
	Note      string `json:"note"`
}

// Add creates a PENDING booking for the authenticated user after
// the conflict engine clears the interval.
func (h *BookingHandler) Add(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.StartTime <= 0 || req.EndTime <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "meetingRoomId/startTime/endTime required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.Create(ctx,
		middleware.CurrentUserID(c), req.RoomID,
		time.UnixMilli(req.StartTime), time.UnixMilli(req.EndTime), req.Note)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "meeting room id wrong"})
	case errors.Is(err, repository.ErrInvalidInterval):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
	case errors.Is(err, repository.ErrRoomUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room already booked, please pick another time slot"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// Apply approves a booking. Re-approving is not an error.
func (h *BookingHandler) Apply(c echo.Context) error {
	return h.setStatus(c, model.BookingStatusApproved)
}

// Reject rejects a booking; the slot becomes free again.
func (h *BookingHandler) Reject(c echo.Context) error {
	return h.setStatus(c, model.BookingStatusRejected)
}

// Unbind revokes a booking; the slot becomes free again.
func (h *BookingHandler) Unbind(c echo.Context) error {
	return h.setStatus(c, model.BookingStatusUnbound)
}

func (h *BookingHandler) setStatus(c echo.Context, status string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be a positive integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

// Urge asks an administrator to review a pending booking. At most
// one notification per booking goes out per half hour; within the
// window the caller just gets told to wait. The mail itself is best
// effort: a delivery failure is logged, the throttle key is still
// set and the request succeeds.
func (h *BookingHandler) Urge(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be a positive integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Bookings.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	throttleKey := urgeKeyPrefix + strconv.FormatUint(id, 10)
	if _, err := h.Cache.Get(ctx, throttleKey); err == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "you can only urge once every half hour, please wait"})
	} else if !errors.Is(err, cache.ErrMiss) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cache lookup failed"})
	}

	email, err := h.adminEmail(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no administrator configured"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve admin email failed"})
	}

	if err := h.Mail.Send(ctx, mail.Message{
		To:      email,
		Subject: "Booking approval reminder",
		HTML:    fmt.Sprintf("<p>Booking request %d is waiting for approval</p>", id),
	}); err != nil {
		log.Printf("booking: urge mail for %d failed: %v", id, err)
	}

	if err := h.Cache.Set(ctx, throttleKey, "1", urgeTTL); err != nil {
		// Losing the throttle key only risks one extra reminder.
		log.Printf("booking: set urge throttle for %d failed: %v", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "administrator notified"})
}

// adminEmail resolves the notification address cache-aside: Redis
// first, then the store, populating the cache on a miss with no TTL.
func (h *BookingHandler) adminEmail(ctx context.Context) (string, error) {
	if email, err := h.Cache.Get(ctx, adminEmailKey); err == nil && email != "" {
		return email, nil
	}
	email, err := h.Users.AdminEmail(ctx)
	if err != nil {
		return "", err
	}
	if err := h.Cache.Set(ctx, adminEmailKey, email, 0); err != nil {
		log.Printf("booking: cache admin email failed: %v", err)
	}
	return email, nil
}

// List returns a filtered, paginated booking listing with the
// owning user and room joined in.
func (h *BookingHandler) List(c echo.Context) error {
	pageNo, pageSize, err := pagination(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	f := repository.BookingFilter{
		Username:     c.QueryParam("username"),
		RoomName:     c.QueryParam("meetingRoomName"),
		RoomLocation: c.QueryParam("meetingRoomPosition"),
		PageNo:       pageNo,
		PageSize:     pageSize,
	}
	if s := c.QueryParam("bookingTimeRangeStart"); s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil || ms <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookingTimeRangeStart must be epoch millis"})
		}
		f.RangeStart = time.UnixMilli(ms)
	}
	if s := c.QueryParam("bookingTimeRangeEnd"); s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil || ms <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookingTimeRangeEnd must be epoch millis"})
		}
		f.RangeEnd = time.UnixMilli(ms)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, count, err := h.Bookings.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"list": list, "count": count})
}
