package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// StatisticHandler serves aggregate reporting queries.
type StatisticHandler struct {
	Bookings *repository.BookingRepo
}

func NewStatisticHandler(b *repository.BookingRepo) *StatisticHandler {
	return &StatisticHandler{Bookings: b}
}

// UserBookingCount counts bookings grouped by user whose start time
// falls inside the given window (epoch millis).
func (h *StatisticHandler) UserBookingCount(c echo.Context) error {
	start, err := strconv.ParseInt(c.QueryParam("startTime"), 10, 64)
	if err != nil || start <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime must be epoch millis"})
	}
	end, err := strconv.ParseInt(c.QueryParam("endTime"), 10, 64)
	if err != nil || end <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must be epoch millis"})
	}
	if end < start {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must not precede startTime"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Bookings.CountByUserBetween(ctx, time.UnixMilli(start), time.UnixMilli(end))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, counts)
}
