package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

func TestUserBookingCountValidation(t *testing.T) {
	h := NewStatisticHandler(repository.NewBookingRepo(newTestDB(t)))

	for _, target := range []string{
		"/v1/statistic/user-booking-count",
		"/v1/statistic/user-booking-count?startTime=abc&endTime=2",
		"/v1/statistic/user-booking-count?startTime=2000&endTime=1000",
	} {
		c, rec := getCtx(target)
		if err := h.UserBookingCount(c); err != nil {
			t.Fatalf("UserBookingCount(%s): %v", target, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestUserBookingCountAggregates(t *testing.T) {
	db := newTestDB(t)
	h := NewStatisticHandler(repository.NewBookingRepo(db))
	seedRoomAndBooking(t, db) // alice, one booking at 2026-04-20 10:00 UTC

	start := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2026, 4, 21, 0, 0, 0, 0, time.UTC).UnixMilli()
	c, rec := getCtx("/v1/statistic/user-booking-count?startTime=" +
		strconv.FormatInt(start, 10) + "&endTime=" + strconv.FormatInt(end, 10))
	if err := h.UserBookingCount(c); err != nil {
		t.Fatalf("UserBookingCount: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var counts []repository.UserBookingCount
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(counts) != 1 || counts[0].Username != "alice" || counts[0].BookingCount != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}
