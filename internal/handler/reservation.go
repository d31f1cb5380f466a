package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/allocation"
	"github.com/tavolo/seating/internal/model"
	"github.com/tavolo/seating/internal/queue"
	"github.com/tavolo/seating/internal/repository"
	queue_publisher "github.com/tavolo/seating/internal/service"
)

// ReservationHandler serves the reservation lifecycle: allocation,
// cancellation, listing and front-of-house meal timestamps.  Seat
// selection and the ledger writes live in the allocation engine; the
// handler only maps HTTP to engine calls and engine errors back to
// status codes.
type ReservationHandler struct {
	Engine          *allocation.Engine          // allocation and release
	Ledger          allocation.Ledger           // period lookup for event payloads
	ReservationRepo *repository.ReservationRepo // read paths and meal timestamps
	PublishEvents   bool                        // emit broker events after commit
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(engine *allocation.Engine, ledger allocation.Ledger, reservationRepo *repository.ReservationRepo, publishEvents bool) *ReservationHandler {
	if engine == nil || ledger == nil || reservationRepo == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{
		Engine:          engine,
		Ledger:          ledger,
		ReservationRepo: reservationRepo,
		PublishEvents:   publishEvents,
	}
}

// Allocate handles POST /v1/periods/:id/reservations.  The path names
// the concrete period; the body carries the party size, the booking
// type and an optional free-form options payload (contact details,
// dietary notes) stored verbatim on the reservation.
//
// Engine errors map onto status codes as follows: an unknown period is
// 404, an unsupported party size is 422, no seat combination fitting
// the party is 409, and losing a concurrent claim race is 409 with
// retryable=true so clients know an immediate retry may succeed.
func (h *ReservationHandler) Allocate(c echo.Context) error {
	role, err := currentRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	periodID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || periodID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period id"})
	}
	var body struct {
		PartySize   uint32          `json:"party_size"`
		BookingType string          `json:"booking_type"`
		Options     json.RawMessage `json:"options"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size is required"})
	}
	bt := model.BookingType(body.BookingType)
	if body.BookingType == "" {
		// Default by caller role: guests book online, staff default to
		// phone bookings.
		bt = model.OnlineBooking
		if role == RoleStaff {
			bt = model.PhoneBooking
		}
	}
	if !bt.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_type"})
	}
	if !bookingTypeForRole(role, bt) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "booking_type not allowed for this client"})
	}

	res, err := h.Engine.Allocate(c.Request().Context(), allocation.Request{
		PartySize:        body.PartySize,
		BookingType:      bt,
		ConcretePeriodID: periodID,
		Options:          body.Options,
	})
	if err != nil {
		switch {
		case errors.Is(err, allocation.ErrPeriodNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "period not found"})
		case errors.Is(err, allocation.ErrUnsupportedPartySize):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unsupported party size"})
		case errors.Is(err, allocation.ErrNoSuitableSeat):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no suitable seat available"})
		case errors.Is(err, allocation.ErrConcurrentConflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":     "seat was claimed concurrently",
				"retryable": true,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "allocation failed"})
		}
	}

	if h.PublishEvents {
		h.publishAllocated(c.Request().Context(), periodID, body.PartySize, bt, res)
	}

	return c.JSON(http.StatusCreated, res)
}

// publishAllocated emits the reservation.allocated event in the
// background.  The ledger transaction has already committed, so a
// broker failure must never fail the request; the publisher logs it.
func (h *ReservationHandler) publishAllocated(ctx context.Context, periodID uint64, partySize uint32, bt model.BookingType, res *allocation.Result) {
	startsAt := ""
	if cp, err := h.Ledger.GetConcretePeriod(ctx, periodID); err == nil {
		startsAt = cp.StartedAt.UTC().Format(time.RFC3339)
	}
	event := queue.ReservationAllocatedEvent{
		ReservationID:    res.ReservationID,
		ConfirmationCode: res.ConfirmationCode,
		PartySize:        partySize,
		BookingType:      string(bt),
		ConcretePeriodID: periodID,
		PeriodStartsAt:   startsAt,
		SeatLabels:       res.SeatLabels,
		AllocatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationAllocated(pctx, event)
	}()
}

// Cancel handles DELETE /v1/reservations/:id.  It releases the claimed
// seat-periods back to the free pool and marks the reservation
// cancelled.  Cancelling an already cancelled reservation returns 409.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	// Snapshot the claimed rows before release for the event payload.
	rec, err := h.ReservationRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Engine.Release(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, allocation.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, allocation.ErrAlreadyReleased):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
		}
	}

	if h.PublishEvents {
		event := queue.ReservationReleasedEvent{
			ReservationID: id,
			SeatPeriodIDs: rec.SeatPeriodIDs,
			ReleasedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishReservationReleased(pctx, event)
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	rec, err := h.ReservationRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rec)
}

// List handles GET /v1/reservations, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	logs, err := h.ReservationRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": logs})
}

// SetMealTimes handles PATCH /v1/reservations/:id/meal-times.  The
// host stand records when the party was seated and when it departed.
// Both fields are optional RFC3339 timestamps; omitted fields stay
// unchanged.  Nothing else on the reservation is writable here.
func (h *ReservationHandler) SetMealTimes(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		StartOfMeal *time.Time `json:"start_of_meal"`
		EndOfMeal   *time.Time `json:"end_of_meal"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StartOfMeal == nil && body.EndOfMeal == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_of_meal or end_of_meal is required"})
	}
	if body.StartOfMeal != nil && body.EndOfMeal != nil && body.EndOfMeal.Before(*body.StartOfMeal) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_of_meal precedes start_of_meal"})
	}
	if err := h.ReservationRepo.SetMealTimes(c.Request().Context(), id, body.StartOfMeal, body.EndOfMeal); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}
