package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/allocation"
	"github.com/tavolo/seating/internal/model"
	"github.com/tavolo/seating/internal/repository"
	"github.com/tavolo/seating/internal/schedule"
)

// AdminPeriodHandler manages period templates and their
// materialization into concrete bookable windows.
type AdminPeriodHandler struct {
	PeriodRepo     *repository.PeriodRepo
	SeatPeriodRepo *repository.SeatPeriodRepo
	Materializer   *schedule.Materializer
	Inv            allocation.Invalidator // may be nil when no cache is attached
}

// NewAdminPeriodHandler constructs an AdminPeriodHandler.
func NewAdminPeriodHandler(periodRepo *repository.PeriodRepo, seatPeriodRepo *repository.SeatPeriodRepo, mat *schedule.Materializer, inv allocation.Invalidator) *AdminPeriodHandler {
	if periodRepo == nil || seatPeriodRepo == nil || mat == nil {
		panic("nil dependency passed to NewAdminPeriodHandler")
	}
	return &AdminPeriodHandler{
		PeriodRepo:     periodRepo,
		SeatPeriodRepo: seatPeriodRepo,
		Materializer:   mat,
		Inv:            inv,
	}
}

// CreateTemplate handles POST /v1/admin/periods.  A template names a
// recurring window: "Friday dinner, weekly from 2026-01-09T18:00Z".
func (h *AdminPeriodHandler) CreateTemplate(c echo.Context) error {
	var body struct {
		Title          string    `json:"title"`
		IntervalUnit   string    `json:"interval_unit"`
		IntervalAmount uint32    `json:"interval_amount"`
		AnchorStart    time.Time `json:"anchor_start"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	unit := model.IntervalUnit(body.IntervalUnit)
	if body.Title == "" || !unit.Valid() || body.IntervalAmount == 0 || body.AnchorStart.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, interval_unit, interval_amount and anchor_start are required"})
	}
	p := &model.Period{
		Title:          body.Title,
		IntervalUnit:   unit,
		IntervalAmount: body.IntervalAmount,
		AnchorStart:    body.AnchorStart,
	}
	if err := h.PeriodRepo.CreateTemplate(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID})
}

// ListTemplates handles GET /v1/admin/periods.
func (h *AdminPeriodHandler) ListTemplates(c echo.Context) error {
	templates, err := h.PeriodRepo.ListTemplates(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"periods": templates})
}

// Materialize handles POST /v1/admin/periods/:id/materialize.  The
// body carries the horizon end; the walk is idempotent, so operators
// can re-run it after adding seats or simply to extend the horizon.
// Fresh ledger rows change what availability reports, so a run that
// created anything drops the snapshots.
func (h *AdminPeriodHandler) Materialize(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period id"})
	}
	var body struct {
		HorizonEnd time.Time `json:"horizon_end"`
	}
	if err := c.Bind(&body); err != nil || body.HorizonEnd.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "horizon_end is required"})
	}
	rep, err := h.Materializer.MaterializePeriods(c.Request().Context(), id, body.HorizonEnd)
	if err != nil {
		if errors.Is(err, schedule.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "period template not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "materialization failed"})
	}
	if h.Inv != nil && (rep.PeriodsCreated > 0 || rep.SeatPeriodsCreated > 0) {
		h.Inv.Invalidate(c.Request().Context())
	}
	return c.JSON(http.StatusOK, rep)
}

// ListConcrete handles GET /v1/admin/periods/:id/concrete.
func (h *AdminPeriodHandler) ListConcrete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period id"})
	}
	periods, err := h.PeriodRepo.ListConcreteByTemplate(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"concrete_periods": periods})
}

// ListSeatPeriods handles GET /v1/admin/concrete-periods/:id/seat-periods
// so operators can inspect the raw ledger rows of one window.
func (h *AdminPeriodHandler) ListSeatPeriods(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concrete period id"})
	}
	rows, err := h.SeatPeriodRepo.ListByPeriod(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seat_periods": rows})
}
