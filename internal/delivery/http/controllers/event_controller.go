package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mojotix/internal/delivery/http/helpers"
	"mojotix/internal/delivery/http/middleware"
	"mojotix/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // "2006-01-02"
	StartTime   string  `json:"start_time,omitempty"`
	Venue       string  `json:"venue"`
	City        string  `json:"city"`
	Price       float64 `json:"price"`
	IsPrivate   bool    `json:"is_private"`
	// SeatNumbers optionally pre-creates the event's selectable seats.
	SeatNumbers []string `json:"seat_numbers,omitempty"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if _, err := time.Parse("2006-01-02", c.Date); err != nil {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if c.StartTime != "" {
		if _, err := time.Parse("15:04", c.StartTime); err != nil {
			errs = append(errs, "start_time must be in HH:MM format")
		}
	}
	if c.Venue == "" {
		errs = append(errs, "venue is required")
	}
	if c.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	seen := make(map[string]bool, len(c.SeatNumbers))
	for _, n := range c.SeatNumbers {
		if n == "" {
			errs = append(errs, "seat_numbers must not contain empty entries")
			break
		}
		if seen[n] {
			errs = append(errs, "seat_numbers must not contain duplicates")
			break
		}
		seen[n] = true
	}
	return errs
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for an event list.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SeatListSuccessResponse is the success response envelope for a seat list.
type SeatListSuccessResponse struct {
	Data  []*domain.Seat    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a public or private event owned by the authenticated user.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	if requester == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	event := domain.NewEvent(req.Title, req.Description, date, req.StartTime, req.Venue, req.City, req.Price, req.IsPrivate, requester.ID, time.Now())
	if err := c.Service.CreateEvent(r.Context(), event, req.SeatNumbers); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event if the requester may view it. A private event is indistinguishable from a missing one for requesters without access.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	event, err := c.Service.GetVisibleEvent(r.Context(), requester, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListSeats godoc
// @Summary List available seats
// @Description Returns the event's unclaimed seats. Visibility follows the event itself, so a hidden private event returns 404.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.SeatListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/seats [get]
func (c *EventController) ListSeats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	seats, err := c.Service.ListAvailableSeats(r.Context(), requester, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seats)
}

// ListEvents godoc
// @Summary List visible events
// @Description Returns all active events the requester may view: every public event, plus the private events they created or were accepted into. Admins see everything.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	requester := middleware.RequesterFromContext(r.Context())
	events, err := c.Service.ListVisibleEvents(r.Context(), requester)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
