package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/services"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\d{2,3}-\d{3,4}-\d{4}$`)
)

type apiResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type TicketingHandler struct {
	svc *services.TicketingService
}

func NewTicketingHandler(svc *services.TicketingService) *TicketingHandler {
	return &TicketingHandler{svc: svc}
}

// Register mounts all routes on mux under /api/v1.
func (h *TicketingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/events", h.ListEvents)
	mux.HandleFunc("GET /api/v1/events/available", h.ListAvailableEvents)
	mux.HandleFunc("GET /api/v1/events/{id}", h.GetEvent)
	mux.HandleFunc("POST /api/v1/reservations", h.CreateReservation)
	mux.HandleFunc("GET /api/v1/reservations/{code}", h.GetReservation)
	mux.HandleFunc("DELETE /api/v1/reservations/{code}", h.CancelReservation)
}

func (h *TicketingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Ticketing platform is running", nil)
}

func (h *TicketingHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Events retrieved", events)
}

func (h *TicketingHandler) ListAvailableEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListAvailableEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Available events retrieved", events)
}

func (h *TicketingHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.svc.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Event retrieved", event)
}

func (h *TicketingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req services.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if msg := validateReserveRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	reservation, err := h.svc.Reserve(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Reservation confirmed", reservation)
}

func (h *TicketingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.svc.GetReservation(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Reservation retrieved", reservation)
}

func (h *TicketingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelReservation(r.Context(), r.PathValue("code")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Reservation cancelled", nil)
}

func validateReserveRequest(req services.ReserveRequest) string {
	if req.EventID <= 0 {
		return "event_id is required"
	}

	nameLen := utf8.RuneCountInString(req.UserName)
	if nameLen < 2 || nameLen > 50 {
		return "user_name must be between 2 and 50 characters"
	}

	if !emailPattern.MatchString(req.Email) {
		return "email is not a valid address"
	}

	if !phonePattern.MatchString(req.Phone) {
		return "phone must match NN[N]-NNN[N]-NNNN (e.g. 010-1234-5678)"
	}

	if req.Quantity < domain.MinQuantity || req.Quantity > domain.MaxQuantity {
		return domain.ErrInvalidQuantity.Error()
	}

	return ""
}

func writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientSeatsError

	switch {
	case errors.Is(err, domain.ErrLockContention):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &insufficient):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEventCancelled):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, apiResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
