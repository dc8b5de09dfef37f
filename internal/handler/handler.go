// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the campus service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/service"
	"github.com/sirupsen/logrus"
)

// CampusHandler holds all HTTP handlers for the booking API.
type CampusHandler struct {
	svc *service.CampusService
	dir *directory.Directory
}

// NewCampusHandler constructs a CampusHandler.
func NewCampusHandler(svc *service.CampusService, dir *directory.Directory) *CampusHandler {
	return &CampusHandler{svc: svc, dir: dir}
}

// Routes mounts the API on r.
func (h *CampusHandler) Routes(r chi.Router) {
	r.Get("/health", HealthCheck)
	r.Get("/services", h.ListServices)

	r.Get("/rooms/available", h.AvailableRooms)
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.Book)
		r.Post("/cancel", h.Cancel)
	})
	r.Route("/requesters", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/{id}", h.GetRequester)
	})
	r.Get("/directions", h.Directions)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, model.ErrorResponse{Error: msg})
}

// writeOutcome maps an outcome error to its HTTP status.
func writeOutcome(w http.ResponseWriter, r *http.Request, err error) {
	var outcome *model.Error
	if !errors.As(err, &outcome) {
		logrus.WithError(err).Error("unclassified error")
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch outcome.Kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindConflict:
		status = http.StatusConflict
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindDependencyUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
	}
	writeJSON(w, r, status, model.ErrorResponse{Error: outcome.Reason, Kind: outcome.Kind})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// AvailableRooms handles GET /rooms/available?date=&slot=&capacity=
func (h *CampusHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	q := model.AvailabilityQuery{
		Date: r.URL.Query().Get("date"),
		Slot: r.URL.Query().Get("slot"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("capacity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "capacity must be an integer")
			return
		}
		q.MinCapacity = n
	}

	rooms, err := h.svc.AvailableRooms(r.Context(), q)
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeJSON(w, r, http.StatusOK, rooms)
}

// Book handles POST /bookings
func (h *CampusHandler) Book(w http.ResponseWriter, r *http.Request) {
	var p model.BookingProposal
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	b, err := h.svc.Book(r.Context(), p)
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, b)
}

// Cancel handles POST /bookings/cancel
func (h *CampusHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req model.CancelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Cancel(r.Context(), req); err != nil {
		writeOutcome(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": model.OutcomeCancelled})
}

// Register handles POST /requesters
func (h *CampusHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Register(r.Context(), req); err != nil {
		writeOutcome(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{
		"requester_id": strings.TrimSpace(req.RequesterID),
		"status":       model.OutcomeRegistered,
	})
}

// GetRequester handles GET /requesters/{id}
func (h *CampusHandler) GetRequester(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Exists(r.Context(), id); err != nil {
		writeOutcome(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"requester_id": id, "status": model.OutcomeExists})
}

// Directions handles GET /directions?from=&room=&requester_id=
func (h *CampusHandler) Directions(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Directions(r.Context(), model.DirectionsRequest{
		CurrentLocation: r.URL.Query().Get("from"),
		RoomID:          r.URL.Query().Get("room"),
		RequesterID:     r.URL.Query().Get("requester_id"),
	})
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

// ListServices handles GET /services
func (h *CampusHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	entries := h.dir.Entries()
	if entries == nil {
		entries = []directory.Entry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
