package seatlock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/seatapi"
)

type contextKey string

// RequestIDKey holds the request id in the request context.
const RequestIDKey contextKey = "request_id"

// HandlerOptions configure the HTTP surface.
type HandlerOptions struct {
	Manager *Manager
	Hub     *Hub // optional; /ws is not mounted without it
	Logger  *zap.Logger
}

// NewHandler returns the authority's router.
func NewHandler(opts HandlerOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{manager: opts.Manager, log: log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(h.logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/seats", h.seats)
	r.Post("/hold", h.hold)
	r.Post("/confirm", h.confirm)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Hub != nil {
		r.Get("/ws", opts.Hub.ServeHTTP)
	}
	return r
}

type handler struct {
	manager *Manager
	log     *zap.Logger
}

func (h *handler) seats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Seats())
}

func (h *handler) hold(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if err := h.manager.Hold(req.SeatID, req.UserID); err != nil {
		status := http.StatusConflict
		switch {
		case errors.Is(err, ErrSeatNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrInvalidUser):
			status = http.StatusBadRequest
		}
		writeDetail(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seatapi.ActionResponse{Status: string(seatapi.StatusHeld), SeatID: req.SeatID})
}

func (h *handler) confirm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if err := h.manager.Confirm(req.SeatID, req.UserID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrSeatNotFound) {
			status = http.StatusNotFound
		}
		writeDetail(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seatapi.ActionResponse{Status: string(seatapi.StatusSold), SeatID: req.SeatID})
}

func decodeAction(w http.ResponseWriter, r *http.Request) (seatapi.ActionRequest, bool) {
	var req seatapi.ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	if err := dec.Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, seatapi.ErrorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID echoes X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	})
}

// GetRequestID returns the id assigned by the request id middleware.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (h *handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", GetRequestID(r.Context())),
		)
	})
}
