package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	r "github.com/Dreamtreeme/asset-guardian/data/repos"
)

const DefaultAddr = ":8080"

type AnalyzeRequest struct {
	Name string `json:"name"`
	AsOf string `json:"as_of,omitempty"` // YYYY-MM-DD, defaults to today
}

func GetHttpServer(sc *ServiceContext) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/analyze", func(w http.ResponseWriter, req *http.Request) { analyzeHandler(w, req, sc) })
		api.Get("/health", func(w http.ResponseWriter, req *http.Request) { healthHandler(w, req, sc) })
	})

	addr := sc.Config.Server.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	return &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

func analyzeHandler(w http.ResponseWriter, req *http.Request, sc *ServiceContext) {
	var body AnalyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var asOf time.Time
	if body.AsOf != "" {
		parsed, err := time.Parse(time.DateOnly, body.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	bundle, err := sc.Analyze(req.Context(), body.Name, asOf)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnresolvedAsset):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrNoPriceData):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, r.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func healthHandler(w http.ResponseWriter, req *http.Request, sc *ServiceContext) {
	if err := sc.DB.Ping(req.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
