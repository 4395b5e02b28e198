package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kilupskalvis/catalogd/internal/catalog"
	"github.com/kilupskalvis/catalogd/internal/models"
	"github.com/kilupskalvis/catalogd/internal/service"
)

// ServerConfig holds configurable limits for the server.
type ServerConfig struct {
	MaxUploadSize int64  // bytes, for multipart item submissions
	FrontURL      string // allowed CORS origin
}

// DefaultServerConfig returns reasonable defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MaxUploadSize: 16 * 1024 * 1024, // 16MB
		FrontURL:      "http://localhost:3000",
	}
}

// itemsResponse is the wire shape for list and search results.
type itemsResponse struct {
	Items []models.Item `json:"items"`
}

// Handler creates the HTTP handler with all routes and middleware.
func Handler(svc *service.Catalog, cfg *ServerConfig, logger *slog.Logger) http.Handler {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /{$}", handleRoot)

	mux.HandleFunc("POST /items", makeCreateItemHandler(svc, cfg))
	mux.HandleFunc("GET /items", makeListItemsHandler(svc))
	mux.HandleFunc("GET /items/{id}", makeGetItemHandler(svc))
	mux.HandleFunc("GET /categories", makeListCategoriesHandler(svc))
	mux.HandleFunc("GET /search", makeSearchHandler(svc))
	mux.HandleFunc("GET /image/{name}", makeGetImageHandler(svc))

	// requestID must wrap logging so the logged request_id is set.
	return applyMiddleware(mux,
		recoveryMiddleware(logger),
		requestIDMiddleware,
		loggingMiddleware(logger),
		corsMiddleware(cfg.FrontURL),
	)
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, world!"})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func makeCreateItemHandler(svc *service.Catalog, cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)
		if err := r.ParseMultipartForm(cfg.MaxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "expected multipart form data")
			return
		}

		name := r.FormValue("name")
		category := r.FormValue("category")

		file, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", "image file is required")
			return
		}
		defer file.Close()

		item, err := svc.SubmitItem(r.Context(), name, category, file)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func makeListItemsHandler(svc *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, itemsResponse{Items: items})
	}
}

func makeGetItemHandler(svc *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", "item id must be an integer")
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func makeListCategoriesHandler(svc *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]models.Category{"categories": categories})
	}
}

func makeSearchHandler(svc *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Search(r.Context(), r.URL.Query().Get("keyword"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, itemsResponse{Items: items})
	}
}

func makeGetImageHandler(svc *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reader, err := svc.FetchImage(r.Context(), r.PathValue("name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		defer reader.Close()

		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, reader)
	}
}

// writeServiceError maps core errors onto the HTTP error taxonomy.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "storage_failure", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
