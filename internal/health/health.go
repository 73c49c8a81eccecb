// Package health serves the unauthenticated liveness, readiness and
// diagnostics endpoints.
package health

import (
	"context"
	"net/http"
	"os"
	"time"

	"laluna/pkg/config"
	httputil "laluna/pkg/http"
	"laluna/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	Banner = "La Luna Resort API is running"

	checkTimeout       = 2 * time.Second
	maxListCollections = 10
)

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type CollectionLister interface {
	ListCollectionNames(ctx context.Context, filter any, opts ...*options.ListCollectionsOptions) ([]string, error)
}

type HealthHandler struct {
	pinger Pinger
	db     CollectionLister
	log    *logger.Logger
}

func NewHealthHandler(client *mongo.Client, cfg *config.Config) *HealthHandler {
	return newHealthHandler(client, client.Database(cfg.MongoDatabaseName), cfg.Log)
}

func newHealthHandler(pinger Pinger, db CollectionLister, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		pinger: pinger,
		db:     db,
		log:    log,
	}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteMessage(w, Banner); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Root", "operation", "WriteMessage", "error", err)
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "unavailable",
			Database: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:   "ready",
		Database: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

// Diagnostics reports database connectivity without failing the request;
// it always answers 200 so operators can read the body.
func (h *HealthHandler) Diagnostics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := DiagnosticsResponse{
		Backend:          "running",
		Database:         "available",
		DatabaseURL:      envPresence(config.EnvMongoURI),
		DatabaseName:     envPresence(config.EnvMongoDatabaseName),
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}

	names, err := h.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		h.log.Warn("Database diagnostics failed", "error", err)
		resp.Database = "connected but error: " + truncate(err.Error(), 80)
	} else {
		if len(names) > maxListCollections {
			names = names[:maxListCollections]
		}
		resp.Collections = names
		resp.Database = "connected"
		resp.ConnectionStatus = "connected"
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Diagnostics", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/test", h.Diagnostics)
}

func envPresence(key string) string {
	if os.Getenv(key) != "" {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
