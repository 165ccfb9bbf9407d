package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/e-learning/api/middleware"
	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/api/weberr"
	"github.com/irsalhamdi/e-learning/core/course"
	"github.com/irsalhamdi/e-learning/core/enrollment"
	"github.com/irsalhamdi/e-learning/core/order"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/irsalhamdi/e-learning/rate"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin   string
	Log          logrus.FieldLogger
	DB           *sqlx.DB
	Orchestrator *order.Orchestrator

	// Optional.
	StripeWebhookSecret string
	Limiter             *rate.Limiter
	Metrics             http.Handler
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log, "/health"))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB, cfg.Log))
	if cfg.Metrics != nil {
		a.Router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	a.Handle(http.MethodPost, "/student/order/create", order.HandleCreate(cfg.Orchestrator), limit)
	a.Handle(http.MethodPost, "/student/order/capture", order.HandleCapture(cfg.Orchestrator), limit)
	if cfg.StripeWebhookSecret != "" {
		a.Handle(http.MethodPost, "/student/order/stripe/webhook", order.HandleStripeWebhook(cfg.Orchestrator, cfg.StripeWebhookSecret))
	}
	a.Handle(http.MethodGet, "/student/order/{id}", order.HandleShow(cfg.Orchestrator), limit)

	a.Handle(http.MethodGet, "/student/courses-bought/{user_id}", enrollment.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{id}/students", course.HandleListStudents(cfg.DB))

	a.Router.NotFoundHandler = a.wrap(handleNotFound)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CorsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(a.Router)
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	a.Router.Handle(path, a.wrap(handler, mw...)).Methods(method)
}

func (a *api) wrap(handler web.Handler, mw ...web.Middleware) http.Handler {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})
}

// =============================================================================

type health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

func handleHealth(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		h := health{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			Database:  "connected",
		}
		status := http.StatusOK

		if err := database.StatusCheck(ctx, db); err != nil {
			log.WithFields(logrus.Fields{
				"req_id": middleware.ContextRequestID(ctx),
				"error":  err,
			}).Warn("database unreachable")

			h.Status = "degraded"
			h.Database = "disconnected"
			status = http.StatusServiceUnavailable
		}

		return web.Respond(ctx, w, h, status)
	}
}

func handleNotFound(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	err := fmt.Errorf("no route for %s %s", r.Method, r.URL.Path)
	return weberr.NewError(err, fmt.Sprintf("Route %s not found", r.URL.Path), http.StatusNotFound)
}
