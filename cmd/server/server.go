package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/e-learning/api"
	"github.com/irsalhamdi/e-learning/api/background"
	"github.com/irsalhamdi/e-learning/config"
	"github.com/irsalhamdi/e-learning/core/order"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/irsalhamdi/e-learning/events"
	"github.com/irsalhamdi/e-learning/lock"
	"github.com/irsalhamdi/e-learning/payment"
	"github.com/irsalhamdi/e-learning/rate"
	"github.com/irsalhamdi/e-learning/telemetry"
	"github.com/joho/godotenv"
	"github.com/plutov/paypal/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

var build = "develop"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server, build %s", build)
	defer logger.Info("shutdown complete")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	const prefix = "ELEARN"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	// =========================================================================
	// Telemetry

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, build)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer shutdownMeter(context.Background())

	shutdownTracer, err := telemetry.InitTracerProvider(context.Background(), cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, build)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer shutdownTracer(context.Background())

	if err := runtime.Start(); err != nil {
		return fmt.Errorf("starting runtime metrics: %w", err)
	}

	// =========================================================================
	// Storage

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	// =========================================================================
	// Payment gateway

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	gateway, err := newGateway(cfg, httpClient)
	if err != nil {
		return err
	}
	logger.Infof("payments handled by %s", gateway.Name())

	// =========================================================================
	// Optional collaborators

	bg := background.New(logger)

	ocfg := order.Config{
		Store:      order.NewStore(db),
		Gateway:    gateway,
		Background: bg,
		Log:        logger,
		Currency:   cfg.Payment.Currency,
		ReturnURL:  cfg.Payment.ReturnURL,
		CancelURL:  cfg.Payment.CancelURL,
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		ocfg.Locker = lock.NewRedis(rdb, cfg.Redis.LockTTL, logger)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()

		ocfg.Events = producer
	}

	lim := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, rate.Every(cfg.Rate.Every))
	defer lim.Close()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:          cfg.Cors.Origin,
		Log:                 logger,
		DB:                  db,
		Orchestrator:        order.NewOrchestrator(ocfg),
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
		Limiter:             lim,
		Metrics:             metricsHandler,
	})

	api := http.Server{
		Handler:      otelhttp.NewHandler(mux, cfg.Telemetry.ServiceName),
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}

func newGateway(cfg config.Config, client *http.Client) (payment.Gateway, error) {
	switch strings.ToLower(cfg.Payment.Provider) {
	case "paypal":
		pp, err := paypal.NewClient(cfg.Paypal.ClientID, cfg.Paypal.Secret, cfg.Paypal.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to build the paypal client: %w", err)
		}
		pp.SetHTTPClient(client)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err = pp.GetAccessToken(ctx); err != nil {
			return nil, fmt.Errorf("failed to get the first paypal access token: %w", err)
		}
		return payment.NewPayPal(pp), nil

	case "stripe":
		if cfg.Stripe.WebhookSecret == "" {
			return nil, errors.New("stripe payments are confirmed by webhook: a webhook secret is required")
		}

		strp := &stripecl.API{}
		strp.Init(cfg.Stripe.APISecret, stripe.NewBackends(client))
		return payment.NewStripe(strp), nil
	}

	return nil, fmt.Errorf("unknown payment provider %q", cfg.Payment.Provider)
}
