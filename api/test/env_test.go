package test

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/irsalhamdi/e-learning/api"
	"github.com/irsalhamdi/e-learning/config"
	ordercore "github.com/irsalhamdi/e-learning/core/order"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/irsalhamdi/e-learning/payment"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
)

var (
	adminDB   *sqlx.DB
	dbConfig  config.DB
	dockerErr error
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		dockerErr = err
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=postgres",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		dockerErr = err
		os.Exit(m.Run())
	}
	_ = resource.Expire(300)

	dbConfig = config.DB{
		User:         "postgres",
		Password:     "postgres",
		Host:         resource.GetHostPort("5432/tcp"),
		Name:         "postgres",
		MaxIdleConns: 2,
		DisableTLS:   true,
	}

	err = pool.Retry(func() error {
		db, err := database.Open(dbConfig)
		if err != nil {
			return err
		}
		if err := database.StatusCheck(context.Background(), db); err != nil {
			db.Close()
			return err
		}
		adminDB = db
		return nil
	})
	if err != nil {
		dockerErr = err
	}

	code := m.Run()

	if adminDB != nil {
		adminDB.Close()
	}
	_ = pool.Purge(resource)

	os.Exit(code)
}

// TestEnv is a running API backed by its own database and a fake PayPal.
type TestEnv struct {
	*httptest.Server
	DB     *sqlx.DB
	Paypal *mockPaypal
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	if dockerErr != nil {
		t.Skipf("docker not available: %v", dockerErr)
	}

	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
		return nil, fmt.Errorf("creating database %s: %w", name, err)
	}

	cfg := dbConfig
	cfg.Name = name
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	mp := &mockPaypal{}
	ppSrv := httptest.NewServer(mp.handle())
	t.Cleanup(ppSrv.Close)

	pp, err := paypal.NewClient("client", "secret", ppSrv.URL)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	orc := ordercore.NewOrchestrator(ordercore.Config{
		Store:     ordercore.NewStore(db),
		Gateway:   payment.NewPayPal(pp),
		Log:       log,
		Currency:  "INR",
		ReturnURL: "http://localhost:3000/payment-return",
		CancelURL: "http://localhost:3000/payment-cancel",
	})

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		CorsOrigin:   "http://localhost:3000",
		Log:          log,
		DB:           db,
		Orchestrator: orc,
	}))
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, DB: db, Paypal: mp}, nil
}

func (env *TestEnv) countOrders(t *testing.T) int {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n int
	if err := env.DB.GetContext(ctx, &n, `SELECT count(*) FROM orders`); err != nil {
		t.Fatalf("counting orders: %v", err)
	}
	return n
}
