package config

import "time"

type Config struct {
	Web       Web
	DB        DB
	Payment   Payment
	Paypal    Paypal
	Stripe    Stripe
	Cors      Cors
	Redis     Redis
	Kafka     Kafka
	Rate      Rate
	Telemetry Telemetry
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:5000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:elearning"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
}

// Payment selects the gateway used for paid courses and the redirect targets
// handed to it.
type Payment struct {
	Provider  string `conf:"default:paypal,help:paypal or stripe"`
	Currency  string `conf:"default:INR"`
	ReturnURL string `conf:"default:http://localhost:3000/payment-return"`
	CancelURL string `conf:"default:http://localhost:3000/payment-cancel"`
}

type Paypal struct {
	ClientID string `conf:"mask"`
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api-m.sandbox.paypal.com"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:3000"`
}

type Redis struct {
	Addr     string        `conf:"help:leave empty to disable confirmation locking"`
	Password string        `conf:"mask"`
	DB       int           `conf:"default:0"`
	LockTTL  time.Duration `conf:"default:30s"`
}

type Kafka struct {
	Brokers []string `conf:"help:leave empty to disable enrollment events"`
	Topic   string   `conf:"default:course.enrolled"`
}

type Rate struct {
	Burst  int           `conf:"default:10"`
	Every  time.Duration `conf:"default:1s"`
	Expiry time.Duration `conf:"default:5m"`
}

type Telemetry struct {
	ServiceName  string `conf:"default:elearning"`
	OTLPEndpoint string `conf:"help:OTLP gRPC endpoint (empty disables tracing)"`
}
