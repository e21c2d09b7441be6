package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Store struct {
		Driver string `env:"DRIVER" envDefault:"postgres"` // postgres | mongo | memory
	} `envPrefix:"STORE_"`
	Database struct {
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Mongo struct {
		URI            string `env:"URI"`
		Database       string `env:"DATABASE" envDefault:"rota"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
	} `envPrefix:"MONGO_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // hours, 14 days
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD"` // empty means generate one per run
		} `envPrefix:"USER_"`
		CompanyID   string `env:"COMPANY_ID" envDefault:"demo"`
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
	} `envPrefix:"SEED_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Rota struct {
		Timezone           string `env:"TIMEZONE" envDefault:"UTC"`
		BatchSize          int    `env:"BATCH_SIZE" envDefault:"400"`
		ConfirmationTTL    int    `env:"CONFIRMATION_TTL" envDefault:"300"`    // seconds
		ImportSessionTTL   int    `env:"IMPORT_SESSION_TTL" envDefault:"7200"` // seconds
		NameMatchThreshold int    `env:"NAME_MATCH_THRESHOLD" envDefault:"15"`
	} `envPrefix:"ROTA_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("DATABASE_DSN is required when STORE_DRIVER=postgres")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case "memory":
	default:
		return errors.New("STORE_DRIVER must be one of postgres, mongo, memory")
	}

	if c.Rota.BatchSize <= 0 {
		return errors.New("ROTA_BATCH_SIZE must be positive")
	}

	if _, err := time.LoadLocation(c.Rota.Timezone); err != nil {
		return err
	}

	return nil
}

// Location returns the timezone used to interpret calendar days and times of day.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Rota.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
