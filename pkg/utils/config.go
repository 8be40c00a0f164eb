package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Booking  BookingConfig
	Payment  PaymentConfig
	Redis    RedisConfig
	Broker   BrokerConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret string
}

type BookingConfig struct {
	SeatLockTTL       time.Duration
	PendingTTL        time.Duration
	SweepInterval     time.Duration
	FlatSeatPrice     float64
	QRBaseURL         string
	CaptureOnCreation bool
}

type PaymentConfig struct {
	SuccessRate float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	SeatTTL  time.Duration
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "event-ticketing")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("LOG_MAX_SIZE_MB", 10)
	viper.SetDefault("LOG_MAX_BACKUPS", 7)
	viper.SetDefault("REQUEST_TIMEOUT", "15s")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SEAT_LOCK_TTL", "10m")
	viper.SetDefault("BOOKING_PENDING_TTL", "15m")
	viper.SetDefault("SWEEP_INTERVAL", "1m")
	viper.SetDefault("FLAT_SEAT_PRICE", 100)
	viper.SetDefault("PAYMENT_SUCCESS_RATE", 0.9)
	viper.SetDefault("PAYMENT_CAPTURE_ON_BOOKING", false)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SEAT_CACHE_TTL", "30s")
	viper.SetDefault("BOOKING_EXCHANGE", "bookings")
	viper.SetDefault("QR_BASE_URL", "https://api.qrserver.com/v1/create-qr-code/")

	// .env is optional, plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			LogMaxSizeMB:   viper.GetInt("LOG_MAX_SIZE_MB"),
			LogMaxBackups:  viper.GetInt("LOG_MAX_BACKUPS"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Booking: BookingConfig{
			SeatLockTTL:       viper.GetDuration("SEAT_LOCK_TTL"),
			PendingTTL:        viper.GetDuration("BOOKING_PENDING_TTL"),
			SweepInterval:     viper.GetDuration("SWEEP_INTERVAL"),
			FlatSeatPrice:     viper.GetFloat64("FLAT_SEAT_PRICE"),
			QRBaseURL:         viper.GetString("QR_BASE_URL"),
			CaptureOnCreation: viper.GetBool("PAYMENT_CAPTURE_ON_BOOKING"),
		},
		Payment: PaymentConfig{
			SuccessRate: viper.GetFloat64("PAYMENT_SUCCESS_RATE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			SeatTTL:  viper.GetDuration("SEAT_CACHE_TTL"),
		},
		Broker: BrokerConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("BOOKING_EXCHANGE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}
