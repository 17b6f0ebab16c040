package mocks

import (
	"time"

	"github.com/cradoe/carvest/internal/config"
)

// NewConfig returns settings suitable for handler and middleware tests.
func NewConfig() *config.Config {
	var cfg config.Config

	cfg.BaseURL = "http://localhost"
	cfg.HttpPort = 8080
	cfg.Db.Dsn = "mock_dsn"
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Notifications.Email = ""
	cfg.Smtp.From = "Carvest <no-reply@example.com>"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Kafka.LedgerTopic = "ledger.events"
	cfg.SettingsCacheTTL = 5 * time.Second

	return &cfg
}
