package config

import "time"

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
		Folder    string
	}
	Redis struct {
		Addr string
		DB   int
	}
	Kafka struct {
		Servers     string
		LedgerTopic string
		GroupID     string
	}
	// SettingsCacheTTL bounds how stale a gating decision may be.
	SettingsCacheTTL time.Duration
	Admin            struct {
		Email    string
		Password string
	}
}
