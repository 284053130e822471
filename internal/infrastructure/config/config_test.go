package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": validSecret,
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "4000" {
		t.Fatalf("expected default port 4000, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.TokenTTL)
	}
	if cfg.StoreBackend != BackendMongo {
		t.Fatalf("expected mongo backend, got %s", cfg.StoreBackend)
	}
	if cfg.DynamoDB.UsersTable != "ConnectlyUsers" || cfg.DynamoDB.MessagesTable != "Messages" {
		t.Fatalf("unexpected table names %+v", cfg.DynamoDB)
	}
	if cfg.Redis.Addr != "" || cfg.Events.RabbitMQURL != "" {
		t.Fatalf("optional dependencies must default to disabled")
	}
	if cfg.Events.Queue != "chat.message.created" || cfg.Events.Workers != 4 {
		t.Fatalf("unexpected events config %+v", cfg.Events)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        validSecret,
		"PORT":              "9000",
		"STORE_BACKEND":     "dynamodb",
		"DYNAMODB_ENDPOINT": "http://localhost:8000",
		"TOKEN_TTL":         "30m",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "9000" || cfg.StoreBackend != BackendDynamoDB || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DynamoDB.Endpoint != "http://localhost:8000" {
		t.Fatalf("unexpected endpoint %s", cfg.DynamoDB.Endpoint)
	}
}

func TestLoadWith_Rejects(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing secret": {map[string]string{}, "JWT_SECRET is required"},
		"short secret":   {map[string]string{"JWT_SECRET": "short"}, "at least 32 bytes"},
		"bad backend":    {map[string]string{"JWT_SECRET": validSecret, "STORE_BACKEND": "sqlite"}, "STORE_BACKEND"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
