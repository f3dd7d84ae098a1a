package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"EMAIL_USER": "mailer@example.com",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.OTPStore != OTPStoreMongo || cfg.Mongo.Database != "auth_service" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SMTP.Port != 587 || cfg.SMTP.Host != "smtp.gmail.com" {
		t.Fatalf("unexpected smtp defaults: %+v", cfg.SMTP)
	}
	if cfg.SMTP.From != "mailer@example.com" {
		t.Fatalf("from should fall back to EMAIL_USER, got %q", cfg.SMTP.From)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("default env should be development")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_InvalidOTPStore(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"OTP_STORE":  "memcached",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown OTP_STORE")
	}
}

func TestLoad_OriginsList(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"CORS_ALLOWED_ORIGINS": "http://a.test,http://b.test",
		"OTP_STORE":            "redis",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}
