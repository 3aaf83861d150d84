package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/99minutos/accounts-api/pkg/logger"
)

func TestRun_MissingSecretReturnsError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRun_UnreachableMongoReturnsError(t *testing.T) {
	logger.Reset()
	t.Cleanup(logger.Reset)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MONGO_URI", "mongodb://127.0.0.1:1")
	t.Setenv("MONGO_TIMEOUT", "200ms")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "connect to mongodb") {
		t.Fatalf("expected mongodb error returned to the caller, got %v", err)
	}
}
