package mongo

import (
	"testing"
	"time"
)

func TestConfig_ClientOptions(t *testing.T) {
	opts := Config{URI: "mongodb://localhost:27017", AppName: "identity-api", Timeout: 3 * time.Second}.clientOptions()

	if opts.AppName == nil || *opts.AppName != "identity-api" {
		t.Errorf("app name not applied: %v", opts.AppName)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != 3*time.Second {
		t.Errorf("server selection timeout = %v, want 3s", opts.ServerSelectionTimeout)
	}
	if opts.WriteConcern == nil || opts.WriteConcern.W != "majority" {
		t.Errorf("write concern = %+v, want majority", opts.WriteConcern)
	}
	if opts.RetryWrites == nil || !*opts.RetryWrites {
		t.Error("retryable writes should be on")
	}
}

func TestConfig_DefaultTimeout(t *testing.T) {
	opts := Config{URI: "mongodb://localhost:27017"}.clientOptions()

	if opts.AppName != nil {
		t.Errorf("empty app name should not be sent, got %q", *opts.AppName)
	}
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != defaultTimeout {
		t.Errorf("connect timeout = %v, want %v", opts.ConnectTimeout, defaultTimeout)
	}
}
