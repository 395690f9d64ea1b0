package main

import (
	"testing"

	"docchat/internal/app"
)

func TestApplyEnvOverrides_ServerURL(t *testing.T) {
	t.Setenv("DOCCHAT_SERVER_URL", "http://backend:9000")
	t.Setenv("DOCCHAT_DOCUMENT_TYPE", "")

	cfg := app.DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.ServerURL != "http://backend:9000" {
		t.Fatalf("server url = %q, want env override", cfg.ServerURL)
	}
	if cfg.DocumentType != "general" {
		t.Fatalf("document type = %q, want default kept", cfg.DocumentType)
	}
}

func TestApplyEnvOverrides_DocumentType(t *testing.T) {
	t.Setenv("DOCCHAT_SERVER_URL", "")
	t.Setenv("DOCCHAT_DOCUMENT_TYPE", "medical")

	cfg := app.DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.DocumentType != "medical" {
		t.Fatalf("document type = %q, want medical", cfg.DocumentType)
	}
}
