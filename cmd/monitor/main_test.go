package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/reissbruno/monitoramento-processual-tjsp/config"
)

func TestNewLogHandler(t *testing.T) {
	tests := []struct {
		cfg      config.LogConfig
		debugOn  bool
		infoOn   bool
		wantText bool
	}{
		{config.LogConfig{Level: "debug", Format: "text"}, true, true, true},
		{config.LogConfig{Level: "info", Format: "json"}, false, true, false},
		{config.LogConfig{Level: "error"}, false, false, false},
		{config.LogConfig{Level: "bogus"}, false, true, false},
	}
	for _, tt := range tests {
		h := newLogHandler(tt.cfg)
		if got := h.Enabled(context.Background(), slog.LevelDebug); got != tt.debugOn {
			t.Errorf("%+v: debug enabled = %v, want %v", tt.cfg, got, tt.debugOn)
		}
		if got := h.Enabled(context.Background(), slog.LevelInfo); got != tt.infoOn {
			t.Errorf("%+v: info enabled = %v, want %v", tt.cfg, got, tt.infoOn)
		}
		_, isText := h.(*slog.TextHandler)
		if isText != tt.wantText {
			t.Errorf("%+v: text handler = %v, want %v", tt.cfg, isText, tt.wantText)
		}
	}
}
