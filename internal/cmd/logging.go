package cmd

import (
	"io"
	"log/slog"

	"github.com/connesc/appticket/config"
)

// newLogger builds the logger of the configured format and level. Logs go to stderr
// so that they never mix with the encoded output.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
