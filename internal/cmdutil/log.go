// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	"polyreact/internal/config"
	"polyreact/internal/logging"
)

// NewLogger builds the command logger on dst. Quiet silences it.
func NewLogger(dst io.Writer, cfg *config.Config, quiet bool) *logging.Logger {
	if quiet {
		return logging.Discard()
	}
	log := logging.New()
	log.SetOutput(dst)
	log.SetFormat(cfg.LogFormat)
	if lvl, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
