package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"triage/internal/config"
)

// Setup configures the standard logrus logger from cfg. Output goes to stderr
// so command output on stdout stays machine readable.
func Setup(cfg config.LogConfig) {
	configure(log.StandardLogger(), cfg, os.Stderr)
}

// New returns a logger configured from cfg writing to out.
func New(cfg config.LogConfig, out io.Writer) *log.Logger {
	l := log.New()
	configure(l, cfg, out)
	return l
}

func configure(l *log.Logger, cfg config.LogConfig, out io.Writer) {
	l.SetOutput(out)

	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&log.JSONFormatter{})
	}
}
