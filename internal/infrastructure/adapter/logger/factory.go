package logger

import (
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
)

// Supported logging backends
const (
	BackendZap    = "zap"
	BackendLogrus = "logrus"
)

// New builds the configured logging backend at the configured level
func New(backend string, level string, isProduction bool) (core.Logger, error) {
	var l core.Logger
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendZap:
		l = NewZapLogger(isProduction)
	case BackendLogrus:
		l = NewLogrusLogger()
	default:
		return nil, fmt.Errorf("unknown logger backend %q", backend)
	}
	l.SetLevel(core.ParseLogLevel(level))
	return l, nil
}
