package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogrusLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusLoggerWithOutput(&buf)

	l.Info("Bid accepted", map[string]any{"auction_id": "a1", "amount": 10100})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Bid accepted", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "a1", line["auction_id"])
	assert.Equal(t, float64(10100), line["amount"])
}

func TestLogrusLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusLoggerWithOutput(&buf)
	l.SetLevel(core.LogLevelWarn)

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	assert.Zero(t, buf.Len())

	l.Warn("shown", nil)
	assert.NotZero(t, buf.Len())
	assert.Equal(t, core.LogLevelWarn, l.GetLevel())
	assert.NoError(t, l.Flush())
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	atom := zap.NewAtomicLevelAt(zap.InfoLevel)
	obsCore, logs := observer.New(atom)
	l := newZapLogger(zap.New(obsCore), atom)

	l.Debug("hidden", nil)
	l.Info("Auction completed", map[string]any{"auction_id": "a1"})
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Auction completed", entry.Message)
	assert.Equal(t, "a1", entry.ContextMap()["auction_id"])

	l.SetLevel(core.LogLevelDebug)
	l.Debug("now visible", nil)
	assert.Equal(t, 2, logs.Len())

	l.SetLevel(core.LogLevelError)
	l.Warn("hidden", nil)
	l.Error("failure", map[string]any{"error": "boom"})
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, core.LogLevelError, l.GetLevel())
}

func TestNew(t *testing.T) {
	l, err := New("logrus", "debug", true)
	require.NoError(t, err)
	assert.IsType(t, &LogrusLogger{}, l)
	assert.Equal(t, core.LogLevelDebug, l.GetLevel())

	l, err = New("", "warn", false)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)
	assert.Equal(t, core.LogLevelWarn, l.GetLevel())

	_, err = New("syslog", "info", false)
	assert.Error(t, err)
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.SetLevel(core.LogLevelError)
	l.Error("ignored", map[string]any{"k": "v"})
	assert.Equal(t, core.LogLevelError, l.GetLevel())
	assert.NoError(t, l.Flush())
}
