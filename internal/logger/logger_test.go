package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func jsonLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core)
}

// Property: component loggers always write structured entries naming the component
func TestProperty_NamedLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("entries carry message, level and component", prop.ForAll(
		func(message string, component string) bool {
			var buf bytes.Buffer
			base := jsonLogger(&buf)

			Named(base, component).Info(message, zap.String("product_id", "p1"))
			base.Sync()

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Logf("FAIL: entry is not JSON: %v", err)
				return false
			}
			return entry["msg"] == message &&
				entry["level"] == "info" &&
				entry["logger"] == component &&
				entry["component"] == component &&
				entry["product_id"] == "p1"
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNamedWithNilBase(t *testing.T) {
	logger := Named(nil, "store")

	require.NotNil(t, logger)
	logger.Info("Discarded")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantDebug bool
		wantErr   bool
	}{
		{"development defaults to debug", "development", "", true, false},
		{"production defaults to info", "production", "", false, false},
		{"level override", "development", "warn", false, false},
		{"production debug", "production", "debug", true, false},
		{"invalid level", "production", "loud", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
		})
	}
}

func TestNewWithDefaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "")

	logger := NewWithDefaults()

	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
