package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-suite/authgate/internal/logger"
)

func consoleJSON(level string) logger.Log {
	return logger.Log{
		LogLevel:    level,
		LogEnv:      "test",
		ServiceName: "authgate",
		AppName:     "authgate",
		Console:     logger.Console{Enabled: true},
	}
}

func TestInitRejectsConfig(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           logger.Log
		expectedError error
	}{
		{name: "unknown level", cfg: logger.Log{LogLevel: "loud", ServiceName: "s", AppName: "a"}, expectedError: logger.ErrUnsupportedLevel},
		{name: "no service name", cfg: logger.Log{LogLevel: "info", AppName: "a"}, expectedError: logger.ErrServiceNameIsEmpty},
		{name: "no app name", cfg: logger.Log{LogLevel: "info", ServiceName: "s"}, expectedError: logger.ErrAppNameIsEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, logger.Init(tc.cfg), tc.expectedError)
		})
	}
}

func TestInitConsole(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          logger.Log
		expectedMsgs []string
		json         bool
	}{
		{
			name: "nothing enabled",
			cfg:  logger.Log{ServiceName: "authgate", AppName: "authgate"},
		},
		{
			name:         "json at info",
			cfg:          consoleJSON("info"),
			expectedMsgs: []string{"info event", "error event"},
			json:         true,
		},
		{
			name:         "json at trace",
			cfg:          consoleJSON("trace"),
			expectedMsgs: []string{"info event", "error event", "trace event"},
			json:         true,
		},
		{
			name: "console writer",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "authgate", AppName: "authgate",
				Console: logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			expectedMsgs: []string{"info event", "error event"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureInit(t, tc.cfg)

			if len(tc.expectedMsgs) == 0 {
				assert.Empty(t, out)
				return
			}

			for _, msg := range tc.expectedMsgs {
				assert.Contains(t, out, msg)
			}

			if !tc.json {
				return
			}

			if tc.cfg.LogLevel != "trace" {
				assert.NotContains(t, out, "trace event")
			}

			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				var event map[string]interface{}

				require.NoError(t, json.Unmarshal([]byte(line), &event), line)
				assert.Equal(t, "authgate", event["app"])
				assert.Equal(t, "test", event["env"])
			}
		})
	}
}

func TestInitFiles(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "authgate",
		AppName:     "authgate",
		File: logger.LogFile{
			Enabled:   true,
			Path:      dir,
			AccessLog: "access.log",
			ErrorLog:  "error.log",
			InfoLog:   "info.log",
			TraceLog:  "trace.log",
			WarnLog:   "warn.log",
		},
	})
	require.NoError(t, err)

	log.Info().Msg("role created")
	log.Warn().Msg("system role change rejected")
	log.Error().Msg("failed to check permission")

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		return string(b)
	}

	assert.Contains(t, read("info.log"), "role created")
	assert.Contains(t, read("warn.log"), "system role change rejected")
	assert.Contains(t, read("error.log"), "failed to check permission")
	assert.NotContains(t, read("error.log"), "role created")
}

func TestLevelWriter(t *testing.T) {
	var errOut, infoOut, traceOut, warnOut bytes.Buffer

	lw := &logger.LevelWriter{ErrorWriter: &errOut, InfoWriter: &infoOut, TraceWriter: &traceOut, WarnWriter: &warnOut}

	testCases := []struct {
		level    zerolog.Level
		expected *bytes.Buffer
	}{
		{level: zerolog.TraceLevel, expected: &traceOut},
		{level: zerolog.DebugLevel, expected: &infoOut},
		{level: zerolog.InfoLevel, expected: &infoOut},
		{level: zerolog.WarnLevel, expected: &warnOut},
		{level: zerolog.ErrorLevel, expected: &errOut},
		{level: zerolog.FatalLevel, expected: &errOut},
	}

	for _, tc := range testCases {
		t.Run(tc.level.String(), func(t *testing.T) {
			tc.expected.Reset()

			n, err := lw.WriteLevel(tc.level, []byte(tc.level.String()))
			require.NoError(t, err)
			assert.Equal(t, len(tc.level.String()), n)
			assert.Equal(t, tc.level.String(), tc.expected.String())
		})
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("dropped"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestErrorHandlerCountsFailures(t *testing.T) {
	before := logger.WriteFailures()

	logger.ErrorHandler(errors.New("disk full"))

	assert.Equal(t, before+1, logger.WriteFailures())
}

// captureInit runs Init with stdout and stderr redirected and returns what
// a few events printed.
func captureInit(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	initErr := logger.Init(cfg)

	log.Info().Msg("info event")
	log.Error().Err(errors.New("a test error")).Msg("error event") //nolint:goerr113
	log.Trace().Msg("trace event")

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	require.NoError(t, initErr)

	return <-outC
}
