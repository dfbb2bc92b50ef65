package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/taxwizard/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestNewWithFormat_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithFormat("text", slog.LevelInfo, &buf)
	logger.Info("failed", "error", errors.New("boom"))
	assert.Contains(t, buf.String(), "err=boom")

	buf.Reset()
	logger = logging.NewWithFormat("json", slog.LevelInfo, &buf)
	logger.Info("failed", "error", errors.New("boom"))
	assert.Contains(t, buf.String(), `"err":"boom"`)
}

func TestNewWithFormat_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithFormat("text", slog.LevelWarn, &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
}
