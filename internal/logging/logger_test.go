package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddi-checker/internal/domain"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddi.log")

	logger, closer, err := New(domain.LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.WithField("pairs", 3).Debug("rendered report")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "rendered report", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(3), entry["pairs"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Levels(t *testing.T) {
	logger, _, err := New(domain.LoggingConfig{Level: "WARN", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	_, _, err = New(domain.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Info("dropped") })
}
