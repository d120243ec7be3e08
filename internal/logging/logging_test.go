package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("tagged volume", "volume", "vol-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "tagged volume", record["msg"])
	assert.Equal(t, "vol-1", record["volume"])
}

func TestNew_Logfmt(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatLogfmt, &buf)
	require.NoError(t, err)

	log.New("component", "collector").Debug("listing volumes")
	assert.Contains(t, buf.String(), "component=collector")
	assert.Contains(t, buf.String(), `msg="listing volumes"`)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", FormatJSON, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("nothing to see", "k", "v")
	})
}
