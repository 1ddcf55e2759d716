package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) Event {
	t.Helper()
	line := buf.String()
	idx := strings.Index(line, "AUDIT: ")
	require.GreaterOrEqual(t, idx, 0)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line[idx+len("AUDIT: "):])), &ev))
	buf.Reset()
	return ev
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	logger.LogInvoice(EventInvoiceCreated, "inv-1", "c1", 25050, "pending")
	ev := decodeLine(t, &buf)
	assert.Equal(t, EventInvoiceCreated, ev.EventType)
	assert.Equal(t, int64(25050), ev.Amount)
	assert.Equal(t, "c1", ev.CustomerID)

	logger.LogError("delete", "inv-2", errors.New("boom"))
	ev = decodeLine(t, &buf)
	assert.Equal(t, EventError, ev.EventType)
	assert.Equal(t, "FAILED", ev.Status)
	assert.Equal(t, map[string]any{"operation": "delete", "error": "boom"}, ev.Details)

	logger.LogDelete("inv-3", 0)
	ev = decodeLine(t, &buf)
	assert.Equal(t, EventInvoiceDeleted, ev.EventType)
	assert.Equal(t, map[string]any{"rows_affected": float64(0)}, ev.Details)
}
