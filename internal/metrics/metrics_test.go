package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.RecordRead("read", "registered", 5*time.Millisecond)
	m.RecordRead("read", "registered", 7*time.Millisecond)
	m.RecordRead("checkin", "not_found", time.Millisecond)
	m.RecordRouterError("MALFORMED_MESSAGE")
	m.RecordCommand("START_PAIRING")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReadsTotal.WithLabelValues("read", "registered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReadsTotal.WithLabelValues("checkin", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouterErrors.WithLabelValues("MALFORMED_MESSAGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsPublished.WithLabelValues("START_PAIRING")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRead("read", "failed", time.Millisecond)
		m.RecordRouterError("INTERNAL_ERROR")
		m.RecordCommand("CANCEL_PAIRING")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordCommand("PET_INFO")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `rfid_gateway_commands_published_total{command="PET_INFO"} 1`)
}
