package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(SessionsRejected.WithLabelValues("capacity"))
	SessionsRejected.WithLabelValues("capacity").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionsRejected.WithLabelValues("capacity")))

	OverflowEnabled.Set(1)
	assert.Equal(t, float64(1), testutil.ToFloat64(OverflowEnabled))

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "chatdesk_sessions_rejected_total")
	assert.Contains(t, string(body), "chatdesk_overflow_enabled 1")
	assert.Contains(t, string(body), "go_goroutines")
}
