package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsObserve(t *testing.T) {
	c := NewCollectors()

	c.Observe(Tick{Duration: time.Millisecond, Bodies: 10, TrailEntries: 3, Stale: 2, Degenerate: 1, Reloaded: true})
	c.Observe(Tick{Duration: time.Millisecond, Bodies: 7, TrailEntries: 2, Stale: 1})
	c.Placed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticks))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.bodies))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.trailEntries))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.stale))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.degenerate))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reloads))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.placed))
	assert.Equal(t, 1, testutil.CollectAndCount(c.tickDuration))
}

func TestCollectorsExposition(t *testing.T) {
	c := NewCollectors()
	c.Observe(Tick{Bodies: 4})

	expected := `
# HELP gravsim_bodies Live bodies in the world.
# TYPE gravsim_bodies gauge
gravsim_bodies 4
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry, strings.NewReader(expected), "gravsim_bodies"))
}

func TestHandlerServesCollectors(t *testing.T) {
	c := NewCollectors()
	c.Observe(Tick{Duration: time.Millisecond, Bodies: 4})

	srv := httptest.NewServer(Handler(c.Registry))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gravsim_bodies 4")
	assert.Contains(t, string(body), "gravsim_ticks_total 1")

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))
}
