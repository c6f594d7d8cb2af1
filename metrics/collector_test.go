package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/internal/climatetest"
)

func TestCollectorObserve(t *testing.T) {
	collector := NewCollector()
	entity := climate.New(&climatetest.Session{
		ID:          "living_room",
		DisplayName: "Living room",
		Online:      true,
		On:          true,
		Operation:   "cold",
		HasMode:     true,
		Current:     215,
		Target:      230,
	})

	collector.Observe(entity)

	assert.Equal(t, 21.5, testutil.ToFloat64(collector.currentTemp.WithLabelValues("living_room", "Living room", "C")))
	assert.Equal(t, 23.0, testutil.ToFloat64(collector.targetTemp.WithLabelValues("living_room", "Living room", "C")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.available.WithLabelValues("living_room", "Living room")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.mode.WithLabelValues("living_room", "Living room", "cool")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.mode.WithLabelValues("living_room", "Living room", "heat")))
}

func TestCollectorCounters(t *testing.T) {
	collector := NewCollector()
	entity := climate.New(&climatetest.Session{ID: "attic", Online: true})

	collector.CommandHandled(entity, "mode", nil)
	collector.CommandHandled(entity, "mode", errors.New("timeout"))
	collector.CommandHandled(entity, "mode", nil)
	collector.PollFailed(entity)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.commands.WithLabelValues("attic", "mode", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commands.WithLabelValues("attic", "mode", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.pollErrors.WithLabelValues("attic")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.available.WithLabelValues("attic", "")))
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector()
	collector.MustRegister(registry)

	collector.Observe(climate.New(&climatetest.Session{ID: "attic", DisplayName: "Attic", Current: 180}))

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, metric := range []string{
		"floureon_current_temperature",
		"floureon_target_temperature",
		"floureon_available",
		"floureon_mode",
	} {
		assert.True(t, strings.Contains(body, metric), "expected metric %s", metric)
	}
	assert.Contains(t, body, `device="attic"`)
}
