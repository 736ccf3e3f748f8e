package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	m.ObserveFetch("component", OutcomeOK, 120*time.Millisecond)
	m.ObserveFetch("component", "not_found", 10*time.Millisecond)
	m.ObserveFetch("component", OutcomeOK, 90*time.Millisecond)
	m.FileWritten("component")
	m.ConfigPatched("updated")
	m.PackagesInstalled(OutcomeSkipped)
	m.MirrorRequest("components", http.StatusForbidden)

	assert.Equal(t, 2.0, counter(t, m, "uicli_fetches_total", "asset", "component", "outcome", OutcomeOK))
	assert.Equal(t, 1.0, counter(t, m, "uicli_fetches_total", "asset", "component", "outcome", "not_found"))
	assert.Equal(t, 1.0, counter(t, m, "uicli_files_written_total", "asset", "component"))
	assert.Equal(t, 1.0, counter(t, m, "uicli_config_patches_total", "result", "updated"))
	assert.Equal(t, 1.0, counter(t, m, "uicli_package_installs_total", "outcome", OutcomeSkipped))
	assert.Equal(t, 1.0, counter(t, m, "uicli_mirror_requests_total", "kind", "components", "status", "403"))

	hist := find(t, m, "uicli_fetch_duration_seconds", "asset", "component")
	require.NotNil(t, hist)
	assert.Equal(t, uint64(3), hist.GetHistogram().GetSampleCount())
}

// find returns the sample of family name whose labels equal the given
// name/value pairs.
func find(t *testing.T, m *Metrics, name string, labels ...string) *dto.Metric {
	t.Helper()
	families, err := m.registry.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range f.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for i := 0; i+1 < len(labels); i += 2 {
				if got[labels[i]] != labels[i+1] {
					continue metrics
				}
			}
			return metric
		}
	}
	return nil
}

func counter(t *testing.T, m *Metrics, name string, labels ...string) float64 {
	t.Helper()
	metric := find(t, m, name, labels...)
	if metric == nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

func TestMetrics_ConstLabels(t *testing.T) {
	m := New(WithConstLabels(prometheus.Labels{"project": "demo"}))
	m.FileWritten("utility")

	families, err := m.registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	assert.Equal(t, "uicli_files_written_total", families[0].GetName())
	assert.Equal(t, "demo", families[0].GetMetric()[0].GetLabel()[1].GetValue())
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("component", OutcomeOK, time.Second)
	m.FileWritten("component")
	m.ConfigPatched("updated")
	m.PackagesInstalled(OutcomeOK)
	m.MirrorRequest("styles", 200)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ConfigPatched("already_present")

	path := filepath.Join(t.TempDir(), "uicli.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `uicli_config_patches_total{result="already_present"} 1`)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.PackagesInstalled(OutcomeError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `uicli_package_installs_total{outcome="error"} 1`))
}
