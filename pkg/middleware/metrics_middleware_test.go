package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/routra-dev/routra/pkg/routectx"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func dispatchRequest(app string) *http.Request {
	r := httptest.NewRequest("GET", "/"+app+"/index", nil)
	return routectx.Attach(r, &routectx.Context{
		App:      app,
		Page:     "index",
		Module:   app + "/index",
		Function: "process",
	})
}

func TestPrometheusMiddleware_RecordsDispatches(t *testing.T) {
	t.Run("success counts under the app and status class", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		handler := Prometheus(WithRegistry(reg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), dispatchRequest("polls"))

		m := globalMetrics
		if m == nil {
			t.Fatal("expected metrics to be initialized")
		}
		if got := metricCounterValue(t, m.dispatchesTotal.WithLabelValues("polls", "2xx")); got != 1 {
			t.Fatalf("dispatches_total(polls, 2xx)=%v, want 1", got)
		}
		if got := metricHistogramCount(t, m.dispatchDuration.WithLabelValues("polls")); got != 1 {
			t.Fatalf("dispatch_duration count=%v, want 1", got)
		}
	})

	t.Run("not-found counts as 4xx", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		handler := Prometheus(WithRegistry(reg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), dispatchRequest("polls"))

		if got := metricCounterValue(t, globalMetrics.dispatchesTotal.WithLabelValues("polls", "4xx")); got != 1 {
			t.Fatalf("dispatches_total(polls, 4xx)=%v, want 1", got)
		}
	})

	t.Run("request without dispatch context counts under unknown", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		handler := Prometheus(WithRegistry(reg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

		if got := metricCounterValue(t, globalMetrics.dispatchesTotal.WithLabelValues("unknown", "2xx")); got != 1 {
			t.Fatalf("dispatches_total(unknown, 2xx)=%v, want 1", got)
		}
	})

	t.Run("implicit 200 when handler never writes a header", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		handler := Prometheus(WithRegistry(reg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		handler.ServeHTTP(httptest.NewRecorder(), dispatchRequest("polls"))

		if got := metricCounterValue(t, globalMetrics.dispatchesTotal.WithLabelValues("polls", "2xx")); got != 1 {
			t.Fatalf("dispatches_total(polls, 2xx)=%v, want 1", got)
		}
	})
}

func TestPrometheusMiddleware_RecordFunctions(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))

	RecordInternalRedirect("polls/results")
	RecordInternalRedirect("polls/results")
	RecordRedirect(false)
	RecordRedirect(true)
	RecordCacheFlush()
	RecordTemplateRender("polls")

	m := globalMetrics
	if got := metricCounterValue(t, m.internalRedirects.WithLabelValues("polls/results")); got != 2 {
		t.Errorf("internal_redirects_total=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.externalRedirects.WithLabelValues("temporary")); got != 1 {
		t.Errorf("external_redirects_total(temporary)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.externalRedirects.WithLabelValues("permanent")); got != 1 {
		t.Errorf("external_redirects_total(permanent)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.cacheFlushes); got != 1 {
		t.Errorf("resolver_cache_flushes_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.templateRenders.WithLabelValues("polls")); got != 1 {
		t.Errorf("template_renders_total=%v, want 1", got)
	}
}

func TestRecordFunctionsBeforeInit(t *testing.T) {
	resetGlobalMetricsForTest()
	// Must not panic when the middleware was never installed.
	RecordInternalRedirect("polls/results")
	RecordRedirect(true)
	RecordCacheFlush()
	RecordTemplateRender("polls")
}
