package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	predictionsTotal       atomic.Uint64
	predictionsFailedTotal atomic.Uint64
	diabeticTotal          atomic.Uint64

	predictionDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})

	requests = newCounterVec()
)

// IncPrediction counts a stored prediction and its outcome.
func IncPrediction(diabetic bool) {
	predictionsTotal.Add(1)
	if diabetic {
		diabeticTotal.Add(1)
	}
}

// IncPredictionFailed counts a prediction request that could not be served.
func IncPredictionFailed() {
	predictionsFailedTotal.Add(1)
}

// ObservePredictionMs records the time spent scoring and storing one prediction.
func ObservePredictionMs(ms float64) {
	if ms < 0 {
		ms = 0
	}
	predictionDuration.Observe(ms)
}

// IncRequest counts one HTTP response by route and status code.
func IncRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	requests.Inc(fmt.Sprintf(`route=%q,status="%d"`, route, status))
}

// Handler serves the Prometheus text exposition.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render returns every metric in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "predictions_total", "Predictions stored", predictionsTotal.Load())
	writeCounter(&buf, "predictions_diabetic_total", "Predictions classified as diabetic", diabeticTotal.Load())
	writeCounter(&buf, "predictions_failed_total", "Prediction requests that failed", predictionsFailedTotal.Load())
	writeHistogram(&buf, "prediction_duration_ms", "Prediction latency in milliseconds", predictionDuration.Snapshot())
	writeCounterVec(&buf, "http_requests_total", "HTTP responses by route and status", requests.Snapshot())
	return buf.String()
}

type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

type histogramSnapshot struct {
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]uint64, len(bounds))}
}

// Observe adds value to the first bucket whose bound covers it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.bounds {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		bounds: append([]float64(nil), h.bounds...),
		counts: append([]uint64(nil), h.counts...),
		sum:    h.sum,
		count:  h.count,
	}
}

type counterVec struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: map[string]uint64{}}
}

func (v *counterVec) Inc(labels string) {
	v.mu.Lock()
	v.values[labels]++
	v.mu.Unlock()
}

func (v *counterVec) Snapshot() map[string]uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	for k, n := range v.values {
		out[k] = n
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	labels := make([]string, 0, len(values))
	for k := range values {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, l, values[l])
	}
}

// Buckets are stored non-cumulatively and summed on output.
func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s histogram\n", name, help, name)
	var cumulative uint64
	for i, bound := range snap.bounds {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
