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

// Failure reasons recorded by IncGenerateFailed.
const (
	ReasonNoText       = "no_text"
	ReasonModel        = "model_error"
	ReasonMalformed    = "malformed_json"
	ReasonSchema       = "schema_violation"
	ReasonPersistence  = "persistence"
	ReasonArchive      = "archive"
	ReasonInvalidInput = "invalid_input"
)

var (
	generateStartedTotal   atomic.Uint64
	generateCompletedTotal atomic.Uint64
	generateFailed         = newLabeledCounter()
	resumeFetchTotal       = newLabeledCounter()

	generateDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 20000, 30000, 60000, 120000})
)

// IncGenerateStarted increments the started counter.
func IncGenerateStarted() {
	generateStartedTotal.Add(1)
}

// IncGenerateCompleted increments the completed counter.
func IncGenerateCompleted() {
	generateCompletedTotal.Add(1)
}

// IncGenerateFailed increments the failure counter for reason.
func IncGenerateFailed(reason string) {
	generateFailed.Inc(reason)
}

// IncResumeFetch counts fetches by access tier ("full" or "teaser").
func IncResumeFetch(tier string) {
	resumeFetchTotal.Inc(tier)
}

// ObserveGenerateDurationMs records a generation duration in milliseconds.
func ObserveGenerateDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generateDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_generate_started_total", "Total resume generations started", generateStartedTotal.Load())
	writeCounter(&buf, "resume_generate_completed_total", "Total resume generations persisted", generateCompletedTotal.Load())
	writeLabeledCounter(&buf, "resume_generate_failed_total", "Total resume generations failed by reason", "reason", generateFailed.Snapshot())
	writeLabeledCounter(&buf, "resume_fetch_total", "Total resume fetches by access tier", "tier", resumeFetchTotal.Snapshot())
	writeHistogram(&buf, "resume_generate_duration_ms", "Resume generation duration in milliseconds", generateDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound covers it; rendering accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
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
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
