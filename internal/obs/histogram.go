package obs

import (
	"math"
	"time"

	"github.com/yanun0323/logs"
)

const (
	// 100ns buckets up to 1ms; everything slower lands in the last
	// (saturating) bucket.
	bucketWidthNs = 100
	numBuckets    = 10000
)

// Histogram is a fixed-bucket latency histogram wrapped around the hot
// path. Storage is inline and recording never allocates, so Start/Stop
// pairs are safe inside the tick loop. A Histogram belongs to one
// goroutine; it is not synchronized.
type Histogram struct {
	name    string
	started time.Time
	count   uint64
	min     uint64
	max     uint64
	buckets [numBuckets]uint64
}

// HistogramSnapshot is a point-in-time summary. Percentile resolution is
// one bucket width.
type HistogramSnapshot struct {
	Name  string
	Count uint64
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P99   time.Duration
	P999  time.Duration
}

// NewHistogram creates a histogram labeled with name for reporting.
func NewHistogram(name string) *Histogram {
	return &Histogram{name: name, min: math.MaxUint64}
}

// Start marks the beginning of a measured region.
func (h *Histogram) Start() {
	h.started = time.Now()
}

// Stop records the time elapsed since Start.
func (h *Histogram) Stop() {
	h.Record(uint64(time.Since(h.started)))
}

// Record adds one pre-measured duration in nanoseconds.
func (h *Histogram) Record(ns uint64) {
	h.count++
	if ns < h.min {
		h.min = ns
	}
	if ns > h.max {
		h.max = ns
	}
	idx := ns / bucketWidthNs
	if idx >= numBuckets {
		idx = numBuckets - 1
	}
	h.buckets[idx]++
}

// Snapshot summarizes the recorded samples.
func (h *Histogram) Snapshot() HistogramSnapshot {
	s := HistogramSnapshot{Name: h.name, Count: h.count}
	if h.count == 0 {
		return s
	}
	s.Min = time.Duration(h.min)
	s.Max = time.Duration(h.max)
	s.P50 = h.percentile(0.50)
	s.P99 = h.percentile(0.99)
	s.P999 = h.percentile(0.999)
	return s
}

// percentile walks the buckets accumulating counts; the answer is the end
// of the bucket where the accumulation crosses the target rank.
func (h *Histogram) percentile(q float64) time.Duration {
	target := uint64(math.Ceil(q * float64(h.count)))
	if target == 0 {
		target = 1
	}
	var accumulated uint64
	for i := 0; i < numBuckets; i++ {
		accumulated += h.buckets[i]
		if accumulated >= target {
			return time.Duration((i + 1) * bucketWidthNs)
		}
	}
	return time.Duration(numBuckets * bucketWidthNs)
}

// Report logs the snapshot.
func (h *Histogram) Report() {
	s := h.Snapshot()
	if s.Count == 0 {
		logs.Infof("latency[%s]: no samples", s.Name)
		return
	}
	logs.Infof("latency[%s]: samples=%d min=%s max=%s p50=%s p99=%s p99.9=%s",
		s.Name, s.Count, s.Min, s.Max, s.P50, s.P99, s.P999)
}
