package perf

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Method     string // HTTP method (empty for queries)
	Path       string // HTTP path or "ExecContext"-style query op
	Route      string // Route pattern; used as the metric label for requests
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps a fixed-size ring buffer of timing entries and mirrors
// them into Prometheus metrics on its own registry.
// Writes are non-blocking; when full, oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64 // total entries ever written (atomic for stats)

	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	registrations   *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0
// POST: Returns a ready-to-use collector with pre-allocated storage and a
// registry holding the sportsday metrics plus Go runtime collectors
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		entries:  make([]Entry, size),
		size:     size,
		registry: reg,
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sportsday_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sportsday_store_query_duration_seconds",
			Help:    "Database call latency by operation",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsday_registrations_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsday_confirmation_emails_total",
			Help: "Confirmation email deliveries by result",
		}, []string{"result"}),
	}
}

// Record appends an entry to the ring buffer and observes its duration.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten
// Lock hold time: single index increment + struct copy (~nanoseconds).
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)

	seconds := e.DurationMs / 1000
	switch e.Kind {
	case KindRequest:
		route := e.Route
		if route == "" {
			route = "unmatched"
		}
		c.requestDuration.WithLabelValues(e.Method, route, strconv.Itoa(e.StatusCode)).Observe(seconds)
	case KindQuery:
		c.queryDuration.WithLabelValues(e.Path).Observe(seconds)
	}
}

// RegistrationOutcome counts one finished registration attempt, labelled
// "created", "invalid", "duplicate" or "store_error".
func (c *Collector) RegistrationOutcome(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

// Delivery counts one confirmation email attempt ("sent" or "failed").
func (c *Collector) Delivery(result string) {
	c.deliveries.WithLabelValues(result).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TotalRecorded returns the total number of entries ever recorded.
// PRE: none
// POST: returns count >= 0
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded  int64
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestPaths   []PathStat
	SlowestQueries []PathStat
}

// PathStat aggregates timing for a single route or query op.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// Snapshot computes aggregated stats from the ring buffer.
// Sorting makes this expensive; the server calls it once, at shutdown.
// PRE: none
// POST: Returns a Snapshot with percentiles and top-N lists
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations []float64
	requestStats := make(map[string]*PathStat)
	queryStats := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
			key := e.Route
			if key == "" {
				key = e.Path
			}
			accumulate(requestStats, e.Method+" "+key, e.DurationMs)
		case KindQuery:
			accumulate(queryStats, e.Path, e.DurationMs)
		}
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		SlowestPaths:   topByAvg(requestStats, topN),
		SlowestQueries: topByAvg(queryStats, topN),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}

	return snap
}

func accumulate(stats map[string]*PathStat, key string, durationMs float64) {
	s, ok := stats[key]
	if !ok {
		s = &PathStat{Path: key}
		stats[key] = s
	}
	s.Count++
	s.TotalMs += durationMs
	if durationMs > s.MaxMs {
		s.MaxMs = durationMs
	}
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N paths sorted by average duration (descending).
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
