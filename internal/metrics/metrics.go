package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type Collector struct {
	requests              uint64
	errors                uint64
	applicationsSubmitted uint64
	jobsAutoClosed        uint64
	jobsExpired           uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	if c != nil {
		atomic.AddUint64(&c.requests, 1)
	}
}

func (c *Collector) IncErrors() {
	if c != nil {
		atomic.AddUint64(&c.errors, 1)
	}
}

func (c *Collector) IncApplications() {
	if c != nil {
		atomic.AddUint64(&c.applicationsSubmitted, 1)
	}
}

func (c *Collector) IncJobsAutoClosed() {
	if c != nil {
		atomic.AddUint64(&c.jobsAutoClosed, 1)
	}
}

func (c *Collector) AddJobsExpired(n int64) {
	if c != nil && n > 0 {
		atomic.AddUint64(&c.jobsExpired, uint64(n))
	}
}

type Snapshot struct {
	Requests              uint64
	Errors                uint64
	ApplicationsSubmitted uint64
	JobsAutoClosed        uint64
	JobsExpired           uint64
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Requests:              atomic.LoadUint64(&c.requests),
		Errors:                atomic.LoadUint64(&c.errors),
		ApplicationsSubmitted: atomic.LoadUint64(&c.applicationsSubmitted),
		JobsAutoClosed:        atomic.LoadUint64(&c.jobsAutoClosed),
		JobsExpired:           atomic.LoadUint64(&c.jobsExpired),
	}
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	snap := h.collector.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeCounter(w, "jobportal_http_requests_total", "Total number of HTTP requests.", snap.Requests)
	writeCounter(w, "jobportal_http_errors_total", "Total number of 5xx HTTP responses.", snap.Errors)
	writeCounter(w, "jobportal_applications_submitted_total", "Applications accepted.", snap.ApplicationsSubmitted)
	writeCounter(w, "jobportal_jobs_auto_closed_total", "Jobs closed on reaching their application limit.", snap.JobsAutoClosed)
	writeCounter(w, "jobportal_jobs_expired_total", "Jobs expired by maintenance sweeps.", snap.JobsExpired)
}

func writeCounter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
