// Package prometheus renders the accountant counters in Prometheus text
// exposition format. The exporter does not register anything in a global
// registry; callers mount the Handler wherever they want it scraped.
package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	accountant "github.com/theaccountant/accountant"
)

type counterDef struct {
	name string
	help string
	get  func(accountant.Snapshot) uint64
}

var counterDefs = []counterDef{
	{"accountant_login_success_total", "Successful login attempts.",
		func(s accountant.Snapshot) uint64 { return s.LoginSuccess }},
	{"accountant_login_failure_total", "Failed login attempts.",
		func(s accountant.Snapshot) uint64 { return s.LoginFailure }},
	{"accountant_session_created_total", "Created sessions.",
		func(s accountant.Snapshot) uint64 { return s.SessionCreated }},
	{"accountant_session_invalidated_total", "Invalidated sessions.",
		func(s accountant.Snapshot) uint64 { return s.SessionInvalidated }},
	{"accountant_gate_forwarded_total", "Requests forwarded by the session gate.",
		func(s accountant.Snapshot) uint64 { return s.GateForwarded }},
	{"accountant_gate_rejected_total", "Requests rejected by the session gate.",
		func(s accountant.Snapshot) uint64 { return s.GateRejected }},
}

// Exporter renders accountant metrics for scraping.
type Exporter struct {
	metrics *accountant.Metrics
}

func NewExporter(metrics *accountant.Metrics) *Exporter {
	return &Exporter{metrics: metrics}
}

// Handler returns an http.Handler serving the text exposition format.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render returns the current counter values. A nil exporter or metrics
// set renders empty output.
func (e *Exporter) Render() string {
	if e == nil || e.metrics == nil {
		return ""
	}
	snapshot := e.metrics.Snapshot()

	var b strings.Builder
	b.Grow(2048)
	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, def.get(snapshot))
	}
	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
