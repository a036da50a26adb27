package metrics

import (
	"strconv"
	"time"
)

// Reply outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeUpstreamEmpty = "upstream_empty"
	OutcomeUpstreamError = "upstream_error"
)

// Replies is the set of metrics recorded by reply generation and the HTTP
// endpoint.
type Replies struct {
	c        *Collector
	InFlight *Gauge
	Latency  *Histogram
	Tokens   *Counter
}

func NewReplies(c *Collector) *Replies {
	return &Replies{
		c:        c,
		InFlight: c.Gauge("replyai_generations_in_flight", "Completion calls currently in flight", ""),
		Latency: c.Histogram("replyai_completion_latency_seconds", "Completion API latency in seconds", "",
			[]float64{0.5, 1, 2, 5, 10, 30, 60, 120}),
		Tokens: c.Counter("replyai_completion_tokens_total", "Total tokens reported by the completion API", ""),
	}
}

// Outcome counts one GenerateReply call by result.
func (r *Replies) Outcome(outcome string) {
	r.c.Counter("replyai_replies_total", "Reply generations by outcome", `outcome="`+outcome+`"`).Inc()
}

// ObserveCompletion records one completion call.
func (r *Replies) ObserveCompletion(d time.Duration, tokens int) {
	r.Latency.Observe(d.Seconds())
	if tokens > 0 {
		r.Tokens.Add(int64(tokens))
	}
}

// HTTPRequest counts one served request by route and status.
func (r *Replies) HTTPRequest(route string, status int) {
	r.c.Counter("replyai_http_requests_total", "HTTP requests by route and status",
		`route="`+route+`",status="`+strconv.Itoa(status)+`"`).Inc()
}

// OutcomeCount returns the counter value for outcome, for tests and status.
func (r *Replies) OutcomeCount(outcome string) int64 {
	return r.c.Counter("replyai_replies_total", "Reply generations by outcome", `outcome="`+outcome+`"`).Value()
}
