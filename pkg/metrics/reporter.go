package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/events"
	"github.com/hostpin/hostpin/pkg/log"
)

const (
	// PushTimeout bounds one push to the local collector
	PushTimeout = 2 * time.Second

	// SuccessCounter is pushed once per pass in which every monitored
	// variable produced an address
	SuccessCounter = "hostpin_resolve_success"

	// FailureCounter is pushed once per failed variable per pass, and once
	// without a variable label for pass-level failures
	FailureCounter = "hostpin_resolve_failure"
)

// Counter is one increment in the local collector's push format
type Counter struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Labels      map[string]string `json:"labels"`
	Value       int               `json:"value"`
}

// Reporter pushes pass outcomes to a local metrics collector, one HTTP POST
// per counter increment. It consumes the event stream on its own goroutine
// so a slow or dead collector never stalls the pass loop. Delivery is best
// effort: failures are logged and counted, never retried.
type Reporter struct {
	url    string
	client *http.Client
	broker *events.Broker
	sub    events.Subscriber
	doneCh chan struct{}
	logger zerolog.Logger
}

// NewReporter creates a reporter pushing to the collector at host:port
func NewReporter(host string, port int) *Reporter {
	return &Reporter{
		url:    fmt.Sprintf("http://%s/metrics", net.JoinHostPort(host, strconv.Itoa(port))),
		client: &http.Client{Timeout: PushTimeout},
		logger: log.WithComponent("reporter"),
	}
}

// Start subscribes to the broker and delivers counter increments until Stop
// is called
func (r *Reporter) Start(broker *events.Broker) {
	r.broker = broker
	r.sub = broker.Subscribe()
	r.doneCh = make(chan struct{})
	go r.run()
}

// Stop unsubscribes and waits for in-flight deliveries to finish
func (r *Reporter) Stop() {
	r.broker.Unsubscribe(r.sub)
	<-r.doneCh
}

func (r *Reporter) run() {
	defer close(r.doneCh)
	for event := range r.sub {
		r.deliver(event)
	}
}

// deliver translates one event into zero or more counter pushes
func (r *Reporter) deliver(event *events.Event) {
	switch event.Type {
	case events.EventPassCompleted:
		if event.Metadata["result"] != "success" {
			return
		}
		r.Push(Counter{
			Type:        "counter",
			Name:        SuccessCounter,
			Description: "Passes in which every monitored variable had a healthy address",
			Labels:      map[string]string{},
			Value:       1,
		})

	case events.EventVariableUnhealthy:
		labels := map[string]string{}
		if v := event.Metadata["variable"]; v != "" {
			labels["variable"] = v
		}
		value := 1
		if c, err := strconv.Atoi(event.Metadata["count"]); err == nil && c > 0 {
			value = c
		}
		r.Push(Counter{
			Type:        "counter",
			Name:        FailureCounter,
			Description: "Monitored variables that failed to produce a healthy address",
			Labels:      labels,
			Value:       value,
		})
	}
}

// Push sends one counter increment to the collector. A non-200 response or
// a connection failure is logged and counted, nothing more.
func (r *Reporter) Push(c Counter) {
	body, err := json.Marshal(c)
	if err != nil {
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to encode counter")
		return
	}

	req, err := http.NewRequest(http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to build push request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		PushFailures.Inc()
		r.logger.Warn().Err(err).Str("name", c.Name).Msg("metric push failed")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		PushFailures.Inc()
		r.logger.Warn().
			Int("status", resp.StatusCode).
			Str("name", c.Name).
			Msg("metric push rejected")
	}
}
