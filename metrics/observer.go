// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rovlink/telebridge/lib/netutil"
	"github.com/rovlink/telebridge/relay"
)

const namespace = "telebridge"

// Disconnect reasons used as the "reason" label.
const (
	ReasonClosed   = "closed"
	ReasonError    = "error"
	ReasonShutdown = "shutdown"
)

// Observer records relay events as Prometheus metrics.
type Observer struct {
	frames       prometheus.Counter
	frameBytes   prometheus.Counter
	deliveries   prometheus.Counter
	commandBytes prometheus.Counter
	commands     prometheus.Counter
	connects     prometheus.Counter
	disconnects  *prometheus.CounterVec
	sourceErrors prometheus.Counter
	acceptErrors prometheus.Counter
	clients      prometheus.Gauge
	state        prometheus.Gauge
}

var _ relay.Observer = (*Observer)(nil)

// NewObserver creates the relay metrics and registers them with
// registerer.
func NewObserver(registerer prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_relayed_total",
			Help:      "Frames cut from the source stream.",
		}),
		frameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_bytes_total",
			Help:      "Source bytes relayed as complete frames.",
		}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_deliveries_total",
			Help:      "Frames written in full to a client, summed over clients.",
		}),
		commandBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_bytes_total",
			Help:      "Client bytes forwarded to the source.",
		}),
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_reads_total",
			Help:      "Client reads that produced bytes for the source.",
		}),
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_connects_total",
			Help:      "Clients registered.",
		}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_disconnects_total",
			Help:      "Clients evicted, by reason.",
		}, []string{"reason"}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failed source reads and writes.",
		}),
		acceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Listener failures other than timeouts.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients",
			Help:      "Currently registered clients.",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Lifecycle state: 0 starting, 1 running, 2 shutting down, 3 stopped.",
		}),
	}

	for _, reason := range []string{ReasonClosed, ReasonError, ReasonShutdown} {
		o.disconnects.WithLabelValues(reason)
	}

	for _, collector := range []prometheus.Collector{
		o.frames, o.frameBytes, o.deliveries, o.commandBytes, o.commands,
		o.connects, o.disconnects, o.sourceErrors, o.acceptErrors,
		o.clients, o.state,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("registering relay metrics: %w", err)
		}
	}
	return o, nil
}

func (o *Observer) StateChanged(state relay.State) {
	o.state.Set(float64(state))
}

func (o *Observer) ClientConnected(_ *relay.Connection, clients int) {
	o.connects.Inc()
	o.clients.Set(float64(clients))
}

func (o *Observer) ClientDisconnected(_ *relay.Connection, reason error, clients int) {
	o.disconnects.WithLabelValues(disconnectReason(reason)).Inc()
	o.clients.Set(float64(clients))
}

func (o *Observer) FrameRelayed(_ uint64, size int, delivered int) {
	o.frames.Inc()
	o.frameBytes.Add(float64(size))
	o.deliveries.Add(float64(delivered))
}

func (o *Observer) CommandForwarded(_ *relay.Connection, size int) {
	o.commands.Inc()
	o.commandBytes.Add(float64(size))
}

func (o *Observer) SourceError(error) {
	o.sourceErrors.Inc()
}

func (o *Observer) AcceptError(error) {
	o.acceptErrors.Inc()
}

func disconnectReason(err error) string {
	switch {
	case errors.Is(err, relay.ErrRelayStopped):
		return ReasonShutdown
	case err == nil, netutil.IsExpectedCloseError(err):
		return ReasonClosed
	default:
		return ReasonError
	}
}
