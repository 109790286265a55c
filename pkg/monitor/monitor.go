// Package monitor prints decoded CAN traffic
package monitor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
	log "github.com/sirupsen/logrus"
)

// Unknown is the statistics key of frames nobody decoded
const Unknown = "unknown"

// Monitor is a [can.FrameListener] writing one decoded line per
// received frame
type Monitor struct {
	mu            sync.Mutex
	chain         *interpreter.Chain
	out           io.Writer
	showTimestamp bool
	stats         map[string]uint64
	writeErrors   uint64
	logger        *log.Entry
}

type Option func(m *Monitor)

// WithTimestamp prefixes every line with the frame timestamp in seconds
func WithTimestamp(show bool) Option {
	return func(m *Monitor) {
		m.showTimestamp = show
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func New(out io.Writer, chain *interpreter.Chain, opts ...Option) *Monitor {
	m := &Monitor{
		chain:  chain,
		out:    out,
		stats:  make(map[string]uint64),
		logger: log.WithField("component", "monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Implements the FrameListener interface
// This handles all received CAN frames from Bus
func (m *Monitor) Handle(frame can.Frame) {
	protocol, text := m.chain.Decode(frame)
	if protocol == "" {
		protocol = Unknown
	}
	line := fmt.Sprintf("[%s] %s\n", protocol, text)
	if m.showTimestamp {
		line = fmt.Sprintf("%6d.%06d %s", frame.Timestamp/1_000_000, frame.Timestamp%1_000_000, line)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[protocol]++
	if _, err := io.WriteString(m.out, line); err != nil {
		if m.writeErrors == 0 {
			m.logger.Warnf("[MONITOR] failed to write trace : %v", err)
		}
		m.writeErrors++
	}
}

// Stats returns the number of frames decoded per protocol
func (m *Monitor) Stats() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make(map[string]uint64, len(m.stats))
	for protocol, count := range m.stats {
		stats[protocol] = count
	}
	return stats
}

// Run subscribes to bus and prints traffic until ctx is done
func (m *Monitor) Run(ctx context.Context, bus can.Bus) error {
	if err := bus.Connect(); err != nil {
		return fmt.Errorf("failed to connect : %w", err)
	}
	if err := bus.Subscribe(m); err != nil {
		_ = bus.Disconnect()
		return fmt.Errorf("failed to subscribe : %w", err)
	}
	m.logger.Info("[MONITOR] listening")
	<-ctx.Done()
	m.logger.Infof("[MONITOR] stopping, %v", m.Stats())
	return bus.Disconnect()
}
