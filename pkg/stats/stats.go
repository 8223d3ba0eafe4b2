// Package stats accumulates send/receive counters and running latency
// estimates for the poison engine.
package stats

import "time"

// Direction classifies a recorded operation.
type Direction int

const (
	Send Direction = iota
	Receive
)

// Snapshot holds the counters at a point in time.
//
// The Avg*TimeMs fields use the running estimate avg = (avg + sample) / 2
// rather than a true arithmetic mean: history decays after roughly two
// samples' worth of influence. Callers must not treat these as a mean
// over N samples.
type Snapshot struct {
	PacketsSent      uint64  `json:"packets_sent"`
	PacketsReceived  uint64  `json:"packets_received"`
	SendErrors       uint64  `json:"send_errors"`
	ReceiveErrors    uint64  `json:"receive_errors"`
	AvgSendTimeMs    float64 `json:"avg_send_time_ms"`
	AvgReceiveTimeMs float64 `json:"avg_receive_time_ms"`
}

// Recorder accumulates performance counters. It is not safe for
// concurrent use; the engine serializes all access (see the engine's
// concurrency contract).
type Recorder struct {
	current Snapshot
}

// NewRecorder returns a zeroed Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record accounts one operation: the direction counter always advances,
// the matching error counter advances on failure, and the running
// average folds in the sample as (avg + sample) / 2.
func (r *Recorder) Record(dir Direction, elapsed time.Duration, ok bool) {
	ms := float64(elapsed) / float64(time.Millisecond)
	switch dir {
	case Send:
		r.current.PacketsSent++
		if !ok {
			r.current.SendErrors++
		}
		r.current.AvgSendTimeMs = (r.current.AvgSendTimeMs + ms) / 2
	case Receive:
		r.current.PacketsReceived++
		if !ok {
			r.current.ReceiveErrors++
		}
		r.current.AvgReceiveTimeMs = (r.current.AvgReceiveTimeMs + ms) / 2
	}
}

// Snapshot returns the current counters by value.
func (r *Recorder) Snapshot() Snapshot {
	return r.current
}

// Reset zeroes all counters and averages.
func (r *Recorder) Reset() {
	r.current = Snapshot{}
}
