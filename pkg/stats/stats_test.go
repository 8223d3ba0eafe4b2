package stats

import (
	"testing"
	"time"
)

func TestRunningAverageFoldsNotMeans(t *testing.T) {
	r := NewRecorder()

	r.Record(Send, 10*time.Millisecond, true)
	if got := r.Snapshot().AvgSendTimeMs; got != 5 {
		t.Fatalf("after 10ms sample avg = %v, want 5", got)
	}

	r.Record(Send, 20*time.Millisecond, true)
	// (5 + 20) / 2, not the arithmetic mean 15
	if got := r.Snapshot().AvgSendTimeMs; got != 12.5 {
		t.Fatalf("after 20ms sample avg = %v, want 12.5", got)
	}
}

func TestReceiveAverageTracksSeparately(t *testing.T) {
	r := NewRecorder()
	r.Record(Receive, 10*time.Millisecond, true)

	snap := r.Snapshot()
	if snap.AvgReceiveTimeMs != 5 {
		t.Errorf("receive avg = %v, want 5", snap.AvgReceiveTimeMs)
	}
	if snap.AvgSendTimeMs != 0 {
		t.Errorf("send avg = %v, want 0 (untouched by receive samples)", snap.AvgSendTimeMs)
	}
}

func TestCounters(t *testing.T) {
	r := NewRecorder()
	r.Record(Send, time.Millisecond, true)
	r.Record(Send, time.Millisecond, false)
	r.Record(Receive, time.Millisecond, false)

	snap := r.Snapshot()
	if snap.PacketsSent != 2 || snap.SendErrors != 1 {
		t.Errorf("send counters = %d/%d, want 2/1", snap.PacketsSent, snap.SendErrors)
	}
	if snap.PacketsReceived != 1 || snap.ReceiveErrors != 1 {
		t.Errorf("receive counters = %d/%d, want 1/1", snap.PacketsReceived, snap.ReceiveErrors)
	}
}

func TestResetZeroesEverything(t *testing.T) {
	r := NewRecorder()
	r.Record(Send, 40*time.Millisecond, false)
	r.Record(Receive, 40*time.Millisecond, true)
	r.Reset()

	if snap := r.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("after reset snapshot = %+v, want zero value", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.Record(Send, time.Millisecond, true)
	snap := r.Snapshot()
	snap.PacketsSent = 99

	if r.Snapshot().PacketsSent != 1 {
		t.Error("mutating a snapshot changed the recorder")
	}
}
