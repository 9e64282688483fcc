package ratelimit

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestTracker_Update(t *testing.T) {
	tr := NewTracker(nil)
	reset := time.Now().Add(time.Hour)

	tr.Update("email/send-email", "100", "99", strconv.FormatInt(reset.Unix(), 10))

	snap, ok := tr.Snapshot("email/send-email")
	if !ok {
		t.Fatal("expected snapshot to be recorded")
	}
	if snap.Limit != 100 {
		t.Errorf("Limit = %d, want 100", snap.Limit)
	}
	if snap.Remaining != 99 {
		t.Errorf("Remaining = %d, want 99", snap.Remaining)
	}
	if got := snap.ResetAt.Unix(); got != reset.Unix() {
		t.Errorf("ResetAt = %d, want %d", got, reset.Unix())
	}
	if snap.LastUpdated.IsZero() {
		t.Error("LastUpdated not set")
	}
}

func TestTracker_Update_MalformedHeadersIgnored(t *testing.T) {
	reset := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)

	tests := []struct {
		name      string
		limit     string
		remaining string
		reset     string
	}{
		{"missing limit", "", "99", reset},
		{"missing remaining", "100", "", reset},
		{"missing reset", "100", "99", ""},
		{"non-numeric limit", "lots", "99", reset},
		{"non-numeric remaining", "100", "some", reset},
		{"non-numeric reset", "100", "99", "tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(nil)
			tr.Update("email/send-email", "100", "50", reset)

			before, _ := tr.Snapshot("email/send-email")
			tr.Update("email/send-email", tt.limit, tt.remaining, tt.reset)
			after, _ := tr.Snapshot("email/send-email")

			if after != before {
				t.Errorf("snapshot changed from %+v to %+v, want unchanged", before, after)
			}
		})
	}
}

func TestTracker_Decision_NoSnapshot(t *testing.T) {
	tr := NewTracker(nil)

	if wait := tr.Decision("email/send-email"); wait != 0 {
		t.Errorf("Decision() = %v, want 0 for unknown endpoint", wait)
	}
}

func TestTracker_Decision_QuotaRemaining(t *testing.T) {
	tr := NewTracker(nil)
	tr.Update("email/send-email", "100", "1",
		strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))

	if wait := tr.Decision("email/send-email"); wait != 0 {
		t.Errorf("Decision() = %v, want 0 when quota remains", wait)
	}
}

func TestTracker_Decision_ExhaustedWaitsForReset(t *testing.T) {
	tr := NewTracker(nil)
	tr.Update("email/send-email", "100", "0",
		strconv.FormatInt(time.Now().Add(5*time.Second).Unix(), 10))

	wait := tr.Decision("email/send-email")
	// Window plus the one second skew buffer, with slack for the
	// truncation of the reset timestamp to whole seconds.
	if wait < 4*time.Second || wait > 6500*time.Millisecond {
		t.Errorf("Decision() = %v, want roughly 5s + 1s buffer", wait)
	}
}

func TestTracker_Decision_StaleSnapshotProceeds(t *testing.T) {
	tr := NewTracker(nil)
	tr.Update("email/send-email", "100", "0",
		strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))

	if wait := tr.Decision("email/send-email"); wait != 0 {
		t.Errorf("Decision() = %v, want 0 for a stale snapshot", wait)
	}
}

func TestTracker_Snapshots_Copies(t *testing.T) {
	tr := NewTracker(nil)
	reset := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	tr.Update("email/send-email", "100", "50", reset)
	tr.Update("domain/create-domain", "20", "19", reset)

	snaps := tr.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("Snapshots() returned %d entries, want 2", len(snaps))
	}

	delete(snaps, "email/send-email")
	if _, ok := tr.Snapshot("email/send-email"); !ok {
		t.Error("mutating the returned map affected the tracker")
	}
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := NewTracker(nil)
	reset := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update("email/send-email", "100", fmt.Sprint(j), reset)
				tr.Decision("email/send-email")
			}
		}(i)
	}
	wg.Wait()

	if _, ok := tr.Snapshot("email/send-email"); !ok {
		t.Error("expected a snapshot after concurrent updates")
	}
}
