package metrics

import (
	"sync"
	"testing"
)

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	// None of these may panic.
	c.IncRunStarted()
	c.IncRunSucceeded()
	c.IncRunFailed()
	c.IncRunEvicted()
	c.IncStageFailure()
	c.IncStageTimeout()
	c.IncVoiceDegraded()
	c.IncEventsAppended(3)
	c.IncSubscriberAttached()
	c.IncSubscriberCompleted()

	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("nil collector snapshot = %+v, want zero", snap)
	}
}

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()
	c.IncRunStarted()
	c.IncRunStarted()
	c.IncRunSucceeded()
	c.IncRunFailed()
	c.IncStageTimeout()
	c.IncVoiceDegraded()
	c.IncEventsAppended(7)
	c.IncSubscriberAttached()
	c.IncSubscriberCompleted()

	snap := c.Snapshot()
	if snap.RunsStarted != 2 {
		t.Errorf("RunsStarted = %d, want 2", snap.RunsStarted)
	}
	if snap.RunsSucceeded != 1 || snap.RunsFailed != 1 {
		t.Errorf("terminal counts = %d/%d, want 1/1", snap.RunsSucceeded, snap.RunsFailed)
	}
	if snap.StageTimeouts != 1 || snap.VoiceDegraded != 1 {
		t.Errorf("stage counts = %+v", snap)
	}
	if snap.EventsAppended != 7 {
		t.Errorf("EventsAppended = %d, want 7", snap.EventsAppended)
	}
	if snap.SubscribersAttached != 1 || snap.SubscribersCompleted != 1 {
		t.Errorf("subscriber counts = %+v", snap)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncRunStarted()
			c.IncEventsAppended(2)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.RunsStarted != 50 {
		t.Errorf("RunsStarted = %d, want 50", snap.RunsStarted)
	}
	if snap.EventsAppended != 100 {
		t.Errorf("EventsAppended = %d, want 100", snap.EventsAppended)
	}
}
