package job

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestIncrementNeverExceedsLimit(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, max := range []int{1, 2, 5} {
		j := Job{Status: StatusActive, ExpiryDate: now.Add(24 * time.Hour), MaxApplications: intPtr(max)}
		for i := 0; i < max+3; i++ {
			err := j.IncrementApplicationCount(now)
			if i < max && err != nil {
				t.Fatalf("max=%d step=%d: unexpected error %v", max, i, err)
			}
			if i >= max && !errors.Is(err, ErrApplicationLimitReached) {
				t.Fatalf("max=%d step=%d: expected limit error, got %v", max, i, err)
			}
			if j.CurrentApplicationCount > max {
				t.Fatalf("max=%d: count %d exceeded limit", max, j.CurrentApplicationCount)
			}
		}
		if j.Status != StatusClosed || !j.ApplicationLimitReached || j.AutoClosedAt == nil {
			t.Fatalf("max=%d: expected auto-closed job, got %+v", max, j)
		}
		if !j.AutoClosedAt.Equal(now) {
			t.Fatalf("unexpected auto closed time %v", j.AutoClosedAt)
		}
	}
}

func TestIncrementWithoutLimit(t *testing.T) {
	now := time.Now()
	j := Job{Status: StatusActive, ExpiryDate: now.Add(time.Hour)}
	for i := 0; i < 100; i++ {
		if err := j.IncrementApplicationCount(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if j.Status != StatusActive || j.ApplicationLimitReached {
		t.Fatalf("unlimited job must stay open, got %+v", j)
	}
}

func TestCloseAtLimit(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	j := Job{Status: StatusActive, CurrentApplicationCount: 2, MaxApplications: intPtr(3)}
	if j.CloseAtLimit(now) {
		t.Fatalf("job below its limit must stay open")
	}
	j.MaxApplications = intPtr(2)
	if !j.CloseAtLimit(now) || j.Status != StatusClosed || !j.ApplicationLimitReached || j.AutoClosedAt == nil {
		t.Fatalf("expected auto-close at the limit, got %+v", j)
	}
	paused := Job{Status: StatusPaused, CurrentApplicationCount: 2, MaxApplications: intPtr(2)}
	if paused.CloseAtLimit(now) || paused.Status != StatusPaused {
		t.Fatalf("only active jobs auto-close, got %+v", paused)
	}
}

func TestCanReceiveApplications(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		job  Job
		want bool
	}{
		{"open", Job{Status: StatusActive, ExpiryDate: now.Add(time.Hour)}, true},
		{"paused", Job{Status: StatusPaused, ExpiryDate: now.Add(time.Hour)}, false},
		{"expired date", Job{Status: StatusActive, ExpiryDate: now.Add(-time.Minute)}, false},
		{"expiry equals now", Job{Status: StatusActive, ExpiryDate: now}, false},
		{"at limit", Job{Status: StatusActive, ExpiryDate: now.Add(time.Hour), MaxApplications: intPtr(2), CurrentApplicationCount: 2}, false},
		{"below limit", Job{Status: StatusActive, ExpiryDate: now.Add(time.Hour), MaxApplications: intPtr(2), CurrentApplicationCount: 1}, true},
	}
	for _, tc := range cases {
		before := tc.job
		if got := tc.job.CanReceiveApplications(now); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if tc.job.Status != before.Status || tc.job.CurrentApplicationCount != before.CurrentApplicationCount {
			t.Fatalf("%s: predicate mutated the job", tc.name)
		}
	}
}

func TestExpireIfDue(t *testing.T) {
	now := time.Now()
	j := Job{Status: StatusActive, ExpiryDate: now.Add(-time.Second)}
	if !j.ExpireIfDue(now) || j.Status != StatusExpired {
		t.Fatalf("expected job to expire, got %s", j.Status)
	}
	paused := Job{Status: StatusPaused, ExpiryDate: now.Add(-time.Second)}
	if paused.ExpireIfDue(now) {
		t.Fatalf("only active jobs expire")
	}
}

func TestTransitions(t *testing.T) {
	allowed := [][2]Status{
		{StatusActive, StatusPaused},
		{StatusActive, StatusClosed},
		{StatusActive, StatusExpired},
		{StatusPaused, StatusActive},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}
	denied := [][2]Status{
		{StatusPaused, StatusClosed},
		{StatusClosed, StatusActive},
		{StatusExpired, StatusActive},
		{StatusRejected, StatusActive},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}
