package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blues/dps/internal/backend"
)

// scriptedFetcher 按调用次序返回预置状态序列，超出序列后重复最后一个
type scriptedFetcher struct {
	statuses []string
	calls    int
	err      error
}

func (f *scriptedFetcher) GetDonation(ctx context.Context, donationID string) (*backend.Donation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return &backend.Donation{Id: donationID, Status: f.statuses[i]}, nil
}

func fastPoller(fetcher StatusFetcher) *Poller {
	p := NewPoller(fetcher)
	p.Interval = time.Millisecond
	return p
}

func TestPoll_StopsOnSucceeded(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"pending", "pending", "succeeded"}}
	result, err := fastPoller(fetcher).Poll(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Errorf("expected succeeded, got %s", result.Outcome)
	}
	if fetcher.calls != 3 {
		t.Errorf("expected polling to stop on the terminal status, got %d calls", fetcher.calls)
	}
	if result.Donation == nil || result.Donation.Id != "d1" {
		t.Errorf("result must carry the donation snapshot: %+v", result.Donation)
	}
}

func TestPoll_TerminalOnLastAttempt(t *testing.T) {
	statuses := make([]string, MaxPollAttempts)
	for i := range statuses {
		statuses[i] = "pending"
	}
	statuses[MaxPollAttempts-1] = "succeeded"

	fetcher := &scriptedFetcher{statuses: statuses}
	result, err := fastPoller(fetcher).Poll(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Errorf("terminal status on the final attempt still counts, got %s", result.Outcome)
	}
	if fetcher.calls != MaxPollAttempts {
		t.Errorf("expected %d calls, got %d", MaxPollAttempts, fetcher.calls)
	}
}

func TestPoll_FailedAndCanceledAreTerminal(t *testing.T) {
	for _, status := range []string{"failed", "canceled"} {
		t.Run(status, func(t *testing.T) {
			fetcher := &scriptedFetcher{statuses: []string{status}}
			result, err := fastPoller(fetcher).Poll(context.Background(), "d1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Outcome != OutcomeFailed {
				t.Errorf("expected failed outcome, got %s", result.Outcome)
			}
			if fetcher.calls != 1 {
				t.Errorf("expected a single call, got %d", fetcher.calls)
			}
		})
	}
}

func TestPoll_ExhaustionTimesOut(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"pending"}}
	result, err := fastPoller(fetcher).Poll(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeTimedOut {
		t.Errorf("exhausted budget must not claim success or failure, got %s", result.Outcome)
	}
	if fetcher.calls != MaxPollAttempts {
		t.Errorf("expected exactly %d attempts, got %d", MaxPollAttempts, fetcher.calls)
	}
}

func TestPoll_FetchErrorStops(t *testing.T) {
	wantErr := errors.New("backend unreachable")
	fetcher := &scriptedFetcher{err: wantErr}
	_, err := fastPoller(fetcher).Poll(context.Background(), "d1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error to surface, got %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected polling to stop on the first error, got %d calls", fetcher.calls)
	}
}

func TestPoll_ContextCancelStops(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"pending"}}
	p := NewPoller(fetcher)
	p.Interval = time.Hour // 取消必须打断间隔等待

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Poll(ctx, "d1")
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancellation did not stop the poller")
	}
	if fetcher.calls != 1 {
		t.Errorf("expected a single attempt before cancellation, got %d", fetcher.calls)
	}
}
