package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_TransientErrorEventuallySucceeds(t *testing.T) {
	t.Parallel()

	attempts := 0
	result, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("upstream connect error: reset before headers")
		}
		return "ok", nil
	}, WithInitialDelay(time.Millisecond))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected result %q, got %q", "ok", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_NonTransientErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	attempts := 0
	wantErr := errors.New("duplicate key violation")
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, wantErr
	}, WithInitialDelay(time.Millisecond))

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error back, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestDo_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("remote connection failure")
	}, WithMaxAttempts(4), WithInitialDelay(time.Millisecond))

	if err == nil || err.Error() != "remote connection failure" {
		t.Fatalf("expected last transient error, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		return 0, errors.New("503 service unavailable")
	}, WithInitialDelay(5*time.Second))

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: errors.New("upstream connect error"), want: true},
		{err: errors.New("remote connection failure"), want: true},
		{err: errors.New("HTTP 503 from upstream"), want: true},
		{err: errors.New("record not found"), want: false},
	}

	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
