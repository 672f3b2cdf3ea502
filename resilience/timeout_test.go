package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	if got := NewTimeout(0).Duration(); got != DefaultTimeout {
		t.Errorf("Duration() = %v, want %v", got, DefaultTimeout)
	}
}

func TestTimeout_PassesThroughResult(t *testing.T) {
	to := NewTimeout(time.Second)
	opErr := errors.New("redis: connection refused")

	if err := to.Execute(context.Background(), fail(nil)); err != nil {
		t.Errorf("Execute() success error = %v", err)
	}
	if err := to.Execute(context.Background(), fail(opErr)); err != opErr {
		t.Errorf("Execute() error = %v, want %v", err, opErr)
	}
}

func TestTimeout_DeadlineReportsErrTimeout(t *testing.T) {
	to := NewTimeout(10 * time.Millisecond)

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want wrapped DeadlineExceeded", err)
	}
}

func TestTimeout_ParentCancellationIsNotTimeout(t *testing.T) {
	to := NewTimeout(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := to.Execute(ctx, func(ctx context.Context) error {
		return ctx.Err()
	})

	if errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, parent cancellation must not be ErrTimeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
