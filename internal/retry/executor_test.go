package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// mockOperation tracks invocation count and simulates transient failures
type mockOperation struct {
	invocations  int
	failUntil    int // Fail for invocations < failUntil
	transientErr error
	fatalErr     error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++

	if m.invocations < m.failUntil {
		if m.transientErr != nil {
			return m.transientErr
		}
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	}

	if m.invocations == m.failUntil && m.fatalErr != nil {
		return m.fatalErr
	}

	return nil // Success
}

func TestExecutor_Execute_SuccessOnFirstAttempt(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(3)

	executor := NewExecutor(classifier, strategy)

	op := &mockOperation{failUntil: 1} // Succeed immediately

	attempts, err := executor.Execute(context.Background(), op.execute)

	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt reported, got %d", attempts)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_Execute_SuccessAfterRetries(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(1*time.Millisecond), // Use short delays for faster tests
	)

	executor := NewExecutor(classifier, strategy)

	// Fail first 3 attempts, succeed on 4th
	op := &mockOperation{failUntil: 4}

	attempts, err := executor.Execute(context.Background(), op.execute)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts reported, got %d", attempts)
	}
	if op.invocations != 4 {
		t.Errorf("Expected 4 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_FatalErrorNoRetry(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(5)

	executor := NewExecutor(classifier, strategy)

	fatalErr := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	op := &mockOperation{failUntil: 2, transientErr: fatalErr}

	attempts, err := executor.Execute(context.Background(), op.execute)

	if err == nil {
		t.Fatal("Expected fatal error, got nil")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42601" {
		t.Errorf("Expected PgError with code 42601, got %v", err)
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retries for fatal error), got %d", attempts)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation (no retries for fatal error), got %d", op.invocations)
	}
}

func TestExecutor_Execute_ExhaustedRetries(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(3, // Max 3 retries
		WithInitialDelay(1*time.Millisecond),
	)

	executor := NewExecutor(classifier, strategy)

	// Never succeed (always return transient error)
	transientErr := &pgconn.PgError{Code: "08006", Message: "connection failure"}
	op := &mockOperation{failUntil: 999, transientErr: transientErr}

	attempts, err := executor.Execute(context.Background(), op.execute)

	if err == nil {
		t.Fatal("Expected error after exhausted retries, got nil")
	}
	if !errors.Is(err, transientErr) {
		t.Errorf("Expected last transient error to surface, got %v", err)
	}
	// 1 initial attempt + 3 retries
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
	if op.invocations != 4 {
		t.Errorf("Expected 4 invocations, got %d", op.invocations)
	}
}

func TestExecutor_Execute_ZeroRetriesSingleAttempt(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(0)

	executor := NewExecutor(classifier, strategy)

	op := &mockOperation{failUntil: 999}

	start := time.Now()
	attempts, err := executor.Execute(context.Background(), op.execute)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt with no retry budget, got %d", attempts)
	}
	// No backoff sleep should happen when there is no retry budget.
	if elapsed > 50*time.Millisecond {
		t.Errorf("Expected no backoff delay, took %v", elapsed)
	}
}

func TestExecutor_Execute_ContextCancellationDuringBackoff(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(10*time.Second), // Long delay to guarantee cancellation wins
	)

	executor := NewExecutor(classifier, strategy)

	op := &mockOperation{failUntil: 999}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	attempts, err := executor.Execute(ctx, op.execute)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestExecutor_Execute_CancelledContextNotClassified(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(5, WithInitialDelay(1*time.Millisecond))

	executor := NewExecutor(classifier, strategy)

	ctx, cancel := context.WithCancel(context.Background())

	op := &mockOperation{}
	attempts, err := executor.Execute(ctx, func(ctx context.Context) error {
		op.invocations++
		cancel()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 || op.invocations != 1 {
		t.Errorf("Expected no retry after cancellation, attempts=%d invocations=%d", attempts, op.invocations)
	}
}

func TestExecutor_Execute_OnRetryCallback(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(3, WithInitialDelay(1*time.Millisecond))

	type retryEvent struct {
		attempt int
		delay   time.Duration
	}
	var events []retryEvent

	executor := NewExecutor(classifier, strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			events = append(events, retryEvent{attempt: attempt, delay: delay})
		})

	op := &mockOperation{failUntil: 3} // 2 failures, success on 3rd

	if _, err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 retry events, got %d", len(events))
	}
	if events[0].attempt != 0 || events[1].attempt != 1 {
		t.Errorf("Expected zero-indexed retry attempts 0,1, got %d,%d", events[0].attempt, events[1].attempt)
	}
	if events[1].delay != 2*events[0].delay {
		t.Errorf("Expected doubled delay, got %v then %v", events[0].delay, events[1].delay)
	}
}

func TestExecutor_WithOnRetry_DoesNotMutateReceiver(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()
	strategy := NewExponentialBackoff(1, WithInitialDelay(1*time.Millisecond))

	base := NewExecutor(classifier, strategy)
	called := false
	derived := base.WithOnRetry(func(int, error, time.Duration) { called = true })

	op := &mockOperation{failUntil: 2}
	if _, err := base.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if called {
		t.Error("Base executor must not invoke the derived callback")
	}

	op2 := &mockOperation{failUntil: 2}
	if _, err := derived.Execute(context.Background(), op2.execute); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if !called {
		t.Error("Derived executor must invoke its callback")
	}
}

func TestNewExecutor_PanicsOnNilArguments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil classifier")
		}
	}()
	NewExecutor(nil, NewExponentialBackoff(1))
}
