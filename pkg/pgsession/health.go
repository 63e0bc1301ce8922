package pgsession

import "context"

// HealthCheck verifies database liveness with a trivial round trip through
// the resilient session scope. Returns true when the round trip succeeds.
// A *RetryExhaustedError is surfaced so the caller decides whether that
// means "unhealthy" or fatal; ErrNotInitialized propagates unchanged.
func (m *Manager) HealthCheck(ctx context.Context) (bool, error) {
	err := m.Do(ctx, func(ctx context.Context, s Session) error {
		var one int
		return s.QueryRow(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		m.log.Error("database health check failed: %v", err)
		return false, err
	}

	m.log.Verbose("database health check passed")
	return true, nil
}
