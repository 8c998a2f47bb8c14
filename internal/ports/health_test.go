package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string                    { return s.name }
func (s *stubChecker) Check(_ context.Context) error { return s.err }

func TestHealthRegistry_RejectsDuplicateNames(t *testing.T) {
	reg := NewHealthRegistry()

	require.NoError(t, reg.Register(&stubChecker{name: "postgres"}))

	err := reg.Register(&stubChecker{name: "postgres"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateChecker)
}

func TestHealthRegistry_CheckAll(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []*stubChecker
		wantStatus HealthStatus
	}{
		{
			name:       "no checkers is healthy",
			wantStatus: HealthStatusHealthy,
		},
		{
			name: "all passing",
			checkers: []*stubChecker{
				{name: "postgres"},
			},
			wantStatus: HealthStatusHealthy,
		},
		{
			name: "one failing turns unhealthy",
			checkers: []*stubChecker{
				{name: "postgres", err: errors.New("connection refused")},
			},
			wantStatus: HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, reg.Register(c))
			}

			result := reg.CheckAll(context.Background())

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Len(t, result.Checks, len(tt.checkers))
			for _, c := range tt.checkers {
				require.Contains(t, result.Checks, c.name)
				if c.err != nil {
					assert.Equal(t, HealthStatusUnhealthy, result.Checks[c.name].Status)
					assert.Equal(t, c.err.Error(), result.Checks[c.name].Message)
				}
			}
		})
	}
}
