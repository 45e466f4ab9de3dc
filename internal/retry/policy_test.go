package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Zero(t, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestFromNotify(t *testing.T) {
	assert.Equal(t, DefaultPolicy(), FromNotify(nil))

	p := FromNotify(&config.NotifyConfig{
		Retries:      3,
		Backoff:      config.RetryBackoffExponential,
		RetryInitial: "100ms",
		RetryMax:     "1s",
	})
	assert.Equal(t, Policy{Mode: config.RetryBackoffExponential, Initial: 100 * time.Millisecond, Max: time.Second, MaxRetries: 3}, p)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration // attempts 0..n
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*ms, 500*ms, 3), []time.Duration{0, 100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(config.RetryBackoffLinear, 100*ms, 250*ms, 5), []time.Duration{0, 100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(config.RetryBackoffExponential, 50*ms, 300*ms, 5), []time.Duration{0, 50 * ms, 100 * ms, 200 * ms, 300 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for attempt, want := range tt.want {
				assert.Equal(t, want, tt.policy.Delay(attempt), "attempt %d", attempt)
			}
		})
	}
	assert.Equal(t, 300*ms, NewPolicy(config.RetryBackoffExponential, 50*ms, 300*ms, 100).Delay(80))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo(t *testing.T) {
	fast := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	errFlaky := errors.New("flaky")

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := fast.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := fast.Do(context.Background(), func(context.Context) error {
			calls++
			return errFlaky
		})
		require.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 4, calls)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := slow.Do(ctx, func(context.Context) error {
			calls++
			cancel()
			return errFlaky
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
