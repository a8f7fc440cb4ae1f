package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedCron(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want string
	}{
		{name: "thirty seconds", spec: "30s", want: "*/30 * * * * *"},
		{name: "ten seconds", spec: "10s", want: "*/10 * * * * *"},
		{name: "one minute", spec: "1m", want: "*/1 * * * *"},
		{name: "five minutes", spec: "5m", want: "*/5 * * * *"},
		{name: "quarter hour", spec: "15m", want: "*/15 * * * *"},
		{name: "half hour", spec: "30m", want: "*/30 * * * *"},
		{name: "one hour", spec: "1h", want: "0 */1 * * *"},
		{name: "six hours", spec: "6h", want: "0 */6 * * *"},
		{name: "full day", spec: "24h", want: "0 */24 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alignedCron(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignedCronRejectsDriftingIntervals(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "seven minutes does not divide the hour", spec: "7m"},
		{name: "forty-five minutes does not divide the hour", spec: "45m"},
		{name: "five hours does not divide the day", spec: "5h"},
		{name: "ninety seconds is not a whole minute", spec: "90s"},
		{name: "mixed units", spec: "1h30m"},
		{name: "sub-second precision", spec: "500ms"},
		{name: "zero duration", spec: "0s"},
		{name: "not a duration at all", spec: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alignedCron(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestIsCron(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{spec: "*/5 * * * *", want: true},
		{spec: "0 9,17 * * 1-5", want: true},
		{spec: "30 */10 * * * *", want: true},
		{spec: "15m", want: false},
		{spec: "", want: false},
		{spec: "every morning", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCron(tt.spec))
		})
	}
}

func TestValidateInterval(t *testing.T) {
	t.Run("empty disables the refresh job", func(t *testing.T) {
		assert.NoError(t, ValidateInterval(""))
	})

	t.Run("aligned durations pass", func(t *testing.T) {
		for _, spec := range []string{"10s", "1m", "5m", "30m", "2h", "12h"} {
			assert.NoError(t, ValidateInterval(spec), spec)
		}
	})

	t.Run("cron expressions pass", func(t *testing.T) {
		for _, spec := range []string{"*/5 * * * *", "0 9,17 * * 1-5", "*/30 * * * * *"} {
			assert.NoError(t, ValidateInterval(spec), spec)
		}
	})

	t.Run("malformed specs are rejected", func(t *testing.T) {
		for _, spec := range []string{"7m", "5h", "90s", "1h30m", "nonsense"} {
			assert.Error(t, ValidateInterval(spec), spec)
		}
	})
}

func TestDescribe(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		name string
		spec string
		tz   *time.Location
		want string
	}{
		{
			name: "aligned duration",
			spec: "15m",
			tz:   time.UTC,
			want: `every 15m on clock boundaries (cron "*/15 * * * *" in UTC)`,
		},
		{
			name: "hourly in Paris",
			spec: "1h",
			tz:   paris,
			want: `every 1h on clock boundaries (cron "0 */1 * * *" in Europe/Paris)`,
		},
		{
			name: "cron passthrough",
			spec: "0 9,17 * * 1-5",
			tz:   time.UTC,
			want: `cron "0 9,17 * * 1-5" in UTC`,
		},
		{
			name: "nil timezone defaults to UTC",
			spec: "30m",
			tz:   nil,
			want: `every 30m on clock boundaries (cron "*/30 * * * *" in UTC)`,
		},
		{
			name: "drifting interval",
			spec: "7m",
			tz:   time.UTC,
			want: `invalid interval "7m"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.spec, tt.tz))
		})
	}
}

func TestExpectedInterval(t *testing.T) {
	t.Run("durations report their own length", func(t *testing.T) {
		s := &Scheduler{spec: "15m"}
		assert.Equal(t, 15*time.Minute, s.ExpectedInterval())
	})

	t.Run("cron schedules fall back to a conservative default", func(t *testing.T) {
		s := &Scheduler{spec: "0 9,17 * * *"}
		assert.Equal(t, 5*time.Minute, s.ExpectedInterval())
	})
}

func TestNew(t *testing.T) {
	noop := func(context.Context) error { return nil }

	t.Run("rejects a drifting interval", func(t *testing.T) {
		_, err := New(context.Background(), Config{Interval: "7m"}, noop)
		assert.Error(t, err)
	})

	t.Run("registers an aligned duration", func(t *testing.T) {
		s, err := New(context.Background(), Config{Interval: "15m"}, noop)
		require.NoError(t, err)
		require.NoError(t, s.Stop())
	})

	t.Run("computes the next tick once started", func(t *testing.T) {
		s, err := New(context.Background(), Config{Interval: "*/5 * * * *"}, noop)
		require.NoError(t, err)
		require.NoError(t, s.Start())

		next, err := s.NextRun()
		require.NoError(t, err)
		assert.False(t, next.IsZero())

		require.NoError(t, s.Stop())
	})
}
