package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEthAddressValidator(t *testing.T) {
	v := NewValidator()

	t.Run("accepts checksummed, lowercase, uppercase and unprefixed forms", func(t *testing.T) {
		for _, addr := range []string{
			"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
			"0x742d35cc6634c0532925a3b844bc9e7595f0beb0",
			"0x742D35CC6634C0532925A3B844BC9E7595F0BEB0",
			"742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
			"0x0000000000000000000000000000000000000000",
		} {
			assert.NoError(t, v.Var(addr, "eth_addr"), addr)
		}
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, addr := range []string{
			"",
			"0x742d35Cc",
			"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb123",
			"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEg0",
			"vitalik.eth",
		} {
			assert.Error(t, v.Var(addr, "eth_addr"), addr)
		}
	})
}

func TestScheduleValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		interval string
		ok       bool
	}{
		{name: "empty means one-shot mode", interval: "", ok: true},
		{name: "aligned minutes", interval: "15m", ok: true},
		{name: "aligned hours", interval: "6h", ok: true},
		{name: "five-field cron", interval: "*/10 * * * *", ok: true},
		{name: "six-field cron with seconds", interval: "30 */10 * * * *", ok: true},
		{name: "minutes that drift across the hour", interval: "7m", ok: false},
		{name: "hours that drift across the day", interval: "5h", ok: false},
		{name: "four-field cron", interval: "*/5 * * *", ok: false},
		{name: "seven-field cron", interval: "*/5 * * * * * *", ok: false},
		{name: "free text", interval: "whenever", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Interval = tt.interval

			err := v.Struct(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTimezoneValidator(t *testing.T) {
	v := NewValidator()

	t.Run("accepts IANA names and empty", func(t *testing.T) {
		for _, tz := range []string{"", "UTC", "Europe/Paris", "Asia/Tokyo", "America/New_York"} {
			cfg := validConfig()
			cfg.Timezone = tz
			assert.NoError(t, v.Struct(cfg), tz)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		for _, tz := range []string{"Mars/Olympus_Mons", "NotATimezone", "utc+2"} {
			cfg := validConfig()
			cfg.Timezone = tz
			assert.Error(t, v.Struct(cfg), tz)
		}
	})
}

func TestValidatorAcceptsFullConfig(t *testing.T) {
	v := NewValidator()

	cfg := &Config{
		EtherscanAPIKey:  "scan-key",
		CovalentAPIKey:   "cov-key",
		ChainID:          137,
		PageSize:         100,
		EtherscanBaseURL: "https://api.etherscan.io",
		CovalentBaseURL:  "https://api.covalenthq.com",
		LogLevel:         "debug",
		HTTPPort:         8080,
		Interval:         "5m",
		Timezone:         "America/New_York",
		SentryDSN:        "https://public@sentry.example.com/1",
	}

	assert.NoError(t, v.Struct(cfg))
}
