package bybit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input    string
		expected KlineInterval
	}{
		{"1m", Interval1m},
		{"15m", Interval15m},
		{"1h", Interval1h},
		{"4h", Interval4h},
		{"1d", Interval1d},
		{"1w", Interval1w},
		{"1M", Interval1M},
		{"60", Interval1h},
		{"d", Interval1d},
		{" 240 ", Interval4h},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{"8h", "3d", "", "hourly"} {
		_, err := ParseInterval(bad)
		assert.Error(t, err, bad)
	}
}

func TestKlineIntervalDuration(t *testing.T) {
	assert.Equal(t, time.Hour, Interval1h.Duration())
	assert.Equal(t, 15*time.Minute, Interval15m.Duration())
	assert.Equal(t, 24*time.Hour, Interval1d.Duration())
	assert.Equal(t, time.Duration(0), KlineInterval("x").Duration())
}

func TestErrorClassification(t *testing.T) {
	rateLimited := NewBybitError(ErrCodeRateLimitExceeded, "Too many visits")
	wrapped := WrapAPIError("get kline", rateLimited)

	assert.True(t, IsRateLimitError(wrapped))
	assert.True(t, IsRetryableError(wrapped))
	assert.False(t, IsRetryableError(NewBybitError(ErrCodeInvalidAPIKey, "bad key")))
	assert.Equal(t, "Bybit API error 10006: Too many visits (gateway)",
		NewBybitError(ErrCodeRateLimitExceeded, "Too many visits", "gateway").Error())
	assert.Nil(t, ParseAPIError(0, "OK"))
	assert.EqualError(t, ParseAPIError(ErrCodeServiceBusy, "busy"), "Bybit API error 10016: busy (Service busy)")
	assert.EqualError(t, ParseAPIError(170131, "Insufficient balance"), "Bybit API error 170131: Insufficient balance")
	assert.Equal(t, "Rate limit exceeded", GetErrorDescription(ErrCodeRateLimitExceeded))
	assert.Contains(t, GetErrorDescription(1), "Unknown")
}
