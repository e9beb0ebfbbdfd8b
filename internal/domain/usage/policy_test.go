package usage

import (
	"testing"
	"time"

	"tubelens-api/internal/domain/subscriptions"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNextReset(t *testing.T) {
	period := 24 * time.Hour

	assert.Equal(t, base.Add(period), NextReset(base, base, period), "exactly at reset moves one period")
	assert.Equal(t, base.Add(3*period), NextReset(base.Add(2*period+time.Minute), base, period))
	assert.Equal(t, base, NextReset(base.Add(-time.Hour), base, period), "not yet due is unchanged")
}

func TestEffectiveResetsWhenDue(t *testing.T) {
	u := subscriptions.UsageLimit{AnalysesUsed: 5, AnalysesLimit: 5, ResetAt: base}

	got := Effective(base.Add(time.Hour), u, 24*time.Hour)

	assert.Equal(t, 0, got.AnalysesUsed)
	assert.Equal(t, base.Add(24*time.Hour), got.ResetAt)
	assert.False(t, AtCap(got, 5))
}

func TestEffectiveKeepsCountBeforeReset(t *testing.T) {
	u := subscriptions.UsageLimit{AnalysesUsed: 5, AnalysesLimit: 5, ResetAt: base}

	got := Effective(base.Add(-time.Second), u, 24*time.Hour)

	assert.Equal(t, 5, got.AnalysesUsed)
	assert.True(t, AtCap(got, 5))
}
