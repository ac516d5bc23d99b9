package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

func TestDateOnly(t *testing.T) {
	instant := time.Date(2026, 8, 15, 17, 42, 9, 123, time.UTC)
	got := domain.DateOnly(instant)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), got)

	ist := time.FixedZone("IST", 5*3600+1800)
	lateEvening := time.Date(2026, 8, 16, 2, 30, 0, 0, ist)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), domain.DateOnly(lateEvening))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "half a year",
			a:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
			want: 180,
		},
		{
			name: "same day",
			a:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 23, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "reversed order is negative",
			a:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			want: -5,
		},
		{
			name: "time of day does not matter",
			a:    time.Date(2026, 8, 14, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DaysBetween(tt.a, tt.b))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "within same year",
			a:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			want: 6,
		},
		{
			name: "across a year boundary",
			a:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			want: 3,
		},
		{
			name: "day of month is ignored",
			a:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "same month",
			a:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MonthsBetween(tt.a, tt.b))
		})
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 8, 15, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 15, 22, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, domain.SameDay(morning, evening))
	assert.False(t, domain.SameDay(evening, nextDay))
}
