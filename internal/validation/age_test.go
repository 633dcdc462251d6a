package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeAge(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		born time.Time
		want int
	}{
		{"exactly 18 years", today.AddDate(-18, 0, 0), 18},
		{"one day short of 18", today.AddDate(-18, 0, 1), 17},
		{"one day past 18", today.AddDate(-18, 0, -1), 18},
		{"born today", today, 0},
		{"birthday later this year", time.Date(1990, 12, 1, 0, 0, 0, 0, time.UTC), 34},
		{"birthday earlier this year", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 35},
		{"time of day ignored", time.Date(2007, 6, 15, 23, 59, 0, 0, time.UTC), 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAge(tt.born, today))
		})
	}

	t.Run("leap day birthday", func(t *testing.T) {
		born := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 20, ComputeAge(born, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 21, ComputeAge(born, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	})
}
