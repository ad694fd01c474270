package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseplan/internal/domain"
)

// Fixed anchor dates: 2024-03-04 is a Monday, 2024-03-09 a Saturday.
var (
	monday   = domain.NewDate(2024, time.March, 4)
	friday   = domain.NewDate(2024, time.March, 8)
	saturday = domain.NewDate(2024, time.March, 9)
	sunday   = domain.NewDate(2024, time.March, 10)
)

// ---------------------------------------------------------------------------
// BusinessDaysInclusive
// ---------------------------------------------------------------------------

func TestBusinessDaysInclusive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end domain.Date
		want       int
	}{
		{"same_weekday", monday, monday, 1},
		{"same_saturday", saturday, saturday, 0},
		{"same_sunday", sunday, sunday, 0},
		{"monday_to_friday", monday, friday, 5},
		{"monday_to_sunday", monday, sunday, 5},
		{"monday_to_next_monday", monday, monday.AddDays(7), 6},
		{"saturday_to_sunday", saturday, sunday, 0},
		{"end_before_start", friday, monday, 0},
		{"full_two_weeks", monday, domain.NewDate(2024, time.March, 15), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, domain.BusinessDaysInclusive(tt.start, tt.end))
		})
	}
}

// ---------------------------------------------------------------------------
// WeightToEnd
// ---------------------------------------------------------------------------

func TestWeightToEnd(t *testing.T) {
	t.Parallel()

	t.Run("five_days_from_monday_is_friday", func(t *testing.T) {
		t.Parallel()

		end, ok := domain.WeightToEnd(monday, "5d")
		require.True(t, ok)
		assert.Equal(t, friday, end)
	})

	t.Run("day_count_skips_weekend", func(t *testing.T) {
		t.Parallel()

		// 6th weekday from Monday is the following Monday.
		end, ok := domain.WeightToEnd(monday, "6d")
		require.True(t, ok)
		assert.Equal(t, monday.AddDays(7), end)
	})

	t.Run("weekend_start_counts_as_first_day", func(t *testing.T) {
		t.Parallel()

		// Saturday itself is day 1; day 2 is Sunday+1 = Monday.
		end, ok := domain.WeightToEnd(saturday, "2d")
		require.True(t, ok)
		assert.Equal(t, saturday.AddDays(2), end)
	})

	t.Run("two_weeks_is_fourteen_calendar_days", func(t *testing.T) {
		t.Parallel()

		end, ok := domain.WeightToEnd(monday, "2w")
		require.True(t, ok)
		assert.Equal(t, monday.AddDays(14), end)
	})

	t.Run("week_form_may_land_on_weekend", func(t *testing.T) {
		t.Parallel()

		end, ok := domain.WeightToEnd(saturday, "1w")
		require.True(t, ok)
		assert.Equal(t, saturday.AddDays(7), end)
		assert.False(t, end.IsWeekday())
	})

	t.Run("non_positive_count_collapses_to_start", func(t *testing.T) {
		t.Parallel()

		for _, expr := range []string{"0d", "-3d"} {
			end, ok := domain.WeightToEnd(monday, expr)
			require.True(t, ok, expr)
			assert.Equal(t, monday, end, expr)
		}
	})

	t.Run("empty_weight_unschedules", func(t *testing.T) {
		t.Parallel()

		end, ok := domain.WeightToEnd(monday, "")
		require.True(t, ok)
		assert.True(t, end.IsZero())
	})

	t.Run("case_and_whitespace_insensitive", func(t *testing.T) {
		t.Parallel()

		end, ok := domain.WeightToEnd(monday, "  5D ")
		require.True(t, ok)
		assert.Equal(t, friday, end)
	})

	t.Run("malformed_is_rejected", func(t *testing.T) {
		t.Parallel()

		for _, expr := range []string{"5", "d", "5m", "five d", "5dd", "1.5d"} {
			_, ok := domain.WeightToEnd(monday, expr)
			assert.False(t, ok, expr)
		}
	})
}

// ---------------------------------------------------------------------------
// EndToWeight
// ---------------------------------------------------------------------------

func TestEndToWeight(t *testing.T) {
	t.Parallel()

	t.Run("sentinel_end_is_empty", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", domain.EndToWeight(monday, domain.Date{}))
	})

	t.Run("normalizes_to_day_form", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "5d", domain.EndToWeight(monday, friday))
		assert.Equal(t, "0d", domain.EndToWeight(friday, monday))
	})

	t.Run("day_form_round_trips", func(t *testing.T) {
		t.Parallel()

		for n := 1; n <= 30; n++ {
			expr := fmt.Sprintf("%dd", n)
			end, ok := domain.WeightToEnd(monday, expr)
			require.True(t, ok)
			assert.Equal(t, expr, domain.EndToWeight(monday, end))
		}
	})

	t.Run("week_form_does_not_round_trip", func(t *testing.T) {
		t.Parallel()

		// 2w from a Monday spans 11 business days inclusive, so the
		// normalized form comes back as days. Intentional asymmetry.
		end, ok := domain.WeightToEnd(monday, "2w")
		require.True(t, ok)
		assert.Equal(t, "11d", domain.EndToWeight(monday, end))
	})
}
