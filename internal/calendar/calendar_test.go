package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAD_PinnedDates(t *testing.T) {
	tests := []struct {
		bs string
		ad string
	}{
		{"2000-01-01", "1943-04-14"},
		{"2057-01-01", "2000-04-13"},
		{"2077-01-01", "2020-04-13"},
		{"2080-01-01", "2023-04-14"},
		{"2080-01-15", "2023-04-28"},
		{"2081-01-01", "2024-04-13"},
		{"2082-01-01", "2025-04-14"},
		{"2083-01-01", "2026-04-14"},
		{"2090-12-30", "2034-04-13"},
	}
	for _, tt := range tests {
		t.Run(tt.bs, func(t *testing.T) {
			ad, err := ToAD(MustParse(BS, tt.bs))
			require.NoError(t, err)
			assert.Equal(t, AD, ad.Calendar())
			assert.Equal(t, tt.ad, ad.String())

			back, err := ToBS(ad)
			require.NoError(t, err)
			assert.Equal(t, tt.bs, back.String())
		})
	}
}

// Every BS date in the table must survive BS -> AD -> BS, and consecutive BS
// days must map to consecutive AD days.
func TestRoundTrip_EveryBSDate(t *testing.T) {
	r := SupportedRange()
	prev := time.Time{}
	count := 0
	for y := r.FirstBS.Year(); y <= r.LastBS.Year(); y++ {
		lengths, err := MonthLengths(y)
		require.NoError(t, err)
		for m := 1; m <= 12; m++ {
			for d := 1; d <= lengths[m-1]; d++ {
				bs, err := NewBS(y, m, d)
				require.NoError(t, err)
				ad, err := ToAD(bs)
				require.NoError(t, err)
				back, err := ToBS(ad)
				require.NoError(t, err)
				require.Equal(t, bs, back, "round trip of %s", bs)

				if !prev.IsZero() {
					require.Equal(t, prev.AddDate(0, 0, 1), ad.Time(), "gap after %s", bs)
				}
				prev = ad.Time()
				count++
			}
		}
	}
	assert.Equal(t, bsTable.totalDays, count)
}

func TestRoundTrip_EveryADDate(t *testing.T) {
	r := SupportedRange()
	for day := r.FirstAD.Time(); !day.After(r.LastAD.Time()); day = day.AddDate(0, 0, 1) {
		ad := FromTime(day)
		bs, err := ToBS(ad)
		require.NoError(t, err)
		back, err := ToAD(bs)
		require.NoError(t, err)
		require.Equal(t, ad, back, "round trip of %s", ad)
	}
}

func TestSupportedRange(t *testing.T) {
	r := SupportedRange()
	assert.Equal(t, "bs-2000-2090.1", r.Version)
	assert.Equal(t, "2000-01-01", r.FirstBS.String())
	assert.Equal(t, "2090-12-30", r.LastBS.String())
	assert.Equal(t, "1943-04-14", r.FirstAD.String())
	assert.Equal(t, "2034-04-13", r.LastAD.String())
}

func TestConversionErrors(t *testing.T) {
	t.Run("AD before the table", func(t *testing.T) {
		_, err := ToBS(MustParse(AD, "1943-04-13"))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("AD after the table", func(t *testing.T) {
		_, err := ToBS(MustParse(AD, "2034-04-14"))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("BS year outside the table", func(t *testing.T) {
		_, err := NewBS(1999, 12, 1)
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = NewBS(2091, 1, 1)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("BS day beyond the table month length", func(t *testing.T) {
		// Baisakh 2000 has 30 days.
		_, err := NewBS(2000, 1, 31)
		assert.ErrorIs(t, err, ErrInvalidDate)
		_, err = NewBS(2000, 2, 32)
		assert.NoError(t, err)
	})

	t.Run("wrong calendar", func(t *testing.T) {
		_, err := ToAD(MustParse(AD, "2023-04-28"))
		assert.ErrorIs(t, err, ErrInvalidFormat)
		_, err = ToBS(MustParse(BS, "2080-01-15"))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("zero date", func(t *testing.T) {
		_, err := Convert(Date{})
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestConvert_PicksOppositeCalendar(t *testing.T) {
	ad, err := Convert(MustParse(BS, "2080-01-15"))
	require.NoError(t, err)
	assert.Equal(t, AD, ad.Calendar())

	bs, err := Convert(ad)
	require.NoError(t, err)
	assert.Equal(t, BS, bs.Calendar())
	assert.Equal(t, "2080-01-15", bs.String())
}

func TestDaysInMonth(t *testing.T) {
	n, err := DaysInMonth(BS, 2080, 2)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	n, err = DaysInMonth(AD, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 29, n)

	n, err = DaysInMonth(AD, 1900, 2)
	require.NoError(t, err)
	assert.Equal(t, 28, n)

	_, err = DaysInMonth(BS, 2080, 0)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	d := MustParse(BS, "2080-01-15")
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"calendar":"BS","value":"2080-01-15"}`, string(b))

	var got Date
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, d, got)

	t.Run("null is the zero date", func(t *testing.T) {
		var z Date
		require.NoError(t, json.Unmarshal([]byte("null"), &z))
		assert.True(t, z.IsZero())
		b, err := json.Marshal(Date{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})

	t.Run("impossible stored value is rejected", func(t *testing.T) {
		var bad Date
		err := json.Unmarshal([]byte(`{"calendar":"BS","value":"2080-01-33"}`), &bad)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestLoadTable_RejectsMalformedData(t *testing.T) {
	tests := map[string]string{
		"gap in years": `version: x
epoch: {bs: "2000-01-01", ad: "1943-04-14"}
years:
  2000: [30, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 31]
  2002: [31, 31, 32, 32, 31, 30, 30, 29, 30, 29, 30, 30]
`,
		"short row": `version: x
epoch: {bs: "2000-01-01", ad: "1943-04-14"}
years:
  2000: [30, 32, 31]
`,
		"implausible month": `version: x
epoch: {bs: "2000-01-01", ad: "1943-04-14"}
years:
  2000: [30, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 40]
`,
		"epoch not first day": `version: x
epoch: {bs: "2000-01-02", ad: "1943-04-14"}
years:
  2000: [30, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 31]
`,
		"no version": `epoch: {bs: "2000-01-01", ad: "1943-04-14"}
years:
  2000: [30, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 31]
`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadTable([]byte(data))
			assert.Error(t, err)
		})
	}
}
