package youtube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in   string
		want time.Duration
	}{
		{"PT4M13S", 4*time.Minute + 13*time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"PT45S", 45 * time.Second},
		{"PT2H", 2 * time.Hour},
		{"P1DT3H", 27 * time.Hour},
		{"P0D", 0},
		{"PT0S", 0},
	}
	for _, tc := range valid {
		got, err := ParseDuration(tc.in)
		if assert.NoError(t, err, tc.in) {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}

	for _, in := range []string{"", "P", "PT", "4M13S", "PT4X", "PTM", "PT5", "P1W", "PT1HT2M", "P1H"} {
		_, err := ParseDuration(in)
		assert.ErrorIs(t, err, ErrInvalidDuration, in)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:45", FormatDuration(45*time.Second))
	assert.Equal(t, "4:13", FormatDuration(4*time.Minute+13*time.Second))
	assert.Equal(t, "1:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "27:00:00", FormatDuration(27*time.Hour))
	assert.Equal(t, "0:00", FormatDuration(-time.Second))
}
