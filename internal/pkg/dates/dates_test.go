package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = Parse("10/06/2024")
	assert.Error(t, err)

	_, err = Parse("2024-02-30")
	assert.Error(t, err)
}

func TestNights(t *testing.T) {
	in := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, Nights(in, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, Nights(in, in))
	assert.Equal(t, -1, Nights(in, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)))

	// Clock parts are ignored.
	assert.Equal(t, 1, Nights(in.Add(23*time.Hour), time.Date(2024, 6, 11, 1, 0, 0, 0, time.UTC)))
}

func TestNightsAcrossCenturies(t *testing.T) {
	in := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	far := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2913012, Nights(in, far))
	assert.Equal(t, -2913012, Nights(far, in))
	assert.Equal(t, 366, Nights(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAddDaysCrossesMonth(t *testing.T) {
	d := AddDays(time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC), 1)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-02-01", Format(d))
}
