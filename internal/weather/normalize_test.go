package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	assert.Equal(t, "1hour", NormalizeScale(""))
	assert.Equal(t, "1hour", NormalizeScale("   "))
	assert.Equal(t, "1day", NormalizeScale("1day"))

	assert.Equal(t, "Temperature,Humidity,Pressure", NormalizeSensorTypes(""))
	assert.Equal(t, "Temperature", NormalizeSensorTypes("Temperature"))

	assert.Equal(t, 1024, NormalizeLimit(0))
	assert.Equal(t, 1024, NormalizeLimit(-5))
	assert.Equal(t, 100, NormalizeLimit(100))
}

func TestParseBeginDateValid(t *testing.T) {
	// UTC midnight of the requested day.
	assert.Equal(t, int64(1628035200), ParseBeginDate("2021-08-04"))
}

func TestParseBeginDateAbsentFallsBackSevenDays(t *testing.T) {
	got := ParseBeginDate("")
	want := time.Now().AddDate(0, 0, -7).Unix()
	assert.InDelta(t, want, got, 2)
}

func TestParseBeginDateInvalidFallsBackSevenDays(t *testing.T) {
	got := ParseBeginDate("not-a-date")
	want := time.Now().AddDate(0, 0, -7).Unix()
	assert.InDelta(t, want, got, 2)
}

func TestParseEndDateValidShiftsToEndOfDay(t *testing.T) {
	// Epoch for 2021-08-04T23:59:59Z.
	assert.Equal(t, int64(1628121599), ParseEndDate("2021-08-04"))
}

func TestParseEndDateAbsentFallsBackToNow(t *testing.T) {
	got := ParseEndDate("")
	assert.InDelta(t, time.Now().Unix(), got, 2)
}

func TestParseEndDateInvalidFallsBackToNow(t *testing.T) {
	got := ParseEndDate("04/08/2021")
	assert.InDelta(t, time.Now().Unix(), got, 2)
}
