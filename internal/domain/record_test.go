package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetailRecord(t *testing.T) {
	base := map[string]string{
		"EVENT_ID":        "100001",
		"EVENT_TYPE":      "Flood",
		"BEGIN_YEARMONTH": "202403",
		"BEGIN_DAY":       "15",
		"BEGIN_TIME":      "1510",
		"END_YEARMONTH":   "202403",
		"END_DAY":         "15",
		"END_TIME":        "1800",
		"DAMAGE_PROPERTY": "10.00K",
		"DAMAGE_CROPS":    "0",
	}

	t.Run("complete row", func(t *testing.T) {
		rec, coerced, err := NewDetailRecord(base)
		require.NoError(t, err)
		assert.Equal(t, "100001", rec.EventID)
		assert.Equal(t, "Flood", rec.EventType)
		assert.Equal(t, time.Date(2024, 3, 15, 15, 10, 0, 0, time.UTC), rec.BeginTime)
		assert.Equal(t, time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC), rec.EndTime)
		assert.Equal(t, 10_000.0, rec.DamageProperty)
		assert.Equal(t, 0.0, rec.DamageCrops)
		assert.Nil(t, rec.Magnitude)
		assert.Equal(t, 4, coerced)
	})

	t.Run("missing event id", func(t *testing.T) {
		fields := clone(base)
		fields["EVENT_ID"] = ""
		_, _, err := NewDetailRecord(fields)
		assert.ErrorIs(t, err, ErrMissingEventID)
	})

	t.Run("unparseable begin date", func(t *testing.T) {
		fields := clone(base)
		fields["BEGIN_YEARMONTH"] = "March 2024"
		_, _, err := NewDetailRecord(fields)
		assert.ErrorIs(t, err, ErrBadDate)
	})

	t.Run("missing end collapses to begin", func(t *testing.T) {
		fields := clone(base)
		fields["END_YEARMONTH"] = ""
		fields["END_DAY"] = ""
		fields["END_TIME"] = ""
		rec, _, err := NewDetailRecord(fields)
		require.NoError(t, err)
		assert.Equal(t, rec.BeginTime, rec.EndTime)
	})

	t.Run("magnitude kept when present", func(t *testing.T) {
		fields := clone(base)
		fields["MAGNITUDE"] = "1.75"
		rec, _, err := NewDetailRecord(fields)
		require.NoError(t, err)
		require.NotNil(t, rec.Magnitude)
		assert.Equal(t, 1.75, *rec.Magnitude)
	})
}

func TestNewFatalityRecord(t *testing.T) {
	t.Run("complete row", func(t *testing.T) {
		rec, _, err := NewFatalityRecord(map[string]string{
			"EVENT_ID":          "100002",
			"FATALITY_ID":       "9001",
			"FATALITY_TYPE":     "D",
			"FATALITY_AGE":      "54",
			"FATALITY_SEX":      "M",
			"FATALITY_LOCATION": "Mobile Home",
		})
		require.NoError(t, err)
		assert.Equal(t, 54, rec.Age)
		assert.Equal(t, "M", rec.Sex)
		assert.Equal(t, "mobile home", rec.Location)
	})

	t.Run("demographic defaults", func(t *testing.T) {
		rec, _, err := NewFatalityRecord(map[string]string{"EVENT_ID": "100002"})
		require.NoError(t, err)
		assert.Equal(t, -1, rec.Age)
		assert.Equal(t, "Unknown", rec.Sex)
	})

	t.Run("missing event id", func(t *testing.T) {
		_, _, err := NewFatalityRecord(map[string]string{"FATALITY_ID": "9001"})
		assert.ErrorIs(t, err, ErrMissingEventID)
	})
}

func TestNewLocationRecord(t *testing.T) {
	t.Run("complete row", func(t *testing.T) {
		rec, coerced, err := NewLocationRecord(map[string]string{
			"EVENT_ID":  "100001",
			"STATE":     "COLORADO",
			"CZ_NAME":   "FREMONT",
			"LOCATION":  "CANON CITY",
			"RANGE":     "0.5",
			"AZIMUTH":   "NNE",
			"LATITUDE":  "38.44",
			"LONGITUDE": "-105.24",
		})
		require.NoError(t, err)
		assert.Equal(t, "COLORADO", rec.State)
		require.NotNil(t, rec.Range)
		assert.Equal(t, 0.5, *rec.Range)
		require.NotNil(t, rec.Lat)
		assert.Equal(t, 38.44, *rec.Lat)
		assert.Equal(t, 3, coerced)
	})

	t.Run("out of bounds latitude becomes missing", func(t *testing.T) {
		rec, _, err := NewLocationRecord(map[string]string{
			"EVENT_ID": "100003",
			"LATITUDE": "131.02",
		})
		require.NoError(t, err)
		assert.Nil(t, rec.Lat)
	})
}

func TestJoinedRecordRegion(t *testing.T) {
	j := JoinedRecord{EventID: "E1"}
	assert.Equal(t, RegionUnknown, j.Region())

	j.Location = &LocationRecord{EventID: "E1", State: "TEXAS"}
	assert.Equal(t, "TEXAS", j.Region())

	j.Location.State = ""
	assert.Equal(t, RegionUnknown, j.Region())
}

func TestJoinedRecordMonth(t *testing.T) {
	j := JoinedRecord{BeginTime: time.Date(2024, 3, 15, 15, 10, 0, 0, time.UTC)}
	assert.Equal(t, "2024-03", j.Month())
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
