package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row-level drop reasons surfaced by the record constructors. The cleaner
// counts these per table instead of aborting.
var (
	ErrMissingEventID = errors.New("missing event identifier")
	ErrBadDate        = errors.New("unparseable event date")
)

// DetailRecord is one cleaned row of the details file: the canonical
// definition of an event.
type DetailRecord struct {
	EventID        string
	EventType      string
	BeginTime      time.Time
	EndTime        time.Time
	Magnitude      *float64 // nil when unreported; no default exists
	DamageProperty float64  // dollars, 0 when unreported
	DamageCrops    float64
}

// FatalityRecord is one cleaned fatality row. An event's fatality count is
// the number of its rows; events without rows count zero.
type FatalityRecord struct {
	EventID    string
	FatalityID string
	Kind       string // "D" direct, "I" indirect
	Age        int    // -1 when unreported
	Sex        string // "Unknown" when unreported
	Location   string // lower-cased place category
}

// LocationRecord is one cleaned location row. At most one is kept per event.
type LocationRecord struct {
	EventID string
	State   string
	County  string
	Name    string
	Range   *float64 // miles from Name, nil when unreported
	Azimuth string   // 16-point compass, "" when unreported
	Lat     *float64
	Lon     *float64
}

// JoinedRecord is one event with its optional location and fatality count,
// produced by the aggregator with details as the anchor table.
type JoinedRecord struct {
	EventID        string
	EventType      string
	BeginTime      time.Time
	Fatalities     int
	DamageProperty float64
	DamageCrops    float64
	Magnitude      *float64
	Location       *LocationRecord // nil when the event has no location row
}

// Month returns the event's calendar month key, e.g. "2024-03".
func (j JoinedRecord) Month() string {
	return j.BeginTime.Format("2006-01")
}

// RegionUnknown groups events without a usable location in the per-region
// summaries, so fatality totals reconcile across summary tables.
const RegionUnknown = "Unknown"

// Region returns the event's state, or RegionUnknown when no location row
// matched or the row carried no state.
func (j JoinedRecord) Region() string {
	if j.Location == nil || j.Location.State == "" {
		return RegionUnknown
	}
	return j.Location.State
}

// NewDetailRecord builds a DetailRecord from normalized row fields, enforcing
// the non-empty EVENT_ID and valid-date invariants. The returned coercion
// count feeds the cleaning report.
func NewDetailRecord(fields map[string]string) (DetailRecord, int, error) {
	id := fields["EVENT_ID"]
	if id == "" {
		return DetailRecord{}, 0, ErrMissingEventID
	}

	begin, err := CombineDateTime(fields["BEGIN_YEARMONTH"], fields["BEGIN_DAY"], fields["BEGIN_TIME"])
	if err != nil {
		return DetailRecord{}, 0, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	coerced := 1

	// A missing end timestamp collapses to the begin timestamp, matching
	// instantaneous events in the bulk files.
	end, err := CombineDateTime(fields["END_YEARMONTH"], fields["END_DAY"], fields["END_TIME"])
	if err != nil {
		end = begin
	} else {
		coerced++
	}

	rec := DetailRecord{
		EventID:   id,
		EventType: fields["EVENT_TYPE"],
		BeginTime: begin,
		EndTime:   end,
	}
	if mag := parseFloatOrNil(fields["MAGNITUDE"]); mag != nil {
		rec.Magnitude = mag
		coerced++
	}
	if v := fields["DAMAGE_PROPERTY"]; strings.TrimSpace(v) != "" {
		rec.DamageProperty = ParseDamage(v)
		coerced++
	}
	if v := fields["DAMAGE_CROPS"]; strings.TrimSpace(v) != "" {
		rec.DamageCrops = ParseDamage(v)
		coerced++
	}
	return rec, coerced, nil
}

// NewFatalityRecord builds a FatalityRecord from normalized row fields,
// applying the demographic defaults (age -1, sex "Unknown").
func NewFatalityRecord(fields map[string]string) (FatalityRecord, int, error) {
	id := fields["EVENT_ID"]
	if id == "" {
		return FatalityRecord{}, 0, ErrMissingEventID
	}

	coerced := 0
	age := -1
	if v := fields["FATALITY_AGE"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			age = n
			coerced++
		}
	}

	sex := fields["FATALITY_SEX"]
	if sex == "" {
		sex = "Unknown"
	}

	return FatalityRecord{
		EventID:    id,
		FatalityID: fields["FATALITY_ID"],
		Kind:       fields["FATALITY_TYPE"],
		Age:        age,
		Sex:        sex,
		Location:   strings.ToLower(fields["FATALITY_LOCATION"]),
	}, coerced, nil
}

// NewLocationRecord builds a LocationRecord from normalized row fields.
// Out-of-bounds coordinates are treated as missing, not fatal.
func NewLocationRecord(fields map[string]string) (LocationRecord, int, error) {
	id := fields["EVENT_ID"]
	if id == "" {
		return LocationRecord{}, 0, ErrMissingEventID
	}

	coerced := 0
	rec := LocationRecord{
		EventID: id,
		State:   fields["STATE"],
		County:  fields["CZ_NAME"],
		Name:    fields["LOCATION"],
		Azimuth: fields["AZIMUTH"],
	}
	if r := parseFloatOrNil(fields["RANGE"]); r != nil && *r >= 0 {
		rec.Range = r
		coerced++
	}
	if lat := ParseCoordinate(fields["LATITUDE"], 90); lat != nil {
		rec.Lat = lat
		coerced++
	}
	if lon := ParseCoordinate(fields["LONGITUDE"], 180); lon != nil {
		rec.Lon = lon
		coerced++
	}
	return rec, coerced, nil
}
