// Package domain models NOAA Storm Events bulk CSV data for 2024.
//
// # Data Source
//
// The NOAA National Centers for Environmental Information publish the Storm
// Events Database as three bulk CSV files per year, available at
// https://www.ncei.noaa.gov/pub/data/swdi/stormevents/csvfiles/:
//
//	StormEvents_details-*.csv     one row per event (the anchor table)
//	StormEvents_fatalities-*.csv  one row per fatality, keyed by EVENT_ID
//	StormEvents_locations-*.csv   zero or more point locations per EVENT_ID
//
// EVENT_ID links the three files. Details is authoritative for event
// membership: a fatality or location row whose EVENT_ID has no details row
// is an orphan and is excluded from joined output.
//
// # NOAA Encoding Conventions
//
// Timestamps are split across three columns:
//
//	BEGIN_YEARMONTH = "202403", BEGIN_DAY = "15", BEGIN_TIME = "1510"
//	→ 2024-03-15 15:10 UTC. Three-digit times are zero-padded ("930" → "0930").
//	END_* columns follow the same scheme.
//
// Damage figures use magnitude suffixes:
//
//	"10.00K" = 10,000    "1.2M" = 1,200,000    "3B" = 3,000,000,000
//	Bare numbers have no multiplier. Blank, unparseable, or negative values
//	are treated as zero (no reported damage).
//
// Fatality demographics are sparsely populated:
//
//	FATALITY_AGE is blank for unreported ages (kept as -1 after cleaning).
//	FATALITY_SEX is blank for unreported sex (kept as "Unknown").
//	FATALITY_LOCATION is free-form and inconsistently cased; normalized to
//	lower case so "Mobile Home" and "MOBILE HOME" group together.
//	FATALITY_TYPE is "D" (direct) or "I" (indirect).
//
// Location rows carry RANGE (miles) and AZIMUTH (16-point compass) relative
// to the named place, plus LATITUDE/LONGITUDE. The legacy LAT2/LON2 columns
// duplicate the coordinates in a degrees-minutes hybrid and are always
// discarded. Coordinates outside [-90,90]/[-180,180] are treated as missing.
//
// # Analysis Window
//
// The 2024 file set is consumed through September (the last month with
// finalized records at the time the datasets were pulled). Events whose
// begin date falls outside the configured window are excluded from the
// joined output and counted, never silently dropped.
package domain
