package aggregator

import (
	"sort"

	"github.com/couchcryptid/storm-events-summary/internal/domain"
)

// CountRow is one group in a count summary.
type CountRow struct {
	Key   string
	Count int
}

// DamageRow is one group in the damage summary.
type DamageRow struct {
	Key      string
	Property float64
	Crops    float64
}

// Summaries holds the aggregated tables handed to the dashboard. Each slice
// is sorted by group key so repeated runs produce byte-identical output.
type Summaries struct {
	EventsByType       []CountRow
	FatalitiesByType   []CountRow
	FatalitiesByRegion []CountRow
	FatalitiesByMonth  []CountRow
	DamageByType       []DamageRow
}

// Summarize computes the grouped summaries over the joined records.
func Summarize(joined []domain.JoinedRecord) Summaries {
	events := make(map[string]int)
	fatalType := make(map[string]int)
	fatalRegion := make(map[string]int)
	fatalMonth := make(map[string]int)
	damage := make(map[string]DamageRow)

	for _, j := range joined {
		events[j.EventType]++
		fatalType[j.EventType] += j.Fatalities
		fatalRegion[j.Region()] += j.Fatalities
		fatalMonth[j.Month()] += j.Fatalities

		d := damage[j.EventType]
		d.Property += j.DamageProperty
		d.Crops += j.DamageCrops
		damage[j.EventType] = d
	}

	return Summaries{
		EventsByType:       sortedCounts(events),
		FatalitiesByType:   sortedCounts(fatalType),
		FatalitiesByRegion: sortedCounts(fatalRegion),
		FatalitiesByMonth:  sortedCounts(fatalMonth),
		DamageByType:       sortedDamage(damage),
	}
}

func sortedCounts(m map[string]int) []CountRow {
	rows := make([]CountRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, CountRow{Key: k, Count: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func sortedDamage(m map[string]DamageRow) []DamageRow {
	rows := make([]DamageRow, 0, len(m))
	for k, v := range m {
		v.Key = k
		rows = append(rows, v)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}
