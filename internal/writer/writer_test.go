package writer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-events-summary/internal/aggregator"
	"github.com/couchcryptid/storm-events-summary/internal/cleaner"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(filepath.Join(t.TempDir(), "out"), logger)
	require.NoError(t, err)
	return w
}

func sampleSummaries() aggregator.Summaries {
	return aggregator.Summaries{
		EventsByType:       []aggregator.CountRow{{Key: "Flood", Count: 1}, {Key: "Tornado", Count: 2}},
		FatalitiesByType:   []aggregator.CountRow{{Key: "Flood", Count: 0}, {Key: "Tornado", Count: 3}},
		FatalitiesByRegion: []aggregator.CountRow{{Key: "OKLAHOMA", Count: 3}},
		FatalitiesByMonth:  []aggregator.CountRow{{Key: "2024-04", Count: 3}},
		DamageByType:       []aggregator.DamageRow{{Key: "Flood", Property: 10000, Crops: 500}},
	}
}

func sampleJoined() []domain.JoinedRecord {
	lat, lon := 34.96, -95.77
	return []domain.JoinedRecord{
		{
			EventID:        "100002",
			EventType:      "Tornado",
			BeginTime:      time.Date(2024, 4, 26, 12, 23, 0, 0, time.UTC),
			Fatalities:     2,
			DamageProperty: 1_200_000,
			Location: &domain.LocationRecord{
				EventID: "100002", State: "OKLAHOMA", County: "PITTSBURG",
				Name: "Mcalester", Lat: &lat, Lon: &lon,
			},
		},
		{
			EventID:   "100001",
			EventType: "Flood",
			BeginTime: time.Date(2024, 3, 15, 15, 10, 0, 0, time.UTC),
		},
	}
}

func TestWriteSummaries(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.WriteSummaries(sampleSummaries()))

	got, err := os.ReadFile(filepath.Join(w.Dir(), FileEventsByType))
	require.NoError(t, err)
	assert.Equal(t, "event_type,event_count\nFlood,1\nTornado,2\n", string(got))

	got, err = os.ReadFile(filepath.Join(w.Dir(), FileDamageByType))
	require.NoError(t, err)
	assert.Equal(t, "event_type,damage_property,damage_crops\nFlood,10000,500\n", string(got))
}

func TestWriteMaster(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.WriteMaster(sampleJoined()))

	got, err := os.ReadFile(filepath.Join(w.Dir(), FileMaster))
	require.NoError(t, err)

	want := "event_id,event_type,begin_time,month,state,county,location,latitude,longitude,fatalities,magnitude,damage_property,damage_crops\n" +
		"100002,Tornado,2024-04-26T12:23:00Z,2024-04,OKLAHOMA,PITTSBURG,Mcalester,34.96,-95.77,2,,1200000,0\n" +
		"100001,Flood,2024-03-15T15:10:00Z,2024-03,,,,,,0,,0,0\n"
	assert.Equal(t, want, string(got))
}

func TestWriteCleaningReport(t *testing.T) {
	w := newTestWriter(t)
	reports := []cleaner.Report{{
		Table: "details", RowsIn: 8, RowsOut: 5,
		Trimmed: 3, Coerced: 12, Defaulted: 2,
		DuplicatesRemoved: 1, DroppedMissingID: 1, DroppedBadDate: 1,
		InconsistentDates: 1,
		ColumnsDropped:    []string{"MAGNITUDE"},
	}}
	require.NoError(t, w.WriteCleaningReport(reports))

	got, err := os.ReadFile(filepath.Join(w.Dir(), FileCleaningReport))
	require.NoError(t, err)
	assert.Contains(t, string(got), "details,duplicates_removed,1\n")
	assert.Contains(t, string(got), "details,rows_in,8\n")
	assert.Contains(t, string(got), "details,inconsistent_dates,1\n")
	assert.Contains(t, string(got), "details,columns_dropped,1\n")
}

func TestWriteDeterministic(t *testing.T) {
	w := newTestWriter(t)

	require.NoError(t, w.WriteSummaries(sampleSummaries()))
	first, err := os.ReadFile(filepath.Join(w.Dir(), FileFatalitiesByRegion))
	require.NoError(t, err)

	require.NoError(t, w.WriteSummaries(sampleSummaries()))
	second, err := os.ReadFile(filepath.Join(w.Dir(), FileFatalitiesByRegion))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.db")
	ctx := context.Background()

	require.NoError(t, ExportSQLite(ctx, path, sampleSummaries(), sampleJoined()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events_master").Scan(&count))
	assert.Equal(t, 2, count)

	var fatalities int
	require.NoError(t, db.QueryRow(
		"SELECT fatalities FROM fatalities_by_type WHERE event_type = 'Tornado'").Scan(&fatalities))
	assert.Equal(t, 3, fatalities)

	var region any
	require.NoError(t, db.QueryRow(
		"SELECT state FROM events_master WHERE event_id = '100001'").Scan(&region))
	assert.Nil(t, region)

	// Re-export is idempotent.
	require.NoError(t, ExportSQLite(ctx, path, sampleSummaries(), sampleJoined()))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events_master").Scan(&count))
	assert.Equal(t, 2, count)
}
