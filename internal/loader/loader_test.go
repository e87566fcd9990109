package loader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/storm-events-summary/internal/config"
	"github.com/couchcryptid/storm-events-summary/internal/domain"
	"github.com/couchcryptid/storm-events-summary/internal/observability"
)

const detailsHeader = "EVENT_ID,EVENT_TYPE,BEGIN_YEARMONTH,BEGIN_DAY,BEGIN_TIME\n"

func newTestLoader(policy string) *Loader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(policy, logger, observability.NewMetrics())
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o640))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeFile(t, "details.csv", []byte(detailsHeader+"100001,Flood,202403,15,1510\n"))
		table, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		require.NoError(t, err)
		assert.Equal(t, "details", table.Name)
		assert.Len(t, table.Rows, 1)
		assert.Equal(t, "100001", table.Rows[0].Fields["EVENT_ID"])
		assert.Equal(t, 2, table.Rows[0].Line)
	})

	t.Run("utf8 BOM stripped", func(t *testing.T) {
		content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(detailsHeader+"100001,Flood,202403,15,1510\n")...)
		path := writeFile(t, "details.csv", content)
		table, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		require.NoError(t, err)
		assert.Contains(t, table.Columns, "EVENT_ID")
	})

	t.Run("windows-1252 fallback", func(t *testing.T) {
		text := "EVENT_ID,LOCATION\n100001,CAÑON CITY\n"
		encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
		require.NoError(t, err)

		path := writeFile(t, "locations.csv", encoded)
		table, err := newTestLoader(config.PolicySkip).Load(path, LocationsSchema)

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "CAÑON CITY", table.Rows[0].Fields["LOCATION"])
	})

	t.Run("missing required columns", func(t *testing.T) {
		path := writeFile(t, "details.csv", []byte("EVENT_ID,STATE\n100001,TEXAS\n"))
		_, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		var schemaErr *domain.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "details", schemaErr.Table)
		assert.Equal(t, []string{"BEGIN_DAY", "BEGIN_TIME", "BEGIN_YEARMONTH", "EVENT_TYPE"}, schemaErr.Missing)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, "details.csv", nil)
		_, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		var schemaErr *domain.SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newTestLoader(config.PolicySkip).Load(filepath.Join(t.TempDir(), "nope.csv"), DetailsSchema)
		require.Error(t, err)
	})

	t.Run("malformed row skipped under skip policy", func(t *testing.T) {
		content := detailsHeader +
			"100001,Flood,202403,15,1510\n" +
			"100002,Tornado,202404\n" + // short row
			"100003,Hail,202405,8,930\n"
		path := writeFile(t, "details.csv", []byte(content))
		table, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "100001", table.Rows[0].Fields["EVENT_ID"])
		assert.Equal(t, "100003", table.Rows[1].Fields["EVENT_ID"])
	})

	t.Run("malformed row aborts under abort policy", func(t *testing.T) {
		content := detailsHeader + "100001,Flood,202403,15,1510\n100002,Tornado,202404\n"
		path := writeFile(t, "details.csv", []byte(content))
		_, err := newTestLoader(config.PolicyAbort).Load(path, DetailsSchema)

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "details", parseErr.Table)
		assert.Equal(t, 3, parseErr.Line)
	})

	t.Run("header only yields empty table", func(t *testing.T) {
		path := writeFile(t, "details.csv", []byte(detailsHeader))
		table, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)

		require.NoError(t, err)
		assert.Empty(t, table.Rows)
	})

	t.Run("input file is not modified", func(t *testing.T) {
		content := []byte(detailsHeader + "100001, Flood ,202403,15,1510\n")
		path := writeFile(t, "details.csv", content)
		_, err := newTestLoader(config.PolicySkip).Load(path, DetailsSchema)
		require.NoError(t, err)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, after)
	})
}
