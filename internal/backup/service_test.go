package backup

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/config"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/database"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/logger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "readings.db")}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := ledger.New(db.DB, logger.Discard())
	require.NoError(t, l.EnsureSchema(context.Background()))
	return l
}

func seed(t *testing.T, l *ledger.Ledger) {
	t.Helper()

	for _, fields := range [][5]string{
		{"Meter-A", "2.5", "100", "150", "5"},
		{"Meter-B", "1", "0", "10", "0"},
		{"Meter-C", "0.75", "20.5", "40.5", "0"},
	} {
		r, err := billing.ParseReading(fields[0], fields[1], fields[2], fields[3], fields[4])
		require.NoError(t, err)
		_, err = l.Upsert(context.Background(), r, nil)
		require.NoError(t, err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatBSON} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			src := newLedger(t)
			seed(t, src)

			svc := NewService(src, logger.Discard())
			svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

			dir := filepath.Join(t.TempDir(), "backups")
			res, err := svc.Backup(ctx, dir, format)
			require.NoError(t, err)
			assert.Equal(t, 3, res.Count)
			assert.Equal(t, filepath.Join(dir, "backup_readings_20240301_093000."+format), res.FilePath)
			require.NoError(t, svc.ValidateBackupFile(res.FilePath, format))

			dst := newLedger(t)
			count, err := NewService(dst, logger.Discard()).Restore(ctx, res.FilePath, format, false)
			require.NoError(t, err)
			assert.Equal(t, 3, count)

			want, err := src.ListAll(ctx)
			require.NoError(t, err)
			got, err := dst.ListAll(ctx)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
				assert.Equal(t, want[i].Name, got[i].Name)
				assert.Equal(t, ledger.Total(want[i]).String(), ledger.Total(got[i]).String())
			}
		})
	}
}

func TestRestoreOverwritesAndReplaces(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	seed(t, l)

	var buf bytes.Buffer
	records, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, Encode(&buf, records[:1], FormatJSON))

	path := filepath.Join(t.TempDir(), "one.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	r, err := billing.ParseReading("Meter-A", "9", "0", "1", "0")
	require.NoError(t, err)
	_, err = l.Upsert(ctx, r, ledger.AlwaysOverwrite)
	require.NoError(t, err)

	svc := NewService(l, logger.Discard())
	count, err := svc.Restore(ctx, path, FormatJSON, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec, err := l.Find(ctx, "Meter-A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2.5", rec.UnitPrice.String())

	all, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err = svc.Restore(ctx, path, FormatJSON, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all, err = l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Meter-A", all[0].Name)
	assert.Equal(t, 1, all[0].ID)
}

func TestDecodeRejectsTruncatedBSON(t *testing.T) {
	l := newLedger(t)
	seed(t, l)

	records, err := l.ListAll(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records, FormatBSON))

	rows, err := Decode(bytes.NewReader(buf.Bytes()), FormatBSON)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-3]), FormatBSON)
	assert.Error(t, err)
}

func TestValidateBackupFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(nil, logger.Discard())

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	assert.ErrorContains(t, svc.ValidateBackupFile(empty, FormatJSON), "empty")

	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte("{}\n"), 0644))
	assert.NoError(t, svc.ValidateBackupFile(data, FormatJSON))
	assert.ErrorContains(t, svc.ValidateBackupFile(data, FormatBSON), "expected BSON")

	assert.Error(t, svc.ValidateBackupFile(filepath.Join(dir, "missing.json"), FormatJSON))
}

func TestFormatFromExtension(t *testing.T) {
	format, err := FormatFromExtension("backups/backup_readings_20240301_093000.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	format, err = FormatFromExtension("dump.bson")
	require.NoError(t, err)
	assert.Equal(t, FormatBSON, format)

	_, err = FormatFromExtension("dump.csv")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	svc := NewService(newLedger(t), logger.Discard())
	_, err := svc.Backup(context.Background(), t.TempDir(), "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestRestoreRejectsNonFiniteSnapshot(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	seed(t, l)

	var buf bytes.Buffer
	for _, row := range []models.ReadingRow{
		{ID: 1, Name: "Good", UnitPrice: 1, EndIndex: 10},
		{ID: 2, Name: "Broken", UnitPrice: math.Inf(1), EndIndex: 10},
	} {
		data, err := bson.Marshal(row)
		require.NoError(t, err)
		buf.Write(data)
	}
	path := filepath.Join(t.TempDir(), "broken.bson")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	_, err := NewService(l, logger.Discard()).Restore(ctx, path, FormatBSON, true)
	require.ErrorIs(t, err, billing.ErrOutOfRange)
	assert.Contains(t, err.Error(), "Broken")

	records, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
