package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

// execute runs the root command with args and returns what it printed.
// Flag variables are package globals, so they are reset before each run.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	readingName, readingPrice, readingStart, readingEnd, readingCorrection = "", "", "", "", "0"
	skipConfirmation, listAsCSV, overwrite, replaceExisting = false, false, false, false
	csvFile, exportFile, inputFile, restoreFormat, dbPath = "", "", "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalc(t *testing.T) {
	out, err := execute(t, "", "calc", "-n", "Meter-A", "-p", "2.5", "-s", "100", "-e", "150", "-c", "5")
	require.NoError(t, err)
	assert.Equal(t, "total amount for Meter-A: 112.50\n", out)
}

func TestCalcInvalidNumber(t *testing.T) {
	_, err := execute(t, "", "calc", "-n", "Meter-A", "-p", "two", "-s", "100", "-e", "150")

	var inputErr *billing.InvalidInputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, billing.FieldUnitPrice, inputErr.Field)
}

func TestSaveListDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "readings.db")

	out, err := execute(t, "", "--db", db, "save", "-n", "Meter-A", "-p", "2.5", "-s", "100", "-e", "150", "-c", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved (inserted)")

	_, err = execute(t, "", "--db", db, "save", "-n", "Meter-B", "-p", "1", "-s", "0", "-e", "10")
	require.NoError(t, err)

	out, err = execute(t, "n\n", "--db", db, "save", "-n", "Meter-A", "-p", "9", "-s", "0", "-e", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `A customer named "Meter-A" already exists (no 1)`)
	assert.Contains(t, out, "Not saved")

	out, err = execute(t, "", "--db", db, "list", "--csv")
	require.NoError(t, err)
	assert.Equal(t,
		"no,name,unit_price,start_index,end_index,correction,index_delta,total_amount\n"+
			"1,Meter-A,2.5,100,150,5,50,112.50\n"+
			"2,Meter-B,1,0,10,0,10,10.00\n",
		out)

	out, err = execute(t, "", "--db", db, "delete", "--yes", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 customer(s)\n", out)

	out, err = execute(t, "", "--db", db, "list", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "\n1,Meter-B,1,0,10,0,10,10.00\n")
	assert.NotContains(t, out, "Meter-A")
}

func TestDeleteDeclined(t *testing.T) {
	db := filepath.Join(t.TempDir(), "readings.db")

	_, err := execute(t, "", "--db", db, "save", "-n", "Meter-A", "-p", "1", "-s", "0", "-e", "10")
	require.NoError(t, err)

	out, err := execute(t, "\n", "--db", db, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete cancelled")

	out, err = execute(t, "", "--db", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Meter-A")
}

func TestDeleteWithoutIDs(t *testing.T) {
	_, err := execute(t, "", "--db", filepath.Join(t.TempDir(), "readings.db"), "delete")
	assert.ErrorIs(t, err, ledger.ErrNoSelection)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "readings.db")
	file := filepath.Join(dir, "readings.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"name,unit_price,start_index,end_index,correction\n"+
			"Meter-A,2.5,100,150,5\n"+
			"Meter-B,1,0,10,0\n"), 0644))

	out, err := execute(t, "", "--db", db, "import", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 readings: 2 new, 0 updated, 0 skipped")

	out, err = execute(t, "", "--db", db, "import", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 readings: 0 new, 0 updated, 2 skipped")

	out, err = execute(t, "", "--db", db, "import", "-f", file, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 readings: 0 new, 2 updated, 0 skipped")
}
