package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	logging.Log = logrus.New()
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voters.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseCSV(t *testing.T) {
	t.Run("Happy path - standard headers", func(t *testing.T) {
		path := writeTempCSV(t, "Full Name,Email,Phone\nAda Lovelace,ada@example.com,+15550001\nGrace Hopper,grace@example.com,\n")

		rows, err := Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, Row{FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "+15550001"}, rows[0])
		assert.Equal(t, Row{FullName: "Grace Hopper", Email: "grace@example.com"}, rows[1])
	})

	t.Run("Happy path - headers match case-insensitively and by substring", func(t *testing.T) {
		path := writeTempCSV(t, "NAME,PHONE NUMBER,Email Address\nAda Lovelace,+15550001,ada@example.com\n")

		rows, err := Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ada Lovelace", rows[0].FullName)
		assert.Equal(t, "+15550001", rows[0].Phone)
		assert.Equal(t, "ada@example.com", rows[0].Email)
	})

	t.Run("Happy path - ragged rows are tolerated", func(t *testing.T) {
		path := writeTempCSV(t, "Full Name,Email,Phone\nAda Lovelace\nGrace Hopper,grace@example.com\n")

		rows, err := Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Empty(t, rows[0].Email, "Missing cells read as empty")
	})

	t.Run("Happy path - fully blank rows are skipped", func(t *testing.T) {
		path := writeTempCSV(t, "Full Name,Email,Phone\nAda Lovelace,ada@example.com,\n,,\n")

		rows, err := Parse(path)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Unhappy path - header only", func(t *testing.T) {
		path := writeTempCSV(t, "Full Name,Email,Phone\n")

		_, err := Parse(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Unhappy path - no name column", func(t *testing.T) {
		path := writeTempCSV(t, "Email,Phone\nada@example.com,+15550001\n")

		_, err := Parse(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestParseExcel(t *testing.T) {
	writeTempXLSX := func(t *testing.T, rows [][]interface{}) string {
		t.Helper()
		file := excelize.NewFile()
		sheet := file.GetSheetName(0)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, file.SetSheetRow(sheet, cell, &row))
		}
		path := filepath.Join(t.TempDir(), "voters.xlsx")
		require.NoError(t, file.SaveAs(path))
		return path
	}

	t.Run("Happy path - first sheet rows parse", func(t *testing.T) {
		path := writeTempXLSX(t, [][]interface{}{
			{"Full Name", "Email", "Phone"},
			{"Ada Lovelace", "ada@example.com", "+15550001"},
			{"Grace Hopper", "grace@example.com", ""},
		})

		rows, err := Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Ada Lovelace", rows[0].FullName)
		assert.Equal(t, "grace@example.com", rows[1].Email)
	})

	t.Run("Unhappy path - header only workbook", func(t *testing.T) {
		path := writeTempXLSX(t, [][]interface{}{
			{"Full Name", "Email", "Phone"},
		})

		_, err := Parse(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestParseUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voters.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	_, err := Parse(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestMapColumns(t *testing.T) {
	name, phone, email := mapColumns([]string{" full name ", "Phone Number", "E-MAIL"})
	assert.Equal(t, 0, name)
	assert.Equal(t, 1, phone)
	assert.Equal(t, -1, email, "Substring match is on 'email', not 'e-mail'")

	name, phone, email = mapColumns([]string{"Voter Name", "Email"})
	assert.Equal(t, 0, name)
	assert.Equal(t, -1, phone)
	assert.Equal(t, 1, email)
}
