// Package spreadsheet parses bulk voter upload files. Header matching is a
// case-insensitive substring match, so "Full Name", "PHONE NUMBER" and
// "Email Address" all resolve.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")
var ErrEmptyFile = errors.New("file contains no data rows")

type Row struct {
	FullName string
	Phone    string
	Email    string
}

func Parse(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path)
	case ".xlsx", ".xlsm":
		return parseExcel(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		logging.Log.Errorf("UPLOAD: failed to open csv %s: %v", path, err)
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		logging.Log.Errorf("UPLOAD: failed to read csv %s: %v", path, err)
		return nil, err
	}
	return rowsFromRecords(records)
}

func parseExcel(path string) ([]Row, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		logging.Log.Errorf("UPLOAD: failed to open workbook %s: %v", path, err)
		return nil, err
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		logging.Log.Errorf("UPLOAD: failed to read sheet %s: %v", sheets[0], err)
		return nil, err
	}
	return rowsFromRecords(records)
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	nameIdx, phoneIdx, emailIdx := mapColumns(records[0])
	if nameIdx < 0 {
		return nil, ErrEmptyFile
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := Row{
			FullName: cell(record, nameIdx),
			Phone:    cell(record, phoneIdx),
			Email:    cell(record, emailIdx),
		}
		if row.FullName == "" && row.Phone == "" && row.Email == "" {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func mapColumns(header []string) (name, phone, email int) {
	name, phone, email = -1, -1, -1
	for i, column := range header {
		c := strings.ToLower(strings.TrimSpace(column))
		switch {
		case name < 0 && strings.Contains(c, "name"):
			name = i
		case phone < 0 && strings.Contains(c, "phone"):
			phone = i
		case email < 0 && strings.Contains(c, "email"):
			email = i
		}
	}
	return name, phone, email
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
