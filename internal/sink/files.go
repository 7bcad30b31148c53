// Package sink persists scraped records to local files and remote tables.
package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Hem1234567/laras-07/internal/model"
)

// WriteCSV overwrites path with a header row followed by one line per row,
// in the column order of T.CSVHeader. Zero rows still produce the header.
// Parent directories are created as needed.
func WriteCSV[T model.Row](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "sink: create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	var zero T
	if err := w.Write(zero.CSVHeader()); err != nil {
		return eris.Wrap(err, "sink: write csv header")
	}
	for _, r := range rows {
		if err := w.Write(r.CSVRecord()); err != nil {
			return eris.Wrap(err, "sink: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush csv")
	}
	return f.Close()
}

// WriteProjectsCSV writes project records with the fixed project column
// order.
func WriteProjectsCSV(path string, records []model.ProjectRecord) error {
	return WriteCSV(path, records)
}

// WriteXLSX overwrites path with a single-sheet workbook holding the same
// columns as the CSV sink.
func WriteXLSX[T model.Row](path, sheetName string, rows []T) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "sink: create directory for %s", path)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "sink: add xlsx sheet")
	}

	var zero T
	addRow(sheet, zero.CSVHeader())
	for _, r := range rows {
		addRow(sheet, r.CSVRecord())
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "sink: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
