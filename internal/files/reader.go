package files

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"adpulse/internal/dataprocessing"
)

// ReadTable reads one report file into a RawTable, dispatching on the file
// extension. The file's base name becomes the table's source identifier,
// which downstream doubles as the platform label when no platform column
// resolves.
func ReadTable(path string) (dataprocessing.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return dataprocessing.RawTable{}, fmt.Errorf("unsupported file type: %s", path)
	}
}

// readCSV reads a CSV export. Marketing platforms export with a UTF-8 BOM
// more often than not, so the first header cell is BOM-stripped. Ragged rows
// are tolerated; the merger pads or truncates against the header.
func readCSV(path string) (dataprocessing.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataprocessing.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return dataprocessing.RawTable{}, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := dataprocessing.RawTable{
		Source:  filepath.Base(path),
		Headers: header,
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataprocessing.RawTable{}, fmt.Errorf("failed to read rows from %s: %w", path, err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// readXLSX reads the first sheet that looks like tabular data: the header
// row is the first row with at least two non-empty cells. Sheets are probed
// in workbook order, so single-sheet exports behave as expected and
// multi-sheet workbooks skip leading cover sheets.
func readXLSX(path string) (dataprocessing.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataprocessing.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		headerIdx := findHeaderRow(rows)
		if headerIdx < 0 {
			continue
		}
		table := dataprocessing.RawTable{
			Source:  filepath.Base(path),
			Headers: rows[headerIdx],
		}
		for _, row := range rows[headerIdx+1:] {
			if rowEmpty(row) {
				continue
			}
			table.Rows = append(table.Rows, row)
		}
		return table, nil
	}
	return dataprocessing.RawTable{}, fmt.Errorf("no tabular sheet found in %s", path)
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		filled := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
		if filled >= 2 {
			return i
		}
	}
	return -1
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
