// backend/src/parsers/reader.go
package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadTabular reads an uploaded statement file into raw rows, dispatching on
// the file extension. The first row is expected to be the header.
func ReadTabular(file io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv", "":
		return readCSV(file, filename)
	case ".xlsx":
		return readXLSX(file)
	case ".xls":
		return readXLS(file)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func readCSV(file io.Reader, filename string) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record
	if strings.ToLower(filepath.Ext(filename)) == ".tsv" {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return records, nil
}

func readXLSX(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readXLS(file io.Reader) ([][]string, error) {
	// xls.OpenReader needs random access, so buffer the upload first.
	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer xls file: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(buf), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file: %w", err)
	}

	rows := wb.ReadAllCells(maxXLSRows)
	return rows, nil
}

// maxXLSRows bounds legacy-xls reads; files beyond this are truncated.
const maxXLSRows = 100000
