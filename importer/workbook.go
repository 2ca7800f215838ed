package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// monthOnlyPattern matches what the xls reader renders for cells using a
// built-in date format. The day is lost, so such cells cannot be dated.
var monthOnlyPattern = regexp.MustCompile(`^\d{4}\.\d{2}$`)

// FileKind is the detected upload format.
type FileKind string

const (
	KindXLSX FileKind = "xlsx"
	KindXLS  FileKind = "xls"
	KindCSV  FileKind = "csv"
	KindPDF  FileKind = "pdf"
)

// DetectKind maps a file name's extension onto a FileKind.
func DetectKind(fileName string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return KindXLSX, nil
	case ".xls":
		return KindXLS, nil
	case ".csv":
		return KindCSV, nil
	case ".pdf":
		return KindPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
}

// Sheet is one worksheet's rows in sheet order.
type Sheet struct {
	Name string
	Rows []RawRow
}

type Workbook struct {
	Sheets []Sheet
}

// ReadWorkbook decodes spreadsheet bytes into raw rows.
func ReadWorkbook(data []byte, kind FileKind) (*Workbook, error) {
	var (
		wb  *Workbook
		err error
	)
	switch kind {
	case KindXLSX:
		wb, err = readXLSX(data)
	case KindXLS:
		wb, err = readXLS(data)
	case KindCSV:
		wb, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s is not a spreadsheet", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, ErrNoSheets
	}
	return wb, nil
}

// readXLSX keeps raw cell values so that date cells arrive as serials
// instead of locale-formatted text.
func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			log.Printf("[Importer] skipping sheet %q: %v", name, err)
			continue
		}
		sheet := Sheet{Name: name, Rows: make([]RawRow, len(rows))}
		for i, row := range rows {
			sheet.Rows[i] = textRow(row)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// readXLS reads legacy BIFF8 workbooks. The decoder panics on some
// malformed streams, so those surface as ErrUnreadableFile.
func readXLS(data []byte) (wb *Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("%w: failed to parse xls: %v", ErrUnreadableFile, r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xls: %v", ErrUnreadableFile, err)
	}
	if book == nil {
		return nil, fmt.Errorf("%w: no workbook stream in xls container", ErrUnreadableFile)
	}

	wb = &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		wb.Sheets = append(wb.Sheets, xlsSheet(ws))
	}
	return wb, nil
}

func xlsSheet(ws *xls.WorkSheet) Sheet {
	rows := make([]*xls.Row, int(ws.MaxRow)+1)
	width := 0
	for r := range rows {
		rows[r] = xlsRow(ws, r)
		if rows[r] != nil && rows[r].LastCol() > width {
			width = rows[r].LastCol()
		}
	}

	sheet := Sheet{Name: ws.Name, Rows: make([]RawRow, len(rows))}
	truncated := 0
	for r, row := range rows {
		if row == nil {
			sheet.Rows[r] = RawRow{}
			continue
		}
		cells := make(RawRow, width)
		for c := 0; c < width; c++ {
			v := row.Col(c)
			if monthOnlyPattern.MatchString(v) {
				truncated++
				continue
			}
			if v == "FormulaCol" {
				continue
			}
			cells[c] = textCell(v)
		}
		sheet.Rows[r] = cells
	}
	if truncated > 0 {
		log.Printf("[Importer] sheet %q: %d date cells use a built-in format the xls reader truncates to year.month; left blank", ws.Name, truncated)
	}
	return sheet
}

// xlsRow returns nil for rows the sheet never wrote.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

func readCSV(data []byte) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	sheet := Sheet{Name: "csv"}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read csv: %v", ErrUnreadableFile, err)
		}
		sheet.Rows = append(sheet.Rows, textRow(record))
	}
	return &Workbook{Sheets: []Sheet{sheet}}, nil
}

// textRow converts string cells into typed cells: blanks become nil and
// plain numbers become float64.
func textRow(cells []string) RawRow {
	row := make(RawRow, len(cells))
	for i, cell := range cells {
		row[i] = textCell(cell)
	}
	return row
}

func textCell(cell string) any {
	value := cleanValue(cell)
	if value == "" {
		return nil
	}
	if looksNumeric(value) {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// maxExactDigits is the longest digit run a float64 holds exactly.
const maxExactDigits = 15

// looksNumeric rejects values ParseFloat would accept but that are really
// identifiers (leading zeros, "Inf", hex, digit runs too long for a float64).
func looksNumeric(s string) bool {
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r != '.' && r != '-':
			return false
		}
	}
	return digits > 0 && digits <= maxExactDigits
}
