package importer

import (
	"strings"
)

// RawRow is one sheet row; cells are nil, string, float64, int or time.Time.
type RawRow []any

// Cell returns the value at col or nil when the row is shorter.
func (r RawRow) Cell(col int) any {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// Empty reports whether every cell is blank.
func (r RawRow) Empty() bool {
	for _, c := range r {
		if CellText(c) != "" {
			return false
		}
	}
	return true
}

// ColumnMap binds semantic field names to column indexes for one sheet.
// It is never modified after construction.
type ColumnMap struct {
	headerRow  int
	positional bool
	columns    map[string]int
}

// NewColumnMap copies columns into a new map rooted at headerRow.
func NewColumnMap(headerRow int, columns map[string]int) ColumnMap {
	cp := make(map[string]int, len(columns))
	for k, v := range columns {
		cp[k] = v
	}
	return ColumnMap{headerRow: headerRow, columns: cp}
}

// HeaderRow is the sheet index of the header; data starts on the next row.
func (m ColumnMap) HeaderRow() int { return m.headerRow }

// Positional reports whether the map came from a fixed-layout fallback.
func (m ColumnMap) Positional() bool { return m.positional }

func (m ColumnMap) Index(field string) (int, bool) {
	idx, ok := m.columns[field]
	return idx, ok
}

func (m ColumnMap) Has(field string) bool {
	_, ok := m.columns[field]
	return ok
}

// Value returns the raw cell for field, nil when unmapped.
func (m ColumnMap) Value(row RawRow, field string) any {
	idx, ok := m.columns[field]
	if !ok {
		return nil
	}
	return row.Cell(idx)
}

// Text returns the trimmed cell text for field.
func (m ColumnMap) Text(row RawRow, field string) string {
	return CellText(m.Value(row, field))
}

// ColumnMapper decides which columns of a sheet hold which fields.
type ColumnMapper interface {
	MapColumns(rows []RawRow) (ColumnMap, error)
}

// FieldSpec describes one field a header row may name.
type FieldSpec struct {
	Name     string
	Synonyms []string
	Required bool
}

const defaultHeaderWindow = 10

// HeaderMapper finds a header row by synonym matching within the first
// Window rows and falls back to a fixed layout when none is found.
type HeaderMapper struct {
	Fields   []FieldSpec
	Window   int
	Fallback *ColumnMap
}

func (h HeaderMapper) MapColumns(rows []RawRow) (ColumnMap, error) {
	window := h.Window
	if window <= 0 {
		window = defaultHeaderWindow
	}

	for i := 0; i < window && i < len(rows); i++ {
		if columns, ok := h.matchHeader(rows[i]); ok {
			return NewColumnMap(i, columns), nil
		}
	}

	if h.Fallback != nil {
		fb := NewColumnMap(h.Fallback.headerRow, h.Fallback.columns)
		fb.positional = true
		return fb, nil
	}
	return ColumnMap{}, ErrNoHeader
}

// matchHeader resolves fields in declaration order; a column claimed by an
// earlier field is not offered to later ones.
func (h HeaderMapper) matchHeader(row RawRow) (map[string]int, bool) {
	labels := make([]string, len(row))
	for i, c := range row {
		labels[i] = strings.ToLower(CellText(c))
	}

	claimed := make(map[int]bool, len(h.Fields))
	columns := make(map[string]int, len(h.Fields))
	for _, field := range h.Fields {
		col, ok := findColumn(labels, field.Synonyms, claimed)
		if !ok {
			if field.Required {
				return nil, false
			}
			continue
		}
		claimed[col] = true
		columns[field.Name] = col
	}
	return columns, len(columns) > 0
}

func findColumn(labels []string, synonyms []string, claimed map[int]bool) (int, bool) {
	for _, syn := range synonyms {
		syn = strings.ToLower(syn)
		for col, label := range labels {
			if label == "" || claimed[col] {
				continue
			}
			if strings.Contains(label, syn) {
				return col, true
			}
		}
	}
	return 0, false
}

// Field names shared by the built-in layouts.
const (
	FieldDate        = "date"
	FieldEndDate     = "endDate"
	FieldDescription = "description"
	FieldType        = "type"

	FieldName        = "name"
	FieldDepartment  = "department"
	FieldDesignation = "designation"
	FieldEmail       = "email"
	FieldPhone       = "phone"

	FieldAdmNo  = "admNo"
	FieldBranch = "branch"
	FieldBatch  = "batch"

	FieldSerial = "serial"
	FieldCourse = "course"
	FieldLTP    = "ltp"
	FieldDay    = "day"
	FieldTime   = "time"
	FieldVenue  = "venue"
)

// CalendarColumns locates date, end date and description columns.
func CalendarColumns() HeaderMapper {
	return HeaderMapper{Fields: []FieldSpec{
		{Name: FieldEndDate, Synonyms: []string{"end date", "to date", "till", "upto", "up to", "ending"}},
		{Name: FieldDate, Synonyms: []string{"start date", "from date", "date", "day"}, Required: true},
		{Name: FieldDescription, Synonyms: []string{"description", "event", "particular", "detail", "activity", "occasion", "holiday"}, Required: true},
		{Name: FieldType, Synonyms: []string{"type", "category"}},
	}}
}

// DirectoryColumns locates the faculty and staff directory fields.
func DirectoryColumns() HeaderMapper {
	return HeaderMapper{Fields: []FieldSpec{
		{Name: FieldEmail, Synonyms: []string{"email", "e-mail", "mail"}, Required: true},
		{Name: FieldPhone, Synonyms: []string{"phone", "mobile", "contact", "tel"}},
		{Name: FieldDepartment, Synonyms: []string{"department", "dept"}},
		{Name: FieldDesignation, Synonyms: []string{"designation", "position", "title", "role"}},
		{Name: FieldName, Synonyms: []string{"name", "faculty", "staff"}, Required: true},
	}}
}

// StudentColumns locates the student roster fields.
func StudentColumns() HeaderMapper {
	return HeaderMapper{Fields: []FieldSpec{
		{Name: FieldAdmNo, Synonyms: []string{"admission no", "admission number", "adm no", "adm. no", "admno", "enrol", "roll"}, Required: true},
		{Name: FieldEmail, Synonyms: []string{"email", "e-mail", "mail"}},
		{Name: FieldPhone, Synonyms: []string{"phone", "mobile", "contact"}},
		{Name: FieldBranch, Synonyms: []string{"branch", "department", "dept", "programme", "program", "discipline"}},
		{Name: FieldBatch, Synonyms: []string{"batch", "year", "session"}},
		{Name: FieldName, Synonyms: []string{"student name", "name"}, Required: true},
	}}
}

// courseFallback is the timetable layout: B serial, C code and name, H L-T-P,
// I-K day/time/venue, data from row index 5.
var courseFallback = NewColumnMap(4, map[string]int{
	FieldSerial: 1,
	FieldCourse: 2,
	FieldLTP:    7,
	FieldDay:    8,
	FieldTime:   9,
	FieldVenue:  10,
})

// CourseColumns locates the course timetable fields.
func CourseColumns() HeaderMapper {
	fallback := courseFallback
	return HeaderMapper{
		Fields: []FieldSpec{
			{Name: FieldSerial, Synonyms: []string{"s.no", "s. no", "sr", "serial", "sno", "sl.", "sl no", "#"}, Required: true},
			{Name: FieldLTP, Synonyms: []string{"l-t-p", "ltp", "l t p"}},
			{Name: FieldCourse, Synonyms: []string{"course", "subject", "paper"}, Required: true},
			{Name: FieldDay, Synonyms: []string{"day"}},
			{Name: FieldTime, Synonyms: []string{"time", "timing", "slot"}},
			{Name: FieldVenue, Synonyms: []string{"venue", "room", "hall", "location"}},
		},
		Fallback: &fallback,
	}
}
