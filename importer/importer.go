// Package importer turns uploaded spreadsheets and PDFs into calendar,
// course, directory and student records ready for preview.
//
// Every import is a single pass: read the workbook, locate the header row,
// assemble records, drop in-batch duplicates. Nothing here writes to
// storage.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"college-portal-api/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadableFile    = errors.New("unreadable file")
	ErrNoSheets          = errors.New("no sheets found")
	ErrNoHeader          = errors.New("no header row found")
	ErrNoData            = errors.New("no valid data found")
	ErrPDFUnsupported    = errors.New("pdf import is not configured")
)

// ExtractedEvent is a calendar candidate produced from free text by an
// EventExtractor. Fields are unnormalized.
type ExtractedEvent struct {
	Date        string `json:"date"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// EventExtractor turns the text of a calendar PDF into event candidates.
type EventExtractor interface {
	ExtractEvents(ctx context.Context, text string) ([]ExtractedEvent, error)
}

type Options struct {
	// CourseType selects the credit scheme for course imports (CBCS if empty).
	CourseType models.CourseType
	// Mapper overrides the built-in header detection for the target.
	Mapper ColumnMapper
}

// Result is the outcome of one import. SkippedRows holds zero-based sheet
// row indexes that carried data but produced no record.
type Result[T any] struct {
	Records     []T
	Sheet       string
	HeaderRow   int
	SkippedRows []int
	Duplicates  int
}

// Outcome is a Result with its records erased, for callers that handle every
// target the same way.
type Outcome struct {
	Target      models.ImportTarget
	Records     interface{}
	Count       int
	Sheet       string
	HeaderRow   int
	SkippedRows []int
	Duplicates  int
}

type Importer struct {
	extractor EventExtractor
}

// New returns an Importer. extractor may be nil, in which case PDF calendars
// are rejected with ErrPDFUnsupported.
func New(extractor EventExtractor) *Importer {
	return &Importer{extractor: extractor}
}

// Import dispatches to the importer for target.
func (im *Importer) Import(ctx context.Context, target models.ImportTarget, data []byte, kind FileKind, opts Options) (*Outcome, error) {
	switch target {
	case models.TargetCalendar:
		res, err := im.ImportCalendar(ctx, data, kind, opts)
		return outcome(target, res), err
	case models.TargetCourses:
		res, err := im.ImportCourses(ctx, data, kind, opts)
		return outcome(target, res), err
	case models.TargetDirectory:
		res, err := im.ImportDirectory(ctx, data, kind, opts)
		return outcome(target, res), err
	case models.TargetStudents:
		res, err := im.ImportStudents(ctx, data, kind, opts)
		return outcome(target, res), err
	default:
		return nil, fmt.Errorf("unknown import target: %s", target)
	}
}

func outcome[T any](target models.ImportTarget, res *Result[T]) *Outcome {
	if res == nil {
		return nil
	}
	return &Outcome{
		Target:      target,
		Records:     res.Records,
		Count:       len(res.Records),
		Sheet:       res.Sheet,
		HeaderRow:   res.HeaderRow,
		SkippedRows: res.SkippedRows,
		Duplicates:  res.Duplicates,
	}
}

// ImportCalendar reads calendar events from a spreadsheet or, when an
// extractor is configured, from a PDF. Events come back sorted by date.
func (im *Importer) ImportCalendar(ctx context.Context, data []byte, kind FileKind, opts Options) (*Result[models.CalendarEvent], error) {
	if kind == KindPDF {
		return im.importCalendarPDF(ctx, data)
	}

	mapper := mapperOr(opts.Mapper, CalendarColumns())
	res, err := importRows(data, kind, mapper, func(rows []RawRow, cm ColumnMap) ([]models.CalendarEvent, []int, int) {
		events, skipped := assembleRows(rows, cm, calendarRow(cm))
		events, dropped := Dedupe(events, calendarKey)
		sortEvents(events)
		return events, skipped, dropped
	})
	return res, err
}

func (im *Importer) importCalendarPDF(ctx context.Context, data []byte) (*Result[models.CalendarEvent], error) {
	if im.extractor == nil {
		return nil, ErrPDFUnsupported
	}

	text, err := ReadPDFText(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[Importer] pdf text extracted (%d chars)", len(text))

	res := &Result[models.CalendarEvent]{Records: []models.CalendarEvent{}, HeaderRow: -1}
	if text == "" {
		return res, ErrNoData
	}

	candidates, err := im.extractor.ExtractEvents(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract events: %w", err)
	}

	res.Records, res.SkippedRows, res.Duplicates = assembleExtracted(candidates)
	if len(res.Records) == 0 {
		return res, ErrNoData
	}
	return res, nil
}

// assembleExtracted normalizes extractor output the same way sheet rows are
// normalized. skipped holds candidate positions without a usable date or
// description.
func assembleExtracted(candidates []ExtractedEvent) (events []models.CalendarEvent, skipped []int, dropped int) {
	events = make([]models.CalendarEvent, 0, len(candidates))
	for i, c := range candidates {
		event, ok := eventFromCandidate(c)
		if !ok {
			skipped = append(skipped, i)
			continue
		}
		events = append(events, event)
	}
	events, dropped = Dedupe(events, calendarKey)
	sortEvents(events)
	return events, skipped, dropped
}

func eventFromCandidate(c ExtractedEvent) (models.CalendarEvent, bool) {
	date, ok := NormalizeDate(c.Date)
	if !ok {
		return models.CalendarEvent{}, false
	}
	description := collapseSpaces(c.Description)
	if description == "" {
		return models.CalendarEvent{}, false
	}
	event := models.CalendarEvent{
		Date:        date,
		Description: description,
		Type:        ParseEventType(c.Type, description),
	}
	if end, ok := NormalizeDate(c.EndDate); ok {
		event.EndDate = end
	}
	return withValidEndDate(event), true
}

// ImportCourses reads a course timetable where each course spans a header
// row followed by slot rows.
func (im *Importer) ImportCourses(ctx context.Context, data []byte, kind FileKind, opts Options) (*Result[models.Course], error) {
	courseType := opts.CourseType
	if courseType != models.CourseTypeNEP {
		courseType = models.CourseTypeCBCS
	}

	mapper := mapperOr(opts.Mapper, CourseColumns())
	return importRows(data, kind, mapper, func(rows []RawRow, cm ColumnMap) ([]models.Course, []int, int) {
		return assembleCourses(rows, cm, courseType)
	})
}

// ImportDirectory reads faculty and staff entries keyed by email.
func (im *Importer) ImportDirectory(ctx context.Context, data []byte, kind FileKind, opts Options) (*Result[models.DirectoryEntry], error) {
	mapper := mapperOr(opts.Mapper, DirectoryColumns())
	return importRows(data, kind, mapper, func(rows []RawRow, cm ColumnMap) ([]models.DirectoryEntry, []int, int) {
		entries, skipped := assembleRows(rows, cm, directoryRow(cm))
		entries, dropped := Dedupe(entries, directoryKey)
		return entries, skipped, dropped
	})
}

// ImportStudents reads student records keyed by admission number.
func (im *Importer) ImportStudents(ctx context.Context, data []byte, kind FileKind, opts Options) (*Result[models.Student], error) {
	mapper := mapperOr(opts.Mapper, StudentColumns())
	return importRows(data, kind, mapper, func(rows []RawRow, cm ColumnMap) ([]models.Student, []int, int) {
		students, skipped := assembleRows(rows, cm, studentRow(cm))
		students, dropped := Dedupe(students, studentKey)
		return students, skipped, dropped
	})
}

func mapperOr(override ColumnMapper, fallback ColumnMapper) ColumnMapper {
	if override != nil {
		return override
	}
	return fallback
}

// importRows is the shared spreadsheet path: read, pick a sheet, assemble.
func importRows[T any](data []byte, kind FileKind, mapper ColumnMapper, assemble func([]RawRow, ColumnMap) ([]T, []int, int)) (*Result[T], error) {
	if kind == KindPDF {
		return nil, fmt.Errorf("%w: pdf is only accepted for calendars", ErrUnsupportedFormat)
	}

	wb, err := ReadWorkbook(data, kind)
	if err != nil {
		return nil, err
	}

	sheet, cm, err := selectSheet(wb, mapper)
	if err != nil {
		return &Result[T]{Records: []T{}, HeaderRow: -1}, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	log.Printf("[Importer] sheet %q: header row %d, positional=%t, %d rows", sheet.Name, cm.HeaderRow(), cm.Positional(), len(sheet.Rows))

	records, skipped, dropped := assemble(sheet.Rows, cm)
	if records == nil {
		records = []T{}
	}
	res := &Result[T]{
		Records:     records,
		Sheet:       sheet.Name,
		HeaderRow:   cm.HeaderRow(),
		SkippedRows: skipped,
		Duplicates:  dropped,
	}
	log.Printf("[Importer] sheet %q: %d records, %d skipped rows, %d duplicates", sheet.Name, len(records), len(skipped), dropped)

	if len(records) == 0 {
		return res, ErrNoData
	}
	return res, nil
}

// selectSheet prefers the first sheet with a detected header row and falls
// back to the first sheet the mapper accepts positionally.
func selectSheet(wb *Workbook, mapper ColumnMapper) (*Sheet, ColumnMap, error) {
	var (
		fallbackSheet *Sheet
		fallbackMap   ColumnMap
		lastErr       = ErrNoHeader
	)
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		cm, err := mapper.MapColumns(sheet.Rows)
		if err != nil {
			lastErr = err
			continue
		}
		if !cm.Positional() {
			return sheet, cm, nil
		}
		if fallbackSheet == nil {
			fallbackSheet, fallbackMap = sheet, cm
		}
	}
	if fallbackSheet != nil {
		return fallbackSheet, fallbackMap, nil
	}
	return nil, ColumnMap{}, lastErr
}
