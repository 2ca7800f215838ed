package importer

import (
	"regexp"
	"strconv"
	"strings"

	"college-portal-api/models"
)

var (
	ltpPattern      = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*-\s*(\d+)`)
	codeNamePattern = regexp.MustCompile(`^([A-Za-z0-9]+)[\s:-]*\(?(.*?)\)?$`)
	parenPattern    = regexp.MustCompile(`[()]`)
)

// isCourseHeader reports whether a row opens a new course: a numeric serial
// and a non-empty course cell.
func isCourseHeader(cm ColumnMap) func(RawRow) bool {
	return func(row RawRow) bool {
		if cm.Text(row, FieldCourse) == "" {
			return false
		}
		serial := strings.TrimSuffix(cm.Text(row, FieldSerial), ".")
		if serial == "" {
			return false
		}
		_, err := strconv.ParseFloat(serial, 64)
		return err == nil
	}
}

// assembleCourses groups rows under course header rows and turns each group
// into a course. Later groups repeating a course code are discarded.
func assembleCourses(rows []RawRow, cm ColumnMap, courseType models.CourseType) (courses []models.Course, skipped []int, dropped int) {
	groups, orphans := GroupRows(rows, cm.HeaderRow()+1, isCourseHeader(cm))
	skipped = append(skipped, orphans...)

	candidates := make([]models.Course, 0, len(groups))
	for _, g := range groups {
		course, ignored, ok := courseFromGroup(g, cm, courseType)
		skipped = append(skipped, ignored...)
		if !ok {
			skipped = append(skipped, g.Header.Index)
			continue
		}
		candidates = append(candidates, course)
	}

	courses, dropped = Dedupe(candidates, courseKey)
	return courses, skipped, dropped
}

// courseFromGroup maps one header/details group to a course. ignored lists
// detail rows that carried data but no usable slot.
func courseFromGroup(g RowGroup, cm ColumnMap, courseType models.CourseType) (course models.Course, ignored []int, ok bool) {
	code, name := SplitCourseCell(cm.Text(g.Header.Row, FieldCourse))
	if code == "" {
		return models.Course{}, nil, false
	}

	ltp, l, t, p := ParseLTP(cm.Text(g.Header.Row, FieldLTP))
	course = models.Course{
		CourseCode: code,
		CourseName: name,
		LTP:        ltp,
		Credits:    Credits(l, t, p, courseType),
		CourseType: courseType,
		Slots:      make([]models.Slot, 0, len(g.Details)+1),
	}

	if slot, ok := slotFromRow(g.Header.Row, cm); ok {
		course.Slots = append(course.Slots, slot)
	}
	for _, d := range g.Details {
		slot, ok := slotFromRow(d.Row, cm)
		if !ok {
			if !d.Row.Empty() {
				ignored = append(ignored, d.Index)
			}
			continue
		}
		course.Slots = append(course.Slots, slot)
	}
	return course, ignored, true
}

func slotFromRow(row RawRow, cm ColumnMap) (models.Slot, bool) {
	day := cm.Text(row, FieldDay)
	timeCell := cm.Value(row, FieldTime)
	if day == "" || CellText(timeCell) == "" {
		return models.Slot{}, false
	}
	start, end, ok := SplitTimeRange(timeCell)
	if !ok {
		return models.Slot{}, false
	}
	return models.Slot{
		Day:       day,
		StartTime: start,
		EndTime:   end,
		Venue:     cm.Text(row, FieldVenue),
	}, true
}

// SplitCourseCell separates a combined "code + name" cell. A multi-line cell
// carries the code on its first line; otherwise the leading alphanumeric
// token is the code.
func SplitCourseCell(cell string) (code, name string) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, "\r\n", "\n"))
	if cell == "" {
		return "", ""
	}

	if strings.Contains(cell, "\n") {
		lines := strings.Split(cell, "\n")
		code = strings.TrimSpace(lines[0])
		rest := make([]string, 0, len(lines)-1)
		for _, l := range lines[1:] {
			if l = strings.TrimSpace(l); l != "" {
				rest = append(rest, l)
			}
		}
		name = parenPattern.ReplaceAllString(strings.Join(rest, " "), "")
		return strings.ToUpper(code), collapseSpaces(name)
	}

	if m := codeNamePattern.FindStringSubmatch(cell); m != nil {
		return strings.ToUpper(m[1]), collapseSpaces(m[2])
	}

	code, name, _ = strings.Cut(cell, " ")
	return strings.ToUpper(strings.Trim(code, "()[] ")), collapseSpaces(parenPattern.ReplaceAllString(name, ""))
}

// ParseLTP extracts the lecture-tutorial-practical triplet. Missing or
// malformed values yield "0-0-0".
func ParseLTP(cell string) (ltp string, l, t, p int) {
	m := ltpPattern.FindStringSubmatch(cell)
	if m == nil {
		return "0-0-0", 0, 0, 0
	}
	l, _ = strconv.Atoi(m[1])
	t, _ = strconv.Atoi(m[2])
	p, _ = strconv.Atoi(m[3])
	return strconv.Itoa(l) + "-" + strconv.Itoa(t) + "-" + strconv.Itoa(p), l, t, p
}

// Credits derives a course's credit value from its L-T-P hours.
// CBCS counts a practical hour as half a credit; NEP weighs contact hours
// double.
func Credits(l, t, p int, courseType models.CourseType) float64 {
	switch courseType {
	case models.CourseTypeNEP:
		return float64(2*l + 2*t + p)
	default:
		return float64(l+t) + float64(p)/2
	}
}

func courseKey(c models.Course) string { return strings.ToUpper(c.CourseCode) }
