package models

// EventType is the closed taxonomy of academic calendar entries.
type EventType string

const (
	EventStartOfSemester EventType = "Start of Semester"
	EventMidSemExams     EventType = "Mid-Semester Exams"
	EventEndSemExams     EventType = "End-Semester Exams"
	EventHoliday         EventType = "Holiday"
	EventOther           EventType = "Other"
)

// EventTypes lists every EventType in display order.
var EventTypes = []EventType{
	EventStartOfSemester,
	EventMidSemExams,
	EventEndSemExams,
	EventHoliday,
	EventOther,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CourseType selects the credit calculation scheme.
type CourseType string

const (
	CourseTypeCBCS CourseType = "CBCS"
	CourseTypeNEP  CourseType = "NEP"
)

// CalendarEvent is one dated entry of the academic calendar.
type CalendarEvent struct {
	ID          string    `json:"id,omitempty"`
	Date        string    `json:"date"`
	EndDate     string    `json:"endDate,omitempty"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
}

func (e CalendarEvent) NaturalKey() string { return e.Date + "|" + e.Description }
func (e CalendarEvent) DocID() string      { return e.ID }

func (e CalendarEvent) WithDocID(id string) CalendarEvent {
	e.ID = id
	return e
}

type Course struct {
	ID         string     `json:"id,omitempty"`
	CourseCode string     `json:"courseCode"`
	CourseName string     `json:"courseName"`
	LTP        string     `json:"ltp"`
	Credits    float64    `json:"credits"`
	CourseType CourseType `json:"courseType"`
	Slots      []Slot     `json:"slots"`
}

type Slot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Venue     string `json:"venue"`
}

func (c Course) NaturalKey() string { return c.CourseCode }
func (c Course) DocID() string      { return c.ID }

func (c Course) WithDocID(id string) Course {
	c.ID = id
	return c
}

type DirectoryEntry struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (d DirectoryEntry) NaturalKey() string { return d.Email }
func (d DirectoryEntry) DocID() string      { return d.ID }

func (d DirectoryEntry) WithDocID(id string) DirectoryEntry {
	d.ID = id
	return d
}

type Student struct {
	ID     string `json:"id,omitempty"`
	AdmNo  string `json:"admNo"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Branch string `json:"branch"`
	Batch  string `json:"batch"`
}

func (s Student) NaturalKey() string { return s.AdmNo }
func (s Student) DocID() string      { return s.ID }

func (s Student) WithDocID(id string) Student {
	s.ID = id
	return s
}
