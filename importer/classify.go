package importer

import (
	"regexp"
	"strings"

	"college-portal-api/models"
)

type typeRule struct {
	pattern *regexp.Regexp
	typ     models.EventType
}

// Order matters: a "mid-semester break" is a holiday, not an exam.
var eventRules = []typeRule{
	{regexp.MustCompile(`(?i)holiday|vacation|\bbreak\b|recess|diwali|deepavali|\bholi\b|dussehra|durga\s*puja|christmas|\beid\b|id-ul|bakrid|muharram|guru\s*nanak|republic\s*day|independence\s*day|gandhi\s*jayanti|good\s*friday|janmashtami|ganesh\s*chaturthi|pongal|sankranti|navratri|ram\s*navami|mahavir\s*jayanti|buddha\s*purnima|chhath|raksha\s*bandhan|new\s*year`), models.EventHoliday},
	{regexp.MustCompile(`(?i)mid.?semester.?exam`), models.EventMidSemExams},
	{regexp.MustCompile(`(?i)end.?semester.?exam`), models.EventEndSemExams},
	{regexp.MustCompile(`(?i)commencement.*class|start of semester`), models.EventStartOfSemester},
}

// ClassifyEvent maps a free-text calendar description onto exactly one
// event type. Unmatched descriptions are Other.
func ClassifyEvent(description string) models.EventType {
	for _, rule := range eventRules {
		if rule.pattern.MatchString(description) {
			return rule.typ
		}
	}
	return models.EventOther
}

// ParseEventType accepts a type label supplied by an upstream extractor and
// falls back to keyword classification of the description.
func ParseEventType(label, description string) models.EventType {
	label = strings.TrimSpace(label)
	for _, known := range models.EventTypes {
		if strings.EqualFold(label, string(known)) {
			return known
		}
	}
	return ClassifyEvent(description)
}
