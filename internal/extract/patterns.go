package extract

import "regexp"

var (
	timeRangePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}) ?(AM|PM)? ?- ?(\d{1,2}:\d{2}) ?(AM|PM)?`)
	weekdayPattern   = regexp.MustCompile(`(?i)Mo|Tu|We|Th|Fr|Sa|Su`)
	locationPattern  = regexp.MustCompile(`(?i)Hall|Room|Building|Lab`)
)

// TimeRange is a matched "start - end" clock range. Meridiems are empty when
// the source omitted them and keep the source's casing otherwise.
type TimeRange struct {
	StartClock    string
	StartMeridiem string
	EndClock      string
	EndMeridiem   string
}

// Start is the start clock with its meridiem appended verbatim.
func (t TimeRange) Start() string { return t.StartClock + t.StartMeridiem }

// End is the end clock with its meridiem appended verbatim.
func (t TimeRange) End() string { return t.EndClock + t.EndMeridiem }

// MatchTimeRange finds the first time range in s.
func MatchTimeRange(s string) (TimeRange, bool) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeRange{}, false
	}
	return TimeRange{
		StartClock:    m[1],
		StartMeridiem: m[2],
		EndClock:      m[3],
		EndMeridiem:   m[4],
	}, true
}

// HasWeekday reports whether s contains a two-letter weekday code anywhere,
// case-insensitively.
func HasWeekday(s string) bool {
	return weekdayPattern.MatchString(s)
}

// WeekdayCodes returns every weekday code occurrence in s, in order, as
// written in the source.
func WeekdayCodes(s string) []string {
	return weekdayPattern.FindAllString(s, -1)
}

// HasLocation reports whether s contains a location keyword
// (Hall, Room, Building, Lab), case-insensitively.
func HasLocation(s string) bool {
	return locationPattern.MatchString(s)
}
