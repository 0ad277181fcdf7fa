package timezone

import (
	"time"

	_ "time/tzdata"
)

// DateLayout is the layout used for snapshot dates on the command line.
const DateLayout = "2006-01-02"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
}

// listings are published on London time, servers are not always in London
// so anything that cares about the calendar day goes through here.
func Now() time.Time {
	return time.Now().In(Location)
}

// Day truncates t to midnight of its calendar day in London.
func Day(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

// ParseDate parses a YYYY-MM-DD date as a London calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location)
}
