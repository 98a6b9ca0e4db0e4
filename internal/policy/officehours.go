package policy

import (
	"fmt"
	"strings"
	"time"

	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
)

// OfficeHours is a daily half-open [Start, End) window in a fixed location.
// A window whose start is not before its end never matches.
type OfficeHours struct {
	Start    time.Duration
	End      time.Duration
	Location *time.Location
}

func NewOfficeHours(start, end, timezone string) (OfficeHours, error) {
	s, err := parseTimeOfDay(start)
	if err != nil {
		return OfficeHours{}, fmt.Errorf("office hours start: %w", err)
	}
	e, err := parseTimeOfDay(end)
	if err != nil {
		return OfficeHours{}, fmt.Errorf("office hours end: %w", err)
	}
	loc, err := loadLocation(timezone)
	if err != nil {
		return OfficeHours{}, err
	}
	return OfficeHours{Start: s, End: e, Location: loc}, nil
}

func (o OfficeHours) Contains(t time.Time) bool {
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	tod := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	return tod >= o.Start && tod < o.End
}

func parseTimeOfDay(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, chatdeskErrors.InvalidInput(fmt.Sprintf("time of day %q", value))
}

func loadLocation(name string) (*time.Location, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.EqualFold(n, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(n)
	if err != nil {
		return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("timezone %q: %v", name, err))
	}
	return loc, nil
}
