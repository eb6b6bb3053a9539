package sqlstore

import (
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// timeValue scans DATE and TIMESTAMP columns whether the driver hands back a
// time.Time (pgx) or text (SQLite). Times are normalised to UTC.
type timeValue struct {
	Time  time.Time
	Valid bool
}

func (v *timeValue) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		v.Time, v.Valid = time.Time{}, false
		return nil
	case time.Time:
		v.Time, v.Valid = x.UTC(), true
		return nil
	case []byte:
		return v.parse(string(x))
	case string:
		return v.parse(x)
	default:
		return fmt.Errorf("timeValue: unsupported type %T", src)
	}
}

func (v *timeValue) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v.Time, v.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("timeValue: cannot parse %q", s)
}
