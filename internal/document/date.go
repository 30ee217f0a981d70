package document

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locale identifies the locale used when rendering dates and times. It wraps a
// BCP-47 tag so config values like "en-US" or "de" parse leniently.
type Locale struct {
	tag language.Tag
}

// DefaultLocale is used when no locale is configured.
func DefaultLocale() Locale {
	return Locale{tag: language.AmericanEnglish}
}

// ParseLocale parses a locale string, falling back to the default on failure.
func ParseLocale(s string) Locale {
	if s == "" {
		return DefaultLocale()
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLocale()
	}
	return Locale{tag: tag}
}

func (l Locale) String() string {
	if l.tag == (language.Tag{}) {
		return language.AmericanEnglish.String()
	}
	return l.tag.String()
}

// Date is a document's decomposed date-time metadata. All fields are
// pre-formatted strings so templates can reference them directly.
type Date struct {
	Year       string `yaml:"year"`
	ShortYear  string `yaml:"short_year"`
	Month      string `yaml:"month"`
	IMonth     string `yaml:"i_month"`
	ShortMonth string `yaml:"short_month"`
	LongMonth  string `yaml:"long_month"`
	Day        string `yaml:"day"`
	IDay       string `yaml:"i_day"`
	YDay       string `yaml:"y_day"`
	WYear      string `yaml:"w_year"`
	Week       string `yaml:"week"`
	WDay       string `yaml:"w_day"`
	ShortDay   string `yaml:"short_day"`
	LongDay    string `yaml:"long_day"`
	Hour       string `yaml:"hour"`
	Minute     string `yaml:"minute"`
	Second     string `yaml:"second"`
	RFC3339    string `yaml:"rfc_3339"`
	RFC2822    string `yaml:"rfc_2822"`
}

// NewDate decomposes a time into the template-facing date fields.
func NewDate(t time.Time, _ Locale) Date {
	isoYear, isoWeek := t.ISOWeek()
	return Date{
		Year:       t.Format("2006"),
		ShortYear:  t.Format("06"),
		Month:      t.Format("01"),
		IMonth:     fmt.Sprintf("%d", int(t.Month())),
		ShortMonth: t.Format("Jan"),
		LongMonth:  t.Format("January"),
		Day:        t.Format("02"),
		IDay:       fmt.Sprintf("%d", t.Day()),
		YDay:       fmt.Sprintf("%03d", t.YearDay()),
		WYear:      fmt.Sprintf("%d", isoYear),
		Week:       fmt.Sprintf("%02d", isoWeek),
		WDay:       fmt.Sprintf("%d", isoWeekday(t.Weekday())),
		ShortDay:   t.Format("Mon"),
		LongDay:    t.Format("Monday"),
		Hour:       t.Format("15"),
		Minute:     t.Format("04"),
		Second:     t.Format("05"),
		RFC3339:    t.Format(time.RFC3339),
		RFC2822:    t.Format("Mon, 02 Jan 2006 15:04:05 -0700"),
	}
}

// Map exposes the date fields under their template names.
func (d Date) Map() map[string]any {
	return map[string]any{
		"year":        d.Year,
		"short_year":  d.ShortYear,
		"month":       d.Month,
		"i_month":     d.IMonth,
		"short_month": d.ShortMonth,
		"long_month":  d.LongMonth,
		"day":         d.Day,
		"i_day":       d.IDay,
		"y_day":       d.YDay,
		"w_year":      d.WYear,
		"week":        d.Week,
		"w_day":       d.WDay,
		"short_day":   d.ShortDay,
		"long_day":    d.LongDay,
		"hour":        d.Hour,
		"minute":      d.Minute,
		"second":      d.Second,
		"rfc_3339":    d.RFC3339,
		"rfc_2822":    d.RFC2822,
	}
}

// isoWeekday maps Go's Sunday-first weekday to ISO numbering (Monday=1).
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// parseDateValue accepts the YAML representations a frontmatter `date` key may
// take: a parsed timestamp, an RFC 3339 string, or a plain calendar date.
func parseDateValue(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format %q", val)
	default:
		return time.Time{}, fmt.Errorf("date must be a timestamp or string, got %T", v)
	}
}
