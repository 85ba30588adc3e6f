package lang

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

func init() {
	register(&builtin{
		name:     "AS_TIMESTAMP",
		params:   []string{"value", "pattern", "timezone", "locale", "roundDownTo"},
		required: 2,
		summary:  "epoch milliseconds of value parsed with a date-time pattern, optionally rounded down",
		fn:       builtinAsTimestamp,
	})
}

func builtinAsTimestamp(ctx context.Context, in *invocation) (Value, error) {
	v, err := in.arg(ctx, 0)
	if err != nil || v == nil {
		return nil, err
	}

	value, ok := v.(String)
	if !ok {
		return nil, in.mismatch(0, KindString, v)
	}

	pattern, err := in.text(ctx, 1)
	if err != nil {
		return nil, err
	}

	zoneName, err := in.textOr(ctx, 2, "")
	if err != nil {
		return nil, err
	}

	localeName, err := in.textOr(ctx, 3, in.ev.locale)
	if err != nil {
		return nil, err
	}

	unit, err := in.textOr(ctx, 4, "")
	if err != nil {
		return nil, err
	}

	loc := in.ev.location

	if zoneName != "" {
		if loc, err = time.LoadLocation(zoneName); err != nil {
			return nil, in.argError(2, "unknown time zone %q", zoneName).wrap(err)
		}
	}

	tag, err := language.Parse(localeName)
	if err != nil {
		return nil, in.argError(3, "invalid locale %q", localeName).wrap(err)
	}

	ts, err := parseTimestamp(string(value), pattern, loc, zoneName != "", tag)
	if err != nil {
		return nil, in.argError(0, "cannot parse %q with pattern %q", string(value), pattern).wrap(err)
	}

	if unit != "" {
		if ts.Time, err = truncate(ts.Time.In(ts.zone), unit, firstWeekday(tag)); err != nil {
			return nil, in.argError(4, "%q", unit).wrap(err)
		}
	}

	return NumberFromInt(ts.UnixMilli()), nil
}

// timestamp is a parsed instant and the zone its civil time belongs to.
type timestamp struct {
	time.Time

	zone *time.Location
}

// parseTimestamp parses value with a date-time pattern.
//
// An offset in the value (pattern letters X, x, Z) fixes the instant. A zone
// abbreviation (pattern letter z) selects the zone unless one was given
// explicitly. Otherwise the civil time is read in loc.
func parseTimestamp(
	value, pattern string,
	loc *time.Location,
	explicit bool,
	tag language.Tag,
) (timestamp, error) {
	layout, err := translatePattern(pattern)
	if err != nil {
		return timestamp{}, err
	}

	t, err := parseInLocale(layout.text, value, loc, tag)
	if err != nil {
		return timestamp{}, ErrInvalidTimestamp.Wrap(err)
	}

	switch {
	case layout.offset:
		return timestamp{Time: t, zone: loc}, nil

	case layout.zoneName && !explicit:
		abbr, _ := t.Zone()

		zone, ok := zoneAbbreviation(abbr)
		if !ok {
			return timestamp{}, ErrInvalidTimestamp.Wrap(
				fmt.Errorf("unknown zone abbreviation %q", abbr))
		}

		return timestamp{Time: civil(t, zone), zone: zone}, nil
	}

	return timestamp{Time: civil(t, loc), zone: loc}, nil
}

// civil reads the wall clock of t in loc.
func civil(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// truncate rounds t down to the start of the calendar unit containing it in
// t's location. Each boundary is resolved with time.Date, so the result
// carries the offset in effect at the boundary rather than at t.
func truncate(t time.Time, unit string, weekStart time.Weekday) (time.Time, error) {
	y, m, d := t.Date()
	loc := t.Location()

	switch strings.ToLower(unit) {
	case "day":
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil

	case "week":
		back := (int(t.Weekday()) - int(weekStart) + 7) % 7

		return time.Date(y, m, d-back, 0, 0, 0, 0, loc), nil

	case "month":
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), nil

	case "quarter":
		return time.Date(y, (m-1)/3*3+1, 1, 0, 0, 0, 0, loc), nil

	case "year":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), nil
	}

	return time.Time{}, ErrInvalidTimestamp.Wrap(
		fmt.Errorf("unknown unit %q (want day, week, month, quarter or year)", unit))
}

func parseInLocale(layout, value string, loc *time.Location, tag language.Tag) (time.Time, error) {
	if l, ok := mondayLocale(tag); ok {
		return monday.ParseInLocation(layout, value, loc, l)
	}

	return time.ParseInLocation(layout, value, loc)
}

var mondayLocales = map[string]monday.Locale{
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"cs":    monday.LocaleCsCZ,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"nn":    monday.LocaleNnNO,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"el":    monday.LocaleElGR,
	"ro":    monday.LocaleRoRO,
	"hu":    monday.LocaleHuHU,
	"bg":    monday.LocaleBgBG,
}

// mondayLocale maps tag to a translation table for month and day names.
// English needs none.
func mondayLocale(tag language.Tag) (monday.Locale, bool) {
	base, _ := tag.Base()
	region, _ := tag.Region()
	lang := strings.ToLower(base.String())

	if l, ok := mondayLocales[lang+"_"+strings.ToLower(region.String())]; ok {
		return l, true
	}

	l, ok := mondayLocales[lang]

	return l, ok
}

var (
	sundayFirst = regionSet(
		"AG AS BD BR BS BT BW BZ CA CN CO DM DO ET GT GU HK HN ID IL IN JM JP " +
			"KE KH KR LA MH MM MO MT MX MZ NI NP PA PE PH PK PR PT PY SA SG SV " +
			"TH TT TW UM US VE VI WS YE ZA ZW")
	saturdayFirst = regionSet("AE AF BH DJ DZ EG IQ IR JO KW LY OM QA SD SY")
)

func regionSet(codes string) map[string]bool {
	m := map[string]bool{}
	for _, c := range strings.Fields(codes) {
		m[c] = true
	}

	return m
}

// firstWeekday returns the first day of the week in the region of tag. A
// tag without a region uses the most likely region for its language.
func firstWeekday(tag language.Tag) time.Weekday {
	region, _ := tag.Region()

	switch r := region.String(); {
	case sundayFirst[r]:
		return time.Sunday
	case saturdayFirst[r]:
		return time.Saturday
	case r == "MV":
		return time.Friday
	default:
		return time.Monday
	}
}

// zoneAbbreviations maps common zone abbreviations to a representative
// location.
var zoneAbbreviations = map[string]string{
	"UTC": "UTC", "GMT": "UTC", "Z": "UTC",
	"PST": "America/Los_Angeles", "PDT": "America/Los_Angeles",
	"MST": "America/Denver", "MDT": "America/Denver",
	"CST": "America/Chicago", "CDT": "America/Chicago",
	"EST": "America/New_York", "EDT": "America/New_York",
	"AKST": "America/Anchorage", "AKDT": "America/Anchorage",
	"HST": "Pacific/Honolulu",
	"BST": "Europe/London",
	"WET": "Europe/Lisbon", "WEST": "Europe/Lisbon",
	"CET": "Europe/Paris", "CEST": "Europe/Paris",
	"EET": "Europe/Athens", "EEST": "Europe/Athens",
	"IST": "Asia/Kolkata",
	"SGT": "Asia/Singapore",
	"HKT": "Asia/Hong_Kong",
	"JST": "Asia/Tokyo",
	"KST": "Asia/Seoul",
	"AWST": "Australia/Perth",
	"ACST": "Australia/Adelaide", "ACDT": "Australia/Adelaide",
	"AEST": "Australia/Sydney", "AEDT": "Australia/Sydney",
	"NZST": "Pacific/Auckland", "NZDT": "Pacific/Auckland",
}

func zoneAbbreviation(abbr string) (*time.Location, bool) {
	name, ok := zoneAbbreviations[strings.ToUpper(abbr)]
	if !ok {
		return nil, false
	}

	loc, err := time.LoadLocation(name)

	return loc, err == nil
}

// layout is a Go time layout translated from a date-time pattern.
type layout struct {
	text     string
	offset   bool // value carries a numeric offset
	zoneName bool // value carries a zone abbreviation
}

// translatePattern converts a DateTimeFormatter-style pattern (letters such
// as yyyy, MM, dd, HH, mm, ss, SSS, a, EEE, zzz, XXX, with 'quoted' literal
// text) into a Go layout.
func translatePattern(pattern string) (layout, error) {
	var (
		out layout
		sb  strings.Builder
		src = []rune(pattern)
	)

	invalid := func(format string, args ...any) (layout, error) {
		return layout{}, ErrInvalidPattern.Wrap(fmt.Errorf(format, args...))
	}

	for i := 0; i < len(src); {
		r := src[i]

		if r == '\'' {
			i++

			if i < len(src) && src[i] == '\'' {
				sb.WriteRune('\'')
				i++

				continue
			}

			for {
				if i >= len(src) {
					return invalid("unterminated literal in %q", pattern)
				}

				if src[i] == '\'' {
					if i+1 < len(src) && src[i+1] == '\'' {
						sb.WriteRune('\'')
						i += 2

						continue
					}

					i++

					break
				}

				sb.WriteRune(src[i])
				i++
			}

			continue
		}

		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			sb.WriteRune(r)
			i++

			continue
		}

		n := 1
		for i+n < len(src) && src[i+n] == r {
			n++
		}

		i += n

		var chunk string

		switch r {
		case 'y', 'u':
			chunk = "2006"
			if n == 2 {
				chunk = "06"
			}
		case 'M', 'L':
			chunk = pick(n, "1", "01", "Jan", "January")
		case 'd':
			chunk = pick(n, "2", "02")
		case 'D':
			if n == 3 {
				chunk = "002"
			}
		case 'H':
			chunk = pick(n, "15", "15")
		case 'h':
			chunk = pick(n, "3", "03")
		case 'm':
			chunk = pick(n, "4", "04")
		case 's':
			chunk = pick(n, "5", "05")
		case 'S':
			if text := sb.String(); strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
				chunk = strings.Repeat("0", n)
			}
		case 'a':
			chunk = "PM"
		case 'E':
			chunk = pick(n, "Mon", "Mon", "Mon", "Monday")
		case 'z':
			chunk = pick(n, "MST", "MST", "MST")
			out.zoneName = chunk != ""
		case 'X':
			chunk = pick(n, "Z07", "Z0700", "Z07:00", "Z070000", "Z07:00:00")
			out.offset = chunk != ""
		case 'x':
			chunk = pick(n, "-07", "-0700", "-07:00", "-070000", "-07:00:00")
			out.offset = chunk != ""
		case 'Z':
			chunk = pick(n, "-0700", "-0700", "-0700", "", "Z07:00")
			out.offset = chunk != ""
		}

		if chunk == "" {
			return invalid("unsupported pattern field %q", strings.Repeat(string(r), n))
		}

		sb.WriteString(chunk)
	}

	out.text = sb.String()

	return out, nil
}

// pick returns the layout chunk for a field of width n, or "" when the
// width is unsupported.
func pick(n int, chunks ...string) string {
	if n <= len(chunks) {
		return chunks[n-1]
	}

	return ""
}
