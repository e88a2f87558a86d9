package evaluator

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var datetimeBuiltins = map[string]BuiltinFunction{
	"parse_date": builtinParseDate,
}

var timeIndicator = regexp.MustCompile(`\d{1,2}:\d{2}|\b(am|pm)\b`)

// builtinParseDate parses a free-form date, parse_date(text) or
// parse_date(text, timezone), into a dict of its parts. Numeric dates are
// read month first.
func builtinParseDate(env *Environment, args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return arityError("parse_date", "1 or 2", len(args))
	}
	input, ok := args[0].(*String)
	if !ok {
		return argError("parse_date", "a string", args[0])
	}

	loc := time.UTC
	if len(args) == 2 {
		tz, ok := args[1].(*String)
		if !ok {
			return argError("parse_date", "a timezone name", args[1])
		}
		l, err := time.LoadLocation(tz.Value)
		if err != nil {
			return newError("FORMAT-0001", map[string]any{"Input": tz.Value})
		}
		loc = l
	}

	text := strings.TrimSpace(input.Value)
	t, err := dateparse.ParseIn(text, loc, dateparse.PreferMonthFirst(true))
	if err != nil {
		return newError("FORMAT-0001", map[string]any{"Input": input.Value})
	}

	kind := "datetime"
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && !timeIndicator.MatchString(strings.ToLower(text)) {
		kind = "date"
	}
	return dateDict(t, kind)
}

func dateDict(t time.Time, kind string) *Dict {
	d := NewDict()
	set := func(key string, val Object) { d.Set(&String{Value: key}, val) }
	set("kind", &String{Value: kind})
	set("iso", &String{Value: t.Format(time.RFC3339)})
	set("unix", &Integer{Value: t.Unix()})
	set("year", &Integer{Value: int64(t.Year())})
	set("month", &Integer{Value: int64(t.Month())})
	set("day", &Integer{Value: int64(t.Day())})
	set("hour", &Integer{Value: int64(t.Hour())})
	set("minute", &Integer{Value: int64(t.Minute())})
	set("second", &Integer{Value: int64(t.Second())})
	set("weekday", &String{Value: t.Weekday().String()})
	return d
}
