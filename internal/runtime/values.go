package runtime

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/maxkimambo/windmill/internal/params"
)

// Datetime is the value built by datetime(year, month, day, ...). Times are
// always UTC.
type Datetime struct {
	t time.Time
}

var _ starlark.Value = Datetime{}

func (d Datetime) Time() time.Time { return d.t }

func (d Datetime) String() string {
	s, _ := params.RenderValue(d.t)
	return s
}
func (d Datetime) Type() string          { return "datetime" }
func (d Datetime) Freeze()               {}
func (d Datetime) Truth() starlark.Bool  { return true }
func (d Datetime) Hash() (uint32, error) { return uint32(d.t.Unix()), nil }

// Duration is the value built by timedelta(...).
type Duration struct {
	d time.Duration
}

var _ starlark.Value = Duration{}

func (d Duration) Duration() time.Duration { return d.d }

func (d Duration) String() string {
	s, _ := params.RenderValue(d.d)
	return s
}
func (d Duration) Type() string          { return "timedelta" }
func (d Duration) Freeze()               {}
func (d Duration) Truth() starlark.Bool  { return d.d != 0 }
func (d Duration) Hash() (uint32, error) { return uint32(d.d), nil }

func datetimeBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var year, month, day, hour, minute, second, microsecond int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"year", &year, "month", &month, "day", &day,
		"hour?", &hour, "minute?", &minute, "second?", &second,
		"microsecond?", &microsecond); err != nil {
		return nil, err
	}
	if microsecond < 0 || microsecond > 999999 {
		return nil, fmt.Errorf("%s: microsecond %d out of range", b.Name(), microsecond)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, microsecond*1000, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return nil, fmt.Errorf("%s: %04d-%02d-%02d %02d:%02d:%02d is not a valid date",
			b.Name(), year, month, day, hour, minute, second)
	}
	return Datetime{t: t}, nil
}

func timedeltaBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var weeks, days, hours, minutes, seconds, microseconds int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"days?", &days, "seconds?", &seconds, "microseconds?", &microseconds,
		"minutes?", &minutes, "hours?", &hours, "weeks?", &weeks); err != nil {
		return nil, err
	}
	d := time.Duration(weeks)*7*24*time.Hour +
		time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(microseconds)*time.Microsecond
	return Duration{d: d}, nil
}

// toGo converts a keyword argument to the Go value of its declared type.
func toGo(t params.Type, v starlark.Value, src *source) (any, error) {
	switch t {
	case params.TypeString:
		if s, ok := v.(starlark.String); ok {
			return string(s), nil
		}
	case params.TypeInt:
		if i, ok := v.(starlark.Int); ok {
			n, ok := i.Int64()
			if !ok {
				return nil, fmt.Errorf("%s is out of range", i)
			}
			return n, nil
		}
	case params.TypeFloat:
		switch x := v.(type) {
		case starlark.Float:
			return float64(x), nil
		case starlark.Int:
			return float64(x.Float()), nil
		}
	case params.TypeBool:
		if b, ok := v.(starlark.Bool); ok {
			return bool(b), nil
		}
	case params.TypeDuration:
		if d, ok := v.(Duration); ok {
			return d.d, nil
		}
	case params.TypeDatetime:
		if d, ok := v.(Datetime); ok {
			return d.t, nil
		}
	case params.TypeDict:
		if _, ok := v.(*starlark.Dict); ok {
			return plainGo(v)
		}
	case params.TypeList:
		switch v.(type) {
		case *starlark.List, starlark.Tuple:
			return plainGo(v)
		}
	case params.TypeCallable:
		if fn, ok := v.(*starlark.Function); ok {
			body, err := src.functionBody(fn)
			if err != nil {
				return nil, err
			}
			return params.Callable{Body: body}, nil
		}
	}
	return nil, fmt.Errorf("want %s, got %s", t, v.Type())
}

// plainGo converts container contents.
func plainGo(v starlark.Value) (any, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(x), nil
	case starlark.Int:
		n, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("%s is out of range", x)
		}
		return n, nil
	case starlark.Float:
		return float64(x), nil
	case starlark.String:
		return string(x), nil
	case Datetime:
		return x.t, nil
	case Duration:
		return x.d, nil
	case *starlark.List:
		out := make([]any, x.Len())
		for i := 0; i < x.Len(); i++ {
			e, err := plainGo(x.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case starlark.Tuple:
		out := make([]any, len(x))
		for i, item := range x {
			e, err := plainGo(item)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, x.Len())
		for _, item := range x.Items() {
			k, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings, got %s", item[0].Type())
			}
			e, err := plainGo(item[1])
			if err != nil {
				return nil, err
			}
			out[string(k)] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", v.Type())
}
