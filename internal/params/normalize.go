package params

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// DatetimeLayout is the canonical text form of datetime values.
const DatetimeLayout = "2006-01-02T15:04:05.999999"

var datetimeLayouts = []string{
	time.RFC3339,
	DatetimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
}

// Normalize coerces a wire value into the Go value for t. Nil and empty
// strings mean "no value" and normalise to nil.
func Normalize(t Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}

	switch t {
	case TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
		return fmt.Sprint(v), nil
	case TypeBool:
		return toBool(v)
	case TypeInt:
		return toInt(v)
	case TypeFloat:
		return toFloat(v)
	case TypeDuration:
		return toDuration(v)
	case TypeDatetime:
		return toDatetime(v)
	case TypeDict:
		return toDict(v)
	case TypeList:
		return toList(v)
	case TypeCallable:
		return toCallable(v)
	}
	return nil, fmt.Errorf("unknown parameter type %q", t)
}

// Equal compares two normalised values.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// FormatValue converts a normalised value back to its wire form.
func FormatValue(t Type, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Duration:
		return str2duration.String(x)
	case time.Time:
		return x.UTC().Format(DatetimeLayout)
	case Callable:
		return x.Body
	case map[string]any, []any:
		return formatJSON(x)
	}
	return v
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", x)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%v (%T) is not a boolean", v, v)
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("%s is not an integer", x)
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%v (%T) is not an integer", v, v)
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%v (%T) is not a number", v, v)
}

// toDuration accepts "1d2h30m" style strings or a number of seconds.
func toDuration(v any) (any, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := str2duration.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%q is not a duration: %w", x, err)
		}
		return d, nil
	}
	secs, err := toFloat(v)
	if err != nil {
		return nil, fmt.Errorf("%v (%T) is not a duration", v, v)
	}
	return time.Duration(secs.(float64) * float64(time.Second)), nil
}

func toDatetime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Truncate(time.Microsecond), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Truncate(time.Microsecond), nil
			}
		}
		return nil, fmt.Errorf("%q is not a datetime", x)
	}
	return nil, fmt.Errorf("%v (%T) is not a datetime", v, v)
}

func toDict(v any) (any, error) {
	if s, ok := v.(string); ok {
		decoded, err := decodeJSON(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a JSON object: %w", s, err)
		}
		v = decoded
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%v (%T) is not a mapping", v, v)
	}
	return normalizeJSON(m), nil
}

func toList(v any) (any, error) {
	if s, ok := v.(string); ok {
		decoded, err := decodeJSON(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a JSON array: %w", s, err)
		}
		v = decoded
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%v (%T) is not a list", v, v)
	}
	return normalizeJSON(l), nil
}

func toCallable(v any) (any, error) {
	switch x := v.(type) {
	case Callable:
		return Callable{Body: Dedent(x.Body)}, nil
	case string:
		body := Dedent(x)
		if body == "" {
			return nil, nil
		}
		return Callable{Body: body}, nil
	}
	return nil, fmt.Errorf("%v (%T) is not a function body", v, v)
}

// decodeJSON keeps numbers as json.Number so that 2 and 2.0 stay apart.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// normalizeJSON converts numbers inside containers to int64 or float64.
// A JSON number is an integer only when written without a fraction or
// exponent.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalizeJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeJSON(e)
		}
		return out
	case float32:
		return float64(x)
	case int:
		return int64(x)
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			if n, err := x.Int64(); err == nil {
				return n
			}
		}
		f, _ := x.Float64()
		return f
	}
	return v
}

// formatJSON writes integral floats inside containers with a fraction so the
// document keeps them apart from integers.
func formatJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = formatJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = formatJSON(e)
		}
		return out
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return x
		}
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return json.Number(s)
	}
	return v
}

// Dedent strips trailing blank space and the indentation common to all
// non-blank lines.
func Dedent(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "    "), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
