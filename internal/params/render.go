package params

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.starlark.net/starlark"
)

// Render returns the program literal for a parameter value. Callables have no
// literal form; the compiler references a generated function instead.
func Render(p *Parameter) (string, error) {
	if p.Type == TypeCallable {
		return "", fmt.Errorf("parameter '%s' is a callable and has no literal form", p.ID)
	}
	lit, err := RenderValue(p.Value)
	if err != nil {
		return "", fmt.Errorf("parameter '%s': %w", p.ID, err)
	}
	return lit, nil
}

// RenderValue renders a normalised value as a literal.
func RenderValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case string:
		return starlark.String(x).String(), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return renderFloat(x)
	case time.Time:
		return renderDatetime(x), nil
	case time.Duration:
		return renderDuration(x), nil
	case map[string]any:
		return renderDict(x)
	case []any:
		return renderList(x)
	case Callable:
		return "", fmt.Errorf("callables have no literal form")
	}
	return "", fmt.Errorf("cannot render %v (%T)", v, v)
}

func renderFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("cannot render non-finite float %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

func renderDatetime(t time.Time) string {
	t = t.UTC()
	usec := t.Nanosecond() / 1000
	switch {
	case usec != 0:
		return fmt.Sprintf("datetime(%d, %d, %d, %d, %d, %d, %d)",
			t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), usec)
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return fmt.Sprintf("datetime(%d, %d, %d)", t.Year(), int(t.Month()), t.Day())
	}
	return fmt.Sprintf("datetime(%d, %d, %d, %d, %d, %d)",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

func renderDuration(d time.Duration) string {
	if d < 0 {
		return fmt.Sprintf("timedelta(microseconds=%d)", d.Microseconds())
	}
	day := 24 * time.Hour
	parts := []struct {
		name string
		unit time.Duration
	}{
		{"days", day},
		{"hours", time.Hour},
		{"minutes", time.Minute},
		{"seconds", time.Second},
		{"microseconds", time.Microsecond},
	}

	var args []string
	for _, part := range parts {
		n := d / part.unit
		if n > 0 {
			args = append(args, fmt.Sprintf("%s=%d", part.name, n))
			d -= n * part.unit
		}
	}
	return "timedelta(" + strings.Join(args, ", ") + ")"
}

func renderDict(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := RenderValue(m[k])
		if err != nil {
			return "", err
		}
		items = append(items, starlark.String(k).String()+": "+v)
	}
	return "{" + strings.Join(items, ", ") + "}", nil
}

func renderList(l []any) (string, error) {
	items := make([]string, 0, len(l))
	for _, e := range l {
		v, err := RenderValue(e)
		if err != nil {
			return "", err
		}
		items = append(items, v)
	}
	return "[" + strings.Join(items, ", ") + "]", nil
}
