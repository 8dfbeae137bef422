package mail

import (
	"errors"
	"fmt"

	"github.com/kilianp07/svckit/core/adapter"
)

// ErrBadArgument is returned when a positional argument has the wrong type.
var ErrBadArgument = errors.New("mail: bad argument")

// args gives typed access to positional arguments. Missing and nil
// arguments read as empty.
type args []any

func (a args) at(i int) any {
	if i < len(a) {
		return a[i]
	}
	return nil
}

func (a args) present(i int) bool {
	return !adapter.IsEmpty(a.at(i))
}

func (a args) str(i int) (string, error) {
	switch v := a.at(i).(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%w: argument %d: want string, got %T", ErrBadArgument, i, v)
	}
}

func (a args) int(i int) (int, error) {
	v := a.at(i)
	if v == nil {
		return 0, nil
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case string:
		if t == "" {
			return 0, nil
		}
	}
	n := adapter.ToInt(v)
	if n == 0 && fmt.Sprint(v) != "0" {
		return 0, fmt.Errorf("%w: argument %d: want integer, got %v", ErrBadArgument, i, v)
	}
	return n, nil
}

func (a args) bytes(i int) ([]byte, error) {
	switch v := a.at(i).(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%w: argument %d: want bytes, got %T", ErrBadArgument, i, v)
	}
}

// strs accepts a single string, a []string or a []any of strings.
func (a args) strs(i int) ([]string, error) {
	return toStrings(a.at(i))
}

func toStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: want string list element, got %T", ErrBadArgument, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: want string list, got %T", ErrBadArgument, v)
	}
}
