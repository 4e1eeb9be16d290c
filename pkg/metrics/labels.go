package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Labels is a raw label set as supplied by callers.
//
// Values may be strings, numbers, fmt.Stringer or nil. A nil value marks the
// label as absent and renders as the empty string.
type Labels map[string]any

// Sanitizer rewrites a label set before it is recorded. Implementations must
// not mutate their input.
type Sanitizer func(Labels) Labels

// PassThrough is the identity sanitizer installed on every new handle
func PassThrough(labels Labels) Labels {
	return labels
}

// Clone returns a shallow copy of the label set
func (l Labels) Clone() Labels {
	out := make(Labels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Merge returns a copy of l overlaid with every set in extra, later sets winning
func (l Labels) Merge(extra ...Labels) Labels {
	out := l.Clone()
	for _, set := range extra {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// Resolve renders the label set against a declared list of label names.
// Keys that are not declared are dropped, declared keys that are missing
// render as the empty string.
func (l Labels) Resolve(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = FormatLabelValue(l[name])
	}
	return out
}

// FormatLabelValue renders a single label value as text
func FormatLabelValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64, bitSize int) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// toNumber reports whether v coerces to a finite number
func toNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case float32:
		f = float64(val)
	case float64:
		f = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SanitizeRequestLabels normalizes request-tracking labels.
//
// An errorType of nil is dropped, and a statusCode that does not coerce to a
// finite number is dropped. Surviving values, including statusCode, keep
// their original form. The input is left untouched.
func SanitizeRequestLabels(raw Labels) Labels {
	out := make(Labels, len(raw))
	for k, v := range raw {
		switch k {
		case LabelErrorType:
			if v == nil {
				continue
			}
		case LabelStatusCode:
			if _, ok := toNumber(v); !ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}
