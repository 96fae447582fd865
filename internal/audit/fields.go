package audit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Fields is a loosely typed view of an entity's persisted columns.
type Fields map[string]interface{}

// Clone returns a shallow copy so later mutations of the source map are not observed.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String renders a single field for comparison and descriptions.
func (f Fields) String(key string) string {
	return stringify(f[key])
}

func absent(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case *string:
		return v == nil
	case *uint:
		return v == nil
	case *int:
		return v == nil
	case *int64:
		return v == nil
	case *time.Time:
		return v == nil
	case *decimal.Decimal:
		return v == nil
	}
	return false
}

// stringify renders nil as the empty string and dereferences pointers.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case bool:
		return strconv.FormatBool(v)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case *uint:
		if v == nil {
			return ""
		}
		return strconv.FormatUint(uint64(*v), 10)
	case int:
		return strconv.Itoa(v)
	case *int:
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	case int64:
		return strconv.FormatInt(v, 10)
	case *int64:
		if v == nil {
			return ""
		}
		return strconv.FormatInt(*v, 10)
	case decimal.Decimal:
		return v.String()
	case *decimal.Decimal:
		if v == nil {
			return ""
		}
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
