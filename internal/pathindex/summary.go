package pathindex

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

// MaxSummaryRunes caps the quoted portion of a string summary.
const MaxSummaryRunes = 50

// Summarize renders the one-line display value of a node.
// An empty array renders as "[0]" while an empty object renders as "Object{0}".
func Summarize(v any) string {
	switch t := v.(type) {
	case *tree.Object:
		return fmt.Sprintf("Object{%d}", t.Len())
	case []any:
		if len(t) == 0 {
			return "[0]"
		}
		return fmt.Sprintf("Array[%d]", len(t))
	default:
		return formatScalar(v)
	}
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		r := []rune(t)
		if len(r) > MaxSummaryRunes {
			return `"` + string(r[:MaxSummaryRunes]) + `..."`
		}
		return `"` + t + `"`
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case time.Time:
		return `"` + t.Format(time.RFC3339Nano) + `"`
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
