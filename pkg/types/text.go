package types

import "strings"

// TextOrEmpty coerces a free-text cell to a string. Absent values (nil, NaN,
// the literal "nan"/"NaN" a dataframe writes for missing cells) and non-text
// values (numbers included) all become "". Strings are returned unchanged otherwise.
func TextOrEmpty(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		if strings.EqualFold(strings.TrimSpace(vv), "nan") {
			return ""
		}
		return vv
	case *string:
		if vv == nil {
			return ""
		}
		return TextOrEmpty(*vv)
	case []byte:
		return TextOrEmpty(string(vv))
	default:
		return ""
	}
}
