package query

import (
	"encoding/json"
	"log"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DirectivePrefix marks a filter key as query metadata rather than a column filter
const DirectivePrefix = '_'

// recognized directives
const (
	DirectiveLimit  = "_limit"
	DirectiveOffset = "_offset"
)

// Split is the result of separating directives from plain filters
type Split struct {
	Plain  Filters  // non-directive filters, in original order
	Keys   []string // keys of Plain, positional, used by insert
	Values []any    // values of Plain, positional, used by insert
	Extra  string   // extension text followed by directive clauses
}

// SplitFilters separates directive keys from plain equality filters. Recognized directives with numeric
// values are turned into sql clauses and appended to the extension in the order encountered.
// Unknown directives and recognized directives with non-numeric values are dropped without error.
func SplitFilters(filters Filters, extension string) Split {
	res := Split{Extra: extension, Plain: Filters{}, Keys: []string{}, Values: []any{}}
	for _, fld := range filters {
		if fld.Key == "" || fld.Key[0] != DirectivePrefix {
			res.Plain = append(res.Plain, fld)
			res.Keys = append(res.Keys, fld.Key)
			res.Values = append(res.Values, fld.Value)
			continue
		}

		num, ok := numeric(fld.Value)
		switch {
		case fld.Key == DirectiveLimit && ok:
			res.Extra += " LIMIT " + num
		case fld.Key == DirectiveOffset && ok:
			res.Extra += " OFFSET " + num
		default:
			log.Printf("[DEBUG] directive %s=%v dropped", fld.Key, fld.Value)
		}
	}
	return res
}

// numeric returns the textual form of v if v is a finite number or a string holding one
func numeric(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" || strings.Trim(val, "0123456789.+-eE") != "" {
			return "", false // no hex, no underscores, no inf/nan, no whitespace
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return "", false
		}
		return val, true
	case json.Number:
		return numeric(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}
