package docstore

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// SortDocuments orders docs in place by order.Field. Documents missing the
// field sort first in ascending order. Ties keep their existing order.
func SortDocuments(docs []Document, order OrderSpec) {
	if order.Field == "" {
		return
	}
	slices.SortStableFunc(docs, func(a, b Document) int {
		c := compareValues(a.Fields[order.Field], b.Fields[order.Field])
		if order.Desc {
			return -c
		}
		return c
	})
}

// value classes in store order
const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if _, ok := toNumber(v); ok {
		return rankNumber
	}
	return rankOther
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case time.Time:
		return float64(n.UnixMilli()), true
	}
	return 0, false
}

func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		an, _ := toNumber(a)
		bn, _ := toNumber(b)
		return cmp.Compare(an, bn)
	case rankString:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}
