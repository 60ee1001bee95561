package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// FromJSON decodes a JSON document into a table. key is an optional dotted path
// (e.g. 'data.items') to the array of row objects inside the document. A lone object
// is treated as a single row.
func FromJSON(data []byte, key string) (*Table, error) {
	var p fastjson.Parser

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON (%w)", err)
	}

	if key = strings.TrimSpace(key); key != "" {
		if v = v.Get(strings.Split(key, ".")...); v == nil {
			return nil, fmt.Errorf("no data at key '%s'", key)
		}
	}

	records := []Record{}

	switch v.Type() {
	case fastjson.TypeArray:
		items, _ := v.Array()
		for i, item := range items {
			object, err := item.Object()
			if err != nil {
				return nil, fmt.Errorf("row %d is not a JSON object", i+1)
			}

			records = append(records, record(object))
		}

	case fastjson.TypeObject:
		object, _ := v.Object()
		records = append(records, record(object))

	default:
		return nil, fmt.Errorf("expected a JSON array of objects, got %v", v.Type())
	}

	return FromRecords(records), nil
}

func record(object *fastjson.Object) Record {
	r := Record{}

	object.Visit(func(k []byte, v *fastjson.Value) {
		r = append(r, Field{
			Key:   string(k),
			Value: value(v),
		})
	})

	return r
}

func value(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil

	case fastjson.TypeString:
		return string(v.GetStringBytes())

	case fastjson.TypeNumber:
		if raw := v.String(); !exact(raw) {
			return raw
		}
		return v.GetFloat64()

	case fastjson.TypeTrue:
		return true

	case fastjson.TypeFalse:
		return false

	default:
		return v.String()
	}
}

// exact returns false for integer literals that cannot be held exactly in a float64,
// i.e. beyond +/- 2^53. Such numbers are kept as text.
func exact(raw string) bool {
	if strings.ContainsAny(raw, ".eE") {
		return true
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}

	return n >= -maxExactInt && n <= maxExactInt
}

const maxExactInt = 1 << 53
