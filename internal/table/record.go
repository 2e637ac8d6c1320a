// Package table turns a KV store JSON response into CSV rows.
//
// A response is a JSON array of flat objects. The column set is derived from the
// records (by default from the first record only) and every record is projected onto it.
package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedBody is returned when a response body is not a JSON array of objects.
	ErrMalformedBody = errors.New("malformed response body")
	// ErrUnexpectedField is returned in strict mode when a record has a field outside of the columns.
	ErrUnexpectedField = errors.New("unexpected field")
)

// ReservedKeys are bookkeeping fields of the KV store that are never exported.
var ReservedKeys = []string{"_user", "_key"}

func isReserved(key string) bool {
	for _, k := range ReservedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Record is a single KV store document with its keys in the order they appeared in the response.
type Record struct {
	keys   []string
	values map[string]gjson.Result
}

func newRecord(obj gjson.Result) Record {
	r := Record{values: map[string]gjson.Result{}}
	obj.ForEach(func(key, value gjson.Result) bool {
		// duplicate keys keep their first position and their last value
		if _, exists := r.values[key.Str]; !exists {
			r.keys = append(r.keys, key.Str)
		}
		r.values[key.Str] = value
		return true
	})
	return r
}

// Keys returns the field names of the record in response order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Record) Get(key string) (gjson.Result, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Parse decodes a response body into records.
func Parse(body []byte) ([]Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: not valid json", ErrMalformedBody)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array, got %s", ErrMalformedBody, describe(root))
	}

	var (
		records []Record
		err     error
	)
	root.ForEach(func(_, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: record %d is %s, not an object", ErrMalformedBody, len(records), describe(value))
			return false
		}
		records = append(records, newRecord(value))
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func describe(value gjson.Result) string {
	switch {
	case value.IsArray():
		return "an array"
	case value.IsObject():
		return "an object"
	}
	return fmt.Sprintf("a %s", strings.ToLower(value.Type.String()))
}
