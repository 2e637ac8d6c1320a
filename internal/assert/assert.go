// Package assert panics on arguments that can only be wrong because of a programming error.
package assert

import "reflect"

// NotNil panics on nil, including a nil pointer, map, slice, func or chan stored in an interface.
func NotNil(value any) {
	if isNil(value) {
		panic("expected value to be not nil")
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
