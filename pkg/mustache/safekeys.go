package mustache

import (
	"reflect"
	"slices"
)

// SafeKeyed is implemented by values that restrict what templates can see.
//
// Only the listed keys resolve. Each key names an exported field or an
// exported method taking no argument and returning one value.
type SafeKeyed interface {
	MustacheSafeKeys() []string
}

func safeKeyedBox(value any, safe SafeKeyed) *Box {
	allowed := safe.MustacheSafeKeys()
	rv := reflect.ValueOf(value)
	return NewBox(
		WithValue(value),
		WithKeyedSubscript(func(key string) any {
			if !slices.Contains(allowed, key) {
				return nil
			}
			return safeKeyValue(rv, key)
		}),
	)
}

func safeKeyValue(rv reflect.Value, key string) any {
	if m := rv.MethodByName(key); m.IsValid() {
		if m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
			return m.Call(nil)[0].Interface()
		}
		return nil
	}

	sv := rv
	for sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return nil
		}
		sv = sv.Elem()
	}
	if sv.Kind() != reflect.Struct {
		return nil
	}
	field, ok := sv.Type().FieldByName(key)
	if !ok || !field.IsExported() {
		return nil
	}
	fv, err := sv.FieldByIndexErr(field.Index)
	if err != nil {
		return nil
	}
	return fv.Interface()
}
