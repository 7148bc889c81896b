package mustache

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// BoxValue wraps any Go value in a Box.
//
// Supported values:
//   - nil gives the empty box
//   - *Box is returned as is, Boxable values provide their own box
//   - bool, integers and floats are scalars, falsy when zero
//   - strings are falsy when empty and expose "length"
//   - slices and arrays are collections exposing "first", "last" and "count"
//   - maps are dictionaries, truthy even when empty. Keys that are not
//     strings are matched by their fmt representation
//   - structs expose their exported fields, or only their safe keys when
//     they implement SafeKeyed
//   - FilterFunc, RenderFunc, WillRenderFunc, DidRenderFunc and
//     KeyedSubscriptFunc, or functions with their signatures
//
// Other values give the empty box.
func BoxValue(value any) *Box {
	switch v := value.(type) {
	case nil:
		return EmptyBox()
	case *Box:
		if v == nil {
			return EmptyBox()
		}
		return v
	case Boxable:
		if isNilPointer(v) {
			return EmptyBox()
		}
		return BoxValue(v.MustacheBox())
	case bool:
		s := "0"
		if v {
			s = "1"
		}
		return scalarBox(v, v, s)
	case int:
		return scalarBox(v, v != 0, strconv.FormatInt(int64(v), 10))
	case int8:
		return scalarBox(v, v != 0, strconv.FormatInt(int64(v), 10))
	case int16:
		return scalarBox(v, v != 0, strconv.FormatInt(int64(v), 10))
	case int32:
		return scalarBox(v, v != 0, strconv.FormatInt(int64(v), 10))
	case int64:
		return scalarBox(v, v != 0, strconv.FormatInt(v, 10))
	case uint:
		return scalarBox(v, v != 0, strconv.FormatUint(uint64(v), 10))
	case uint8:
		return scalarBox(v, v != 0, strconv.FormatUint(uint64(v), 10))
	case uint16:
		return scalarBox(v, v != 0, strconv.FormatUint(uint64(v), 10))
	case uint32:
		return scalarBox(v, v != 0, strconv.FormatUint(uint64(v), 10))
	case uint64:
		return scalarBox(v, v != 0, strconv.FormatUint(v, 10))
	case float32:
		return scalarBox(v, v != 0, strconv.FormatFloat(float64(v), 'f', -1, 32))
	case float64:
		return scalarBox(v, v != 0, strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		return stringBox(v)
	case []byte:
		return stringBox(string(v))
	case []*Box:
		return collectionBox(v, v)
	case []any:
		items := make([]*Box, len(v))
		for i, item := range v {
			items[i] = BoxValue(item)
		}
		return collectionBox(v, items)
	case map[string]*Box:
		return dictionaryBox(v, func(key string) (*Box, bool) {
			b, ok := v[key]
			return b, ok
		}, func() map[string]*Box { return v })
	case map[string]any:
		return dictionaryBox(v, func(key string) (*Box, bool) {
			item, ok := v[key]
			return BoxValue(item), ok
		}, func() map[string]*Box {
			out := make(map[string]*Box, len(v))
			for k, item := range v {
				out[k] = BoxValue(item)
			}
			return out
		})
	case FilterFunc:
		return NewBox(WithFilter(v))
	case func(*Box, bool) (any, error):
		return NewBox(WithFilter(v))
	case RenderFunc:
		return NewBox(WithRender(v))
	case func(RenderingInfo) (Rendering, error):
		return NewBox(WithRender(v))
	case WillRenderFunc:
		return NewBox(WithWillRender(v))
	case func(*Tag, *Box) any:
		return NewBox(WithWillRender(v))
	case DidRenderFunc:
		return NewBox(WithDidRender(v))
	case func(*Tag, *Box, *string):
		return NewBox(WithDidRender(v))
	case KeyedSubscriptFunc:
		return NewBox(WithKeyedSubscript(v))
	case func(string) any:
		return NewBox(WithKeyedSubscript(v))
	}
	return reflectBox(reflect.ValueOf(value))
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// scalarBox boxes booleans and numbers. As section values they are plain
// conditions and do not enter the context stack, unless they are items of
// a collection being iterated.
func scalarBox(value any, truthy bool, text string) *Box {
	var b *Box
	b = NewBox(
		WithValue(value),
		WithBoolValue(truthy),
		WithRender(func(info RenderingInfo) (Rendering, error) {
			switch {
			case info.Tag.Type == VariableTag:
				return NewRendering(text), nil
			case info.EnumerationItem:
				return info.Tag.Render(info.Context.Extend(b))
			default:
				return info.Tag.Render(info.Context)
			}
		}),
	)
	return b
}

func stringBox(s string) *Box {
	return NewBox(
		WithValue(s),
		WithBoolValue(s != ""),
		WithKeyedSubscript(func(key string) any {
			if key == "length" {
				return utf8.RuneCountInString(s)
			}
			return nil
		}),
	)
}

// collectionBox boxes a list. As a section or variable value it renders
// once per item; as an item of another collection it enters the context
// stack like any other value.
func collectionBox(value any, items []*Box) *Box {
	var b *Box
	b = NewBox(
		WithValue(value),
		WithBoolValue(len(items) > 0),
		WithArrayValue(func() []*Box { return items }),
		WithKeyedSubscript(func(key string) any {
			switch key {
			case "first":
				if len(items) > 0 {
					return items[0]
				}
			case "last":
				if len(items) > 0 {
					return items[len(items)-1]
				}
			case "count":
				return len(items)
			}
			return nil
		}),
		WithRender(func(info RenderingInfo) (Rendering, error) {
			if info.EnumerationItem {
				return info.Tag.Render(info.Context.Extend(b))
			}
			return renderItems(items, info)
		}),
	)
	return b
}

// renderItems concatenates the renderings of items. All items must agree
// on the content type.
func renderItems(items []*Box, info RenderingInfo) (Rendering, error) {
	if len(items) == 0 {
		// Only variable tags get here: empty collections are falsy.
		return info.Tag.Render(info.Context)
	}

	info.EnumerationItem = true
	var buf strings.Builder
	var contentType ContentType
	for i, item := range items {
		rendering, err := item.Render(info)
		if err != nil {
			return Rendering{}, err
		}
		if i == 0 {
			contentType = rendering.ContentType
		} else if rendering.ContentType != contentType {
			return Rendering{}, newRenderError("Content type mismatch")
		}
		buf.WriteString(rendering.String)
	}
	return Rendering{String: buf.String(), ContentType: contentType}, nil
}

func dictionaryBox(value any, lookup func(string) (*Box, bool), entries func() map[string]*Box) *Box {
	return NewBox(
		WithValue(value),
		WithKeyedSubscript(func(key string) any {
			if b, ok := lookup(key); ok {
				return b
			}
			return nil
		}),
		WithDictionaryValue(entries),
	)
}

// reflectBox handles named types, pointers, and containers of concrete
// element types.
func reflectBox(rv reflect.Value) *Box {
	if !rv.IsValid() {
		return EmptyBox()
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return EmptyBox()
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
			return structBox(rv.Interface(), rv.Elem())
		}
		return BoxValue(rv.Elem().Interface())
	case reflect.Bool:
		return BoxValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return BoxValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return BoxValue(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return BoxValue(rv.Float())
	case reflect.String:
		return stringBox(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return collectionBox(rv.Interface(), nil)
		}
		items := make([]*Box, rv.Len())
		for i := range items {
			items[i] = BoxValue(rv.Index(i).Interface())
		}
		return collectionBox(rv.Interface(), items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return formattedKeyMapBox(rv)
		}
		return dictionaryBox(rv.Interface(), func(key string) (*Box, bool) {
			item := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !item.IsValid() {
				return nil, false
			}
			return BoxValue(item.Interface()), true
		}, func() map[string]*Box {
			out := make(map[string]*Box, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = BoxValue(iter.Value().Interface())
			}
			return out
		})
	case reflect.Struct:
		return structBox(rv.Interface(), rv)
	}

	slog.Debug("value cannot be rendered, using empty box", "type", rv.Type().String())
	return EmptyBox()
}

// structBox exposes exported fields of a struct. SafeKeyed values expose
// their allow-listed keys only.
func structBox(value any, rv reflect.Value) *Box {
	if safe, ok := value.(SafeKeyed); ok {
		return safeKeyedBox(value, safe)
	}
	fields := structFieldsOf(rv.Type())
	return NewBox(
		WithValue(value),
		WithKeyedSubscript(func(key string) any {
			index, ok := fields.lookup(key)
			if !ok {
				return nil
			}
			field, err := rv.FieldByIndexErr(index)
			if err != nil {
				// Nil embedded pointer.
				return nil
			}
			return field.Interface()
		}),
	)
}

// structFields maps template keys to field indexes of one struct type.
type structFields struct {
	byName map[string][]int
	names  []string
}

func (f *structFields) lookup(key string) ([]int, bool) {
	if index, ok := f.byName[key]; ok {
		return index, true
	}
	for _, name := range f.names {
		if strings.EqualFold(name, key) {
			return f.byName[name], true
		}
	}
	return nil, false
}

var structFieldCache sync.Map // map[reflect.Type]*structFields

func structFieldsOf(t reflect.Type) *structFields {
	if cached, ok := structFieldCache.Load(t); ok {
		return cached.(*structFields)
	}

	fields := &structFields{byName: make(map[string][]int)}
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() || field.Anonymous && field.Type.Kind() == reflect.Struct {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("mustache"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if _, dup := fields.byName[name]; dup {
			continue
		}
		fields.byName[name] = field.Index
		fields.names = append(fields.names, name)
	}

	actual, _ := structFieldCache.LoadOrStore(t, fields)
	return actual.(*structFields)
}

// formattedKeyMapBox boxes a map whose keys are not strings, such as the
// map[any]any maps decoded from YAML. Keys are matched by their fmt
// representation.
func formattedKeyMapBox(rv reflect.Value) *Box {
	return dictionaryBox(rv.Interface(), func(key string) (*Box, bool) {
		iter := rv.MapRange()
		for iter.Next() {
			if fmt.Sprint(iter.Key().Interface()) == key {
				return BoxValue(iter.Value().Interface()), true
			}
		}
		return nil, false
	}, func() map[string]*Box {
		out := make(map[string]*Box, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = BoxValue(iter.Value().Interface())
		}
		return out
	})
}
