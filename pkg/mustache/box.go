package mustache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyedSubscriptFunc resolves identifiers such as `name` in {{name}} or
// {{user.name}}. It returns nil when the key is unknown.
type KeyedSubscriptFunc func(key string) any

// FilterFunc is applied by {{f(x)}} expressions. partialApplication is true
// when more arguments follow, as for `x` in {{f(x, y)}}.
type FilterFunc func(box *Box, partialApplication bool) (any, error)

// RenderFunc renders a tag in place of the default rendering.
type RenderFunc func(info RenderingInfo) (Rendering, error)

// WillRenderFunc is called before a tag renders, with the value of the tag.
// The returned value replaces it.
type WillRenderFunc func(tag *Tag, box *Box) any

// DidRenderFunc is called after a tag has rendered. rendered is nil when
// rendering failed.
type DidRenderFunc func(tag *Tag, box *Box, rendered *string)

// Boxable is implemented by types that choose how they appear in templates.
type Boxable interface {
	MustacheBox() *Box
}

// Box wraps any value that templates can render, look keys up in, iterate,
// or apply as a filter.
//
// Boxes are immutable once built.
type Box struct {
	value      any
	boolValue  bool
	hasBool    bool
	empty      bool
	keyed      KeyedSubscriptFunc
	filter     FilterFunc
	render     RenderFunc
	willRender WillRenderFunc
	didRender  DidRenderFunc

	arrayValue      func() []*Box
	dictionaryValue func() map[string]*Box
}

// BoxOption configures a Box built with NewBox.
type BoxOption func(*Box)

// WithValue sets the raw value of the box, rendered by {{variable}} tags.
func WithValue(value any) BoxOption {
	return func(b *Box) { b.value = value }
}

// WithBoolValue sets the truthiness of the box for sections.
func WithBoolValue(v bool) BoxOption {
	return func(b *Box) {
		b.boolValue = v
		b.hasBool = true
	}
}

// WithKeyedSubscript sets the key lookup function.
func WithKeyedSubscript(fn KeyedSubscriptFunc) BoxOption {
	return func(b *Box) { b.keyed = fn }
}

// WithFilter makes the box usable as a filter.
func WithFilter(fn FilterFunc) BoxOption {
	return func(b *Box) { b.filter = fn }
}

// WithRender sets a custom render function.
func WithRender(fn RenderFunc) BoxOption {
	return func(b *Box) { b.render = fn }
}

// WithWillRender sets a hook called before tags render in the box's scope.
func WithWillRender(fn WillRenderFunc) BoxOption {
	return func(b *Box) { b.willRender = fn }
}

// WithDidRender sets a hook called after tags render in the box's scope.
func WithDidRender(fn DidRenderFunc) BoxOption {
	return func(b *Box) { b.didRender = fn }
}

// WithArrayValue exposes the box as a list of items.
func WithArrayValue(fn func() []*Box) BoxOption {
	return func(b *Box) { b.arrayValue = fn }
}

// WithDictionaryValue exposes the box as a dictionary.
func WithDictionaryValue(fn func() map[string]*Box) BoxOption {
	return func(b *Box) { b.dictionaryValue = fn }
}

// NewBox builds a box from options.
//
// A box built without value, key lookup, filter, render function or hooks
// is empty: it renders as the empty string and is falsy unless
// WithBoolValue says otherwise.
func NewBox(opts ...BoxOption) *Box {
	b := &Box{}
	for _, opt := range opts {
		opt(b)
	}
	b.empty = b.value == nil && b.keyed == nil && b.filter == nil &&
		b.render == nil && b.willRender == nil && b.didRender == nil
	if !b.hasBool {
		b.boolValue = !b.empty
	}
	return b
}

var emptyBox = NewBox()

// EmptyBox returns the box of missing values.
func EmptyBox() *Box {
	return emptyBox
}

// Value returns the raw value of the box.
func (b *Box) Value() any {
	return b.value
}

// IsEmpty reports whether the box carries nothing at all.
func (b *Box) IsEmpty() bool {
	return b.empty
}

// BoolValue reports whether {{#box}} sections render.
func (b *Box) BoolValue() bool {
	return b.boolValue
}

// ArrayValue returns the items of a collection box.
func (b *Box) ArrayValue() ([]*Box, bool) {
	if b.arrayValue == nil {
		return nil, false
	}
	return b.arrayValue(), true
}

// DictionaryValue returns the entries of a dictionary box.
func (b *Box) DictionaryValue() (map[string]*Box, bool) {
	if b.dictionaryValue == nil {
		return nil, false
	}
	return b.dictionaryValue(), true
}

// BoxForKey looks key up in the box. Missing keys give the empty box.
func (b *Box) BoxForKey(key string) *Box {
	if b.keyed == nil {
		return EmptyBox()
	}
	return BoxValue(b.keyed(key))
}

// Render renders the box for the tag described by info.
//
// Without a custom render function, variable tags render the value's
// textual form and section tags render their content with the box pushed
// on the context stack.
func (b *Box) Render(info RenderingInfo) (Rendering, error) {
	if b.render != nil {
		return b.render(info)
	}
	switch info.Tag.Type {
	case VariableTag:
		if b.value == nil {
			return NewRendering(""), nil
		}
		return NewRendering(fmt.Sprint(b.value)), nil
	default:
		return info.Tag.Render(info.Context.Extend(b))
	}
}

// String describes the box for debugging, e.g. "Box(1,FilterFunction)".
func (b *Box) String() string {
	facets := b.facets()
	if len(facets) == 0 {
		return "Box(Empty)"
	}
	return "Box(" + strings.Join(facets, ",") + ")"
}

// valueDescription is used by the logger: "Empty", a single facet, or a
// parenthesized list.
func (b *Box) valueDescription() string {
	facets := b.facets()
	switch len(facets) {
	case 0:
		return "Empty"
	case 1:
		return facets[0]
	default:
		return "(" + strings.Join(facets, ",") + ")"
	}
}

func (b *Box) facets() []string {
	var facets []string
	if items, ok := b.ArrayValue(); ok {
		descriptions := make([]string, len(items))
		for i, item := range items {
			descriptions[i] = item.valueDescription()
		}
		facets = append(facets, "["+strings.Join(descriptions, ",")+"]")
	} else if dict, ok := b.DictionaryValue(); ok {
		if len(dict) == 0 {
			facets = append(facets, "[:]")
		} else {
			keys := make([]string, 0, len(dict))
			for k := range dict {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			entries := make([]string, len(keys))
			for i, k := range keys {
				entries[i] = fmt.Sprintf("%q:%s", k, dict[k].valueDescription())
			}
			facets = append(facets, "["+strings.Join(entries, ",")+"]")
		}
	} else if b.value != nil {
		facets = append(facets, fmt.Sprintf("%#v", b.value))
	}

	if b.filter != nil {
		facets = append(facets, "FilterFunction")
	}
	if b.willRender != nil {
		facets = append(facets, "WillRenderFunction")
	}
	if b.didRender != nil {
		facets = append(facets, "DidRenderFunction")
	}
	if b.value == nil && b.render != nil {
		facets = append(facets, "RenderFunction")
	}
	return facets
}
