package mustache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Each is the `each` filter. It iterates a collection or a dictionary and
// exposes positional keys to each item: @index, @indexPlusOne,
// @indexIsEven, @first, @last, and @key for dictionaries.
//
//	{{# each(items) }}{{ @indexPlusOne }}: {{ . }}{{^ @last }}, {{/ @last }}{{/}}
//
// Dictionary entries are iterated in key order.
var Each = Filter(func(box *Box) (any, error) {
	if box.IsEmpty() {
		return box, nil
	}

	if dict, ok := box.DictionaryValue(); ok {
		keys := make([]string, 0, len(dict))
		for k := range dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = positionalRender(dict[k], i, len(keys), k)
		}
		return items, nil
	}

	if boxes, ok := box.ArrayValue(); ok {
		items := make([]any, len(boxes))
		for i, b := range boxes {
			items[i] = positionalRender(b, i, len(boxes), "")
		}
		return items, nil
	}

	return nil, newRenderError(fmt.Sprintf("Non-enumerable argument in each filter: %v", box.Value()))
})

func positionalRender(item *Box, index, count int, key string) RenderFunc {
	return func(info RenderingInfo) (Rendering, error) {
		position := map[string]any{
			"@index":        index,
			"@indexPlusOne": index + 1,
			"@indexIsEven":  index%2 == 0,
			"@first":        index == 0,
			"@last":         index == count-1,
		}
		if key != "" {
			position["@key"] = key
		}
		info.Context = info.Context.Extend(position)
		return item.Render(info)
	}
}

// Zip is the `zip` filter. It iterates several collections together,
// pushing the items of the same rank on the context stack at once:
//
//	{{# zip(names, ages) }}{{ name }} is {{ age }}. {{/}}
//
// Iteration stops after the longest collection. Missing arguments are
// ignored.
var Zip = VariadicFilter(func(boxes []*Box) (any, error) {
	var lists [][]*Box
	for _, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		items, ok := b.ArrayValue()
		if !ok {
			return nil, newRenderError(fmt.Sprintf("Non-enumerable argument in zip filter: `%v`", b.Value()))
		}
		lists = append(lists, items)
	}

	var renders []any
	for rank := 0; ; rank++ {
		var zipped []*Box
		for _, list := range lists {
			if rank < len(list) {
				zipped = append(zipped, list[rank])
			}
		}
		if len(zipped) == 0 {
			break
		}
		renders = append(renders, RenderFunc(func(info RenderingInfo) (Rendering, error) {
			ctx := info.Context
			for _, b := range zipped {
				ctx = ctx.Extend(b)
			}
			return info.Tag.Render(ctx)
		}))
	}
	return renders, nil
})

// RenderLogger logs the rendering of tags through slog. Put it in the base
// context to trace a whole template:
//
//	tpl.ExtendBaseContext(mustache.NewRenderLogger(logger))
//
// Sections log when they start and end, and indent the tags they contain.
type RenderLogger struct {
	logger *slog.Logger
	level  slog.Level

	mu     sync.Mutex
	indent int
}

// NewRenderLogger returns a RenderLogger writing to logger at debug level.
// A nil logger means slog.Default().
func NewRenderLogger(logger *slog.Logger) *RenderLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderLogger{logger: logger, level: slog.LevelDebug}
}

// WithLevel sets the level of the log records.
func (l *RenderLogger) WithLevel(level slog.Level) *RenderLogger {
	l.level = level
	return l
}

// MustacheBox implements Boxable.
func (l *RenderLogger) MustacheBox() *Box {
	return NewBox(
		WithWillRender(func(tag *Tag, box *Box) any {
			if tag.Type == SectionTag {
				l.mu.Lock()
				prefix := l.prefix()
				l.indent++
				l.mu.Unlock()
				l.log(prefix+tag.String()+" will render "+box.valueDescription(), tag)
			}
			return box
		}),
		WithDidRender(func(tag *Tag, box *Box, rendered *string) {
			l.mu.Lock()
			if tag.Type == SectionTag {
				l.indent--
			}
			prefix := l.prefix()
			l.mu.Unlock()
			if rendered == nil {
				l.log(fmt.Sprintf("%s%s did fail rendering %s", prefix, tag, box.valueDescription()), tag)
				return
			}
			l.log(fmt.Sprintf("%s%s did render %s as %q", prefix, tag, box.valueDescription(), *rendered), tag)
		}),
	)
}

func (l *RenderLogger) prefix() string {
	return strings.Repeat("  ", max(l.indent, 0))
}

func (l *RenderLogger) log(msg string, tag *Tag) {
	l.logger.Log(context.Background(), l.level, msg,
		"template_id", tag.TemplateID(),
		"line", tag.Line())
}
