package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Content is the normalized shape every renderer draws from. The AI output is
// loosely typed, so anything that does not fit is either folded into Fields
// or dropped.
type Content struct {
	Title    string
	Summary  string
	Fields   []Field
	Sections []Section
	Table    *Table
}

type Field struct {
	Label string
	Value string
}

type Section struct {
	Heading string
	Body    string
	Bullets []string
}

type Table struct {
	Columns []string
	Rows    [][]string
}

// tableKeys are the top-level arrays of objects that turn into a table when
// the response carries no explicit "table".
var tableKeys = []string{"table", "items", "lineItems", "line_items", "actionItems", "action_items", "milestones"}

var reservedKeys = map[string]bool{
	"title":    true,
	"summary":  true,
	"sections": true,
}

func init() {
	for _, k := range tableKeys {
		reservedKeys[k] = true
	}
}

func ParseContent(raw map[string]any) Content {
	c := Content{
		Title:   stringify(raw["title"]),
		Summary: stringify(raw["summary"]),
	}

	if sections, ok := raw["sections"].([]any); ok {
		for _, s := range sections {
			switch v := s.(type) {
			case map[string]any:
				sec := Section{
					Heading: stringify(v["heading"]),
					Body:    stringify(v["body"]),
				}
				if sec.Body == "" {
					sec.Body = stringify(v["content"])
				}
				if items, ok := v["bullets"].([]any); ok {
					for _, it := range items {
						if b := stringify(it); b != "" {
							sec.Bullets = append(sec.Bullets, b)
						}
					}
				}
				if sec.Heading != "" || sec.Body != "" || len(sec.Bullets) > 0 {
					c.Sections = append(c.Sections, sec)
				}
			case string:
				if v != "" {
					c.Sections = append(c.Sections, Section{Body: v})
				}
			}
		}
	}

	for _, key := range tableKeys {
		if t := parseTable(raw[key]); t != nil {
			c.Table = t
			break
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := stringify(raw[k])
		if v == "" {
			continue
		}
		c.Fields = append(c.Fields, Field{Label: humanize(k), Value: v})
	}

	if c.Title == "" {
		c.Title = "Untitled document"
	}
	return c
}

func parseTable(v any) *Table {
	switch t := v.(type) {
	case map[string]any:
		cols, _ := t["columns"].([]any)
		rows, _ := t["rows"].([]any)
		if len(cols) == 0 {
			return nil
		}
		out := &Table{}
		for _, c := range cols {
			out.Columns = append(out.Columns, stringify(c))
		}
		for _, r := range rows {
			cells, ok := r.([]any)
			if !ok {
				continue
			}
			row := make([]string, len(out.Columns))
			for i := range row {
				if i < len(cells) {
					row[i] = stringify(cells[i])
				}
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	case []any:
		// array of objects: columns in order of first appearance, sorted per object
		var cols []string
		seen := map[string]bool{}
		var objs []map[string]any
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			objs = append(objs, obj)
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					cols = append(cols, k)
				}
			}
		}
		if len(cols) == 0 {
			return nil
		}
		out := &Table{}
		for _, c := range cols {
			out.Columns = append(out.Columns, humanize(c))
		}
		for _, obj := range objs {
			row := make([]string, len(cols))
			for i, c := range cols {
				row[i] = stringify(obj[c])
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			if s := stringify(x); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := stringify(t[k]); s != "" {
				parts = append(parts, humanize(k)+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}

// humanize turns "unitPrice" or "unit_price" into "Unit Price".
func humanize(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case r >= 'A' && r <= 'Z' && prevLower:
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
