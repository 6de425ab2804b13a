package notion

import (
	"fmt"
	"strconv"
	"strings"
)

// Property value builders matching the Notion API page-property format.

func titleProp(content string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"type": "text", "text": map[string]any{"content": content}},
		},
	}
}

func richTextProp(content string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"type": "text", "text": map[string]any{"content": content}},
		},
	}
}

func dateProp(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func numberProp(value float64) map[string]any {
	return map[string]any{"number": value}
}

func checkboxProp(checked bool) map[string]any {
	return map[string]any{"checkbox": checked}
}

func textBlock(content string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []map[string]any{
				{"type": "text", "text": map[string]any{"content": content}},
			},
		},
	}
}

// rowProperties maps row data onto the target database's column types.
// columns maps column name to its Notion property type ("title", "rich_text",
// "date", "select", "number", "checkbox"); unknown columns and types fall back
// to rich text. Exactly one title column is required.
func rowProperties(columns map[string]string, data map[string]any) (map[string]any, error) {
	titleCol := ""
	for name, typ := range columns {
		if typ == "title" {
			titleCol = name
			break
		}
	}
	if titleCol == "" {
		// Schema had no title column (or was unknown); fall back to the
		// conventional key names.
		for _, key := range []string{"Name", "Title", "Task", "Item"} {
			if _, ok := data[key]; ok {
				titleCol = key
				break
			}
		}
	}
	if titleCol == "" {
		for key := range data {
			if isTitleKey(key) {
				titleCol = key
				break
			}
		}
	}

	props := make(map[string]any, len(data))
	titled := false
	for key, value := range data {
		typ := columns[key]
		if key == titleCol {
			typ = "title"
		}

		switch typ {
		case "title":
			props[key] = titleProp(stringify(value))
			titled = true
		case "date":
			props[key] = dateProp(stringify(value))
		case "select":
			props[key] = selectProp(stringify(value))
		case "number":
			n, err := toNumber(value)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", key, err)
			}
			props[key] = numberProp(n)
		case "checkbox":
			props[key] = checkboxProp(toBool(value))
		default:
			props[key] = richTextProp(stringify(value))
		}
	}

	if !titled {
		return nil, fmt.Errorf("could not identify the title column for the entry")
	}
	return props, nil
}

func isTitleKey(key string) bool {
	switch strings.ToLower(key) {
	case "name", "title", "task", "item":
		return true
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || strings.EqualFold(b, "yes")
	default:
		return false
	}
}
