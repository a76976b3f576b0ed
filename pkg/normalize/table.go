package normalize

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
)

// FallbackColumn is the column used when a table value cannot be parsed.
const FallbackColumn = "value"

// Table normalises the accepted table shapes (row objects, scalars, arrays of
// cells, or a JSON/newline encoded string) into rows keyed by columns.
// Unparsable strings become one row per non-empty line in FallbackColumn.
func Table(raw any, columns []string) model.Rows {
	if len(columns) == 0 {
		columns = []string{FallbackColumn}
	}

	switch typed := raw.(type) {
	case nil:
		return model.Rows{}
	case model.Rows:
		return rowsFromItems(rowsToAny(typed), columns)
	case []map[string]any:
		items := make([]any, len(typed))
		for i, row := range typed {
			items[i] = row
		}
		return rowsFromItems(items, columns)
	case []any:
		return rowsFromItems(typed, columns)
	case []string:
		items := make([]any, len(typed))
		for i, s := range typed {
			items[i] = s
		}
		return rowsFromItems(items, columns)
	case string:
		return rowsFromString(typed, columns)
	case model.Text:
		return rowsFromString(string(typed), columns)
	default:
		return model.Rows{}
	}
}

// TableToWire encodes rows as a JSON array of objects. Empty tables encode as
// an empty string.
func TableToWire(rows model.Rows) string {
	if len(rows) == 0 {
		return ""
	}
	data, err := json.Marshal([]map[string]any(rows))
	if err != nil {
		return ""
	}
	return string(data)
}

func rowsFromString(raw string, columns []string) model.Rows {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.Rows{}
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return rowsFromItems(items, columns)
		}
	}

	rows := model.Rows{}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, map[string]any{FallbackColumn: line})
	}
	return rows
}

func rowsFromItems(items []any, columns []string) model.Rows {
	rows := make(model.Rows, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			row := make(map[string]any, len(columns))
			for _, col := range columns {
				if v, ok := typed[col]; ok && v != nil {
					row[col] = v
				} else {
					row[col] = ""
				}
			}
			rows = append(rows, row)
		case []any:
			row := make(map[string]any, len(columns))
			for i, col := range columns {
				if i < len(typed) && typed[i] != nil {
					row[col] = typed[i]
				} else {
					row[col] = ""
				}
			}
			rows = append(rows, row)
		case nil:
			continue
		default:
			row := make(map[string]any, len(columns))
			row[columns[0]] = typed
			for _, col := range columns[1:] {
				row[col] = ""
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func rowsToAny(rows model.Rows) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = map[string]any(row)
	}
	return out
}
