package loader

import (
	"bytes"
	"encoding/json"
	"errors"
)

func parseJSON(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			pe.Line, pe.Column = position(data, se.Offset)
		}
		return nil, pe
	}
	return m, nil
}

// position converts a byte offset to a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
