package repository

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// encodeData сериализует документ; корнем всегда должен быть JSON объект
func encodeData(data any) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch v := data.(type) {
	case []byte:
		b = v
	case json.RawMessage:
		b = v
	default:
		b, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("encode document: root must be an object")
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// mergeTopLevel заменяет ключи верхнего уровня, вложенные объекты не сливаются
func mergeTopLevel(existing []byte, partial map[string]any) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(existing, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for k, v := range partial {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		doc[k] = raw
	}
	return json.Marshal(doc)
}

// fieldEquals - только строковые значения, как и в SQL хранилищах
func fieldEquals(data []byte, field, value string) bool {
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	s, ok := doc[field].(string)
	return ok && s == value
}
