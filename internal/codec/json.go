package codec

import (
	"bytes"
	"encoding/json"

	"notes/internal/domain"
	"notes/internal/errors"
)

// JSON is the default codec: an indented array of wire records.
type JSON struct{}

func (JSON) Format() Format { return FormatJSON }

func (JSON) Encode(items []domain.Item) ([]byte, error) {
	records, err := toWire(items)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, errors.NewEncodeError("items", err)
	}
	return buf.Bytes(), nil
}

func (JSON) Decode(data []byte) ([]domain.Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []domain.Item{}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, decodeFailure(-1, "", ReasonMalformed, err.Error())
	}

	items := make([]domain.Item, 0, len(raws))
	for i, raw := range raws {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, decodeFailure(i, "", ReasonWrongType, "expected object")
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, decodeFailure(i, "", ReasonMalformed, err.Error())
		}
		item, err := decodeRecord(i, jsonRecord(fields))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := checkUnique(items); err != nil {
		return nil, err
	}
	return items, nil
}

type jsonRecord map[string]json.RawMessage

func (r jsonRecord) field(name string) (value, bool) {
	raw, ok := r[name]
	if !ok {
		return nil, false
	}
	return jsonValue(bytes.TrimSpace(raw)), true
}

type jsonValue []byte

func (v jsonValue) isNull() bool {
	return bytes.Equal(v, []byte("null"))
}

func (v jsonValue) asString() (string, bool) {
	if len(v) == 0 || v[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func (v jsonValue) asTimeText() (string, bool) {
	return v.asString()
}

func (v jsonValue) asBool() (bool, bool) {
	switch string(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
