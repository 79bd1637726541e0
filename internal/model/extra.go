package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Extra carries JSON fields a record variant does not know about, so that
// documents written by newer or older versions survive a round trip.
type Extra map[string]json.RawMessage

var knownFields sync.Map // reflect.Type -> map[string]bool

func fieldNames(t reflect.Type) map[string]bool {
	if cached, ok := knownFields.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool)
	collectFieldNames(t, names)
	knownFields.Store(t, names)
	return names
}

func collectFieldNames(t reflect.Type, names map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			collectFieldNames(f.Type, names)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = true
	}
}

// marshalWithExtra encodes v and merges in any extra fields that do not
// collide with a known field.
func marshalWithExtra(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("merging extra fields: %w", err)
	}
	known := fieldNames(reflect.TypeOf(v))
	for k, raw := range extra {
		if known[k] {
			continue
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

// unmarshalWithExtra decodes data into v (a pointer to struct) and returns
// the fields v has no place for.
func unmarshalWithExtra(data []byte, v any) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	known := fieldNames(reflect.TypeOf(v).Elem())
	var extra Extra
	for k, raw := range fields {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = raw
	}
	return extra, nil
}
