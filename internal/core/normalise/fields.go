package normalise

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// fields reads string values and object lists out of a metadata bag
// regardless of how the backend delivered it.
type fields interface {
	str(keys ...string) string
	objects(keys ...string) []fields
}

// structFields is a bag delivered as a protobuf Struct.
type structFields struct {
	s *structpb.Struct
}

func (f structFields) value(keys []string) *structpb.Value {
	m := f.s.GetFields()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func (f structFields) str(keys ...string) string {
	return f.value(keys).GetStringValue()
}

func (f structFields) objects(keys ...string) []fields {
	var out []fields
	for _, v := range f.value(keys).GetListValue().GetValues() {
		if st := v.GetStructValue(); st != nil {
			out = append(out, structFields{s: st})
		}
	}
	return out
}

// mapFields is a bag delivered as decoded JSON.
type mapFields map[string]any

func (f mapFields) value(keys []string) any {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (f mapFields) str(keys ...string) string {
	s, _ := f.value(keys).(string)
	return s
}

func (f mapFields) objects(keys ...string) []fields {
	list, _ := f.value(keys).([]any)
	var out []fields
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, mapFields(m))
		}
	}
	return out
}

func asMap(v any) (mapFields, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return mapFields(m), true
}
