package config

import (
	"reflect"
	"strings"
)

// TagName is the struct tag that names the configuration argument of a
// field.
const TagName = "dxe"

// FieldNames maps argument names to the struct fields of t that accept them.
// Fields without a tag are matched by their lowercased name; a "-" tag skips
// the field.
func FieldNames(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.ToLower(field.Name)
		if tag := field.Tag.Get(TagName); tag != "" {
			name = strings.Split(tag, ",")[0]
		}
		if name == "-" {
			continue
		}
		out[name] = field
	}
	return out
}
