package hydrate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-persist/layering"
)

// overlayDefaults copies into decoded every top-level struct field or map key
// of base that raw does not mention. Only struct and map states are
// overlaid; any other shape is taken from raw as is.
func overlayDefaults[T any](decoded, base T, raw []byte) T {
	target := reflect.ValueOf(&decoded).Elem()
	if target.Kind() != reflect.Struct && target.Kind() != reflect.Map {
		return decoded
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return decoded
	}

	defaults := layering.Clone(base)
	source := reflect.ValueOf(&defaults).Elem()
	if target.Kind() == reflect.Map {
		fillMap(target, source, present)
	} else {
		fillStruct(target, source, present)
	}
	return decoded
}

func fillMap(target, source reflect.Value, present map[string]json.RawMessage) {
	if source.IsNil() || source.Len() == 0 {
		return
	}
	if target.IsNil() {
		target.Set(reflect.MakeMapWithSize(target.Type(), source.Len()))
	}
	iter := source.MapRange()
	for iter.Next() {
		if _, ok := present[mapKeyName(iter.Key())]; ok {
			continue
		}
		target.SetMapIndex(iter.Key(), iter.Value())
	}
}

func mapKeyName(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprint(key.Interface())
}

func fillStruct(target, source reflect.Value, present map[string]json.RawMessage) {
	typ := target.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, tagged := jsonName(field)
		if name == "-" {
			continue
		}

		if field.Anonymous && !tagged {
			switch field.Type.Kind() {
			case reflect.Struct:
				fillStruct(target.Field(i), source.Field(i), present)
				continue
			case reflect.Pointer:
				if field.Type.Elem().Kind() != reflect.Struct {
					break
				}
				dst, src := target.Field(i), source.Field(i)
				if dst.IsNil() {
					if dst.CanSet() {
						dst.Set(src)
					}
				} else if !src.IsNil() {
					fillStruct(dst.Elem(), src.Elem(), present)
				}
				continue
			}
		}

		if !field.IsExported() || hasKey(present, name) {
			continue
		}
		if dst := target.Field(i); dst.CanSet() {
			dst.Set(source.Field(i))
		}
	}
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "-", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name, false
	}
	return name, true
}

// hasKey follows encoding/json field matching: exact first, then
// case-insensitive.
func hasKey(present map[string]json.RawMessage, name string) bool {
	if _, ok := present[name]; ok {
		return true
	}
	for key := range present {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
