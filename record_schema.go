package persist

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// RecordSchema returns a JSON Schema describing the slice state type. With a
// state filter installed the stored record may hold only part of it.
func (r *PersistedReducer[S]) RecordSchema() (map[string]any, error) {
	return stateSchema(reflect.TypeOf((*S)(nil)).Elem())
}

func stateSchema(t reflect.Type) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.ReflectFromType(t)

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("persist: marshal schema for %s: %w", t, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("persist: decode schema for %s: %w", t, err)
	}
	return out, nil
}
