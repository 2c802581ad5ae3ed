package schema

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the settable keys and the identity fields as a JSON
// Schema object. Host dependent defaults are left out.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, k := range s.keys {
		p := &jsonschema.Schema{
			Description: k.Description,
			ReadOnly:    k.ReadOnly,
		}
		if k.DefaultFunc == nil && !k.ReadOnly {
			p.Default = k.Default
		}
		switch k.Kind {
		case KindInt:
			p.Type = "integer"
			p.Minimum = json.Number(strconv.Itoa(k.Min))
			p.Maximum = json.Number(strconv.Itoa(k.Max))
		case KindBool:
			p.Type = "boolean"
		case KindEnum:
			p.Type = "string"
			for _, c := range k.Choices {
				p.Enum = append(p.Enum, c)
			}
		default:
			p.Type = "string"
			if k.MaxLength > 0 {
				max := uint64(k.MaxLength)
				p.MaxLength = &max
			}
		}
		props.Set(k.Name, p)
	}
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		Title:                "Control-M/Agent configuration",
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}
