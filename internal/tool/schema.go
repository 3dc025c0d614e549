package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/message"
)

// SearchArgs are the arguments of the legal research tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"description=Search query naming the consumer problem and the law or regulation to look up"`
}

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// Schema reflects v into a JSON schema without $schema or $ref indirection.
func Schema(v any) *jsonschema.Schema {
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}

// SchemaJSON returns the JSON encoding of Schema(v).
func SchemaJSON(v any) (json.RawMessage, error) {
	data, err := json.Marshal(Schema(v))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	return data, nil
}

// ArgumentsFromSchema converts the top-level properties of v's schema into
// tool arguments, preserving field order.
func ArgumentsFromSchema(v any) []message.ToolArgument {
	s := Schema(v)
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	var args []message.ToolArgument
	if s.Properties == nil {
		return args
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		args = append(args, message.ToolArgument{
			Name:        message.ToolName(pair.Key),
			Description: message.ToolDescription(pair.Value.Description),
			Required:    required[pair.Key],
			Type:        pair.Value.Type,
		})
	}
	return args
}
