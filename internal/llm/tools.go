package llm

import (
	"github.com/Pbash-js/Pai/internal/schema"
)

// Gemini tool declaration wire format.
type tool struct {
	FunctionDeclarations []functionDeclaration `json:"function_declarations"`
}

type functionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  parameterSchema `json:"parameters"`
}

type parameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]propertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

type propertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Items       *propertySchema `json:"items,omitempty"`
}

// buildTools converts the operation catalog into the model's tool grammar.
// The registry is the single source of truth; nothing is declared here that
// the dispatcher would not accept.
func buildTools(reg *schema.Registry) []tool {
	descs := reg.Descriptors()
	decls := make([]functionDeclaration, 0, len(descs))
	for _, d := range descs {
		props := make(map[string]propertySchema, len(d.Params))
		for _, p := range d.Params {
			ps := propertySchema{Type: string(p.Type), Description: p.Description}
			if p.Type == schema.TypeArray {
				ps.Items = &propertySchema{Type: string(p.Items)}
			}
			props[p.Name] = ps
		}
		decls = append(decls, functionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: parameterSchema{
				Type:       "object",
				Properties: props,
				Required:   d.RequiredParams(),
			},
		})
	}
	return []tool{{FunctionDeclarations: decls}}
}
