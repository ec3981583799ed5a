package extraction

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"returnsdesk/internal/domain/returns"
)

// responseShape documents the object the extraction service must answer with.
type responseShape struct {
	Product      string  `json:"product,omitempty" jsonschema:"description=Name of the returned product"`
	StoreName    string  `json:"store_name,omitempty" jsonschema:"description=Store or branch where the item was bought"`
	Category     string  `json:"category,omitempty" jsonschema:"description=Product category"`
	Cost         float64 `json:"cost,omitempty" jsonschema:"description=Refund amount as a plain number"`
	ReturnReason string  `json:"return_reason,omitempty" jsonschema:"description=Why the customer returned the item"`
}

const instructions = `You extract structured return records from short free-text descriptions written by store staff.
Answer with a single JSON object and nothing else. Use only the keys defined by the schema below.
Omit a key when the text does not state its value; never guess a store, a cost or a category.
The category must be one of the enumerated values.`

var systemPrompt = sync.OnceValue(func() string {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&responseShape{})

	if prop, ok := schema.Properties.Get("category"); ok && prop != nil {
		for _, c := range returns.Categories() {
			prop.Enum = append(prop.Enum, string(c))
		}
	}

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return instructions
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nJSON schema:\n")
	b.Write(raw)
	return b.String()
})

// SystemPrompt returns the instructions sent with every extraction request.
func SystemPrompt() string {
	return systemPrompt()
}
