package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// catalogSchema guards the hand-maintained catalog file: the dates must be
// ISO strings (lexical order equals chronological order everywhere else in
// the system) and the identifying fields must be present.
const catalogSchema = `{
  "type": "object",
  "required": ["certificates"],
  "properties": {
    "certificates": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "issuer", "category", "holder"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "issuer": {"type": "string"},
          "category": {"type": "string", "minLength": 1},
          "subcategory": {"type": "string"},
          "holder": {"type": "string"},
          "certNumber": {"type": "string"},
          "issuanceDate": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
          "expiryDate": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
          "sourceFile": {"type": "string"}
        }
      }
    }
  }
}`

var compiledCatalogSchema = mustCompile("catalog.json", catalogSchema)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

func validateCatalog(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := compiledCatalogSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
