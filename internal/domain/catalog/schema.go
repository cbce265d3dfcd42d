package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes { category_name: [item_string, ...], ... } with at
// least one category and at least one non-blank item per category.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "propertyNames": { "minLength": 1 },
  "additionalProperties": {
    "type": "array",
    "minItems": 1,
    "items": { "type": "string", "minLength": 1 }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema) //nolint:gochecknoglobals // immutable schema

// validateDocument checks raw JSON against documentSchema.
func validateDocument(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrLoad, strings.Join(errs, "; "))
	}
	return nil
}

// validateTable applies the schema rules to an already decoded table.
func validateTable(table map[string][]string) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: catalog has no categories", ErrLoad)
	}
	for name, items := range table {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: blank category name", ErrLoad)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: category %q has no items", ErrLoad, name)
		}
		for _, item := range items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: category %q has a blank item", ErrLoad, name)
			}
		}
	}
	return nil
}
