package fixture

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// SchemaViolation is one JSON schema failure
type SchemaViolation struct {
	Field       string
	Description string
}

func (v SchemaViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// SchemaError reports a document that does not match the fixture schema
type SchemaError struct {
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = "  - " + v.String()
	}
	return fmt.Sprintf("fixture does not match schema:\n%s", strings.Join(lines, "\n"))
}

// Schema returns the embedded fixture JSON schema
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// ValidateSchema checks a JSON document against the fixture schema
func ValidateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	serr := &SchemaError{}
	for _, re := range result.Errors() {
		serr.Violations = append(serr.Violations, SchemaViolation{
			Field:       re.Field(),
			Description: re.Description(),
		})
	}
	return serr
}
