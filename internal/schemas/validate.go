// Package schemas provides JSON Schema validation for the screening
// input and output documents. The schemas are embedded so validation works
// regardless of the working directory.
package schemas

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed candidate_profile.schema.json
var CandidateProfileSchema string

//go:embed job_description.schema.json
var JobDescriptionSchema string

//go:embed screening_results.schema.json
var ScreeningResultsSchema string

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateCandidateProfile validates a candidate document.
func ValidateCandidateProfile(document []byte) error {
	return validateAgainst(CandidateProfileSchema, "candidate_profile", document)
}

// ValidateJobDescription validates a job document.
func ValidateJobDescription(document []byte) error {
	return validateAgainst(JobDescriptionSchema, "job_description", document)
}

// ValidateScreeningResults validates a serialized output envelope.
func ValidateScreeningResults(document []byte) error {
	return validateAgainst(ScreeningResultsSchema, "screening_results", document)
}

// ValidateJSONFile validates the JSON file at jsonPath against the schema
// file at schemaPath.
func ValidateJSONFile(schemaPath, jsonPath string) error {
	schemaAbs, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}
	jsonAbs, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	if _, err := os.Stat(schemaAbs); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbs)
	}
	if _, err := os.Stat(jsonAbs); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbs)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbs)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbs)
	return evaluate(schemaLoader, documentLoader, schemaAbs)
}

func validateAgainst(schema, schemaName string, document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)
	return evaluate(schemaLoader, documentLoader, schemaName)
}

func evaluate(schemaLoader, documentLoader gojsonschema.JSONLoader, schemaPath string) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
