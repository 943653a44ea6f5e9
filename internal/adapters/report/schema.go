package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mem://benchscore/submission.schema.json"

// SubmissionSchema is the JSON schema every written payload must satisfy.
//
//go:embed submission.schema.json
var SubmissionSchema []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(SubmissionSchema)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Validate checks an encoded submission against SubmissionSchema.
func Validate(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("%w: compile schema: %w", ErrInvalidSubmission, err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	return nil
}
