// internal/common/validation/params.go

// Package validation checks the optional job params document against a JSON
// schema before a job executes. Invalid params are a fatal input error for
// the job, never silently ignored.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	joberrors "kundali-workers/internal/common/errors"
)

// JobParams carries the per-job overrides of the matching policy. Nil
// fields fall back to the configured defaults.
type JobParams struct {
	MinScore   *int `json:"min_score,omitempty"`
	MaxResults *int `json:"max_results,omitempty"`
	ChunkSize  *int `json:"chunk_size,omitempty"`
}

const jobParamsSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"min_score":   {"type": "integer", "minimum": 0, "maximum": 36},
		"max_results": {"type": "integer", "minimum": 1},
		"chunk_size":  {"type": "integer", "minimum": 1}
	}
}`

var jobParamsSchema = mustCompileSchema(jobParamsSchemaJSON)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid job params schema: %v", err))
	}
	return schema
}

// ParseJobParams validates and decodes the raw params blob. A missing or
// null document yields empty params.
func ParseJobParams(raw json.RawMessage) (*JobParams, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &JobParams{}, nil
	}

	result, err := jobParamsSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, joberrors.NewInvalidParamsError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, joberrors.NewInvalidParamsError(strings.Join(msgs, "; "))
	}

	var params JobParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, joberrors.NewInvalidParamsError(err.Error())
	}
	return &params, nil
}
