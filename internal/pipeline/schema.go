package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed result_schema.json
var resultSchema string

// validateResult checks the artifact against the embedded schema before it is
// written, so a malformed result never reaches the store.
func validateResult(result *RunResult) error {
	document, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}

	outcome, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(resultSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate run result: %w", err)
	}

	if outcome.Valid() {
		return nil
	}

	problems := make([]string, 0, len(outcome.Errors()))
	for _, desc := range outcome.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}

	return fmt.Errorf("run result does not match schema: %s", strings.Join(problems, "; "))
}
