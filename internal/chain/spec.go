package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// Variable names used by the hardware spec chain
const (
	KeyTextInput     = "text_input"
	KeySpecification = "specification"
	KeyJSON          = "json"
)

// Prompts of the hardware spec chain
const (
	ExtractPrompt   = "Extract the technical specification from the following text:\n\n{{{text_input}}}"
	TransformPrompt = "Transform the following technical specification into a JSON object with 'cpu', 'memory', 'storage', 'gpu' as keys:\n\n{{{specification}}}"
)

// ErrInvalidSpec is returned when the transform output is not a hardware spec object
var ErrInvalidSpec = errors.New("invalid hardware specification")

// Every key is optional. Values are strings or numbers, null when not reported.
const hardwareSpecSchema = `{
  "type": "object",
  "properties": {
    "cpu":     {"type": ["string", "number", "null"]},
    "memory":  {"type": ["string", "number", "null"]},
    "storage": {"type": ["string", "number", "null"]},
    "gpu":     {"type": ["string", "number", "null"]}
  }
}`

var hardwareSchema = gojsonschema.NewStringLoader(hardwareSpecSchema)

// Field is one reported attribute. Numbers keep their JSON literal, so 16 becomes "16".
type Field string

// UnmarshalJSON accepts a JSON string or number
func (f *Field) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field must be a string or number: %w", err)
	}
	*f = Field(n.String())
	return nil
}

func (f Field) String() string {
	return string(f)
}

// HardwareSpec is the structured form of the transform step output.
// A nil field means the key was absent or null.
type HardwareSpec struct {
	CPU     *Field `json:"cpu"`
	Memory  *Field `json:"memory"`
	Storage *Field `json:"storage"`
	GPU     *Field `json:"gpu"`
}

// SpecSteps returns the extract and transform steps
func SpecSteps() []Step {
	return []Step{
		{Name: "extract", Template: ExtractPrompt, OutputKey: KeySpecification},
		{Name: "transform", Template: TransformPrompt, OutputKey: KeyJSON},
	}
}

// NewSpecChain builds the two-step specification chain
func NewSpecChain(client llm.Client, logger *zap.Logger) (*Chain, error) {
	return New(client, SpecSteps(), logger)
}

// ParseHardwareSpec strips markdown fences from raw, validates it against the
// hardware spec schema and decodes it
func ParseHardwareSpec(raw string) (*HardwareSpec, error) {
	body := stripFences(raw)

	res, err := gojsonschema.Validate(hardwareSchema, gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpec, strings.Join(msgs, "; "))
	}

	var spec HardwareSpec
	if err := json.Unmarshal([]byte(body), &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return &spec, nil
}

// stripFences removes a surrounding ``` or ```json block
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// SpecOutput is the outcome of running text through the hardware spec chain
type SpecOutput struct {
	Specification string        `json:"specification"`
	JSON          string        `json:"json"`
	Spec          *HardwareSpec `json:"spec,omitempty"`
}

// SpecExtractor runs the hardware spec chain and optionally enforces the output shape
type SpecExtractor struct {
	chain  *Chain
	strict bool
	logger *zap.Logger
}

// NewSpecExtractor creates an extractor. With strict set, output that fails
// validation is an error; otherwise it is logged and returned unparsed.
func NewSpecExtractor(client llm.Client, strict bool, logger *zap.Logger) (*SpecExtractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := NewSpecChain(client, logger)
	if err != nil {
		return nil, err
	}
	return &SpecExtractor{chain: c, strict: strict, logger: logger}, nil
}

// Extract runs the chain over text
func (e *SpecExtractor) Extract(ctx context.Context, text string) (*SpecOutput, error) {
	res, err := e.chain.Run(ctx, map[string]string{KeyTextInput: text})
	if err != nil {
		return nil, err
	}

	out := &SpecOutput{
		Specification: res.Vars[KeySpecification],
		JSON:          res.Vars[KeyJSON],
	}

	spec, err := ParseHardwareSpec(out.JSON)
	if err != nil {
		if e.strict {
			return nil, err
		}
		e.logger.Warn("chain output is not a valid hardware spec",
			zap.Error(err),
		)
		return out, nil
	}

	out.Spec = spec
	return out, nil
}
