package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// Kind classifies a decode failure.
type Kind int

const (
	// KindMalformed means the raw text is not well-formed JSON.
	KindMalformed Kind = iota + 1

	// KindSchemaViolation means the JSON is well-formed but a required
	// field is missing, has the wrong type, or breaks an invariant.
	KindSchemaViolation
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindSchemaViolation:
		return "schema violation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *DecodeError.
var (
	ErrMalformed       = errors.New("assessment: malformed payload")
	ErrSchemaViolation = errors.New("assessment: schema violation")
)

// DecodeError describes why raw text could not be turned into an Assessment.
type DecodeError struct {
	Kind Kind

	// Field is the slash-separated location of the offending value, e.g.
	// "questions/1/answer". Empty for malformed input.
	Field string

	Err error
}

func (e *DecodeError) Error() string {
	if e.Kind == KindSchemaViolation {
		field := e.Field
		if field == "" {
			field = "(root)"
		}
		return fmt.Sprintf("assessment %s at %s: %v", e.Kind, field, e.Err)
	}
	return fmt.Sprintf("assessment %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching e.Kind.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrSchemaViolation:
		return e.Kind == KindSchemaViolation
	}
	return false
}

// payload mirrors the wire shape produced by the assessment generator.
type payload struct {
	Questions []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Answer   string   `json:"answer"`
	} `json:"questions"`
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	url := "schema://" + SchemaName + ".json"
	if err := c.AddResource(url, normalize(SchemaDefinition())); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
})

// Decode parses raw text returned by the generate_assessment operation.
// It returns either a valid Assessment or a *DecodeError; it never panics
// on bad input.
func Decode(raw string) (*Assessment, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &DecodeError{Kind: KindMalformed, Err: err}
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, &DecodeError{Kind: KindSchemaViolation, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := sch.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// Unreachable once the schema passed, but keep the result tagged.
		return nil, &DecodeError{Kind: KindSchemaViolation, Err: err}
	}

	a := &Assessment{Questions: make([]Question, 0, len(p.Questions))}
	for i, q := range p.Questions {
		if !contains(q.Options, q.Answer) {
			return nil, &DecodeError{
				Kind:  KindSchemaViolation,
				Field: "questions/" + strconv.Itoa(i) + "/answer",
				Err:   fmt.Errorf("answer %q is not one of the options", q.Answer),
			}
		}
		a.Questions = append(a.Questions, Question{
			Prompt:        q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.Answer,
		})
	}
	return a, nil
}

// schemaError converts a jsonschema validation failure into a DecodeError
// pointing at the most specific failing location.
func schemaError(err error) *DecodeError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &DecodeError{Kind: KindSchemaViolation, Err: err}
	}

	leaf := deepestCause(ve)
	loc := append([]string(nil), leaf.InstanceLocation...)
	if req, ok := leaf.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
		loc = append(loc, req.Missing[0])
	}

	return &DecodeError{
		Kind:  KindSchemaViolation,
		Field: strings.Join(loc, "/"),
		Err:   err,
	}
}

// deepestCause walks the cause tree and returns the leaf whose instance
// location is longest. Ties keep the first leaf found.
func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return ve
	}
	var best *jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaf := deepestCause(c)
		if best == nil || len(leaf.InstanceLocation) > len(best.InstanceLocation) {
			best = leaf
		}
	}
	return best
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

// normalize round-trips a Go map through JSON so the schema compiler sees
// plain JSON values.
func normalize(def map[string]any) any {
	b, err := json.Marshal(def)
	if err != nil {
		return def
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return def
	}
	return out
}
