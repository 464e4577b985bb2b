// Package structuring asks the model for a one-page structured resume and validates the reply.
package structuring

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"resume-generator/internal/llm"
	"resume-generator/internal/shared/telemetry"
)

//go:embed prompts/one_page.txt
var onePagePrompt string

var (
	ErrModel           = errors.New("model call failed")
	ErrMalformedJSON   = errors.New("model output is not valid JSON")
	ErrSchemaViolation = errors.New("model output does not match resume schema")
)

// requiredKeys must all be present at the top level of the model output.
var requiredKeys = []string{
	"name", "email", "phone", "location", "professional_summary", "skills",
	"work_experience", "projects", "education", "certifications", "ats_score", "feedback",
}

// Engine turns resume text plus a job description into a Resume.
type Engine struct {
	gen      llm.TextGenerator
	validate *validator.Validate
}

func New(gen llm.TextGenerator) *Engine {
	return &Engine{gen: gen, validate: validator.New()}
}

// BuildPrompt fills the one-page template. Inputs are substituted verbatim.
func BuildPrompt(resumeText, jobDescription string) string {
	return strings.NewReplacer(
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(onePagePrompt)
}

// Structure makes one model call. On any failure it returns Fallback() and an
// error wrapping ErrModel, ErrMalformedJSON or ErrSchemaViolation.
func (e *Engine) Structure(ctx context.Context, resumeText, jobDescription string) (Resume, error) {
	raw, err := e.gen.GenerateText(ctx, BuildPrompt(resumeText, jobDescription))
	if err != nil {
		telemetry.Error("structuring.model_failed", map[string]any{"error": err})
		return Fallback(), fmt.Errorf("%w: %v", ErrModel, err)
	}

	resume, err := e.Parse(raw)
	if err != nil {
		telemetry.Warn("structuring.invalid_output", map[string]any{
			"error":        err,
			"output_chars": len(raw),
		})
		return Fallback(), err
	}
	return resume, nil
}

// Parse strips code fences from raw model output and decodes it strictly.
func (e *Engine) Parse(raw string) (Resume, error) {
	body := StripFences(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Resume{}, fmt.Errorf("%w: top level is %s, not an object", ErrSchemaViolation, typeErr.Value)
		}
		return Resume{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if top == nil {
		return Resume{}, fmt.Errorf("%w: top level is null", ErrSchemaViolation)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := top[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Resume{}, fmt.Errorf("%w: missing keys %s", ErrSchemaViolation, strings.Join(missing, ", "))
	}

	var wire wireResume
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	score, ok := integerScore(wire.ATSScore)
	if !ok {
		return Resume{}, fmt.Errorf("%w: ats_score %q is not an integer", ErrSchemaViolation, wire.ATSScore.String())
	}

	resume := wire.toResume(score).Normalize()
	if err := e.validate.Struct(resume); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return resume, nil
}

// StripFences removes a leading ```json or ``` fence and a trailing ``` fence.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
