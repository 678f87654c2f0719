package plangen

import "fmt"

const (
	CodeValidation  = "validation"
	CodeRateLimited = "rate_limited"
	CodeUnavailable = "unavailable"
	CodeBadModelOut = "bad_model_output"
	CodeInternal    = "internal"
)

// PipelineError is the only error shape that crosses the HTTP boundary.
// Message is user-facing and actionable; upstream payloads stay in logs.
type PipelineError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func errValidation(message string) *PipelineError {
	return &PipelineError{Code: CodeValidation, Message: message, Status: 400}
}

func errRateLimited(err error) *PipelineError {
	return &PipelineError{
		Code:    CodeRateLimited,
		Message: "Our AI providers are receiving too many requests right now. Please retry in about a minute.",
		Status:  429,
		Err:     err,
	}
}

func errUnavailable(err error) *PipelineError {
	return &PipelineError{
		Code:    CodeUnavailable,
		Message: "AI providers unavailable. Please try again shortly.",
		Status:  500,
		Err:     err,
	}
}

func errBadModelOutput(err error) *PipelineError {
	return &PipelineError{
		Code:    CodeBadModelOut,
		Message: "The generated plan could not be parsed, even after a simplified retry. Try shortening or simplifying the idea.",
		Status:  500,
		Err:     err,
	}
}
