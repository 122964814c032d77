package errors

import "fmt"

type Kind string

const (
	KindInvalidConfiguration Kind = "invalid_configuration"
	KindInvalidTransition    Kind = "invalid_transition"
	KindGoalRequired         Kind = "goal_required"
	KindCollaboratorFailure  Kind = "collaborator_failure"
	KindInvalidInput         Kind = "invalid_input"
	KindNotFound             Kind = "not_found"
	KindInternal             Kind = "internal"
)

// Sentinels for errors.Is. They match any EngineError of the same kind.
var (
	ErrInvalidConfiguration = &EngineError{Kind: KindInvalidConfiguration}
	ErrInvalidTransition    = &EngineError{Kind: KindInvalidTransition}
	ErrGoalRequired         = &EngineError{Kind: KindGoalRequired}
	ErrCollaboratorFailure  = &EngineError{Kind: KindCollaboratorFailure}
	ErrInvalidInput         = &EngineError{Kind: KindInvalidInput}
	ErrNotFound             = &EngineError{Kind: KindNotFound}
)

type EngineError struct {
	Kind    Kind        `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an EngineError of the same kind. A target
// carrying a code only matches errors with that exact code.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func New(kind Kind, code, message string) *EngineError {
	return &EngineError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *EngineError {
	if message == "" {
		message = "internal error"
	}
	return New(KindInternal, "internal_error", message)
}

func InvalidConfiguration(code, message string) *EngineError {
	return New(KindInvalidConfiguration, code, message)
}

func InvalidInput(code, message string) *EngineError {
	return New(KindInvalidInput, code, message)
}

func InvalidTransition(operation, status string) *EngineError {
	err := New(KindInvalidTransition, "invalid_transition", fmt.Sprintf("cannot %s while %s", operation, status))
	err.Details = map[string]interface{}{
		"operation": operation,
		"status":    status,
	}
	return err
}

func GoalRequired() *EngineError {
	return New(KindGoalRequired, "goal_required", "a goal name is required before starting")
}

func CollaboratorFailure(collaborator string, err error) *EngineError {
	e := New(KindCollaboratorFailure, collaborator+"_failed", collaborator+" failed")
	e.Err = err
	return e
}

func NotFound(code, message string) *EngineError {
	return New(KindNotFound, code, message)
}
