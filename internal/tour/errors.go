package tour

import "fmt"

// ErrorType represents the category of a definition error
type ErrorType int

const (
	// ErrTypeEmpty indicates a definition without a name or without steps
	ErrTypeEmpty ErrorType = iota
	// ErrTypeMissingID indicates a step without an ID
	ErrTypeMissingID
	// ErrTypeDuplicateID indicates two steps sharing an ID
	ErrTypeDuplicateID
	// ErrTypeInvalidSide indicates an unknown placement side
	ErrTypeInvalidSide
	// ErrTypeInvalidAnchor indicates an unknown anchor policy
	ErrTypeInvalidAnchor
	// ErrTypeInvalidTarget indicates a target key that cannot be queried
	ErrTypeInvalidTarget
	// ErrTypeParse indicates a definition file that could not be decoded
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeEmpty:
		return "Empty Definition"
	case ErrTypeMissingID:
		return "Missing Step ID"
	case ErrTypeDuplicateID:
		return "Duplicate Step ID"
	case ErrTypeInvalidSide:
		return "Invalid Side"
	case ErrTypeInvalidAnchor:
		return "Invalid Anchor"
	case ErrTypeInvalidTarget:
		return "Invalid Target"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DefinitionError describes a problem with a tour definition
type DefinitionError struct {
	Type    ErrorType // Category of error
	Step    int       // Step index, or -1 for the definition itself
	StepID  string    // Step ID (if known)
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DefinitionError) Error() string {
	where := "definition"
	if e.Step >= 0 {
		where = fmt.Sprintf("step %d", e.Step+1)
		if e.StepID != "" {
			where = fmt.Sprintf("step %d (%s)", e.Step+1, e.StepID)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (caused by: %v)", e.Type, where, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Type, where, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a decoding failure
func NewParseError(err error) *DefinitionError {
	return &DefinitionError{Type: ErrTypeParse, Step: -1, Message: "cannot decode tour definition", Err: err}
}

// IsDefinitionError checks if an error is a DefinitionError of the given type
func IsDefinitionError(err error, et ErrorType) bool {
	if de, ok := err.(*DefinitionError); ok {
		return de.Type == et
	}
	return false
}
