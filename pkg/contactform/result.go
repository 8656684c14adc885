package contactform

// Code classifies a failed submission
type Code string

const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeChallengeFailed    Code = "CHALLENGE_VERIFICATION_FAILED"
	CodeInternalError      Code = "INTERNAL_SERVER_ERROR"
)

// User-facing result messages
const (
	MessageSent               = "Message Sent!"
	MessageInvalidRequestBody = "Invalid Request Body"
	MessageChallengeFailed    = "Challenge Verification Failed. Please try again."
	MessageInvalidChallenge   = "Invalid Challenge Verification Method. Please try again."
	MessageInternalError      = "Internal Server Error"
)

// Outcome is the tagged variant of a Result
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationFailed
	OutcomeChallengeFailed
	OutcomeInternalError
)

// String implements fmt.Stringer
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeChallengeFailed:
		return "challenge_failed"
	default:
		return "internal_error"
	}
}

// Result is the outcome of one contact submission
type Result struct {
	Success bool       `json:"success"`
	Code    Code       `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
	Errors  *ErrorTree `json:"errors,omitempty"`
}

// Outcome derives the variant from the success flag and code
func (r *Result) Outcome() Outcome {
	if r.Success {
		return OutcomeSuccess
	}
	switch r.Code {
	case CodeInvalidRequestBody:
		return OutcomeValidationFailed
	case CodeChallengeFailed:
		return OutcomeChallengeFailed
	default:
		return OutcomeInternalError
	}
}

// Succeeded creates a success result
func Succeeded(message string) *Result {
	return &Result{Success: true, Message: message}
}

// ValidationFailed creates a result carrying a field error tree
func ValidationFailed(errors *ErrorTree) *Result {
	return &Result{Code: CodeInvalidRequestBody, Message: MessageInvalidRequestBody, Errors: errors}
}

// ChallengeFailed creates a challenge failure result
func ChallengeFailed(message string) *Result {
	return &Result{Code: CodeChallengeFailed, Message: message}
}

// InternalError creates the generic failure result; it never carries detail
func InternalError() *Result {
	return &Result{Code: CodeInternalError, Message: MessageInternalError}
}

// ErrorTree is a nested field-error mapping. Errors holds messages for this
// node; Properties holds child fields by name.
type ErrorTree struct {
	Errors     []string              `json:"errors"`
	Properties map[string]*ErrorTree `json:"properties,omitempty"`
}

// NewErrorTree creates an empty tree
func NewErrorTree() *ErrorTree {
	return &ErrorTree{Errors: []string{}}
}

// Add records msg at path, creating intermediate nodes
func (t *ErrorTree) Add(path []string, msg string) {
	node := t
	for _, segment := range path {
		if node.Properties == nil {
			node.Properties = make(map[string]*ErrorTree)
		}
		child, ok := node.Properties[segment]
		if !ok {
			child = NewErrorTree()
			node.Properties[segment] = child
		}
		node = child
	}
	node.Errors = append(node.Errors, msg)
}

// Field returns the messages recorded for a top-level field
func (t *ErrorTree) Field(field Field) []string {
	if t == nil || t.Properties == nil {
		return nil
	}
	if child, ok := t.Properties[string(field)]; ok {
		return child.Errors
	}
	return nil
}

// Empty reports whether the tree holds no messages at any depth
func (t *ErrorTree) Empty() bool {
	if t == nil {
		return true
	}
	if len(t.Errors) > 0 {
		return false
	}
	for _, child := range t.Properties {
		if !child.Empty() {
			return false
		}
	}
	return true
}
