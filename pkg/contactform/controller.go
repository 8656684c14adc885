package contactform

import (
	"errors"

	"github.com/menmadev/portfolio-api/pkg/challenge"
)

var (
	// ErrNotReady is returned by Begin when a field is invalid or no token is held
	ErrNotReady = errors.New("form is not ready to submit")
	// ErrSubmitting is returned by Begin while a submission is pending
	ErrSubmitting = errors.New("submission already in progress")
)

// State is the controller's UI state
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return "failed"
	}
}

// Submission is the payload handed to the transport when a submit begins
type Submission struct {
	Values   FormValues
	Provider challenge.Provider
	Token    string
}

// Controller drives the contact form: field values, per-field errors,
// challenge session and submit state. It is single-threaded; callers feed it
// input events and submission results in order.
type Controller struct {
	values  FormValues
	touched map[Field]bool
	errors  map[Field]string
	session *ChallengeSession

	state   State
	code    Code
	message string
}

// NewController creates a controller with empty fields on the primary provider
func NewController() *Controller {
	return &Controller{
		touched: make(map[Field]bool),
		errors:  make(map[Field]string),
		session: NewChallengeSession(),
	}
}

// Change records a new value. Fields are only revalidated on change once
// they have been validated on blur.
func (c *Controller) Change(field Field, value string) {
	c.values = c.values.Set(field, value)
	if c.touched[field] {
		c.validate(field)
	}
}

// Blur validates field and marks it touched
func (c *Controller) Blur(field Field) {
	c.touched[field] = true
	c.validate(field)
}

func (c *Controller) validate(field Field) {
	if msg, ok := ValidateField(field, c.values.Get(field)); !ok {
		c.errors[field] = msg
		return
	}
	delete(c.errors, field)
}

// FieldError returns the current error for field, if any
func (c *Controller) FieldError(field Field) (string, bool) {
	msg, ok := c.errors[field]
	return msg, ok
}

// Values returns the current field values
func (c *Controller) Values() FormValues {
	return c.values
}

// Session returns the challenge session driven by the widget callbacks
func (c *Controller) Session() *ChallengeSession {
	return c.session
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// FailureCode returns the code of the last failed result
func (c *Controller) FailureCode() Code {
	return c.code
}

// Message returns the message to surface for the last result
func (c *Controller) Message() string {
	return c.message
}

// CanSubmit reports whether every field passes its rule and a token is held
func (c *Controller) CanSubmit() bool {
	if c.state == StateSubmitting || !c.session.HasToken() {
		return false
	}
	for _, field := range Fields {
		if _, ok := ValidateField(field, c.values.Get(field)); !ok {
			return false
		}
	}
	return true
}

// Begin moves to Submitting and returns the payload to send
func (c *Controller) Begin() (*Submission, error) {
	if c.state == StateSubmitting {
		return nil, ErrSubmitting
	}
	if !c.CanSubmit() {
		return nil, ErrNotReady
	}

	c.state = StateSubmitting
	c.code = ""
	c.message = ""

	return &Submission{
		Values:   c.values,
		Provider: c.session.Provider(),
		Token:    c.session.Token(),
	}, nil
}

// Resolve applies a submission result. The challenge token is consumed by
// every submission and is always cleared. A challenge failure falls back to
// the secondary provider once; a second one returns ErrNoMoreFallback.
// Results arriving after ScrollOut only affect the challenge session. A nil
// result is handled like Fail.
func (c *Controller) Resolve(result *Result) error {
	if result == nil {
		c.Fail()
		return nil
	}

	pending := c.state == StateSubmitting
	c.session.Reset()

	var err error
	if result.Outcome() == OutcomeChallengeFailed {
		err = c.session.Fallback()
	}

	if !pending {
		return err
	}

	c.message = result.Message
	if result.Outcome() == OutcomeSuccess {
		c.state = StateSucceeded
		c.code = ""
		c.clearFields()
		return nil
	}

	c.state = StateFailed
	c.code = result.Code
	if result.Code == "" {
		c.code = CodeInternalError
	}

	// Surface server-side field errors without touching entered values
	if result.Errors != nil {
		for _, field := range Fields {
			if msgs := result.Errors.Field(field); len(msgs) > 0 {
				c.touched[field] = true
				c.errors[field] = msgs[0]
			}
		}
	}

	return err
}

// Fail records a transport failure of a pending submission as an internal error
func (c *Controller) Fail() {
	if c.state != StateSubmitting {
		return
	}
	c.session.Reset()
	c.state = StateFailed
	c.code = CodeInternalError
	c.message = MessageInternalError
}

// Edit returns from a finished result to Editing, keeping field values
func (c *Controller) Edit() {
	if c.state == StateSucceeded || c.state == StateFailed {
		c.state = StateEditing
	}
}

// ScrollOut resets the form when the section leaves the viewport,
// regardless of any pending submission
func (c *Controller) ScrollOut() {
	c.clearFields()
	c.session.Reset()
	c.state = StateEditing
	c.code = ""
	c.message = ""
}

func (c *Controller) clearFields() {
	c.values = FormValues{}
	c.touched = make(map[Field]bool)
	c.errors = make(map[Field]string)
}
