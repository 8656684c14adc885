package contactform

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names a user-editable form field
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Fields lists the form fields in display order
var Fields = []Field{FieldName, FieldEmail, FieldSubject, FieldMessage}

// FormValues holds the user-entered contact fields
type FormValues struct {
	Name    string `json:"name" validate:"min=2,max=32,alphaspace"`
	Email   string `json:"email" validate:"email"`
	Subject string `json:"subject,omitempty" validate:"max=128"`
	Message string `json:"message" validate:"min=1,max=2048"`
}

// Get returns the value of field
func (v FormValues) Get(field Field) string {
	switch field {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldSubject:
		return v.Subject
	case FieldMessage:
		return v.Message
	default:
		return ""
	}
}

// Set returns a copy of v with field set to value
func (v FormValues) Set(field Field, value string) FormValues {
	switch field {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldSubject:
		v.Subject = value
	case FieldMessage:
		v.Message = value
	}
	return v
}

var alphaSpaceRegex = regexp.MustCompile(`^[\p{L}\s]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool { //nolint:errcheck // tag name is static
		return alphaSpaceRegex.MatchString(fl.Field().String())
	})
	return v
}

// fieldRules maps a field to its validate tag on FormValues
var fieldRules = func() map[Field]string {
	rules := make(map[Field]string, len(Fields))
	t := reflect.TypeOf(FormValues{})
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		rules[Field(name)] = sf.Tag.Get("validate")
	}
	return rules
}()

// fieldMessages holds user-facing messages per field and failed rule
var fieldMessages = map[Field]map[string]string{
	FieldName: {
		"min":        "Name must be between 2-32 characters",
		"max":        "Name must be between 2-32 characters",
		"alphaspace": "Name can only include alphabetical characters",
	},
	FieldEmail: {
		"email": "Invalid email address",
	},
	FieldSubject: {
		"max": "Subject must be less than 128 characters long",
	},
	FieldMessage: {
		"min": "Message is required",
		"max": "Message must be less than 2048 characters long.",
	},
}

// Validate checks all fields and returns nil when the values are valid
func Validate(values FormValues) *ErrorTree {
	err := validate.Struct(values)
	if err == nil {
		return nil
	}

	tree := NewErrorTree()
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		tree.Errors = append(tree.Errors, "Invalid Request Body")
		return tree
	}

	for _, fe := range validationErrors {
		path := strings.Split(fe.Namespace(), ".")
		if len(path) > 1 {
			path = path[1:] // drop the root struct name
		}
		tree.Add(path, errorMessage(Field(fe.Field()), fe))
	}

	return tree
}

// ValidateField checks a single field, returning the first error message
func ValidateField(field Field, value string) (string, bool) {
	rule, ok := fieldRules[field]
	if !ok {
		return "", true
	}

	err := validate.Var(value, rule)
	if err == nil {
		return "", true
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		return errorMessage(field, validationErrors[0]), false
	}
	return string(field) + " is invalid", false
}

func errorMessage(field Field, fe validator.FieldError) string {
	if msg, ok := fieldMessages[field][fe.Tag()]; ok {
		return msg
	}

	name := string(field)
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return name + " must be at least " + fe.Param() + " characters"
	case "max":
		return name + " must not exceed " + fe.Param() + " characters"
	default:
		return name + " is invalid"
	}
}
