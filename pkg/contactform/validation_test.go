package contactform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validValues() FormValues {
	return FormValues{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "Hello",
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(validValues()))

	v := validValues()
	v.Name = "Zoë Ångström"
	v.Subject = strings.Repeat("s", 128)
	v.Message = strings.Repeat("m", 2048)
	assert.Nil(t, Validate(v))
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FormValues)
		field   Field
		message string
	}{
		{"name too short", func(v *FormValues) { v.Name = "J" }, FieldName, "Name must be between 2-32 characters"},
		{"name too long", func(v *FormValues) { v.Name = strings.Repeat("a", 33) }, FieldName, "Name must be between 2-32 characters"},
		{"name with digits", func(v *FormValues) { v.Name = "R2D2" }, FieldName, "Name can only include alphabetical characters"},
		{"email invalid", func(v *FormValues) { v.Email = "not-an-email" }, FieldEmail, "Invalid email address"},
		{"email empty", func(v *FormValues) { v.Email = "" }, FieldEmail, "Invalid email address"},
		{"subject too long", func(v *FormValues) { v.Subject = strings.Repeat("s", 129) }, FieldSubject, "Subject must be less than 128 characters long"},
		{"message empty", func(v *FormValues) { v.Message = "" }, FieldMessage, "Message is required"},
		{"message too long", func(v *FormValues) { v.Message = strings.Repeat("m", 2049) }, FieldMessage, "Message must be less than 2048 characters long."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			tt.mutate(&v)

			tree := Validate(v)
			require.NotNil(t, tree)
			assert.Equal(t, []string{tt.message}, tree.Field(tt.field))
			assert.Empty(t, tree.Errors)
			assert.Len(t, tree.Properties, 1)
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	tree := Validate(FormValues{Name: "J", Email: "x", Message: ""})
	require.NotNil(t, tree)

	assert.NotEmpty(t, tree.Field(FieldName))
	assert.NotEmpty(t, tree.Field(FieldEmail))
	assert.NotEmpty(t, tree.Field(FieldMessage))
	assert.Empty(t, tree.Field(FieldSubject))
}

func TestValidateField(t *testing.T) {
	msg, ok := ValidateField(FieldName, "Jane")
	assert.True(t, ok)
	assert.Empty(t, msg)

	msg, ok = ValidateField(FieldName, "Jane3")
	assert.False(t, ok)
	assert.Equal(t, "Name can only include alphabetical characters", msg)

	msg, ok = ValidateField(FieldSubject, "")
	assert.True(t, ok, "subject is optional")
	assert.Empty(t, msg)

	_, ok = ValidateField(Field("phone"), "anything")
	assert.True(t, ok)
}

func TestValidateField_LengthCountsRunes(t *testing.T) {
	// U+20000 is one rune but two UTF-16 code units
	const extB = "\U00020000"

	_, ok := ValidateField(FieldName, strings.Repeat(extB, 32))
	assert.True(t, ok)

	_, ok = ValidateField(FieldName, strings.Repeat(extB, 33))
	assert.False(t, ok)

	_, ok = ValidateField(FieldName, extB)
	assert.False(t, ok)
}

func TestFormValues_GetSet(t *testing.T) {
	v := FormValues{}
	updated := v.Set(FieldEmail, "a@b.co")

	assert.Empty(t, v.Email, "Set returns a copy")
	assert.Equal(t, "a@b.co", updated.Get(FieldEmail))
	assert.Empty(t, updated.Get(Field("unknown")))
}
