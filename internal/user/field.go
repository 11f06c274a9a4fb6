package user

// Field names a form field. The value doubles as the JSON field name.
type Field string

const (
	FieldName    Field = "name"
	FieldAge     Field = "age"
	FieldPhone   Field = "phone"
	FieldCountry Field = "country"
)

// Fields lists the form fields in display order.
var Fields = []Field{FieldName, FieldAge, FieldPhone, FieldCountry}

// Descriptor describes how a field is presented and entered.
type Descriptor struct {
	Field       Field
	Label       string
	Placeholder string
	MaxLength   int // 0 means unlimited
	Numeric     bool
	Options     []Country // non-nil for select fields
}

// Descriptors returns the field descriptors in display order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{Field: FieldName, Label: "Name", Placeholder: "Enter your full name", MaxLength: 50},
		{Field: FieldAge, Label: "Age", Placeholder: "Enter your age", Numeric: true},
		{Field: FieldPhone, Label: "Phone", Placeholder: "+374 XX XXX XXX"},
		{Field: FieldCountry, Label: "Country", Placeholder: "Select a country", Options: Countries()},
	}
}

// ParseField converts a string into a known field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
