package user

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is a user as held by the remote store.
// The wire name of ID is "key".
type Record struct {
	ID      string `json:"key"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// Input is the request body for create and full update.
// It is a Record without the identifier.
type Input struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// Patch is the request body for a partial update. Nil fields are left unchanged.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Age     *int    `json:"age,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Country *string `json:"country,omitempty"`
}

// Input returns the record's fields without its ID.
func (r Record) Input() Input {
	return Input{Name: r.Name, Age: r.Age, Phone: r.Phone, Country: r.Country}
}

// WithInput returns a copy of r carrying the fields of in. The ID is kept.
func (r Record) WithInput(in Input) Record {
	return Record{ID: r.ID, Name: in.Name, Age: in.Age, Phone: in.Phone, Country: in.Country}
}

// Apply returns a copy of r with the non-nil fields of p applied.
func (r Record) Apply(p Patch) Record {
	out := r
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Age != nil {
		out.Age = *p.Age
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Phone == nil && p.Country == nil
}

// Draft is the in-progress form state for a record being created or edited.
type Draft struct {
	Name    string `json:"name" yaml:"name"`
	Age     string `json:"age" yaml:"age"`
	Phone   string `json:"phone" yaml:"phone"`
	Country string `json:"country" yaml:"country"`
}

// DraftFrom seeds a draft from an existing record.
func DraftFrom(r Record) Draft {
	return Draft{
		Name:    r.Name,
		Age:     strconv.Itoa(r.Age),
		Phone:   r.Phone,
		Country: r.Country,
	}
}

// Get returns the raw value of a field.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldAge:
		return d.Age
	case FieldPhone:
		return d.Phone
	case FieldCountry:
		return d.Country
	}
	return ""
}

// Set returns a copy of the draft with field f set to value.
func (d Draft) Set(f Field, value string) (Draft, error) {
	switch f {
	case FieldName:
		d.Name = value
	case FieldAge:
		d.Age = value
	case FieldPhone:
		d.Phone = value
	case FieldCountry:
		d.Country = value
	default:
		return d, fmt.Errorf("unknown field %q", f)
	}
	return d, nil
}

// Input converts a draft into a request body. Strings are NFC-normalized and
// trimmed. The draft is expected to have passed validation; an unparsable
// age is reported as an error rather than coerced to zero.
func (d Draft) Input() (Input, error) {
	age, err := strconv.Atoi(strings.TrimSpace(d.Age))
	if err != nil {
		return Input{}, fmt.Errorf("age %q: %w", d.Age, err)
	}
	return Input{
		Name:    Clean(d.Name),
		Age:     age,
		Phone:   Clean(d.Phone),
		Country: strings.ToUpper(Clean(d.Country)),
	}, nil
}

// Clean NFC-normalizes and trims s.
func Clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
