// Package template defines per-document-type extraction templates: the
// expected field set, the page layout class, and validation patterns used by
// region classification and quality scoring.
package template

import (
	"regexp"
)

// Layout describes the dominant page structure of a document type.
type Layout string

const (
	LayoutTable Layout = "table"
	LayoutForm  Layout = "form"
	LayoutList  Layout = "list"
)

// Template describes one document type.
type Template struct {
	DocumentType   string
	Fields         []string
	RequiredFields []string
	OptionalFields []string
	Layout         Layout
	Patterns       map[string]*regexp.Regexp
}

// Empty reports whether this is the empty-template sentinel for an unknown
// document type.
func (t *Template) Empty() bool {
	return len(t.Fields) == 0
}

// HasField reports whether the template expects the given field.
func (t *Template) HasField(name string) bool {
	for _, f := range t.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Pattern returns the validation pattern for a field, or nil.
func (t *Template) Pattern(field string) *regexp.Regexp {
	if t.Patterns == nil {
		return nil
	}
	return t.Patterns[field]
}

// HasNumericField reports whether any expected field carries an amount-like
// name (rent, price, amount, sqft). Used by aspect-ratio classification
// fallbacks.
func (t *Template) HasNumericField() bool {
	for _, f := range t.Fields {
		if isNumericFieldName(f) {
			return true
		}
	}
	return false
}

// NumericField returns the first amount-like field name, or "".
func (t *Template) NumericField() string {
	for _, f := range t.Fields {
		if isNumericFieldName(f) {
			return f
		}
	}
	return ""
}

func isNumericFieldName(name string) bool {
	switch name {
	case "rent_amount", "sale_price", "price", "monthly_rent", "security_deposit",
		"sqft", "noi", "cap_rate", "price_per_sqft":
		return true
	}
	return false
}
