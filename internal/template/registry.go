package template

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Built-in real estate document templates. Patterns are compiled once at
// package init; Lookup never fails for unknown tags, it returns the empty
// template sentinel instead.

var (
	registryMu sync.RWMutex
	registry   = map[string]*Template{
		"rent_roll": {
			DocumentType:   "rent_roll",
			Fields:         []string{"unit_number", "tenant_name", "rent_amount", "lease_start", "lease_end", "sqft"},
			RequiredFields: []string{"unit_number", "tenant_name", "rent_amount"},
			OptionalFields: []string{"lease_start", "lease_end", "sqft"},
			Layout:         LayoutTable,
			Patterns: compilePatterns(map[string]string{
				"unit_number": `^[A-Za-z]?\d{1,4}[A-Za-z]?$`,
				"tenant_name": `^[A-Za-z][A-Za-z\s.,'&-]{1,60}$`,
				"rent_amount": `^\$?[\d,]+(?:\.\d{2})?$`,
				"lease_start": `^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`,
				"lease_end":   `^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`,
				"sqft":        `^[\d,]+$`,
			}),
		},
		"offering_memo": {
			DocumentType:   "offering_memo",
			Fields:         []string{"property_name", "address", "price", "cap_rate", "noi", "sqft"},
			RequiredFields: []string{"property_name", "address", "price"},
			OptionalFields: []string{"cap_rate", "noi", "sqft"},
			Layout:         LayoutForm,
			Patterns: compilePatterns(map[string]string{
				"property_name": `^[A-Za-z0-9][A-Za-z0-9\s.,'&-]{2,80}$`,
				"address":       `\d+\s+\w+.*(?:Street|Avenue|Boulevard|Drive|Road|Lane|St|Ave|Blvd|Dr|Rd|Ln)`,
				"price":         `^\$?[\d,]+(?:\.\d{2})?[KMB]?$`,
				"cap_rate":      `^\d{1,2}(?:\.\d{1,2})?%?$`,
				"noi":           `^\$?[\d,]+(?:\.\d{2})?$`,
				"sqft":          `^[\d,]+$`,
			}),
		},
		"lease_agreement": {
			DocumentType:   "lease_agreement",
			Fields:         []string{"tenant_name", "landlord_name", "property_address", "monthly_rent", "lease_term", "security_deposit"},
			RequiredFields: []string{"tenant_name", "property_address", "monthly_rent"},
			OptionalFields: []string{"landlord_name", "lease_term", "security_deposit"},
			Layout:         LayoutForm,
			Patterns: compilePatterns(map[string]string{
				"tenant_name":      `^[A-Za-z][A-Za-z\s.,'&-]{1,60}$`,
				"landlord_name":    `^[A-Za-z][A-Za-z\s.,'&-]{1,60}$`,
				"property_address": `\d+\s+\w+.*(?:Street|Avenue|Boulevard|Drive|Road|Lane|St|Ave|Blvd|Dr|Rd|Ln)`,
				"monthly_rent":     `^\$?[\d,]+(?:\.\d{2})?$`,
				"lease_term":       `^\d{1,3}\s*(?:months?|years?)$`,
				"security_deposit": `^\$?[\d,]+(?:\.\d{2})?$`,
			}),
		},
		"comparable_sales": {
			DocumentType:   "comparable_sales",
			Fields:         []string{"property_address", "sale_price", "sale_date", "sqft", "price_per_sqft"},
			RequiredFields: []string{"property_address", "sale_price"},
			OptionalFields: []string{"sale_date", "sqft", "price_per_sqft"},
			Layout:         LayoutTable,
			Patterns: compilePatterns(map[string]string{
				"property_address": `\d+\s+\w+.*(?:Street|Avenue|Boulevard|Drive|Road|Lane|St|Ave|Blvd|Dr|Rd|Ln)`,
				"sale_price":       `^\$?[\d,]+(?:\.\d{2})?$`,
				"sale_date":        `^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`,
				"sqft":             `^[\d,]+$`,
				"price_per_sqft":   `^\$?\d+(?:\.\d{2})?$`,
			}),
		},
	}

	emptyTemplate = &Template{DocumentType: "unknown", Layout: LayoutForm}
)

func compilePatterns(src map[string]string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(src))
	for field, expr := range src {
		out[field] = regexp.MustCompile(expr)
	}
	return out
}

// Lookup returns the template for a document type tag. Unknown tags resolve
// to the empty-template sentinel rather than an error.
func Lookup(documentType string) *Template {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if t, ok := registry[documentType]; ok {
		return t
	}
	return emptyTemplate
}

// Known returns the registered document type tags.
func Known() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// Register adds or replaces a template in the registry.
func Register(t *Template) {
	if t == nil || t.DocumentType == "" {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.DocumentType] = t
}

// templateYAML is the on-disk override format.
type templateYAML struct {
	DocumentType   string            `yaml:"document_type"`
	Fields         []string          `yaml:"fields"`
	RequiredFields []string          `yaml:"required_fields"`
	OptionalFields []string          `yaml:"optional_fields"`
	Layout         string            `yaml:"layout"`
	Patterns       map[string]string `yaml:"patterns"`
}

// LoadFile reads template overrides from a YAML file and registers them.
// The file holds a list of templates.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template file: %w", err)
	}
	var entries []templateYAML
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse template file: %w", err)
	}
	for _, e := range entries {
		t, err := fromYAML(e)
		if err != nil {
			return err
		}
		Register(t)
	}
	return nil
}

func fromYAML(e templateYAML) (*Template, error) {
	if e.DocumentType == "" {
		return nil, fmt.Errorf("template entry missing document_type")
	}
	layout := Layout(e.Layout)
	switch layout {
	case LayoutTable, LayoutForm, LayoutList:
	case "":
		layout = LayoutForm
	default:
		return nil, fmt.Errorf("template %s: unknown layout %q", e.DocumentType, e.Layout)
	}
	patterns := make(map[string]*regexp.Regexp, len(e.Patterns))
	for field, expr := range e.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("template %s: pattern %s: %w", e.DocumentType, field, err)
		}
		patterns[field] = re
	}
	return &Template{
		DocumentType:   e.DocumentType,
		Fields:         e.Fields,
		RequiredFields: e.RequiredFields,
		OptionalFields: e.OptionalFields,
		Layout:         layout,
		Patterns:       patterns,
	}, nil
}
