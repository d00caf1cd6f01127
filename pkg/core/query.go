package core

import (
	"fmt"
	"reflect"
	"strings"
)

// FilterType selects the comparison operator of a Filter.
type FilterType string

// FilterEquals matches documents whose property is strictly equal to the value.
const FilterEquals FilterType = "equals"

// Filter is a predicate on a single document property.
type Filter struct {
	Type     FilterType `json:"type" yaml:"type"`
	Property string     `json:"property" yaml:"property"`
	Value    any        `json:"value" yaml:"value"`
}

// Equals is shorthand for an equality filter.
func Equals(property string, value any) Filter {
	return Filter{Type: FilterEquals, Property: property, Value: value}
}

// Query is a validated, ready to evaluate set of filters for one document type.
type Query struct {
	docType    string
	predicates []predicate
}

type predicate func(Document) bool

// CompileQuery validates filters and prepares them for evaluation.
// A malformed or unsupported filter fails the whole query.
func CompileQuery(docType string, filters []Filter) (*Query, error) {
	q := &Query{docType: docType, predicates: make([]predicate, 0, len(filters))}
	for i, f := range filters {
		p, err := compileFilter(f)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %d: %v", ErrInvalidInput, i, err)
		}
		q.predicates = append(q.predicates, p)
	}
	return q, nil
}

func compileFilter(f Filter) (predicate, error) {
	if f.Type == "" {
		return nil, fmt.Errorf("missing type")
	}
	if f.Property == "" {
		return nil, fmt.Errorf("missing property")
	}
	if f.Value == nil {
		return nil, fmt.Errorf("missing value")
	}
	if s, ok := f.Value.(string); ok && s == "" {
		return nil, fmt.Errorf("missing value")
	}

	switch FilterType(strings.ToLower(string(f.Type))) {
	case FilterEquals:
		want, err := normalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("value is not JSON-representable: %v", err)
		}
		prop := f.Property
		return func(doc Document) bool {
			got, ok := doc[prop]
			if !ok {
				return false
			}
			return jsonEqual(got, want)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported filter type %q", f.Type)
	}
}

// Match reports whether doc belongs to the query's type and satisfies every filter.
func (q *Query) Match(doc Document) bool {
	if doc.Type() != q.docType {
		return false
	}
	for _, p := range q.predicates {
		if !p(doc) {
			return false
		}
	}
	return true
}

// jsonEqual compares two normalized JSON values. Scalars compare by type and
// value, so "30" never equals 30.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case string, float64, bool:
		return a == b
	case nil:
		return b == nil
	default:
		return reflect.DeepEqual(av, b)
	}
}
