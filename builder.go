package jsonapi

import (
	"fmt"
	"net/http"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var actionMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
	http.MethodGet:    true,
}

// reserved query parameters are composed from Params fields, never from
// custom parameters.
var reserved = []string{"fields", "sort", "filter"}

// Query assembles Params step by step:
//
//	p, err := jsonapi.NewQuery().
//		Model(dogs).
//		Fields("age").
//		SortBy("age", jsonapi.Desc).
//		Where("age", "2").
//		Params()
type Query struct {
	params Params
	errs   []error
}

func NewQuery() *Query {
	return &Query{}
}

// For sets the resource whose type and id drive the request.
func (q *Query) For(resource any) *Query {
	q.params.Resource = resource
	return q
}

// ForEach sets the resources a custom action sends as an array.
func (q *Query) ForEach(resources ...any) *Query {
	q.params.Resources = append(q.params.Resources, resources...)
	return q
}

func (q *Query) Model(t *Type) *Query {
	q.params.Model = t
	return q
}

// Type overrides the wire type and the path.
func (q *Query) Type(wire string) *Query {
	q.params.Type = wire
	return q
}

func (q *Query) ID(id string) *Query {
	q.params.ID = id
	return q
}

// Fields adds to the sparse fieldset.
func (q *Query) Fields(attrs ...string) *Query {
	q.params.Attributes = append(q.params.Attributes, attrs...)
	return q
}

// SortBy appends a sort key. The orientation is Asc or Desc.
func (q *Query) SortBy(attr string, orientation string) *Query {
	orientation = strings.ToLower(orientation)
	if orientation != Asc && orientation != Desc {
		q.errs = append(q.errs, fmt.Errorf("sort %s: unknown orientation %q", attr, orientation))
		return q
	}
	q.params.Sort = append(q.params.Sort, Sort{Attribute: attr, Orientation: orientation})
	return q
}

// Where adds a filter[key]=value pair. Field filters and an expression
// cannot be combined.
func (q *Query) Where(key string, value string) *Query {
	if q.params.Filter != nil && q.params.Filter.Expr != "" {
		q.errs = append(q.errs, fmt.Errorf("filter %s: query already filters by expression", key))
		return q
	}
	if q.params.Filter == nil {
		q.params.Filter = &Filter{}
	}
	if q.params.Filter.Fields == nil {
		q.params.Filter.Fields = orderedmap.New[string, string]()
	}
	q.params.Filter.Fields.Set(key, value)
	return q
}

// FilterExpr sets a raw filter=expr.
func (q *Query) FilterExpr(expr string) *Query {
	if q.params.Filter != nil && q.params.Filter.Fields != nil {
		q.errs = append(q.errs, fmt.Errorf("filter expression: query already filters by field"))
		return q
	}
	q.params.Filter = FilterExpr(expr)
	return q
}

// Param adds a custom query parameter. Later values replace earlier ones but
// keep their position.
func (q *Query) Param(key string, value string) *Query {
	for _, r := range reserved {
		if key == r || strings.HasPrefix(key, r+"[") {
			q.errs = append(q.errs, fmt.Errorf("param %s: reserved, use the dedicated builder method", key))
			return q
		}
	}
	if q.params.CustomParams == nil {
		q.params.CustomParams = orderedmap.New[string, string]()
	}
	q.params.CustomParams.Set(key, value)
	return q
}

// Action names the custom action appended to the path.
func (q *Query) Action(action string) *Query {
	q.params.Action = strings.Trim(action, "/")
	return q
}

// Method sets the method of a custom action.
func (q *Query) Method(method string) *Query {
	method = strings.ToUpper(method)
	if !actionMethods[method] {
		q.errs = append(q.errs, fmt.Errorf("method %q is not supported", method))
		return q
	}
	q.params.Method = method
	return q
}

func (q *Query) Meta(key string, val any) *Query {
	if q.params.Meta == nil {
		q.params.Meta = make(map[string]any)
	}
	q.params.Meta[key] = val
	return q
}

// Extra hands a value to custom path builders.
func (q *Query) Extra(key string, val string) *Query {
	if q.params.Extra == nil {
		q.params.Extra = make(map[string]string)
	}
	q.params.Extra[key] = val
	return q
}

// Params returns the assembled Params, or the first mistake made while
// building them.
func (q *Query) Params() (Params, error) {
	if len(q.errs) > 0 {
		return Params{}, q.errs[0]
	}
	if q.params.Method != "" && q.params.Action == "" {
		return Params{}, fmt.Errorf("method %s is only used by custom actions", q.params.Method)
	}
	return q.params, nil
}

// MustParams is Params panicking on error.
func (q *Query) MustParams() Params {
	p, err := q.Params()
	if err != nil {
		panic(err)
	}
	return p
}
