package jsonapi

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Sort orientations. Ascending is the default and carries no prefix.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Sort orders a collection by one attribute.
type Sort struct {
	Attribute   string
	Orientation string
}

func (s Sort) String() string {
	if strings.EqualFold(s.Orientation, Desc) {
		return "-" + s.Attribute
	}
	return s.Attribute
}

// Values is an insertion-ordered set of query parameters.
type Values = orderedmap.OrderedMap[string, string]

// Pairs builds Values from alternating keys and values. A trailing key
// without a value is dropped.
func Pairs(kv ...string) *Values {
	v := orderedmap.New[string, string]()
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}

	return v
}

// Filter is either a raw expression, sent as filter=expr, or a set of
// fields, sent as one filter[key]=value pair each.
type Filter struct {
	Expr   string
	Fields *Values
}

func FilterExpr(expr string) *Filter {
	return &Filter{Expr: expr}
}

func FilterBy(kv ...string) *Filter {
	return &Filter{Fields: Pairs(kv...)}
}

type urlParams struct {
	attributes   []string
	sort         []Sort
	filter       *Filter
	customParams *Values
	path         string
	action       string
	resourceID   string
}

// buildURL composes base/[path/][id/][action/][?suffixes]. The query suffixes
// always come in the same order: sparse fieldset, sort, filter, then custom
// parameters.
func (c *Client) buildURL(dataType string, dataID string, p urlParams) string {
	var url strings.Builder
	url.WriteString(c.baseURL)

	id := p.resourceID
	if id == "" {
		id = dataID
	}

	for _, segment := range []string{p.path, id, p.action} {
		if segment != "" {
			url.WriteString(segment)
			url.WriteString("/")
		}
	}

	var suffixes []string

	if len(p.attributes) > 0 {
		suffixes = append(suffixes, "fields["+dataType+"]="+strings.Join(p.attributes, ","))
	}

	if len(p.sort) > 0 {
		sorts := make([]string, 0, len(p.sort))
		for _, s := range p.sort {
			sorts = append(sorts, s.String())
		}
		suffixes = append(suffixes, "sort="+strings.Join(sorts, ","))
	}

	if p.filter != nil {
		if p.filter.Fields != nil && p.filter.Fields.Len() > 0 {
			for pair := p.filter.Fields.Oldest(); pair != nil; pair = pair.Next() {
				suffixes = append(suffixes, "filter["+pair.Key+"]="+pair.Value)
			}
		} else if p.filter.Expr != "" {
			suffixes = append(suffixes, "filter="+p.filter.Expr)
		}
	}

	if p.customParams != nil {
		for pair := p.customParams.Oldest(); pair != nil; pair = pair.Next() {
			suffixes = append(suffixes, pair.Key+"="+pair.Value)
		}
	}

	if len(suffixes) > 0 {
		url.WriteString("?")
		url.WriteString(strings.Join(suffixes, "&"))
	}

	return url.String()
}
