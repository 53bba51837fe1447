package openapi

import (
	"slices"
	"sort"
)

// Records are the documented operations in generation order.
type Records []Record

// Tagged returns the records that carry all the tags provided.
func (rs Records) Tagged(tags ...string) Records {
	out := make(Records, 0, len(rs))

	for _, r := range rs {
		if len(r.Tags) < len(tags) {
			continue
		}

		hasAllTags := true
		for _, required := range tags {
			if !slices.Contains(r.Tags, required) {
				hasAllTags = false
				break
			}
		}

		if hasAllTags {
			out = append(out, r)
		}
	}

	return out
}

// Find returns the record documenting method on path.
func (rs Records) Find(method string, path string) (Record, bool) {
	key := toKey(method, path)
	for _, r := range rs {
		if toKey(r.Method, r.Path) == key {
			return r, true
		}
	}

	return Record{}, false
}

// Endpoints returns the sorted, unique "METHOD path" keys of the records,
// each passed through transform.
func (rs Records) Endpoints(transform func(string) string) []string {
	unique := make(map[string]bool, len(rs))
	for _, r := range rs {
		unique[transform(toKey(r.Method, r.Path))] = true
	}

	keys := make([]string, 0, len(unique))
	for key := range unique {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func toKey(method, path string) string {
	return method + " " + path
}
