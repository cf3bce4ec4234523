// Package query converts raw, untrusted list-query parameters (page, limit,
// sortby, populate) into a normalized Plan that the persistence layer can
// execute. The builder is pure and stateless; it is safe to share across
// concurrent requests.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Defaults applied when a parameter is absent or fails to parse.
const (
	DefaultLimit    = 10
	DefaultPage     = 1
	DefaultSort     = "name"
	DefaultMaxLimit = 100
)

// descPrefix marks a descending sort, e.g. "DescCreatedAt".
const descPrefix = "Desc"

// ErrInvalidSort is returned when the requested sort field is not in the
// entity's allow-list. The API layer maps it to a 400 response.
var ErrInvalidSort = errors.New("unsupported sort field")

// SortOrder is the direction of a sort clause.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Params holds the raw query-string values as received from the client.
// Empty strings mean the parameter was absent.
type Params struct {
	Page     string
	Limit    string
	SortBy   string
	Populate string
}

// IncludeSpec is one node of the relation-inclusion graph. Nested specs are
// loaded one level inside their parent relation.
type IncludeSpec struct {
	Relation string
	Nested   []IncludeSpec
}

// Plan is the normalized result of interpreting list-query parameters.
// It is a transient value object: built fresh per request, never mutated,
// consumed once by the query executor.
//
// SortField preserves the client's spelling (after the Desc prefix is
// stripped); SortColumn is the resolved database column the executor must
// use, so untrusted input never reaches SQL.
type Plan struct {
	Limit      int
	Offset     int
	SortField  string
	SortColumn string
	SortOrder  SortOrder
	Includes   []IncludeSpec
}

// Builder turns Params into Plans. The zero value is not usable; construct
// with NewBuilder.
type Builder struct {
	defaultLimit int
	maxLimit     int
}

// NewBuilder creates a Builder that falls back to defaultLimit when the
// limit parameter is absent or unparseable and clamps resolved limits to
// maxLimit. Non-positive values fall back to the package defaults.
func NewBuilder(defaultLimit, maxLimit int) *Builder {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = DefaultMaxLimit
	}
	return &Builder{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// ForList builds the full Plan for a collection endpoint. The returned page
// is reported back to clients in response metadata.
//
// Pagination and populate never fail: anything unparseable falls back to a
// default, and unrecognized populate tokens are ignored. Only an unknown
// sort field is an error.
func (b *Builder) ForList(params Params, schema *RelationSchema) (Plan, int, error) {
	page := resolveInt(params.Page, DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := resolveInt(params.Limit, b.defaultLimit)
	if limit < 1 {
		limit = b.defaultLimit
	}
	if limit > b.maxLimit {
		limit = b.maxLimit
	}

	field, order := resolveSort(params.SortBy)
	column, ok := schema.SortColumn(field)
	if !ok {
		return Plan{}, 0, fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}

	return Plan{
		Limit:      limit,
		Offset:     (page - 1) * limit,
		SortField:  field,
		SortColumn: column,
		SortOrder:  order,
		Includes:   b.ForSingle(params, schema),
	}, page, nil
}

// ForSingle resolves only the include graph, for single-record fetches where
// pagination and sort do not apply. It never fails: unrecognized tokens are
// silently dropped.
func (b *Builder) ForSingle(params Params, schema *RelationSchema) []IncludeSpec {
	tokens := splitPopulate(params.Populate)
	if len(tokens) == 0 {
		return nil
	}
	return resolveIncludes(schema.Relations, tokens)
}

// resolveInt parses raw as a base-10 integer, falling back to def when the
// value is absent or not numeric.
func resolveInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// resolveSort splits a sortby value into field and direction. A literal
// "Desc" prefix selects descending order and is stripped from the field.
func resolveSort(raw string) (string, SortOrder) {
	if raw == "" {
		return DefaultSort, SortAsc
	}
	if strings.HasPrefix(raw, descPrefix) {
		return raw[len(descPrefix):], SortDesc
	}
	return raw, SortAsc
}

// splitPopulate lower-cases the populate value and splits it into a set of
// trimmed tokens. An absent value yields an empty set.
func splitPopulate(raw string) map[string]struct{} {
	if raw == "" {
		return nil
	}
	tokens := make(map[string]struct{})
	for _, part := range strings.Split(strings.ToLower(raw), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens[part] = struct{}{}
		}
	}
	return tokens
}

// resolveIncludes walks the relation rules in declaration order and emits an
// IncludeSpec for every rule whose alias appears in the token set. Nested
// rules are only considered once their parent matched, so a child token
// without its parent produces nothing.
func resolveIncludes(rules []RelationRule, tokens map[string]struct{}) []IncludeSpec {
	var includes []IncludeSpec
	for _, rule := range rules {
		if !rule.matches(tokens) {
			continue
		}
		includes = append(includes, IncludeSpec{
			Relation: rule.Relation,
			Nested:   resolveIncludes(rule.Nested, tokens),
		})
	}
	return includes
}
