package query

import "strings"

// RelationRule maps client-facing aliases to one canonical relation and the
// rules that may nest inside it. Aliases must be lower-cased; matching is
// case-insensitive because populate tokens are lower-cased before lookup.
type RelationRule struct {
	Relation string
	Aliases  []string
	Nested   []RelationRule
}

// matches reports whether any of the rule's aliases is present in the token
// set.
func (r RelationRule) matches(tokens map[string]struct{}) bool {
	for _, alias := range r.Aliases {
		if _, ok := tokens[alias]; ok {
			return true
		}
	}
	return false
}

// RelationSchema describes, for one entity, which relations may be populated
// and which fields may be sorted on. Schemas are built once at startup and
// shared read-only across requests.
type RelationSchema struct {
	// Relations is the ordered list of top-level populate rules.
	Relations []RelationRule

	// sortColumns maps a lower-cased sort field to the database column the
	// executor must use. Lookups outside this map are rejected, so client
	// input never reaches SQL verbatim.
	sortColumns map[string]string
}

// NewRelationSchema builds a schema from populate rules and a sort
// allow-list keyed by lower-cased field name.
func NewRelationSchema(relations []RelationRule, sortColumns map[string]string) *RelationSchema {
	return &RelationSchema{
		Relations:   relations,
		sortColumns: sortColumns,
	}
}

// SortColumn resolves a client-supplied sort field (case-insensitively)
// to its database column. The second return is false when the field is not
// allowed.
func (s *RelationSchema) SortColumn(field string) (string, bool) {
	column, ok := s.sortColumns[strings.ToLower(field)]
	return column, ok
}

// Canonical relation names shared by the entity schemas and the stores that
// hydrate includes.
const (
	RelationCourse  = "Course"
	RelationTeacher = "Teacher"
	RelationStudent = "Student"
)

// defaultSortColumns is the allow-list every roster entity supports.
var defaultSortColumns = map[string]string{
	"name":      "name",
	"createdat": "created_at",
}

// StudentSchema returns the relation schema for the Student entity:
// courses may be populated, and the course's teacher one level inside.
func StudentSchema() *RelationSchema {
	return NewRelationSchema([]RelationRule{
		{
			Relation: RelationCourse,
			Aliases:  []string{"course", "courses"},
			Nested: []RelationRule{
				{Relation: RelationTeacher, Aliases: []string{"teacher"}},
			},
		},
	}, defaultSortColumns)
}

// TeacherSchema returns the relation schema for the Teacher entity:
// courses may be populated, and the enrolled students one level inside.
func TeacherSchema() *RelationSchema {
	return NewRelationSchema([]RelationRule{
		{
			Relation: RelationCourse,
			Aliases:  []string{"course", "courses"},
			Nested: []RelationRule{
				{Relation: RelationStudent, Aliases: []string{"student", "students"}},
			},
		},
	}, defaultSortColumns)
}

// CourseSchema returns the relation schema for the Course entity: its
// teacher and its enrolled students may each be populated at the top level.
func CourseSchema() *RelationSchema {
	return NewRelationSchema([]RelationRule{
		{Relation: RelationTeacher, Aliases: []string{"teacher", "teachers"}},
		{Relation: RelationStudent, Aliases: []string{"student", "students"}},
	}, defaultSortColumns)
}
