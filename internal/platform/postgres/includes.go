package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

// findInclude returns the include spec for the given relation, if the client
// requested it.
func findInclude(includes []query.IncludeSpec, relation string) (query.IncludeSpec, bool) {
	for _, spec := range includes {
		if spec.Relation == relation {
			return spec, true
		}
	}
	return query.IncludeSpec{}, false
}

// placeholders renders "$start, $start+1, ..." for n parameters, for use in
// an IN clause.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// idArgs converts UUIDs to a positional argument slice.
func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// coursesForStudents loads, per student, the courses the student is enrolled
// in. Join-table attributes are intentionally not surfaced. The flat slice
// of loaded courses is returned as well so callers can hydrate nested
// relations in one pass.
func coursesForStudents(
	ctx context.Context,
	db store.DBTX,
	studentIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Course, []*domain.Course, error) {
	if len(studentIDs) == 0 {
		return nil, nil, nil
	}

	q := fmt.Sprintf(`
		SELECT e.student_id, c.id, c.name, c.teacher_id, c.created_at, c.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id IN (%s)
		ORDER BY c.name ASC
	`, placeholders(1, len(studentIDs)))

	rows, err := db.QueryContext(ctx, q, idArgs(studentIDs)...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	defer rows.Close()

	byStudent := make(map[uuid.UUID][]*domain.Course)
	var all []*domain.Course
	for rows.Next() {
		var studentID uuid.UUID
		var course domain.Course
		var teacherID uuid.NullUUID
		if err := rows.Scan(
			&studentID,
			&course.ID,
			&course.Name,
			&teacherID,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan enrolled course row: %w", err)
		}
		if teacherID.Valid {
			id := teacherID.UUID
			course.TeacherID = &id
		}
		byStudent[studentID] = append(byStudent[studentID], &course)
		all = append(all, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating enrolled course rows: %w", err)
	}

	return byStudent, all, nil
}

// coursesForTeachers loads, per teacher, the courses the teacher owns.
func coursesForTeachers(
	ctx context.Context,
	db store.DBTX,
	teacherIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Course, []*domain.Course, error) {
	if len(teacherIDs) == 0 {
		return nil, nil, nil
	}

	q := fmt.Sprintf(`
		SELECT id, name, teacher_id, created_at, updated_at
		FROM courses
		WHERE teacher_id IN (%s)
		ORDER BY name ASC
	`, placeholders(1, len(teacherIDs)))

	rows, err := db.QueryContext(ctx, q, idArgs(teacherIDs)...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query taught courses: %w", err)
	}
	defer rows.Close()

	byTeacher := make(map[uuid.UUID][]*domain.Course)
	var all []*domain.Course
	for rows.Next() {
		var course domain.Course
		var teacherID uuid.NullUUID
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&teacherID,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan taught course row: %w", err)
		}
		if teacherID.Valid {
			id := teacherID.UUID
			course.TeacherID = &id
		}
		byTeacher[teacherID.UUID] = append(byTeacher[teacherID.UUID], &course)
		all = append(all, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating taught course rows: %w", err)
	}

	return byTeacher, all, nil
}

// attachCourseTeachers hydrates the Teacher relation on each course that has
// a teacher assigned.
func attachCourseTeachers(ctx context.Context, db store.DBTX, courses []*domain.Course) error {
	var teacherIDs []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, course := range courses {
		if course.TeacherID == nil {
			continue
		}
		if _, ok := seen[*course.TeacherID]; ok {
			continue
		}
		seen[*course.TeacherID] = struct{}{}
		teacherIDs = append(teacherIDs, *course.TeacherID)
	}
	if len(teacherIDs) == 0 {
		return nil
	}

	q := fmt.Sprintf(`
		SELECT id, name, email, created_at, updated_at
		FROM teachers
		WHERE id IN (%s)
	`, placeholders(1, len(teacherIDs)))

	rows, err := db.QueryContext(ctx, q, idArgs(teacherIDs)...)
	if err != nil {
		return fmt.Errorf("failed to query course teachers: %w", err)
	}
	defer rows.Close()

	teachers := make(map[uuid.UUID]*domain.Teacher)
	for rows.Next() {
		var teacher domain.Teacher
		if err := rows.Scan(
			&teacher.ID,
			&teacher.Name,
			&teacher.Email,
			&teacher.CreatedAt,
			&teacher.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan course teacher row: %w", err)
		}
		teachers[teacher.ID] = &teacher
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating course teacher rows: %w", err)
	}

	for _, course := range courses {
		if course.TeacherID != nil {
			course.Teacher = teachers[*course.TeacherID]
		}
	}
	return nil
}

// attachCourseStudents hydrates the Students relation on each course.
// Join-table attributes are intentionally not surfaced.
func attachCourseStudents(ctx context.Context, db store.DBTX, courses []*domain.Course) error {
	if len(courses) == 0 {
		return nil
	}

	courseIDs := make([]uuid.UUID, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}

	q := fmt.Sprintf(`
		SELECT e.course_id, s.id, s.name, s.email, s.created_at, s.updated_at
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.course_id IN (%s)
		ORDER BY s.name ASC
	`, placeholders(1, len(courseIDs)))

	rows, err := db.QueryContext(ctx, q, idArgs(courseIDs)...)
	if err != nil {
		return fmt.Errorf("failed to query enrolled students: %w", err)
	}
	defer rows.Close()

	byCourse := make(map[uuid.UUID][]*domain.Student)
	for rows.Next() {
		var courseID uuid.UUID
		var student domain.Student
		if err := rows.Scan(
			&courseID,
			&student.ID,
			&student.Name,
			&student.Email,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan enrolled student row: %w", err)
		}
		byCourse[courseID] = append(byCourse[courseID], &student)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating enrolled student rows: %w", err)
	}

	for _, course := range courses {
		course.Students = byCourse[course.ID]
	}
	return nil
}
