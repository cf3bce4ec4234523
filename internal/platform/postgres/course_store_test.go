package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

func newCourseStoreWithMock(t *testing.T) (*PostgresCourseStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresCourseStore(db, nil), mock
}

func TestCourseStoreCreateDanglingTeacher(t *testing.T) {
	s, mock := newCourseStoreWithMock(t)
	teacherID := uuid.New()
	course, err := domain.NewCourse("Algebra I", &teacherID)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnError(&pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "courses_teacher_id_fkey",
		})

	assert.ErrorIs(t, s.Create(context.Background(), course), store.ErrTeacherNotFound)
}

func TestCourseStoreGetByIDWithIncludes(t *testing.T) {
	s, mock := newCourseStoreWithMock(t)
	courseID := uuid.New()
	teacherID := uuid.New()
	studentID := uuid.New()
	now := time.Now().UTC()

	includes := []query.IncludeSpec{
		{Relation: query.RelationTeacher},
		{Relation: query.RelationStudent},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "teacher_id", "created_at", "updated_at"},
		).AddRow(courseID.String(), "Algebra I", teacherID.String(), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).
		WithArgs(teacherID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "created_at", "updated_at"},
		).AddRow(teacherID.String(), "Grace Hopper", "grace@example.com", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN students s ON s.id = e.student_id")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"course_id", "id", "name", "email", "created_at", "updated_at"},
		).AddRow(courseID.String(), studentID.String(), "Ada Lovelace", "ada@example.com", now, now))

	course, err := s.GetByID(context.Background(), courseID, includes)
	require.NoError(t, err)

	require.NotNil(t, course.Teacher)
	assert.Equal(t, "Grace Hopper", course.Teacher.Name)
	require.Len(t, course.Students, 1)
	assert.Equal(t, "Ada Lovelace", course.Students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreGetByIDNotFound(t *testing.T) {
	s, mock := newCourseStoreWithMock(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "teacher_id", "created_at", "updated_at"},
		))

	_, err := s.GetByID(context.Background(), id, nil)
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
}

func TestCourseStoreUpdateReassignsTeacher(t *testing.T) {
	s, mock := newCourseStoreWithMock(t)
	courseID := uuid.New()
	teacherID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE courses")).
		WithArgs(nil, teacherIDArg(&teacherID), sqlmock.AnyArg(), courseID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "teacher_id", "created_at", "updated_at"},
		).AddRow(courseID.String(), "Algebra I", teacherID.String(), now, now))

	course, err := s.Update(context.Background(), courseID, store.CourseUpdate{TeacherID: &teacherID})
	require.NoError(t, err)
	require.NotNil(t, course.TeacherID)
	assert.Equal(t, teacherID, *course.TeacherID)
}

func TestCourseStoreDeleteNotFound(t *testing.T) {
	s, mock := newCourseStoreWithMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrCourseNotFound)
}
