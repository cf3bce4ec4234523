package postgres

import (
	"context"
	"errors"
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

func newStudentStoreWithMock(t *testing.T) (*PostgresStudentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStudentStore(db, nil), mock
}

func studentRows(students ...*domain.Student) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"})
	for _, s := range students {
		rows.AddRow(s.ID.String(), s.Name, s.Email, s.CreatedAt, s.UpdatedAt)
	}
	return rows
}

func testStudent(name, email string) *domain.Student {
	now := time.Now().UTC()
	return &domain.Student{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func listPlan(limit, offset int) query.Plan {
	return query.Plan{
		Limit:      limit,
		Offset:     offset,
		SortField:  "name",
		SortColumn: "name",
		SortOrder:  query.SortAsc,
	}
}

func TestStudentStoreCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		student := testStudent("Ada Lovelace", "ada@example.com")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
			WithArgs(student.ID, student.Name, student.Email, student.CreatedAt, student.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(ctx, student))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to ErrEmailExists", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		student := testStudent("Ada Lovelace", "ada@example.com")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := s.Create(ctx, student)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("invalid student fails before touching the database", func(t *testing.T) {
		s, _ := newStudentStoreWithMock(t)

		err := s.Create(ctx, &domain.Student{ID: uuid.New()})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestStudentStoreList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and total without includes", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		ada := testStudent("Ada Lovelace", "ada@example.com")
		grace := testStudent("Grace Hopper", "grace@example.com")

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
			WithArgs(10, 0).
			WillReturnRows(studentRows(ada, grace))

		students, total, err := s.List(ctx, listPlan(10, 0))
		require.NoError(t, err)

		assert.Equal(t, 12, total)
		require.Len(t, students, 2)
		assert.Equal(t, ada.ID, students[0].ID)
		assert.Nil(t, students[0].Courses)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty store yields zero total and no rows", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
			WithArgs(10, 0).
			WillReturnRows(studentRows())

		students, total, err := s.List(ctx, listPlan(10, 0))
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, students)
	})

	t.Run("hydrates courses and nested teachers", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		ada := testStudent("Ada Lovelace", "ada@example.com")
		teacherID := uuid.New()
		courseID := uuid.New()
		now := time.Now().UTC()

		plan := listPlan(10, 0)
		plan.Includes = []query.IncludeSpec{
			{
				Relation: query.RelationCourse,
				Nested:   []query.IncludeSpec{{Relation: query.RelationTeacher}},
			},
		}

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WithArgs(10, 0).
			WillReturnRows(studentRows(ada))
		mock.ExpectQuery(regexp.QuoteMeta("JOIN courses c ON c.id = e.course_id")).
			WithArgs(ada.ID).
			WillReturnRows(sqlmock.NewRows(
				[]string{"student_id", "id", "name", "teacher_id", "created_at", "updated_at"},
			).AddRow(ada.ID.String(), courseID.String(), "Algebra I", teacherID.String(), now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).
			WithArgs(teacherID).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "name", "email", "created_at", "updated_at"},
			).AddRow(teacherID.String(), "Grace Hopper", "grace@example.com", now, now))

		students, _, err := s.List(ctx, plan)
		require.NoError(t, err)

		require.Len(t, students, 1)
		require.Len(t, students[0].Courses, 1)
		course := students[0].Courses[0]
		assert.Equal(t, "Algebra I", course.Name)
		require.NotNil(t, course.Teacher)
		assert.Equal(t, "Grace Hopper", course.Teacher.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStudentStoreGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		ada := testStudent("Ada Lovelace", "ada@example.com")

		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WithArgs(ada.ID).
			WillReturnRows(studentRows(ada))

		got, err := s.GetByID(ctx, ada.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, ada.Email, got.Email)
	})

	t.Run("absent id maps to ErrStudentNotFound", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WithArgs(id).
			WillReturnRows(studentRows())

		_, err := s.GetByID(ctx, id, nil)
		assert.ErrorIs(t, err, store.ErrStudentNotFound)
	})
}

func TestStudentStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update returns updated row", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		ada := testStudent("Ada King", "ada@example.com")
		newName := "Ada King"

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE students")).
			WithArgs(newName, nil, sqlmock.AnyArg(), ada.ID).
			WillReturnRows(studentRows(ada))

		got, err := s.Update(ctx, ada.ID, store.StudentUpdate{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "Ada King", got.Name)
	})

	t.Run("absent id maps to ErrStudentNotFound", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		id := uuid.New()
		name := "Ada"

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE students")).
			WillReturnRows(studentRows())

		_, err := s.Update(ctx, id, store.StudentUpdate{Name: &name})
		assert.ErrorIs(t, err, store.ErrStudentNotFound)
	})
}

func TestStudentStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Delete(ctx, id))
	})

	t.Run("second delete of the same id is not found", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.Delete(ctx, id))
		assert.ErrorIs(t, s.Delete(ctx, id), store.ErrStudentNotFound)
	})
}

func TestStudentStoreEnroll(t *testing.T) {
	ctx := context.Background()
	existsRows := func(exists bool) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
	}

	t.Run("checks run atomically with the insert", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		studentID, courseID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WithArgs(studentID).
			WillReturnRows(existsRows(true))
		mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
			WithArgs(courseID).
			WillReturnRows(existsRows(true))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
			WithArgs(studentID, courseID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Enroll(ctx, studentID, courseID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing course rolls back", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		studentID, courseID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WillReturnRows(existsRows(true))
		mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
			WillReturnRows(existsRows(false))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.Enroll(ctx, studentID, courseID), store.ErrCourseNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate pair maps to ErrAlreadyEnrolled", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		studentID, courseID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FROM students")).
			WillReturnRows(existsRows(true))
		mock.ExpectQuery(regexp.QuoteMeta("FROM courses")).
			WillReturnRows(existsRows(true))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
		mock.ExpectRollback()

		assert.ErrorIs(t, s.Enroll(ctx, studentID, courseID), store.ErrAlreadyEnrolled)
	})
}

func TestStudentStoreUnenroll(t *testing.T) {
	ctx := context.Background()

	t.Run("missing pair maps to ErrEnrollmentNotFound", func(t *testing.T) {
		s, mock := newStudentStoreWithMock(t)
		studentID, courseID := uuid.New(), uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments")).
			WithArgs(studentID, courseID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Unenroll(ctx, studentID, courseID), store.ErrEnrollmentNotFound)
	})
}

func TestStudentStoreWrapsDriverFailures(t *testing.T) {
	ctx := context.Background()

	s, mock := newStudentStoreWithMock(t)
	cause := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnError(cause)

	_, _, err := s.List(ctx, listPlan(10, 0))
	require.Error(t, err)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "student", storeErr.Entity)
	assert.Equal(t, "list", storeErr.Operation)
	assert.ErrorIs(t, err, cause)
}
