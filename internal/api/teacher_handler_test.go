package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

type stubTeacherStore struct {
	teachers map[uuid.UUID]*domain.Teacher
	lastPlan query.Plan
}

func newStubTeacherStore() *stubTeacherStore {
	return &stubTeacherStore{teachers: make(map[uuid.UUID]*domain.Teacher)}
}

func (s *stubTeacherStore) Create(_ context.Context, teacher *domain.Teacher) error {
	for _, existing := range s.teachers {
		if existing.Email == teacher.Email {
			return store.ErrEmailExists
		}
	}
	s.teachers[teacher.ID] = teacher
	return nil
}

func (s *stubTeacherStore) List(_ context.Context, plan query.Plan) ([]*domain.Teacher, int, error) {
	s.lastPlan = plan
	var teachers []*domain.Teacher
	for _, teacher := range s.teachers {
		teachers = append(teachers, teacher)
	}
	return teachers, len(s.teachers), nil
}

func (s *stubTeacherStore) GetByID(
	_ context.Context,
	id uuid.UUID,
	_ []query.IncludeSpec,
) (*domain.Teacher, error) {
	teacher, ok := s.teachers[id]
	if !ok {
		return nil, store.ErrTeacherNotFound
	}
	return teacher, nil
}

func (s *stubTeacherStore) Update(
	_ context.Context,
	id uuid.UUID,
	update store.TeacherUpdate,
) (*domain.Teacher, error) {
	teacher, ok := s.teachers[id]
	if !ok {
		return nil, store.ErrTeacherNotFound
	}
	if update.Name != nil {
		teacher.Name = *update.Name
	}
	if update.Email != nil {
		teacher.Email = *update.Email
	}
	return teacher, nil
}

func (s *stubTeacherStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.teachers[id]; !ok {
		return store.ErrTeacherNotFound
	}
	delete(s.teachers, id)
	return nil
}

func (s *stubTeacherStore) WithTx(_ *sql.Tx) store.TeacherStore { return s }

func newTeacherRouter(stub *stubTeacherStore) http.Handler {
	h := NewTeacherHandler(stub, query.NewBuilder(query.DefaultLimit, 100), slog.Default())
	r := chi.NewRouter()
	r.Route("/teachers", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestTeacherCreateAndGet(t *testing.T) {
	stub := newStubTeacherStore()
	router := newTeacherRouter(stub)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/teachers",
		bytes.NewBufferString(`{"name":"Grace Hopper","email":"grace@example.com"}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Teacher
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Grace Hopper", created.Name)

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(
		http.MethodGet, "/teachers/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusOK, get.Code)
}

func TestTeacherListPopulatePlan(t *testing.T) {
	stub := newStubTeacherStore()
	teacher, err := domain.NewTeacher("Grace Hopper", "grace@example.com")
	require.NoError(t, err)
	stub.teachers[teacher.ID] = teacher
	router := newTeacherRouter(stub)

	t.Run("course with nested students", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodGet, "/teachers?populate=courses,students", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, stub.lastPlan.Includes, 1)
		assert.Equal(t, query.RelationCourse, stub.lastPlan.Includes[0].Relation)
		require.Len(t, stub.lastPlan.Includes[0].Nested, 1)
		assert.Equal(t, query.RelationStudent, stub.lastPlan.Includes[0].Nested[0].Relation)
	})

	t.Run("student token without course does nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/teachers?populate=student", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, stub.lastPlan.Includes)
	})
}

func TestTeacherNotFoundResponses(t *testing.T) {
	router := newTeacherRouter(newStubTeacherStore())
	missing := uuid.NewString()

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/teachers/"+missing, nil))
	assert.Equal(t, http.StatusNotFound, get.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, get.Body.String())

	put := httptest.NewRecorder()
	router.ServeHTTP(put, httptest.NewRequest(http.MethodPut, "/teachers/"+missing,
		bytes.NewBufferString(`{"name":"Nobody"}`)))
	assert.Equal(t, http.StatusNotFound, put.Code)

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/teachers/"+missing, nil))
	assert.Equal(t, http.StatusNotFound, del.Code)
}
