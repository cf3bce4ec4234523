package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeacher(t *testing.T) {
	tests := []struct {
		name        string
		teacherName string
		email       string
		expectedErr error
	}{
		{
			name:        "valid teacher",
			teacherName: "Grace Hopper",
			email:       "grace@example.com",
		},
		{
			name:        "whitespace is trimmed",
			teacherName: "  Grace Hopper  ",
			email:       "  grace@example.com ",
		},
		{
			name:        "empty name",
			teacherName: "",
			email:       "grace@example.com",
			expectedErr: ErrTeacherNameEmpty,
		},
		{
			name:        "blank name",
			teacherName: "   ",
			email:       "grace@example.com",
			expectedErr: ErrTeacherNameEmpty,
		},
		{
			name:        "empty email",
			teacherName: "Grace Hopper",
			email:       "",
			expectedErr: ErrTeacherEmailEmpty,
		},
		{
			name:        "blank email",
			teacherName: "Grace Hopper",
			email:       " ",
			expectedErr: ErrTeacherEmailEmpty,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			teacher, err := NewTeacher(tc.teacherName, tc.email)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, teacher)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, teacher.ID)
			assert.Equal(t, "Grace Hopper", teacher.Name)
			assert.Equal(t, "grace@example.com", teacher.Email)
			assert.False(t, teacher.CreatedAt.IsZero())
			assert.Equal(t, teacher.CreatedAt, teacher.UpdatedAt)
			assert.Nil(t, teacher.Courses)
		})
	}
}

func TestTeacherValidateRejectsNilID(t *testing.T) {
	teacher := &Teacher{Name: "Grace", Email: "grace@example.com"}
	assert.ErrorIs(t, teacher.Validate(), ErrTeacherIDEmpty)
}
