package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "recipeapi/internal/errors"
	"recipeapi/internal/model"
)

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		wantEmail     string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "successful creation",
			email:     "test@gmail.com",
			wantEmail: "test@gmail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@gmail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:      "email normalized",
			email:     "  Test@GMAIL.com ",
			wantEmail: "test@gmail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@gmail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:          "empty email",
			email:         "",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "blank email",
			email:         "   ",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:  "email already taken",
			email: "existing@gmail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@gmail.com").Return(&model.User{Email: "existing@gmail.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "unique index race",
			email: "race@gmail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@gmail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.CreateUser(context.Background(), tt.email, "Testpass@123", "Test User")

			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantEmail, user.Email)
				assert.Equal(t, "Test User", user.Name)
				assert.True(t, user.IsActive)
				assert.False(t, user.IsStaff)
				assert.False(t, user.IsSuperuser)
				assert.NotEqual(t, "Testpass@123", user.PasswordHash)
				assert.True(t, svc.VerifyPassword(user, "Testpass@123"))
				assert.False(t, svc.VerifyPassword(user, "wrong"))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateSuperuser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "admin@gmail.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.CreateSuperuser(context.Background(), "admin@gmail.com", "test123")

	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_VerifyPassword_NoHash(t *testing.T) {
	svc := NewUserService(new(MockUserRepository), nil)
	assert.False(t, svc.VerifyPassword(&model.User{}, ""))
	assert.False(t, svc.VerifyPassword(nil, "x"))
}

func TestUserService_UpdateUser(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcryptCost)
	existing := &model.User{ID: 3, Email: "me@gmail.com", Name: "Old", PasswordHash: string(hash), IsActive: true}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(3)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, existing).Return(nil)

	svc := NewUserService(mockRepo, nil)
	name, password := "New name", "newpass123"
	user, err := svc.UpdateUser(context.Background(), 3, UserUpdate{Name: &name, Password: &password})

	require.NoError(t, err)
	assert.Equal(t, "New name", user.Name)
	assert.True(t, svc.VerifyPassword(user, "newpass123"))
	assert.False(t, svc.VerifyPassword(user, "oldpass"))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, nil)
	_, err := svc.GetUser(context.Background(), 9)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
