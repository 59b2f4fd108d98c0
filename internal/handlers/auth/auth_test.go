package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/service/authservice"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestRegisterHandler(t *testing.T) {
	handler, service := NewMock(t)
	validBody := `{"email":"ada@campus.edu","full_name":"Ada Lovelace","address":"Dorm 4","password":"password123"}`

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful registration",
			body: validBody,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), "ada@campus.edu", "Ada Lovelace", "Dorm 4", "password123").
					Return(&domain.User{ID: 1, Email: "ada@campus.edu"}, nil)
				service.EXPECT().GenerateToken(1).Return("token123", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid JSON",
			body:          `{"email":`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Short password",
			body:          `{"email":"ada@campus.edu","full_name":"Ada","password":"short"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "password must be at least 8",
		},
		{
			name:          "Malformed email",
			body:          `{"email":"not-an-email","full_name":"Ada","password":"password123"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "email must be a valid email",
		},
		{
			name: "Email already registered",
			body: validBody,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), "ada@campus.edu", "Ada Lovelace", "Dorm 4", "password123").
					Return(nil, authservice.ErrEmailTaken)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "Email already registered",
		},
		{
			name: "Registration failure",
			body: validBody,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), "ada@campus.edu", "Ada Lovelace", "Dorm 4", "password123").
					Return(nil, errors.New("db down"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name: "Token generation failure",
			body: validBody,
			prepareMock: func() {
				service.EXPECT().Register(gomock.Any(), "ada@campus.edu", "Ada Lovelace", "Dorm 4", "password123").
					Return(&domain.User{ID: 1}, nil)
				service.EXPECT().GenerateToken(1).Return("", errors.New("token error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.Register(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var response utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Contains(t, response.Message, tt.expectedError)
			} else {
				assert.Equal(t, "Bearer token123", rr.Header().Get("Authorization"))
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful login",
			body: `{"email":"ada@campus.edu","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(gomock.Any(), "ada@campus.edu", "password123").Return(&domain.User{ID: 1}, nil)
				service.EXPECT().GenerateToken(1).Return("token123", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Missing password",
			body:          `{"email":"ada@campus.edu"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "password is required",
		},
		{
			name: "Invalid credentials",
			body: `{"email":"ada@campus.edu","password":"wrongpassword"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(gomock.Any(), "ada@campus.edu", "wrongpassword").
					Return(nil, authservice.ErrInvalidCredentials)
			},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid credentials",
		},
		{
			name: "Token generation failure",
			body: `{"email":"ada@campus.edu","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(gomock.Any(), "ada@campus.edu", "password123").Return(&domain.User{ID: 1}, nil)
				service.EXPECT().GenerateToken(1).Return("", errors.New("token error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var response utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Contains(t, response.Message, tt.expectedError)
			} else {
				assert.Equal(t, "Bearer token123", rr.Header().Get("Authorization"))
			}
		})
	}
}
