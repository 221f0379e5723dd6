package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/dkhromov/user-directory/internal/models"
	"github.com/dkhromov/user-directory/internal/services"
)

func TestCreateUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	created := &models.User{
		ID:        "11111111-1111-1111-1111-111111111111",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Password:  "$2a$10$hash",
		Salt:      "abcd",
		CreatedAt: "2024-05-01T10:00:00Z",
	}

	tests := []struct {
		name         string
		body         any
		rawBody      string
		mockSetup    func(m *MockUserCreator)
		expectedCode int
	}{
		{
			name: "success",
			body: CreateUserRequest{
				Name:                 "Jane Doe",
				Email:                "jane@example.com",
				Password:             "secret123",
				PasswordConfirmation: "secret123",
			},
			mockSetup: func(m *MockUserCreator) {
				m.EXPECT().
					CreateUser(gomock.Any(), models.UserInput{
						Name:                 "Jane Doe",
						Email:                "jane@example.com",
						Password:             "secret123",
						PasswordConfirmation: "secret123",
					}).
					Return(created, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: CreateUserRequest{
				Name:                 "Jane Doe",
				Email:                "jane@example.com",
				Password:             "secret123",
				PasswordConfirmation: "secret123",
			},
			mockSetup: func(m *MockUserCreator) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, services.ErrDuplicateEmail)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "password mismatch",
			body: CreateUserRequest{
				Name:                 "Jane Doe",
				Email:                "jane@example.com",
				Password:             "secret123",
				PasswordConfirmation: "other",
			},
			mockSetup: func(m *MockUserCreator) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, services.ErrPasswordMismatch)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: CreateUserRequest{
				Name:                 "Jane Doe",
				Email:                "jane@example.com",
				Password:             "secret123",
				PasswordConfirmation: "secret123",
			},
			mockSetup: func(m *MockUserCreator) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("storage down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "invalid json",
			rawBody:      "{invalid json}",
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			body: CreateUserRequest{
				Name:  "Jane Doe",
				Email: "jane@example.com",
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserCreator(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewCreateUserHandler(mockSvc)

			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(tt.rawBody))
			} else {
				bodyBytes, _ := json.Marshal(tt.body)
				req = httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBuffer(bodyBytes))
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusCreated {
				body := rr.Body.String()

				var resp models.UserPublic
				assert.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, created.Public(), resp)

				// Credential material never leaks through the public view.
				assert.NotContains(t, body, "salt")
				assert.NotContains(t, body, created.Password)
			}
		})
	}
}
