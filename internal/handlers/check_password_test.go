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
)

func TestCheckPasswordHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		body          any
		rawBody       string
		mockSetup     func(m *MockPasswordChecker)
		expectedCode  int
		expectedValid bool
	}{
		{
			name: "valid password",
			body: CheckPasswordRequest{Email: "jane@example.com", Password: "secret123"},
			mockSetup: func(m *MockPasswordChecker) {
				m.EXPECT().
					CheckPassword(gomock.Any(), "jane@example.com", "secret123").
					Return(true, nil)
			},
			expectedCode:  http.StatusOK,
			expectedValid: true,
		},
		{
			name: "wrong password",
			body: CheckPasswordRequest{Email: "jane@example.com", Password: "wrong"},
			mockSetup: func(m *MockPasswordChecker) {
				m.EXPECT().
					CheckPassword(gomock.Any(), "jane@example.com", "wrong").
					Return(false, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			// Unknown emails are a negative result, not an error.
			name: "unknown email",
			body: CheckPasswordRequest{Email: "nobody@example.com", Password: "secret123"},
			mockSetup: func(m *MockPasswordChecker) {
				m.EXPECT().
					CheckPassword(gomock.Any(), "nobody@example.com", "secret123").
					Return(false, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid json",
			rawBody:      "{invalid json}",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing fields",
			body:         CheckPasswordRequest{Email: "jane@example.com"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: CheckPasswordRequest{Email: "jane@example.com", Password: "secret123"},
			mockSetup: func(m *MockPasswordChecker) {
				m.EXPECT().
					CheckPassword(gomock.Any(), "jane@example.com", "secret123").
					Return(false, errors.New("storage down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockPasswordChecker(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewCheckPasswordHandler(mockSvc)

			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest(http.MethodPost, "/api/v1/users/verify", bytes.NewBufferString(tt.rawBody))
			} else {
				bodyBytes, _ := json.Marshal(tt.body)
				req = httptest.NewRequest(http.MethodPost, "/api/v1/users/verify", bytes.NewBuffer(bodyBytes))
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusOK {
				var resp CheckPasswordResponse
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedValid, resp.Valid)
			}
		})
	}
}
