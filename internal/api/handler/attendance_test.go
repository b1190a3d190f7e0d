package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/service"
)

func TestAttendanceHandler_Get(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		identity       string
		setupMock      func(*MockAccessService)
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:     "checked in",
			identity: "emp-1042",
			setupMock: func(m *MockAccessService) {
				m.On("Attendance", mock.Anything, "emp-1042").Return(&service.AttendanceSummary{
					Identity: "emp-1042",
					Status:   domain.StatusCheckedIn,
					LastVisit: &domain.AttendanceRow{
						Identity:    "emp-1042",
						CheckinTime: now,
					},
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var summary service.AttendanceSummary
				require.NoError(t, json.Unmarshal(body, &summary))
				assert.Equal(t, domain.StatusCheckedIn, summary.Status)
				require.NotNil(t, summary.LastVisit)
			},
		},
		{
			name:     "never seen",
			identity: "emp-2000",
			setupMock: func(m *MockAccessService) {
				m.On("Attendance", mock.Anything, "emp-2000").Return(&service.AttendanceSummary{
					Identity: "emp-2000",
					Status:   domain.StatusNever,
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var summary service.AttendanceSummary
				require.NoError(t, json.Unmarshal(body, &summary))
				assert.Equal(t, domain.StatusNever, summary.Status)
				assert.Nil(t, summary.LastVisit)
			},
		},
		{
			name:     "not enrolled",
			identity: "ghost",
			setupMock: func(m *MockAccessService) {
				m.On("Attendance", mock.Anything, "ghost").
					Return(nil, domain.ErrFaceNotRegistered)
			},
			expectedStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAccessService)
			tt.setupMock(mockService)

			app := newTestApp()
			h := NewAttendanceHandler(mockService, testLogger())
			app.Get("/v1/attendance/:identity", h.Get)

			resp, err := app.Test(httptest.NewRequest("GET", "/v1/attendance/"+tt.identity, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.checkResponse(t, body)
			}
			mockService.AssertExpectations(t)
		})
	}
}
