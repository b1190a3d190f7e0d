package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// EnrollFaceResponse represents the response for a successful enrollment
type EnrollFaceResponse struct {
	Identity  string `json:"identity" example:"emp-1042"`
	ModelName string `json:"model_name" example:"Facenet512"`
	Images    int    `json:"images" example:"3"`
	CreatedAt string `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt string `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// VerifyFaceResponse represents the response for one-shot verification
type VerifyFaceResponse struct {
	Matched   bool    `json:"matched" example:"true"`
	Identity  string  `json:"identity,omitempty" example:"emp-1042"`
	Score     float64 `json:"score" example:"0.91"`
	Reason    string  `json:"reason,omitempty" example:"no_match"`
	Event     string  `json:"event" example:"CHECK_IN"`
	Timestamp string  `json:"timestamp" example:"2024-01-01T08:30:00Z"`
}

// EnrollmentStatusResponse represents the enrollment status for an identity
type EnrollmentStatusResponse struct {
	Identity   string `json:"identity" example:"emp-1042"`
	Registered bool   `json:"registered" example:"true"`
	ModelName  string `json:"model_name,omitempty" example:"Facenet512"`
	UpdatedAt  string `json:"updated_at,omitempty" example:"2024-01-01T00:00:00Z"`
}

// AttendanceResponse represents the derived attendance state
type AttendanceResponse struct {
	Identity string `json:"identity" example:"emp-1042"`
	Status   string `json:"status" example:"CHECKED_IN"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "AeroFace Access Control API",
		Version:     "v1.0.0",
		Description: "Face-recognition access control and lounge attendance tracking",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/faces - Enroll
		endpoint.New(
			endpoint.POST,
			"/faces",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Enroll a face"),
			endpoint.WithDescription("Enrolls an identity from one or more face images. Multiple shots are averaged into a single embedding; re-enrolling overwrites the previous one."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollFaceResponse{}, "201", "Face enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/faces/verify - Verify
		endpoint.New(
			endpoint.POST,
			"/faces/verify",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Verify a face and apply the attendance transition"),
			endpoint.WithDescription("Runs one image through detection, embedding and matching against every enrolled identity, then toggles the matched identity's attendance state. A denial is a normal 200 response with matched=false."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyFaceResponse{}, "200", "Verification completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "ATTENDANCE_CONFLICT", Message: "A concurrent check-in already opened a visit"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many denied attempts"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/faces/:identity - Status
		endpoint.New(
			endpoint.GET,
			"/faces/{identity}/status",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Get enrollment status"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("identity", parameter.Path, parameter.WithDescription("User identity")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollmentStatusResponse{}, "200", "Status retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// DELETE /v1/faces/:identity - Delete
		endpoint.New(
			endpoint.DELETE,
			"/faces/{identity}",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Delete a stored embedding"),
			endpoint.WithDescription("Erases the biometric template for an identity. Attendance history is kept."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("identity", parameter.Path, parameter.WithDescription("User identity")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct{}{}, "204", "Embedding deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_REGISTERED", Message: "No embedding for this identity"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/attendance/:identity - Attendance
		endpoint.New(
			endpoint.GET,
			"/attendance/{identity}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Get current attendance state"),
			endpoint.WithDescription("Derives NEVER, CHECKED_IN or CHECKED_OUT from the identity's most recent visit row."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("identity", parameter.Path, parameter.WithDescription("User identity")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceResponse{}, "200", "Attendance state retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_REGISTERED", Message: "No embedding for this identity"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
