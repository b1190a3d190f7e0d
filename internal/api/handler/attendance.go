package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/service"
)

// AttendanceService is the subset of the access service the attendance
// handler uses.
type AttendanceService interface {
	Attendance(ctx context.Context, identity string) (*service.AttendanceSummary, error)
}

// AttendanceHandler serves attendance state lookups
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// Get GET /v1/attendance/:identity - current attendance state
func (h *AttendanceHandler) Get(c *fiber.Ctx) error {
	identity := strings.TrimSpace(c.Params("identity"))
	if identity == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identity is required"))
	}

	summary, err := h.service.Attendance(c.Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(summary)
}
