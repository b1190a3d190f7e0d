package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/service"
)

const (
	maxImageSize    = 10 * 1024 * 1024 // 10MB
	maxEnrollImages = 5
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AccessService is the subset of the access service the face handler uses.
type AccessService interface {
	Enroll(ctx context.Context, identity string, images [][]byte) (*domain.RegistryEntry, error)
	Verify(ctx context.Context, kioskID string, image []byte) (*service.VerifyResult, error)
	Status(ctx context.Context, identity string) (*service.EnrollmentStatus, error)
	Delete(ctx context.Context, identity string) error
}

// FaceHandler handles enrollment and verification requests
type FaceHandler struct {
	service AccessService
	logger  *slog.Logger
}

func NewFaceHandler(service AccessService, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		logger:  logger,
	}
}

// EnrollResponse response for the enroll endpoint
type EnrollResponse struct {
	Identity  string `json:"identity"`
	ModelName string `json:"model_name"`
	Images    int    `json:"images"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Enroll POST /v1/faces - enroll a face for an identity
//
// Accepts one or more image files under the "images" form field. Multiple
// shots of the same person are averaged into a single stored embedding.
func (h *FaceHandler) Enroll(c *fiber.Ctx) error {
	identity := strings.TrimSpace(c.FormValue("identity"))
	if identity == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identity is required"))
	}

	images, err := extractImages(c)
	if err != nil {
		return fmt.Errorf("enroll face: %w", err)
	}

	entry, err := h.service.Enroll(c.Context(), identity, images)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		Identity:  entry.Identity,
		ModelName: entry.ModelName,
		Images:    len(images),
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: entry.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// Verify POST /v1/faces/verify - one-shot recognition plus attendance
func (h *FaceHandler) Verify(c *fiber.Ctx) error {
	kioskID := strings.TrimSpace(c.FormValue("kiosk_id"))

	image, err := extractSingleImage(c)
	if err != nil {
		return fmt.Errorf("verify face: %w", err)
	}

	result, err := h.service.Verify(c.Context(), kioskID, image)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// Status GET /v1/faces/:identity - enrollment status
func (h *FaceHandler) Status(c *fiber.Ctx) error {
	identity := strings.TrimSpace(c.Params("identity"))
	if identity == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identity is required"))
	}

	status, err := h.service.Status(c.Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// Delete DELETE /v1/faces/:identity - erase the stored embedding
func (h *FaceHandler) Delete(c *fiber.Ctx) error {
	identity := strings.TrimSpace(c.Params("identity"))
	if identity == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identity is required"))
	}

	if err := h.service.Delete(c.Context(), identity); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// extractImages reads every uploaded file under the "images" field, falling
// back to a single "image" field for older clients.
func extractImages(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	files := form.File["images"]
	if len(files) == 0 {
		files = form.File["image"]
	}
	if len(files) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("at least one image file is required"))
	}
	if len(files) > maxEnrollImages {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("at most %d images per enrollment", maxEnrollImages))
	}

	images := make([][]byte, 0, len(files))
	for _, file := range files {
		image, err := readImageFile(file)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

func extractSingleImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	return readImageFile(file)
}

func readImageFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
