package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/middleware"
	"github.com/adstudio/backend/internal/services"
)

const maxUploadSize = 10 << 20 // 10 MB

// ImageStudio is the charged image pipeline behind the studio endpoints.
type ImageStudio interface {
	Generate(ctx context.Context, userID, description string) (*services.StudioResult, error)
	Edit(ctx context.Context, userID, imageURL, prompt string) (*services.StudioResult, error)
}

type StudioHandler struct {
	studio    ImageStudio
	validator *services.ValidationHelper
	logger    logrus.FieldLogger
}

func NewStudioHandler(studio ImageStudio, logger logrus.FieldLogger) *StudioHandler {
	return &StudioHandler{
		studio:    studio,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type generateForm struct {
	Description string `validate:"required,max=1000"`
}

// EditImageRequest asks for a change to a previously generated image
// @Description Image edit request
type EditImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url" example:"https://images.example/mug.png"`
	Prompt   string `json:"prompt" validate:"required,max=1000" example:"make the background a soft pastel blue"`
}

// GenerateImage creates a product photoshoot from an uploaded product photo
// @Summary Generate product photoshoot
// @Description Costs 3 credits. The charge is refunded if the image service fails.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Product photo (max 10 MB)"
// @Param description formData string true "Product description"
// @Success 200 {object} services.StudioResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse "Insufficient credits"
// @Failure 429 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /images/generate [post]
func (h *StudioHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		services.SendErrorResponse(w, "Invalid upload", http.StatusBadRequest, nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		services.SendErrorResponse(w, "Image is required", http.StatusBadRequest, nil)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		services.SendErrorResponse(w, "Image must be 10 MB or smaller", http.StatusBadRequest, nil)
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		services.SendErrorResponse(w, "Image is required", http.StatusBadRequest, nil)
		return
	}
	if !strings.HasPrefix(http.DetectContentType(sniff[:n]), "image/") {
		services.SendErrorResponse(w, "File must be an image", http.StatusBadRequest, nil)
		return
	}

	form := generateForm{Description: strings.TrimSpace(r.FormValue("description"))}
	if err := h.validator.ValidateStruct(&form); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.studio.Generate(r.Context(), userID, form.Description)
	if err != nil {
		h.writeStudioError(w, userID, err)
		return
	}

	writeJSON(w, result)
}

// EditImage applies a text instruction to an existing image
// @Summary Edit product image
// @Description Costs 3 credits. The charge is refunded if the image service fails.
// @Tags images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EditImageRequest true "Edit request"
// @Success 200 {object} services.StudioResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse "Insufficient credits"
// @Failure 429 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /images/edit [post]
func (h *StudioHandler) EditImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req EditImageRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.studio.Edit(r.Context(), userID, req.ImageURL, req.Prompt)
	if err != nil {
		h.writeStudioError(w, userID, err)
		return
	}

	writeJSON(w, result)
}

func (h *StudioHandler) writeStudioError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientCredits):
		services.SendErrorResponse(w, "Insufficient credits", http.StatusPaymentRequired, nil)
	case errors.Is(err, services.ErrRateLimited):
		services.SendErrorResponse(w, "Too many requests, please slow down", http.StatusTooManyRequests, nil)
	case errors.Is(err, services.ErrImageGeneration):
		services.SendErrorResponse(w, "Image generation failed. Your credits have been refunded.", http.StatusBadGateway, nil)
	default:
		h.logger.WithError(err).WithField("user_id", userID).Error("Studio request failed")
		services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
