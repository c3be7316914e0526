package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/middleware"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// RegistryHandler handles the public certified-persons registry and the
// admin certificate screens.
type RegistryHandler struct {
	registryService *service.RegistryService
	mediaService    *service.MediaService
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(registryService *service.RegistryService, mediaService *service.MediaService) *RegistryHandler {
	return &RegistryHandler{
		registryService: registryService,
		mediaService:    mediaService,
	}
}

// ListRegistry godoc
// GET /api/v1/registry?page=&per_page=&search=
// Public listing of certified persons with ratings.
func (h *RegistryHandler) ListRegistry(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)

	people, pagination, err := h.registryService.ListRegistry(c.Request.Context(), page, perPage, querySearch(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, people, pagination)
}

// GetCertificate godoc
// GET /api/v1/users/:id/certificate
// Returns one user's certificate record.
func (h *RegistryHandler) GetCertificate(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	cert, err := h.registryService.GetCertificate(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, cert)
}

// DownloadCertificate godoc
// GET /api/v1/users/:id/certificate/file
// Streams the stored certificate document.
func (h *RegistryHandler) DownloadCertificate(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	cert, err := h.registryService.GetCertificate(c.Request.Context(), userID)
	if err != nil || cert.FilePath == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	abs, err := h.mediaService.ResolveStoredPath(*cert.FilePath)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	name := "certificate.pdf"
	if cert.FileName != nil {
		name = *cert.FileName
	}
	c.FileAttachment(abs, name)
}

// UpsertCertificate godoc
// PUT /api/v1/admin/users/:id/certificate
// Issues or replaces a user's certificate.
func (h *RegistryHandler) UpsertCertificate(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.UpsertCertificateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cert, err := h.registryService.UpsertCertificate(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, cert)
}

// SetCertificateStatus godoc
// PATCH /api/v1/admin/users/:id/certificate/status
func (h *RegistryHandler) SetCertificateStatus(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status model.CertificateStatus `json:"status" binding:"required,oneof=active suspended expired"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.registryService.SetCertificateStatus(c.Request.Context(), userID, req.Status); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// UploadCertificateFile godoc
// POST /api/v1/admin/users/:id/certificate/file
// Stores the certificate document (PDF) for a user.
func (h *RegistryHandler) UploadCertificateFile(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer src.Close()

	rel, err := h.mediaService.SaveCertificateFile(userID, file.Filename, file.Size, src)
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	cert, err := h.registryService.AttachCertificateFile(c.Request.Context(), userID, rel, file.Filename)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, cert)
}

// GetClaimsActorID returns the acting user's ID, or 0 when anonymous.
func GetClaimsActorID(c *gin.Context) int64 {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
