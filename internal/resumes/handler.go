package resumes

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/server/middleware"
	"resume-generator/internal/shared/server/respond"
	"resume-generator/internal/shared/util"
)

const (
	msgNoFile         = "No resume file provided"
	msgNoFileSelected = "No file selected"
	msgNoJD           = "Job description is required"
	msgBadFileType    = "Invalid file type. Only PDF, PNG, JPG, JPEG allowed"
	msgNoText         = "No text found in the uploaded file"
	msgStructuring    = "Failed to generate structured resume"
	msgResumeNotFound = "Resume not found"
	msgUserNotFound   = "User not found"
)

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the authenticated resume routes. guards run before generation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	generate := append(append([]gin.HandlerFunc{}, guards...), h.generate)
	rg.POST("/generate-resume", generate...)
	rg.POST("/resume/:id", h.fetch)
	rg.GET("/user-resumes", h.list)
}

// RegisterInternalRoutes attaches routes for trusted callers such as payment webhooks.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/:id/unlock", h.unlock)
}

func (h *Handler) generate(c *gin.Context) {
	fh, err := c.FormFile("resume_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", middleware.TooLargeMessage, nil)
		case hasFormValue(c, "resume_file"):
			respond.BadRequest(c, msgNoFileSelected)
		default:
			respond.BadRequest(c, msgNoFile)
		}
		return
	}
	if strings.TrimSpace(fh.Filename) == "" {
		respond.BadRequest(c, msgNoFileSelected)
		return
	}

	jobDescription := c.PostForm("job_description")
	if strings.TrimSpace(jobDescription) == "" {
		respond.BadRequest(c, msgNoJD)
		return
	}
	if _, ok := AllowedExtensions[util.FileExtension(fh.Filename)]; !ok {
		respond.BadRequest(c, msgBadFileType)
		return
	}

	data, err := readUpload(fh)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", middleware.TooLargeMessage, nil)
			return
		}
		respond.Internal(c, "Internal server error: "+err.Error())
		return
	}

	rec, err := h.Svc.Generate(c.Request.Context(), middleware.IdentityFromContext(c), Upload{
		FileName:       fh.Filename,
		ContentType:    fh.Header.Get("Content-Type"),
		Data:           data,
		JobDescription: jobDescription,
	})
	c.Set(middleware.StatusTransitionKey, string(StageFor(err)))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFile):
			respond.BadRequest(c, msgBadFileType)
		case errors.Is(err, ErrMissingJobDescription):
			respond.BadRequest(c, msgNoJD)
		case errors.Is(err, ErrNoText):
			respond.BadRequest(c, msgNoText)
		case errors.Is(err, ErrStructuring):
			respond.Internal(c, msgStructuring)
		default:
			respond.Internal(c, "Internal server error: "+err.Error())
		}
		return
	}

	c.Set(middleware.ResumeIDKey, rec.ID)
	respond.OK(c, gin.H{
		"success":   true,
		"message":   "Resume generated successfully",
		"resume_id": rec.ID,
		"preview": gin.H{
			"name":      rec.Structured.Name,
			"ats_score": rec.Structured.ATSScore,
		},
	})
}

func (h *Handler) fetch(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		respond.NotFound(c, "Resource not found")
		return
	}
	c.Set(middleware.ResumeIDKey, id)

	view, err := h.Svc.Fetch(c.Request.Context(), middleware.UserEmailFromContext(c), id, c.PostForm("payment") == "1")
	if err != nil {
		h.lookupError(c, err)
		return
	}

	respond.OK(c, gin.H{
		"success":         true,
		"resume_id":       view.Record.ID,
		"created_at":      view.Record.CreatedAt,
		"data":            view.Data,
		"job_description": view.Record.JobDescription,
		"payment_status":  view.Paid,
		"full_access":     view.Paid,
	})
}

func (h *Handler) list(c *gin.Context) {
	summaries, err := h.Svc.List(c.Request.Context(), middleware.UserEmailFromContext(c))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success": true,
		"resumes": summaries,
	})
}

func (h *Handler) unlock(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		respond.NotFound(c, "Resource not found")
		return
	}
	c.Set(middleware.ResumeIDKey, id)

	if err := h.Svc.Unlock(c.Request.Context(), id, c.PostForm("reference")); err != nil {
		h.lookupError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":   true,
		"resume_id": id,
	})
}

func (h *Handler) lookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		respond.NotFound(c, msgUserNotFound)
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, msgResumeNotFound)
	default:
		respond.Internal(c, "Internal server error: "+err.Error())
	}
}

func resumeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// hasFormValue reports a multipart part sent without a filename, which
// browsers do when no file was chosen.
func hasFormValue(c *gin.Context, field string) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value[field]
	return ok
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
