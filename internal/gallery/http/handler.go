package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/gallery"
	"github.com/courtline/court-reservation/internal/pkg/request"
	"github.com/courtline/court-reservation/internal/pkg/response"
)

// Multipart overhead allowed on top of the image itself.
const formOverheadBytes = 1 << 20

type Handler struct {
	service gallery.Service
}

func NewHandler(service gallery.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListImagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	images, total, err := h.service.List(c.Request.Context(), gallery.Filter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ImageResponse, len(images))
	for i, img := range images {
		items[i] = NewImageResponse(img)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	img, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewImageResponse(img))
}

// Upload stores a new gallery image.
// Access Control: admin only.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, gallery.MaxUploadBytes+formOverheadBytes)

	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "invalid form", err)
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image is required", err)
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	img, err := h.service.Upload(c.Request.Context(), gallery.UploadInput{
		Title:       form.Title,
		Description: form.Description,
		Content:     src,
		UploadedBy:  auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewImageResponse(img))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	var body UpdateImageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	img, err := h.service.Update(c.Request.Context(), uri.ID, gallery.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewImageResponse(img))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ServeImage streams the original upload.
func (h *Handler) ServeImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	stream, img, err := h.service.Open(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()
	h.stream(c, stream, img.ContentType)
}

// ServeThumbnail streams the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	stream, _, err := h.service.OpenThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()
	h.stream(c, stream, "image/jpeg")
}

func (h *Handler) stream(c *gin.Context, r io.Reader, contentType string) {
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		// Headers are already sent.
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("image stream interrupted")
	}
}
