package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/booking"
	"github.com/courtline/court-reservation/internal/pkg/request"
	"github.com/courtline/court-reservation/internal/pkg/response"
)

// Availability may be served from shared caches for a short while.
const availabilityCacheControl = "public, max-age=20, stale-while-revalidate=10"

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// Availability lists the occupied slots of a court on one day. Public.
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if !auth.IsAuthenticated(c) {
		log.Ctx(c.Request.Context()).Debug().Str("court_id", req.CourtID).Msg("anonymous availability request")
	}

	slots, err := h.service.Availability(c.Request.Context(), req.CourtID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	date, _ := booking.NormalizeDate(req.Date)

	booked := make([]SlotResponse, len(slots))
	for i, s := range slots {
		booked[i] = SlotResponse{ID: s.ID, UserID: s.UserID, StartTime: s.StartTime, EndTime: s.EndTime}
	}

	c.Header("Cache-Control", availabilityCacheControl)
	c.JSON(http.StatusOK, AvailabilityResponse{CourtID: req.CourtID, Date: date, Booked: booked})
}

// List returns the caller's own bookings; upcoming only unless upcoming=false.
func (h *Handler) List(c *gin.Context) {
	var req ListOwnRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	upcoming := req.Upcoming == nil || *req.Upcoming

	items, err := h.service.ListForUser(c.Request.Context(), auth.GetUserID(c), upcoming)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(items)))
}

// ListAll returns every booking matching the filters.
// Access Control: admin only.
func (h *Handler) ListAll(c *gin.Context) {
	var req ListAllRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	items, total, err := h.service.ListAll(c.Request.Context(), booking.Filter{
		CourtID:   req.CourtID,
		UserID:    req.UserID,
		Status:    req.Status,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(items), req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:     auth.GetUserID(c),
		CourtID:    body.CourtID,
		Date:       body.Date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		CoachID:    body.CoachID,
		CoachName:  body.CoachName,
		Membership: body.Membership,
		Notes:      body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, booking.UpdateRequest{
		CourtID:    body.CourtID,
		Date:       body.Date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Notes:      body.Notes,
		CoachID:    body.CoachID,
		CoachName:  body.CoachName,
		Membership: body.Membership,
		Status:     body.Status,
	}, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c), auth.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
