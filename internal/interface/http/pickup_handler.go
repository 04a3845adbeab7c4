package api

import (
	"context"
	"strings"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/pkg/utils"

	"github.com/gin-gonic/gin"
)

type assignGuideRequest struct {
	GuideID   string `json:"guideId" binding:"required"`
	GuideName string `json:"guideName"`
}

// parseDate reads a YYYY-MM-DD path or query value
func (h *Handler) parseDate(value, field string) (time.Time, error) {
	d, err := utils.ParseDate(strings.TrimSpace(value), h.location)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "must be YYYY-MM-DD", Err: err}
	}
	return d, nil
}

// GET /api/v1/pickups/:date/groups
func (h *Handler) GetPickupGroups(c *gin.Context) {
	date, err := h.parseDate(c.Param("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}

	groups, err := h.pickups.PickupGroups(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, groups)
}

// POST /api/v1/pickups/:date/groups/:groupKey/guide
func (h *Handler) AssignGuide(c *gin.Context) {
	date, err := h.parseDate(c.Param("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req assignGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.ValidationError{Field: "body", Msg: err.Error(), Err: err})
		return
	}

	ctx := c.Request.Context()
	group, err := h.pickups.AssignGuide(ctx, date, c.Param("groupKey"), req.GuideID, req.GuideName)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.PickupAssigned(ctx, req.GuideID, group, date)
	}
	ok(c, group)
}

// POST /api/v1/pickups/:date/bookings/:id/arrived
func (h *Handler) MarkArrived(c *gin.Context) {
	h.markBooking(c, h.pickups.MarkArrived)
}

// POST /api/v1/pickups/:date/bookings/:id/no-show
func (h *Handler) MarkNoShow(c *gin.Context) {
	h.markBooking(c, h.pickups.MarkNoShow)
}

// POST /api/v1/pickups/:date/bookings/:id/paid
func (h *Handler) MarkPaid(c *gin.Context) {
	h.markBooking(c, h.pickups.MarkPaidOnArrival)
}

func (h *Handler) markBooking(c *gin.Context, mark func(ctx context.Context, date time.Time, bookingID string) error) {
	date, err := h.parseDate(c.Param("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	bookingID := c.Param("id")
	if err := mark(c.Request.Context(), date, bookingID); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"bookingId": bookingID})
}

// POST /api/v1/pickups/:date/report
func (h *Handler) PublishReport(c *gin.Context) {
	date, err := h.parseDate(c.Param("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}

	rows, err := h.pickups.PublishPickupReport(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"date": utils.FormatDate(date, h.location), "rows": rows})
}
