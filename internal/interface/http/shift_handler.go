package api

import (
	"strings"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/pkg/utils"

	"github.com/gin-gonic/gin"
)

type applyShiftRequest struct {
	GuideID   string `json:"guideId" binding:"required"`
	GuideName string `json:"guideName"`
	Type      string `json:"type" binding:"required,oneof=dayTour northernLights"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"omitempty,datetime=15:04"`
	EndTime   string `json:"endTime" binding:"omitempty,datetime=15:04"`
}

type acceptShiftRequest struct {
	BusID     string `json:"busId" binding:"required"`
	BusName   string `json:"busName"`
	AdminNote string `json:"adminNote"`
}

type reassignBusRequest struct {
	BusID   string `json:"busId" binding:"required"`
	BusName string `json:"busName"`
}

type guideRequest struct {
	GuideID string `json:"guideId" binding:"required"`
}

func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return domain.ValidationError{Field: "body", Msg: err.Error(), Err: err}
	}
	return nil
}

// GET /api/v1/shifts?date=YYYY-MM-DD or ?guideId=&from=&to=
func (h *Handler) ListShifts(c *gin.Context) {
	ctx := c.Request.Context()

	if guideID := strings.TrimSpace(c.Query("guideId")); guideID != "" {
		from, err := h.parseDate(c.Query("from"), "from")
		if err != nil {
			h.fail(c, err)
			return
		}
		to, err := h.parseDate(c.Query("to"), "to")
		if err != nil {
			h.fail(c, err)
			return
		}
		shifts, err := h.allocator.ShiftsForGuide(ctx, guideID, from, to)
		if err != nil {
			h.fail(c, err)
			return
		}
		ok(c, shifts)
		return
	}

	date, err := h.parseDate(c.Query("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	shifts, err := h.allocator.ShiftsForDate(ctx, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, shifts)
}

// POST /api/v1/shifts
func (h *Handler) ApplyForShift(c *gin.Context) {
	var req applyShiftRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := h.parseDate(req.Date, "date")
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	shift, err := h.allocator.ApplyForShift(ctx, req.GuideID, req.GuideName, entity.ShiftType(req.Type), date, req.StartTime, req.EndTime)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.ShiftApplied(ctx, shift)
	}
	created(c, shift)
}

// POST /api/v1/shifts/:id/accept
func (h *Handler) AcceptShift(c *gin.Context) {
	var req acceptShiftRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	shift, err := h.allocator.AcceptShiftAndAssignBus(ctx, c.Param("id"), req.BusID, req.BusName, req.AdminNote)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.ShiftAccepted(ctx, shift)
	}
	ok(c, shift)
}

// POST /api/v1/shifts/:id/bus
func (h *Handler) ReassignBus(c *gin.Context) {
	var req reassignBusRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	shift, err := h.allocator.ReassignBus(ctx, c.Param("id"), req.BusID, req.BusName)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.BusReassigned(ctx, shift)
	}
	ok(c, shift)
}

// POST /api/v1/shifts/:id/cancel
func (h *Handler) CancelShift(c *gin.Context) {
	var req guideRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	shift, err := h.allocator.CancelShiftApplication(c.Request.Context(), c.Param("id"), req.GuideID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, shift)
}

// POST /api/v1/shifts/:id/complete
func (h *Handler) CompleteShift(c *gin.Context) {
	var req guideRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	shift, err := h.allocator.CompleteShift(c.Request.Context(), c.Param("id"), req.GuideID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, shift)
}

// POST /api/v1/shifts/auto-complete
func (h *Handler) AutoComplete(c *gin.Context) {
	count, err := h.allocator.AutoCompletePastShifts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"completed": count})
}

// GET /api/v1/buses/:busId/availability?type=&date=&excludeShiftId=
func (h *Handler) GetBusAvailability(c *gin.Context) {
	shiftType := entity.ShiftType(c.Query("type"))
	if !shiftType.Valid() {
		h.fail(c, domain.ValidationError{Field: "type", Msg: "must be dayTour or northernLights"})
		return
	}
	date, err := h.parseDate(c.Query("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}

	busID := c.Param("busId")
	available := h.allocator.IsBusAvailableForShift(c.Request.Context(), busID, shiftType, date, c.Query("excludeShiftId"))
	ok(c, gin.H{
		"busId":     busID,
		"type":      shiftType,
		"date":      utils.FormatDate(date, h.location),
		"available": available,
	})
}

// GET /api/v1/bus-assignments/:date
func (h *Handler) GetBusAssignments(c *gin.Context) {
	date, err := h.parseDate(c.Param("date"), "date")
	if err != nil {
		h.fail(c, err)
		return
	}

	assignments, err := h.pickups.BusAssignments(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, assignments)
}
