package usecase

import (
	"context"
	"time"

	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"
	"tourstaff-service/templates"
)

// ShiftNotifier turns allocator and pickup results into push notifications.
// Delivery problems are logged and counted, never returned.
type ShiftNotifier struct {
	staffRepo repository.StaffRepository
	pushRepo  repository.PushRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
	location  *time.Location
}

// NewShiftNotifier creates a new notifier
func NewShiftNotifier(
	staffRepo repository.StaffRepository,
	pushRepo repository.PushRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	location *time.Location,
) *ShiftNotifier {
	if location == nil {
		location = time.UTC
	}
	return &ShiftNotifier{
		staffRepo: staffRepo,
		pushRepo:  pushRepo,
		logger:    logger,
		metrics:   metrics,
		location:  location,
	}
}

// ShiftApplied notifies every admin about a new application
func (n *ShiftNotifier) ShiftApplied(ctx context.Context, shift *entity.Shift) int {
	admins, err := n.staffRepo.FindByRole(ctx, entity.StaffRoleAdmin)
	if err != nil {
		n.logger.Error("Failed to load admins for notification", "shiftId", shift.ID, "error", err)
		n.metrics.ErrorsCount.WithLabelValues("notify_admins").Inc()
		return 0
	}

	title, body := templates.ShiftApplied(shift, n.location)
	sent := 0
	for _, admin := range admins {
		if n.send(ctx, admin, entity.PushShiftApplied, title, body, shiftData(shift)) {
			sent++
		}
	}
	return sent
}

// ShiftAccepted notifies the guide that their shift was accepted with a bus
func (n *ShiftNotifier) ShiftAccepted(ctx context.Context, shift *entity.Shift) bool {
	title, body := templates.ShiftAccepted(shift, n.location)
	return n.notifyGuide(ctx, shift.GuideID, entity.PushShiftAccepted, title, body, shiftData(shift))
}

// BusReassigned notifies the guide that their bus changed
func (n *ShiftNotifier) BusReassigned(ctx context.Context, shift *entity.Shift) bool {
	title, body := templates.BusReassigned(shift, n.location)
	return n.notifyGuide(ctx, shift.GuideID, entity.PushBusReassigned, title, body, shiftData(shift))
}

// PickupAssigned sends the guide a summary of the tour group handed to them
func (n *ShiftNotifier) PickupAssigned(ctx context.Context, guideID string, group entity.TourGroup, date time.Time) bool {
	title, body := templates.PickupAssigned(group, date, n.location)
	data := map[string]string{
		"groupKey": group.GroupKey,
		"date":     date.In(n.location).Format("2006-01-02"),
	}
	return n.notifyGuide(ctx, guideID, entity.PushPickupList, title, body, data)
}

func (n *ShiftNotifier) notifyGuide(ctx context.Context, guideID string, pushType entity.PushType, title, body string, data map[string]string) bool {
	guide, err := n.staffRepo.FindByID(ctx, guideID)
	if err != nil {
		n.logger.Warn("Failed to load guide for notification", "guideId", guideID, "type", pushType, "error", err)
		n.metrics.PushMessages.WithLabelValues(string(pushType), "no_recipient").Inc()
		return false
	}
	return n.send(ctx, guide, pushType, title, body, data)
}

func (n *ShiftNotifier) send(ctx context.Context, member *entity.StaffMember, pushType entity.PushType, title, body string, data map[string]string) bool {
	if member.FCMToken == "" {
		n.logger.Info("Skipping push, no device token", "staffId", member.ID, "type", pushType)
		n.metrics.PushMessages.WithLabelValues(string(pushType), "no_token").Inc()
		return false
	}

	msg := &entity.PushMessage{
		Type:  pushType,
		Token: member.FCMToken,
		Title: title,
		Body:  body,
		Data:  data,
	}
	messageID, err := n.pushRepo.Send(ctx, msg)
	if err != nil {
		n.logger.Error("Failed to send push", "staffId", member.ID, "type", pushType, "error", err)
		n.metrics.PushMessages.WithLabelValues(string(pushType), "failed").Inc()
		return false
	}

	n.logger.Info("Push sent", "staffId", member.ID, "type", pushType, "messageId", messageID)
	n.metrics.PushMessages.WithLabelValues(string(pushType), "sent").Inc()
	return true
}

func shiftData(shift *entity.Shift) map[string]string {
	return map[string]string{
		"shiftId":   shift.ID,
		"shiftType": string(shift.Type),
		"status":    string(shift.Status),
		"busId":     shift.BusID,
	}
}
