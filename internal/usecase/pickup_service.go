package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"
	"tourstaff-service/pkg/utils"
)

// PickupService serves the daily pickup list: bookings from the booking source,
// guide actions stored as an overlay, and tour grouping on every read.
type PickupService struct {
	bookingSource repository.BookingSource
	statusRepo    repository.PickupStatusRepository
	reportRepo    repository.ReportRepository
	allocator     *ShiftBusAllocator
	logger        logger.Logger
	metrics       *metrics.Metrics
	location      *time.Location
}

// NewPickupService creates a new pickup service
func NewPickupService(
	bookingSource repository.BookingSource,
	statusRepo repository.PickupStatusRepository,
	reportRepo repository.ReportRepository,
	allocator *ShiftBusAllocator,
	logger logger.Logger,
	metrics *metrics.Metrics,
	location *time.Location,
) *PickupService {
	if location == nil {
		location = time.UTC
	}
	return &PickupService{
		bookingSource: bookingSource,
		statusRepo:    statusRepo,
		reportRepo:    reportRepo,
		allocator:     allocator,
		logger:        logger,
		metrics:       metrics,
		location:      location,
	}
}

// Bookings returns the date's bookings with stored guide actions applied.
func (s *PickupService) Bookings(ctx context.Context, date time.Time) ([]entity.PickupBooking, error) {
	day := utils.StartOfDay(date, s.location)

	start := time.Now()
	bookings, err := s.bookingSource.FetchBookings(ctx, day)
	s.metrics.BookingFetchTime.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("fetch_bookings").Inc()
		return nil, err
	}

	statuses, err := s.statusRepo.FindByDate(ctx, day)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("load_pickup_status").Inc()
		return nil, domain.TransientIOError{Op: "load pickup status", Err: err}
	}

	for i := range bookings {
		if st, ok := statuses[bookings[i].ID]; ok {
			st.ApplyTo(&bookings[i])
		}
	}
	return bookings, nil
}

// PickupGroups returns the date's bookings grouped into ordered tour departures.
func (s *PickupService) PickupGroups(ctx context.Context, date time.Time) ([]entity.TourGroup, error) {
	bookings, err := s.Bookings(ctx, date)
	if err != nil {
		return nil, err
	}
	groups := GroupBookings(bookings)
	s.metrics.TourGroupsBuilt.Add(float64(len(groups)))
	s.logger.Debug("Built tour groups",
		"date", utils.FormatDate(date, s.location),
		"bookings", len(bookings),
		"groups", len(groups))
	return groups, nil
}

// MarkArrived records that a customer was picked up.
func (s *PickupService) MarkArrived(ctx context.Context, date time.Time, bookingID string) error {
	return s.markTerminal(ctx, date, bookingID, true)
}

// MarkNoShow records that a customer did not show up.
func (s *PickupService) MarkNoShow(ctx context.Context, date time.Time, bookingID string) error {
	return s.markTerminal(ctx, date, bookingID, false)
}

func (s *PickupService) markTerminal(ctx context.Context, date time.Time, bookingID string, arrived bool) error {
	if strings.TrimSpace(bookingID) == "" {
		return domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	day := utils.StartOfDay(date, s.location)
	if err := s.statusRepo.MarkTerminal(ctx, day, bookingID, arrived); err != nil {
		if domain.IsStateConflict(err) {
			return err
		}
		return domain.TransientIOError{Op: "mark pickup", Err: err}
	}
	s.logger.Info("Pickup status recorded",
		"bookingId", bookingID,
		"date", utils.FormatDate(day, s.location),
		"arrived", arrived)
	return nil
}

// MarkPaidOnArrival records payment collected from an unpaid booking.
func (s *PickupService) MarkPaidOnArrival(ctx context.Context, date time.Time, bookingID string) error {
	if strings.TrimSpace(bookingID) == "" {
		return domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	day := utils.StartOfDay(date, s.location)
	if err := s.statusRepo.MarkPaid(ctx, day, bookingID); err != nil {
		return domain.TransientIOError{Op: "mark paid", Err: err}
	}
	s.logger.Info("Payment on arrival recorded", "bookingId", bookingID, "date", utils.FormatDate(day, s.location))
	return nil
}

// AssignGuide hands every booking of a tour group to a guide and returns the updated group.
func (s *PickupService) AssignGuide(ctx context.Context, date time.Time, groupKey, guideID, guideName string) (entity.TourGroup, error) {
	if strings.TrimSpace(guideID) == "" {
		return entity.TourGroup{}, domain.ValidationError{Field: "guideId", Msg: "is required"}
	}

	groups, err := s.PickupGroups(ctx, date)
	if err != nil {
		return entity.TourGroup{}, err
	}
	group, ok := FindTourGroup(groups, groupKey)
	if !ok {
		return entity.TourGroup{}, domain.NotFoundError{Resource: "tour group", ID: groupKey}
	}

	ids := make([]string, 0, len(group.Bookings))
	for _, b := range group.Bookings {
		ids = append(ids, b.ID)
	}
	day := utils.StartOfDay(date, s.location)
	if err := s.statusRepo.AssignGuide(ctx, day, ids, guideID, guideName); err != nil {
		return entity.TourGroup{}, domain.TransientIOError{Op: "assign guide", Err: err}
	}

	for i := range group.Bookings {
		group.Bookings[i].AssignedGuideID = guideID
		group.Bookings[i].AssignedGuideName = guideName
	}
	s.logger.Info("Guide assigned to tour group",
		"groupKey", groupKey,
		"guideId", guideID,
		"bookings", len(ids))
	return group, nil
}

// PublishPickupReport writes the date's grouped pickup list to the report sink.
func (s *PickupService) PublishPickupReport(ctx context.Context, date time.Time) (int, error) {
	groups, err := s.PickupGroups(ctx, date)
	if err != nil {
		return 0, err
	}
	rows, err := s.reportRepo.WritePickupReport(ctx, utils.StartOfDay(date, s.location), groups)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("write_report").Inc()
		return 0, domain.TransientIOError{Op: "write pickup report", Err: err}
	}
	s.metrics.ReportRowsWritten.Add(float64(rows))
	s.logger.Info("Pickup report published", "date", utils.FormatDate(date, s.location), "rows", rows)
	return rows, nil
}

// BusAssignments builds the admin bus view with seats taken by each guide's assigned passengers.
func (s *PickupService) BusAssignments(ctx context.Context, date time.Time) ([]entity.BusAssignment, error) {
	if s.allocator == nil {
		return nil, fmt.Errorf("bus assignments: allocator not configured")
	}

	bookings, err := s.Bookings(ctx, date)
	if err != nil {
		s.logger.Warn("Bookings unavailable, bus seats shown as empty", "error", err)
		bookings = nil
	}

	return s.allocator.BusAssignments(ctx, date, bookings)
}
