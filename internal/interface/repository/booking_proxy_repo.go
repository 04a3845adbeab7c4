package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"
	"tourstaff-service/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// BookingProxyRepository fetches bookings from the server-side proxy in front of the booking API.
// Request signing towards the booking API happens inside the proxy.
type BookingProxyRepository struct {
	logger   logger.Logger
	metrics  *metrics.Metrics
	client   *http.Client
	validate *validator.Validate
	baseURL  string
	token    string
	location *time.Location
}

// NewBookingProxyRepository creates a new booking source client
func NewBookingProxyRepository(baseURL, token string, timeout time.Duration, location *time.Location, logger logger.Logger, metrics *metrics.Metrics) repository.BookingSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if location == nil {
		location = time.UTC
	}
	return &BookingProxyRepository{
		logger:   logger,
		metrics:  metrics,
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		location: location,
	}
}

// bookingRecord is the raw booking shape returned by the proxy
type bookingRecord struct {
	ID                   flexString `json:"id" validate:"required"`
	CustomerName         string     `json:"customerFullName"`
	PickupPlaceName      string     `json:"pickupPlaceName"`
	PickupTime           string     `json:"pickupTime"`
	TotalParticipants    int        `json:"totalParticipants" validate:"gte=0"`
	Phone                string     `json:"phoneNumber"`
	Email                string     `json:"email" validate:"omitempty,email"`
	ProductID            flexString `json:"productId"`
	ProductTitle         string     `json:"productTitle"`
	ProductLabels        []string   `json:"productLabels"`
	BookingType          string     `json:"bookingType"`
	StartTime            string     `json:"startTime" validate:"omitempty,datetime=15:04"`
	StartTimeID          flexString `json:"startTimeId"`
	IsUnpaid             bool       `json:"unpaid"`
	AmountToPayOnArrival float64    `json:"amountToPayOnArrival" validate:"gte=0"`
	PaidOnArrival        bool       `json:"paidOnArrival"`
}

type bookingsRequest struct {
	Date string `json:"date"`
}

type bookingsResponse struct {
	Success  bool              `json:"success"`
	Bookings []json.RawMessage `json:"bookings"`
	Error    struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// FetchBookings calls the proxy for one date. Records failing validation are skipped and logged.
func (r *BookingProxyRepository) FetchBookings(ctx context.Context, date time.Time) ([]entity.PickupBooking, error) {
	day := utils.FormatDate(date, r.location)

	jsonData, err := json.Marshal(bookingsRequest{Date: day})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/bookings/pickups", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, domain.TransientIOError{Op: "fetch bookings", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, domain.TransientIOError{
			Op:  "fetch bookings",
			Err: fmt.Errorf("booking proxy returned status %d: %v", resp.StatusCode, errorBody),
		}
	}

	var response bookingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, domain.TransientIOError{Op: "decode bookings", Err: err}
	}
	if !response.Success && response.Error.Message != "" {
		return nil, domain.TransientIOError{
			Op:  "fetch bookings",
			Err: fmt.Errorf("%s (code: %s)", response.Error.Message, response.Error.Code),
		}
	}

	bookings := make([]entity.PickupBooking, 0, len(response.Bookings))
	for i, raw := range response.Bookings {
		rec, err := r.decodeRecord(raw)
		if err != nil {
			r.metrics.MalformedBookings.Inc()
			r.logger.Warn("Skipping malformed booking record",
				"index", i,
				"bookingId", string(rec.ID),
				"error", err)
			continue
		}
		bookings = append(bookings, r.toPickupBooking(rec, date))
	}

	r.logger.Info("Fetched bookings",
		"date", day,
		"received", len(response.Bookings),
		"accepted", len(bookings))
	return bookings, nil
}

// decodeRecord decodes and validates one raw record on its own, so a bad record
// never fails the rest of the day.
func (r *BookingProxyRepository) decodeRecord(raw json.RawMessage) (bookingRecord, error) {
	var rec bookingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// keep whatever id was readable for the log line
		var idOnly struct {
			ID flexString `json:"id"`
		}
		if json.Unmarshal(raw, &idOnly) == nil {
			rec.ID = idOnly.ID
		}
		return rec, domain.ValidationError{Field: "booking", Msg: "undecodable record", Err: err}
	}
	if err := r.validate.Struct(rec); err != nil {
		return rec, domain.ValidationError{Field: "booking", Msg: "schema validation failed", Err: err}
	}
	return rec, nil
}

// toPickupBooking converts a validated record, filling explicit defaults for absent fields
func (r *BookingProxyRepository) toPickupBooking(rec bookingRecord, date time.Time) entity.PickupBooking {
	guests := rec.TotalParticipants
	if guests < 1 {
		guests = 1
	}

	labels := append([]string{rec.ProductTitle, rec.BookingType}, rec.ProductLabels...)

	return entity.PickupBooking{
		ID:                   string(rec.ID),
		CustomerName:         strings.TrimSpace(rec.CustomerName),
		PickupPlace:          strings.TrimSpace(rec.PickupPlaceName),
		PickupTime:           r.pickupTime(rec, date),
		GuestCount:           guests,
		Phone:                strings.TrimSpace(rec.Phone),
		Email:                strings.TrimSpace(rec.Email),
		ProductID:            string(rec.ProductID),
		ProductTitle:         strings.TrimSpace(rec.ProductTitle),
		DepartureTime:        rec.StartTime,
		StartTimeID:          string(rec.StartTimeID),
		IsPrivateTour:        entity.IsPrivateTourAny(labels...),
		IsUnpaid:             rec.IsUnpaid,
		AmountToPayOnArrival: rec.AmountToPayOnArrival,
		PaidOnArrival:        rec.PaidOnArrival,
	}
}

// pickupTime parses RFC3339 or HH:MM pickup times, falling back to the departure time and then to midnight
func (r *BookingProxyRepository) pickupTime(rec bookingRecord, date time.Time) time.Time {
	if rec.PickupTime != "" {
		if t, err := time.Parse(time.RFC3339, rec.PickupTime); err == nil {
			return t.In(r.location)
		}
		if t, ok := utils.AtClock(date, rec.PickupTime, r.location); ok {
			return t
		}
		r.logger.Debug("Unparseable pickup time", "bookingId", string(rec.ID), "pickupTime", rec.PickupTime)
	}
	if t, ok := utils.AtClock(date, rec.StartTime, r.location); ok {
		return t
	}
	return utils.StartOfDay(date, r.location)
}

// flexString accepts ids sent either as JSON strings or numbers
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number id, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}
