// Package caisse wraps the Caisse backend endpoints used by the cashier,
// administrator and super-administrator views.
package caisse

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/gateway"
	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/utils"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Service calls the backend through the shared gateway, so every call carries
// the session token and a 401 evicts the session.
type Service struct {
	gw  *gateway.Client
	now func() time.Time
}

type Option func(*Service)

// WithClock sets the clock used for default report dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(gw *gateway.Client, opts ...Option) *Service {
	s := &Service{gw: gw, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, "profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) Clients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := s.get(ctx, "admin/clients", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Service) ClientDetails(ctx context.Context, id uint64) (*models.Client, error) {
	var client models.Client
	if err := s.get(ctx, "admin/clients/"+strconv.FormatUint(id, 10), nil, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient deletes a client account; the justification is mandatory.
func (s *Service) DeleteClient(ctx context.Context, id uint64, justification string) error {
	req := models.DeleteClientRequest{Justification: strings.TrimSpace(justification)}
	if err := utils.ValidatePayload(req); err != nil {
		return err
	}

	_, err := s.gw.Request(ctx, http.MethodDelete, "clients/"+strconv.FormatUint(id, 10), req, nil)
	return err
}

// DailyReport fetches the report of date (today when zero), restricted to
// mode unless mode is empty or PaymentModeAll.
func (s *Service) DailyReport(ctx context.Context, date time.Time, mode enums.PaymentMode) (*models.DailyReport, error) {
	if date.IsZero() {
		date = s.now()
	}

	query := map[string]string{"date": utils.ReportDate(date)}
	addMode(query, mode)

	var report models.DailyReport
	if err := s.get(ctx, "admin/daily-report", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// MonthlyReport fetches the report of month/year; zero values default to the
// current month and year.
func (s *Service) MonthlyReport(ctx context.Context, month, year int, mode enums.PaymentMode) (*models.MonthlyReport, error) {
	currentMonth, currentYear := utils.MonthYear(s.now())
	if month == 0 {
		month = currentMonth
	}
	if year == 0 {
		year = currentYear
	}
	if month < 1 || month > 12 {
		return nil, &apierror.ValidationError{
			Message: fmt.Sprintf("invalid month %d", month),
			Fields:  map[string][]string{"month": {"range"}},
		}
	}

	query := map[string]string{
		"month": strconv.Itoa(month),
		"year":  strconv.Itoa(year),
	}
	addMode(query, mode)

	var report models.MonthlyReport
	if err := s.get(ctx, "admin/monthly-report", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreatePayment records a payment after the checks the cashier form makes:
// every field filled in, a piece number for cheque and card payments, and a
// positive amount.
func (s *Service) CreatePayment(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	if err := ValidatePayment(req); err != nil {
		return nil, err
	}

	resp, err := s.gw.Request(ctx, http.MethodPost, "paiements", req, nil)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := resp.Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment: %w", err)
	}
	return &payment, nil
}

// MyPayments lists the payments recorded by the signed-in cashier.
func (s *Service) MyPayments(ctx context.Context, page, limit int) (*models.PaymentPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	query := map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}

	result := models.PaymentPage{Data: []models.Payment{}}
	if err := s.get(ctx, "paiements/mes-paiements", query, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = []models.Payment{}
	}
	return &result, nil
}

type ActivityFilter struct {
	Date       time.Time
	CaissierID uint64
	Action     enums.ActivityAction
}

// CashierActivities lists cashier activity of f.Date (today when zero). A
// zero CaissierID and ActivityAll disable those filters.
func (s *Service) CashierActivities(ctx context.Context, f ActivityFilter) ([]models.CashierActivity, error) {
	if f.Date.IsZero() {
		f.Date = s.now()
	}

	query := map[string]string{"date": utils.ReportDate(f.Date)}
	if f.CaissierID != 0 {
		query["caissier_id"] = strconv.FormatUint(f.CaissierID, 10)
	}
	if f.Action != "" && f.Action != enums.ActivityAll {
		query["action"] = string(f.Action)
	}

	activities := []models.CashierActivity{}
	if err := s.get(ctx, "superadmin/activites", query, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *Service) CashierStats(ctx context.Context) ([]models.CashierStats, error) {
	stats := []models.CashierStats{}
	if err := s.get(ctx, "superadmin/statistiques", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) DeletionRequests(ctx context.Context) ([]models.DeletionRequest, error) {
	requests := []models.DeletionRequest{}
	if err := s.get(ctx, "superadmin/demandes-suppression", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// ReviewDeletionRequest approves or refuses a pending deletion request.
func (s *Service) ReviewDeletionRequest(ctx context.Context, id uint64, decision enums.DeletionRequestStatus) error {
	req := models.ReviewDeletionRequest{Statut: decision}
	if err := utils.ValidatePayload(req); err != nil {
		return err
	}

	path := fmt.Sprintf("superadmin/demandes-suppression/%d/traiter", id)
	_, err := s.gw.Request(ctx, http.MethodPost, path, req, nil)
	return err
}

func (s *Service) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	resp, err := s.gw.Request(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func addMode(query map[string]string, mode enums.PaymentMode) {
	if mode != "" && mode != enums.PaymentModeAll {
		query["mode"] = string(mode)
	}
}
