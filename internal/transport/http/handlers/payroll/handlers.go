package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"carepay/internal/domain/award"
	"carepay/internal/domain/payroll"
	"carepay/internal/money"
	"carepay/internal/platform/metrics"
	"carepay/internal/transport/http/api"
	"carepay/internal/transport/http/middleware"
	"carepay/internal/transport/http/shared"
)

// PayRunner triggers a tenant pay run; in production it is the jobs
// service so runs are recorded in job_runs.
type PayRunner interface {
	RunNow(ctx context.Context, tenantID string) (payroll.PayRunSummary, error)
}

type Handler struct {
	Service  *payroll.Service
	Runner   PayRunner
	Metrics  *metrics.Collector
	validate *validator.Validate
}

func NewHandler(service *payroll.Service, runner PayRunner, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Runner: runner, Metrics: collector, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Post("/shift-allowances", h.handleShiftAllowances)
		r.Post("/leave-accruals", h.handleLeaveAccrual)
		r.Get("/leave-balances/{userID}", h.handleGetLeaveBalance)
		r.Get("/pay-period", h.handleCurrentPeriod)
		r.Get("/pay-period/next", h.handleNextPeriod)
		r.Get("/ytd/{userID}", h.handleYearToDate)
		r.Post("/pay-run", h.handlePayRun)
	})
}

type calculatePayload struct {
	UserID   string  `json:"userId" validate:"required"`
	GrossPay float64 `json:"grossPay" validate:"gte=0"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload calculatePayload
	if !h.decode(w, r, &payload) {
		return
	}

	gross, err := money.NonNegativeFromFloat(payload.GrossPay)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_gross", "grossPay must be a non-negative amount", middleware.GetRequestID(r.Context()))
		return
	}

	calc, err := h.Service.Calculate(r.Context(), payload.UserID, principal.TenantID, gross)
	if h.Metrics != nil {
		h.Metrics.RecordCalculation(err)
	}
	if err != nil {
		h.failDomain(w, r, err, "calculation_failed", "pay calculation failed")
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

type shiftPayload struct {
	StartTime          string  `json:"startTime" validate:"required"`
	EndTime            string  `json:"endTime" validate:"required"`
	BaseRate           float64 `json:"baseRate" validate:"gt=0"`
	UnpaidBreakMinutes int     `json:"unpaidBreakMinutes" validate:"gte=0"`
	IsPublicHoliday    bool    `json:"isPublicHoliday"`
	IsWeekend          bool    `json:"isWeekend"`
	IsSleepover        bool    `json:"isSleepover"`
}

func (h *Handler) handleShiftAllowances(w http.ResponseWriter, r *http.Request) {
	var payload shiftPayload
	if !h.decode(w, r, &payload) {
		return
	}

	start, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_shift", "startTime must be RFC3339", middleware.GetRequestID(r.Context()))
		return
	}
	end, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_shift", "endTime must be RFC3339", middleware.GetRequestID(r.Context()))
		return
	}

	breakdown, err := h.Service.ShiftAllowances(award.Shift{
		StartTime:          start,
		EndTime:            end,
		BaseRate:           decimal.NewFromFloat(payload.BaseRate),
		UnpaidBreakMinutes: payload.UnpaidBreakMinutes,
		IsPublicHoliday:    payload.IsPublicHoliday,
		IsWeekend:          payload.IsWeekend,
		IsSleepover:        payload.IsSleepover,
	})
	if err != nil {
		h.failDomain(w, r, err, "allowance_failed", "shift allowance calculation failed")
		return
	}
	api.Success(w, breakdown, middleware.GetRequestID(r.Context()))
}

type leaveAccrualPayload struct {
	UserID      string  `json:"userId" validate:"required"`
	HoursWorked float64 `json:"hoursWorked" validate:"gte=0"`
}

func (h *Handler) handleLeaveAccrual(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload leaveAccrualPayload
	if !h.decode(w, r, &payload) {
		return
	}

	hours, err := money.NonNegativeFromFloat(payload.HoursWorked)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_hours", "hoursWorked must be non-negative", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.AccrueLeave(r.Context(), payload.UserID, principal.TenantID, hours)
	if err != nil {
		h.failDomain(w, r, err, "accrual_failed", "leave accrual failed")
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetLeaveBalance(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	userID := chi.URLParam(r, "userID")
	balance, found, err := h.Service.LeaveBalance(r.Context(), userID, principal.TenantID)
	if err != nil {
		h.failDomain(w, r, err, "balance_failed", "leave balance lookup failed")
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "no leave balance for employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	ref, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be RFC3339 or YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	if ref.IsZero() {
		ref = time.Now()
	}
	api.Success(w, payroll.CurrentPeriod(ref), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNextPeriod(w http.ResponseWriter, r *http.Request) {
	end, err := shared.ParseDate(r.URL.Query().Get("end"))
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "end must be RFC3339 or YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payroll.NextPeriod(end), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleYearToDate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	asOf, err := shared.ParseDate(r.URL.Query().Get("asOf"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "asOf must be RFC3339 or YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	userID := chi.URLParam(r, "userID")
	gross, err := h.Service.LiveYearToDateGross(r.Context(), userID, principal.TenantID, asOf)
	if err != nil {
		h.failDomain(w, r, err, "ytd_failed", "year to date lookup failed")
		return
	}
	api.Success(w, map[string]any{
		"userId":             userID,
		"financialYearStart": shared.FormatDate(payroll.FinancialYearStart(asOf)),
		"grossYTD":           gross,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayRun(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Runner.RunNow(r.Context(), principal.TenantID)
	if err != nil {
		h.failDomain(w, r, err, "pay_run_failed", "pay run failed")
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	if err := h.validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]map[string]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, map[string]string{"field": fe.Field(), "reason": fe.Tag()})
			}
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": fields}, middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, payroll.ErrInvalidInput), errors.Is(err, award.ErrInvalidShift), errors.Is(err, money.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
