package reportinghttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/repdesk/repdesk/internal/platform/httpx"
	"github.com/repdesk/repdesk/internal/reporting"
	"github.com/repdesk/repdesk/internal/reporting/export"
	"github.com/repdesk/repdesk/internal/shared"
	gotenberg "github.com/repdesk/repdesk/report"
)

const (
	requestTimeout = 5 * time.Second
	pdfTimeout     = 40 * time.Second
	maxTopN        = 100
)

// ReportService builds representative reports.
type ReportService interface {
	RepresentativeReport(ctx context.Context, filter reporting.ReportFilter) (reporting.Report, error)
}

// CacheInvalidator drops every cached dataset.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// RBACService exposes permission resolution for RBAC guards.
type RBACService interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// PDFService renders report content to PDF bytes.
type PDFService interface {
	RenderProfile(ctx context.Context, payload export.PDFPayload) ([]byte, error)
}

// Pinger reports whether the PDF backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ExportRecorder counts finished exports.
type ExportRecorder interface {
	RecordExport(format string, err error)
}

// Handler coordinates HTTP requests for representative reports.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	cache    CacheInvalidator
	pdf      PDFService
	rbac     RBACService
	pinger   Pinger
	metrics  ExportRecorder
	format   reporting.FormatConfig
	validate *validator.Validate
	csvPool  sync.Pool
	now      func() time.Time
}

// NewHandler constructs the reporting HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, cache CacheInvalidator, pdf PDFService, rbac RBACService, format reporting.FormatConfig) *Handler {
	h := &Handler{
		logger:   logger,
		service:  service,
		cache:    cache,
		pdf:      pdf,
		rbac:     rbac,
		format:   format,
		validate: validator.New(),
		now:      time.Now,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithPinger attaches a health check for the PDF backend.
func (h *Handler) WithPinger(p Pinger) *Handler {
	h.pinger = p
	return h
}

// WithMetrics records export outcomes.
func (h *Handler) WithMetrics(m ExportRecorder) *Handler {
	h.metrics = m
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type reportRequest struct {
	filter reporting.ReportFilter
	lang   string
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.RepresentativeReport(ctx, req.filter)
	if err != nil {
		h.handleServiceError(w, "load report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newReportResponse(report, h.formatter(req.lang)))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r, true)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.RepresentativeReport(ctx, req.filter)
	if err != nil {
		h.recordExport("csv", err)
		h.handleServiceError(w, "load report", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	err = export.WriteProfileCSV(buf, report, h.formatter(req.lang))
	h.recordExport("csv", err)
	if err != nil {
		h.handleServerError(w, "write profile csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(report, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

type customBounds struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type pdfRequest struct {
	UserID string        `json:"userId" validate:"required,max=64"`
	Period string        `json:"period" validate:"omitempty,oneof=this_month last_month last_3_months ytd custom"`
	Custom *customBounds `json:"custom"`
	Lang   string        `json:"lang" validate:"omitempty,oneof=en ar"`
	TopN   int           `json:"topN" validate:"omitempty,min=1,max=100"`
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	var body pdfRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	body.UserID = strings.TrimSpace(body.UserID)
	if body.Period != "" {
		body.Period = string(reporting.ParsePeriod(body.Period))
	}
	body.Lang = strings.ToLower(strings.TrimSpace(body.Lang))
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	principal, err := h.authorize(r.Context(), body.UserID, true)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}
	if h.pdf == nil {
		h.handleServerError(w, "pdf exporter", export.ErrRendererMissing)
		return
	}

	var custom reporting.TimeRange
	if body.Custom != nil {
		custom, err = parseCustom(body.Custom.Start, body.Custom.End)
		if err != nil {
			h.handleFilterError(w, err)
			return
		}
	}
	filter := reporting.ReportFilter{
		TenantID: principal.TenantID,
		ActorID:  body.UserID,
		Period:   periodOrCustom(reporting.ParsePeriod(body.Period)),
		Custom:   custom,
		TopN:     body.TopN,
	}

	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	report, err := h.service.RepresentativeReport(ctx, filter)
	if err != nil {
		h.recordExport("pdf", err)
		h.handleServiceError(w, "load report", err)
		return
	}
	pdfBytes, err := h.pdf.RenderProfile(ctx, export.PDFPayload{Report: report, Formatter: h.formatter(body.Lang)})
	h.recordExport("pdf", err)
	if err != nil {
		var upstream *gotenberg.UpstreamError
		if errors.As(err, &upstream) {
			err = fmt.Errorf("%w: pdf renderer returned %d", httpx.ErrUnavailable, upstream.Status)
		}
		h.handleServiceError(w, "render pdf", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(report, "pdf")))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	principal, err := shared.PrincipalFromContext(r.Context())
	if err != nil {
		h.respondAuthError(w, err)
		return
	}
	if err := h.require(r.Context(), principal, shared.PermReportsManage); err != nil {
		h.respondAuthError(w, err)
		return
	}
	if h.cache == nil {
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "no-cache"})
		return
	}
	if err := h.cache.Bump(r.Context()); err != nil {
		h.handleServerError(w, "bump cache", err)
		return
	}
	if h.logger != nil {
		h.logger.Info("report cache invalidated", slog.Int64("user_id", principal.UserID))
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "bumped"})
}

func (h *Handler) handlePDFHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "renderer": "local"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		if h.logger != nil {
			h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		}
		httpx.RespondError(w, fmt.Errorf("%w: pdf renderer unreachable", httpx.ErrUnavailable))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "renderer": "gotenberg"})
}

// prepare authorizes the caller for the {id} in the route and parses the
// query filters.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request, exporting bool) (reportRequest, bool) {
	actorID := strings.TrimSpace(chi.URLParam(r, "id"))
	if actorID == "" {
		h.handleFilterError(w, validationError{field: "id"})
		return reportRequest{}, false
	}
	principal, err := h.authorize(r.Context(), actorID, exporting)
	if err != nil {
		h.respondAuthError(w, err)
		return reportRequest{}, false
	}
	req, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return reportRequest{}, false
	}
	req.filter.TenantID = principal.TenantID
	req.filter.ActorID = actorID
	return req, true
}

// authorize lets representatives read and export their own report. Other
// reports need reports.view_all, plus reports.export when exporting.
func (h *Handler) authorize(ctx context.Context, actorID string, exporting bool) (shared.Principal, error) {
	principal, err := shared.PrincipalFromContext(ctx)
	if err != nil {
		return shared.Principal{}, err
	}
	if principal.Owns(actorID) {
		return principal, nil
	}
	perms := []string{shared.PermReportsViewAll}
	if exporting {
		perms = append(perms, shared.PermReportsExport)
	}
	if err := h.require(ctx, principal, perms...); err != nil {
		return shared.Principal{}, err
	}
	return principal, nil
}

func (h *Handler) require(ctx context.Context, principal shared.Principal, perms ...string) error {
	if h.rbac == nil {
		return errors.New("rbac service missing")
	}
	granted, err := h.rbac.EffectivePermissions(ctx, principal.UserID)
	if err != nil {
		return err
	}
	for _, perm := range perms {
		if !shared.HasPermission(granted, perm) {
			return shared.ErrPermissionDenied
		}
	}
	return nil
}

func (h *Handler) parseFilters(r *http.Request) (reportRequest, error) {
	q := r.URL.Query()
	custom, err := parseCustom(q.Get("start"), q.Get("end"))
	if err != nil {
		return reportRequest{}, err
	}

	period := reporting.ParsePeriod(q.Get("period"))
	if strings.TrimSpace(q.Get("period")) == "" && custom.Bounded() {
		period = reporting.PeriodCustom
	}

	var topN int
	if raw := strings.TrimSpace(q.Get("top_n")); raw != "" {
		topN, err = strconv.Atoi(raw)
		if err != nil || topN < 1 || topN > maxTopN {
			return reportRequest{}, validationError{field: "top_n"}
		}
	}

	lang := strings.ToLower(strings.TrimSpace(q.Get("lang")))
	if lang != "" && lang != "en" && lang != "ar" {
		return reportRequest{}, validationError{field: "lang"}
	}

	return reportRequest{
		filter: reporting.ReportFilter{Period: periodOrCustom(period), Custom: custom, TopN: topN},
		lang:   lang,
	}, nil
}

func parseCustom(start, end string) (reporting.TimeRange, error) {
	from, err := reporting.ParseBound(start, false)
	if err != nil {
		return reporting.TimeRange{}, validationError{field: "start"}
	}
	to, err := reporting.ParseBound(end, true)
	if err != nil {
		return reporting.TimeRange{}, validationError{field: "end"}
	}
	return reporting.TimeRange{Start: from, End: to}, nil
}

// periodOrCustom maps unrecognised names onto the custom range.
func periodOrCustom(p reporting.PeriodName) reporting.PeriodName {
	if p.Known() {
		return p
	}
	return reporting.PeriodCustom
}

func (h *Handler) formatter(lang string) reporting.Formatter {
	cfg := h.format
	if lang != "" {
		cfg.Locale = lang
	}
	return reporting.NewFormatter(cfg)
}

func exportFilename(report reporting.Report, ext string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, report.Representative.ID)
	if id == "" {
		id = "representative"
	}
	return fmt.Sprintf("report-%s-%s.%s", id, report.Period, ext)
}

func (h *Handler) recordExport(format string, err error) {
	if h.metrics != nil {
		h.metrics.RecordExport(format, err)
	}
}

func (h *Handler) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		httpx.RespondError(w, httpx.ErrUnauthorized)
	case errors.Is(err, shared.ErrPermissionDenied):
		httpx.RespondError(w, httpx.ErrForbidden)
	default:
		h.handleServerError(w, "authorization", err)
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", vErr.Error())
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, reporting.ErrRepresentativeNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "representative not found")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s", httpx.ErrTimeout, op)
	}
	h.handleServerError(w, op, err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}

// HandleReportForTest exposes the JSON report handler for tests.
func (h *Handler) HandleReportForTest(w http.ResponseWriter, r *http.Request) { h.handleReport(w, r) }

// HandleCSVForTest exposes the CSV handler for tests.
func (h *Handler) HandleCSVForTest(w http.ResponseWriter, r *http.Request) { h.handleCSV(w, r) }

// HandlePDFForTest exposes the PDF handler for tests.
func (h *Handler) HandlePDFForTest(w http.ResponseWriter, r *http.Request) { h.handlePDF(w, r) }
