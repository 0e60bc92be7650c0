package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/academy-automation/internal/http/middleware"
	"github.com/nurpe/academy-automation/internal/model"
	"github.com/nurpe/academy-automation/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillingCalculator interface {
	ComputeSplit(ctx context.Context, input model.SplitInput) (model.InvoiceSplit, error)
}

type NoteBoard interface {
	Submit(ctx context.Context, input service.SubmitNoteInput) (*service.SubmitNoteResult, error)
	ListExpiringSoon(ctx context.Context, windowHours int) ([]service.ExpiringNote, error)
}

type CertificateDesk interface {
	Issue(ctx context.Context, input service.IssueCertificateInput) (*model.Certificate, error)
	ExportRegister(ctx context.Context, from, to time.Time) (*service.ExportResult, error)
}

type TaskTrigger interface {
	RunScheduledTasks(ctx context.Context) (*service.TaskSummary, error)
}

type Handler struct {
	billing      BillingCalculator
	notes        NoteBoard
	certificates CertificateDesk
	tasks        TaskTrigger
	log          zerolog.Logger
}

func NewHandler(billing BillingCalculator, notes NoteBoard, certificates CertificateDesk, tasks TaskTrigger, log zerolog.Logger) *Handler {
	return &Handler{
		billing:      billing,
		notes:        notes,
		certificates: certificates,
		tasks:        tasks,
		log:          log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/billing/split", h.computeSplit)
	protected.POST("/hr-notes", h.submitNote)
	protected.GET("/hr-notes/expiring", h.listExpiringNotes)
	protected.POST("/certificates", h.issueCertificate)
	protected.GET("/certificates/register", h.exportRegister)
	protected.POST("/tasks/run", h.runTasks)
}

// amount accepts both JSON numbers and numeric strings.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

type splitRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	PartsTotal amount `json:"parts_total"`
	LaborTotal amount `json:"labor_total"`
	TaxRate    amount `json:"tax_rate"`
}

type splitResponse struct {
	InsuranceExcess      string `json:"insurance_excess"`
	InsuranceClaimAmount string `json:"insurance_claim_amount"`
	IsInsuranceJob       bool   `json:"is_insurance_job"`
	Subtotal             string `json:"subtotal"`
	Tax                  string `json:"tax"`
	Total                string `json:"total"`
}

func (h *Handler) computeSplit(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}

	split, err := h.billing.ComputeSplit(c.Request.Context(), model.SplitInput{
		ClientID:   clientID,
		PartsTotal: string(req.PartsTotal),
		LaborTotal: string(req.LaborTotal),
		TaxRate:    string(req.TaxRate),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, splitResponse{
		InsuranceExcess:      split.InsuranceExcess,
		InsuranceClaimAmount: split.InsuranceClaimAmount,
		IsInsuranceJob:       split.IsInsuranceJob,
		Subtotal:             split.Subtotal,
		Tax:                  split.Tax,
		Total:                split.Total,
	})
}

type submitNoteRequest struct {
	Content        string `json:"content" binding:"required"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	TargetAudience string `json:"target_audience"`
}

type noteResponse struct {
	ID             uuid.UUID  `json:"id"`
	AuthorID       uuid.UUID  `json:"author_id"`
	Content        string     `json:"content"`
	Priority       string     `json:"priority,omitempty"`
	Category       string     `json:"category,omitempty"`
	TargetAudience string     `json:"target_audience,omitempty"`
	IsPinned       bool       `json:"is_pinned"`
	PinnedUntil    *time.Time `json:"pinned_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (h *Handler) submitNote(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req submitNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.notes.Submit(c.Request.Context(), service.SubmitNoteInput{
		AuthorID:       principal.UserID,
		Content:        req.Content,
		Priority:       req.Priority,
		Category:       req.Category,
		TargetAudience: req.TargetAudience,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	note := result.Note
	c.JSON(http.StatusCreated, gin.H{
		"note": noteResponse{
			ID:             note.ID,
			AuthorID:       note.AuthorID,
			Content:        note.Content,
			Priority:       note.Priority,
			Category:       note.Category,
			TargetAudience: note.TargetAudience,
			IsPinned:       note.IsPinned,
			PinnedUntil:    note.PinnedUntil,
			CreatedAt:      note.CreatedAt,
		},
		"is_pinned":             result.IsPinned,
		"pinned_duration_hours": result.PinnedDurationHours,
	})
}

type expiringNoteResponse struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"author_name"`
	PinnedUntil time.Time `json:"pinned_until"`
	ExpiresIn   string    `json:"expires_in"`
}

func (h *Handler) listExpiringNotes(c *gin.Context) {
	windowHours := 0
	if raw := strings.TrimSpace(c.Query("window_hours")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window_hours"})
			return
		}
		windowHours = parsed
	}

	notes, err := h.notes.ListExpiringSoon(c.Request.Context(), windowHours)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]expiringNoteResponse, 0, len(notes))
	for _, note := range notes {
		items = append(items, expiringNoteResponse{
			ID:          note.ID,
			Content:     note.Content,
			AuthorName:  note.AuthorName,
			PinnedUntil: note.PinnedUntil,
			ExpiresIn:   note.ExpiresIn,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

type issueCertificateRequest struct {
	StudentID       string `json:"student_id" binding:"required"`
	CertificateType string `json:"certificate_type"`
	IssueDate       string `json:"issue_date"`
	IssuerName      string `json:"issuer_name"`
	IssuerRole      string `json:"issuer_role"`
}

type certificateResponse struct {
	ID         uuid.UUID `json:"id"`
	StudentID  uuid.UUID `json:"student_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Type       string    `json:"certificate_type"`
	Title      string    `json:"title"`
	IssuerName string    `json:"issuer_name"`
	IssuerRole string    `json:"issuer_role"`
	IssuedDate string    `json:"issued_date"`
	Verified   bool      `json:"verified"`
}

func (h *Handler) issueCertificate(c *gin.Context) {
	var req issueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, err := uuid.Parse(strings.TrimSpace(req.StudentID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	var issueDate time.Time
	if strings.TrimSpace(req.IssueDate) != "" {
		issueDate, err = parseDate(req.IssueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue_date"})
			return
		}
	}

	cert, err := h.certificates.Issue(c.Request.Context(), service.IssueCertificateInput{
		StudentID:       studentID,
		CertificateType: req.CertificateType,
		IssueDate:       issueDate,
		IssuerName:      req.IssuerName,
		IssuerRole:      req.IssuerRole,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, certificateResponse{
		ID:         cert.ID,
		StudentID:  cert.StudentID,
		DocumentID: cert.DocumentID,
		Type:       string(cert.Type),
		Title:      cert.Title,
		IssuerName: cert.IssuerName,
		IssuerRole: cert.IssuerRole,
		IssuedDate: cert.IssuedDate.Format("2006-01-02"),
		Verified:   cert.Verified,
	})
}

func (h *Handler) exportRegister(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
		return
	}

	result, err := h.certificates.ExportRegister(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) runTasks(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if !principal.IsAdmin() {
		h.handleError(c, service.ErrPermissionDenied)
		return
	}

	summary, err := h.tasks.RunScheduledTasks(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"started_at":          summary.StartedAt,
		"duration_ms":         summary.Duration.Milliseconds(),
		"students_scanned":    summary.Graduation.Scanned,
		"students_eligible":   summary.Graduation.Eligible,
		"students_graduated":  summary.Graduation.Graduated,
		"students_failed":     summary.Graduation.Failed,
		"notes_expiring_soon": summary.ExpiringNotes,
		"errors":              summary.Errors,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrTaskInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
