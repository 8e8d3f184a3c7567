package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wacms/internal/metrics"
	"wacms/internal/models"
	"wacms/internal/repository"
	"wacms/internal/store"
)

// CampaignStore is the part of the state container a campaign run touches
type CampaignStore interface {
	SettingsSource
	Contact(id string) (models.Contact, bool)
	Campaigns() []models.Campaign
	Campaign(id string) (models.Campaign, bool)
	AddCampaign(c models.Campaign)
	RemoveCampaign(id string) bool
	BeginSending(id string) (models.Campaign, error)
	RecordAttempt(campaignID string, entry models.MessageLog)
	FinishCampaign(id string, status models.CampaignStatus)
}

// MessageSender sends one template message
type MessageSender interface {
	SendTemplate(ctx context.Context, msg TemplateMessage) (*SendResult, error)
}

// PauseFunc waits d between two recipients. It returns early with the
// context error when ctx is done.
type PauseFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CampaignService handles campaign business logic and runs the send loop
type CampaignService struct {
	store       CampaignStore
	sender      MessageSender
	templateSvc *TemplateService
	archive     repository.LogArchiveRepository
	pause       PauseFunc

	mu        sync.Mutex
	running   map[string]context.CancelFunc
	summaries map[string]models.CampaignSummary
	wg        sync.WaitGroup
}

// NewCampaignService creates a new campaign service. archive may be nil.
func NewCampaignService(
	store CampaignStore,
	sender MessageSender,
	templateSvc *TemplateService,
	archive repository.LogArchiveRepository,
) *CampaignService {
	return &CampaignService{
		store:       store,
		sender:      sender,
		templateSvc: templateSvc,
		archive:     archive,
		pause:       sleepContext,
		running:     make(map[string]context.CancelFunc),
		summaries:   make(map[string]models.CampaignSummary),
	}
}

// SetPauseFunc replaces the pause between recipients (for testing)
func (s *CampaignService) SetPauseFunc(pause PauseFunc) {
	s.pause = pause
}

// CreateCampaign creates a draft campaign
func (s *CampaignService) CreateCampaign(req *CreateCampaignRequest) (*models.Campaign, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	for _, id := range req.Contacts {
		if _, ok := s.store.Contact(id); !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("unknown contact id %s", id)}
		}
	}

	message := req.Message
	switch {
	case req.Template != "":
		pt, err := s.templateSvc.FindProviderTemplate(req.Template)
		if err != nil {
			return nil, err
		}
		message, _ = pt.BodyText()
	case req.LocalTemplate != "":
		t, err := s.templateSvc.GetTemplate(req.LocalTemplate)
		if err != nil {
			return nil, err
		}
		message = t.Content
	}
	if message == "" {
		return nil, &ValidationError{Message: "message or template is required"}
	}

	variables := req.TemplateVariables
	if variables == nil {
		variables = []string{}
	}

	campaign := models.Campaign{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Status:            models.CampaignStatusDraft,
		Contacts:          append([]string(nil), req.Contacts...),
		Template:          req.Template,
		TemplateVariables: variables,
		Message:           message,
		TotalCount:        len(req.Contacts),
		CreatedAt:         time.Now().UTC(),
	}
	s.store.AddCampaign(campaign)

	logrus.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"recipients":  campaign.TotalCount,
	}).Info("Campaign: created")

	return &campaign, nil
}

// GetCampaign retrieves a campaign by ID
func (s *CampaignService) GetCampaign(id string) (*models.Campaign, error) {
	c, ok := s.store.Campaign(id)
	if !ok {
		return nil, &NotFoundError{Resource: "campaign", ID: id}
	}
	return &c, nil
}

// GetCampaignWithStats returns a campaign with its run state and archived
// attempt counts. Archive failures leave the counts empty.
func (s *CampaignService) GetCampaignWithStats(ctx context.Context, id string) (*CampaignWithStats, error) {
	campaign, err := s.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	result := &CampaignWithStats{
		Campaign: campaign,
		Running:  s.IsRunning(id),
	}
	if s.archive == nil {
		return result, nil
	}

	stats, err := s.archive.CountByCampaigns(ctx, []string{id})
	if err != nil {
		logrus.WithError(err).WithField("campaign_id", id).Warn("Campaign: failed to load archived stats")
		return result, nil
	}
	if st, ok := stats[id]; ok {
		result.Archived = st
		if st.Total() != campaign.SentCount {
			logrus.WithFields(logrus.Fields{
				"campaign_id": id,
				"archived":    st.Total(),
				"sent_count":  campaign.SentCount,
			}).Debug("Campaign: archive differs from local counters")
		}
	} else {
		result.Archived = &repository.CampaignLogStats{}
	}
	return result, nil
}

// ListCampaigns lists campaigns, optionally filtered by status, one page at a time
func (s *CampaignService) ListCampaigns(filters CampaignFilters) ([]models.Campaign, *PaginationInfo) {
	all := s.store.Campaigns()
	matched := make([]models.Campaign, 0, len(all))
	for _, c := range all {
		if filters.Status == nil || c.Status == *filters.Status {
			matched = append(matched, c)
		}
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pagination := &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	return matched[start:end], pagination
}

// DeleteCampaign removes a campaign that is not sending
func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	c, ok := s.store.Campaign(id)
	if !ok {
		return &NotFoundError{Resource: "campaign", ID: id}
	}
	if c.Status == models.CampaignStatusSending {
		return &ConflictError{Resource: "campaign", Message: "campaign is sending"}
	}
	if !s.store.RemoveCampaign(id) {
		return &NotFoundError{Resource: "campaign", ID: id}
	}

	s.mu.Lock()
	delete(s.summaries, id)
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.DeleteByCampaign(ctx, id); err != nil {
			logrus.WithError(err).WithField("campaign_id", id).Warn("Campaign: failed to delete archived logs")
		}
	}
	return nil
}

// CampaignHistory returns the archived attempts of a campaign
func (s *CampaignService) CampaignHistory(ctx context.Context, id string, limit int) ([]*models.MessageLog, error) {
	if _, ok := s.store.Campaign(id); !ok {
		return nil, &NotFoundError{Resource: "campaign", ID: id}
	}
	if s.archive == nil {
		return []*models.MessageLog{}, nil
	}
	entries, err := s.archive.ListByCampaign(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign history: %w", err)
	}
	return entries, nil
}

// PreviewMessage renders the campaign message for one contact without sending it
func (s *CampaignService) PreviewMessage(req *PreviewMessageRequest) (*PreviewMessageResult, error) {
	campaign, ok := s.store.Campaign(req.CampaignID)
	if !ok {
		return nil, &NotFoundError{Resource: "campaign", ID: req.CampaignID}
	}
	contact, ok := s.store.Contact(req.ContactID)
	if !ok {
		return nil, &NotFoundError{Resource: "contact", ID: req.ContactID}
	}

	overrides := campaign.TemplateVariables
	if req.Variables != nil {
		overrides = req.Variables
	}
	values := ResolveParameters(campaign.Message, contact, overrides)

	return &PreviewMessageResult{
		CampaignID:      campaign.ID,
		ContactID:       contact.ID,
		Parameters:      values,
		RenderedMessage: RenderPositional(campaign.Message, values),
	}, nil
}

// Prepare checks the run preconditions and moves the campaign to sending.
// Nothing is sent and the campaign keeps its status when a check fails.
func (s *CampaignService) Prepare(ctx context.Context, id string) (*CampaignRun, error) {
	campaign, ok := s.store.Campaign(id)
	if !ok {
		return nil, &NotFoundError{Resource: "campaign", ID: id}
	}

	settings := s.store.Settings()
	if !settings.HasSendCredentials() {
		return nil, &ConfigurationError{Message: "WhatsApp Business API credentials are not configured"}
	}

	if campaign.Template == "" {
		return nil, &ValidationError{Message: "campaign has no provider template"}
	}
	template, err := s.templateSvc.FindProviderTemplate(campaign.Template)
	if err != nil {
		return nil, err
	}
	body, _ := template.BodyText()

	campaign, err = s.store.BeginSending(id)
	switch {
	case errors.Is(err, store.ErrCampaignNotFound):
		return nil, &NotFoundError{Resource: "campaign", ID: id}
	case errors.Is(err, store.ErrCampaignNotStartable):
		return nil, &ConflictError{
			Resource: "campaign",
			Message:  fmt.Sprintf("campaign cannot be started: status is %s", campaign.Status),
		}
	case err != nil:
		return nil, fmt.Errorf("failed to start campaign: %w", err)
	}

	return &CampaignRun{
		svc:      s,
		campaign: campaign,
		template: *template,
		body:     body,
		delay:    settings.Delay(),
		log: logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"template":    template.Name,
		}),
	}, nil
}

// StartCampaign runs a campaign to completion and returns its summary
func (s *CampaignService) StartCampaign(ctx context.Context, id string) (*models.CampaignSummary, error) {
	run, err := s.Prepare(ctx, id)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.track(id, cancel)
	defer s.untrack(id)

	summary := run.Execute(runCtx)
	return &summary, nil
}

// Launch starts a campaign in the background. The run keeps going after the
// caller's request ends and stops only through CancelCampaign or Shutdown.
func (s *CampaignService) Launch(ctx context.Context, id string) (*models.Campaign, error) {
	run, err := s.Prepare(ctx, id)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.track(id, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.untrack(id)
		defer cancel()
		run.Execute(runCtx)
	}()

	campaign := run.Campaign()
	return &campaign, nil
}

// CancelCampaign stops a running campaign before its next recipient
func (s *CampaignService) CancelCampaign(id string) error {
	s.mu.Lock()
	cancel, ok := s.running[id]
	s.mu.Unlock()
	if !ok {
		if _, exists := s.store.Campaign(id); !exists {
			return &NotFoundError{Resource: "campaign", ID: id}
		}
		return &BusinessLogicError{Message: "campaign is not running"}
	}
	cancel()
	logrus.WithField("campaign_id", id).Info("Campaign: cancellation requested")
	return nil
}

// IsRunning reports whether a run of the campaign is in progress
func (s *CampaignService) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[id]
	return ok
}

// LastSummary returns the summary of the campaign's last finished run
func (s *CampaignService) LastSummary(id string) (*models.CampaignSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summaries[id]
	if !ok {
		return nil, &NotFoundError{Resource: "campaign summary", ID: id}
	}
	return &summary, nil
}

// Shutdown cancels every background run and waits for them to finalize
func (s *CampaignService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.running {
		cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CampaignService) track(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	s.running[id] = cancel
	s.mu.Unlock()
}

func (s *CampaignService) untrack(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

func (s *CampaignService) remember(summary models.CampaignSummary) {
	s.mu.Lock()
	s.summaries[summary.CampaignID] = summary
	s.mu.Unlock()
}

// CampaignRun is one pass over a campaign's recipients
type CampaignRun struct {
	svc      *CampaignService
	campaign models.Campaign
	template models.ProviderTemplate
	body     string
	delay    time.Duration
	log      *logrus.Entry

	next      int
	succeeded int
	failed    int
	skipped   int
}

// Campaign returns the campaign as it was when the run started
func (r *CampaignRun) Campaign() models.Campaign {
	return r.campaign
}

// Done reports whether every recipient has been processed
func (r *CampaignRun) Done() bool {
	return r.next >= len(r.campaign.Contacts)
}

// Step processes exactly one recipient. It reports whether a send was
// attempted; deleted contacts are skipped without one.
func (r *CampaignRun) Step(ctx context.Context) bool {
	if r.Done() {
		return false
	}
	contactID := r.campaign.Contacts[r.next]
	r.next++

	contact, ok := r.svc.store.Contact(contactID)
	if !ok {
		r.skipped++
		r.log.WithField("contact_id", contactID).Debug("Campaign: contact no longer exists, skipping")
		return false
	}

	values := ResolveParameters(r.body, contact, r.campaign.TemplateVariables)
	entry := models.MessageLog{
		ID:           uuid.NewString(),
		CampaignID:   r.campaign.ID,
		ContactID:    contact.ID,
		ContactName:  contact.Name,
		ContactPhone: contact.Phone,
		Message:      RenderPositional(r.body, values),
		SentAt:       time.Now().UTC(),
	}

	_, err := r.svc.sender.SendTemplate(ctx, TemplateMessage{
		Phone:        contact.Phone,
		TemplateName: r.template.Name,
		LanguageCode: r.template.Language,
		Variables:    values,
	})
	if err != nil {
		entry.Status = models.LogStatusFailed
		entry.Error = err.Error()
		r.failed++

		fields := r.log.WithError(err).WithField("contact_id", contact.ID)
		if IsSendFailure(err) {
			fields.Warn("Campaign: send failed")
		} else {
			fields.Error("Campaign: unexpected send error")
		}
	} else {
		entry.Status = models.LogStatusSent
		r.succeeded++
	}

	r.svc.store.RecordAttempt(r.campaign.ID, entry)
	metrics.CampaignMessages.WithLabelValues(string(entry.Status)).Inc()

	if r.svc.archive != nil {
		if err := r.svc.archive.Archive(context.WithoutCancel(ctx), &entry); err != nil {
			r.log.WithError(err).Warn("Campaign: failed to archive message log")
		}
	}
	return true
}

// Execute drives the run to the end, pausing between recipients, and sets
// the terminal status. A cancelled context stops the run before the next
// recipient.
func (r *CampaignRun) Execute(ctx context.Context) models.CampaignSummary {
	r.log.WithField("recipients", len(r.campaign.Contacts)).Info("Campaign: sending started")

	cancelled := false
	for !r.Done() {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		attempted := r.Step(ctx)
		if attempted && !r.Done() {
			if err := r.svc.pause(ctx, r.delay); err != nil {
				cancelled = true
				break
			}
		}
	}

	return r.finish(cancelled)
}

func (r *CampaignRun) finish(cancelled bool) models.CampaignSummary {
	status := models.FinalStatus(r.failed, r.campaign.TotalCount)
	if cancelled {
		status = models.CampaignStatusCompleted
		if r.succeeded == 0 {
			status = models.CampaignStatusFailed
		}
	}
	r.svc.store.FinishCampaign(r.campaign.ID, status)
	metrics.CampaignRuns.WithLabelValues(string(status)).Inc()

	summary := models.CampaignSummary{
		CampaignID: r.campaign.ID,
		Status:     status,
		Succeeded:  r.succeeded,
		Failed:     r.failed,
		Skipped:    r.skipped,
		Cancelled:  cancelled,
	}
	r.svc.remember(summary)

	r.log.WithFields(logrus.Fields{
		"status":    status,
		"succeeded": r.succeeded,
		"failed":    r.failed,
		"skipped":   r.skipped,
		"cancelled": cancelled,
	}).Info("Campaign: sending finished")

	return summary
}

// Request/Response types

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Name              string   `json:"name"`
	Contacts          []string `json:"contacts"`
	Template          string   `json:"template,omitempty"`
	LocalTemplate     string   `json:"localTemplate,omitempty"`
	TemplateVariables []string `json:"templateVariables,omitempty"`
	Message           string   `json:"message,omitempty"`
}

func (r *CreateCampaignRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Template = strings.TrimSpace(r.Template)
	r.LocalTemplate = strings.TrimSpace(r.LocalTemplate)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate validates the create campaign request
func (r CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.Contacts, validation.Required.Error("at least one contact is required")),
	)
}

// CampaignWithStats is a campaign plus run state and archive counts
type CampaignWithStats struct {
	Campaign *models.Campaign             `json:"campaign"`
	Running  bool                         `json:"running"`
	Archived *repository.CampaignLogStats `json:"archived,omitempty"`
}

// PreviewMessageRequest selects the campaign and contact to preview.
// Variables, when set, replace the campaign's stored overrides.
type PreviewMessageRequest struct {
	CampaignID string
	ContactID  string   `json:"contactId"`
	Variables  []string `json:"variables,omitempty"`
}

// PreviewMessageResult is the message one contact would receive
type PreviewMessageResult struct {
	CampaignID      string   `json:"campaignId"`
	ContactID       string   `json:"contactId"`
	Parameters      []string `json:"parameters"`
	RenderedMessage string   `json:"renderedMessage"`
}

// CampaignFilters defines filters for listing campaigns
type CampaignFilters struct {
	Page     int
	PageSize int
	Status   *models.CampaignStatus
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
