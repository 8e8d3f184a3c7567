package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wacms/internal/models"
)

var positionalPlaceholder = regexp.MustCompile(`\{\{(\d+)\}\}`)

const namePlaceholder = "{{name}}"

// TemplateStore is the part of the state container holding local templates
type TemplateStore interface {
	Templates() []models.MessageTemplate
	Template(id string) (models.MessageTemplate, bool)
	AddTemplate(t models.MessageTemplate)
	UpdateTemplate(id string, fn func(*models.MessageTemplate)) (models.MessageTemplate, bool)
	RemoveTemplate(id string) bool
}

// TemplateLister fetches the provider's template catalog
type TemplateLister interface {
	ListTemplates(ctx context.Context) ([]models.ProviderTemplate, error)
}

// TemplateService owns local templates and the last-fetched provider catalog
type TemplateService struct {
	store  TemplateStore
	lister TemplateLister

	mu       sync.RWMutex
	catalog  []models.ProviderTemplate
	syncedAt time.Time
}

// NewTemplateService creates a new template service
func NewTemplateService(store TemplateStore, lister TemplateLister) *TemplateService {
	return &TemplateService{
		store:  store,
		lister: lister,
	}
}

// ListTemplates returns the local templates
func (s *TemplateService) ListTemplates() []models.MessageTemplate {
	return s.store.Templates()
}

// GetTemplate returns one local template
func (s *TemplateService) GetTemplate(id string) (*models.MessageTemplate, error) {
	t, ok := s.store.Template(id)
	if !ok {
		return nil, &NotFoundError{Resource: "template", ID: id}
	}
	return &t, nil
}

// CreateTemplate stores a new local template
func (s *TemplateService) CreateTemplate(req *TemplateRequest) (*models.MessageTemplate, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	t := models.MessageTemplate{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	s.store.AddTemplate(t)
	return &t, nil
}

// UpdateTemplate replaces the name and content of a local template
func (s *TemplateService) UpdateTemplate(id string, req *TemplateRequest) (*models.MessageTemplate, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	t, ok := s.store.UpdateTemplate(id, func(t *models.MessageTemplate) {
		t.Name = req.Name
		t.Content = req.Content
	})
	if !ok {
		return nil, &NotFoundError{Resource: "template", ID: id}
	}
	return &t, nil
}

// DeleteTemplate removes a local template
func (s *TemplateService) DeleteTemplate(id string) error {
	if !s.store.RemoveTemplate(id) {
		return &NotFoundError{Resource: "template", ID: id}
	}
	return nil
}

// SyncProviderTemplates fetches the provider catalog and caches it
func (s *TemplateService) SyncProviderTemplates(ctx context.Context) ([]models.ProviderTemplate, error) {
	templates, err := s.lister.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.catalog = templates
	s.syncedAt = time.Now().UTC()
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"total":    len(templates),
		"approved": len(filterSendable(templates)),
	}).Info("Templates: provider catalog synced")

	return templates, nil
}

// ProviderTemplates returns the cached catalog and when it was fetched
func (s *TemplateService) ProviderTemplates() ([]models.ProviderTemplate, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ProviderTemplate(nil), s.catalog...), s.syncedAt
}

// ApprovedTemplates returns cached templates that can be sent
func (s *TemplateService) ApprovedTemplates() []models.ProviderTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterSendable(s.catalog)
}

// FindProviderTemplate resolves a sendable template from the cached catalog
func (s *TemplateService) FindProviderTemplate(id string) (*models.ProviderTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.catalog {
		if t.ID == id && t.IsSendable() {
			found := t
			return &found, nil
		}
	}
	return nil, &NotFoundError{Resource: "provider template", ID: id}
}

// MirrorProviderTemplate copies a provider template body into a local template
func (s *TemplateService) MirrorProviderTemplate(id string) (*models.MessageTemplate, error) {
	pt, err := s.FindProviderTemplate(id)
	if err != nil {
		return nil, err
	}
	body, _ := pt.BodyText()
	return s.CreateTemplate(&TemplateRequest{Name: pt.Name, Content: body})
}

func filterSendable(templates []models.ProviderTemplate) []models.ProviderTemplate {
	out := []models.ProviderTemplate{}
	for _, t := range templates {
		if t.IsSendable() {
			out = append(out, t)
		}
	}
	return out
}

// ParameterCount counts {{n}} tokens in a body. Repeated tokens count once per occurrence.
func ParameterCount(body string) int {
	return len(positionalPlaceholder.FindAllString(body, -1))
}

// ResolveParameters builds the ordered variable list for one recipient.
// A non-blank override wins; otherwise slot 1 is the name, slot 2 the phone
// and later slots are empty.
func ResolveParameters(body string, contact models.Contact, overrides []string) []string {
	n := ParameterCount(body)
	values := make([]string, n)
	for i := 0; i < n; i++ {
		if i < len(overrides) && strings.TrimSpace(overrides[i]) != "" {
			values[i] = overrides[i]
			continue
		}
		switch i {
		case 0:
			values[i] = contact.Name
		case 1:
			values[i] = contact.Phone
		default:
			values[i] = ""
		}
	}
	return values
}

// RenderPositional substitutes {{k}} with values[k-1]; tokens without a value are kept
func RenderPositional(body string, values []string) string {
	return positionalPlaceholder.ReplaceAllStringFunc(body, func(token string) string {
		k, err := strconv.Atoi(positionalPlaceholder.FindStringSubmatch(token)[1])
		if err != nil || k < 1 || k > len(values) {
			return token
		}
		return values[k-1]
	})
}

// RenderNamed substitutes {{name}} in a local template
func RenderNamed(content string, contact models.Contact) string {
	return strings.ReplaceAll(content, namePlaceholder, contact.Name)
}

// Request types

// TemplateRequest is the payload to create or update a local template
type TemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (r *TemplateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Content = strings.TrimSpace(r.Content)
}

// Validate validates the template request
func (r TemplateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 1024)),
	)
}
