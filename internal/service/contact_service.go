package service

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wacms/internal/contactcsv"
	"wacms/internal/models"
)

// ContactStore is the part of the state container holding contacts
type ContactStore interface {
	SettingsSource
	Contacts() []models.Contact
	Contact(id string) (models.Contact, bool)
	AddContacts(contacts ...models.Contact)
	UpdateContact(id string, fn func(*models.Contact)) (models.Contact, bool)
	RemoveContact(id string) bool
}

// ContactService handles contact business logic
type ContactService struct {
	store ContactStore
}

// NewContactService creates a new contact service
func NewContactService(store ContactStore) *ContactService {
	return &ContactService{store: store}
}

// ListContacts returns contacts matching the query (all when empty)
func (s *ContactService) ListContacts(query string) []models.Contact {
	all := s.store.Contacts()
	if strings.TrimSpace(query) == "" {
		return all
	}
	out := []models.Contact{}
	for _, c := range all {
		if c.Matches(query) {
			out = append(out, c)
		}
	}
	return out
}

// GetContact returns one contact
func (s *ContactService) GetContact(id string) (*models.Contact, error) {
	c, ok := s.store.Contact(id)
	if !ok {
		return nil, &NotFoundError{Resource: "contact", ID: id}
	}
	return &c, nil
}

// AddContact validates and stores a new contact
func (s *ContactService) AddContact(req *ContactRequest) (*models.Contact, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	c := models.Contact{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Tags:      req.Tags,
		CreatedAt: time.Now().UTC(),
	}
	s.store.AddContacts(c)
	return &c, nil
}

// UpdateContact replaces name, phone and tags of a contact
func (s *ContactService) UpdateContact(id string, req *ContactRequest) (*models.Contact, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	c, ok := s.store.UpdateContact(id, func(c *models.Contact) {
		c.Name = req.Name
		c.Phone = req.Phone
		c.Tags = req.Tags
	})
	if !ok {
		return nil, &NotFoundError{Resource: "contact", ID: id}
	}
	return &c, nil
}

// RemoveContact deletes a contact; campaigns referencing it skip it at send time
func (s *ContactService) RemoveContact(id string) error {
	if !s.store.RemoveContact(id) {
		return &NotFoundError{Resource: "contact", ID: id}
	}
	return nil
}

// ImportCSV parses CSV text and adds every parsed contact in one mutation
func (s *ContactService) ImportCSV(text string) (*ImportResult, error) {
	settings := s.store.Settings()
	rows := contactcsv.Parse(text, settings.DefaultCountryCode)
	if len(rows) == 0 {
		return nil, &ValidationError{Message: "no valid contacts found in CSV"}
	}

	now := time.Now().UTC()
	contacts := make([]models.Contact, len(rows))
	for i, row := range rows {
		contacts[i] = models.Contact{
			ID:        uuid.NewString(),
			Name:      row.Name,
			Phone:     row.Phone,
			Tags:      row.Tags,
			CreatedAt: now,
		}
	}
	s.store.AddContacts(contacts...)

	logrus.WithField("imported", len(contacts)).Info("Contacts: CSV import completed")

	return &ImportResult{Imported: len(contacts), Contacts: contacts}, nil
}

// ExportCSV serializes every contact
func (s *ContactService) ExportCSV() string {
	return contactcsv.Export(s.store.Contacts())
}

// Request/Response types

// ContactRequest is the payload to add or update a contact
type ContactRequest struct {
	Name  string   `json:"name"`
	Phone string   `json:"phone"`
	Tags  []string `json:"tags"`
}

func (r *ContactRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	tags := []string{}
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	r.Tags = tags
}

// Validate validates the contact request
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.Phone, validation.Required, validation.RuneLength(1, 20)),
	)
}

// ImportResult summarizes a CSV import
type ImportResult struct {
	Imported int              `json:"imported"`
	Contacts []models.Contact `json:"contacts"`
}
