package models

import "time"

// MessageTemplate is a locally stored message body
type MessageTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TemplateStatus is the provider review status of a template
type TemplateStatus string

const (
	TemplateStatusApproved TemplateStatus = "APPROVED"
	TemplateStatusPending  TemplateStatus = "PENDING"
	TemplateStatusRejected TemplateStatus = "REJECTED"
)

// Component types of a provider template
const (
	ComponentHeader  = "HEADER"
	ComponentBody    = "BODY"
	ComponentFooter  = "FOOTER"
	ComponentButtons = "BUTTONS"
)

// TemplateButton is a button attached to a BUTTONS component
type TemplateButton struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// TemplateComponent is one section of a provider template
type TemplateComponent struct {
	Type    string           `json:"type"`
	Format  string           `json:"format,omitempty"`
	Text    string           `json:"text,omitempty"`
	Buttons []TemplateButton `json:"buttons,omitempty"`
}

// ProviderTemplate is a template registered with the messaging provider
type ProviderTemplate struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Status     TemplateStatus      `json:"status"`
	Category   string              `json:"category"`
	Language   string              `json:"language"`
	Components []TemplateComponent `json:"components"`
}

// BodyText returns the text of the BODY component
func (t *ProviderTemplate) BodyText() (string, bool) {
	for _, c := range t.Components {
		if c.Type == ComponentBody {
			return c.Text, true
		}
	}
	return "", false
}

// IsSendable reports whether the template is approved and has a body
func (t *ProviderTemplate) IsSendable() bool {
	_, ok := t.BodyText()
	return t.Status == TemplateStatusApproved && ok
}
