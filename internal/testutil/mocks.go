package testutil

import (
	"context"
	"sync"

	"wacms/internal/models"
	"wacms/internal/repository"
	"wacms/internal/service"
)

// MockMessageSender mocks the gateway's template send
type MockMessageSender struct {
	SendTemplateFunc func(ctx context.Context, msg service.TemplateMessage) (*service.SendResult, error)

	mu    sync.Mutex
	Sent  []service.TemplateMessage
	Calls map[string]int
}

func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{
		Calls: make(map[string]int),
	}
}

func (m *MockMessageSender) SendTemplate(ctx context.Context, msg service.TemplateMessage) (*service.SendResult, error) {
	m.mu.Lock()
	m.Calls["SendTemplate"]++
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(ctx, msg)
	}
	return &service.SendResult{MessageID: "wamid.test"}, nil
}

// CallCount returns how many times a method ran
func (m *MockMessageSender) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// MockTemplateLister mocks the provider catalog fetch
type MockTemplateLister struct {
	ListTemplatesFunc func(ctx context.Context) ([]models.ProviderTemplate, error)

	Calls map[string]int
}

func NewMockTemplateLister() *MockTemplateLister {
	return &MockTemplateLister{
		Calls: make(map[string]int),
	}
}

func (m *MockTemplateLister) ListTemplates(ctx context.Context) ([]models.ProviderTemplate, error) {
	m.Calls["ListTemplates"]++
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx)
	}
	return []models.ProviderTemplate{NewTestProviderTemplate()}, nil
}

// MockLogArchiveRepository mocks LogArchiveRepository
type MockLogArchiveRepository struct {
	ArchiveFunc          func(ctx context.Context, entry *models.MessageLog) error
	ListByCampaignFunc   func(ctx context.Context, campaignID string, limit int) ([]*models.MessageLog, error)
	CountByCampaignsFunc func(ctx context.Context, campaignIDs []string) (map[string]*repository.CampaignLogStats, error)
	DeleteByCampaignFunc func(ctx context.Context, campaignID string) error

	mu       sync.Mutex
	Archived []models.MessageLog
	Calls    map[string]int
}

func NewMockLogArchiveRepository() *MockLogArchiveRepository {
	return &MockLogArchiveRepository{
		Calls: make(map[string]int),
	}
}

func (m *MockLogArchiveRepository) Archive(ctx context.Context, entry *models.MessageLog) error {
	m.mu.Lock()
	m.Calls["Archive"]++
	m.Archived = append(m.Archived, *entry)
	m.mu.Unlock()
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, entry)
	}
	return nil
}

func (m *MockLogArchiveRepository) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*models.MessageLog, error) {
	m.mu.Lock()
	m.Calls["ListByCampaign"]++
	m.mu.Unlock()
	if m.ListByCampaignFunc != nil {
		return m.ListByCampaignFunc(ctx, campaignID, limit)
	}
	return []*models.MessageLog{}, nil
}

func (m *MockLogArchiveRepository) CountByCampaigns(ctx context.Context, campaignIDs []string) (map[string]*repository.CampaignLogStats, error) {
	m.mu.Lock()
	m.Calls["CountByCampaigns"]++
	m.mu.Unlock()
	if m.CountByCampaignsFunc != nil {
		return m.CountByCampaignsFunc(ctx, campaignIDs)
	}
	return map[string]*repository.CampaignLogStats{}, nil
}

func (m *MockLogArchiveRepository) DeleteByCampaign(ctx context.Context, campaignID string) error {
	m.mu.Lock()
	m.Calls["DeleteByCampaign"]++
	m.mu.Unlock()
	if m.DeleteByCampaignFunc != nil {
		return m.DeleteByCampaignFunc(ctx, campaignID)
	}
	return nil
}

// MockFeedMessageRepository mocks FeedMessageRepository
type MockFeedMessageRepository struct {
	ListFunc          func(ctx context.Context) ([]*models.FeedMessage, error)
	UpsertFunc        func(ctx context.Context, msg *models.FeedMessage) (bool, error)
	MarkPhoneReadFunc func(ctx context.Context, phoneNumber string) ([]*models.FeedMessage, error)

	Calls map[string]int
}

func NewMockFeedMessageRepository() *MockFeedMessageRepository {
	return &MockFeedMessageRepository{
		Calls: make(map[string]int),
	}
}

func (m *MockFeedMessageRepository) List(ctx context.Context) ([]*models.FeedMessage, error) {
	m.Calls["List"]++
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.FeedMessage{}, nil
}

func (m *MockFeedMessageRepository) Upsert(ctx context.Context, msg *models.FeedMessage) (bool, error) {
	m.Calls["Upsert"]++
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, msg)
	}
	return true, nil
}

func (m *MockFeedMessageRepository) MarkPhoneRead(ctx context.Context, phoneNumber string) ([]*models.FeedMessage, error) {
	m.Calls["MarkPhoneRead"]++
	if m.MarkPhoneReadFunc != nil {
		return m.MarkPhoneReadFunc(ctx, phoneNumber)
	}
	return []*models.FeedMessage{}, nil
}
