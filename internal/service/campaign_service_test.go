package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wacms/internal/models"
	"wacms/internal/repository"
	"wacms/internal/service"
	"wacms/internal/store"
	"wacms/internal/testutil"
)

type campaignFixture struct {
	svc      *service.CampaignService
	store    *store.Store
	sender   *testutil.MockMessageSender
	archive  *testutil.MockLogArchiveRepository
	pausesMu sync.Mutex
	pauses   []time.Duration
}

func (f *campaignFixture) pauseCount() int {
	f.pausesMu.Lock()
	defer f.pausesMu.Unlock()
	return len(f.pauses)
}

// setupCampaignService wires a campaign service over an in-memory store with
// contact-1..contact-n, test credentials and a synced provider catalog
func setupCampaignService(t *testing.T, contactCount int) *campaignFixture {
	t.Helper()

	st, err := store.New(store.NewMemoryPersister())
	require.NoError(t, err)
	st.AddContacts(testutil.NewTestContacts(contactCount)...)
	st.UpdateSettings(func(s *models.Settings) {
		*s = testutil.NewTestSettings()
		s.DelayBetweenMessages = 2
	})

	templateSvc := service.NewTemplateService(st, testutil.NewMockTemplateLister())
	_, err = templateSvc.SyncProviderTemplates(context.Background())
	require.NoError(t, err)

	f := &campaignFixture{
		store:   st,
		sender:  testutil.NewMockMessageSender(),
		archive: testutil.NewMockLogArchiveRepository(),
	}
	f.svc = service.NewCampaignService(st, f.sender, templateSvc, f.archive)
	f.svc.SetPauseFunc(func(ctx context.Context, d time.Duration) error {
		f.pausesMu.Lock()
		f.pauses = append(f.pauses, d)
		f.pausesMu.Unlock()
		return ctx.Err()
	})
	return f
}

func contactIDs(n int) []string {
	ids := make([]string, n)
	for i, c := range testutil.NewTestContacts(n) {
		ids[i] = c.ID
	}
	return ids
}

func TestStartCampaign_AllRecipientsSucceed(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 3)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))

	// Execute
	summary, err := f.svc.StartCampaign(context.Background(), "campaign-1")

	// Verify
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.Cancelled)

	campaign, _ := f.store.Campaign("campaign-1")
	assert.Equal(t, models.CampaignStatusCompleted, campaign.Status)
	assert.Equal(t, 3, campaign.SentCount)

	require.Len(t, f.sender.Sent, 3)
	first := f.sender.Sent[0]
	assert.Equal(t, "spring_sale", first.TemplateName)
	assert.Equal(t, "en_US", first.LanguageCode)
	assert.Equal(t, "+15550000001", first.Phone)
	assert.Equal(t, []string{"Contact 1", "+15550000001"}, first.Variables)

	logs := f.store.Logs()
	require.Len(t, logs, 3)
	assert.Equal(t, "contact-3", logs[0].ContactID)
	assert.Equal(t, models.LogStatusSent, logs[0].Status)
	assert.Equal(t, "Hi Contact 3, your number is +15550000003", logs[0].Message)
	assert.Equal(t, "campaign-1", logs[0].CampaignID)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, f.pauses)
	assert.Len(t, f.archive.Archived, 3)
}

func TestStartCampaign_Preconditions(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(f *campaignFixture)
		assertFn func(t *testing.T, err error)
		status   models.CampaignStatus
	}{
		{
			name: "missing credentials",
			setup: func(f *campaignFixture) {
				f.store.UpdateSettings(func(s *models.Settings) { s.AccessToken = "" })
				f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(2)...))
			},
			assertFn: func(t *testing.T, err error) {
				var cfgErr *service.ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
			},
			status: models.CampaignStatusDraft,
		},
		{
			name: "unknown provider template",
			setup: func(f *campaignFixture) {
				c := testutil.NewTestCampaign(contactIDs(2)...)
				c.Template = "missing"
				f.store.AddCampaign(c)
			},
			assertFn: func(t *testing.T, err error) {
				var notFound *service.NotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, "provider template", notFound.Resource)
			},
			status: models.CampaignStatusDraft,
		},
		{
			name: "no provider template",
			setup: func(f *campaignFixture) {
				c := testutil.NewTestCampaign(contactIDs(2)...)
				c.Template = ""
				f.store.AddCampaign(c)
			},
			assertFn: func(t *testing.T, err error) {
				var validationErr *service.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			},
			status: models.CampaignStatusDraft,
		},
		{
			name: "already completed",
			setup: func(f *campaignFixture) {
				f.store.AddCampaign(testutil.NewTestCampaignWithStatus(models.CampaignStatusCompleted, contactIDs(2)...))
			},
			assertFn: func(t *testing.T, err error) {
				var conflict *service.ConflictError
				assert.ErrorAs(t, err, &conflict)
			},
			status: models.CampaignStatusCompleted,
		},
		{
			name: "already sending",
			setup: func(f *campaignFixture) {
				f.store.AddCampaign(testutil.NewTestCampaignWithStatus(models.CampaignStatusSending, contactIDs(2)...))
			},
			assertFn: func(t *testing.T, err error) {
				var conflict *service.ConflictError
				assert.ErrorAs(t, err, &conflict)
			},
			status: models.CampaignStatusSending,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			f := setupCampaignService(t, 2)
			tc.setup(f)

			// Execute
			summary, err := f.svc.StartCampaign(context.Background(), "campaign-1")

			// Verify
			require.Error(t, err)
			assert.Nil(t, summary)
			tc.assertFn(t, err)
			assert.Equal(t, 0, f.sender.CallCount("SendTemplate"))
			campaign, _ := f.store.Campaign("campaign-1")
			assert.Equal(t, tc.status, campaign.Status)
			assert.Empty(t, f.store.Logs())
		})
	}
}

func TestStartCampaign_UnknownCampaign(t *testing.T) {
	f := setupCampaignService(t, 1)

	_, err := f.svc.StartCampaign(context.Background(), "nope")

	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStartCampaign_FailureOutcomes(t *testing.T) {
	testCases := []struct {
		name           string
		failFor        map[string]bool
		expectedStatus models.CampaignStatus
		expectedFailed int
	}{
		{
			name:           "every recipient fails",
			failFor:        map[string]bool{"+15550000001": true, "+15550000002": true, "+15550000003": true},
			expectedStatus: models.CampaignStatusFailed,
			expectedFailed: 3,
		},
		{
			name:           "one recipient fails",
			failFor:        map[string]bool{"+15550000002": true},
			expectedStatus: models.CampaignStatusCompleted,
			expectedFailed: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			f := setupCampaignService(t, 3)
			f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))
			f.sender.SendTemplateFunc = func(ctx context.Context, msg service.TemplateMessage) (*service.SendResult, error) {
				if tc.failFor[msg.Phone] {
					return nil, &service.ProviderError{Message: "Invalid parameter", Code: 100, StatusCode: 400}
				}
				return &service.SendResult{MessageID: "wamid.ok"}, nil
			}

			// Execute
			summary, err := f.svc.StartCampaign(context.Background(), "campaign-1")

			// Verify
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, summary.Status)
			assert.Equal(t, tc.expectedFailed, summary.Failed)

			campaign, _ := f.store.Campaign("campaign-1")
			assert.Equal(t, tc.expectedStatus, campaign.Status)
			assert.Equal(t, 3, campaign.SentCount)

			failed := 0
			for _, l := range f.store.Logs() {
				if l.Status == models.LogStatusFailed {
					failed++
					assert.Equal(t, "Invalid parameter", l.Error)
				}
			}
			assert.Equal(t, tc.expectedFailed, failed)
		})
	}
}

func TestStartCampaign_SkipsDeletedContacts(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 3)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))
	require.True(t, f.store.RemoveContact("contact-2"))

	// Execute
	summary, err := f.svc.StartCampaign(context.Background(), "campaign-1")

	// Verify
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, models.CampaignStatusCompleted, summary.Status)
	assert.Equal(t, 2, f.sender.CallCount("SendTemplate"))
	assert.Len(t, f.store.Logs(), 2)

	campaign, _ := f.store.Campaign("campaign-1")
	assert.Equal(t, 2, campaign.SentCount)
	assert.Equal(t, 3, campaign.TotalCount)
	assert.Equal(t, 1, f.pauseCount())
}

func TestStartCampaign_VariableOverrides(t *testing.T) {
	f := setupCampaignService(t, 1)
	c := testutil.NewTestCampaign(contactIDs(1)...)
	c.TemplateVariables = []string{"  ", "VIP"}
	f.store.AddCampaign(c)

	_, err := f.svc.StartCampaign(context.Background(), "campaign-1")

	require.NoError(t, err)
	require.Len(t, f.sender.Sent, 1)
	assert.Equal(t, []string{"Contact 1", "VIP"}, f.sender.Sent[0].Variables)
	assert.Equal(t, "Hi Contact 1, your number is VIP", f.store.Logs()[0].Message)
	assert.Equal(t, 0, f.pauseCount())
}

func TestStartCampaign_CancelledBetweenRecipients(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 3)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.SetPauseFunc(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	// Execute
	summary, err := f.svc.StartCampaign(ctx, "campaign-1")

	// Verify
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, models.CampaignStatusCompleted, summary.Status)
	assert.Equal(t, 1, f.sender.CallCount("SendTemplate"))

	campaign, _ := f.store.Campaign("campaign-1")
	assert.Equal(t, 1, campaign.SentCount)
	assert.Equal(t, models.CampaignStatusCompleted, campaign.Status)
}

func TestStartCampaign_ConcurrentStartsRunOnce(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 3)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))

	// Execute
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StartCampaign(context.Background(), "campaign-1")
			mu.Lock()
			defer mu.Unlock()
			var conflict *service.ConflictError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &conflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	// Verify
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, conflicts)
	assert.Equal(t, 3, f.sender.CallCount("SendTemplate"))
	campaign, _ := f.store.Campaign("campaign-1")
	assert.Equal(t, 3, campaign.SentCount)
}

func TestLaunch_RunsInBackground(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 2)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(2)...))

	// Execute
	campaign, err := f.svc.Launch(context.Background(), "campaign-1")

	// Verify
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusSending, campaign.Status)
	require.Eventually(t, func() bool {
		return !f.svc.IsRunning("campaign-1")
	}, time.Second, 5*time.Millisecond)

	stored, _ := f.store.Campaign("campaign-1")
	assert.Equal(t, models.CampaignStatusCompleted, stored.Status)
	summary, err := f.svc.LastSummary("campaign-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
}

func TestCancelCampaign_StopsLaunchedRun(t *testing.T) {
	// Setup
	f := setupCampaignService(t, 3)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(3)...))
	f.svc.SetPauseFunc(func(ctx context.Context, d time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	})

	_, err := f.svc.Launch(context.Background(), "campaign-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return f.sender.CallCount("SendTemplate") == 1
	}, time.Second, 5*time.Millisecond)

	// Execute
	require.NoError(t, f.svc.CancelCampaign("campaign-1"))

	// Verify
	require.Eventually(t, func() bool {
		return !f.svc.IsRunning("campaign-1")
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.sender.CallCount("SendTemplate"))

	summary, err := f.svc.LastSummary("campaign-1")
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, models.CampaignStatusCompleted, summary.Status)
}

func TestCancelCampaign_NotRunning(t *testing.T) {
	f := setupCampaignService(t, 1)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(1)...))

	err := f.svc.CancelCampaign("campaign-1")
	var businessErr *service.BusinessLogicError
	assert.ErrorAs(t, err, &businessErr)

	err = f.svc.CancelCampaign("unknown")
	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestShutdown_WaitsForRuns(t *testing.T) {
	f := setupCampaignService(t, 2)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(2)...))
	f.svc.SetPauseFunc(func(ctx context.Context, d time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	})
	_, err := f.svc.Launch(context.Background(), "campaign-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.svc.Shutdown(ctx))

	assert.False(t, f.svc.IsRunning("campaign-1"))
	stored, _ := f.store.Campaign("campaign-1")
	assert.True(t, stored.IsTerminal())
}

func TestCreateCampaign(t *testing.T) {
	testCases := []struct {
		name            string
		request         *service.CreateCampaignRequest
		expectedMessage string
		expectError     bool
		assertErr       func(t *testing.T, err error)
	}{
		{
			name: "provider template snapshot",
			request: &service.CreateCampaignRequest{
				Name:     "  Spring  ",
				Contacts: []string{"contact-1", "contact-2"},
				Template: "tpl-1",
			},
			expectedMessage: "Hi {{1}}, your number is {{2}}",
		},
		{
			name: "local template snapshot",
			request: &service.CreateCampaignRequest{
				Name:          "Welcome",
				Contacts:      []string{"contact-1"},
				LocalTemplate: "default-1",
			},
			expectedMessage: "Hello {{name}}! Welcome to our service. We're excited to have you!",
		},
		{
			name: "free text message",
			request: &service.CreateCampaignRequest{
				Name:     "Note",
				Contacts: []string{"contact-1"},
				Message:  "Store closes early today",
			},
			expectedMessage: "Store closes early today",
		},
		{
			name:        "missing name",
			request:     &service.CreateCampaignRequest{Contacts: []string{"contact-1"}, Message: "hi"},
			expectError: true,
			assertErr: func(t *testing.T, err error) {
				var validationErr *service.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			},
		},
		{
			name:        "no contacts",
			request:     &service.CreateCampaignRequest{Name: "Empty", Message: "hi"},
			expectError: true,
			assertErr: func(t *testing.T, err error) {
				var validationErr *service.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			},
		},
		{
			name:        "unknown contact",
			request:     &service.CreateCampaignRequest{Name: "Ghost", Contacts: []string{"contact-9"}, Message: "hi"},
			expectError: true,
			assertErr: func(t *testing.T, err error) {
				var validationErr *service.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, validationErr.Message, "contact-9")
			},
		},
		{
			name:        "unknown provider template",
			request:     &service.CreateCampaignRequest{Name: "X", Contacts: []string{"contact-1"}, Template: "tpl-9"},
			expectError: true,
			assertErr: func(t *testing.T, err error) {
				var notFound *service.NotFoundError
				assert.ErrorAs(t, err, &notFound)
			},
		},
		{
			name:        "nothing to send",
			request:     &service.CreateCampaignRequest{Name: "X", Contacts: []string{"contact-1"}},
			expectError: true,
			assertErr: func(t *testing.T, err error) {
				var validationErr *service.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupCampaignService(t, 2)

			campaign, err := f.svc.CreateCampaign(tc.request)

			if tc.expectError {
				require.Error(t, err)
				tc.assertErr(t, err)
				assert.Empty(t, f.store.Campaigns())
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, campaign.ID)
			assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
			assert.Equal(t, tc.expectedMessage, campaign.Message)
			assert.Equal(t, len(tc.request.Contacts), campaign.TotalCount)
			assert.Equal(t, 0, campaign.SentCount)
			assert.NotNil(t, campaign.TemplateVariables)

			stored, ok := f.store.Campaign(campaign.ID)
			require.True(t, ok)
			assert.Equal(t, campaign.Name, stored.Name)
		})
	}
}

func TestListCampaigns_FiltersAndPaginates(t *testing.T) {
	f := setupCampaignService(t, 1)
	for i, status := range []models.CampaignStatus{
		models.CampaignStatusDraft,
		models.CampaignStatusCompleted,
		models.CampaignStatusDraft,
		models.CampaignStatusFailed,
		models.CampaignStatusDraft,
	} {
		c := testutil.NewTestCampaignWithStatus(status, "contact-1")
		c.ID = string(rune('a' + i))
		f.store.AddCampaign(c)
	}

	all, pagination := f.svc.ListCampaigns(service.CampaignFilters{})
	assert.Len(t, all, 5)
	assert.Equal(t, 1, pagination.TotalPages)

	draft := models.CampaignStatusDraft
	page, pagination := f.svc.ListCampaigns(service.CampaignFilters{Status: &draft, Page: 2, PageSize: 2})
	require.Len(t, page, 1)
	assert.Equal(t, "e", page[0].ID)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 2, pagination.TotalPages)

	beyond, _ := f.svc.ListCampaigns(service.CampaignFilters{Page: 9, PageSize: 2})
	assert.Empty(t, beyond)
}

func TestDeleteCampaign(t *testing.T) {
	f := setupCampaignService(t, 1)
	f.store.AddCampaign(testutil.NewTestCampaignWithStatus(models.CampaignStatusSending, "contact-1"))

	err := f.svc.DeleteCampaign(context.Background(), "campaign-1")
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)

	f.store.FinishCampaign("campaign-1", models.CampaignStatusCompleted)
	require.NoError(t, f.svc.DeleteCampaign(context.Background(), "campaign-1"))
	assert.Empty(t, f.store.Campaigns())
	assert.Equal(t, 1, f.archive.Calls["DeleteByCampaign"])

	err = f.svc.DeleteCampaign(context.Background(), "campaign-1")
	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCampaignHistory(t *testing.T) {
	f := setupCampaignService(t, 1)
	f.store.AddCampaign(testutil.NewTestCampaign("contact-1"))
	entry := testutil.NewTestLog("log-1")
	f.archive.ListByCampaignFunc = func(ctx context.Context, campaignID string, limit int) ([]*models.MessageLog, error) {
		assert.Equal(t, "campaign-1", campaignID)
		assert.Equal(t, 50, limit)
		return []*models.MessageLog{&entry}, nil
	}

	history, err := f.svc.CampaignHistory(context.Background(), "campaign-1", 50)

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "log-1", history[0].ID)

	_, err = f.svc.CampaignHistory(context.Background(), "other", 50)
	var notFound *service.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPreviewMessage(t *testing.T) {
	f := setupCampaignService(t, 2)
	f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(2)...))

	testCases := []struct {
		name         string
		req          service.PreviewMessageRequest
		wantRendered string
		wantErr      bool
	}{
		{
			name:         "defaults to contact name and phone",
			req:          service.PreviewMessageRequest{CampaignID: "campaign-1", ContactID: "contact-2"},
			wantRendered: "Hi Contact 2, your number is +15550000002",
		},
		{
			name:         "override replaces the first slot",
			req:          service.PreviewMessageRequest{CampaignID: "campaign-1", ContactID: "contact-1", Variables: []string{"friend"}},
			wantRendered: "Hi friend, your number is +15550000001",
		},
		{
			name:    "unknown contact",
			req:     service.PreviewMessageRequest{CampaignID: "campaign-1", ContactID: "ghost"},
			wantErr: true,
		},
		{
			name:    "unknown campaign",
			req:     service.PreviewMessageRequest{CampaignID: "missing", ContactID: "contact-1"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := f.svc.PreviewMessage(&tc.req)

			if tc.wantErr {
				var notFound *service.NotFoundError
				assert.ErrorAs(t, err, &notFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRendered, result.RenderedMessage)
			assert.Len(t, result.Parameters, 2)
		})
	}

	assert.Zero(t, f.sender.CallCount("SendTemplate"))
}

func TestGetCampaignWithStats(t *testing.T) {
	testCases := []struct {
		name         string
		countFunc    func(ctx context.Context, ids []string) (map[string]*repository.CampaignLogStats, error)
		wantArchived *repository.CampaignLogStats
	}{
		{
			name: "archived counts",
			countFunc: func(ctx context.Context, ids []string) (map[string]*repository.CampaignLogStats, error) {
				return map[string]*repository.CampaignLogStats{ids[0]: {Sent: 4, Failed: 1}}, nil
			},
			wantArchived: &repository.CampaignLogStats{Sent: 4, Failed: 1},
		},
		{
			name:         "nothing archived yet",
			wantArchived: &repository.CampaignLogStats{},
		},
		{
			name: "archive unavailable",
			countFunc: func(ctx context.Context, ids []string) (map[string]*repository.CampaignLogStats, error) {
				return nil, errors.New("connection refused")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			f := setupCampaignService(t, 1)
			f.store.AddCampaign(testutil.NewTestCampaign(contactIDs(1)...))
			f.archive.CountByCampaignsFunc = tc.countFunc

			// Execute
			result, err := f.svc.GetCampaignWithStats(context.Background(), "campaign-1")

			// Verify
			require.NoError(t, err)
			assert.Equal(t, "campaign-1", result.Campaign.ID)
			assert.False(t, result.Running)
			assert.Equal(t, tc.wantArchived, result.Archived)
		})
	}
}
