package infrastructure

import (
	"context"

	"github.com/MichiMauch/geomaster.world-sub001/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockMessagePublisher is a mock implementation of MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// MockDuelNotifier is a mock implementation of DuelNotifier
type MockDuelNotifier struct {
	mock.Mock
	name string
}

func NewMockDuelNotifier(name string) *MockDuelNotifier {
	return &MockDuelNotifier{name: name}
}

func (m *MockDuelNotifier) Name() string {
	return m.name
}

func (m *MockDuelNotifier) NotifyDuelCompleted(ctx context.Context, event events.DuelCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeWebhookExecutor struct {
	webhookID string
	token     string
	params    *discordgo.WebhookParams
	err       error
}

func (f *fakeWebhookExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.webhookID = webhookID
	f.token = token
	f.params = data
	return nil, f.err
}
