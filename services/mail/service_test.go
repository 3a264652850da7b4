package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/tech-arch1tect/secretsanta/config"
)

type mockMailClient struct {
	sendFunc func(messages ...*mail.Msg) error
	sent     []*mail.Msg
}

func (m *mockMailClient) DialAndSend(messages ...*mail.Msg) error {
	m.sent = append(m.sent, messages...)
	if m.sendFunc != nil {
		return m.sendFunc(messages...)
	}
	return nil
}

func getTestMailConfig() *config.MailConfig {
	return &config.MailConfig{
		Host:        "localhost",
		Port:        587,
		Encryption:  "starttls",
		FromAddress: "santa@example.com",
		FromName:    "Secret Santa",
	}
}

func TestNewService_DisabledWithoutHost(t *testing.T) {
	svc, err := NewService(&config.MailConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	err = svc.SendPlain([]string{"someone@example.com"}, "hi", "body")
	assert.Error(t, err)
}

func TestNewService_RequiresFromAddress(t *testing.T) {
	_, err := NewService(&config.MailConfig{Host: "smtp.example.com", Port: 587}, nil)
	assert.Error(t, err)
}

func TestNewService_Enabled(t *testing.T) {
	svc, err := NewService(getTestMailConfig(), nil)
	require.NoError(t, err)
	assert.True(t, svc.Enabled())
}

func TestSendPlain(t *testing.T) {
	t.Run("successful send", func(t *testing.T) {
		client := &mockMailClient{}
		svc := &Service{config: getTestMailConfig(), client: client}

		err := svc.SendPlain([]string{"recipient@example.com"}, "Test Subject", "Test body")
		require.NoError(t, err)
		require.Len(t, client.sent, 1)
	})

	t.Run("send error is returned", func(t *testing.T) {
		client := &mockMailClient{
			sendFunc: func(messages ...*mail.Msg) error {
				return assert.AnError
			},
		}
		svc := &Service{config: getTestMailConfig(), client: client}

		err := svc.SendPlain([]string{"recipient@example.com"}, "Test Subject", "Test body")
		assert.Error(t, err)
	})
}
