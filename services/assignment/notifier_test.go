package assignment

import (
	"bytes"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/mail"
	"github.com/tech-arch1tect/secretsanta/services/registration"
	"github.com/tech-arch1tect/secretsanta/services/verification"
	"github.com/tech-arch1tect/secretsanta/testutils"
)

type captureClient struct {
	messages []*gomail.Msg
}

func (c *captureClient) DialAndSend(messages ...*gomail.Msg) error {
	c.messages = append(c.messages, messages...)
	return nil
}

func renderMessage(t *testing.T, msg *gomail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func setupMailNotifier(t *testing.T) (*MailNotifier, *captureClient, *gorm.DB) {
	db := testutils.SetupTestDB(t,
		&account.Account{},
		&event.Event{},
		&registration.Registration{},
		&verification.VerificationToken{},
		&Assignment{})
	cfg := testutils.GetTestConfig()
	cfg.Mail.FromAddress = "santa@example.com"

	client := &captureClient{}
	mailSvc := mail.NewServiceWithClient(&cfg.Mail, client, nil)

	accounts := account.NewService(cfg, db, nil)
	events := event.NewService(cfg, db, nil)
	registrations := registration.NewService(cfg, db, nil, events)
	return NewMailNotifier(mailSvc, accounts, events, registrations), client, db
}

func TestNotifyGiver_UsesConfirmedDeliveryAddress(t *testing.T) {
	notifier, client, db := setupMailNotifier(t)
	e := seedEvent(t, db)
	ids := seedParticipants(t, db, e.ID, 2)
	giverID, receiverID := ids[0], ids[1]

	// The receiver moves after confirming: the confirmed snapshot must
	// win over the current profile address.
	now := time.Now()
	require.NoError(t, db.Model(&registration.Registration{}).
		Where("account_id = ? AND event_id = ?", receiverID, e.ID).
		Updates(map[string]any{"delivery_address": "5 Snapshot Way", "confirmed": true, "confirmed_at": now}).Error)
	require.NoError(t, db.Model(&account.Account{}).
		Where("id = ?", receiverID).
		Update("address", "9 Moved Street").Error)

	require.NoError(t, notifier.NotifyGiver(giverID, receiverID, e.ID))

	require.Len(t, client.messages, 1)
	body := renderMessage(t, client.messages[0])
	assert.Contains(t, body, "5 Snapshot Way")
	assert.NotContains(t, body, "9 Moved Street")
}

func TestNotifyGiver_FallsBackToProfileAddress(t *testing.T) {
	notifier, client, db := setupMailNotifier(t)
	e := seedEvent(t, db)
	ids := seedParticipants(t, db, e.ID, 2)
	giverID, receiverID := ids[0], ids[1]

	require.NoError(t, db.Model(&registration.Registration{}).
		Where("account_id = ? AND event_id = ?", receiverID, e.ID).
		Update("delivery_address", "").Error)

	require.NoError(t, notifier.NotifyGiver(giverID, receiverID, e.ID))

	require.Len(t, client.messages, 1)
	body := renderMessage(t, client.messages[0])
	assert.Contains(t, body, "1 Gift Lane")
}

func TestNotifyGiver_DisabledMailIsANoOp(t *testing.T) {
	db := testutils.SetupTestDB(t,
		&account.Account{},
		&event.Event{},
		&registration.Registration{},
		&verification.VerificationToken{},
		&Assignment{})
	cfg := testutils.GetTestConfig()

	mailSvc, err := mail.NewService(&cfg.Mail, nil)
	require.NoError(t, err)

	accounts := account.NewService(cfg, db, nil)
	events := event.NewService(cfg, db, nil)
	registrations := registration.NewService(cfg, db, nil, events)
	notifier := NewMailNotifier(mailSvc, accounts, events, registrations)

	assert.NoError(t, notifier.NotifyGiver(1, 2, 3))
}
