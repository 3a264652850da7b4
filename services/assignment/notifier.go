package assignment

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/mail"
	"github.com/tech-arch1tect/secretsanta/services/registration"
)

// MailNotifier emails givers their receiver's details when an admin
// approves the draw.
type MailNotifier struct {
	mail          *mail.Service
	accounts      *account.Service
	events        *event.Service
	registrations *registration.Service
}

func NewMailNotifier(mailSvc *mail.Service, accounts *account.Service, events *event.Service, registrations *registration.Service) *MailNotifier {
	return &MailNotifier{
		mail:          mailSvc,
		accounts:      accounts,
		events:        events,
		registrations: registrations,
	}
}

func (n *MailNotifier) NotifyGiver(giverID, receiverID, eventID uint) error {
	if !n.mail.Enabled() {
		return nil
	}

	giver, err := n.accounts.FindByID(giverID)
	if err != nil {
		return fmt.Errorf("lookup giver: %w", err)
	}
	receiver, err := n.accounts.FindByID(receiverID)
	if err != nil {
		return fmt.Errorf("lookup receiver: %w", err)
	}
	e, err := n.events.FindByID(eventID)
	if err != nil {
		return fmt.Errorf("lookup event: %w", err)
	}

	// The registration holds the address confirmed for this event; the
	// profile address may have changed since.
	address := receiver.Address
	reg, err := n.registrations.Find(receiverID, eventID)
	switch {
	case err == nil && reg.DeliveryAddress != "":
		address = reg.DeliveryAddress
	case err != nil && !errors.Is(err, registration.ErrNotRegistered):
		return fmt.Errorf("lookup registration: %w", err)
	}

	subject := fmt.Sprintf("Your %s assignment", e.Name)
	body := fmt.Sprintf(
		"You are the secret santa for %s.\n\nInterests: %s\nDelivery address: %s\n",
		receiver.FullName, receiver.Interests, address)

	return n.mail.SendPlain([]string{giver.Email}, subject, body)
}
