package mail

import (
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/logging"
)

// Client is the part of the go-mail client the service uses.
type Client interface {
	DialAndSend(messages ...*mail.Msg) error
}

type Service struct {
	config *config.MailConfig
	client Client
	logger *logging.Service
}

// NewService builds the SMTP client. A blank host disables outbound
// mail; the service still constructs so callers can check Enabled.
func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if cfg.Host == "" {
		logger.Info("mail host not configured, outbound mail disabled")
		return &Service{config: cfg, logger: logger}, nil
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("SANTA_MAIL_FROM_ADDRESS is required when a mail host is set")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail service initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption))

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// NewServiceWithClient wires a ready-made client, bypassing the SMTP
// dial configuration. Tests use it to capture outbound messages.
func NewServiceWithClient(cfg *config.MailConfig, client Client, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

func (s *Service) NewMessage() *mail.Msg {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		panic(fmt.Sprintf("failed to set FROM address: %s", err))
	}

	return message
}

func (s *Service) Send(message *mail.Msg) error {
	if !s.Enabled() {
		return fmt.Errorf("mail is not configured")
	}

	if err := s.client.DialAndSend(message); err != nil {
		s.logger.Error("failed to send email", zap.Error(err))
		return err
	}

	s.logger.Debug("email sent")
	return nil
}

func (s *Service) SendPlain(to []string, subject, body string) error {
	message := s.NewMessage()

	if err := message.To(to...); err != nil {
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, body)

	return s.Send(message)
}
