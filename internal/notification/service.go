package notification

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ziprates/internal/storage"
)

// emailConfigKey is the settings key the email configuration lives under.
const emailConfigKey = "email_config"

// EmailConfig describes how outbound mail is sent.
type EmailConfig struct {
	Enabled     bool   `json:"enabled"`
	Provider    string `json:"provider"` // "smtp" or "sendgrid"
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Encryption  string `json:"encryption"` // "", "tls"
	APIKey      string `json:"api_key"`
	FromName    string `json:"from_name"`
	FromAddress string `json:"from_address"`
	Recipients  string `json:"recipients"`
}

// Service sends email notifications about failed dataset refreshes.
type Service struct {
	storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{storage: s}
}

// GetConfig reads the email configuration from the settings store.
// Returns nil when no configuration has been saved.
func (s *Service) GetConfig(ctx context.Context) (*EmailConfig, error) {
	raw, err := s.storage.GetSetting(ctx, emailConfigKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var cfg EmailConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse email config: %w", err)
	}
	return &cfg, nil
}

func (s *Service) SaveConfig(ctx context.Context, cfg EmailConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.storage.SetSetting(ctx, emailConfigKey, string(raw))
}

func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.Enabled {
		return errors.New("email not configured or disabled")
	}
	return send(cfg, to, subject, body)
}

// TestConfig sends a test email using the provided config without saving it.
func (s *Service) TestConfig(ctx context.Context, cfg EmailConfig, to string) error {
	return send(&cfg, to, "Test Email", "This is a test email from ziprates.")
}

func send(cfg *EmailConfig, to, subject, body string) error {
	switch cfg.Provider {
	case "smtp", "gmail":
		return sendSMTP(cfg, to, subject, body)
	case "sendgrid":
		return sendSendgrid(cfg, to, subject, body)
	default:
		return fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func sendSMTP(cfg *EmailConfig, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s\r\n", to, subject, body))

	if cfg.Encryption == "tls" {
		c, err := smtp.Dial(addr)
		if err != nil {
			return err
		}
		defer c.Quit()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return err
			}
		}
		if cfg.Username != "" && cfg.Password != "" {
			auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
			if err = c.Auth(auth); err != nil {
				return err
			}
		}
		if err = c.Mail(cfg.FromAddress); err != nil {
			return err
		}
		if err = c.Rcpt(to); err != nil {
			return err
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err = w.Write(msg); err != nil {
			return err
		}
		return w.Close()
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return smtp.SendMail(addr, auth, cfg.FromAddress, []string{to}, msg)
}

func sendSendgrid(cfg *EmailConfig, to, subject, body string) error {
	from := mail.NewEmail(cfg.FromName, cfg.FromAddress)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, body, body)
	client := sendgrid.NewSendClient(cfg.APIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
