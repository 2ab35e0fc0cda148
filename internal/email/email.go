package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusboard/internal/config"
	"campusboard/internal/logging"
	"campusboard/internal/oops"
)

// Service handles sending email notifications.
type Service struct {
	cfg     *config.Config
	enabled bool
	deliver func(to []string, msg []byte) error
}

// NewService creates a new email service.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
	}
	s.deliver = s.dispatch

	if s.enabled {
		logging.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Msg("email notifications enabled")
	} else {
		logging.Info().Msg("email notifications disabled (SMTP not configured)")
	}

	return s
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendEmail sends an email to the specified recipients.
func (s *Service) SendEmail(to []string, subject, htmlBody, textBody string) error {
	if !s.enabled || len(to) == 0 {
		return nil
	}
	return s.deliver(to, []byte(s.buildMessage(to, subject, htmlBody, textBody)))
}

// SendAsync sends an email in the background and logs the outcome.
func (s *Service) SendAsync(to []string, subject, htmlBody, textBody string) {
	if !s.enabled || len(to) == 0 {
		return
	}

	go func() {
		if err := s.SendEmail(to, subject, htmlBody, textBody); err != nil {
			logging.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("failed to send email")
		} else {
			logging.Debug().Strs("to", to).Str("subject", subject).Msg("email sent")
		}
	}()
}

func (s *Service) buildMessage(to []string, subject, htmlBody, textBody string) string {
	from := s.cfg.SMTPFrom
	if s.cfg.SMTPFromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)
	}

	var b strings.Builder
	header := func(key, value string) {
		b.WriteString(key + ": " + value + "\r\n")
	}
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Date", time.Now().UTC().Format(time.RFC1123Z))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("MIME-Version", "1.0")

	part := func(contentType, body string) {
		header("Content-Type", contentType+`; charset="UTF-8"`)
		b.WriteString("\r\n" + body + "\r\n")
	}

	switch {
	case textBody == "":
		part("text/html", htmlBody)
	case htmlBody == "":
		part("text/plain", textBody)
	default:
		boundary := "campusboard-" + uuid.NewString()
		header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
		b.WriteString("\r\n")
		b.WriteString("--" + boundary + "\r\n")
		part("text/plain", textBody)
		b.WriteString("--" + boundary + "\r\n")
		part("text/html", htmlBody)
		b.WriteString("--" + boundary + "--\r\n")
	}
	return b.String()
}

// open connects to the SMTP server using the configured transport
// security. A nil client means the caller should use smtp.SendMail.
func (s *Service) open(addr string) (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost, MinVersion: tls.VersionTLS12}

	switch s.cfg.SMTPTLS {
	case "tls":
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, oops.New(err, "smtp tls dial %s", addr)
		}
		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return nil, oops.New(err, "smtp handshake with %s", addr)
		}
		return client, nil
	case "starttls":
		client, err := smtp.Dial(addr)
		if err != nil {
			return nil, oops.New(err, "smtp dial %s", addr)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, oops.New(err, "smtp starttls")
		}
		return client, nil
	}
	return nil, nil
}

func (s *Service) dispatch(to []string, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	client, err := s.open(addr)
	if err != nil {
		return err
	}
	if client == nil {
		if err := smtp.SendMail(addr, auth, s.cfg.SMTPFrom, to, msg); err != nil {
			return oops.New(err, "smtp send")
		}
		return nil
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return oops.New(err, "smtp auth")
		}
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return oops.New(err, "smtp MAIL FROM")
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return oops.New(err, "smtp RCPT TO %s", rcpt)
		}
	}

	w, err := client.Data()
	if err != nil {
		return oops.New(err, "smtp DATA")
	}
	if _, err := w.Write(msg); err != nil {
		return oops.New(err, "smtp write body")
	}
	if err := w.Close(); err != nil {
		return oops.New(err, "smtp end body")
	}
	return client.Quit()
}
