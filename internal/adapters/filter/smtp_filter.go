package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ErrorHeader carries the classification failure when triage could not run
const ErrorHeader = "X-Triage-Error"

// Triager classifies a single email
type Triager interface {
	Classify(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)
}

// relayFunc delivers an annotated message to the next hop
type relayFunc func(sender string, recipients []string, data []byte) error

// SMTPFilter is a content filter that receives mail over SMTP, adds triage
// headers and relays the message onwards
type SMTPFilter struct {
	triager        Triager
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	headers        config.HeaderNames
	relayAddr      string
	relayPort      int
	relayEnabled   bool
	processTimeout time.Duration
	relay          relayFunc
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	triager Triager,
	logger *zap.Logger,
	listenAddr string,
	headers config.HeaderNames,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	processTimeout time.Duration,
) *SMTPFilter {
	f := &SMTPFilter{
		triager:        triager,
		logger:         logger,
		listenAddr:     listenAddr,
		headers:        headers,
		relayAddr:      relayAddr,
		relayPort:      relayPort,
		relayEnabled:   relayEnabled,
		processTimeout: processTimeout,
	}
	f.relay = f.sendToRelay
	return f
}

// Start binds the listen address and serves SMTP in the background
func (f *SMTPFilter) Start() error {
	l, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.listenAddr, err)
	}
	return f.StartListener(l)
}

// StartListener serves SMTP on an existing listener in the background
func (f *SMTPFilter) StartListener(l net.Listener) error {
	f.server = f.newServer()
	f.server.Addr = l.Addr().String()

	f.logger.Info("SMTP filter starting", zap.String("address", f.server.Addr))

	go func() {
		if err := f.server.Serve(l); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

func (f *SMTPFilter) newServer() *smtp.Server {
	server := smtp.NewServer(&smtpBackend{filter: f})
	server.Domain = "localhost"
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = 30 * 1024 * 1024
	server.MaxRecipients = 50
	server.AllowInsecureAuth = true
	return server
}

// Stop stops the SMTP listener
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an email without going through SMTP
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.triager.Classify(ctx, email)
}

// handle classifies a raw message and returns the annotated copy
func (f *SMTPFilter) handle(ctx context.Context, envelopeFrom string, recipients []string, raw []byte) []byte {
	email, err := ParseEmail(bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err), zap.String("sender", envelopeFrom))
		return f.annotate(raw, nil, err)
	}
	if email.From == "" {
		email.From = envelopeFrom
	}
	email.To = recipients

	ctx, cancel := context.WithTimeout(ctx, f.processTimeout)
	defer cancel()

	result, err := f.triager.Classify(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email",
			zap.Error(err),
			zap.String("sender", email.From))
		return f.annotate(raw, nil, err)
	}

	f.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.Strings("tags", result.Tags),
		zap.String("intent", string(result.Intent)),
		zap.String("urgency", string(result.Urgency)),
		zap.String("strategy", string(result.Strategy)),
		zap.String("model", result.ModelUsed))

	return f.annotate(raw, result, nil)
}

// annotate prepends the triage headers to the untouched original message
func (f *SMTPFilter) annotate(raw []byte, result *core.ClassificationResult, classifyErr error) []byte {
	var out bytes.Buffer

	if result != nil {
		writeHeader(&out, f.headers.Tags, strings.Join(result.Tags, ", "))
		writeHeader(&out, f.headers.Intent, string(result.Intent))
		writeHeader(&out, f.headers.Urgency, string(result.Urgency))
		writeHeader(&out, f.headers.Category, string(result.SenderCategory))
		writeHeader(&out, f.headers.Summary, result.Summary)
	}
	if classifyErr != nil {
		writeHeader(&out, ErrorHeader, classifyErr.Error())
	}

	out.Write(raw)
	return out.Bytes()
}

func writeHeader(w io.Writer, name, value string) {
	if name == "" {
		return
	}
	value = strings.Join(strings.Fields(value), " ")
	fmt.Fprintf(w, "%s: %s\r\n", name, mime.QEncoding.Encode("utf-8", value))
}

// sendToRelay delivers the processed email to the configured next hop
func (f *SMTPFilter) sendToRelay(sender string, recipients []string, emailData []byte) error {
	relayAddr := net.JoinHostPort(f.relayAddr, fmt.Sprintf("%d", f.relayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Message already accepted
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and relays it with triage headers
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	annotated := s.filter.handle(context.Background(), s.sender, s.recipients, raw)

	if !s.filter.relayEnabled {
		s.filter.logger.Warn("Relay disabled, dropping annotated message", zap.String("sender", s.sender))
		return nil
	}

	if err := s.filter.relay(s.sender, s.recipients, annotated); err != nil {
		s.filter.logger.Error("Failed to relay email",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
