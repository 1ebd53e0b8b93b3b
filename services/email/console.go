package emailsvc

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
)

// ConsoleService writes emails to a logger instead of sending them. Used in DEV and tests.
type ConsoleService struct {
	appName          string
	defaultFromEmail mail.Address
	subjPrefix       string
	out              *log.Logger

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

func NewConsoleService(conf *core.Config, out *log.Logger) *ConsoleService {
	return &ConsoleService{
		appName:          conf.AppName,
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		out:              out,
	}
}

// NewConsoleServiceMock returns a console service that only records the messages it is given.
func NewConsoleServiceMock(conf *core.Config) *ConsoleService {
	return NewConsoleService(conf, log.New(io.Discard, "", 0))
}

func (svc *ConsoleService) SendMessages(_ context.Context, messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		if err := msg.Render(svc.appName); err != nil {
			return errors.Wrap(err, "rendering email")
		}
		if !msg.HasRecipients() || !msg.HasContent() {
			continue
		}
		body, err := svc.format(*msg)
		if err != nil {
			return err
		}
		svc.out.Println(body)

		svc.mu.Lock()
		svc.sent = append(svc.sent, *msg)
		svc.mu.Unlock()
	}
	return nil
}

// SentMessages returns the messages sent so far.
func (svc *ConsoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

// LastMessage returns the most recently sent message.
func (svc *ConsoleService) LastMessage() (core.EmailMessage, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.sent) == 0 {
		return core.EmailMessage{}, false
	}
	return svc.sent[len(svc.sent)-1], true
}

func (svc *ConsoleService) format(msg core.EmailMessage) (string, error) {
	body := new(strings.Builder)

	// Write mail header
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))

	altW := multipart.NewWriter(body)
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", altW.Boundary())

	w, err := altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain"}})
	if err != nil {
		return "", errors.Wrap(err, "creating text/plain part")
	}
	_, _ = fmt.Fprintf(w, "%s\r\n", msg.TextContent)

	if msg.HTMLContent != "" {
		w, err = altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html"}})
		if err != nil {
			return "", errors.Wrap(err, "creating text/html part")
		}
		_, _ = fmt.Fprintf(w, "%s\r\n", msg.HTMLContent)
	}

	if err := altW.Close(); err != nil {
		return "", errors.Wrap(err, "closing multipart writer")
	}
	return body.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
