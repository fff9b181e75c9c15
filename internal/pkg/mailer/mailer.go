// Package mailer delivers HTML mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// Part is a binary payload carried by a message. Inline parts are
// referenced from the HTML body as cid:<ContentID>.
type Part struct {
	Filename  string
	ContentID string
	Data      []byte
}

type Message struct {
	To          string
	ToName      string
	Subject     string
	HTML        string
	Text        string
	Inline      []Part
	Attachments []Part
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func New(conf Config) *Mailer {
	from := conf.FromAddress
	if from == "" {
		from = conf.Username
	}

	return &Mailer{
		dialer: gomail.NewDialer(conf.Host, conf.Port, conf.Username, conf.Password),
		from:   from,
		name:   conf.FromName,
	}
}

// ErrUnknownOutcome is returned when ctx expires after the message was
// handed to the server. The server may still accept it, so the caller
// must not send it again.
var ErrUnknownOutcome = errors.New("smtp delivery outcome unknown")

type dialResult struct {
	sender gomail.SendCloser
	err    error
}

// Send delivers msg. gomail has no context support, so ctx only bounds how
// long the caller waits. Expiry while connecting is an ordinary error and a
// late connection is closed unused; expiry once the message is in flight
// yields ErrUnknownOutcome.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	gm := m.compose(msg)

	dialed := make(chan dialResult, 1)
	go func() {
		sc, err := m.dialer.Dial()
		dialed <- dialResult{sender: sc, err: err}
	}()

	var sc gomail.SendCloser
	select {
	case r := <-dialed:
		if r.err != nil {
			return fmt.Errorf("m.dialer.Dial -> %w", r.err)
		}
		sc = r.sender
	case <-ctx.Done():
		go func() {
			if r := <-dialed; r.err == nil {
				r.sender.Close()
			}
		}()
		return fmt.Errorf("m.dialer.Dial -> %w", ctx.Err())
	}

	sent := make(chan error, 1)
	go func() {
		err := gomail.Send(sc, gm)
		sc.Close()
		sent <- err
	}()

	select {
	case err := <-sent:
		if err != nil {
			return fmt.Errorf("gomail.Send -> %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUnknownOutcome, ctx.Err())
	}
}

func (m *Mailer) compose(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, m.name)
	gm.SetAddressHeader("To", msg.To, msg.ToName)
	gm.SetHeader("Subject", msg.Subject)

	if msg.Text != "" {
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	} else {
		gm.SetBody("text/html", msg.HTML)
	}

	for _, p := range msg.Inline {
		gm.Embed(p.Filename,
			gomail.SetCopyFunc(copyBytes(p.Data)),
			gomail.SetHeader(map[string][]string{"Content-ID": {"<" + p.ContentID + ">"}}),
		)
	}

	for _, p := range msg.Attachments {
		gm.Attach(p.Filename, gomail.SetCopyFunc(copyBytes(p.Data)))
	}

	return gm
}

func copyBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}
