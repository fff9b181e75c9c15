package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/pkg/mailer"
)

const (
	qrContentID      = "ticket-qr"
	qrAttachmentName = "qr-code.png"
)

//go:embed templates/ticket.html
var templateFS embed.FS

var ticketTemplate = template.Must(
	template.New("ticket.html").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/ticket.html"),
)

// TicketNotice carries everything needed to tell a participant their
// ticket was issued.
type TicketNotice struct {
	TicketID        string
	Participant     domain.Participant
	TeamName        string
	Events          []domain.EventSummary
	Pricing         domain.Pricing
	VerificationURL string
	QRPNG           []byte
}

type EmailOptions struct {
	FestName     string
	DeskLocation string
}

type ticketView struct {
	FestName        string
	Greeting        string
	ParticipantName string
	TeamName        string
	Institution     string
	TicketID        string
	QRContentID     string
	Events          []domain.EventSummary
	Pricing         domain.Pricing
	DeskLocation    string
	VerificationURL string
}

func Subject(festName, ticketID string) string {
	return fmt.Sprintf("🎟️ Ticket Issued - %s | ID: %s", festName, ticketID)
}

// greetingName normalises the casing of whatever the participant typed.
func greetingName(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

func ComposeTicketEmail(opts EmailOptions, n TicketNotice) (mailer.Message, error) {
	institution := n.Participant.Institution
	if institution == "" {
		institution = "N/A"
	}

	view := ticketView{
		FestName:        opts.FestName,
		Greeting:        greetingName(n.Participant.Name),
		ParticipantName: n.Participant.Name,
		TeamName:        n.TeamName,
		Institution:     institution,
		TicketID:        n.TicketID,
		QRContentID:     qrContentID,
		Events:          n.Events,
		Pricing:         n.Pricing,
		DeskLocation:    opts.DeskLocation,
		VerificationURL: n.VerificationURL,
	}

	var body bytes.Buffer
	if err := ticketTemplate.Execute(&body, view); err != nil {
		return mailer.Message{}, fmt.Errorf("ticketTemplate.Execute -> %w", err)
	}

	return mailer.Message{
		To:      n.Participant.Email,
		ToName:  n.Participant.Name,
		Subject: Subject(opts.FestName, n.TicketID),
		HTML:    body.String(),
		Inline: []mailer.Part{
			{Filename: qrContentID + ".png", ContentID: qrContentID, Data: n.QRPNG},
		},
		Attachments: []mailer.Part{
			{Filename: qrAttachmentName, Data: n.QRPNG},
		},
	}, nil
}
