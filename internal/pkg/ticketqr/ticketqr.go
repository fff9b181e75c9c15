// Package ticketqr renders the scannable code printed on every ticket.
package ticketqr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

var ErrInvalidBaseURL = errors.New("invalid app base url")

const dataURIPrefix = "data:image/png;base64,"

type Options struct {
	Size          int
	Foreground    string
	Background    string
	DisableBorder bool
}

type Artifact struct {
	// URL is the verification link encoded in the image.
	URL string
	PNG []byte
}

func (a Artifact) DataURI() string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(a.PNG)
}

type Generator struct {
	baseURL       string
	size          int
	foreground    color.Color
	background    color.Color
	disableBorder bool
}

// NewGenerator fails with ErrInvalidBaseURL unless baseURL is absolute.
func NewGenerator(baseURL string, opts Options) (*Generator, error) {
	fg, err := parseHexColor(opts.Foreground)
	if err != nil {
		return nil, fmt.Errorf("foreground -> %w", err)
	}

	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("background -> %w", err)
	}

	size := opts.Size
	if size <= 0 {
		size = 300
	}

	g := &Generator{
		baseURL:       strings.TrimRight(baseURL, "/"),
		size:          size,
		foreground:    fg,
		background:    bg,
		disableBorder: opts.DisableBorder,
	}

	if _, err = g.VerificationURL("check"); err != nil {
		return nil, err
	}

	return g, nil
}

// VerificationURL is the link a scanner opens: <base>/ticket/<ticketID>.
func (g *Generator) VerificationURL(ticketID string) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, g.baseURL)
	}

	return u.JoinPath("ticket", ticketID).String(), nil
}

func (g *Generator) Generate(ticketID string) (Artifact, error) {
	link, err := g.VerificationURL(ticketID)
	if err != nil {
		return Artifact{}, err
	}

	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return Artifact{}, fmt.Errorf("qrcode.New -> %w", err)
	}
	q.ForegroundColor = g.foreground
	q.BackgroundColor = g.background
	q.DisableBorder = g.disableBorder

	png, err := q.PNG(g.size)
	if err != nil {
		return Artifact{}, fmt.Errorf("q.PNG -> %w", err)
	}

	return Artifact{URL: link, PNG: png}, nil
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
