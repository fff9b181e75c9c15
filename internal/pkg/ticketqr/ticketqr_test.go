package ticketqr

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()

	g, err := NewGenerator(baseURL, Options{Size: 256, Foreground: "#00e5ff", Background: "#0a0a0a"})
	require.NoError(t, err)

	return g
}

func decodeDataURI(t *testing.T, uri string) []byte {
	t.Helper()

	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	require.True(t, ok, uri)

	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)

	return data
}

func TestGenerator_Generate(t *testing.T) {
	g := newTestGenerator(t, "https://fest.example.edu/")

	artifact, err := g.Generate("YF26-00042")
	require.NoError(t, err)
	assert.Equal(t, "https://fest.example.edu/ticket/YF26-00042", artifact.URL)

	img, err := png.Decode(bytes.NewReader(artifact.PNG))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	uri := artifact.DataURI()
	assert.Contains(t, uri, "data:image/png;base64,")

	assert.Equal(t, artifact.PNG, decodeDataURI(t, uri))
}

func TestGenerator_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/only", "fest.example.edu"} {
		g, err := NewGenerator(base, Options{Foreground: "#000", Background: "#fff"})
		assert.ErrorIs(t, err, ErrInvalidBaseURL, base)
		assert.Nil(t, g)
	}
}

func TestNewGenerator_InvalidColor(t *testing.T) {
	_, err := NewGenerator("https://fest.example.edu", Options{Foreground: "cyan", Background: "#000"})
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, c)

	c, err = parseHexColor("00e5ff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 0xe5, B: 0xff, A: 0xff}, c)
}
