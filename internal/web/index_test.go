package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Render(t *testing.T) {
	var buf bytes.Buffer
	err := Index(IndexProps{Version: "v1<x>", Fallback: "no <soup> today"}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "The Soup Oracle Says:")
	assert.Contains(t, html, "v1&lt;x&gt;")
	assert.Contains(t, html, `"fallback":"no \u003csoup\u003e today"`)
	assert.Contains(t, html, "Pondering...")
	assert.Contains(t, html, "application/x-ndjson")
	assert.NotContains(t, html, "<soup>")
}
