package campaign

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// raw HTML inside markdown is dropped (WithUnsafe is not set)
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderBody turns a merged body into mail parts. HTML bodies are sent as is;
// markdown is rendered and the source kept as the text part.
func RenderBody(content string, isHTML bool) (html, text string, err error) {
	if isHTML {
		return content, "", nil
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(content), &buf); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), content, nil
}
