package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md renders email bodies. Raw HTML in the source is escaped (WithUnsafe is not set),
// so member-supplied names cannot inject markup.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const layoutOpen = `<div style="font-family:Helvetica,Arial,sans-serif;max-width:560px;margin:0 auto;color:#1f2933">`

const layoutClose = `<p style="color:#7b8794;font-size:12px">Sent by GymBios</p></div>`

// RenderMarkdown converts a markdown body into the HTML sent to recipients.
func RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(layoutOpen)
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	buf.WriteString(layoutClose)
	return buf.String(), nil
}
