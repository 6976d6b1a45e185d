package web2pdf

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/mbrunel/go-web2pdf/internal/fileutil"
)

// TextWrapper converts a non-HTML text input into a temporary HTML file
// the engine can navigate to. The cleanup function removes the artifact.
type TextWrapper interface {
	Wrap(path, encoding string) (htmlPath string, cleanup func(), err error)
}

// Compile-time interface check.
var _ TextWrapper = (*markupWrapper)(nil)

// wrappedTemplate embeds the wrapped content in a complete HTML5
// document. Plain text keeps its layout via <pre>.
const wrappedTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// markupWrapper wraps plain-text inputs in HTML. Markdown files are
// rendered with goldmark (GFM plus syntax highlighting); everything else
// is escaped into a <pre> block.
type markupWrapper struct {
	tempDir string
	md      goldmark.Markdown
}

// newMarkupWrapper creates a wrapper writing artifacts under tempDir
// (empty means the system temp directory).
func newMarkupWrapper(tempDir string) *markupWrapper {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				// Inline styles keep the wrapped document self-contained.
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)
	return &markupWrapper{tempDir: tempDir, md: md}
}

// Wrap reads the file, decodes it from the named IANA charset (empty
// means UTF-8), and writes a temporary HTML document next to the other
// conversion artifacts.
func (w *markupWrapper) Wrap(path, encoding string) (string, func(), error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- caller-provided input path
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading %s: %v", ErrPreProcessing, path, err)
	}

	text, err := decodeCharset(raw, encoding)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrPreProcessing, err)
	}

	var body string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		var buf bytes.Buffer
		if err := w.md.Convert([]byte(text), &buf); err != nil {
			return "", nil, fmt.Errorf("%w: rendering markdown: %v", ErrPreProcessing, err)
		}
		body = buf.String()
	default:
		body = "<pre>" + html.EscapeString(text) + "</pre>"
	}

	doc := fmt.Sprintf(wrappedTemplate, html.EscapeString(filepath.Base(path)), body)

	htmlPath, cleanup, err := fileutil.WriteTempFile(w.tempDir, doc, "html")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrPreProcessing, err)
	}
	return htmlPath, cleanup, nil
}

// decodeCharset decodes raw bytes from the named IANA charset to UTF-8.
// An empty name passes the bytes through unchanged.
func decodeCharset(raw []byte, name string) (string, error) {
	if name == "" {
		return string(raw), nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown charset %q", name)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %q content: %v", name, err)
	}
	return string(decoded), nil
}

// hasExtension reports whether path's extension is in exts
// (case-insensitive, extensions include the leading dot).
func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
