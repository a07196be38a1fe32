package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

// HTMLRenderer turns an executed notebook into a standalone HTML page.
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ ports.Renderer = (*HTMLRenderer)(nil)

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: template.Must(template.New("notebook").Parse(pageTemplate))}
}

type pageView struct {
	Title  string
	Kernel string
	Cells  []cellView
}

type cellView struct {
	Type    string
	Prompt  string
	Source  string
	Outputs []outputView
}

type outputView struct {
	Kind  string
	Text  string
	HTML  template.HTML
	Image template.URL
	Error bool
}

// Render produces the HTML document. Cell sources are escaped; text/html
// outputs are embedded as produced by the kernel.
func (r *HTMLRenderer) Render(doc *notebook.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("render notebook: nil document")
	}

	view := pageView{Title: notebookTitle(doc)}
	if kernel, err := notebook.KernelName(doc); err == nil {
		view.Kernel = kernel
	}

	for i, cell := range doc.Cells {
		if cell == nil {
			continue
		}
		cv := cellView{Type: cell.Type, Source: string(cell.Source)}
		if cell.Type == notebook.CellTypeCode {
			cv.Prompt = prompt(cell.ExecutionCount)
			outputs, err := cell.DecodeOutputs()
			if err != nil {
				return nil, fmt.Errorf("render cell %d: %w", i, err)
			}
			for _, out := range outputs {
				if ov, ok := outputFor(out); ok {
					cv.Outputs = append(cv.Outputs, ov)
				}
			}
		}
		view.Cells = append(view.Cells, cv)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render notebook: %w", err)
	}
	return buf.Bytes(), nil
}

func outputFor(out notebook.Output) (outputView, bool) {
	switch out.OutputType {
	case "stream":
		return outputView{Kind: "stream-" + out.Name, Text: string(out.Text)}, true
	case "error":
		text := strings.Join(out.Traceback, "\n")
		if text == "" {
			text = out.EName + ": " + out.EValue
		}
		return outputView{Kind: "error", Text: stripANSI(text), Error: true}, true
	case "execute_result", "display_data":
		return richOutput(out.Data)
	}
	return outputView{}, false
}

func richOutput(data map[string]json.RawMessage) (outputView, bool) {
	if raw, ok := data["image/png"]; ok {
		img := strings.ReplaceAll(notebook.MimeText(raw), "\n", "")
		return outputView{Kind: "image", Image: template.URL("data:image/png;base64," + img)}, true
	}
	if raw, ok := data["text/html"]; ok {
		return outputView{Kind: "html", HTML: template.HTML(notebook.MimeText(raw))}, true
	}
	if raw, ok := data["text/plain"]; ok {
		return outputView{Kind: "text", Text: notebook.MimeText(raw)}, true
	}
	return outputView{}, false
}

func prompt(count *int) string {
	if count == nil {
		return "[ ]:"
	}
	return fmt.Sprintf("[%d]:", *count)
}

func notebookTitle(doc *notebook.Document) string {
	var meta struct {
		Title string `json:"title"`
	}
	if len(doc.Metadata) > 0 && json.Unmarshal(doc.Metadata, &meta) == nil && meta.Title != "" {
		return meta.Title
	}
	return "Notebook"
}

// stripANSI removes terminal colour sequences that IPython puts in tracebacks.
func stripANSI(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == 0x1b && i+1 < len(text) && text[i+1] == '[' {
			j := i + 2
			for j < len(text) && (text[j] < '@' || text[j] > '~') {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 960px; }
.cell { margin-bottom: 1em; }
.prompt { color: #303f9f; font-family: monospace; }
pre { background: #f7f7f7; padding: .5em; overflow-x: auto; }
.output pre { background: #fff; }
.error pre { background: #fdd; }
</style>
</head>
<body>
{{- if .Kernel}}
<p class="kernel">Kernel: {{.Kernel}}</p>
{{- end}}
{{- range .Cells}}
<div class="cell {{.Type}}">
{{- if eq .Type "code"}}
<div class="input"><span class="prompt">{{.Prompt}}</span><pre><code>{{.Source}}</code></pre></div>
{{- range .Outputs}}
<div class="output {{.Kind}}">
{{- if .Image}}<img src="{{.Image}}">
{{- else if .HTML}}{{.HTML}}
{{- else}}<pre>{{.Text}}</pre>{{end}}
</div>
{{- end}}
{{- else}}
<pre class="{{.Type}}">{{.Source}}</pre>
{{- end}}
</div>
{{- end}}
</body>
</html>
`
