package render

import (
	"strings"
	"testing"

	"NotebookValidator/internal/notebook"
)

const executed = `{
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Results <b>bold</b>\n"]},
  {"cell_type": "code", "execution_count": 1, "metadata": {}, "source": ["print('a < b')"],
   "outputs": [
    {"output_type": "stream", "name": "stdout", "text": ["a < b\n"]},
    {"output_type": "execute_result", "execution_count": 1, "metadata": {}, "data": {"text/plain": ["42"]}},
    {"output_type": "display_data", "metadata": {}, "data": {"text/html": ["<table><tr><td>1</td></tr></table>"], "text/plain": ["df"]}},
    {"output_type": "display_data", "metadata": {}, "data": {"image/png": "iVBORw0KGgo=\n"}},
    {"output_type": "error", "ename": "ValueError", "evalue": "bad", "traceback": ["\u001b[0;31mValueError\u001b[0m: bad"]}
   ]}
 ],
 "metadata": {"kernelspec": {"name": "python3", "display_name": "Python 3"}},
 "nbformat": 4,
 "nbformat_minor": 2
}`

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	doc, err := notebook.Parse([]byte(executed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out, err := NewHTMLRenderer().Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"Kernel: python3",
		"# Results &lt;b&gt;bold&lt;/b&gt;",
		"[1]:",
		"print(&#39;a &lt; b&#39;)",
		"<pre>42</pre>",
		"<table><tr><td>1</td></tr></table>",
		`<img src="data:image/png;base64,iVBORw0KGgo=">`,
		"ValueError: bad",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("rendered page missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "\x1b") {
		t.Fatal("ANSI escapes should be stripped from tracebacks")
	}
}

func TestRenderNilDocument(t *testing.T) {
	t.Parallel()

	if _, err := NewHTMLRenderer().Render(nil); err == nil {
		t.Fatal("expected error for nil document")
	}
}
