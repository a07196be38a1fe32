package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Cell is a single notebook cell. Keys the model does not know about are
// carried through unchanged.
type Cell struct {
	Type           string
	ID             string
	Source         Source
	Metadata       json.RawMessage
	Outputs        []json.RawMessage
	ExecutionCount *int
	Attachments    json.RawMessage

	extra map[string]json.RawMessage
}

var knownCellKeys = []string{"cell_type", "id", "source", "metadata", "outputs", "execution_count", "attachments"}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}

	if raw, ok := fields["cell_type"]; ok {
		if err := json.Unmarshal(raw, &c.Type); err != nil {
			return fmt.Errorf("decode cell_type: %w", err)
		}
	}
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &c.ID); err != nil {
			return fmt.Errorf("decode cell id: %w", err)
		}
	}
	if raw, ok := fields["source"]; ok {
		if err := json.Unmarshal(raw, &c.Source); err != nil {
			return err
		}
	}
	if raw, ok := fields["outputs"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &c.Outputs); err != nil {
			return fmt.Errorf("decode outputs: %w", err)
		}
	}
	if raw, ok := fields["execution_count"]; ok && string(raw) != "null" {
		var count int
		if err := json.Unmarshal(raw, &count); err != nil {
			return fmt.Errorf("decode execution_count: %w", err)
		}
		c.ExecutionCount = &count
	}
	c.Metadata = fields["metadata"]
	c.Attachments = fields["attachments"]

	for _, key := range knownCellKeys {
		delete(fields, key)
	}
	if len(fields) > 0 {
		c.extra = fields
	}
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.extra)+7)
	for k, v := range c.extra {
		out[k] = v
	}

	out["cell_type"] = c.Type
	out["source"] = c.Source
	if c.ID != "" {
		out["id"] = c.ID
	}
	if len(c.Metadata) > 0 {
		out["metadata"] = c.Metadata
	} else {
		out["metadata"] = json.RawMessage(`{}`)
	}
	if len(c.Attachments) > 0 {
		out["attachments"] = c.Attachments
	}
	if c.Type == CellTypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []json.RawMessage{}
		}
		out["outputs"] = outputs
		out["execution_count"] = c.ExecutionCount
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode cell: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Source is cell text. On disk it is either a string or a list of lines.
type Source string

func (s *Source) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("decode source lines: %w", err)
		}
		*s = Source(strings.Join(lines, ""))
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("decode source: %w", err)
	}
	*s = Source(text)
	return nil
}

// MarshalJSON writes the multi-line form, each line keeping its newline.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(splitLines(string(s)))
}

func splitLines(text string) []string {
	lines := []string{}
	for text != "" {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
	}
	return lines
}

// Output is the decoded form of a code cell output, used for rendering.
type Output struct {
	OutputType     string                     `json:"output_type"`
	Name           string                     `json:"name,omitempty"`
	Text           Source                     `json:"text,omitempty"`
	Data           map[string]json.RawMessage `json:"data,omitempty"`
	EName          string                     `json:"ename,omitempty"`
	EValue         string                     `json:"evalue,omitempty"`
	Traceback      []string                   `json:"traceback,omitempty"`
	ExecutionCount *int                       `json:"execution_count,omitempty"`
}

// DecodeOutputs decodes the raw outputs of a code cell.
func (c *Cell) DecodeOutputs() ([]Output, error) {
	outputs := make([]Output, 0, len(c.Outputs))
	for i, raw := range c.Outputs {
		var out Output
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode output %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// MimeText returns the textual value of a mime bundle entry, which nbformat
// stores either as a string or a list of lines.
func MimeText(raw json.RawMessage) string {
	var s Source
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return string(s)
}
