package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	v3Format      = 3
	upgradedMinor = 4
)

// v3 output bundles use short keys for their mime types.
var v3MimeKeys = map[string]string{
	"text":       "text/plain",
	"html":       "text/html",
	"svg":        "image/svg+xml",
	"png":        "image/png",
	"jpeg":       "image/jpeg",
	"latex":      "text/latex",
	"json":       "application/json",
	"javascript": "application/javascript",
}

// v3 output fields that are not part of the mime bundle.
var v3OutputFields = map[string]bool{
	"output_type":   true,
	"prompt_number": true,
	"metadata":      true,
	"stream":        true,
	"name":          true,
	"ename":         true,
	"evalue":        true,
	"traceback":     true,
}

type v3Notebook struct {
	Metadata   map[string]json.RawMessage `json:"metadata"`
	Worksheets []struct {
		Cells []map[string]json.RawMessage `json:"cells"`
	} `json:"worksheets"`
}

// upgradeV3 rewrites an nbformat 3 document into the v4 layout: worksheet
// cells are flattened, heading cells become markdown and pyout/pyerr
// outputs take their v4 names.
func upgradeV3(data []byte) ([]byte, error) {
	var old v3Notebook
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("decode v3 notebook: %w", err)
	}

	cells := []map[string]any{}
	for _, ws := range old.Worksheets {
		for i, raw := range ws.Cells {
			cell, err := upgradeCell(raw)
			if err != nil {
				return nil, fmt.Errorf("upgrade cell %d: %w", i, err)
			}
			cells = append(cells, cell)
		}
	}

	meta := map[string]any{}
	for k, v := range old.Metadata {
		meta[k] = v
	}
	meta["orig_nbformat"] = v3Format

	return json.Marshal(map[string]any{
		"cells":          cells,
		"metadata":       meta,
		"nbformat":       minFormat,
		"nbformat_minor": upgradedMinor,
	})
}

func upgradeCell(fields map[string]json.RawMessage) (map[string]any, error) {
	var cellType string
	if raw, ok := fields["cell_type"]; ok {
		if err := json.Unmarshal(raw, &cellType); err != nil {
			return nil, fmt.Errorf("decode cell_type: %w", err)
		}
	}

	meta := map[string]json.RawMessage{}
	if raw, ok := fields["metadata"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decode cell metadata: %w", err)
		}
	}

	cell := map[string]any{}
	switch cellType {
	case CellTypeCode:
		source, err := sourceField(fields, "input")
		if err != nil {
			return nil, err
		}
		if raw, ok := fields["collapsed"]; ok {
			meta["collapsed"] = raw
		}
		outputs := []map[string]any{}
		if raw, ok := fields["outputs"]; ok && string(raw) != "null" {
			var olds []map[string]json.RawMessage
			if err := json.Unmarshal(raw, &olds); err != nil {
				return nil, fmt.Errorf("decode outputs: %w", err)
			}
			for _, o := range olds {
				outputs = append(outputs, upgradeOutput(o))
			}
		}
		cell["cell_type"] = CellTypeCode
		cell["source"] = source
		cell["outputs"] = outputs
		cell["execution_count"] = nullable(fields["prompt_number"])
	case "heading":
		source, err := sourceField(fields, "source")
		if err != nil {
			return nil, err
		}
		level := 1
		if raw, ok := fields["level"]; ok {
			if err := json.Unmarshal(raw, &level); err != nil {
				return nil, fmt.Errorf("decode heading level: %w", err)
			}
		}
		line := strings.Join(strings.Split(strings.TrimRight(string(source), "\n"), "\n"), " ")
		cell["cell_type"] = CellTypeMarkdown
		cell["source"] = Source(strings.Repeat("#", level) + " " + line)
	case "html":
		source, err := sourceField(fields, "source")
		if err != nil {
			return nil, err
		}
		cell["cell_type"] = CellTypeMarkdown
		cell["source"] = source
	default:
		source, err := sourceField(fields, "source")
		if err != nil {
			return nil, err
		}
		cell["cell_type"] = cellType
		cell["source"] = source
	}
	cell["metadata"] = meta
	return cell, nil
}

func upgradeOutput(fields map[string]json.RawMessage) map[string]any {
	var outputType string
	_ = json.Unmarshal(fields["output_type"], &outputType)

	out := map[string]any{}
	switch outputType {
	case "pyout", "display_data":
		data := map[string]json.RawMessage{}
		for k, v := range fields {
			if v3OutputFields[k] {
				continue
			}
			if mime, ok := v3MimeKeys[k]; ok {
				k = mime
			}
			data[k] = v
		}
		out["data"] = data
		out["metadata"] = objectOrEmpty(fields["metadata"])
		if outputType == "pyout" {
			out["output_type"] = "execute_result"
			out["execution_count"] = nullable(fields["prompt_number"])
		} else {
			out["output_type"] = outputType
		}
	case "pyerr":
		out["output_type"] = "error"
		out["ename"] = fields["ename"]
		out["evalue"] = fields["evalue"]
		out["traceback"] = fields["traceback"]
	case "stream":
		out["output_type"] = "stream"
		name := fields["name"]
		if name == nil {
			name = fields["stream"]
		}
		if name == nil {
			name = json.RawMessage(`"stdout"`)
		}
		out["name"] = name
		out["text"] = fields["text"]
	default:
		for k, v := range fields {
			out[k] = v
		}
	}
	return out
}

func sourceField(fields map[string]json.RawMessage, key string) (Source, error) {
	var source Source
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return source, nil
	}
	if err := json.Unmarshal(raw, &source); err != nil {
		return "", err
	}
	return source, nil
}

func nullable(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`null`)
	}
	return raw
}

func objectOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`)
	}
	return raw
}
