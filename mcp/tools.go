package mcp

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/lvillar/pdfburger"
	"github.com/lvillar/pdfburger/reader"
)

// RegisterDefaultTools adds the collect, merge and info tools to the server.
// Collection and merging run through b.
func RegisterDefaultTools(s *Server, b *pdfburger.Burger) {
	s.AddTool(collectPDFsTool(b))
	s.AddTool(mergePDFsTool(b))
	s.AddTool(pdfInfoTool())
}

var inputsSchema = map[string]interface{}{
	"type":        "array",
	"items":       map[string]interface{}{"type": "string"},
	"description": "PDF files and directories, in merge order",
}

var recursiveSchema = map[string]interface{}{
	"type":        "boolean",
	"description": "Scan directories recursively",
}

func collectPDFsTool(b *pdfburger.Burger) Tool {
	return Tool{
		Name:        "collect_pdfs",
		Description: "Resolve PDF files and directories into the ordered list of readable PDFs that would be merged, plus warnings for skipped files. Nothing is written.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"inputs":    inputsSchema,
				"recursive": recursiveSchema,
			},
			"required": []string{"inputs"},
		},
		Handler: func(args map[string]interface{}) (ToolResult, error) {
			inputs, err := stringSlice(args, "inputs")
			if err != nil {
				return ToolResult{}, err
			}
			recursive, _ := args["recursive"].(bool)

			cr, err := b.Collect(inputs, recursive).Get()
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(cr)
		},
	}
}

type mergeResult struct {
	pdfburger.Report
	Warnings []string `json:"warnings"`
}

func mergePDFsTool(b *pdfburger.Burger) Tool {
	return Tool{
		Name:        "merge_pdfs",
		Description: "Collect PDF files and directories and merge them, in order, into one output PDF. Returns the file and page counts and any warnings.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"inputs": inputsSchema,
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Path for the merged output PDF; missing directories are created",
				},
				"recursive": recursiveSchema,
			},
			"required": []string{"inputs", "output"},
		},
		Handler: func(args map[string]interface{}) (ToolResult, error) {
			inputs, err := stringSlice(args, "inputs")
			if err != nil {
				return ToolResult{}, err
			}
			output, ok := args["output"].(string)
			if !ok || output == "" {
				return ToolResult{}, fmt.Errorf("missing 'output' argument")
			}
			output, err = filepath.Abs(output)
			if err != nil {
				return ToolResult{}, fmt.Errorf("resolving output path: %w", err)
			}
			recursive, _ := args["recursive"].(bool)

			cr, err := b.Collect(inputs, recursive).Get()
			if err != nil {
				return ToolResult{}, err
			}
			report, err := b.Merge(cr.Files, output).Get()
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(mergeResult{Report: report, Warnings: nonNil(cr.Warnings)})
		},
	}
}

func pdfInfoTool() Tool {
	return Tool{
		Name:        "pdf_info",
		Description: "Get information about a PDF file: version, page count, metadata and page sizes.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the PDF file",
				},
			},
			"required": []string{"path"},
		},
		Handler: handlePDFInfo,
	}
}

func handlePDFInfo(args map[string]interface{}) (ToolResult, error) {
	path, ok := args["path"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'path' argument")
	}

	doc, err := reader.Open(path)
	if err != nil {
		return ToolResult{}, fmt.Errorf("opening PDF: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"version":  doc.Version,
		"numPages": doc.NumPages(),
		"metadata": doc.Metadata(),
		"pages":    pageInfos(doc),
	})
}

type pageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate int     `json:"rotate"`
}

// pageInfos lists the size and rotation of every page.
func pageInfos(doc *reader.Document) []pageInfo {
	infos := make([]pageInfo, 0, doc.NumPages())
	for num, page := range doc.Pages() {
		infos = append(infos, pageInfo{
			Page:   num,
			Width:  page.MediaBox.Width(),
			Height: page.MediaBox.Height(),
			Rotate: page.Rotate,
		})
	}
	return infos
}

func jsonResult(v interface{}) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding result: %w", err)
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(data)}}}, nil
}

// stringSlice reads a required array-of-strings argument.
func stringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("missing '%s' argument", key)
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("'%s'[%d] is not a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
