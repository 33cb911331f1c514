package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lvillar/pdfburger/reader"
)

// documentResource is a read-only view of one PDF, addressed as
// <uri>?path=<file>. The view sees the remaining query parameters.
type documentResource struct {
	uri         string
	name        string
	description string
	view        func(*reader.Document, url.Values) (interface{}, error)
}

var documentResources = []documentResource{
	{
		uri:         "pdf://pages",
		name:        "PDF Page Info",
		description: "Page count and page dimensions of a PDF",
		view: func(doc *reader.Document, _ url.Values) (interface{}, error) {
			return struct {
				NumPages int        `json:"numPages"`
				Pages    []pageInfo `json:"pages"`
			}{doc.NumPages(), pageInfos(doc)}, nil
		},
	},
	{
		uri:         "pdf://metadata",
		name:        "PDF Metadata",
		description: "Version, page count and document information of a PDF",
		view: func(doc *reader.Document, _ url.Values) (interface{}, error) {
			return struct {
				Version  string            `json:"version"`
				NumPages int               `json:"numPages"`
				Metadata map[string]string `json:"metadata"`
			}{doc.Version, doc.NumPages(), doc.Metadata()}, nil
		},
	},
	{
		uri:         "pdf://content",
		name:        "PDF Page Content",
		description: "Decoded content stream of one page, including the form XObjects it paints; select the page with page=N (default 1)",
		view:        pageContent,
	},
}

// RegisterDefaultResources adds the pdf:// resources to the server. Each
// takes the file path as the "path" query parameter.
func RegisterDefaultResources(s *Server) {
	for _, r := range documentResources {
		s.AddResource(Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: fmt.Sprintf("%s. Pass the file path as a query parameter: %s?path=/path/to/file.pdf", r.description, r.uri),
			MIMEType:    "application/json",
			Handler:     r.read,
		})
	}
}

func (r documentResource) read(uri string) ([]ResourceContent, error) {
	query, err := parseResourceURI(uri)
	if err != nil {
		return nil, err
	}
	doc, err := reader.Open(query.Get("path"))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	v, err := r.view(doc, query)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}

var errMissingPath = errors.New("missing 'path' parameter in URI")

// parseResourceURI returns the decoded query of uri, which must carry a
// "path" parameter.
func parseResourceURI(uri string) (url.Values, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URI: %w", err)
	}
	query := u.Query()
	if query.Get("path") == "" {
		return nil, errMissingPath
	}
	return query, nil
}

func pageContent(doc *reader.Document, query url.Values) (interface{}, error) {
	page := 1
	if s := query.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid 'page' parameter %q", s)
		}
		page = n
	}
	content, err := doc.Content(page)
	if err != nil {
		return nil, err
	}
	return struct {
		Page    int    `json:"page"`
		Content string `json:"content"`
	}{page, string(content)}, nil
}
