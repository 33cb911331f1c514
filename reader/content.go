package reader

import (
	"fmt"
	"slices"
)

// maxFormDepth bounds the nesting of form XObjects followed by Content.
const maxFormDepth = 8

// Content returns the decoded content stream of page n followed by the
// content of every form XObject the page paints, in painting order. Merged
// documents often draw an imported page as a single form XObject, so this
// is what a page actually shows.
func (d *Document) Content(n int) ([]byte, error) {
	page, err := d.Page(n)
	if err != nil {
		return nil, err
	}
	obj, err := d.resolveIfRef(page.contents)
	if err != nil {
		return nil, fmt.Errorf("reader: page %d contents: %w", n, err)
	}

	var parts []Object
	switch c := obj.(type) {
	case Stream:
		parts = []Object{c}
	case Array:
		parts = c
	}
	var content []byte
	for _, part := range parts {
		data, err := d.decodeRef(part)
		if err != nil {
			return nil, fmt.Errorf("reader: page %d contents: %w", n, err)
		}
		content = append(content, data...)
		content = append(content, '\n')
	}
	return d.expandForms(content, page.resources, 0)
}

// decodeRef resolves obj to a stream and returns its decoded data.
func (d *Document) decodeRef(obj Object) ([]byte, error) {
	obj, err := d.resolveIfRef(obj)
	if err != nil {
		return nil, err
	}
	s, ok := obj.(Stream)
	if !ok {
		return nil, fmt.Errorf("%w: content is not a stream", ErrCorrupted)
	}
	return decodeStream(s)
}

// dict resolves obj and returns it if it is a dictionary.
func (d *Document) dict(obj Object) Dict {
	obj, err := d.resolveIfRef(obj)
	if err != nil {
		return nil
	}
	dict, _ := obj.(Dict)
	return dict
}

// expandForms appends to content the content of each form XObject painted
// with "/Name Do", looked up in resources. Scanning stops quietly at the
// first token it cannot read, such as inline image data.
func (d *Document) expandForms(content []byte, resources Object, depth int) ([]byte, error) {
	out := slices.Clone(content)
	if depth >= maxFormDepth {
		return out, nil
	}
	xobjects := d.dict(d.dict(resources)["XObject"])

	p := newParser(content)
	var operand Name
	for {
		tok, err := p.next()
		if err != nil || tok.kind == tokEOF {
			return out, nil
		}
		if tok.kind == tokName {
			operand = Name(tok.text)
			continue
		}
		if tok.kind == tokWord && string(tok.text) == "Do" && operand != "" {
			obj, err := d.resolveIfRef(xobjects[operand])
			if err != nil {
				return nil, fmt.Errorf("reader: XObject %s: %w", operand, err)
			}
			if form, ok := obj.(Stream); ok && form.Dict.Name("Subtype") == "Form" {
				data, err := decodeStream(form)
				if err != nil {
					return nil, fmt.Errorf("reader: XObject %s: %w", operand, err)
				}
				res, ok := form.Dict["Resources"]
				if !ok {
					res = resources
				}
				nested, err := d.expandForms(data, res, depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, '\n')
				out = append(out, nested...)
			}
		}
		operand = ""
	}
}
