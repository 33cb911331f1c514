package reader

import (
	"fmt"
)

// Rectangle is a PDF rectangle [llx lly urx ury].
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the width of the rectangle.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the height of the rectangle.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Page is a leaf of the page tree, with inherited attributes applied.
type Page struct {
	Number   int
	MediaBox Rectangle
	CropBox  *Rectangle
	Rotate   int

	contents  Object
	resources Object
}

// maxPageTreeDepth bounds recursion in malformed or cyclic page trees.
const maxPageTreeDepth = 64

// inheritable lists the page attributes a Pages node passes to its kids.
var inheritable = []Name{"MediaBox", "CropBox", "Rotate", "Resources"}

func (d *Document) parseRectangle(obj Object) (Rectangle, bool) {
	obj, err := d.resolveIfRef(obj)
	if err != nil {
		return Rectangle{}, false
	}
	arr, ok := obj.(Array)
	if !ok || len(arr) != 4 {
		return Rectangle{}, false
	}

	var vals [4]float64
	for i, v := range arr {
		v, _ = d.resolveIfRef(v)
		switch n := v.(type) {
		case Integer:
			vals[i] = float64(n)
		case Real:
			vals[i] = float64(n)
		default:
			return Rectangle{}, false
		}
	}
	return Rectangle{LLX: vals[0], LLY: vals[1], URX: vals[2], URY: vals[3]}, true
}

// buildPageList flattens the page tree rooted at the catalog's /Pages.
func (d *Document) buildPageList() error {
	root, err := d.resolveIfRef(d.trailer["Root"])
	if err != nil {
		return fmt.Errorf("reader: resolving /Root: %w", err)
	}
	catalog, ok := root.(Dict)
	if !ok {
		return fmt.Errorf("%w: missing document catalog", ErrCorrupted)
	}

	pages, err := d.resolveIfRef(catalog["Pages"])
	if err != nil {
		return fmt.Errorf("reader: resolving /Pages: %w", err)
	}
	pagesDict, ok := pages.(Dict)
	if !ok {
		return fmt.Errorf("%w: /Pages is not a dictionary", ErrCorrupted)
	}

	d.pages = nil
	return d.walkPageTree(pagesDict, Dict{}, map[Reference]bool{}, 0)
}

// walkPageTree appends the leaves under node in document order.
func (d *Document) walkPageTree(node, inherited Dict, visited map[Reference]bool, depth int) error {
	if depth > maxPageTreeDepth {
		return fmt.Errorf("%w: page tree too deep", ErrCorrupted)
	}

	attrs := make(Dict, len(inheritable))
	for k, v := range inherited {
		attrs[k] = v
	}
	for _, key := range inheritable {
		if v, ok := node[key]; ok {
			attrs[key] = v
		}
	}

	kids, hasKids := node["Kids"]
	if node.Name("Type") == "Page" || (!hasKids && node.Name("Type") != "Pages") {
		d.pages = append(d.pages, d.newPage(attrs, node["Contents"]))
		return nil
	}

	kidsObj, err := d.resolveIfRef(kids)
	if err != nil {
		return fmt.Errorf("reader: resolving /Kids: %w", err)
	}
	arr, _ := kidsObj.(Array)
	for _, kid := range arr {
		if ref, ok := kid.(Reference); ok {
			if visited[ref] {
				return fmt.Errorf("%w: page tree cycle at %s", ErrCorrupted, ref)
			}
			visited[ref] = true
		}
		kidObj, err := d.resolveIfRef(kid)
		if err != nil {
			return fmt.Errorf("reader: resolving page tree node: %w", err)
		}
		kidDict, ok := kidObj.(Dict)
		if !ok {
			continue
		}
		if err := d.walkPageTree(kidDict, attrs, visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) newPage(attrs Dict, contents Object) *Page {
	page := &Page{Number: len(d.pages) + 1, contents: contents, resources: attrs["Resources"]}
	if rect, ok := d.parseRectangle(attrs["MediaBox"]); ok {
		page.MediaBox = rect
	}
	if rect, ok := d.parseRectangle(attrs["CropBox"]); ok {
		page.CropBox = &rect
	}
	if rot, err := d.resolveIfRef(attrs["Rotate"]); err == nil {
		if n, ok := rot.(Integer); ok {
			page.Rotate = int(n)
		}
	}
	return page
}
