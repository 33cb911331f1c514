package reader

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"unicode/utf16"
)

// Document is a parsed PDF document.
type Document struct {
	Version string // from the %PDF-x.y header
	xref    xrefTable
	trailer Dict
	data    []byte
	pages   []*Page
	objstms map[int]*objectStream
}

// Open reads and parses a PDF file from disk.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reader: opening %s: %w", filename, err)
	}
	return parse(data)
}

// ReadFrom parses a PDF document from r, which is read fully into memory.
func ReadFrom(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reader: reading input: %w", err)
	}
	return parse(data)
}

// PageCount opens filename and returns its number of pages.
func PageCount(filename string) (int, error) {
	doc, err := Open(filename)
	if err != nil {
		return 0, err
	}
	return doc.NumPages(), nil
}

func parse(data []byte) (*Document, error) {
	version, ok := parseVersion(data)
	if !ok {
		return nil, ErrNotPDF
	}
	doc := &Document{Version: version, data: data, objstms: make(map[int]*objectStream)}

	start, err := findStartXRef(data)
	if err != nil {
		return nil, err
	}
	doc.xref, doc.trailer, err = readXRef(data, start)
	if err != nil {
		return nil, err
	}

	if _, ok := doc.trailer["Encrypt"]; ok {
		return nil, ErrEncrypted
	}

	if err := doc.buildPageList(); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseVersion finds the "%PDF-x.y" header within the first kilobyte, where
// readers are required to tolerate leading garbage.
func parseVersion(data []byte) (string, bool) {
	head := data[:min(len(data), 1024)]
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return "", false
	}
	v := head[idx+len("%PDF-"):]
	end := 0
	for end < len(v) && (v[end] == '.' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	return string(v[:end]), true
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(n int) (*Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("reader: page %d out of range [1, %d]", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// Pages iterates over all pages with their 1-based numbers.
func (d *Document) Pages() iter.Seq2[int, *Page] {
	return func(yield func(int, *Page) bool) {
		for i, page := range d.pages {
			if !yield(i+1, page) {
				return
			}
		}
	}
}

// Metadata returns the text entries of the /Info dictionary.
func (d *Document) Metadata() map[string]string {
	meta := make(map[string]string)
	obj, err := d.resolveIfRef(d.trailer["Info"])
	if err != nil {
		return meta
	}
	info, _ := obj.(Dict)
	for _, key := range []Name{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"} {
		v, _ := d.resolveIfRef(info[key])
		if s, ok := v.(String); ok {
			meta[string(key)] = decodeTextString(s)
		}
	}
	return meta
}

// decodeTextString decodes a PDF text string: UTF-16BE with a byte order
// mark, otherwise treated as Latin-1.
func decodeTextString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// resolve loads the object an indirect reference points to.
// Free or missing objects resolve to null, as the PDF format requires.
func (d *Document) resolve(ref Reference) (Object, error) {
	entry, ok := d.xref[ref.Number]
	if !ok || !entry.InUse {
		return Null{}, nil
	}
	if entry.Compressed {
		return d.resolveCompressed(ref, entry)
	}
	if entry.Offset < 0 || entry.Offset >= int64(len(d.data)) {
		return nil, fmt.Errorf("%w: object %d offset %d out of bounds", ErrCorrupted, ref.Number, entry.Offset)
	}

	got, obj, err := newParser(d.data[entry.Offset:]).ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("reader: parsing object %d: %w", ref.Number, err)
	}
	if got.Number != ref.Number {
		return nil, fmt.Errorf("%w: xref for object %d points at object %d", ErrCorrupted, ref.Number, got.Number)
	}
	return obj, nil
}

func (d *Document) resolveIfRef(obj Object) (Object, error) {
	if ref, ok := obj.(Reference); ok {
		return d.resolve(ref)
	}
	if obj == nil {
		return Null{}, nil
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference to the object it names.
func (d *Document) ResolveReference(ref Reference) (Object, error) {
	return d.resolve(ref)
}

// objectStream is a decoded /Type /ObjStm stream.
type objectStream struct {
	offsets map[int]int // object number -> offset into data
	data    []byte
}

func (d *Document) resolveCompressed(ref Reference, entry xrefEntry) (Object, error) {
	stm, err := d.loadObjectStream(entry.Stream)
	if err != nil {
		return nil, fmt.Errorf("reader: object %d in object stream %d: %w", ref.Number, entry.Stream, err)
	}
	off, ok := stm.offsets[ref.Number]
	if !ok || off >= len(stm.data) {
		return Null{}, nil
	}
	obj, err := newParser(stm.data[off:]).ParseObject()
	if err != nil {
		return nil, fmt.Errorf("reader: object %d in object stream %d: %w", ref.Number, entry.Stream, err)
	}
	return obj, nil
}

func (d *Document) loadObjectStream(num int) (*objectStream, error) {
	if stm, ok := d.objstms[num]; ok {
		return stm, nil
	}

	entry, ok := d.xref[num]
	if !ok || entry.Compressed {
		return nil, fmt.Errorf("%w: object stream %d not found", ErrCorrupted, num)
	}
	obj, err := d.resolve(Reference{Number: num, Generation: entry.Generation})
	if err != nil {
		return nil, err
	}
	s, ok := obj.(Stream)
	if !ok {
		return nil, fmt.Errorf("%w: object %d is not a stream", ErrCorrupted, num)
	}
	data, err := decodeStream(s)
	if err != nil {
		return nil, err
	}

	n, _ := s.Dict.Int("N")
	first, _ := s.Dict.Int("First")
	if first < 0 || first > int64(len(data)) {
		return nil, fmt.Errorf("%w: object stream %d has bad /First", ErrCorrupted, num)
	}

	stm := &objectStream{offsets: make(map[int]int, n), data: data}
	header := newParser(data[:first])
	for i := int64(0); i < n; i++ {
		objNum, err1 := strconv.Atoi(header.word())
		off, err2 := strconv.Atoi(header.word())
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: object stream %d header", ErrCorrupted, num)
		}
		stm.offsets[objNum] = int(first) + off
	}
	d.objstms[num] = stm
	return stm, nil
}
