package reader

import (
	"bytes"
	"fmt"
	"strconv"
)

type tokenKind int

// Token kinds. tokWord covers numbers and keywords; the text of names and
// strings is already decoded.
const (
	tokEOF tokenKind = iota
	tokWord
	tokName
	tokString
	tokOpenArray
	tokCloseArray
	tokOpenDict
	tokCloseDict
)

type token struct {
	kind tokenKind
	text []byte
	off  int
}

// parser reads PDF tokens and objects from an in-memory buffer.
type parser struct {
	src []byte
	off int
}

func newParser(src []byte) *parser {
	return &parser{src: src}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipSpace advances past white space and comments.
func (p *parser) skipSpace() {
	for p.off < len(p.src) {
		b := p.src[p.off]
		if b == '%' {
			for p.off < len(p.src) && p.src[p.off] != '\n' && p.src[p.off] != '\r' {
				p.off++
			}
			continue
		}
		if !isSpace(b) {
			return
		}
		p.off++
	}
}

// at reports whether the next token starts with keyword.
func (p *parser) at(keyword string) bool {
	p.skipSpace()
	return bytes.HasPrefix(p.src[p.off:], []byte(keyword))
}

// word returns the next run of regular characters, or "" when the next
// token is a delimiter or the input is exhausted.
func (p *parser) word() string {
	p.skipSpace()
	start := p.off
	for p.off < len(p.src) && !isSpace(p.src[p.off]) && !isDelim(p.src[p.off]) {
		p.off++
	}
	return string(p.src[start:p.off])
}

func (p *parser) next() (token, error) {
	p.skipSpace()
	start := p.off
	if start >= len(p.src) {
		return token{kind: tokEOF, off: start}, nil
	}

	switch b := p.src[start]; b {
	case '[':
		p.off++
		return token{kind: tokOpenArray, off: start}, nil
	case ']':
		p.off++
		return token{kind: tokCloseArray, off: start}, nil
	case '<':
		if p.at("<<") {
			p.off += 2
			return token{kind: tokOpenDict, off: start}, nil
		}
		s, err := p.hexString()
		return token{kind: tokString, text: s, off: start}, err
	case '>':
		if p.at(">>") {
			p.off += 2
			return token{kind: tokCloseDict, off: start}, nil
		}
	case '(':
		s, err := p.literalString()
		return token{kind: tokString, text: s, off: start}, err
	case '/':
		return token{kind: tokName, text: p.name(), off: start}, nil
	}

	if w := p.word(); w != "" {
		return token{kind: tokWord, text: []byte(w), off: start}, nil
	}
	return token{}, fmt.Errorf("reader: unexpected character %q at offset %d", p.src[start], start)
}

// name reads a name after its slash, decoding #xx escapes.
func (p *parser) name() []byte {
	p.off++
	var out []byte
	for p.off < len(p.src) {
		b := p.src[p.off]
		if isSpace(b) || isDelim(b) {
			break
		}
		if b == '#' && p.off+2 < len(p.src) {
			if hi, lo := unhex(p.src[p.off+1]), unhex(p.src[p.off+2]); hi >= 0 && lo >= 0 {
				out = append(out, byte(hi<<4|lo))
				p.off += 3
				continue
			}
		}
		out = append(out, b)
		p.off++
	}
	return out
}

// literalString reads a parenthesised string with balanced nesting.
func (p *parser) literalString() ([]byte, error) {
	p.off++
	var out []byte
	for depth := 1; p.off < len(p.src); {
		b := p.src[p.off]
		p.off++
		switch b {
		case '\\':
			if p.off == len(p.src) {
				return nil, fmt.Errorf("reader: unterminated string escape")
			}
			out = p.escape(out)
			continue
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return out, nil
			}
		}
		out = append(out, b)
	}
	return nil, fmt.Errorf("reader: unterminated literal string")
}

var escapes = map[byte]byte{'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f'}

// escape decodes the sequence after a backslash and appends it to out.
func (p *parser) escape(out []byte) []byte {
	c := p.src[p.off]
	p.off++
	if r, ok := escapes[c]; ok {
		return append(out, r)
	}
	switch {
	case c == '\r':
		if p.off < len(p.src) && p.src[p.off] == '\n' {
			p.off++
		}
		return out
	case c == '\n':
		return out
	case c >= '0' && c <= '7':
		v := int(c - '0')
		for n := 1; n < 3 && p.off < len(p.src) && p.src[p.off] >= '0' && p.src[p.off] <= '7'; n++ {
			v = v<<3 | int(p.src[p.off]-'0')
			p.off++
		}
		return append(out, byte(v))
	default:
		return append(out, c)
	}
}

// hexString reads <...>. An odd final digit is padded with zero.
func (p *parser) hexString() ([]byte, error) {
	p.off++
	var digits []byte
	for p.off < len(p.src) {
		b := p.src[p.off]
		p.off++
		switch {
		case b == '>':
			if len(digits)%2 == 1 {
				digits = append(digits, 0)
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = digits[2*i]<<4 | digits[2*i+1]
			}
			return out, nil
		case isSpace(b):
		case unhex(b) >= 0:
			digits = append(digits, byte(unhex(b)))
		default:
			return nil, fmt.Errorf("reader: invalid hex digit %q", b)
		}
	}
	return nil, fmt.Errorf("reader: unterminated hex string")
}

// ParseObject parses the next direct object or indirect reference.
func (p *parser) ParseObject() (Object, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	return p.object(tok)
}

func (p *parser) object(tok token) (Object, error) {
	switch tok.kind {
	case tokEOF:
		return nil, fmt.Errorf("reader: unexpected end of data")
	case tokName:
		return Name(tok.text), nil
	case tokString:
		return String(tok.text), nil
	case tokOpenArray:
		return p.array()
	case tokOpenDict:
		return p.dict()
	case tokWord:
		return p.wordObject(tok)
	default:
		return nil, fmt.Errorf("reader: unexpected delimiter at offset %d", tok.off)
	}
}

func (p *parser) wordObject(tok token) (Object, error) {
	w := string(tok.text)
	switch w {
	case "true":
		return Boolean(true), nil
	case "false":
		return Boolean(false), nil
	case "null":
		return Null{}, nil
	}
	if n, err := strconv.ParseInt(w, 10, 64); err == nil {
		if ref, ok := p.reference(n); ok {
			return ref, nil
		}
		return Integer(n), nil
	}
	if f, err := strconv.ParseFloat(w, 64); err == nil {
		return Real(f), nil
	}
	return nil, fmt.Errorf("reader: unexpected keyword %q at offset %d", w, tok.off)
}

// reference completes "num gen R" after num has been read. On any other
// input the position is left unchanged.
func (p *parser) reference(num int64) (Reference, bool) {
	mark := p.off
	gen, err := strconv.ParseInt(p.word(), 10, 64)
	if err == nil && num >= 0 && gen >= 0 && p.word() == "R" {
		return Reference{Number: int(num), Generation: int(gen)}, true
	}
	p.off = mark
	return Reference{}, false
}

func (p *parser) array() (Array, error) {
	arr := Array{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokCloseArray:
			return arr, nil
		case tokEOF:
			return nil, fmt.Errorf("reader: unterminated array")
		}
		obj, err := p.object(tok)
		if err != nil {
			return nil, fmt.Errorf("reader: in array: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *parser) dict() (Dict, error) {
	d := Dict{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokCloseDict:
			return d, nil
		case tokEOF:
			return nil, fmt.Errorf("reader: unterminated dictionary")
		case tokName:
		default:
			return nil, fmt.Errorf("reader: dictionary key at offset %d is not a name", tok.off)
		}
		key := Name(tok.text)
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("reader: value of /%s: %w", key, err)
		}
		d[key] = val
	}
}

// ParseIndirectObject parses "num gen obj ... endobj" and returns the
// object's reference and value. Stream data is attached to its dictionary.
func (p *parser) ParseIndirectObject() (Reference, Object, error) {
	var ref Reference
	header := [3]string{p.word(), p.word(), p.word()}
	num, err1 := strconv.Atoi(header[0])
	gen, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || header[2] != "obj" {
		return ref, nil, fmt.Errorf("reader: expected object header, got %q", header[0]+" "+header[1]+" "+header[2])
	}
	ref = Reference{Number: num, Generation: gen}

	val, err := p.ParseObject()
	if err != nil {
		return ref, nil, fmt.Errorf("reader: object %s: %w", ref, err)
	}
	if p.at("stream") {
		dict, ok := val.(Dict)
		if !ok {
			return ref, nil, fmt.Errorf("reader: object %s: stream without dictionary", ref)
		}
		data, err := p.streamData(dict)
		if err != nil {
			return ref, nil, fmt.Errorf("reader: object %s: %w", ref, err)
		}
		val = Stream{Dict: dict, Data: data}
	}
	if p.at("endobj") {
		p.off += len("endobj")
	}
	return ref, val, nil
}

// streamData reads the bytes between "stream" and "endstream". A direct
// /Length is used when "endstream" follows it; otherwise the data runs up
// to the next "endstream" keyword, minus the end-of-line marker.
func (p *parser) streamData(dict Dict) ([]byte, error) {
	p.off += len("stream")
	if p.off < len(p.src) && p.src[p.off] == '\r' {
		p.off++
	}
	if p.off < len(p.src) && p.src[p.off] == '\n' {
		p.off++
	}
	start := p.off

	if n, ok := dict.Int("Length"); ok && n >= 0 && int64(start)+n <= int64(len(p.src)) {
		end := start + int(n)
		p.off = end
		if p.at("endstream") {
			p.off += len("endstream")
			return bytes.Clone(p.src[start:end]), nil
		}
	}

	idx := bytes.Index(p.src[start:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: stream without endstream", ErrCorrupted)
	}
	p.off = start + idx + len("endstream")
	data := p.src[start : start+idx]
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	return bytes.Clone(data), nil
}

// unhex returns the value of a hex digit, or -1.
func unhex(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(b-'a') + 10
	case 'A' <= b && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
