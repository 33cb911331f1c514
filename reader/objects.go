// Package reader parses the structure of existing PDF files: the header,
// cross-reference data (classic tables, cross-reference streams and object
// streams) and the page tree.
//
// It reads just enough of a document to answer the questions a merge needs
// answered before any page is copied: is this a PDF at all, how many pages
// does it have, and how big is each page. Content streams are never
// interpreted.
package reader

import "fmt"

// Object is a parsed PDF object: Null, Boolean, Integer, Real, Name,
// String, Array, Dict, Stream or Reference.
type Object interface {
	isObject()
}

type (
	// Null is the PDF null object.
	Null struct{}
	// Boolean is a PDF boolean.
	Boolean bool
	// Integer is a PDF integer.
	Integer int64
	// Real is a PDF real number.
	Real float64
	// Name is a PDF name such as /Type, stored without the slash and with
	// #xx escapes decoded.
	Name string
	// String holds the decoded bytes of a literal or hexadecimal string.
	String []byte
	// Array is a PDF array.
	Array []Object
	// Dict is a PDF dictionary.
	Dict map[Name]Object
)

// Stream is a stream object: its dictionary and the still encoded data.
type Stream struct {
	Dict Dict
	Data []byte
}

// Reference is an indirect reference such as "10 0 R".
type Reference struct {
	Number     int
	Generation int
}

func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

func (Null) isObject()      {}
func (Boolean) isObject()   {}
func (Integer) isObject()   {}
func (Real) isObject()      {}
func (Name) isObject()      {}
func (String) isObject()    {}
func (Array) isObject()     {}
func (Dict) isObject()      {}
func (Stream) isObject()    {}
func (Reference) isObject() {}

// Name returns the entry for key if it is a direct name.
func (d Dict) Name(key Name) Name {
	n, _ := d[key].(Name)
	return n
}

// Int returns the entry for key if it is a direct number. Reals are
// truncated.
func (d Dict) Int(key Name) (int64, bool) {
	switch v := d[key].(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	default:
		return 0, false
	}
}

// Sub returns the entry for key if it is a direct dictionary.
func (d Dict) Sub(key Name) Dict {
	sub, _ := d[key].(Dict)
	return sub
}

// Array returns the entry for key if it is a direct array.
func (d Dict) Array(key Name) Array {
	arr, _ := d[key].(Array)
	return arr
}
