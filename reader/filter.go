package reader

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"
)

// decodeStream applies the stream's filter chain. Only the filters that
// structural streams (object streams, cross-reference streams) use in
// practice are supported; image codecs are never needed to count pages.
func decodeStream(s Stream) ([]byte, error) {
	var filters []Name
	switch f := s.Dict["Filter"].(type) {
	case nil, Null:
		return s.Data, nil
	case Name:
		filters = []Name{f}
	case Array:
		for _, item := range f {
			n, ok := item.(Name)
			if !ok {
				return nil, fmt.Errorf("reader: filter array contains %T", item)
			}
			filters = append(filters, n)
		}
	default:
		return nil, fmt.Errorf("reader: unexpected filter type %T", f)
	}

	data := s.Data
	for i, f := range filters {
		var err error
		if data, err = applyFilter(f, data); err != nil {
			return nil, fmt.Errorf("reader: filter %s: %w", f, err)
		}
		if parms := decodeParms(s.Dict, i); parms != nil {
			if data, err = unpredict(data, parms); err != nil {
				return nil, fmt.Errorf("reader: filter %s: %w", f, err)
			}
		}
	}
	return data, nil
}

// decodeParms returns the /DecodeParms dictionary for the i-th filter.
func decodeParms(d Dict, i int) Dict {
	switch p := d["DecodeParms"].(type) {
	case Dict:
		if i == 0 {
			return p
		}
	case Array:
		if i < len(p) {
			sub, _ := p[i].(Dict)
			return sub
		}
	}
	return nil
}

func applyFilter(name Name, data []byte) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return flateDecode(data)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data)
	case "ASCII85Decode", "A85":
		return ascii85Decode(data)
	default:
		return nil, fmt.Errorf("unsupported filter")
	}
}

func flateDecode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib init: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil && buf.Len() == 0 {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return buf.Bytes(), nil
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var clean []byte
	for _, b := range data {
		if b == '>' {
			break
		}
		if !isSpace(b) {
			clean = append(clean, b)
		}
	}
	if len(clean)%2 != 0 {
		clean = append(clean, '0')
	}

	dst := make([]byte, hex.DecodedLen(len(clean)))
	if _, err := hex.Decode(dst, clean); err != nil {
		return nil, fmt.Errorf("ascii hex decode: %w", err)
	}
	return dst, nil
}

func ascii85Decode(data []byte) ([]byte, error) {
	if end := bytes.Index(data, []byte("~>")); end >= 0 {
		data = data[:end]
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, ascii85.NewDecoder(bytes.NewReader(data))); err != nil {
		return nil, fmt.Errorf("ascii85 decode: %w", err)
	}
	return buf.Bytes(), nil
}

// unpredict reverses the PNG row predictors (/Predictor 10-15) that
// cross-reference streams are usually encoded with.
func unpredict(data []byte, parms Dict) ([]byte, error) {
	predictor, _ := parms.Int("Predictor")
	switch {
	case predictor <= 1:
		return data, nil
	case predictor < 10:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}

	colors := intOr(parms, "Colors", 1)
	bpc := intOr(parms, "BitsPerComponent", 8)
	columns := intOr(parms, "Columns", 1)
	bpp := max(1, (colors*bpc+7)/8)
	rowLen := (colors*bpc*columns + 7) / 8
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid predictor row length")
	}

	out := make([]byte, 0, len(data))
	prev := make([]byte, rowLen)
	row := make([]byte, rowLen)
	for pos := 0; pos+1+rowLen <= len(data); pos += rowLen + 1 {
		tag := data[pos]
		copy(row, data[pos+1:pos+1+rowLen])
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = row[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch tag {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("invalid PNG row filter %d", tag)
			}
		}
		out = append(out, row...)
		prev, row = row, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func intOr(d Dict, key Name, def int) int {
	if n, ok := d.Int(key); ok && n > 0 {
		return int(n)
	}
	return def
}
