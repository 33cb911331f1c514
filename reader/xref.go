package reader

import (
	"bytes"
	"fmt"
	"strconv"
)

// xrefEntry locates one object. Compressed objects live inside an object
// stream: Stream is that stream's object number and Index the position of
// the object within it.
type xrefEntry struct {
	Offset     int64
	Generation int
	InUse      bool
	Compressed bool
	Stream     int
	Index      int
}

// xrefTable maps object numbers to their locations.
type xrefTable map[int]xrefEntry

// mergeOlder adds entries from an older section. Newer definitions win.
func (t xrefTable) mergeOlder(older xrefTable) {
	for num, e := range older {
		if _, ok := t[num]; !ok {
			t[num] = e
		}
	}
}

// maxXRefSections bounds /Prev chains so that a cyclic chain cannot loop.
const maxXRefSections = 256

// findStartXRef reads the offset after the last "startxref" keyword.
func findStartXRef(data []byte) (int64, error) {
	tail := data[len(data)-min(len(data), 2048):]
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("%w: startxref not found", ErrCorrupted)
	}

	tok := newParser(tail[idx+len("startxref"):]).word()
	offset, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid startxref offset %q", ErrCorrupted, tok)
	}
	return offset, nil
}

// readXRef follows the chain of cross-reference sections starting at offset
// and returns the combined table and the newest trailer.
func readXRef(data []byte, offset int64) (xrefTable, Dict, error) {
	table := make(xrefTable)
	var trailer Dict
	seen := make(map[int64]bool)

	for section := 0; ; section++ {
		if section == maxXRefSections || seen[offset] {
			return nil, nil, fmt.Errorf("%w: cross-reference chain loops", ErrCorrupted)
		}
		seen[offset] = true

		part, dict, err := readXRefSection(data, offset)
		if err != nil {
			return nil, nil, err
		}
		table.mergeOlder(part)
		if trailer == nil {
			trailer = dict
		}

		// Hybrid files keep compressed entries in a separate stream.
		if stm, ok := dict.Int("XRefStm"); ok && !seen[stm] {
			seen[stm] = true
			extra, _, err := readXRefSection(data, stm)
			if err != nil {
				return nil, nil, fmt.Errorf("reader: /XRefStm: %w", err)
			}
			table.mergeOlder(extra)
		}

		prev, ok := dict.Int("Prev")
		if !ok {
			return table, trailer, nil
		}
		offset = prev
	}
}

// readXRefSection reads a single classic table or cross-reference stream.
func readXRefSection(data []byte, offset int64) (xrefTable, Dict, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, nil, fmt.Errorf("%w: xref offset %d out of bounds", ErrCorrupted, offset)
	}
	p := newParser(data[offset:])
	if p.at("xref") {
		p.off += len("xref")
		return parseXRefTable(p)
	}
	return parseXRefStream(p)
}

// parseXRefTable parses the subsections of a classic table and its trailer.
func parseXRefTable(p *parser) (xrefTable, Dict, error) {
	table := make(xrefTable)
	for {
		tok := p.word()
		if tok == "trailer" {
			break
		}
		if tok == "" {
			return nil, nil, fmt.Errorf("%w: xref table without trailer", ErrCorrupted)
		}

		first, err := strconv.Atoi(tok)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: xref subsection start %q", ErrCorrupted, tok)
		}
		countTok := p.word()
		count, err := strconv.Atoi(countTok)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: xref subsection count %q", ErrCorrupted, countTok)
		}

		for i := 0; i < count; i++ {
			offTok, genTok, kind := p.word(), p.word(), p.word()
			off, err := strconv.ParseInt(offTok, 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: xref entry offset %q", ErrCorrupted, offTok)
			}
			gen, err := strconv.Atoi(genTok)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: xref entry generation %q", ErrCorrupted, genTok)
			}
			if _, ok := table[first+i]; !ok {
				table[first+i] = xrefEntry{Offset: off, Generation: gen, InUse: kind == "n"}
			}
		}
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, nil, fmt.Errorf("reader: trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, nil, fmt.Errorf("%w: trailer is not a dictionary", ErrCorrupted)
	}
	return table, trailer, nil
}

// parseXRefStream parses a cross-reference stream (PDF 1.5+). The stream
// dictionary doubles as the trailer.
func parseXRefStream(p *parser) (xrefTable, Dict, error) {
	_, obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, nil, fmt.Errorf("reader: xref stream: %w", err)
	}
	stream, ok := obj.(Stream)
	if !ok || stream.Dict.Name("Type") != "XRef" {
		return nil, nil, fmt.Errorf("%w: startxref does not point at a cross-reference section", ErrCorrupted)
	}

	decoded, err := decodeStream(stream)
	if err != nil {
		return nil, nil, fmt.Errorf("reader: decoding xref stream: %w", err)
	}

	wArr := stream.Dict.Array("W")
	if len(wArr) != 3 {
		return nil, nil, fmt.Errorf("%w: xref stream /W must have 3 elements", ErrCorrupted)
	}
	var widths [3]int
	for i, w := range wArr {
		n, ok := w.(Integer)
		if !ok || n < 0 || n > 8 {
			return nil, nil, fmt.Errorf("%w: invalid xref stream /W", ErrCorrupted)
		}
		widths[i] = int(n)
	}
	entrySize := widths[0] + widths[1] + widths[2]
	if entrySize == 0 {
		return nil, nil, fmt.Errorf("%w: empty xref stream /W", ErrCorrupted)
	}

	var index []int
	if idxArr := stream.Dict.Array("Index"); idxArr != nil {
		for _, v := range idxArr {
			if n, ok := v.(Integer); ok {
				index = append(index, int(n))
			}
		}
	} else {
		size, _ := stream.Dict.Int("Size")
		index = []int{0, int(size)}
	}

	table := make(xrefTable)
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count && pos+entrySize <= len(decoded); j++ {
			var fields [3]int64
			for f := 0; f < 3; f++ {
				for k := 0; k < widths[f]; k++ {
					fields[f] = fields[f]<<8 | int64(decoded[pos])
					pos++
				}
			}
			kind := fields[0]
			if widths[0] == 0 {
				kind = 1
			}

			num := first + j
			if _, ok := table[num]; ok {
				continue
			}
			switch kind {
			case 0:
				table[num] = xrefEntry{Generation: int(fields[2])}
			case 1:
				table[num] = xrefEntry{Offset: fields[1], Generation: int(fields[2]), InUse: true}
			case 2:
				table[num] = xrefEntry{InUse: true, Compressed: true, Stream: int(fields[1]), Index: int(fields[2])}
			}
		}
	}

	return table, stream.Dict, nil
}
