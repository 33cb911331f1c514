package pdfburger

// EventKind identifies a step of Merge.
type EventKind int

const (
	// EventCreateDir is sent before the destination directory is created.
	EventCreateDir EventKind = iota + 1
	// EventAppend is sent after a file's pages have been appended.
	EventAppend
	// EventFinalize is sent before the output file is written.
	EventFinalize
)

func (k EventKind) String() string {
	switch k {
	case EventCreateDir:
		return "create-dir"
	case EventAppend:
		return "append"
	case EventFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Event describes merge progress. For EventAppend, Index is 1-based and
// Pages is the number of pages the file contributed. For EventCreateDir Path
// is the directory, for EventFinalize the output file.
type Event struct {
	Kind  EventKind
	Path  string
	Index int
	Total int
	Pages int
}

func (b *Burger) emit(e Event) {
	if b.progress != nil {
		b.progress(e)
	}
}
