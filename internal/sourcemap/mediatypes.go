package sourcemap

import "github.com/yousuf/mapindex/internal/vlq"

// decodeMediaTypes returns the media type of every source of doc, indexed by
// section-relative source index. x_ms_sourceMediaTypes holds one cursor
// delta per source; sources past its end keep the cursor where it is. A
// cursor past the table selects the last entry, a negative one selects none.
func decodeMediaTypes(section *Section, doc *Document) ([]string, error) {
	if len(doc.MediaTypes) == 0 {
		return nil, nil
	}

	deltas, err := vlq.Decode(doc.SourceMediaTypes)
	if err != nil {
		return nil, &MalformedMediaTypesError{streamError{
			Section: section.Index, Reason: "invalid offsets", Err: err,
		}}
	}

	out := make([]string, len(doc.Sources))
	cursor := 0
	for i := range out {
		if i < len(deltas) {
			cursor += deltas[i]
		}
		switch {
		case cursor < 0:
		case cursor < len(doc.MediaTypes):
			out[i] = doc.MediaTypes[cursor]
		default:
			out[i] = doc.MediaTypes[len(doc.MediaTypes)-1]
		}
	}
	return out, nil
}
