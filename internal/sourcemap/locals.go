package sourcemap

import (
	"fmt"

	"github.com/yousuf/mapindex/internal/vlq"
)

// decodeLocals decodes an x_ms_locals stream and attaches each local to its
// scope. ';' moves to the next scope in creation order, ',' separates locals
// of the same scope.
//
// A segment is a generated name delta optionally followed by a source name
// delta. Both are running deltas over the section's names table. A local
// without a source name is hidden.
func decodeLocals(section *Section, text string, names []*Name, scopes []*Scope) ([]*Local, error) {
	var (
		locals  []*Local
		segment []int
		err     error
		scope   int
		name    int
	)

	start := 0
	for pos := 0; pos <= len(text); pos++ {
		if pos < len(text) && text[pos] != ',' && text[pos] != ';' {
			continue
		}

		if pos > start {
			segment, err = vlq.AppendRange(segment[:0], text, start, pos)
			if err != nil {
				return nil, &MalformedLocalsError{streamError{
					Section: section.Index, Offset: start, Reason: "invalid segment", Err: err,
				}}
			}
			if n := len(segment); n != 1 && n != 2 {
				return nil, &MalformedLocalsError{streamError{
					Section: section.Index, Offset: start, Reason: fmt.Sprintf("segment has %d fields", n),
				}}
			}
			if scope >= len(scopes) {
				return nil, &MalformedLocalsError{streamError{
					Section: section.Index, Offset: start,
					Reason: fmt.Sprintf("local for scope %d but the section has %d scopes", scope, len(scopes)),
				}}
			}

			name += segment[0]
			local := &Local{
				Index:         section.Base.Locals + len(locals),
				Section:       section.Index,
				SectionIndex:  len(locals),
				Scope:         scopes[scope].Index,
				GeneratedName: at(names, name),
				IsHidden:      len(segment) == 1,
			}
			if !local.IsHidden {
				name += segment[1]
				local.SourceName = at(names, name)
				local.IsRenamed = local.SourceName != nil &&
					(local.GeneratedName == nil || local.GeneratedName.Text != local.SourceName.Text)
			}

			scopes[scope].Locals = append(scopes[scope].Locals, local.Index)
			locals = append(locals, local)
		}

		start = pos + 1
		if pos < len(text) && text[pos] == ';' {
			scope++
		}
	}
	return locals, nil
}
