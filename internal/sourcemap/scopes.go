package sourcemap

import (
	"fmt"

	"github.com/yousuf/mapindex/internal/vlq"
)

// decodeScopes decodes an x_ms_scopes stream into the section's scopes in
// creation order.
//
// Each '>' opens a scope and each '<' closes the innermost open one. The
// field before a token is empty or a (line, column) delta pair applied to the
// running position.
func decodeScopes(section *Section, text string) ([]*Scope, error) {
	var (
		scopes  []*Scope
		open    []int
		segment []int
		err     error
		pos     Position
	)

	malformed := func(offset int, err error, format string, args ...any) error {
		return &MalformedScopeError{streamError{
			Section: section.Index, Offset: offset, Reason: fmt.Sprintf(format, args...), Err: err,
		}}
	}

	start := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '>' && ch != '<' {
			continue
		}

		if i > start {
			segment, err = vlq.AppendRange(segment[:0], text, start, i)
			if err != nil {
				return nil, malformed(start, err, "invalid position")
			}
			if len(segment) != 2 {
				return nil, malformed(start, nil, "position has %d fields", len(segment))
			}
			pos.Line += segment[0]
			pos.Column += segment[1]
		}
		start = i + 1

		abs := section.ToAbsolute(pos.Line, pos.Column)
		if ch == '>' {
			scope := &Scope{
				Index:        section.Base.Scopes + len(scopes),
				Section:      section.Index,
				SectionIndex: len(scopes),
				Parent:       -1,
				Start:        abs,
				SectionStart: pos,
			}
			if len(open) > 0 {
				parent := scopes[open[len(open)-1]]
				if scope.Start.Compare(parent.Start) < 0 {
					return nil, malformed(i, nil, "scope %d starts at %v before its parent start %v", scope.SectionIndex, scope.Start, parent.Start)
				}
				scope.Parent = parent.Index
				parent.Nested = append(parent.Nested, scope.Index)
			}
			open = append(open, len(scopes))
			scopes = append(scopes, scope)
			continue
		}

		if len(open) == 0 {
			return nil, malformed(i, nil, "scope closed without being opened")
		}
		scope := scopes[open[len(open)-1]]
		open = open[:len(open)-1]
		scope.End = abs
		scope.SectionEnd = pos
		if scope.End.Compare(scope.Start) < 0 {
			return nil, malformed(i, nil, "scope %d ends at %v before its start %v", scope.SectionIndex, scope.End, scope.Start)
		}
		for _, nested := range scope.Nested {
			child := scopes[nested-section.Base.Scopes]
			if child.End.Compare(scope.End) > 0 {
				return nil, malformed(i, nil, "scope %d ends at %v after its parent end %v", child.SectionIndex, child.End, scope.End)
			}
		}
	}

	if start < len(text) {
		return nil, malformed(start, nil, "trailing position without a scope token")
	}
	if len(open) > 0 {
		return nil, malformed(len(text), nil, "%d scopes left open", len(open))
	}
	return scopes, nil
}
