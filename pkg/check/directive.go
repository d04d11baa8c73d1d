package check

import (
	"fmt"
	"strings"

	"github.com/forgelint/forgelint/pkg/solidity"
	"github.com/forgelint/forgelint/pkg/token"
)

// Marker prefixes a comment that carries a suppression directive.
const Marker = "forgelint:"

// DirectiveKind enumerates the suppression directive forms.
type DirectiveKind int

// Directive kinds.
const (
	// IgnoreNextItem suppresses findings across the full span of the next
	// syntax item after the directive.
	IgnoreNextItem DirectiveKind = iota
	// IgnoreNextLine suppresses findings on the single line following the
	// directive's line.
	IgnoreNextLine
	// IgnoreLine suppresses findings on the directive's own line.
	IgnoreLine
	// IgnoreStart opens a suppression block closed by IgnoreEnd.
	IgnoreStart
	// IgnoreEnd closes the block opened by IgnoreStart.
	IgnoreEnd
	// IgnoreSrcFile suppresses findings in the entire file.
	IgnoreSrcFile
)

// Directive is a parsed suppression instruction extracted from one comment.
type Directive struct {
	Kind DirectiveKind
	Rule string // scoped rule identifier; empty means all rules
	Line int    // 1-based line of the comment that produced it
}

// Region is a resolved suppression scope within one file. A finding on
// line L with rule R is covered when StartLine <= L <= EndLine and the
// region's Rule is empty or equals R.
type Region struct {
	Rule      string // empty means all rules
	StartLine int
	EndLine   int
}

// Covers reports whether the region suppresses a finding for the given
// rule at the given line.
func (r Region) Covers(rule string, line int) bool {
	if r.Rule != "" && r.Rule != rule {
		return false
	}
	return line >= r.StartLine && line <= r.EndLine
}

var directiveKeywords = map[string]DirectiveKind{
	"ignore-next-item": IgnoreNextItem,
	"ignore-next-line": IgnoreNextLine,
	"ignore-line":      IgnoreLine,
	"ignore-start":     IgnoreStart,
	"ignore-end":       IgnoreEnd,
	"ignore-src-file":  IgnoreSrcFile,
}

// ParseDirective extracts a suppression directive from a comment. It
// returns (nil, nil) for ordinary comments without the marker. A comment
// that carries the marker but not a well-formed directive is an error.
func ParseDirective(c *token.Comment) (*Directive, error) {
	text := commentContent(c)
	if !strings.HasPrefix(text, Marker) {
		return nil, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, Marker))

	fields := strings.Fields(rest)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("invalid inline directive: %s", rest)
	}
	kind, ok := directiveKeywords[fields[0]]
	if !ok {
		return nil, fmt.Errorf("invalid inline directive: %s", rest)
	}

	d := &Directive{Kind: kind, Line: c.Span.Start.Line}
	if len(fields) == 2 {
		rule := fields[1]
		if !IsRule(rule) {
			return nil, fmt.Errorf("unknown rule '%s' in inline directive", rule)
		}
		d.Rule = rule
	}
	return d, nil
}

// commentContent strips the comment delimiters and surrounding whitespace.
func commentContent(c *token.Comment) string {
	text := c.Text
	if c.IsLineComment() {
		text = strings.TrimPrefix(text, "//")
	} else {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}
	return strings.TrimSpace(text)
}

// ResolveRegions scans a file's comments in source order and produces the
// suppression regions its directives describe.
//
// ignore-start and ignore-end pair up through a two state scan. Blocks do
// not nest: a second ignore-start inside an open block is an error, as is
// an ignore-end without an open block or a block left open at end of file.
// The returned error is always a *DirectiveError.
func ResolveRegions(file *solidity.File) ([]Region, error) {
	fail := func(line int, format string, args ...any) error {
		return &DirectiveError{Path: file.Path, Line: line, Message: fmt.Sprintf(format, args...)}
	}

	var (
		regions    []Region
		inBlock    bool
		blockRule  string
		blockStart int
	)

	for _, c := range file.Comments {
		d, err := ParseDirective(c)
		if err != nil {
			return nil, fail(c.Span.Start.Line, "%s", err.Error())
		}
		if d == nil {
			continue
		}

		switch d.Kind {
		case IgnoreStart:
			if inBlock {
				return nil, fail(d.Line, "nested ignore-start, blocks do not nest")
			}
			inBlock = true
			blockRule = d.Rule
			blockStart = d.Line

		case IgnoreEnd:
			if !inBlock {
				return nil, fail(d.Line, "ignore-end without a matching ignore-start")
			}
			regions = append(regions, Region{Rule: blockRule, StartLine: blockStart, EndLine: d.Line})
			inBlock = false

		case IgnoreNextItem:
			// No following item means the directive has no effect.
			if item := nextItemAfter(file, d.Line); item != nil {
				sp := item.GetSpan()
				regions = append(regions, Region{Rule: d.Rule, StartLine: sp.Start.Line, EndLine: sp.End.Line})
			}

		case IgnoreNextLine:
			regions = append(regions, Region{Rule: d.Rule, StartLine: d.Line + 1, EndLine: d.Line + 1})

		case IgnoreLine:
			regions = append(regions, Region{Rule: d.Rule, StartLine: d.Line, EndLine: d.Line})

		case IgnoreSrcFile:
			regions = append(regions, Region{Rule: d.Rule, StartLine: 1, EndLine: lineCount(file)})
		}
	}

	if inBlock {
		return nil, fail(blockStart, "ignore-start without a matching ignore-end")
	}
	return regions, nil
}

// nextItemAfter returns the first item whose span begins strictly after
// the given line, or nil when no item follows.
func nextItemAfter(file *solidity.File, line int) solidity.Item {
	for _, it := range file.AllItems() {
		if it.GetSpan().Start.Line > line {
			return it
		}
	}
	return nil
}

func lineCount(file *solidity.File) int {
	n := strings.Count(file.Src, "\n")
	if len(file.Src) > 0 && !strings.HasSuffix(file.Src, "\n") {
		n++
	}
	return n
}
