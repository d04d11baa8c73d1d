package solidity

import "github.com/forgelint/forgelint/pkg/token"

// harvestLocals scans collected body tokens for variable declarations.
// Detection is positional: at each statement start, a declaration is a
// type path (with optional array suffixes), an optional data location and
// a name, terminated by '=' or ';'. Tuple declarations bind the typed
// components of a parenthesized list followed by '='. Assembly blocks are
// skipped whole; Yul ':=' never reads as an assignment.
func harvestLocals(toks []token.Token) []LocalVar {
	var locals []LocalVar
	stmtStart := true

	for i := 0; i < len(toks); i++ {
		switch toks[i].Type {
		case token.ASSEMBLY:
			i = skipAssembly(toks, i)
			stmtStart = true
			continue
		case token.LBRACE, token.RBRACE, token.SEMICOLON:
			stmtStart = true
			continue
		case token.FOR:
			if i+1 < len(toks) && toks[i+1].Type == token.LPAREN {
				i++ // the init clause may open with a declaration
				stmtStart = true
				continue
			}
		}

		if stmtStart {
			if lvs, next, ok := matchDecl(toks, i); ok {
				locals = append(locals, lvs...)
				i = next - 1
				stmtStart = false
				continue
			}
		}
		stmtStart = false
	}
	return locals
}

// matchDecl attempts to read a declaration starting at i. On success it
// returns the declared locals and the index of the terminator token.
func matchDecl(toks []token.Token, i int) ([]LocalVar, int, bool) {
	if i >= len(toks) {
		return nil, 0, false
	}

	if toks[i].Type == token.LPAREN {
		return matchTupleDecl(toks, i)
	}

	end, ok := matchTypePath(toks, i)
	if !ok {
		return nil, 0, false
	}

	loc := ""
	j := end
	if j < len(toks) && token.IsLocation(toks[j].Type) {
		loc = toks[j].Literal
		j++
	}

	if j >= len(toks) || toks[j].Type != token.IDENT {
		return nil, 0, false
	}
	name := toks[j]
	j++

	if j >= len(toks) || (toks[j].Type != token.ASSIGN && toks[j].Type != token.SEMICOLON) {
		return nil, 0, false
	}

	lv := LocalVar{
		Name:     name.Literal,
		TypeText: renderTokens(toks[i:end]),
		Location: loc,
		Pos:      name.Pos,
	}
	return []LocalVar{lv}, j, true
}

// matchTupleDecl handles (T a, , U b) = ... destructuring. Components with
// both a type and a name declare new locals; bare identifiers reference
// existing ones.
func matchTupleDecl(toks []token.Token, i int) ([]LocalVar, int, bool) {
	closeIdx := matchingParen(toks, i)
	if closeIdx < 0 || closeIdx+1 >= len(toks) || toks[closeIdx+1].Type != token.ASSIGN {
		return nil, 0, false
	}

	var locals []LocalVar
	start := i + 1
	depth := 0
	for j := i + 1; j <= closeIdx; j++ {
		switch toks[j].Type {
		case token.LPAREN, token.LBRACKET:
			depth++
		case token.RBRACKET:
			depth--
		case token.RPAREN:
			if j == closeIdx {
				if lv, ok := declFragment(toks[start:j]); ok {
					locals = append(locals, lv)
				}
			} else {
				depth--
			}
		case token.COMMA:
			if depth == 0 {
				if lv, ok := declFragment(toks[start:j]); ok {
					locals = append(locals, lv)
				}
				start = j + 1
			}
		}
	}

	return locals, closeIdx + 1, true
}

// declFragment reads one tuple component: type path, optional location,
// name, consuming the whole fragment.
func declFragment(toks []token.Token) (LocalVar, bool) {
	if len(toks) < 2 {
		return LocalVar{}, false
	}

	end, ok := matchTypePath(toks, 0)
	if !ok {
		return LocalVar{}, false
	}

	loc := ""
	j := end
	if j < len(toks) && token.IsLocation(toks[j].Type) {
		loc = toks[j].Literal
		j++
	}

	if j != len(toks)-1 || toks[j].Type != token.IDENT {
		return LocalVar{}, false
	}

	return LocalVar{
		Name:     toks[j].Literal,
		TypeText: renderTokens(toks[:end]),
		Location: loc,
		Pos:      toks[j].Pos,
	}, true
}

// matchTypePath reads a type: an identifier path (Foo, Foo.Bar, address
// payable) or mapping(...), followed by any array suffixes. It returns the
// index after the type.
func matchTypePath(toks []token.Token, i int) (int, bool) {
	j := i
	switch toks[j].Type {
	case token.MAPPING:
		if j+1 >= len(toks) || toks[j+1].Type != token.LPAREN {
			return 0, false
		}
		closeIdx := matchingParen(toks, j+1)
		if closeIdx < 0 {
			return 0, false
		}
		j = closeIdx + 1
	case token.IDENT:
		base := toks[j].Literal
		j++
		for j+1 < len(toks) && toks[j].Type == token.DOT && toks[j+1].Type == token.IDENT {
			j += 2
		}
		if base == "address" && j < len(toks) && toks[j].Type == token.PAYABLE {
			j++
		}
	default:
		return 0, false
	}

	// array suffixes: [ ... ] possibly repeated
	for j < len(toks) && toks[j].Type == token.LBRACKET {
		depth := 0
		k := j
		for ; k < len(toks); k++ {
			if toks[k].Type == token.LBRACKET {
				depth++
			}
			if toks[k].Type == token.RBRACKET {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		if k >= len(toks) {
			return 0, false
		}
		j = k + 1
	}

	return j, true
}

// matchingParen returns the index of the parenthesis closing the one at i,
// or -1.
func matchingParen(toks []token.Token, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// skipAssembly skips an assembly block starting at the keyword, returning
// the index of its closing brace. Dialect strings and flag lists between
// the keyword and the block are consumed too.
func skipAssembly(toks []token.Token, i int) int {
	j := i + 1
	if j < len(toks) && toks[j].Type == token.STRING {
		j++
	}
	if j < len(toks) && toks[j].Type == token.LPAREN {
		closeIdx := matchingParen(toks, j)
		if closeIdx < 0 {
			return i
		}
		j = closeIdx + 1
	}
	if j >= len(toks) || toks[j].Type != token.LBRACE {
		return i
	}
	depth := 0
	for ; j < len(toks); j++ {
		if toks[j].Type == token.LBRACE {
			depth++
		}
		if toks[j].Type == token.RBRACE {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(toks) - 1
}
