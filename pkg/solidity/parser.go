package solidity

import (
	"strings"

	"github.com/forgelint/forgelint/pkg/token"
)

// Parser extracts declarations from a Solidity token stream. It is an
// item-level parser: declaration heads are fully interpreted, bodies and
// initializer expressions are scanned only as far as the checks need
// (local variables, nesting balance). Unknown constructs are skipped, so
// new language keywords do not break extraction.
type Parser struct {
	src   string
	lexer *Lexer
	cur   token.Token
	peek  token.Token
	depth int // running brace depth, for the balance check
	err   *ParseError
}

// Parse parses Solidity source into a File.
//
// Errors are structural only: unterminated strings or block comments and
// unbalanced braces. Anything else degrades to Other items rather than
// failing the file.
func Parse(path, src string) (*File, error) {
	l := NewLexer(src)
	p := &Parser{src: src, lexer: l}
	p.nextToken()
	p.nextToken()

	items := p.parseItems(token.EOF)

	if l.Err != nil {
		return nil, l.Err
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.depth != 0 {
		return nil, &ParseError{Pos: p.cur.Pos, Message: ErrUnbalancedBraces}
	}

	return &File{Path: path, Src: src, Items: items, Comments: l.Comments}, nil
}

// nextToken advances the token window and maintains the brace balance.
func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()

	switch p.cur.Type {
	case token.LBRACE:
		p.depth++
	case token.RBRACE:
		p.depth--
		if p.depth < 0 && p.err == nil {
			p.err = &ParseError{Pos: p.cur.Pos, Message: ErrUnbalancedBraces}
		}
	}
}

// parseItems parses items until the given terminator (EOF or RBRACE).
func (p *Parser) parseItems(until token.TokenType) []Item {
	var items []Item
	for p.cur.Type != token.EOF && p.cur.Type != until {
		if it := p.parseItem(); it != nil {
			items = append(items, it)
		}
	}
	return items
}

// parseItem dispatches on the current token. Every path consumes at least
// one token.
func (p *Parser) parseItem() Item {
	switch p.cur.Type {
	case token.PRAGMA:
		return p.parsePragma()
	case token.IMPORT:
		return p.parseImport()
	case token.ABSTRACT:
		start := p.cur.Pos
		p.nextToken()
		if token.IsContractKind(p.cur.Type) {
			return p.parseContract(true, start)
		}
		return nil
	case token.CONTRACT, token.INTERFACE, token.LIBRARY:
		return p.parseContract(false, p.cur.Pos)
	case token.FUNCTION:
		return p.parseFunction(FuncRegular)
	case token.CONSTRUCTOR:
		return p.parseFunction(FuncConstructor)
	case token.RECEIVE:
		return p.parseFunction(FuncReceive)
	case token.FALLBACK:
		return p.parseFunction(FuncFallback)
	case token.MODIFIER:
		return p.parseFunction(FuncModifier)
	case token.EVENT:
		return p.parseEvent()
	case token.ERROR:
		return p.parseErrorDef()
	case token.STRUCT, token.ENUM, token.TYPE, token.USING:
		return p.parseOther()
	case token.SEMICOLON, token.RBRACE:
		p.nextToken()
		return nil
	default:
		return p.parseVariable()
	}
}

// parsePragma consumes a pragma directive through its semicolon.
func (p *Parser) parsePragma() Item {
	start := p.cur.Pos
	p.nextToken()
	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
		p.nextToken()
	}
	end := p.cur.Pos
	span := token.Span{Start: start, End: end}
	if p.cur.Type == token.SEMICOLON {
		span.End = endOf(p.cur)
		p.nextToken()
	}
	text := strings.TrimSpace(p.src[start.Offset:end.Offset])
	return &Pragma{NodeInfo: NodeInfo{Span: span}, Text: text}
}

// parseImport parses the four import statement shapes.
func (p *Parser) parseImport() Item {
	imp := &Import{}
	imp.Span.Start = p.cur.Pos
	p.nextToken() // consume 'import'

	switch p.cur.Type {
	case token.STRING:
		imp.Form = ImportPlain
		imp.Path = p.cur.Literal
		p.nextToken()
		if p.cur.Type == token.AS {
			p.nextToken()
			if p.cur.Type == token.IDENT {
				imp.Form = ImportAliased
				imp.Alias = p.cur.Literal
				p.nextToken()
			}
		}
	case token.LBRACE:
		imp.Form = ImportNamed
		p.nextToken()
		for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
			if p.cur.Type == token.IDENT {
				sym := ImportSymbol{Name: p.cur.Literal, Pos: p.cur.Pos}
				if p.peek.Type == token.AS {
					p.nextToken() // to 'as'
					p.nextToken() // to alias
					if p.cur.Type == token.IDENT {
						sym.Alias = p.cur.Literal
					}
				}
				imp.Symbols = append(imp.Symbols, sym)
			}
			p.nextToken()
		}
		if p.cur.Type == token.RBRACE {
			p.nextToken()
		}
		if p.cur.Type == token.FROM {
			p.nextToken()
		}
		if p.cur.Type == token.STRING {
			imp.Path = p.cur.Literal
			p.nextToken()
		}
	case token.STAR:
		imp.Form = ImportStar
		p.nextToken()
		if p.cur.Type == token.AS {
			p.nextToken()
		}
		if p.cur.Type == token.IDENT {
			imp.Alias = p.cur.Literal
			p.nextToken()
		}
		if p.cur.Type == token.FROM {
			p.nextToken()
		}
		if p.cur.Type == token.STRING {
			imp.Path = p.cur.Literal
			p.nextToken()
		}
	}

	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
		p.nextToken()
	}
	if p.cur.Type == token.SEMICOLON {
		imp.Span.End = endOf(p.cur)
		p.nextToken()
	} else {
		imp.Span.End = p.cur.Pos
	}
	return imp
}

// parseContract parses a contract, interface or library with its members.
func (p *Parser) parseContract(abstract bool, start token.Position) Item {
	c := &Contract{Abstract: abstract}
	c.Span.Start = start

	switch p.cur.Type {
	case token.INTERFACE:
		c.Kind = KindInterface
	case token.LIBRARY:
		c.Kind = KindLibrary
	default:
		c.Kind = KindContract
	}
	p.nextToken()

	if p.cur.Type == token.IDENT {
		c.Name = p.cur.Literal
		p.nextToken()
	}

	if p.cur.Type == token.IS {
		p.nextToken()
		parens := 0
		for p.cur.Type != token.EOF {
			if parens == 0 && p.cur.Type == token.LBRACE {
				break
			}
			switch p.cur.Type {
			case token.LPAREN:
				parens++
			case token.RPAREN:
				parens--
			case token.IDENT:
				if parens == 0 {
					c.Parents = append(c.Parents, p.parseDottedName())
					continue
				}
			}
			p.nextToken()
		}
	}

	if p.cur.Type != token.LBRACE {
		// no body: skip to semicolon so a forward declaration cannot
		// swallow the rest of the file
		for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
			p.nextToken()
		}
		c.Span.End = p.cur.Pos
		if p.cur.Type == token.SEMICOLON {
			c.Span.End = endOf(p.cur)
			p.nextToken()
		}
		return c
	}

	p.nextToken() // consume '{'
	c.Items = p.parseItems(token.RBRACE)
	c.Span.End = p.cur.Pos
	if p.cur.Type == token.RBRACE {
		c.Span.End = endOf(p.cur)
		p.nextToken()
	}
	return c
}

// parseDottedName reads an identifier path like Lib.Base, leaving the
// parser on the token after it.
func (p *Parser) parseDottedName() string {
	name := p.cur.Literal
	p.nextToken()
	for p.cur.Type == token.DOT && p.peek.Type == token.IDENT {
		p.nextToken()
		name += "." + p.cur.Literal
		p.nextToken()
	}
	return name
}

// parseFunction parses functions, constructors, receive/fallback and
// modifiers. The header is interpreted; the body is collected for local
// variable harvesting.
func (p *Parser) parseFunction(kind FuncKind) Item {
	fn := &Function{Kind: kind}
	fn.Span.Start = p.cur.Pos
	p.nextToken() // consume introducer keyword

	if kind == FuncRegular || kind == FuncModifier {
		if p.cur.Type == token.IDENT || token.IsKeyword(p.cur.Type) {
			fn.Name = p.cur.Literal
			p.nextToken()
		}
	}

	if p.cur.Type == token.LPAREN {
		fn.Params = p.parseParamList()
	}

	// Header tail: visibility, mutability, modifier invocations, returns.
	parens := 0
	for {
		switch {
		case p.cur.Type == token.EOF:
			fn.Span.End = p.cur.Pos
			return fn
		case p.cur.Type == token.LPAREN:
			parens++
			p.nextToken()
		case p.cur.Type == token.RPAREN:
			parens--
			p.nextToken()
		case parens == 0 && token.IsVisibility(p.cur.Type):
			fn.Visibility = visibilityOf(p.cur.Type)
			p.nextToken()
		case parens == 0 && p.cur.Type == token.RETURNS:
			p.nextToken()
			if p.cur.Type == token.LPAREN {
				fn.Returns = p.parseParamList()
			}
		case parens == 0 && p.cur.Type == token.SEMICOLON:
			fn.Span.End = endOf(p.cur)
			p.nextToken()
			return fn
		case parens == 0 && p.cur.Type == token.LBRACE:
			fn.HasBody = true
			body, end := p.collectBody()
			fn.Locals = harvestLocals(body)
			fn.Span.End = end
			return fn
		default:
			p.nextToken()
		}
	}
}

// parseParamList parses a parenthesized parameter list. The parser must be
// on the opening parenthesis and is left after the closing one.
func (p *Parser) parseParamList() []Param {
	var params []Param
	var component []token.Token
	depth := 0

	flush := func() {
		if param, ok := paramFromTokens(component); ok {
			params = append(params, param)
		}
		component = component[:0]
	}

	for {
		switch p.cur.Type {
		case token.EOF:
			flush()
			return params
		case token.LPAREN:
			if depth > 0 {
				component = append(component, p.cur)
			}
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				flush()
				p.nextToken()
				return params
			}
			component = append(component, p.cur)
		case token.COMMA:
			if depth == 1 {
				flush()
			} else {
				component = append(component, p.cur)
			}
		default:
			component = append(component, p.cur)
		}
		p.nextToken()
	}
}

// paramFromTokens interprets one parameter component. Location and indexed
// markers are lifted out; a trailing identifier is the name.
func paramFromTokens(toks []token.Token) (Param, bool) {
	if len(toks) == 0 {
		return Param{}, false
	}
	param := Param{Pos: toks[0].Pos}

	var typeToks []token.Token
	for _, t := range toks {
		switch {
		case token.IsLocation(t.Type):
			param.Location = t.Literal
		case t.Type == token.INDEXED:
			param.Indexed = true
		default:
			typeToks = append(typeToks, t)
		}
	}

	if len(typeToks) >= 2 {
		last := typeToks[len(typeToks)-1]
		prev := typeToks[len(typeToks)-2]
		if last.Type == token.IDENT && prev.Type != token.DOT {
			param.Name = last.Literal
			param.Pos = last.Pos
			typeToks = typeToks[:len(typeToks)-1]
		}
	}

	param.TypeText = renderTokens(typeToks)
	return param, true
}

// collectBody collects the brace-balanced body starting at the current
// opening brace. The closing brace is consumed but not included; its end
// position is returned for the item span.
func (p *Parser) collectBody() ([]token.Token, token.Position) {
	depth := 0
	var toks []token.Token
	for {
		switch p.cur.Type {
		case token.EOF:
			return toks, p.cur.Pos
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				end := endOf(p.cur)
				p.nextToken()
				return toks, end
			}
		}
		toks = append(toks, p.cur)
		p.nextToken()
	}
}

// parseEvent parses an event declaration.
func (p *Parser) parseEvent() Item {
	ev := &Event{}
	ev.Span.Start = p.cur.Pos
	p.nextToken() // consume 'event'

	if p.cur.Type == token.IDENT {
		ev.Name = p.cur.Literal
		p.nextToken()
	}
	if p.cur.Type == token.LPAREN {
		ev.Params = p.parseParamList()
	}

	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
		p.nextToken()
	}
	ev.Span.End = p.cur.Pos
	if p.cur.Type == token.SEMICOLON {
		ev.Span.End = endOf(p.cur)
		p.nextToken()
	}
	return ev
}

// parseErrorDef parses a custom error declaration.
func (p *Parser) parseErrorDef() Item {
	ed := &ErrorDef{}
	ed.Span.Start = p.cur.Pos
	p.nextToken() // consume 'error'

	if p.cur.Type == token.IDENT {
		ed.Name = p.cur.Literal
		p.nextToken()
	}
	if p.cur.Type == token.LPAREN {
		ed.Params = p.parseParamList()
	}

	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
		p.nextToken()
	}
	ed.Span.End = p.cur.Pos
	if p.cur.Type == token.SEMICOLON {
		ed.Span.End = endOf(p.cur)
		p.nextToken()
	}
	return ed
}

// parseOther skips structs, enums, user-defined value types and using-for
// directives while recording their span.
func (p *Parser) parseOther() Item {
	o := &Other{Keyword: p.cur.Literal}
	o.Span.Start = p.cur.Pos
	p.nextToken()

	if p.cur.Type == token.IDENT {
		o.Name = p.cur.Literal
		p.nextToken()
	}

	for {
		switch p.cur.Type {
		case token.EOF:
			o.Span.End = p.cur.Pos
			return o
		case token.LBRACE:
			_, end := p.collectBody()
			o.Span.End = end
			return o
		case token.SEMICOLON:
			o.Span.End = endOf(p.cur)
			p.nextToken()
			return o
		default:
			p.nextToken()
		}
	}
}

// parseVariable parses a state variable or file-level constant: tokens up
// to the terminating semicolon, then interpreted. Used as the fallback for
// unrecognized leading tokens, so it degrades to Other when no name can be
// found.
func (p *Parser) parseVariable() Item {
	start := p.cur.Pos
	var toks []token.Token
	parens, brackets, braces := 0, 0, 0

	for {
		if p.cur.Type == token.EOF {
			return variableFromTokens(p.src, toks, start, p.cur.Pos, p.cur.Pos.Offset)
		}
		if p.cur.Type == token.SEMICOLON && parens == 0 && brackets == 0 && braces == 0 {
			end := endOf(p.cur)
			semiOffset := p.cur.Pos.Offset
			p.nextToken()
			return variableFromTokens(p.src, toks, start, end, semiOffset)
		}
		switch p.cur.Type {
		case token.LPAREN:
			parens++
		case token.RPAREN:
			parens--
		case token.LBRACKET:
			brackets++
		case token.RBRACKET:
			brackets--
		case token.LBRACE:
			braces++
		case token.RBRACE:
			braces--
		}
		toks = append(toks, p.cur)
		p.nextToken()
	}
}

// variableFromTokens interprets a collected variable declaration.
func variableFromTokens(src string, toks []token.Token, start, end token.Position, semiOffset int) Item {
	span := token.Span{Start: start, End: end}
	if len(toks) == 0 {
		return nil
	}

	assignIdx := topLevelAssign(toks)
	declToks := toks
	if assignIdx >= 0 {
		declToks = toks[:assignIdx]
	}

	v := &Variable{NodeInfo: NodeInfo{Span: span}}

	var typeToks []token.Token
	for i := 0; i < len(declToks); i++ {
		t := declToks[i]
		switch t.Type {
		case token.PUBLIC, token.PRIVATE, token.INTERNAL, token.EXTERNAL:
			v.Visibility = visibilityOf(t.Type)
		case token.CONSTANT:
			v.IsConstant = true
		case token.IMMUTABLE:
			v.IsImmutable = true
		case token.TRANSIENT:
			v.IsTransient = true
		case token.OVERRIDE:
			// skip an override(Base, ...) argument list as well
			if i+1 < len(declToks) && declToks[i+1].Type == token.LPAREN {
				depth := 0
				j := i + 1
				for ; j < len(declToks); j++ {
					if declToks[j].Type == token.LPAREN {
						depth++
					}
					if declToks[j].Type == token.RPAREN {
						depth--
						if depth == 0 {
							break
						}
					}
				}
				i = j
			}
		default:
			typeToks = append(typeToks, t)
		}
	}

	if len(typeToks) >= 2 {
		last := typeToks[len(typeToks)-1]
		prev := typeToks[len(typeToks)-2]
		if last.Type == token.IDENT && prev.Type != token.DOT {
			v.Name = last.Literal
			typeToks = typeToks[:len(typeToks)-1]
		}
	}

	if v.Name == "" {
		return &Other{NodeInfo: NodeInfo{Span: span}, Keyword: toks[0].Literal}
	}

	v.TypeText = renderTokens(typeToks)

	if assignIdx >= 0 && assignIdx+1 < len(toks) {
		initStart := toks[assignIdx+1].Pos.Offset
		if initStart < semiOffset && semiOffset <= len(src) {
			v.Initializer = strings.TrimSpace(src[initStart:semiOffset])
		}
	}

	return v
}

// topLevelAssign returns the index of the first '=' outside any nesting,
// or -1.
func topLevelAssign(toks []token.Token) int {
	depth := 0
	for i, t := range toks {
		switch t.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		case token.ASSIGN:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// visibilityOf maps a visibility keyword token to its Visibility.
func visibilityOf(t token.TokenType) Visibility {
	switch t {
	case token.PUBLIC:
		return VisibilityPublic
	case token.EXTERNAL:
		return VisibilityExternal
	case token.INTERNAL:
		return VisibilityInternal
	case token.PRIVATE:
		return VisibilityPrivate
	default:
		return VisibilityDefault
	}
}

// endOf returns the position one past the token. String literals carry
// their quotes in the source but not in the literal.
func endOf(tok token.Token) token.Position {
	n := len(tok.Literal)
	if tok.Type == token.STRING {
		n += 2
	}
	return token.Position{
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column + n,
		Offset: tok.Pos.Offset + n,
	}
}

// renderTokens renders a token slice back to compact source text.
func renderTokens(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && !noSpaceBefore(t.Type) && !noSpaceAfter(toks[i-1].Type) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Literal)
	}
	return b.String()
}

func noSpaceBefore(t token.TokenType) bool {
	switch t {
	case token.DOT, token.COMMA, token.LPAREN, token.RPAREN,
		token.LBRACKET, token.RBRACKET, token.SEMICOLON:
		return true
	}
	return false
}

func noSpaceAfter(t token.TokenType) bool {
	switch t {
	case token.DOT, token.LPAREN, token.LBRACKET:
		return true
	}
	return false
}
