package solidity

import "github.com/forgelint/forgelint/pkg/token"

// Item represents a source-level declaration.
type Item interface {
	itemNode()
	GetSpan() token.Span
}

// NodeInfo provides common fields for all AST nodes.
// Embed this in node types that need position tracking.
type NodeInfo struct {
	Span token.Span
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// ---------- File ----------

// File is a parsed Solidity source file. Items are in source order and the
// raw source is retained so text-level checks can run without re-reading.
type File struct {
	Path     string
	Src      string
	Items    []Item
	Comments []*token.Comment
}

// Lines splits the raw source into physical lines without allocating a copy
// of the content (slices share the backing string).
func (f *File) Lines() []string {
	return splitLines(f.Src)
}

// AllItems returns every item in the file, depth first in source order.
// Contract members follow their contract.
func (f *File) AllItems() []Item {
	var out []Item
	for _, it := range f.Items {
		out = append(out, it)
		if c, ok := it.(*Contract); ok {
			out = append(out, c.Items...)
		}
	}
	return out
}

// Contracts returns the top-level contract declarations.
func (f *File) Contracts() []*Contract {
	var out []*Contract
	for _, it := range f.Items {
		if c, ok := it.(*Contract); ok {
			out = append(out, c)
		}
	}
	return out
}

// ---------- Top-level items ----------

// Pragma is a pragma directive (version, abicoder, ...).
type Pragma struct {
	NodeInfo
	Text string // raw directive text without the trailing semicolon
}

func (*Pragma) itemNode() {}

// ImportForm distinguishes the import statement shapes.
type ImportForm int

// Import forms.
const (
	ImportPlain   ImportForm = iota // import "./Foo.sol";
	ImportNamed                     // import {Foo, Bar as Baz} from "./Foo.sol";
	ImportStar                      // import * as Foo from "./Foo.sol";
	ImportAliased                   // import "./Foo.sol" as Foo;
)

// ImportSymbol is one entry of a named import list.
type ImportSymbol struct {
	Name  string
	Alias string // empty unless "Name as Alias"
	Pos   token.Position
}

// Local returns the identifier the import binds in this file.
func (s ImportSymbol) Local() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Import is an import statement.
type Import struct {
	NodeInfo
	Form    ImportForm
	Path    string // the quoted source path, without quotes
	Symbols []ImportSymbol
	Alias   string // namespace name for star and aliased forms
}

func (*Import) itemNode() {}

// ContractKind distinguishes contract-like declarations.
type ContractKind int

// Contract kinds.
const (
	KindContract ContractKind = iota
	KindInterface
	KindLibrary
)

func (k ContractKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	default:
		return "contract"
	}
}

// Contract is a contract, interface or library declaration with its members.
type Contract struct {
	NodeInfo
	Kind     ContractKind
	Abstract bool
	Name     string
	Parents  []string
	Items    []Item
}

func (*Contract) itemNode() {}

// IsConcrete reports whether the declaration can be deployed directly.
func (c *Contract) IsConcrete() bool {
	return c.Kind == KindContract && !c.Abstract
}

// Functions returns the function members in source order.
func (c *Contract) Functions() []*Function {
	var out []*Function
	for _, it := range c.Items {
		if fn, ok := it.(*Function); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Variables returns the state variable members in source order.
func (c *Contract) Variables() []*Variable {
	var out []*Variable
	for _, it := range c.Items {
		if v, ok := it.(*Variable); ok {
			out = append(out, v)
		}
	}
	return out
}

// ---------- Members ----------

// Visibility of functions and state variables.
type Visibility int

// Visibility levels. VisibilityDefault means no explicit keyword was present.
const (
	VisibilityDefault Visibility = iota
	VisibilityPublic
	VisibilityExternal
	VisibilityInternal
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityExternal:
		return "external"
	case VisibilityInternal:
		return "internal"
	case VisibilityPrivate:
		return "private"
	default:
		return "default"
	}
}

// IsExposed reports whether the member is callable from outside the contract.
func (v Visibility) IsExposed() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// IsHidden reports whether the member is internal or private.
func (v Visibility) IsHidden() bool {
	return v == VisibilityInternal || v == VisibilityPrivate
}

// FuncKind distinguishes function-like members.
type FuncKind int

// Function kinds.
const (
	FuncRegular FuncKind = iota
	FuncConstructor
	FuncReceive
	FuncFallback
	FuncModifier
)

// Param is a function, event or error parameter.
type Param struct {
	Name     string
	TypeText string
	Location string // memory, storage, calldata or empty
	Indexed  bool
	Pos      token.Position
}

// LocalVar is a variable declared inside a function body.
type LocalVar struct {
	Name     string
	TypeText string
	Location string // memory, storage, calldata or empty
	Pos      token.Position
}

// Function is a function, constructor, receive, fallback or modifier member.
type Function struct {
	NodeInfo
	Kind       FuncKind
	Name       string // empty for constructor, receive and fallback
	Visibility Visibility
	Params     []Param
	Returns    []Param
	Locals     []LocalVar
	HasBody    bool
}

func (*Function) itemNode() {}

// Variable is a state variable or file-level constant.
type Variable struct {
	NodeInfo
	Name        string
	TypeText    string
	Visibility  Visibility
	IsConstant  bool
	IsImmutable bool
	IsTransient bool
	Initializer string // raw expression text after '=', empty when absent
}

func (*Variable) itemNode() {}

// Event is an event declaration.
type Event struct {
	NodeInfo
	Name   string
	Params []Param
}

func (*Event) itemNode() {}

// ErrorDef is a custom error declaration.
type ErrorDef struct {
	NodeInfo
	Name   string
	Params []Param
}

func (*ErrorDef) itemNode() {}

// Other covers declarations the checker has no rule interest in
// (structs, enums, user-defined value types, using-for).
type Other struct {
	NodeInfo
	Keyword string
	Name    string
}

func (*Other) itemNode() {}

// splitLines splits on '\n', keeping content without the terminator.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			line := src[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, src[start:])
	}
	return lines
}
