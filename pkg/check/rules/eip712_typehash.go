package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(EIP712Typehash)
}

// EIP712Typehash validates typehash constants against their abi.encode usage.
// A contract variable whose name ends in _TYPEHASH or starts with TYPEHASH_
// must be initialized from a keccak256 string literal, and every
// abi.encode(<typehash>, ...) call in the file must pass as many values as the
// type string declares parameters. abi.encodePacked calls are not checked.
var EIP712Typehash = check.RuleDef{
	ID:          "eip712",
	Name:        "conventions.eip712-typehash",
	Description: "Typehash parameter counts match their abi.encode usage.",
	Kinds:       []check.FileKind{check.KindSrc},
	Check:       checkEIP712Typehash,
	Rationale: "A typehash whose abi.encode call passes the wrong number of values " +
		"produces signatures that verify against a different struct than intended.",
	BadExample: "bytes32 constant PERMIT_TYPEHASH =\n" +
		"    keccak256(\"Permit(address owner,address spender,uint256 value)\");\n" +
		"// elsewhere\nabi.encode(PERMIT_TYPEHASH, owner, spender);",
	GoodExample: "bytes32 constant PERMIT_TYPEHASH =\n" +
		"    keccak256(\"Permit(address owner,address spender,uint256 value)\");\n" +
		"// elsewhere\nabi.encode(PERMIT_TYPEHASH, owner, spender, value);",
}

var (
	keccakStringRe = regexp.MustCompile(`keccak256\s*\(\s*["']([^"']*)["']`)
	abiEncodeRe    = regexp.MustCompile(`abi\.encode\s*\(`)
)

func checkEIP712Typehash(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, c := range file.Contracts() {
		for _, v := range c.Variables() {
			structName, ok := typehashStructName(v.Name)
			if !ok {
				continue
			}
			m := keccakStringRe.FindStringSubmatch(v.Initializer)
			if m == nil {
				findings = append(findings, check.Finding{
					Rule: "eip712",
					Path: file.Path,
					Line: v.Span.Start.Line,
					Span: v.Span,
					Message: fmt.Sprintf(
						"Typehash '%s' for struct '%s' has no keccak256 string - this will cause signature mismatches",
						v.Name, structName),
				})
				continue
			}
			declared := typehashParamCount(m[1])
			for _, used := range encodeUsageCounts(file, v.Name) {
				if used == declared {
					continue
				}
				findings = append(findings, check.Finding{
					Rule: "eip712",
					Path: file.Path,
					Line: v.Span.Start.Line,
					Span: v.Span,
					Message: fmt.Sprintf(
						"EIP712 typehash '%s' parameter mismatch: typehash defines %d parameters but abi.encode usage uses %d parameters",
						v.Name, declared, used),
				})
			}
		}
	}
	return findings
}

// typehashStructName extracts the struct name a typehash variable encodes,
// or reports false when the name does not follow the typehash convention.
func typehashStructName(name string) (string, bool) {
	if s, ok := strings.CutSuffix(name, "_TYPEHASH"); ok {
		return s, true
	}
	if s, ok := strings.CutPrefix(name, "TYPEHASH_"); ok {
		return s, true
	}
	return "", false
}

// typehashParamCount counts the parameters declared by an EIP712 type string.
// "Permit(address owner,address spender)" declares 2. Tuple parameters such
// as "(uint256 a,address b)[] items" count as one.
func typehashParamCount(typeString string) int {
	open := strings.IndexByte(typeString, '(')
	if open < 0 {
		return 0
	}
	inner, ok := balancedParen(typeString, open)
	if !ok {
		return 0
	}
	return len(splitTopLevel(inner))
}

// encodeUsageCounts returns the value count of every abi.encode call whose
// first argument is the named typehash. Matches inside comments are skipped.
func encodeUsageCounts(file *solidity.File, name string) []int {
	var counts []int
	for _, loc := range abiEncodeRe.FindAllStringIndex(file.Src, -1) {
		if inComment(file, loc[0]) {
			continue
		}
		inner, ok := balancedParen(file.Src, loc[1]-1)
		if !ok {
			continue
		}
		args := splitTopLevel(inner)
		if len(args) == 0 || strings.TrimSpace(args[0]) != name {
			continue
		}
		counts = append(counts, len(args)-1)
	}
	return counts
}

// balancedParen returns the content between the opening parenthesis at
// s[open] and its matching close, tracking nesting depth.
func balancedParen(s string, open int) (string, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits s on commas that sit outside any bracket pair.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
