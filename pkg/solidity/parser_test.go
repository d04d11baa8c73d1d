package solidity_test

import (
	"testing"

	"github.com/forgelint/forgelint/pkg/solidity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterSrc = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.13;

import {Script, console as log} from "forge-std/Script.sol";
import "./Base.sol";
import * as counters from "./Counters.sol";

contract Counter is Base, ICounter {
    uint256 public number;
    uint256 public constant MAX_SUPPLY = 1e18;
    address internal immutable deployer;

    event Counter_NumberSet(uint256 indexed newNumber);
    error Counter_BadNumber(uint256 number);

    struct Snapshot {
        uint256 value;
    }

    constructor(uint256 _start) {
        number = _start;
        deployer = msg.sender;
    }

    function setNumber(uint256 _newNumber) public {
        uint256 _old = number;
        number = _newNumber;
        emit Counter_NumberSet(_old);
    }

    function _bump() internal returns (uint256) {
        for (uint256 _i = 0; _i < 3; _i++) {
            number++;
        }
        (bool _ok, ) = address(this).call("");
        require(_ok);
        return number;
    }
}
`

func TestParseCounter(t *testing.T) {
	f, err := solidity.Parse("src/Counter.sol", counterSrc)
	require.NoError(t, err)
	require.Len(t, f.Items, 5)

	pragma, ok := f.Items[0].(*solidity.Pragma)
	require.True(t, ok)
	assert.Equal(t, "pragma solidity ^0.8.13", pragma.Text)

	named, ok := f.Items[1].(*solidity.Import)
	require.True(t, ok)
	assert.Equal(t, solidity.ImportNamed, named.Form)
	assert.Equal(t, "forge-std/Script.sol", named.Path)
	require.Len(t, named.Symbols, 2)
	assert.Equal(t, "Script", named.Symbols[0].Name)
	assert.Equal(t, "", named.Symbols[0].Alias)
	assert.Equal(t, "console", named.Symbols[1].Name)
	assert.Equal(t, "log", named.Symbols[1].Alias)
	assert.Equal(t, "log", named.Symbols[1].Local())

	plain, ok := f.Items[2].(*solidity.Import)
	require.True(t, ok)
	assert.Equal(t, solidity.ImportPlain, plain.Form)
	assert.Equal(t, "./Base.sol", plain.Path)

	star, ok := f.Items[3].(*solidity.Import)
	require.True(t, ok)
	assert.Equal(t, solidity.ImportStar, star.Form)
	assert.Equal(t, "counters", star.Alias)
	assert.Equal(t, "./Counters.sol", star.Path)

	c, ok := f.Items[4].(*solidity.Contract)
	require.True(t, ok)
	assert.Equal(t, "Counter", c.Name)
	assert.Equal(t, solidity.KindContract, c.Kind)
	assert.Equal(t, []string{"Base", "ICounter"}, c.Parents)
	assert.True(t, c.IsConcrete())
	assert.Equal(t, 8, c.Span.Start.Line)
	assert.Equal(t, 39, c.Span.End.Line)
}

func TestParseCounterMembers(t *testing.T) {
	f, err := solidity.Parse("src/Counter.sol", counterSrc)
	require.NoError(t, err)

	c := f.Contracts()[0]
	require.Len(t, c.Items, 9)

	vars := c.Variables()
	require.Len(t, vars, 3)

	assert.Equal(t, "number", vars[0].Name)
	assert.Equal(t, "uint256", vars[0].TypeText)
	assert.Equal(t, solidity.VisibilityPublic, vars[0].Visibility)
	assert.False(t, vars[0].IsConstant)
	assert.Equal(t, 9, vars[0].Span.Start.Line)

	assert.Equal(t, "MAX_SUPPLY", vars[1].Name)
	assert.True(t, vars[1].IsConstant)
	assert.Equal(t, "1e18", vars[1].Initializer)

	assert.Equal(t, "deployer", vars[2].Name)
	assert.True(t, vars[2].IsImmutable)
	assert.Equal(t, solidity.VisibilityInternal, vars[2].Visibility)

	ev, ok := c.Items[3].(*solidity.Event)
	require.True(t, ok)
	assert.Equal(t, "Counter_NumberSet", ev.Name)
	require.Len(t, ev.Params, 1)
	assert.Equal(t, "newNumber", ev.Params[0].Name)
	assert.True(t, ev.Params[0].Indexed)

	ed, ok := c.Items[4].(*solidity.ErrorDef)
	require.True(t, ok)
	assert.Equal(t, "Counter_BadNumber", ed.Name)

	other, ok := c.Items[5].(*solidity.Other)
	require.True(t, ok)
	assert.Equal(t, "struct", other.Keyword)
	assert.Equal(t, "Snapshot", other.Name)
}

func TestParseCounterFunctions(t *testing.T) {
	f, err := solidity.Parse("src/Counter.sol", counterSrc)
	require.NoError(t, err)

	fns := f.Contracts()[0].Functions()
	require.Len(t, fns, 3)

	ctor := fns[0]
	assert.Equal(t, solidity.FuncConstructor, ctor.Kind)
	assert.Empty(t, ctor.Name)
	require.Len(t, ctor.Params, 1)
	assert.Equal(t, "_start", ctor.Params[0].Name)
	assert.Equal(t, "uint256", ctor.Params[0].TypeText)
	assert.Empty(t, ctor.Locals)

	set := fns[1]
	assert.Equal(t, "setNumber", set.Name)
	assert.Equal(t, solidity.VisibilityPublic, set.Visibility)
	assert.True(t, set.Visibility.IsExposed())
	assert.True(t, set.HasBody)
	require.Len(t, set.Locals, 1)
	assert.Equal(t, "_old", set.Locals[0].Name)
	assert.Equal(t, "uint256", set.Locals[0].TypeText)
	assert.Equal(t, 25, set.Span.Start.Line)
	assert.Equal(t, 29, set.Span.End.Line)

	bump := fns[2]
	assert.Equal(t, "_bump", bump.Name)
	assert.Equal(t, solidity.VisibilityInternal, bump.Visibility)
	assert.True(t, bump.Visibility.IsHidden())
	require.Len(t, bump.Returns, 1)
	assert.Equal(t, "uint256", bump.Returns[0].TypeText)
	assert.Empty(t, bump.Returns[0].Name)

	localNames := make([]string, 0, len(bump.Locals))
	for _, lv := range bump.Locals {
		localNames = append(localNames, lv.Name)
	}
	assert.Equal(t, []string{"_i", "_ok"}, localNames)
}

func TestParseAllItemsOrder(t *testing.T) {
	f, err := solidity.Parse("src/Counter.sol", counterSrc)
	require.NoError(t, err)

	all := f.AllItems()
	assert.Len(t, all, 14) // 5 top-level + 9 members
}

func TestParseContractKinds(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		kind     solidity.ContractKind
		abstract bool
		concrete bool
	}{
		{"contract", "contract A {}", solidity.KindContract, false, true},
		{"interface", "interface IA {}", solidity.KindInterface, false, false},
		{"library", "library L {}", solidity.KindLibrary, false, false},
		{"abstract", "abstract contract B {}", solidity.KindContract, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := solidity.Parse("a.sol", tt.src)
			require.NoError(t, err)
			require.Len(t, f.Contracts(), 1)
			c := f.Contracts()[0]
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.abstract, c.Abstract)
			assert.Equal(t, tt.concrete, c.IsConcrete())
		})
	}
}

func TestParseReceiveFallback(t *testing.T) {
	src := `contract Vault {
    receive() external payable {}
    fallback() external {}
}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)

	fns := f.Contracts()[0].Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, solidity.FuncReceive, fns[0].Kind)
	assert.Equal(t, solidity.VisibilityExternal, fns[0].Visibility)
	assert.Equal(t, solidity.FuncFallback, fns[1].Kind)
}

func TestParseTransientVariable(t *testing.T) {
	src := `contract C {
    uint256 transient temp;
}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)

	vars := f.Contracts()[0].Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, "temp", vars[0].Name)
	assert.True(t, vars[0].IsTransient)
}

func TestParseFileLevelConstant(t *testing.T) {
	src := `uint256 constant DECIMALS = 18;

contract C {}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)
	require.Len(t, f.Items, 2)

	v, ok := f.Items[0].(*solidity.Variable)
	require.True(t, ok)
	assert.Equal(t, "DECIMALS", v.Name)
	assert.True(t, v.IsConstant)
	assert.Equal(t, "18", v.Initializer)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"unclosed brace", "contract C {", "unbalanced braces"},
		{"stray close", "contract C {}\n}", "unbalanced braces"},
		{"unterminated string", "contract C { function f() public { s = \"oops; } }", "unterminated string"},
		{"unterminated comment", "contract C {} /* rest", "unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := solidity.Parse("a.sol", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseModifier(t *testing.T) {
	src := `contract C {
    modifier onlyOwner() {
        require(msg.sender == owner);
        _;
    }
}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)

	fns := f.Contracts()[0].Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, solidity.FuncModifier, fns[0].Kind)
	assert.Equal(t, "onlyOwner", fns[0].Name)
}

func TestParseAssemblyLocalsSkipped(t *testing.T) {
	src := `contract C {
    function f() internal returns (uint256) {
        uint256 _before = 1;
        assembly {
            let scratch := mload(0x40)
            mstore(scratch, 1)
        }
        return _before;
    }
}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)

	fn := f.Contracts()[0].Functions()[0]
	require.Len(t, fn.Locals, 1)
	assert.Equal(t, "_before", fn.Locals[0].Name)
}

func TestParseStorageLocal(t *testing.T) {
	src := `contract C {
    struct Score {
        uint256 value;
    }

    mapping(uint256 => Score) internal scores;

    function f(uint256 key) internal {
        Score storage score = scores[key];
        score.value = 1;
    }
}`
	f, err := solidity.Parse("a.sol", src)
	require.NoError(t, err)

	c := f.Contracts()[0]
	require.Len(t, c.Variables(), 1)
	assert.Equal(t, "scores", c.Variables()[0].Name)
	assert.Equal(t, "mapping(uint256 => Score)", c.Variables()[0].TypeText)

	fn := c.Functions()[0]
	require.Len(t, fn.Locals, 1)
	assert.Equal(t, "score", fn.Locals[0].Name)
	assert.Equal(t, "Score", fn.Locals[0].TypeText)
	assert.Equal(t, "storage", fn.Locals[0].Location)
}
