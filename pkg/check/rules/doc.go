// Package rules implements the fixed convention rule set.
//
// Each rule lives in its own file and registers itself with the check
// registry from init(). To activate the full set, import this package
// with a blank identifier:
//
//	import _ "github.com/forgelint/forgelint/pkg/check/rules"
//
// The rule identifiers, usable in inline directives and .forgelint
// override entries, are:
//
//   - test: test function naming in test contracts
//   - constant: ALL_CAPS constant and immutable names
//   - script: a single public run function per script contract
//   - src: SPDX headers and underscore-prefixed internal functions
//   - error: ContractName_ prefixes on events and custom errors
//   - import: named import form and unused imported symbols
//   - eip712: typehash string literals matching abi.encode usage
//   - variable: underscore prefix conventions for parameters and locals
package rules
