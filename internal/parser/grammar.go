package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"sourcelens/internal/types"
)

// grammarFor returns the tree-sitter Language for one of sourcelens's
// fourteen recognized languages, or nil for any other.
func grammarFor(lang types.Language) *sitter.Language {
	switch lang {
	case types.LangGo:
		return golang.GetLanguage()
	case types.LangPython:
		return python.GetLanguage()
	case types.LangJavaScript:
		return javascript.GetLanguage()
	case types.LangTypeScript:
		return typescript.GetLanguage()
	case types.LangRust:
		return rust.GetLanguage()
	case types.LangJava:
		return java.GetLanguage()
	case types.LangCSharp:
		return csharp.GetLanguage()
	case types.LangC:
		return c.GetLanguage()
	case types.LangCPP:
		return cpp.GetLanguage()
	case types.LangRuby:
		return ruby.GetLanguage()
	case types.LangPHP:
		return php.GetLanguage()
	case types.LangKotlin:
		return kotlin.GetLanguage()
	case types.LangSwift:
		return swift.GetLanguage()
	case types.LangScala:
		return scala.GetLanguage()
	default:
		return nil
	}
}

// nodeGrammar names the tree-sitter node types that carry a given semantic
// role in one language's grammar. Grammars converge on similar shapes
// (a "declaration" node with a "name" and "body"/"parameters" field) but
// name them differently; this table generalizes the teacher's per-language
// hand-written walk functions (ast_treesitter.go's extractGoSymbols,
// extractPythonSymbols, ...) into one table-driven walker in extract.go.
type nodeGrammar struct {
	functionTypes []string // e.g. "function_declaration", "function_definition"
	methodTypes   []string // method-like nodes distinct from free functions
	classTypes    []string
	importTypes   []string
	callTypes     []string // call expression node type
	nameField     string   // field name for the declared identifier
	paramsField   string
	bodyField     string
	receiverField string // method receiver/self param, when the grammar exposes one
}

var nodeGrammars = map[types.Language]nodeGrammar{
	types.LangGo: {
		functionTypes: []string{"function_declaration"},
		methodTypes:   []string{"method_declaration"},
		classTypes:    []string{"type_declaration"},
		importTypes:   []string{"import_spec"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body", receiverField: "receiver",
	},
	types.LangPython: {
		functionTypes: []string{"function_definition"},
		classTypes:    []string{"class_definition"},
		importTypes:   []string{"import_statement", "import_from_statement"},
		callTypes:     []string{"call"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangJavaScript: {
		functionTypes: []string{"function_declaration", "function", "arrow_function"},
		methodTypes:   []string{"method_definition"},
		classTypes:    []string{"class_declaration"},
		importTypes:   []string{"import_statement"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangTypeScript: {
		functionTypes: []string{"function_declaration", "function", "arrow_function"},
		methodTypes:   []string{"method_definition", "method_signature"},
		classTypes:    []string{"class_declaration", "interface_declaration"},
		importTypes:   []string{"import_statement"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangRust: {
		functionTypes: []string{"function_item"},
		classTypes:    []string{"struct_item", "trait_item", "enum_item"},
		importTypes:   []string{"use_declaration"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangJava: {
		functionTypes: []string{"method_declaration", "constructor_declaration"},
		classTypes:    []string{"class_declaration", "interface_declaration"},
		importTypes:   []string{"import_declaration"},
		callTypes:     []string{"method_invocation"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangCSharp: {
		functionTypes: []string{"method_declaration", "constructor_declaration"},
		classTypes:    []string{"class_declaration", "interface_declaration"},
		importTypes:   []string{"using_directive"},
		callTypes:     []string{"invocation_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangC: {
		functionTypes: []string{"function_definition"},
		classTypes:    []string{"struct_specifier"},
		importTypes:   []string{"preproc_include"},
		callTypes:     []string{"call_expression"},
		nameField:     "declarator", bodyField: "body",
	},
	types.LangCPP: {
		functionTypes: []string{"function_definition"},
		classTypes:    []string{"class_specifier", "struct_specifier"},
		importTypes:   []string{"preproc_include"},
		callTypes:     []string{"call_expression"},
		nameField:     "declarator", bodyField: "body",
	},
	types.LangRuby: {
		functionTypes: []string{"method"},
		methodTypes:   []string{"singleton_method"},
		classTypes:    []string{"class", "module"},
		importTypes:   []string{"call"}, // require/require_relative surface as call nodes
		callTypes:     []string{"call"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangPHP: {
		functionTypes: []string{"function_definition"},
		methodTypes:   []string{"method_declaration"},
		classTypes:    []string{"class_declaration", "interface_declaration"},
		importTypes:   []string{"namespace_use_declaration"},
		callTypes:     []string{"function_call_expression", "member_call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangKotlin: {
		functionTypes: []string{"function_declaration"},
		classTypes:    []string{"class_declaration"},
		importTypes:   []string{"import_header"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangSwift: {
		functionTypes: []string{"function_declaration"},
		classTypes:    []string{"class_declaration"},
		importTypes:   []string{"import_declaration"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
	types.LangScala: {
		functionTypes: []string{"function_definition"},
		classTypes:    []string{"class_definition", "trait_definition"},
		importTypes:   []string{"import_declaration"},
		callTypes:     []string{"call_expression"},
		nameField:     "name", paramsField: "parameters", bodyField: "body",
	},
}
