package parser

import (
	"context"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"sourcelens/internal/types"
)

// TreeSitterParser parses source text with tree-sitter and produces
// language-agnostic ParseFacts via the table-driven node-role walker in
// grammar.go (generalizing the teacher's per-language hand-written walk
// functions in ast_treesitter.go into one shared extraction path).
type TreeSitterParser struct{}

// NewTreeSitterParser creates a parser. Unlike the teacher's pooled
// *sitter.Parser-per-language design, one is created lazily per Parse call
// since sitter.Parser is not safe for concurrent reuse across goroutines and
// per-call construction is cheap relative to the parse itself.
func NewTreeSitterParser() *TreeSitterParser { return &TreeSitterParser{} }

// Parse extracts ParseFacts from content for the given language. The caller
// supplies ContentFp (already computed by the scanner) so the cache key is
// available even when parsing fails.
func (p *TreeSitterParser) Parse(ctx context.Context, lang types.Language, contentFp uint64, content []byte) (*types.ParseFacts, error) {
	start := time.Now()
	grammar := grammarFor(lang)
	if grammar == nil {
		return nil, types.NotSupported("Parse", "unsupported language: "+string(lang))
	}

	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(grammar)

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, types.NewError(types.CodeScan, "Parse", err)
	}
	defer tree.Close()

	facts := &types.ParseFacts{
		ContentFp: contentFp,
		Language:  lang,
	}

	rules, ok := nodeGrammars[lang]
	if !ok {
		return facts, nil
	}

	root := tree.RootNode()
	walkExtract(root, content, rules, facts)

	facts.ParseDuration = time.Since(start)
	facts.HasErrors = root.HasError()
	collectErrorRanges(root, content, facts)
	facts.ErrorCount = len(facts.ErrorRanges)

	return facts, nil
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(content)
}

func isExported(lang types.Language, name string) bool {
	if name == "" {
		return false
	}
	switch lang {
	case types.LangGo:
		return name[0] >= 'A' && name[0] <= 'Z'
	case types.LangPython, types.LangRuby:
		return !strings.HasPrefix(name, "_")
	default:
		return true
	}
}

func containsType(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// walkExtract recursively visits the tree, dispatching on node type against
// the language's grammar table.
func walkExtract(n *sitter.Node, content []byte, rules nodeGrammar, facts *types.ParseFacts) {
	if n == nil {
		return
	}
	nodeType := n.Type()

	switch {
	case containsType(rules.functionTypes, nodeType) || containsType(rules.methodTypes, nodeType):
		extractFunction(n, content, rules, facts, containsType(rules.methodTypes, nodeType))
	case containsType(rules.classTypes, nodeType):
		extractClass(n, content, rules, facts)
	case containsType(rules.importTypes, nodeType):
		extractImport(n, content, facts)
	case containsType(rules.callTypes, nodeType):
		extractCallSite(n, content, rules, facts)
	case nodeType == "string" || nodeType == "string_literal" || nodeType == "raw_string_literal":
		extractLiteral(n, content, "string", facts)
	case nodeType == "number" || nodeType == "integer_literal" || nodeType == "float_literal":
		extractLiteral(n, content, "number", facts)
	case nodeType == "comment" || nodeType == "line_comment" || nodeType == "block_comment":
		extractDocComment(n, content, facts)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkExtract(n.NamedChild(i), content, rules, facts)
	}
}

func extractFunction(n *sitter.Node, content []byte, rules nodeGrammar, facts *types.ParseFacts, isMethod bool) {
	nameNode := n.ChildByFieldName(rules.nameField)
	name := nodeText(nameNode, content)
	if name == "" {
		return
	}

	paramsNode := n.ChildByFieldName(rules.paramsField)
	bodyNode := n.ChildByFieldName(rules.bodyField)

	fn := types.Function{
		Name:      name,
		Language:  facts.Language,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Exported:  isExported(facts.Language, name),
	}

	if isMethod && rules.receiverField != "" {
		if recv := n.ChildByFieldName(rules.receiverField); recv != nil {
			// A Go receiver reads "(w *Widget)" or "(w Widget[T])"; keep only
			// the type name so QualifiedName is "Widget.<method>".
			recvText := strings.Trim(strings.TrimSpace(nodeText(recv, content)), "()")
			if i := strings.Index(recvText, "["); i >= 0 {
				recvText = recvText[:i]
			}
			if recvFields := strings.Fields(recvText); len(recvFields) > 0 {
				fn.QualifiedName = strings.TrimLeft(recvFields[len(recvFields)-1], "*") + "." + name
			}
		}
	}

	if paramsNode != nil {
		fn.Params = extractParams(paramsNode, content)
	}

	sigBuilder := strings.Builder{}
	sigBuilder.WriteString(name)
	if paramsNode != nil {
		sigBuilder.WriteString(nodeText(paramsNode, content))
	}
	// Declared return type, under the field name the grammar uses for it.
	for _, field := range []string{"result", "return_type"} {
		if ret := n.ChildByFieldName(field); ret != nil {
			sigBuilder.WriteString(nodeText(ret, content))
		}
	}
	fn.SignatureHash = fnvHash(sigBuilder.String())

	if bodyNode != nil {
		fn.BodyHash = fnvHash(nodeText(bodyNode, content))
		extractErrorConstructs(bodyNode, facts)
	}

	facts.Functions = append(facts.Functions, fn)
}

func extractParams(n *sitter.Node, content []byte) []types.Param {
	var params []types.Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		nameNode := child.ChildByFieldName("name")
		typeNode := child.ChildByFieldName("type")
		name := nodeText(nameNode, content)
		if name == "" {
			// Grammars without a distinct name field (e.g. C parameter_declaration)
			// fall back to the full parameter text.
			name = nodeText(child, content)
		}
		params = append(params, types.Param{
			Name: name,
			Type: nodeText(typeNode, content),
		})
	}
	return params
}

func extractClass(n *sitter.Node, content []byte, rules nodeGrammar, facts *types.ParseFacts) {
	nameNode := n.ChildByFieldName(rules.nameField)
	name := nodeText(nameNode, content)
	if name == "" {
		// Go's type_declaration wraps a type_spec child carrying the name.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			if specName := spec.ChildByFieldName("name"); specName != nil {
				name = nodeText(specName, content)
				break
			}
		}
	}
	if name == "" {
		return
	}

	facts.Classes = append(facts.Classes, types.ClassDecl{
		Name:      name,
		Kind:      n.Type(),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Exported:  isExported(facts.Language, name),
	})
}

func extractImport(n *sitter.Node, content []byte, facts *types.ParseFacts) {
	facts.Imports = append(facts.Imports, types.ImportDecl{
		Path: strings.Trim(nodeText(n, content), "\"'"),
		Line: int(n.StartPoint().Row) + 1,
	})
}

func extractCallSite(n *sitter.Node, content []byte, rules nodeGrammar, facts *types.ParseFacts) {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = n.ChildByFieldName("name")
	}
	callee := nodeText(fnNode, content)
	if callee == "" {
		return
	}

	receiver := ""
	if idx := strings.LastIndex(callee, "."); idx > 0 {
		receiver = callee[:idx]
		callee = callee[idx+1:]
	}

	argc := 0
	if args := n.ChildByFieldName("arguments"); args != nil {
		argc = int(args.NamedChildCount())
	}

	facts.CallSites = append(facts.CallSites, types.CallSite{
		Callee:   callee,
		Receiver: receiver,
		Line:     int(n.StartPoint().Row) + 1,
		Argc:     argc,
	})
}

func extractLiteral(n *sitter.Node, content []byte, kind string, facts *types.ParseFacts) {
	facts.Literals = append(facts.Literals, types.Literal{
		Kind:  kind,
		Value: nodeText(n, content),
		Line:  int(n.StartPoint().Row) + 1,
	})
}

func extractDocComment(n *sitter.Node, content []byte, facts *types.ParseFacts) {
	facts.DocComments = append(facts.DocComments, strings.TrimSpace(nodeText(n, content)))
}

var errorConstructTypes = map[string]string{
	"try_statement":        "try_catch",
	"catch_clause":         "try_catch",
	"rescue":               "try_catch",
	"begin":                "try_catch",
	"match_expression":     "result_match",
	"if_let_expression":    "result_match",
	"throw_statement":      "throw",
	"raise_statement":      "throw",
	"panic_expression":     "throw",
}

func extractErrorConstructs(body *sitter.Node, facts *types.ParseFacts) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if kind, ok := errorConstructTypes[n.Type()]; ok {
			facts.ErrorConstructs = append(facts.ErrorConstructs, types.ErrorConstruct{
				Kind:    kind,
				Line:    int(n.StartPoint().Row) + 1,
				EndLine: int(n.EndPoint().Row) + 1,
			})
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
}

func collectErrorRanges(n *sitter.Node, content []byte, facts *types.ParseFacts) {
	if n.HasError() || n.IsMissing() {
		if n.Type() == "ERROR" || n.IsMissing() {
			facts.ErrorRanges = append(facts.ErrorRanges, types.ParseRange{
				StartLine: int(n.StartPoint().Row) + 1,
				StartCol:  int(n.StartPoint().Column),
				EndLine:   int(n.EndPoint().Row) + 1,
				EndCol:    int(n.EndPoint().Column),
				Message:   "syntax error",
			})
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() {
			collectErrorRanges(child, content, facts)
		}
	}
}

// fnvHash is used for BodyHash/SignatureHash — a fast non-cryptographic hash
// is appropriate here since these are change-detection keys, not content
// fingerprints (which use scanner.ContentFingerprintBytes's SHA-256 instead).
func fnvHash(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
