package scanner

import (
	"path/filepath"
	"strings"

	"sourcelens/internal/types"
)

var extensionLanguages = map[string]types.Language{
	".go":    types.LangGo,
	".py":    types.LangPython,
	".js":    types.LangJavaScript,
	".jsx":   types.LangJavaScript,
	".mjs":   types.LangJavaScript,
	".cjs":   types.LangJavaScript,
	".ts":    types.LangTypeScript,
	".tsx":   types.LangTypeScript,
	".rs":    types.LangRust,
	".java":  types.LangJava,
	".cs":    types.LangCSharp,
	".rb":    types.LangRuby,
	".php":   types.LangPHP,
	".kt":    types.LangKotlin,
	".kts":   types.LangKotlin,
	".c":     types.LangC,
	".h":     types.LangC,
	".cpp":   types.LangCPP,
	".cc":    types.LangCPP,
	".cxx":   types.LangCPP,
	".hpp":   types.LangCPP,
	".swift": types.LangSwift,
	".scala": types.LangScala,
}

// DetectLanguage classifies a file by extension, returning LangUnknown for
// anything outside the fourteen recognized languages (§2, §4.5).
func DetectLanguage(path string) types.Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return types.LangUnknown
}

// IsTestFile applies the path-heuristic test/source partition used by the
// test-topology analysis (§4.7): filename suffix conventions first, then a
// containing tests/test/__tests__ directory combined with a source
// extension for the language.
func IsTestFile(path string) bool {
	base := filepath.Base(path)

	switch {
	case strings.HasSuffix(path, "_test.go"):
		return true
	case strings.HasSuffix(path, "_test.py") || strings.HasPrefix(base, "test_"):
		return true
	case strings.HasSuffix(path, "Test.java") || strings.HasSuffix(path, "Tests.java"):
		return true
	case strings.HasSuffix(path, ".test.js") || strings.HasSuffix(path, ".test.ts") ||
		strings.HasSuffix(path, ".test.tsx") || strings.HasSuffix(path, ".spec.js") ||
		strings.HasSuffix(path, ".spec.ts") || strings.HasSuffix(path, ".spec.tsx"):
		return true
	case strings.HasSuffix(path, "_test.rs") || strings.HasSuffix(path, "_spec.rb"):
		return true
	}

	dir := filepath.ToSlash(filepath.Dir(path))
	for _, part := range strings.Split(dir, "/") {
		if part == "tests" || part == "test" || part == "__tests__" {
			ext := strings.ToLower(filepath.Ext(path))
			switch ext {
			case ".py", ".js", ".ts", ".tsx", ".rs", ".rb", ".java", ".go":
				return true
			}
		}
	}
	return false
}
