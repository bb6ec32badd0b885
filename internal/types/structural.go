package types

import "time"

// CouplingMetric is a module-level coupling measurement (§12.4).
type CouplingMetric struct {
	Module        string
	Ce            int // efferent coupling: outgoing dependencies
	Ca            int // afferent coupling: incoming dependencies
	Instability   float64
	Abstractness  float64
	Distance      float64 // |A + I - 1|
	Zone          string  // "main_sequence", "uselessness", "rigidity", ""
}

// CouplingCycle is a strongly connected component in the module dependency
// graph, with a suggested edge to break to eliminate it.
type CouplingCycle struct {
	Members          []string
	BreakSuggestion  string
}

// Wrapper is a detected primitive-obsession wrapper; Category names its shape.
type Wrapper struct {
	Name              string
	File              string
	Line              int
	Category          string
	WrappedPrimitives []string
	Framework         string
	Confidence        float64
	MultiPrimitive    bool
	Exported          bool
	UsageCount        int
}

// CryptoFinding is a weak or misused cryptographic primitive.
type CryptoFinding struct {
	File        string
	Line        int
	Category    string
	Description string
	Code        string
	Confidence  float64
	CWEID       int
	OWASP       string
	Remediation string
	Language    Language
}

// DnaGene is a categorical convention with more than two alleles (§12.5).
type DnaGene struct {
	GeneID          string
	Name            string
	Description     string
	DominantAllele  string // optional
	Alleles         []string
	Confidence      float64
	Consistency     float64 // 1 - normalized entropy across alleles
	Exemplars       []Location
}

// DnaMutation is a location whose allele differs from its gene's dominant
// allele.
type DnaMutation struct {
	ID     string
	File   string
	Line   int
	GeneID string
	Allele string
}

// Secret is a detected hardcoded credential or key.
type Secret struct {
	File       string
	Line       int
	Category   string
	Confidence float64
	Redacted   string // partially masked matched text, never the full secret
}

// Constant is a detected named or magic constant.
type Constant struct {
	File       string
	Line       int
	Name       string // optional, empty for magic numbers
	Value      string
	IsMagic    bool
}

// EnvVariable is a detected environment variable read.
type EnvVariable struct {
	File    string
	Line    int
	Name    string
	HasDefault bool
}

// OwaspFinding is a detection already tagged against the OWASP Top 10.
type OwaspFinding struct {
	File       string
	Line       int
	Category   string // e.g. "A03:2021-Injection"
	CWEID      int
	Confidence float64
	Remediation string
}

// DecompositionDecision suggests splitting a god-object/god-function.
type DecompositionDecision struct {
	File        string
	Symbol      string
	Reason      string
	SuggestedSplit []string
	Confidence  float64
}

// Contract is an API endpoint extracted from one file.
type Contract struct {
	File       string
	Method     string
	Path       string
	RequestShape  string // optional, JSON schema summary
	ResponseShape string // optional
	Framework  string
}

// ContractMismatch is a backend/frontend contract disagreement.
type ContractMismatch struct {
	BackendFile  string
	FrontendFile string
	Path         string
	Kind         string // "missing_field", "type_mismatch", "missing_endpoint"
	Description  string
}

// DataAccess is one data-access call site (table/operation) tied to a
// function, used to derive Boundary facts and risk scoring.
type DataAccess struct {
	FunctionID FunctionID
	Table      string
	Operation  string // "select", "insert", "update", "delete", ...
	Framework  string // optional
	Line       int
	Confidence float64
}

// RetentionTier names a table's lifecycle bucket (§4.10).
type RetentionTier string

const (
	TierReference    RetentionTier = "reference"
	TierCurrent      RetentionTier = "current"
	TierShort        RetentionTier = "short"
	TierMedium       RetentionTier = "medium"
	TierLong         RetentionTier = "long"
	TierSelfBounding RetentionTier = "self_bounding"
)

// RetentionWindows holds the policy inputs for time-based retention tiers.
type RetentionWindows struct {
	ShortDays  int
	MediumDays int
	LongDays   int
}

// DefaultRetentionWindows returns the spec's default windows (§4.10).
func DefaultRetentionWindows() RetentionWindows {
	return RetentionWindows{ShortDays: 30, MediumDays: 90, LongDays: 365}
}

// Short, Medium and Long return the matching window as a time.Duration.
func (w RetentionWindows) Short() time.Duration  { return time.Duration(w.ShortDays) * 24 * time.Hour }
func (w RetentionWindows) Medium() time.Duration { return time.Duration(w.MediumDays) * 24 * time.Hour }
func (w RetentionWindows) Long() time.Duration   { return time.Duration(w.LongDays) * 24 * time.Hour }
