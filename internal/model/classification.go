package model

// ClassificationMethod indicates which cascade stage produced a result.
type ClassificationMethod string

// Classification method constants.
const (
	MethodExactMatch        ClassificationMethod = "EXACT_MATCH"
	MethodRegexMatch        ClassificationMethod = "REGEX_MATCH"
	MethodFuzzyMatch        ClassificationMethod = "FUZZY_MATCH"
	MethodUserHint          ClassificationMethod = "USER_HINT"
	MethodHeuristicFallback ClassificationMethod = "HEURISTIC_FALLBACK"
	MethodNone              ClassificationMethod = "NONE"
)

// ClassificationResult is the outcome of classifying one merchant string.
// The ticker may be empty when no stage produced a usable match.
type ClassificationResult struct {
	Ticker     string
	Merchant   string
	Category   string
	Method     ClassificationMethod
	Evidence   string
	Confidence float64
}

// Matched reports whether the classifier identified any security at all.
func (r ClassificationResult) Matched() bool {
	return r.Method != MethodNone && r.Ticker != ""
}
