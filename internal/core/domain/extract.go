package domain

// ExtractStatus tags the outcome of text extraction.
type ExtractStatus string

// Extraction outcomes.
const (
	// ExtractOK means the text was extracted cleanly.
	ExtractOK ExtractStatus = "ok"

	// ExtractWarning means text (possibly none) was extracted with caveats.
	ExtractWarning ExtractStatus = "warning"

	// ExtractFailed means no text could be extracted.
	ExtractFailed ExtractStatus = "failed"
)

// String returns the string representation.
func (s ExtractStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is recognised.
func (s ExtractStatus) IsValid() bool {
	switch s {
	case ExtractOK, ExtractWarning, ExtractFailed:
		return true
	default:
		return false
	}
}

// ExtractResult is the tagged result of extracting text from a file.
// Construct it with Extracted, ExtractedWithWarning or ExtractionFailed.
type ExtractResult struct {
	// Status tags which variant this is.
	Status ExtractStatus

	// Text is the extracted text. Always empty when Status is ExtractFailed.
	Text string

	// Reason explains a warning or failure.
	Reason string
}

// Extracted returns a clean extraction result.
func Extracted(text string) ExtractResult {
	return ExtractResult{Status: ExtractOK, Text: text}
}

// ExtractedWithWarning returns a result carrying text plus a caveat.
func ExtractedWithWarning(text, reason string) ExtractResult {
	return ExtractResult{Status: ExtractWarning, Text: text, Reason: reason}
}

// ExtractionFailed returns a result carrying only the failure reason.
func ExtractionFailed(reason string) ExtractResult {
	return ExtractResult{Status: ExtractFailed, Reason: reason}
}

// HasText reports whether the result carries text worth chunking.
func (r ExtractResult) HasText() bool {
	return r.Status != ExtractFailed && r.Text != ""
}
