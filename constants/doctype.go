package constants

// DocType is the coarse document category produced by the classifier.
type DocType string

const (
	DocTypeLease   DocType = "lease"
	DocTypeBill    DocType = "bill"
	DocTypeNDA     DocType = "nda"
	DocTypeUnknown DocType = "unknown"
)

var allDocTypes = []DocType{DocTypeLease, DocTypeBill, DocTypeNDA, DocTypeUnknown}

// IsValidDocType reports whether s is one of the known categories.
func IsValidDocType(s string) bool {
	for _, t := range allDocTypes {
		if s == string(t) {
			return true
		}
	}
	return false
}
