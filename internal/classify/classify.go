package classify

import (
	"strings"

	"github.com/riannazhu/doc/constants"
)

// rule maps keyword presence to a category. Rules are evaluated top to
// bottom and the first match wins, so earlier entries deliberately outrank
// later ones (an NDA mentioning "amount due" still classifies as nda only if
// no earlier rule fired). This precedence is part of the contract.
type rule struct {
	keywords   []string
	docType    constants.DocType
	confidence float64
}

var rules = []rule{
	{keywords: []string{"lease"}, docType: constants.DocTypeLease, confidence: 0.8},
	{keywords: []string{"statement", "amount due"}, docType: constants.DocTypeBill, confidence: 0.7},
	{keywords: []string{"nda", "non-disclosure"}, docType: constants.DocTypeNDA, confidence: 0.7},
}

// DetectDocType inspects the first two pages, lower-cased, and returns
// (category, confidence). It is a pure function and never fails.
func DetectDocType(pages []string) (constants.DocType, float64) {
	window := pages
	if len(window) > 2 {
		window = window[:2]
	}
	head := strings.ToLower(strings.Join(window, " "))

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(head, kw) {
				return r.docType, r.confidence
			}
		}
	}
	return constants.DocTypeUnknown, 0.4
}
