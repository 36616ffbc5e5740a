package classify

import (
	"testing"

	"github.com/riannazhu/doc/constants"
)

func TestDetectDocType(t *testing.T) {
	tests := []struct {
		name       string
		pages      []string
		wantType   constants.DocType
		wantConf   float64
	}{
		{"lease keyword", []string{"RESIDENTIAL LEASE AGREEMENT", "terms"}, constants.DocTypeLease, 0.8},
		{"bill via statement", []string{"Monthly Statement", ""}, constants.DocTypeBill, 0.7},
		{"bill via amount due", []string{"AMOUNT DUE: $120.00, due 2025-03-01"}, constants.DocTypeBill, 0.7},
		{"nda", []string{"Mutual Non-Disclosure Agreement"}, constants.DocTypeNDA, 0.7},
		{"unknown", []string{"random text", "more text"}, constants.DocTypeUnknown, 0.4},
		{"no pages", nil, constants.DocTypeUnknown, 0.4},
		// precedence: lease outranks every later rule
		{"lease beats amount due", []string{"lease with amount due and nda mentions"}, constants.DocTypeLease, 0.8},
		// nda containing "amount due" loses to the earlier bill rule
		{"bill beats nda", []string{"nda draft", "amount due next month"}, constants.DocTypeBill, 0.7},
		// only the first two pages count
		{"third page ignored", []string{"intro", "cover", "lease terms"}, constants.DocTypeUnknown, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotConf := DetectDocType(tt.pages)
			if gotType != tt.wantType || gotConf != tt.wantConf {
				t.Errorf("DetectDocType() = (%s, %v), want (%s, %v)", gotType, gotConf, tt.wantType, tt.wantConf)
			}
		})
	}
}

func TestDetectDocTypeCaseInsensitive(t *testing.T) {
	gotType, gotConf := DetectDocType([]string{"LEASE"})
	if gotType != constants.DocTypeLease || gotConf != 0.8 {
		t.Errorf("upper-cased input: got (%s, %v)", gotType, gotConf)
	}
}
