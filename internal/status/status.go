// Package status classifies free-text race-outcome labels into a
// finish / DNF / unclassified taxonomy and, for DNFs, a failure-cause
// sub-type. It is the single classification implementation in the
// pipeline: the merge, master and validate stages all call into this
// package so the derivation can never drift between call sites.
//
// Matching is deliberately plain: case-insensitive substring scans over
// closed keyword vocabularies. The label set is bounded (~139 strings),
// so ordering of the checks matters more than matching sophistication.
package status

import "strings"

// DNFType is the failure-cause sub-category of a DNF.
type DNFType string

// DNF sub-type values. DNFTypeNone means the label is not a DNF at all.
const (
	DNFTypeMechanical DNFType = "mechanical"
	DNFTypeCrash      DNFType = "crash"
	DNFTypeOther      DNFType = "other"
	DNFTypeNone       DNFType = ""
)

// Classification is the full verdict for one status label.
type Classification struct {
	IsDNF    bool
	IsFinish bool
	DNFType  DNFType
}

// isLappedFinisher reports whether a lowercased label is a "+N Lap(s)"
// style classified finisher. Such labels are never DNFs regardless of
// any keyword overlap.
func isLappedFinisher(lower string) bool {
	return strings.HasPrefix(lower, "+") && strings.Contains(lower, "lap")
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsDNF reports whether the label represents a DNF of any kind.
// Empty labels are not DNFs.
func IsDNF(label string) bool {
	if label == "" {
		return false
	}
	lower := strings.ToLower(label)
	if isLappedFinisher(lower) {
		return false
	}
	return containsAny(lower, DNFKeywords)
}

// IsFinish reports whether the label represents a classified finisher,
// either outright ("Finished") or lapped ("+2 Laps", "lapped").
func IsFinish(label string) bool {
	if label == "" {
		return false
	}
	lower := strings.ToLower(label)
	if containsAny(lower, FinishKeywords) {
		return true
	}
	if isLappedFinisher(lower) {
		return true
	}
	return containsAny(lower, LappedPatterns)
}

// ClassifyDNFType returns the failure-cause sub-type for a DNF label.
// The mechanical vocabulary is checked before the crash vocabulary, so
// a label matching both resolves mechanical. Non-DNF labels return
// DNFTypeNone.
func ClassifyDNFType(label string) DNFType {
	if !IsDNF(label) {
		return DNFTypeNone
	}
	lower := strings.ToLower(label)
	if containsAny(lower, MechanicalKeywords) {
		return DNFTypeMechanical
	}
	if containsAny(lower, CrashKeywords) {
		return DNFTypeCrash
	}
	return DNFTypeOther
}

// Classify evaluates one possibly-absent label. A nil label yields the
// zero Classification: not a DNF, not a finish, no sub-type.
func Classify(label *string) Classification {
	if label == nil {
		return Classification{}
	}
	return Classification{
		IsDNF:    IsDNF(*label),
		IsFinish: IsFinish(*label),
		DNFType:  ClassifyDNFType(*label),
	}
}

// ClassifyAll applies Classify across an ordered label sequence,
// producing one index-aligned verdict per input element.
func ClassifyAll(labels []*string) []Classification {
	out := make([]Classification, len(labels))
	for i, label := range labels {
		out[i] = Classify(label)
	}
	return out
}
