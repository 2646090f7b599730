package casefile

import (
	"errors"
	"fmt"
)

// Status is the stage label of a case.
type Status string

const (
	StatusDocumentsPending   Status = "documents_pending"
	StatusApplicationPending Status = "application_pending"
	StatusApplicationFiled   Status = "application_filed"
	StatusArbitrationFiled   Status = "arbitration_filed"
	StatusArbitrationPending Status = "arbitration_pending"
	StatusEnforcement        Status = "enforcement"
	StatusClosed             Status = "closed"

	// StatusUnderReview is returned for cases whose category is not in the catalog.
	StatusUnderReview Status = "under_review"
)

// ErrInvalidTransition is returned by CanTransition for disallowed stage changes.
var ErrInvalidTransition = errors.New("invalid status transition")

var stages = []Status{
	StatusDocumentsPending,
	StatusApplicationPending,
	StatusApplicationFiled,
	StatusArbitrationFiled,
	StatusArbitrationPending,
	StatusEnforcement,
	StatusClosed,
}

var statusLabels = map[Status]string{
	StatusDocumentsPending:   "Evrak Bekleniyor",
	StatusApplicationPending: "Başvuru Bekleniyor",
	StatusApplicationFiled:   "Başvuru Yapıldı",
	StatusArbitrationFiled:   "Tahkime Başvuruldu",
	StatusArbitrationPending: "Tahkim Sürecinde",
	StatusEnforcement:        "İcra",
	StatusClosed:             "Kapandı",
	StatusUnderReview:        "İnceleniyor",
}

// Statuses returns the ordered stages.
func Statuses() []Status {
	return append([]Status(nil), stages...)
}

// Label returns the display label of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Index is the position of s in the stage order, -1 for statuses outside it.
func (s Status) Index() int {
	for i, st := range stages {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is a known stage or the review fallback.
func (s Status) IsValid() bool {
	return s.Index() >= 0 || s == StatusUnderReview
}

// IsTerminal reports whether s is the absorbing closed stage.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// IsAutomatic reports whether s is one of the stages driven by documents.
func (s Status) IsAutomatic() bool {
	return s == StatusDocumentsPending || s == StatusApplicationPending
}

// KindSet is the set of distinct document kinds uploaded for a case.
type KindSet map[Kind]struct{}

// NewKindSet builds a set from a list, duplicates collapse.
func NewKindSet(kinds ...Kind) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s KindSet) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// DeriveStatus maps a category and its uploaded kinds to the automatic stage.
// Only presence counts; MinCount is not enforced.
func DeriveStatus(category Category, uploaded KindSet) Status {
	docs, ok := RequiredDocuments(category)
	if !ok {
		return StatusUnderReview
	}
	for _, d := range docs {
		if !uploaded.Has(d.Kind) {
			return StatusDocumentsPending
		}
	}
	return StatusApplicationPending
}

// Recompute returns the status a case should carry after its documents
// changed. Manual stages and closed pass through untouched.
func Recompute(current Status, category Category, uploaded KindSet) Status {
	if current != "" && !current.IsAutomatic() && current != StatusUnderReview {
		return current
	}
	return DeriveStatus(category, uploaded)
}

// CanTransition validates a manual stage change.
func CanTransition(from, to Status) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: case is closed", ErrInvalidTransition)
	}
	if to.IsAutomatic() || to.Index() < 0 {
		return fmt.Errorf("%w: %s cannot be set manually", ErrInvalidTransition, to)
	}
	if to == StatusClosed {
		return nil
	}
	// Until every required document is in, a case may only be closed
	if from == StatusUnderReview || from.Index() < StatusApplicationPending.Index() {
		return fmt.Errorf("%w: required documents are missing", ErrInvalidTransition)
	}
	if to.Index() <= from.Index() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ChecklistItem is the upload progress of one required document.
type ChecklistItem struct {
	RequiredDocument
	Uploaded  int  `json:"uploaded"`
	Satisfied bool `json:"satisfied"`
	Complete  bool `json:"complete"`
}

// Checklist reports, per required document of the category, how many
// uploads exist. Unknown categories yield an empty list.
func Checklist(category Category, counts map[Kind]int) []ChecklistItem {
	docs, ok := RequiredDocuments(category)
	if !ok {
		return []ChecklistItem{}
	}
	items := make([]ChecklistItem, 0, len(docs))
	for _, d := range docs {
		n := counts[d.Kind]
		items = append(items, ChecklistItem{
			RequiredDocument: d,
			Uploaded:         n,
			Satisfied:        n > 0,
			Complete:         n >= d.MinCount,
		})
	}
	return items
}

// MissingLabels lists labels of required documents absent from uploaded.
func MissingLabels(category Category, uploaded KindSet) []string {
	docs, _ := RequiredDocuments(category)
	var missing []string
	for _, d := range docs {
		if !uploaded.Has(d.Kind) {
			missing = append(missing, d.Label)
		}
	}
	return missing
}
