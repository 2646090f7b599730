package casefile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredSet(t *testing.T, category Category) KindSet {
	docs, ok := RequiredDocuments(category)
	require.True(t, ok)
	set := KindSet{}
	for _, d := range docs {
		set[d.Kind] = struct{}{}
	}
	return set
}

func TestDeriveStatus(t *testing.T) {
	t.Run("parts and labor with two documents is pending", func(t *testing.T) {
		got := DeriveStatus(CategoryPartsLabor, NewKindSet(KindVictimRegistration, KindPowerOfAttorney))
		assert.Equal(t, StatusDocumentsPending, got)
	})

	t.Run("parts and labor with all eight documents is ready", func(t *testing.T) {
		got := DeriveStatus(CategoryPartsLabor, NewKindSet(
			KindVictimRegistration, KindScenePhoto, KindRepairPhoto, KindIBAN,
			KindPowerOfAttorney, KindPartsPhoto, KindPartsInvoice, KindExpertReport,
		))
		assert.Equal(t, StatusApplicationPending, got)
	})

	t.Run("unknown category falls back to review", func(t *testing.T) {
		assert.Equal(t, StatusUnderReview, DeriveStatus("bilinmeyen", NewKindSet(KindIBAN)))
		assert.Equal(t, StatusUnderReview, DeriveStatus("", nil))
	})

	t.Run("extra kinds do not matter", func(t *testing.T) {
		set := requiredSet(t, CategoryVehicleDeprived)
		set[KindSettlementReceipt] = struct{}{}
		set["rastgele"] = struct{}{}
		assert.Equal(t, StatusApplicationPending, DeriveStatus(CategoryVehicleDeprived, set))
	})

	t.Run("superset rule holds for every category", func(t *testing.T) {
		for _, ft := range FileTypes() {
			full := requiredSet(t, ft.Category)
			assert.Equal(t, StatusApplicationPending, DeriveStatus(ft.Category, full), ft.Category)

			for _, d := range ft.Documents {
				partial := KindSet{}
				for k := range full {
					if k != d.Kind {
						partial[k] = struct{}{}
					}
				}
				assert.Equal(t, StatusDocumentsPending, DeriveStatus(ft.Category, partial), "%s without %s", ft.Category, d.Kind)
			}
		}
	})

	t.Run("adding kinds never moves status backwards", func(t *testing.T) {
		for _, ft := range FileTypes() {
			set := KindSet{}
			prev := DeriveStatus(ft.Category, set)
			for _, d := range ft.Documents {
				set[d.Kind] = struct{}{}
				next := DeriveStatus(ft.Category, set)
				assert.GreaterOrEqual(t, next.Index(), prev.Index())
				prev = next
			}
			assert.Equal(t, StatusApplicationPending, prev)
		}
	})
}

func TestRecompute(t *testing.T) {
	full := requiredSet(t, CategoryValueLoss)

	assert.Equal(t, StatusApplicationPending, Recompute(StatusDocumentsPending, CategoryValueLoss, full))
	assert.Equal(t, StatusDocumentsPending, Recompute(StatusApplicationPending, CategoryValueLoss, KindSet{}))
	assert.Equal(t, StatusApplicationPending, Recompute("", CategoryValueLoss, full))

	for _, manual := range []Status{StatusApplicationFiled, StatusArbitrationFiled, StatusEnforcement, StatusClosed} {
		assert.Equal(t, manual, Recompute(manual, CategoryValueLoss, KindSet{}), manual)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"file when ready", StatusApplicationPending, StatusApplicationFiled, true},
		{"file with missing documents", StatusDocumentsPending, StatusApplicationFiled, false},
		{"arbitration with missing documents", StatusDocumentsPending, StatusArbitrationFiled, false},
		{"enforcement with missing documents", StatusDocumentsPending, StatusEnforcement, false},
		{"arbitration from review", StatusUnderReview, StatusArbitrationFiled, false},
		{"close from review", StatusUnderReview, StatusClosed, true},
		{"arbitration when ready", StatusApplicationPending, StatusArbitrationFiled, true},
		{"forward manual", StatusApplicationFiled, StatusArbitrationFiled, true},
		{"skip ahead", StatusApplicationFiled, StatusEnforcement, true},
		{"backwards", StatusArbitrationPending, StatusArbitrationFiled, false},
		{"same stage", StatusEnforcement, StatusEnforcement, false},
		{"close from pending", StatusDocumentsPending, StatusClosed, true},
		{"leave closed", StatusClosed, StatusEnforcement, false},
		{"close twice", StatusClosed, StatusClosed, false},
		{"automatic target", StatusApplicationFiled, StatusApplicationPending, false},
		{"unknown target", StatusApplicationFiled, "yok", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
			}
		})
	}
}

func TestChecklist(t *testing.T) {
	items := Checklist(CategoryPartsLabor, map[Kind]int{KindScenePhoto: 1, KindIBAN: 3})
	require.Len(t, items, 8)

	byKind := map[Kind]ChecklistItem{}
	for _, it := range items {
		byKind[it.Kind] = it
	}

	scene := byKind[KindScenePhoto]
	assert.Equal(t, 2, scene.MinCount)
	assert.True(t, scene.Satisfied)
	assert.False(t, scene.Complete)

	assert.True(t, byKind[KindIBAN].Complete)
	assert.False(t, byKind[KindExpertReport].Satisfied)

	assert.Empty(t, Checklist("yok", nil))
}

func TestMissingLabels(t *testing.T) {
	missing := MissingLabels(CategoryVehicleDeprived, NewKindSet(KindAccidentReport, KindIBAN))
	assert.ElementsMatch(t, []string{
		"Mağdur Araç Ruhsatı", "Servis Giriş-Çıkış Belgesi", "Eksper Raporu", "Vekaletname",
	}, missing)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Evrak Bekleniyor", StatusDocumentsPending.Label())
	assert.Equal(t, "Kapandı", StatusClosed.Label())
	assert.Equal(t, "garip", Status("garip").Label())
	assert.True(t, StatusUnderReview.IsValid())
	assert.False(t, Status("garip").IsValid())
}
