package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	t.Run("parts and labor requirements", func(t *testing.T) {
		docs, ok := RequiredDocuments(CategoryPartsLabor)
		assert.True(t, ok)

		var got []Kind
		for _, d := range docs {
			got = append(got, d.Kind)
			assert.NotEmpty(t, d.Label)
			assert.GreaterOrEqual(t, d.MinCount, 1)
		}
		assert.Equal(t, []Kind{
			KindVictimRegistration, KindScenePhoto, KindRepairPhoto, KindIBAN,
			KindPowerOfAttorney, KindPartsPhoto, KindPartsInvoice, KindExpertReport,
		}, got)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, ok := RequiredDocuments("yok")
		assert.False(t, ok)
		assert.False(t, IsValidCategory("yok"))
		assert.Equal(t, "yok", CategoryLabel("yok"))
	})

	t.Run("callers cannot mutate the catalog", func(t *testing.T) {
		types := FileTypes()
		types[0].Documents[0].Label = "bozuk"
		docs, _ := RequiredDocuments(types[0].Category)
		assert.NotEqual(t, "bozuk", docs[0].Label)
	})

	t.Run("required kind lookup", func(t *testing.T) {
		assert.True(t, IsRequiredKind(CategoryTotalLossDiffers, KindTotalLossLetter))
		assert.False(t, IsRequiredKind(CategoryValueLoss, KindTotalLossLetter))
		assert.Equal(t, "Pert Farkı", CategoryLabel(CategoryTotalLossDiffers))
	})

	t.Run("result kinds never overlap required kinds", func(t *testing.T) {
		for _, rd := range ResultDocuments() {
			for _, ft := range FileTypes() {
				assert.False(t, IsRequiredKind(ft.Category, rd.Kind))
			}
		}
	})
}
