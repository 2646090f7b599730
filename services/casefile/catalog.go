// Package casefile holds the static case category catalog, the status rules
// derived from uploaded documents and the outcome document visibility table.
package casefile

// Category identifies the type of claim a case was opened for.
type Category string

const (
	CategoryValueLoss        Category = "deger-kaybi"
	CategoryPartsLabor       Category = "parca-iscilik-farki"
	CategoryVehicleDeprived  Category = "arac-mahrumiyeti"
	CategoryTotalLossDiffers Category = "pert-farki"
)

// Kind identifies what an uploaded document is (e.g. power of attorney).
type Kind string

const (
	KindAccidentReport     Kind = "kaza-tutanagi"
	KindVictimRegistration Kind = "masdur-ruhsati"
	KindOtherRegistration  Kind = "karsi-ruhsat"
	KindVictimLicense      Kind = "masdur-ehliyet"
	KindScenePhoto         Kind = "olay-yeri-foto"
	KindRepairPhoto        Kind = "onarim-foto"
	KindIBAN               Kind = "iban-bilgisi"
	KindPowerOfAttorney    Kind = "vekalet"
	KindPartsPhoto         Kind = "parca-farki-foto"
	KindPartsInvoice       Kind = "parca-farki-fatura"
	KindExpertReport       Kind = "eksper-raporu"
	KindServiceEntryExit   Kind = "servis-giris-cikis"
	KindTotalLossLetter    Kind = "pert-yazisi"
	KindInsurerPayment     Kind = "sigorta-odeme-dekontu"
)

// RequiredDocument is one mandatory document kind of a category.
// MinCount is shown to users; status derivation only checks presence.
type RequiredDocument struct {
	Kind     Kind   `json:"kind"`
	Label    string `json:"label"`
	MinCount int    `json:"min_count"`
}

// FileType is a category together with its display label and requirements.
type FileType struct {
	Category  Category           `json:"category"`
	Label     string             `json:"label"`
	Documents []RequiredDocument `json:"documents"`
}

var kindLabels = map[Kind]string{
	KindAccidentReport:     "Kaza Tespit Tutanağı",
	KindVictimRegistration: "Mağdur Araç Ruhsatı",
	KindOtherRegistration:  "Karşı Araç Ruhsatı",
	KindVictimLicense:      "Mağdur Sürücü Ehliyeti",
	KindScenePhoto:         "Olay Yeri Fotoğrafları",
	KindRepairPhoto:        "Onarım Fotoğrafları",
	KindIBAN:               "IBAN Bilgisi",
	KindPowerOfAttorney:    "Vekaletname",
	KindPartsPhoto:         "Parça Farkı Fotoğrafları",
	KindPartsInvoice:       "Parça Farkı Faturası",
	KindExpertReport:       "Eksper Raporu",
	KindServiceEntryExit:   "Servis Giriş-Çıkış Belgesi",
	KindTotalLossLetter:    "Pert Yazısı",
	KindInsurerPayment:     "Sigorta Ödeme Dekontu",
}

func req(kind Kind, minCount int) RequiredDocument {
	return RequiredDocument{Kind: kind, Label: kindLabels[kind], MinCount: minCount}
}

// fileTypes is built once at package init and never written afterwards.
var fileTypes = []FileType{
	{
		Category: CategoryValueLoss,
		Label:    "Değer Kaybı",
		Documents: []RequiredDocument{
			req(KindAccidentReport, 1),
			req(KindVictimRegistration, 1),
			req(KindOtherRegistration, 1),
			req(KindVictimLicense, 1),
			req(KindScenePhoto, 2),
			req(KindRepairPhoto, 1),
			req(KindExpertReport, 1),
			req(KindIBAN, 1),
			req(KindPowerOfAttorney, 1),
		},
	},
	{
		Category: CategoryPartsLabor,
		Label:    "Parça ve İşçilik Farkı",
		Documents: []RequiredDocument{
			req(KindVictimRegistration, 1),
			req(KindScenePhoto, 2),
			req(KindRepairPhoto, 1),
			req(KindIBAN, 1),
			req(KindPowerOfAttorney, 1),
			req(KindPartsPhoto, 1),
			req(KindPartsInvoice, 1),
			req(KindExpertReport, 1),
		},
	},
	{
		Category: CategoryVehicleDeprived,
		Label:    "Araç Mahrumiyeti",
		Documents: []RequiredDocument{
			req(KindAccidentReport, 1),
			req(KindVictimRegistration, 1),
			req(KindServiceEntryExit, 1),
			req(KindExpertReport, 1),
			req(KindIBAN, 1),
			req(KindPowerOfAttorney, 1),
		},
	},
	{
		Category: CategoryTotalLossDiffers,
		Label:    "Pert Farkı",
		Documents: []RequiredDocument{
			req(KindAccidentReport, 1),
			req(KindVictimRegistration, 1),
			req(KindTotalLossLetter, 1),
			req(KindExpertReport, 1),
			req(KindInsurerPayment, 1),
			req(KindIBAN, 1),
			req(KindPowerOfAttorney, 1),
		},
	},
}

var fileTypeIndex = func() map[Category]int {
	idx := make(map[Category]int, len(fileTypes))
	for i, ft := range fileTypes {
		idx[ft.Category] = i
	}
	return idx
}()

// FileTypes returns the catalog in display order.
func FileTypes() []FileType {
	out := make([]FileType, len(fileTypes))
	for i, ft := range fileTypes {
		out[i] = FileType{
			Category:  ft.Category,
			Label:     ft.Label,
			Documents: append([]RequiredDocument(nil), ft.Documents...),
		}
	}
	return out
}

// RequiredDocuments returns the mandatory documents of a category and false
// when the category is unknown.
func RequiredDocuments(category Category) ([]RequiredDocument, bool) {
	i, ok := fileTypeIndex[category]
	if !ok {
		return nil, false
	}
	return append([]RequiredDocument(nil), fileTypes[i].Documents...), true
}

// IsValidCategory reports whether the category exists in the catalog.
func IsValidCategory(category Category) bool {
	_, ok := fileTypeIndex[category]
	return ok
}

// CategoryLabel returns the display label, or the raw value for unknown categories.
func CategoryLabel(category Category) string {
	if i, ok := fileTypeIndex[category]; ok {
		return fileTypes[i].Label
	}
	return string(category)
}

// KindLabel returns the display label of a document kind. Result kinds are
// looked up too; unknown kinds fall back to the raw identifier.
func KindLabel(kind Kind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	if rd, ok := resultDocument(kind); ok {
		return rd.Label
	}
	return string(kind)
}

// IsRequiredKind reports whether kind is mandatory for the category.
func IsRequiredKind(category Category, kind Kind) bool {
	docs, ok := RequiredDocuments(category)
	if !ok {
		return false
	}
	for _, d := range docs {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
