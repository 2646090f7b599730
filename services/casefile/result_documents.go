package casefile

// Audience is who a document list is being prepared for.
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceDealer   Audience = "dealer"
	AudienceAdmin    Audience = "admin"
)

// ResultDocument is an outcome-stage document kind with per-audience visibility.
type ResultDocument struct {
	Kind              Kind   `json:"kind"`
	Label             string `json:"label"`
	VisibleToCustomer bool   `json:"visible_to_customer"`
	VisibleToDealer   bool   `json:"visible_to_dealer"`
}

const (
	KindSettlementReceipt   Kind = "sulh-makbuzu"
	KindArbitrationDecision Kind = "hakem-karari"
	KindWitnessReport       Kind = "bilirkisi-raporu"
	KindInsurerResponse     Kind = "sigorta-cevabi"
	KindEnforcementFile     Kind = "icra-dosyasi"
	KindPaymentReceipt      Kind = "odeme-dekontu"
)

var resultDocuments = []ResultDocument{
	{Kind: KindSettlementReceipt, Label: "Sulh Makbuzu", VisibleToCustomer: true, VisibleToDealer: true},
	{Kind: KindArbitrationDecision, Label: "Hakem Heyeti Kararı", VisibleToCustomer: true, VisibleToDealer: true},
	{Kind: KindWitnessReport, Label: "Bilirkişi Raporu", VisibleToCustomer: false, VisibleToDealer: true},
	{Kind: KindInsurerResponse, Label: "Sigorta Şirketi Cevabı", VisibleToCustomer: false, VisibleToDealer: false},
	{Kind: KindEnforcementFile, Label: "İcra Dosyası", VisibleToCustomer: false, VisibleToDealer: true},
	{Kind: KindPaymentReceipt, Label: "Ödeme Dekontu", VisibleToCustomer: true, VisibleToDealer: true},
}

// ResultDocuments returns the full outcome catalog.
func ResultDocuments() []ResultDocument {
	return append([]ResultDocument(nil), resultDocuments...)
}

// VisibleResultDocuments filters the catalog for an audience, keeping order.
// Callers must reject unknown audiences before calling.
func VisibleResultDocuments(audience Audience) []ResultDocument {
	out := make([]ResultDocument, 0, len(resultDocuments))
	for _, rd := range resultDocuments {
		if visibleTo(rd, audience) {
			out = append(out, rd)
		}
	}
	return out
}

func visibleTo(rd ResultDocument, audience Audience) bool {
	switch audience {
	case AudienceAdmin:
		return true
	case AudienceCustomer:
		return rd.VisibleToCustomer
	case AudienceDealer:
		return rd.VisibleToDealer
	}
	return false
}

func resultDocument(kind Kind) (ResultDocument, bool) {
	for _, rd := range resultDocuments {
		if rd.Kind == kind {
			return rd, true
		}
	}
	return ResultDocument{}, false
}

// IsResultKind reports whether kind is an outcome document.
func IsResultKind(kind Kind) bool {
	_, ok := resultDocument(kind)
	return ok
}

// CanSeeDocument gates a single document by kind. Non-result kinds are
// visible to everyone allowed to see the case.
func CanSeeDocument(audience Audience, kind Kind) bool {
	rd, ok := resultDocument(kind)
	if !ok {
		return true
	}
	return visibleTo(rd, audience)
}

// AudienceForRole maps an application role to a visibility audience.
func AudienceForRole(role string) (Audience, bool) {
	switch role {
	case "admin", "personel":
		return AudienceAdmin, true
	case "bayi":
		return AudienceDealer, true
	case "musteri":
		return AudienceCustomer, true
	}
	return "", false
}
