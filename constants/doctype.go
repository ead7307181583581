package constants

// DocumentType classifies an uploaded expense document.
type DocumentType string

const (
	DocFiscal       DocumentType = "fiscal"
	DocTicket       DocumentType = "ticket"
	DocBoarding     DocumentType = "boarding"
	DocHotel        DocumentType = "hotel"
	DocConfirmation DocumentType = "confirmation"
	DocOther        DocumentType = "other"
)

// RequiresAmount reports whether a document of this type must carry a
// monetary amount. Boarding passes and booking confirmations are kept for
// the paper trail only.
func (t DocumentType) RequiresAmount() bool {
	switch t {
	case DocBoarding, DocConfirmation:
		return false
	default:
		return true
	}
}

// ParseDocumentType maps a stored string onto a DocumentType, defaulting
// to DocFiscal for empty input.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocTicket, DocBoarding, DocHotel, DocConfirmation, DocOther:
		return DocumentType(s)
	default:
		return DocFiscal
	}
}
