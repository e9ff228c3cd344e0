package entity

// DocumentType is the closed set of UBL documents the service can deliver.
type DocumentType string

const (
	Invoice         DocumentType = "Invoice"
	CreditNote      DocumentType = "CreditNote"
	DebitNote       DocumentType = "DebitNote"
	VoidedDocument  DocumentType = "VoidedDocuments"
	SummaryDocument DocumentType = "SummaryDocuments"
)

var documentTypes = map[string]DocumentType{
	string(Invoice):         Invoice,
	string(CreditNote):      CreditNote,
	string(DebitNote):       DebitNote,
	string(VoidedDocument):  VoidedDocument,
	string(SummaryDocument): SummaryDocument,
}

// DocumentTypeFromRoot looks up the UBL root element name.
func DocumentTypeFromRoot(root string) (DocumentType, bool) {
	t, ok := documentTypes[root]
	return t, ok
}

// Summarized reports whether the document goes through the asynchronous
// sendSummary/ticket flow instead of sendBill.
func (t DocumentType) Summarized() bool {
	return t == VoidedDocument || t == SummaryDocument
}
