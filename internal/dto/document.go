package dto

// Document is what the classifier extracts from a UBL file.
type Document struct {
	Type       string
	TaxpayerID string
	DocumentID string
}

// SendResult is the tax authority's answer to an accepted file.
type SendResult struct {
	// CDR is the zipped ApplicationResponse returned by sendBill.
	CDR []byte
	// Ticket is returned by sendSummary; the CDR is fetched later with it.
	Ticket string
	// CDRError is set when the file was accepted but its CDR could not be decoded.
	CDRError string
}
