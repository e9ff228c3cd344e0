package ubl

import (
	"testing"

	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoice21 = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
	<cbc:UBLVersionID>2.1</cbc:UBLVersionID>
	<cbc:ID>F123-45678</cbc:ID>
	<cac:Signature>
		<cbc:ID>IDSignKG</cbc:ID>
	</cac:Signature>
	<cac:AccountingSupplierParty>
		<cac:Party>
			<cac:PartyIdentification>
				<cbc:ID schemeID="6">20123456789</cbc:ID>
			</cac:PartyIdentification>
		</cac:Party>
	</cac:AccountingSupplierParty>
	<cac:AccountingCustomerParty>
		<cac:Party>
			<cac:PartyIdentification>
				<cbc:ID schemeID="6">20999999999</cbc:ID>
			</cac:PartyIdentification>
		</cac:Party>
	</cac:AccountingCustomerParty>
</Invoice>`

const voided20 = `<?xml version="1.0" encoding="ISO-8859-1"?>
<VoidedDocuments xmlns="urn:sunat:names:specification:ubl:peru:schema:xsd:VoidedDocuments-1"
	xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
	<cbc:ID>RA-20200328-1</cbc:ID>
	<cac:AccountingSupplierParty>
		<cbc:CustomerAssignedAccountID>20123456789</cbc:CustomerAssignedAccountID>
		<cbc:AdditionalAccountID>6</cbc:AdditionalAccountID>
		<cac:Party>
			<cac:PartyLegalEntity>
				<cbc:RegistrationName>Compa` + "\xf1" + `ia</cbc:RegistrationName>
			</cac:PartyLegalEntity>
		</cac:Party>
	</cac:AccountingSupplierParty>
</VoidedDocuments>`

func TestReadInvoice(t *testing.T) {
	doc, err := New().Read([]byte(invoice21))
	require.NoError(t, err)

	assert.Equal(t, "Invoice", doc.Type)
	assert.Equal(t, "F123-45678", doc.DocumentID)
	assert.Equal(t, "20123456789", doc.TaxpayerID)
}

func TestReadVoidedDocumentsLatin1(t *testing.T) {
	doc, err := New().Read([]byte(voided20))
	require.NoError(t, err)

	assert.Equal(t, "VoidedDocuments", doc.Type)
	assert.Equal(t, "RA-20200328-1", doc.DocumentID)
	assert.Equal(t, "20123456789", doc.TaxpayerID)
}

func TestReadUnknownRootIsNotAnError(t *testing.T) {
	raw := `<Order xmlns:cbc="c" xmlns:cac="a"><cbc:ID>O-1</cbc:ID>` +
		`<cac:AccountingSupplierParty><cbc:CustomerAssignedAccountID>1</cbc:CustomerAssignedAccountID>` +
		`</cac:AccountingSupplierParty></Order>`

	doc, err := New().Read([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Order", doc.Type)
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"not xml", "hello world"},
		{"truncated", "<Invoice><cbc:ID>F1-1</cbc:ID>"},
		{"missing document id", `<Invoice><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty></Invoice>`},
		{"missing taxpayer id", `<Invoice><ID>F1-1</ID></Invoice>`},
		{"garbage after supplier", `<Invoice xmlns:cbc="c" xmlns:cac="a"><cbc:ID>F001-1</cbc:ID>` +
			`<cac:AccountingSupplierParty><cbc:CustomerAssignedAccountID>20123456789</cbc:CustomerAssignedAccountID>` +
			`</cac:AccountingSupplierParty><cac:InvoiceLine><<<<garbage & not xml`},
		{"unclosed root", `<Invoice><ID>F1-1</ID><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty>`},
		{"mismatched tag", `<Invoice><ID>F1-1</ID><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty></Note></Invoice>`},
		{"trailing text", `<Invoice><ID>F1-1</ID><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty></Invoice>tail`},
		{"second root", `<Invoice><ID>F1-1</ID><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty></Invoice><Invoice/>`},
		{"nested id is not document id", `<Invoice><Signature><ID>S</ID></Signature><AccountingSupplierParty><CustomerAssignedAccountID>1</CustomerAssignedAccountID></AccountingSupplierParty></Invoice>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Read([]byte(tt.data))
			require.ErrorIs(t, err, errs.ErrMalformedInput)
		})
	}
}
