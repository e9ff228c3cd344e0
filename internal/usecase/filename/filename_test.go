package filename

import (
	"testing"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeriver(t *testing.T) *Deriver {
	t.Helper()

	d, err := New("^[Ff]", "^[Bb]")
	require.NoError(t, err)

	return d
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name       string
		docType    entity.DocumentType
		documentID string
		want       string
	}{
		{"factura", entity.Invoice, "F123-45678", "20123456789-01-F123-45678.xml"},
		{"factura lowercase", entity.Invoice, "f001-1", "20123456789-01-f001-1.xml"},
		{"boleta", entity.Invoice, "B001-123", "20123456789-03-B001-123.xml"},
		{"credit note", entity.CreditNote, "FC01-1", "20123456789-07-FC01-1.xml"},
		{"debit note", entity.DebitNote, "FD01-1", "20123456789-08-FD01-1.xml"},
		{"voided", entity.VoidedDocument, "RA-20200328-1", "20123456789-RA-20200328-1.xml"},
		{"summary", entity.SummaryDocument, "RC-20200328-1", "20123456789-RC-20200328-1.xml"},
	}

	d := newDeriver(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Derive(tt.docType, "20123456789", tt.documentID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveSeriesDetection(t *testing.T) {
	_, err := newDeriver(t).Derive(entity.Invoice, "20123456789", "X001-1")
	require.ErrorIs(t, err, errs.ErrSeriesDetection)
}

func TestDeriveUnsupportedType(t *testing.T) {
	_, err := newDeriver(t).Derive(entity.DocumentType("Order"), "20123456789", "O-1")
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	var unsupported *errs.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Order", unsupported.Type)
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := newDeriver(t)

	first, err := d.Derive(entity.Invoice, "20123456789", "B001-9")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := d.Derive(entity.Invoice, "20123456789", "B001-9")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCustomPatterns(t *testing.T) {
	d, err := New("^E", "^EB")
	require.NoError(t, err)

	got, err := d.Derive(entity.Invoice, "1", "E001-1")
	require.NoError(t, err)
	assert.Equal(t, "1-01-E001-1.xml", got)

	_, err = New("[", "^B")
	require.Error(t, err)
}
