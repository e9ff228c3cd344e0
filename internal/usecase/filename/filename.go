package filename

import (
	"fmt"
	"regexp"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
)

const (
	facturaCode    = "01"
	boletaCode     = "03"
	creditNoteCode = "07"
	debitNoteCode  = "08"
)

const extension = ".xml"

// Deriver builds the SUNAT file name of a document.
type Deriver struct {
	factura *regexp.Regexp
	boleta  *regexp.Regexp
}

func New(facturaPattern, boletaPattern string) (*Deriver, error) {
	factura, err := regexp.Compile(facturaPattern)
	if err != nil {
		return nil, fmt.Errorf("filename - New - regexp.Compile factura: %w", err)
	}

	boleta, err := regexp.Compile(boletaPattern)
	if err != nil {
		return nil, fmt.Errorf("filename - New - regexp.Compile boleta: %w", err)
	}

	return &Deriver{
		factura: factura,
		boleta:  boleta,
	}, nil
}

// Derive returns {taxpayerId}-{code}-{documentId}.xml, or {taxpayerId}-{documentId}.xml
// for summaries and voided documents.
func (d *Deriver) Derive(docType entity.DocumentType, taxpayerID, documentID string) (string, error) {
	var code string

	switch docType {
	case entity.Invoice:
		switch {
		case d.factura.MatchString(documentID):
			code = facturaCode
		case d.boleta.MatchString(documentID):
			code = boletaCode
		default:
			return "", fmt.Errorf("Deriver - Derive - %s: %w", documentID, errs.ErrSeriesDetection)
		}
	case entity.CreditNote:
		code = creditNoteCode
	case entity.DebitNote:
		code = debitNoteCode
	case entity.VoidedDocument, entity.SummaryDocument:
		return taxpayerID + "-" + documentID + extension, nil
	default:
		return "", fmt.Errorf("Deriver - Derive: %w", &errs.UnsupportedTypeError{Type: string(docType)})
	}

	return taxpayerID + "-" + code + "-" + documentID + extension, nil
}
