package ubl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andreyxaxa/ubl-sender/internal/dto"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	supplierParty       = "AccountingSupplierParty"
	party               = "Party"
	partyIdentification = "PartyIdentification"
	customerAssignedID  = "CustomerAssignedAccountID"
	idElement           = "ID"
)

// Reader extracts the fields needed for routing from a UBL document.
// The whole input is decoded, so a document that is not well-formed is
// rejected even when the routing fields come before the damage.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) Read(data []byte) (dto.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return dto.Document{}, fmt.Errorf("Reader - Read - empty document: %w", errs.ErrMalformedInput)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var (
		doc  dto.Document
		path []string
		text strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return dto.Document{}, fmt.Errorf("Reader - Read - dec.Token: %w: %w", errs.ErrMalformedInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(path) == 0 {
				if doc.Type != "" {
					return dto.Document{}, fmt.Errorf("Reader - Read - second root element %s: %w", t.Name.Local, errs.ErrMalformedInput)
				}
				doc.Type = t.Name.Local
			}
			path = append(path, t.Name.Local)
			text.Reset()
		case xml.CharData:
			if len(path) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return dto.Document{}, fmt.Errorf("Reader - Read - text outside root element: %w", errs.ErrMalformedInput)
			}
			text.Write(t)
		case xml.EndElement:
			value := strings.TrimSpace(text.String())
			text.Reset()

			switch {
			case isDocumentID(path) && doc.DocumentID == "":
				doc.DocumentID = value
			case isTaxpayerID(path) && doc.TaxpayerID == "":
				doc.TaxpayerID = value
			}
			path = path[:len(path)-1]
		}
	}

	switch {
	case len(path) > 0:
		return dto.Document{}, fmt.Errorf("Reader - Read - unclosed element %s: %w", path[len(path)-1], errs.ErrMalformedInput)
	case doc.Type == "":
		return dto.Document{}, fmt.Errorf("Reader - Read - no root element: %w", errs.ErrMalformedInput)
	case doc.DocumentID == "":
		return dto.Document{}, fmt.Errorf("Reader - Read - missing document id: %w", errs.ErrMalformedInput)
	case doc.TaxpayerID == "":
		return dto.Document{}, fmt.Errorf("Reader - Read - missing taxpayer id: %w", errs.ErrMalformedInput)
	}

	return doc, nil
}

// root/cbc:ID
func isDocumentID(path []string) bool {
	return len(path) == 2 && path[1] == idElement
}

// root/cac:AccountingSupplierParty/cbc:CustomerAssignedAccountID (UBL 2.0)
// root/cac:AccountingSupplierParty/cac:Party/cac:PartyIdentification/cbc:ID (UBL 2.1)
func isTaxpayerID(path []string) bool {
	if len(path) < 3 || path[1] != supplierParty {
		return false
	}

	switch len(path) {
	case 3:
		return path[2] == customerAssignedID
	case 5:
		return path[2] == party && path[3] == partyIdentification && path[4] == idElement
	}

	return false
}

// SUNAT documents are frequently encoded as ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charsetReader - ianaindex.IANA.Encoding: %w", err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charsetReader: unsupported charset %q", label)
	}

	return enc.NewDecoder().Reader(input), nil
}
