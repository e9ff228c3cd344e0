package sunat

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/dto"
	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
)

const maxResponseSize = 10 << 20

// Client talks to the SUNAT billService.
type Client struct {
	httpClient *http.Client
	username   string
	password   string
}

func New(username, password string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		username:   username,
		password:   password,
	}
}

// Send zips the document and calls sendBill or sendSummary depending on its type.
func (c *Client) Send(ctx context.Context, serverURL, filename string, docType entity.DocumentType, data []byte) (dto.SendResult, error) {
	zipName := strings.TrimSuffix(filename, ".xml") + ".zip"

	zipped, err := zipFile(filename, data)
	if err != nil {
		return dto.SendResult{}, fmt.Errorf("Client - Send - zipFile: %w", err)
	}

	req := &sendRequest{
		FileName:    zipName,
		ContentFile: base64.StdEncoding.EncodeToString(zipped),
	}

	env := newRequestEnvelope(c.username, c.password)
	if docType.Summarized() {
		env.Body.SendSummary = req
	} else {
		env.Body.SendBill = req
	}

	body, err := xml.Marshal(env)
	if err != nil {
		return dto.SendResult{}, fmt.Errorf("Client - Send - xml.Marshal: %w", err)
	}

	resp, err := c.call(ctx, serverURL, body)
	if err != nil {
		return dto.SendResult{}, fmt.Errorf("Client - Send - c.call: %w", err)
	}

	switch {
	case resp.Body.SendBill != nil:
		// no fault means the file is accepted, a broken CDR must not trigger a resend
		cdr, err := base64.StdEncoding.DecodeString(strings.TrimSpace(resp.Body.SendBill.ApplicationResponse))
		if err != nil {
			return dto.SendResult{CDRError: fmt.Sprintf("undecodable CDR: %v", err)}, nil
		}
		return dto.SendResult{CDR: cdr}, nil
	case resp.Body.SendSummary != nil:
		return dto.SendResult{Ticket: strings.TrimSpace(resp.Body.SendSummary.Ticket)}, nil
	}

	return dto.SendResult{}, fmt.Errorf("Client - Send - empty response: %w", errs.ErrDeliveryUnavailable)
}

func (c *Client) call(ctx context.Context, serverURL string, body []byte) (*responseEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("Client - call - http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", contentXML)
	req.Header.Set("SOAPAction", `""`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Client - call - c.httpClient.Do: %w: %w", errs.ErrDeliveryUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("Client - call - io.ReadAll: %w: %w", errs.ErrDeliveryUnavailable, err)
	}

	// faults come back with 500, so the body is checked before the status
	var env responseEnvelope
	if xmlErr := xml.Unmarshal(raw, &env); xmlErr == nil && env.Body.Fault != nil {
		return nil, &errs.RejectedError{
			Code:    strings.TrimSpace(env.Body.Fault.Code),
			Message: strings.TrimSpace(env.Body.Fault.String),
		}
	} else if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("Client - call - status %d: %w", resp.StatusCode, errs.ErrDeliveryUnavailable)
	} else if xmlErr != nil {
		return nil, fmt.Errorf("Client - call - xml.Unmarshal: %w: %w", errs.ErrDeliveryUnavailable, xmlErr)
	}

	return &env, nil
}

func zipFile(name string, data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		return nil, fmt.Errorf("zipFile - zw.Create: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zipFile - w.Write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zipFile - zw.Close: %w", err)
	}

	return buf.Bytes(), nil
}
