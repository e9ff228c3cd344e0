package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	scheduleErr error
	gotData     []byte
	gotCustomID *string
	records     map[uuid.UUID]*entity.FileDelivery
	getErr      error
}

func (f *fakeDelivery) ScheduleDelivery(_ context.Context, data []byte, customID *string) (*entity.FileDelivery, error) {
	f.gotData = data
	f.gotCustomID = customID
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}

	now := time.Now()
	return &entity.FileDelivery{
		ID:             uuid.New(),
		FileID:         "20123456789-01-F123-45678.xml",
		Filename:       "20123456789-01-F123-45678.xml",
		TaxpayerID:     "20123456789",
		DocumentID:     "F123-45678",
		DocumentType:   entity.Invoice,
		DeliveryStatus: entity.ScheduledToDeliver,
		CustomID:       customID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (f *fakeDelivery) GetByID(_ context.Context, id uuid.UUID) (*entity.FileDelivery, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("repo: %w", errs.ErrRecordNotFound)
	}
	return d, nil
}

func (f *fakeDelivery) Deliver(context.Context, uuid.UUID) error { return nil }

func (f *fakeDelivery) Reconcile(context.Context) (int, error) { return 0, nil }

func newApp(d *fakeDelivery) *fiber.App {
	app := fiber.New()
	NewDocumentRoutes(app.Group("/v1"), d, logger.NewWithWriter("error", io.Discard))
	return app
}

func upload(t *testing.T, app *fiber.App, filename string, content []byte, customID string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if customID != "" {
		require.NoError(t, w.WriteField("customId", customID))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestScheduleDeliveryCreated(t *testing.T) {
	d := &fakeDelivery{}
	app := newApp(d)

	resp := upload(t, app, "invoice.xml", []byte("<Invoice/>"), "order-42")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got response.Delivery
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "20123456789-01-F123-45678.xml", got.Filename)
	assert.Equal(t, string(entity.ScheduledToDeliver), got.DeliveryStatus)
	require.NotNil(t, got.CustomID)
	assert.Equal(t, "order-42", *got.CustomID)

	assert.Equal(t, []byte("<Invoice/>"), d.gotData)
}

func TestScheduleDeliveryWithoutCustomID(t *testing.T) {
	d := &fakeDelivery{}

	resp := upload(t, newApp(d), "invoice.XML", []byte("<Invoice/>"), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, d.gotCustomID)
}

func TestScheduleDeliveryValidation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     int
	}{
		{"no file", "", nil, http.StatusBadRequest},
		{"empty file", "a.xml", []byte{}, http.StatusBadRequest},
		{"wrong extension", "a.pdf", []byte("%PDF"), http.StatusUnsupportedMediaType},
		{"too large", "a.xml", bytes.Repeat([]byte("a"), 5*1024*1024+1), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDelivery{}

			app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})
			NewDocumentRoutes(app.Group("/v1"), d, logger.NewWithWriter("error", io.Discard))

			resp := upload(t, app, tt.filename, tt.content, "")
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Nil(t, d.gotData)
		})
	}
}

func TestScheduleDeliveryErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", fmt.Errorf("uc: %w", errs.ErrMalformedInput), http.StatusBadRequest},
		{"series", fmt.Errorf("uc: %w", errs.ErrSeriesDetection), http.StatusBadRequest},
		{"unsupported", fmt.Errorf("uc: %w", &errs.UnsupportedTypeError{Type: "Order"}), http.StatusUnprocessableEntity},
		{"storage", fmt.Errorf("uc: %w", errs.ErrStorage), http.StatusBadGateway},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, newApp(&fakeDelivery{scheduleErr: tt.err}), "a.xml", []byte("<x/>"), "")
			assert.Equal(t, tt.want, resp.StatusCode)

			var body response.Error
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGetDelivery(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	d := &fakeDelivery{records: map[uuid.UUID]*entity.FileDelivery{
		id: {
			ID:             id,
			Filename:       "20123456789-RA-20200328-1.xml",
			DocumentType:   entity.VoidedDocument,
			DeliveryStatus: entity.Delivered,
			CreatedAt:      now,
			UpdatedAt:      now,
			DeliveredAt:    &now,
		},
	}}
	app := newApp(d)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/documents/"+id.String(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got response.Delivery
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, id.String(), got.ID)
	assert.Equal(t, string(entity.Delivered), got.DeliveryStatus)
	assert.NotNil(t, got.DeliveredAt)
}

func TestGetDeliveryErrors(t *testing.T) {
	app := newApp(&fakeDelivery{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/documents/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/documents/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	app = newApp(&fakeDelivery{getErr: errors.New("db down")})
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/documents/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
