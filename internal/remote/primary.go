package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/logging"
	"github.com/dmribeiro/recibox/internal/models"
)

const (
	primaryDateLayout = "2006-01-02"
	primaryPageSize   = 100
)

// primaryReceipt is the primary store's wire schema.
type primaryReceipt struct {
	Id             string `json:"id"`
	Number         string `json:"number"`
	PayerName      string `json:"payerName"`
	PayerDocument  string `json:"payerDocument"`
	Amount         string `json:"amount"`
	IssueDate      string `json:"issueDate"`
	Description    string `json:"description"`
	PaymentMethod  string `json:"paymentMethod"`
	Status         string `json:"status"`
	LogoId         string `json:"logoId"`
	SignatureId    string `json:"signatureId"`
	IssuerName     string `json:"issuerName"`
	IssuerDocument string `json:"issuerDocument"`
	ContractId     string `json:"contractId"`
	IncomeId       string `json:"incomeId,omitempty"`
}

type primaryListResponse struct {
	Items []primaryReceipt `json:"items"`
	Total int              `json:"total"`
}

// Primary is the adapter for the authoritative store. Its sequence numbers
// are canonical; on id conflicts during merge its values win.
type Primary struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider TokenProvider
	logger        logging.Logger
}

// NewPrimary builds the primary adapter. timeout bounds every request;
// tokenProvider may be nil for unauthenticated access.
func NewPrimary(baseURL string, timeout time.Duration, tokenProvider TokenProvider, logger logging.Logger) *Primary {
	return &Primary{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		tokenProvider: tokenProvider,
		logger:        logger.With("component", "primary_source"),
	}
}

func (p *Primary) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.tokenProvider != nil {
		token, err := p.tokenProvider(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// List walks the paged listing until all records are fetched. Records that
// fail to map are skipped individually.
func (p *Primary) List(ctx context.Context) ([]models.Document, error) {
	var result []models.Document

	for page := 1; ; page++ {
		path := fmt.Sprintf("/api/v1/receipts?page=%d&pageSize=%d", page, primaryPageSize)
		req, err := p.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: list returned %d", ErrRejected, resp.StatusCode)
		}

		var list primaryListResponse
		err = json.NewDecoder(resp.Body).Decode(&list)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRejected, err)
		}

		for _, item := range list.Items {
			doc, err := p.mapReceipt(item)
			if err != nil {
				p.logger.Warn(ctx, "skipping unmappable record", "id", item.Id, "error", err)
				continue
			}
			result = append(result, *doc)
		}

		if len(list.Items) == 0 || len(result) >= list.Total {
			break
		}
	}

	return result, nil
}

// mapReceipt converts one wire record. Missing optional fields become
// neutral defaults; a record without an id or with garbage in amount/date
// cannot be keyed and is reported as unmappable.
func (p *Primary) mapReceipt(r primaryReceipt) (*models.Document, error) {
	if r.Id == "" {
		return nil, fmt.Errorf("record has no id")
	}
	amount := decimal.Zero
	if r.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(r.Amount); err != nil {
			return nil, fmt.Errorf("bad amount: %w", err)
		}
	}
	issueDate := time.Time{}
	if r.IssueDate != "" {
		var err error
		if issueDate, err = time.Parse(primaryDateLayout, r.IssueDate); err != nil {
			return nil, fmt.Errorf("bad issue date: %w", err)
		}
	}
	status := models.Status(r.Status)
	if !status.Valid() {
		status = models.StatusIssued
	}
	doc := &models.Document{
		Id:            r.Id,
		SequenceLabel: r.Number,
		PayerName:     r.PayerName,
		PayerDocument: r.PayerDocument,
		Amount:        amount,
		IssueDate:     issueDate,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Status:        status,
		LogoRef:       r.LogoId,
		SignatureRef:  r.SignatureId,
		ContractId:    r.ContractId,
	}
	if r.IssuerName != "" || r.IssuerDocument != "" {
		doc.IssuerOverride = &models.Issuer{Name: r.IssuerName, Document: r.IssuerDocument}
	}
	return doc, nil
}

// Create posts a new receipt and returns the canonical record.
func (p *Primary) Create(ctx context.Context, payload CreatePayload) (*models.Document, error) {
	body, err := json.Marshal(primaryReceipt{
		PayerName:      payload.PayerName,
		PayerDocument:  payload.PayerDocument,
		Amount:         payload.Amount.String(),
		IssueDate:      payload.IssueDate.Format(primaryDateLayout),
		Description:    payload.Description,
		PaymentMethod:  payload.PaymentMethod,
		SignatureId:    payload.SignatureId,
		IssuerName:     payload.IssuerName,
		IssuerDocument: payload.IssuerDocument,
		ContractId:     payload.ContractId,
		IncomeId:       payload.LinkedIncomeId,
	})
	if err != nil {
		return nil, err
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/api/v1/receipts", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create returned %d", ErrRejected, resp.StatusCode)
	}

	var created primaryReceipt
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return p.mapReceipt(created)
}

// Remove deletes a receipt by id.
func (p *Primary) Remove(ctx context.Context, id string) error {
	req, err := p.newRequest(ctx, http.MethodDelete, "/api/v1/receipts/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: remove returned %d", ErrRejected, resp.StatusCode)
	}
	return nil
}

// ProbeAvailability hits the health endpoint. Any failure means unavailable.
func (p *Primary) ProbeAvailability(ctx context.Context) bool {
	req, err := p.newRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// VerifyPassword re-validates the current user's password against the
// primary store and returns a fresh session token on success. This backs
// the re-authentication required before deletes.
func (p *Primary) VerifyPassword(ctx context.Context, password []byte) (string, error) {
	body, err := json.Marshal(map[string]string{"password": string(password)})
	if err != nil {
		return "", err
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/api/v1/auth/verify", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: password rejected", ErrRejected)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: verify returned %d", ErrRejected, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return out.Token, nil
}
