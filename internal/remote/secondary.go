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

// secondaryReceipt is the mirror store's wire schema. It is sparser than the
// primary's; fields the mirror lacks map to neutral defaults.
type secondaryReceipt struct {
	Id        string      `json:"_id"`
	Ref       string      `json:"ref"`
	Client    string      `json:"client"`
	ClientDoc string      `json:"clientDoc"`
	Value     json.Number `json:"value"`
	Date      string      `json:"date"`
	Notes     string      `json:"notes"`
	Method    string      `json:"method"`
	State     string      `json:"state"`
	Signature string      `json:"signature"`
	Contract  string      `json:"contract"`
}

// Secondary is the adapter for the best-effort mirror store.
type Secondary struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

func NewSecondary(baseURL string, timeout time.Duration, logger logging.Logger) *Secondary {
	return &Secondary{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "secondary_source"),
	}
}

// List fetches the flat listing and maps each record, skipping the malformed.
func (s *Secondary) List(ctx context.Context) ([]models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/receipts", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list returned %d", ErrRejected, resp.StatusCode)
	}

	var records []secondaryReceipt
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	var result []models.Document
	for _, r := range records {
		doc, err := s.mapReceipt(r)
		if err != nil {
			s.logger.Warn(ctx, "skipping unmappable record", "id", r.Id, "error", err)
			continue
		}
		result = append(result, *doc)
	}
	return result, nil
}

func (s *Secondary) mapReceipt(r secondaryReceipt) (*models.Document, error) {
	if r.Id == "" {
		return nil, fmt.Errorf("record has no id")
	}
	amount := decimal.Zero
	if r.Value != "" {
		var err error
		if amount, err = decimal.NewFromString(r.Value.String()); err != nil {
			return nil, fmt.Errorf("bad value: %w", err)
		}
	}
	issueDate := time.Time{}
	if r.Date != "" {
		var err error
		if issueDate, err = time.Parse(primaryDateLayout, r.Date); err != nil {
			return nil, fmt.Errorf("bad date: %w", err)
		}
	}
	status := models.Status(r.State)
	if !status.Valid() {
		status = models.StatusIssued
	}
	return &models.Document{
		Id:            r.Id,
		SequenceLabel: r.Ref,
		PayerName:     r.Client,
		PayerDocument: r.ClientDoc,
		Amount:        amount,
		IssueDate:     issueDate,
		Description:   r.Notes,
		PaymentMethod: r.Method,
		Status:        status,
		SignatureRef:  r.Signature,
		ContractId:    r.Contract,
	}, nil
}

// Create stores a new receipt on the mirror.
func (s *Secondary) Create(ctx context.Context, payload CreatePayload) (*models.Document, error) {
	body, err := json.Marshal(secondaryReceipt{
		Client:    payload.PayerName,
		ClientDoc: payload.PayerDocument,
		Value:     json.Number(payload.Amount.String()),
		Date:      payload.IssueDate.Format(primaryDateLayout),
		Notes:     payload.Description,
		Method:    payload.PaymentMethod,
		Signature: payload.SignatureId,
		Contract:  payload.ContractId,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/receipts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create returned %d", ErrRejected, resp.StatusCode)
	}

	var created secondaryReceipt
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return s.mapReceipt(created)
}

// Remove deletes a receipt by id.
func (s *Secondary) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/receipts/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: remove returned %d", ErrRejected, resp.StatusCode)
	}
	return nil
}

// ProbeAvailability hits the status endpoint. Any failure means unavailable.
func (s *Secondary) ProbeAvailability(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/status", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
