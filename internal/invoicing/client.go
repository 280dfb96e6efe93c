// Package invoicing talks to the invoicing agent that issues proformas,
// final invoices, cancellation-fee invoices and stornos for bookings.
package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindProforma Kind = "proforma"
	KindInvoice  Kind = "invoice"
	KindFee      Kind = "cancellation_fee"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured reports whether credentials are present. Callers must check it
// before issuing; an unconfigured client rejects every call.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"unitPrice"` // whole Forint
}

type Request struct {
	Kind     Kind       `json:"kind"`
	OrderRef string     `json:"orderRef"`
	Buyer    Buyer      `json:"buyer"`
	Items    []LineItem `json:"items"`

	// Transfer payment terms; ignored when MarkPaid is set.
	TransferDueDays int  `json:"transferDueDays,omitempty"`
	MarkPaid        bool `json:"markPaid,omitempty"`

	Comment string `json:"comment,omitempty"`
}

// Document identifies an issued invoice at the agent.
type Document struct {
	Number string
	URL    string
}

type issueResponse struct {
	Success       bool   `json:"success"`
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceURL    string `json:"invoiceUrl"`
	Error         string `json:"error"`
}

type reverseResponse struct {
	Success      bool   `json:"success"`
	StornoNumber string `json:"stornoNumber"`
	Error        string `json:"error"`
}

// Issue creates a document of the requested kind and returns its number and
// download URL. OrderRef is generated when empty so retries stay traceable.
func (c *Client) Issue(ctx context.Context, req Request) (Document, error) {
	if !c.Configured() {
		return Document{}, fmt.Errorf("invoicing agent is not configured")
	}
	if req.OrderRef == "" {
		req.OrderRef = uuid.NewString()
	}

	var resp issueResponse
	if err := c.post(ctx, "/api/v1/invoices", req, &resp); err != nil {
		return Document{}, err
	}
	if !resp.Success {
		return Document{}, fmt.Errorf("invoicing agent rejected %s: %s", req.Kind, resp.Error)
	}
	return Document{Number: resp.InvoiceNumber, URL: resp.InvoiceURL}, nil
}

// Reverse issues a storno for a previously issued invoice and returns the
// storno document number.
func (c *Client) Reverse(ctx context.Context, invoiceNumber string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("invoicing agent is not configured")
	}

	var resp reverseResponse
	path := fmt.Sprintf("/api/v1/invoices/%s/storno", invoiceNumber)
	if err := c.post(ctx, path, struct{}{}, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("storno of %s rejected: %s", invoiceNumber, resp.Error)
	}
	return resp.StornoNumber, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal invoicing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build invoicing request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("invoicing agent call failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 500 {
		return fmt.Errorf("invoicing agent returned %d", httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode invoicing response: %w", err)
	}
	return nil
}
