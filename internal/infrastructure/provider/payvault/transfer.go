package payvault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

// TransferQuote returns the provider charge for a transfer.
// POST /transfers/quote
func (c *Client) TransferQuote(ctx context.Context, req *provider.TransferQuoteRequest) (*provider.TransferQuote, error) {
	var resp struct {
		Data struct {
			Amount decimal.Decimal `json:"amount"`
			Fee    decimal.Decimal `json:"fee"`
		} `json:"data"`
	}

	body := map[string]interface{}{
		"amount":       req.Amount,
		"transferType": req.TransferType,
	}

	if err := c.request(ctx, http.MethodPost, "/transfers/quote", body, "", &resp); err != nil {
		return nil, err
	}

	return &provider.TransferQuote{
		Amount: resp.Data.Amount,
		Charge: resp.Data.Fee,
	}, nil
}

// Transfer initiates a wallet-to-bank payout.
// POST /transfers
func (c *Client) Transfer(ctx context.Context, req *provider.TransferRequest) (*provider.TransferResponse, error) {
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}

	body := map[string]interface{}{
		"reference":     req.Reference,
		"amount":        req.Amount,
		"bankCode":      req.BankCode,
		"accountNumber": req.AccountNumber,
		"accountName":   req.AccountName,
		"narration":     req.Narration,
	}

	if err := c.request(ctx, http.MethodPost, "/transfers", body, "", &resp); err != nil {
		return nil, err
	}

	status, _ := resp.Data["status"].(string)

	c.logger.Info("transfer submitted",
		zap.String("reference", req.Reference),
		zap.String("status", status))

	return &provider.TransferResponse{
		Reference: req.Reference,
		Status:    status,
		Raw:       resp.Data,
	}, nil
}

// VerifyTransaction looks up the authoritative status of a transaction.
// GET /transactions/{reference}
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*provider.TransactionStatus, error) {
	var resp struct {
		Code      string          `json:"code"`
		Succeeded bool            `json:"succeeded"`
		Data      json.RawMessage `json:"data"`
	}

	path := fmt.Sprintf("/transactions/%s", reference)
	if err := c.request(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}

	var data struct {
		Reference       string          `json:"reference"`
		Status          string          `json:"status"`
		Amount          decimal.Decimal `json:"amount"`
		Fee             decimal.Decimal `json:"fee"`
		Channel         string          `json:"channel"`
		TransactionDate string          `json:"transactionDate"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse transaction data: %w", err)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(resp.Data, &raw)

	var txDate *time.Time
	if data.TransactionDate != "" {
		if t, err := time.Parse(time.RFC3339, data.TransactionDate); err == nil {
			txDate = &t
		}
	}

	// Success requires code, flag, and textual status to agree; never
	// trust a single field in isolation.
	successful := resp.Code == "00" && resp.Succeeded && data.Status == "Successful"

	return &provider.TransactionStatus{
		Reference:         data.Reference,
		Successful:        successful,
		Status:            data.Status,
		Amount:            data.Amount,
		Charge:            data.Fee,
		AmountAfterCharge: data.Amount.Sub(data.Fee),
		Channel:           data.Channel,
		TransactionDate:   txDate,
		Raw:               raw,
	}, nil
}
