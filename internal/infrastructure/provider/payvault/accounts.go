package payvault

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

// CreateVirtualAccount provisions a wallet account for a user.
// POST /accounts
func (c *Client) CreateVirtualAccount(ctx context.Context, req *provider.CreateVirtualAccountRequest) (*provider.VirtualAccount, error) {
	var resp struct {
		Data struct {
			ID            string `json:"_id"`
			AccountNumber string `json:"accountNumber"`
			AccountName   string `json:"accountName"`
			BankName      string `json:"bankName"`
		} `json:"data"`
	}

	body := map[string]string{
		"externalReference": req.UserID,
		"firstName":         req.FirstName,
		"lastName":          req.LastName,
		"email":             req.Email,
		"phoneNumber":       req.Phone,
	}

	if err := c.request(ctx, http.MethodPost, "/accounts", body, "", &resp); err != nil {
		return nil, err
	}

	c.logger.Info("virtual account created",
		zap.String("user_id", req.UserID),
		zap.String("account_number", resp.Data.AccountNumber))

	return &provider.VirtualAccount{
		ExternalID:    resp.Data.ID,
		AccountNumber: resp.Data.AccountNumber,
		AccountName:   resp.Data.AccountName,
		BankName:      resp.Data.BankName,
	}, nil
}

// WalletBalance returns the current available balance of an account.
// GET /accounts/{accountNumber}/balance
func (c *Client) WalletBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	var resp struct {
		Data struct {
			AvailableBalance decimal.Decimal `json:"availableBalance"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/accounts/%s/balance", accountNumber)
	if err := c.request(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
		return decimal.Zero, err
	}

	return resp.Data.AvailableBalance, nil
}

// ResolveAccount resolves a bank account number to its holder name.
// POST /transfers/name-enquiry
func (c *Client) ResolveAccount(ctx context.Context, bankCode, accountNumber string) (*provider.ResolvedAccount, error) {
	var resp struct {
		Data struct {
			AccountNumber string `json:"accountNumber"`
			AccountName   string `json:"accountName"`
		} `json:"data"`
	}

	body := map[string]string{
		"bankCode":      bankCode,
		"accountNumber": accountNumber,
	}

	if err := c.request(ctx, http.MethodPost, "/transfers/name-enquiry", body, "", &resp); err != nil {
		return nil, err
	}

	return &provider.ResolvedAccount{
		AccountNumber: resp.Data.AccountNumber,
		AccountName:   resp.Data.AccountName,
		BankCode:      bankCode,
	}, nil
}

// ListBanks returns the provider's supported banks.
// GET /transfers/banks
func (c *Client) ListBanks(ctx context.Context) ([]provider.Bank, error) {
	var resp struct {
		Data []struct {
			BankCode string `json:"bankCode"`
			Name     string `json:"name"`
		} `json:"data"`
	}

	if err := c.request(ctx, http.MethodGet, "/transfers/banks", nil, "", &resp); err != nil {
		return nil, err
	}

	banks := make([]provider.Bank, len(resp.Data))
	for i, b := range resp.Data {
		banks[i] = provider.Bank{Code: b.BankCode, Name: b.Name}
	}

	return banks, nil
}
