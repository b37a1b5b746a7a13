package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletProvider defines the outbound contract to the external
// payment/wallet provider. All calls are bearer-authenticated JSON
// requests against a configurable base URL.
type WalletProvider interface {
	// CreateVirtualAccount provisions a wallet account for a user.
	CreateVirtualAccount(ctx context.Context, req *CreateVirtualAccountRequest) (*VirtualAccount, error)

	// InitializeCharge opens a hosted checkout session and returns the
	// provider-issued transaction reference and redirect URL.
	InitializeCharge(ctx context.Context, req *ChargeRequest) (*ChargeSession, error)

	// WalletBalance returns the current available balance of an account.
	WalletBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error)

	// TransferQuote returns the provider charge for a transfer of the
	// given amount and type.
	TransferQuote(ctx context.Context, req *TransferQuoteRequest) (*TransferQuote, error)

	// Transfer initiates an outbound wallet-to-bank transfer.
	Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error)

	// VerifyTransaction looks up the authoritative status of a
	// transaction by its reference.
	VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error)

	// ResolveAccount resolves a bank account number to its holder name.
	ResolveAccount(ctx context.Context, bankCode, accountNumber string) (*ResolvedAccount, error)

	// ListBanks returns the provider's supported banks.
	ListBanks(ctx context.Context) ([]Bank, error)

	// VerifyWebhookSignature checks the HMAC signature of an inbound
	// webhook over the raw, unparsed request body.
	VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool

	// Name returns the provider channel label recorded on ledger entries.
	Name() string
}

// CreateVirtualAccountRequest provisions a wallet for a platform user.
type CreateVirtualAccountRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// VirtualAccount is a provider-side wallet account.
type VirtualAccount struct {
	ExternalID    string `json:"external_id"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
}

// ChargeRequest opens a hosted checkout session.
type ChargeRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	MerchantRef string          `json:"merchant_ref"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	Narration   string          `json:"narration,omitempty"`
}

// ChargeSession is the provider's checkout session handle.
type ChargeSession struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
	Channel     string `json:"channel,omitempty"`
}

// TransferQuoteRequest asks the provider for the fee on a transfer.
type TransferQuoteRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	TransferType string          `json:"transfer_type"`
}

// TransferQuote is the provider's fee quote.
type TransferQuote struct {
	Amount decimal.Decimal `json:"amount"`
	Charge decimal.Decimal `json:"charge"`
}

// TransferRequest initiates a wallet-to-bank payout.
type TransferRequest struct {
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	BankCode      string          `json:"bank_code"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Narration     string          `json:"narration,omitempty"`
}

// TransferResponse is the provider's acknowledgement of a transfer.
type TransferResponse struct {
	Reference string                 `json:"reference"`
	Status    string                 `json:"status"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// TransactionStatus is the provider's authoritative view of a transaction.
type TransactionStatus struct {
	Reference         string                 `json:"reference"`
	Successful        bool                   `json:"successful"`
	Status            string                 `json:"status"`
	Amount            decimal.Decimal        `json:"amount"`
	Charge            decimal.Decimal        `json:"charge"`
	AmountAfterCharge decimal.Decimal        `json:"amount_after_charge"`
	Channel           string                 `json:"channel,omitempty"`
	TransactionDate   *time.Time             `json:"transaction_date,omitempty"`
	Raw               map[string]interface{} `json:"raw,omitempty"`
}

// ResolvedAccount is the result of a bank account lookup.
type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code"`
}

// Bank is a provider-supported bank.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// WebhookEnvelope is the inbound webhook body shape. The raw bytes must
// be kept for signature verification; this struct is only parsed after
// the signature has been accepted.
type WebhookEnvelope struct {
	Code      string       `json:"Code"`
	Succeeded bool         `json:"Succeeded"`
	Data      *WebhookData `json:"Data"`
}

// WebhookData is the transaction payload inside a webhook envelope.
type WebhookData struct {
	Reference          string          `json:"Reference"`
	MerchantRef        string          `json:"MerchantRef,omitempty"`
	Amount             decimal.Decimal `json:"Amount"`
	Type               string          `json:"Type,omitempty"`
	Status             string          `json:"Status"`
	TransactionDate    string          `json:"TransactionDate,omitempty"`
	BeneficiaryAccount string          `json:"BeneficiaryAccount,omitempty"`
	CustomerID         string          `json:"CustomerId"`
}

// ProviderError carries the raw upstream failure for diagnosis.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
