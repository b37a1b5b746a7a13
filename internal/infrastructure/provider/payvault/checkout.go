package payvault

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

// InitializeCharge opens a hosted checkout session.
// POST /checkouts
func (c *Client) InitializeCharge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeSession, error) {
	var resp struct {
		Data struct {
			Reference   string `json:"reference"`
			CheckoutURL string `json:"checkoutUrl"`
			Channel     string `json:"channel"`
		} `json:"data"`
	}

	body := map[string]interface{}{
		"customerReference": req.UserID,
		"amount":            req.Amount,
		"currency":          req.Currency,
		"merchantReference": req.MerchantRef,
		"redirectUrl":       req.RedirectURL,
		"narration":         req.Narration,
	}

	if err := c.request(ctx, http.MethodPost, "/checkouts", body, "", &resp); err != nil {
		return nil, err
	}

	c.logger.Info("checkout session created",
		zap.String("reference", resp.Data.Reference),
		zap.String("merchant_ref", req.MerchantRef))

	return &provider.ChargeSession{
		Reference:   resp.Data.Reference,
		RedirectURL: resp.Data.CheckoutURL,
		Channel:     resp.Data.Channel,
	}, nil
}
