package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LineItem позиция платёжной ссылки: сумма в минорных единицах валюты
type LineItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CheckoutLinkCreator внешний платёжный провайдер как единственная способность
type CheckoutLinkCreator interface {
	CreateCheckoutLink(ctx context.Context, items []LineItem, locationID, redirectURL string) (string, error)
}

// ProviderError ошибка удалённого вызова провайдера. Не ретраится.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("payment provider: %v", e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }

// Client HTTP-клиент платёжного API (Square-подобные payment links)
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		token:      token,
	}
}

var _ CheckoutLinkCreator = (*Client)(nil)

type checkoutLinkRequest struct {
	Order struct {
		LocationID string     `json:"location_id"`
		LineItems  []lineItem `json:"line_items"`
	} `json:"order"`
	CheckoutOptions struct {
		RedirectURL string `json:"redirect_url"`
	} `json:"checkout_options"`
}

type lineItem struct {
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	BasePriceMoney money  `json:"base_price_money"`
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type checkoutLinkResponse struct {
	PaymentLink struct {
		URL string `json:"url"`
	} `json:"payment_link"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreateCheckoutLink запрашивает hosted checkout ссылку у провайдера
func (c *Client) CreateCheckoutLink(ctx context.Context, items []LineItem, locationID, redirectURL string) (string, error) {
	var reqBody checkoutLinkRequest
	reqBody.Order.LocationID = locationID
	reqBody.CheckoutOptions.RedirectURL = redirectURL
	for _, it := range items {
		reqBody.Order.LineItems = append(reqBody.Order.LineItems, lineItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			BasePriceMoney: money{
				Amount:   it.Amount,
				Currency: it.Currency,
			},
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/online-checkout/payment-links", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	defer resp.Body.Close()

	var out checkoutLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ProviderError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		detail := resp.Status
		if len(out.Errors) > 0 {
			detail = out.Errors[0].Detail
		}
		return "", &ProviderError{Err: fmt.Errorf("create checkout link: %s", detail)}
	}
	if out.PaymentLink.URL == "" {
		return "", &ProviderError{Err: fmt.Errorf("empty checkout url in response")}
	}
	return out.PaymentLink.URL, nil
}
