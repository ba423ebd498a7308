// Package dex implements the Dex port against a GalaSwap-style REST API:
// quote and swap endpoints plus a balance listing per wallet. Swap requests
// are signed with the wallet's key; quotes and balances are unauthenticated.
package dex

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

const defaultTimeout = 30 * time.Second

// Client talks to the DEX HTTP API. No retries here: the engine treats any
// DEX failure as terminal for the cycle, and retry policy belongs to the
// caller's operational layer.
type Client struct {
	baseURL string
	http    *http.Client
	signer  repository.Signer
	now     func() time.Time
}

var _ repository.Dex = (*Client)(nil)

func NewClient(baseURL string, signer repository.Signer) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		signer:  signer,
		now:     time.Now,
	}
}

type quoteRequest struct {
	TokenIn   string   `json:"tokenIn"`
	TokenOut  string   `json:"tokenOut"`
	AmountIn  *float64 `json:"amountIn,omitempty"`
	AmountOut *float64 `json:"amountOut,omitempty"`
}

type quoteResponse struct {
	AmountIn  float64 `json:"amountIn"`
	AmountOut float64 `json:"amountOut"`
	Fee       float64 `json:"fee"`
}

// FetchSwapPrice quotes a swap with exactly one amount side fixed.
func (c *Client) FetchSwapPrice(ctx context.Context, tokenIn, tokenOut string, amount model.SwapAmount) (model.PricePoint, error) {
	req := quoteRequest{TokenIn: tokenIn, TokenOut: tokenOut}
	switch a := amount.(type) {
	case model.ExactIn:
		req.AmountIn = &a.Amount
	case model.ExactOut:
		req.AmountOut = &a.Amount
	default:
		return model.PricePoint{}, fmt.Errorf("unsupported swap amount %T", amount)
	}

	var res quoteResponse
	if err := c.post(ctx, "/v1/trade/quote", req, &res, nil); err != nil {
		return model.PricePoint{}, err
	}
	if res.AmountIn == 0 {
		return model.PricePoint{}, fmt.Errorf("quote for %s/%s returned zero input amount", tokenIn, tokenOut)
	}

	return model.PricePoint{
		Date:      c.now(),
		TokenIn:   tokenIn,
		AmountIn:  res.AmountIn,
		TokenOut:  tokenOut,
		AmountOut: res.AmountOut,
		Price:     res.AmountOut / res.AmountIn,
		Fee:       res.Fee,
	}, nil
}

type assetsResponse struct {
	Tokens []struct {
		Symbol   string  `json:"symbol"`
		Quantity float64 `json:"quantity,string"`
		Decimals int     `json:"decimals"`
	} `json:"tokens"`
}

// FetchBalances lists the wallet's balances.
func (c *Client) FetchBalances(ctx context.Context) ([]model.Balance, error) {
	u := fmt.Sprintf("%s/v1/user/assets?address=%s", c.baseURL, url.QueryEscape(c.signer.Wallet()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var res assetsResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}

	balances := make([]model.Balance, len(res.Tokens))
	for i, t := range res.Tokens {
		balances[i] = model.Balance{Token: t.Symbol, Amount: t.Quantity, Decimals: t.Decimals}
	}
	return balances, nil
}

type swapRequest struct {
	UniqueKey string   `json:"uniqueKey"`
	Wallet    string   `json:"wallet"`
	TokenIn   string   `json:"tokenIn"`
	TokenOut  string   `json:"tokenOut"`
	AmountIn  *float64 `json:"amountIn,omitempty"`
	AmountOut *float64 `json:"amountOut,omitempty"`
}

type swapResponse struct {
	TransactionID string  `json:"transactionId"`
	AmountIn      float64 `json:"amountIn"`
	AmountOut     float64 `json:"amountOut"`
}

// Swap executes a signed swap. The receipt carries requested amounts; the
// settled ones only show up later in balance deltas.
func (c *Client) Swap(ctx context.Context, tokenIn, tokenOut string, amount model.SwapAmount) (model.SwapReceipt, error) {
	req := swapRequest{
		UniqueKey: uuid.NewString(),
		Wallet:    c.signer.Wallet(),
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
	}
	switch a := amount.(type) {
	case model.ExactIn:
		req.AmountIn = &a.Amount
	case model.ExactOut:
		req.AmountOut = &a.Amount
	default:
		return model.SwapReceipt{}, fmt.Errorf("unsupported swap amount %T", amount)
	}

	var res swapResponse
	if err := c.post(ctx, "/v1/trade/swap", req, &res, c.signer); err != nil {
		return model.SwapReceipt{}, err
	}

	swapID := res.TransactionID
	if swapID == "" {
		swapID = req.UniqueKey
	}
	return model.SwapReceipt{
		SwapID:    swapID,
		Date:      c.now(),
		TokenIn:   tokenIn,
		AmountIn:  res.AmountIn,
		TokenOut:  tokenOut,
		AmountOut: res.AmountOut,
	}, nil
}

// post marshals body, optionally signs it, and decodes the JSON response
// into out.
func (c *Client) post(ctx context.Context, path string, body, out any, s repository.Signer) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if s != nil {
		sig, err := s.Sign(data)
		if err != nil {
			return fmt.Errorf("failed to sign request: %w", err)
		}
		req.Header.Set("X-Wallet-Signature", hex.EncodeToString(sig))
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("dex: %s %s: status %d: %s", req.Method, req.URL.Path, res.StatusCode, string(body))
	}

	return json.NewDecoder(res.Body).Decode(out)
}
