// Package ordinals defines the OrdinalsClient contract consumed by the
// lifecycle and migration managers to inscribe, resolve, and transfer
// Bitcoin ordinal inscriptions, plus an HTTP-backed adapter.
package ordinals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/internal/errors"
)

// SatInfo is the response shape of getSatInfo.
type SatInfo struct {
	InscriptionIDs []string `json:"inscription_ids"`
}

// InscriptionInfo is the response shape of resolveInscription.
type InscriptionInfo struct {
	ID          string `json:"id"`
	Satoshi     uint64 `json:"sat"`
	ContentType string `json:"content_type"`
	ContentURL  string `json:"content_url"`
}

// InscribeResult is the response shape of inscribeData.
type InscribeResult struct {
	InscriptionID string  `json:"inscriptionId"`
	Satoshi       *uint64 `json:"satoshi,omitempty"`
	TxID          string  `json:"txid"`
	RevealTxID    string  `json:"revealTxId,omitempty"`
	CommitTxID    string  `json:"commitTxId,omitempty"`
	FeeRate       float64 `json:"feeRate,omitempty"`
}

// TransferResult is the response shape of transferInscription.
type TransferResult struct {
	TxID string `json:"txid"`
}

// Client is the narrow contract the SDK requires from a Bitcoin ordinals
// indexer/RPC provider.
type Client interface {
	GetSatInfo(ctx context.Context, satoshi uint64) (*SatInfo, error)
	ResolveInscription(ctx context.Context, id string) (*InscriptionInfo, error)
	GetMetadata(ctx context.Context, id string) ([]byte, error)
	EstimateFee(ctx context.Context, blocks int) (float64, error)
	InscribeData(ctx context.Context, payload []byte, contentType string, feeRate *float64) (*InscribeResult, error)
	TransferInscription(ctx context.Context, inscriptionID, toAddress string) (*TransferResult, error)
}

// HTTPClient adapts a Client to a plain JSON-over-HTTP ordinals indexer.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPClient constructs an HTTPClient against baseURL with a 10-second
// default timeout, matching the rest of the SDK's fetch timeout policy.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.ExternalErr("ordinals request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return errors.ExternalErr("ordinals request to %s returned status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ExternalErr("reading ordinals response: %v", err)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// GetSatInfo implements Client.
func (c *HTTPClient) GetSatInfo(ctx context.Context, satoshi uint64) (*SatInfo, error) {
	var out SatInfo
	if err := c.get(ctx, fmt.Sprintf("/sat/%d", satoshi), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveInscription implements Client.
func (c *HTTPClient) ResolveInscription(ctx context.Context, id string) (*InscriptionInfo, error) {
	var out InscriptionInfo
	if err := c.get(ctx, "/inscription/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMetadata implements Client, returning raw CBOR bytes or nil.
func (c *HTTPClient) GetMetadata(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/inscription/"+id+"/metadata", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.ExternalErr("fetching metadata: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, errors.ExternalErr("fetching metadata: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// EstimateFee implements Client.
func (c *HTTPClient) EstimateFee(ctx context.Context, blocks int) (float64, error) {
	var out struct {
		FeeRate float64 `json:"feeRate"`
	}
	if err := c.get(ctx, fmt.Sprintf("/fee-estimate?blocks=%d", blocks), &out); err != nil {
		return 0, err
	}
	return out.FeeRate, nil
}

// InscribeData implements Client.
func (c *HTTPClient) InscribeData(ctx context.Context, payload []byte, contentType string, feeRate *float64) (*InscribeResult, error) {
	reqBody := map[string]interface{}{
		"payload":     payload,
		"contentType": contentType,
	}
	if feeRate != nil {
		reqBody["feeRate"] = *feeRate
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/inscribe", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.ExternalErr("inscribing data: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.ExternalErr("inscribing data: status %d", resp.StatusCode)
	}
	var out InscribeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferInscription implements Client.
func (c *HTTPClient) TransferInscription(ctx context.Context, inscriptionID, toAddress string) (*TransferResult, error) {
	raw, err := json.Marshal(map[string]string{"to": toAddress})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/inscription/"+inscriptionID+"/transfer", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.ExternalErr("transferring inscription: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.ExternalErr("transferring inscription: status %d", resp.StatusCode)
	}
	var out TransferResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// resolverAdapter narrows a Client down to did/btco.InscriptionProvider.
type resolverAdapter struct {
	client Client
}

// AsInscriptionProvider adapts client to the narrower contract
// did/btco.Resolver needs.
func AsInscriptionProvider(client Client) btco.InscriptionProvider {
	return resolverAdapter{client: client}
}

func (a resolverAdapter) InscriptionIDs(ctx context.Context, satoshi uint64) ([]string, error) {
	info, err := a.client.GetSatInfo(ctx, satoshi)
	if err != nil {
		return nil, err
	}
	return info.InscriptionIDs, nil
}

func (a resolverAdapter) FetchMetadata(ctx context.Context, inscriptionID string) ([]byte, error) {
	return a.client.GetMetadata(ctx, inscriptionID)
}

func (a resolverAdapter) FetchContent(ctx context.Context, inscriptionID string) ([]byte, error) {
	info, err := a.client.ResolveInscription(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.ContentURL, nil)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalErr("fetching inscription content: %v", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
