// Package remote talks to an upstream catalog service that acts as the
// source of truth. The local store is a read-mostly cache of it: reads may be
// stale, and the only refresh is an explicit Sync triggered by the caller.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paneworks/glassquote/internal/catalog"
	"github.com/paneworks/glassquote/internal/pricing"
)

// Client calls the upstream catalog API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchSnapshot pulls glass types, processing options and suppliers from the
// upstream service.
func (c *Client) FetchSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	var snap catalog.Snapshot

	if err := c.getJSON(ctx, "/glass/types", &snap.GlassTypes); err != nil {
		return catalog.Snapshot{}, err
	}
	if err := c.getJSON(ctx, "/glass/processing-options", &snap.Options); err != nil {
		return catalog.Snapshot{}, err
	}
	if err := c.getJSON(ctx, "/glass/suppliers", &snap.Suppliers); err != nil {
		return catalog.Snapshot{}, err
	}

	return snap, nil
}

// Sync fetches the upstream catalog and writes it into the local store,
// replacing the cached copies of the fetched keys.
func (c *Client) Sync(ctx context.Context, store catalog.Store) error {
	snap, err := c.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch upstream catalog: %w", err)
	}

	if err := catalog.SaveGlassTypes(store, snap.GlassTypes); err != nil {
		return err
	}
	if err := catalog.SaveOptions(store, snap.Options); err != nil {
		return err
	}
	if err := catalog.SaveSuppliers(store, snap.Suppliers); err != nil {
		return err
	}
	return nil
}

// CalculatePrice asks the upstream calculator to price the same request, so
// callers can assert parity with the local result.
func (c *Client) CalculatePrice(ctx context.Context, req pricing.Request) (pricing.Result, error) {
	params := url.Values{}
	params.Set("glassTypeId", req.GlassTypeID)
	params.Set("toughened", strconv.FormatBool(req.Toughened))
	params.Set("thicknessMm", catalog.FormatThickness(req.ThicknessMM))
	params.Set("widthMm", catalog.FormatThickness(req.WidthMM))
	params.Set("heightMm", catalog.FormatThickness(req.HeightMM))
	params.Set("quantity", strconv.Itoa(req.Quantity))
	params.Set("customerTier", string(req.Tier))
	if req.TemplateID != "" {
		params.Set("templateId", req.TemplateID)
	}

	var result pricing.Result
	if err := c.getJSON(ctx, "/glass/calculate-price?"+params.Encode(), &result); err != nil {
		return pricing.Result{}, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
