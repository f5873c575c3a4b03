package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneworks/glassquote/internal/catalog"
	"github.com/paneworks/glassquote/internal/pricing"
	"github.com/paneworks/glassquote/internal/seed"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	store := catalog.NewMemoryStore()
	if _, err := seed.Run(store); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	return &server{store: store, log: testLogger()}
}

func TestCalculatePriceEndpoint_BaseScenario(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/glass/calculate-price?glassTypeId=gt-clear&toughened=false&thicknessMm=10&widthMm=1000&heightMm=2000&quantity=2&customerTier=retail", nil)
	rec := httptest.NewRecorder()
	srv.handleCalculatePrice(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result pricing.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 600, result.BaseTotal, 1e-9)
	assert.InDelta(t, 600, result.Total, 1e-9)
}

func TestCalculatePriceEndpoint_WithEdgework(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/glass/calculate-price?glassTypeId=gt-clear&toughened=false&thicknessMm=10&widthMm=1000&heightMm=2000&quantity=2&customerTier=retail&processing=pc-edgework:po-polished-edge", nil)
	rec := httptest.NewRecorder()
	srv.handleCalculatePrice(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result pricing.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 96, result.ProcessingTotal, 1e-9)
	assert.InDelta(t, 696, result.Total, 1e-9)
}

func TestCalculatePriceEndpoint_UnknownThicknessIs404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/glass/calculate-price?glassTypeId=gt-clear&toughened=false&thicknessMm=14&widthMm=1000&heightMm=2000&quantity=1&customerTier=retail", nil)
	rec := httptest.NewRecorder()
	srv.handleCalculatePrice(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculatePriceEndpoint_BadDimensionsIs422(t *testing.T) {
	srv := newTestServer(t)

	body := `{"glassTypeId":"gt-clear","toughened":false,"thicknessMm":10,"widthMm":0,"heightMm":2000,"quantity":1,"customerTier":"retail"}`
	req := httptest.NewRequest("POST", "/glass/calculate-price", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleCalculatePrice(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGlassTypesEndpoint_HidesDraftsFromCustomers(t *testing.T) {
	srv := newTestServer(t)

	snap, err := catalog.Load(srv.store)
	require.NoError(t, err)
	draft := catalog.GlassType{ID: "gt-draft", Name: "Low Iron", Active: true, Complete: false}
	require.NoError(t, catalog.SaveGlassTypes(srv.store, append(snap.GlassTypes, draft)))

	req := httptest.NewRequest("GET", "/glass/types", nil)
	rec := httptest.NewRecorder()
	srv.handleGlassTypes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var types []catalog.GlassType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.Len(t, types, 1)
	assert.Equal(t, "gt-clear", types[0].ID)
}

func TestConfirmPatternEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"entries":[{"sku":"CLR6A","thicknessMm":6},{"sku":"CLR10A","thicknessMm":10}]}`
	req := httptest.NewRequest("POST", "/glass/sku/confirm-pattern", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleConfirmPattern(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pattern *struct {
			Prefix            string `json:"prefix"`
			Suffix            string `json:"suffix"`
			IncludesThickness bool   `json:"includesThickness"`
		} `json:"pattern"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pattern)
	assert.Equal(t, "CLR", resp.Pattern.Prefix)
	assert.Equal(t, "A", resp.Pattern.Suffix)
	assert.True(t, resp.Pattern.IncludesThickness)
}

func TestConfirmPatternEndpoint_AmbiguousYieldsNull(t *testing.T) {
	srv := newTestServer(t)

	body := `{"entries":[{"sku":"CLR6A","thicknessMm":6},{"sku":"TGH10B","thicknessMm":10}]}`
	req := httptest.NewRequest("POST", "/glass/sku/confirm-pattern", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleConfirmPattern(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["pattern"])
}

func TestSetCustomerOverridesThenCalculate(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tierId":"tier-t1","overrides":[{"glassTypeId":"gt-clear","toughened":false,"thicknessMm":10,"pricePerSqm":95}]}`
	req := httptest.NewRequest("PUT", "/glass/customer-overrides/cust-7", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("customerId", "cust-7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	srv.handleSetCustomerOverrides(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The pinned price now beats the retail tier price.
	calcReq := httptest.NewRequest("GET", "/glass/calculate-price?glassTypeId=gt-clear&toughened=false&thicknessMm=10&widthMm=1000&heightMm=2000&quantity=2&customerTier=retail&customerId=cust-7", nil)
	calcRec := httptest.NewRecorder()
	srv.handleCalculatePrice(calcRec, calcReq)
	require.Equal(t, http.StatusOK, calcRec.Code, calcRec.Body.String())

	var result pricing.Result
	require.NoError(t, json.Unmarshal(calcRec.Body.Bytes(), &result))
	assert.InDelta(t, 95*2*2, result.BaseTotal, 1e-9)
}

func TestRequireAdmin_RejectsAnonymous(t *testing.T) {
	srv := newTestServer(t)
	srv.auth = newAuthService(nil, "secret")

	handler := srv.requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/glass/types", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_AcceptsValidSession(t *testing.T) {
	srv := newTestServer(t)
	srv.auth = newAuthService(nil, "secret")

	handler := srv.requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/glass/types", nil)
	req.AddCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: srv.auth.createSessionValue("admin@example.com"),
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuoteFlowStateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"glassTypeId":"gt-clear","toughenedSet":true,"thicknessMm":10,"widthMm":1000,"heightMm":2000,"quantity":1,"templateTouched":false,"touchedCategories":{}}`
	req := httptest.NewRequest("POST", "/glass/quote-flow", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleQuoteFlowState(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Steps []struct {
			Step      string `json:"step"`
			Reachable bool   `json:"reachable"`
		} `json:"steps"`
		ProcessingCategories []struct {
			CategoryID string `json:"categoryId"`
			Reachable  bool   `json:"reachable"`
		} `json:"processingCategories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Steps, 7)

	reachable := map[string]bool{}
	for _, s := range resp.Steps {
		reachable[s.Step] = s.Reachable
	}
	assert.True(t, reachable["quote_template"], "dimensions are complete so template should open")
	assert.False(t, reachable["quote_processing"], "template not reviewed yet")

	require.NotEmpty(t, resp.ProcessingCategories)
	assert.True(t, resp.ProcessingCategories[0].Reachable, "first category is always open")
}
