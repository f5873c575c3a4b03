package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paneworks/glassquote/internal/catalog"
	"github.com/paneworks/glassquote/internal/export"
	"github.com/paneworks/glassquote/internal/metrics"
	"github.com/paneworks/glassquote/internal/pricing"
	"github.com/paneworks/glassquote/internal/sku"
	"github.com/paneworks/glassquote/internal/workflow"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *server) snapshot(w http.ResponseWriter) (catalog.Snapshot, bool) {
	snap, err := catalog.Load(s.store)
	if err != nil {
		s.log.Error("load catalog snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return catalog.Snapshot{}, false
	}
	metrics.CatalogReloads.Inc()
	return snap, true
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := s.auth.validateCredentials(body.Email, body.Password)
	if err != nil {
		s.log.Error("validate credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, body.Email)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGlassTypes lists glass types. Customers see only complete, active
// types; ?all=1 returns drafts too and needs an admin session.
func (s *server) handleGlassTypes(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	if r.URL.Query().Get("all") == "1" {
		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		writeJSON(w, http.StatusOK, snap.GlassTypes)
		return
	}

	writeJSON(w, http.StatusOK, snap.VisibleGlassTypes())
}

// handleCreateGlassType upserts a glass type; new entities get generated ids.
func (s *server) handleCreateGlassType(w http.ResponseWriter, r *http.Request) {
	var gt catalog.GlassType
	if err := json.NewDecoder(r.Body).Decode(&gt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(gt.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if gt.ID == "" {
		gt.ID = uuid.NewString()
	}
	for vi := range gt.Variants {
		if gt.Variants[vi].ID == "" {
			gt.Variants[vi].ID = uuid.NewString()
		}
		gt.Variants[vi].GlassTypeID = gt.ID
		for ti := range gt.Variants[vi].Thicknesses {
			if gt.Variants[vi].Thicknesses[ti].ID == "" {
				gt.Variants[vi].Thicknesses[ti].ID = uuid.NewString()
			}
		}
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	types := snap.GlassTypes
	replaced := false
	for i := range types {
		if types[i].ID == gt.ID {
			types[i] = gt
			replaced = true
			break
		}
	}
	if !replaced {
		types = append(types, gt)
	}

	if err := catalog.SaveGlassTypes(s.store, types); err != nil {
		s.log.Error("save glass types", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save glass type")
		return
	}

	writeJSON(w, http.StatusOK, gt)
}

func (s *server) handleProcessingCategories(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.CategoriesInOrder())
}

func (s *server) handleProcessingOptions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		writeJSON(w, http.StatusOK, snap.OptionsForCategory(categoryID))
		return
	}
	writeJSON(w, http.StatusOK, snap.Options)
}

func (s *server) handleUpdateProcessingOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var opt catalog.ProcessingOption
	if err := json.NewDecoder(r.Body).Decode(&opt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	opt.ID = id
	if err := opt.Pricing.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	if _, ok := snap.Category(opt.CategoryID); !ok {
		writeError(w, http.StatusBadRequest, "unknown processing category")
		return
	}

	options := snap.Options
	found := false
	for i := range options {
		if options[i].ID == id {
			options[i] = opt
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "processing option not found")
		return
	}

	if err := catalog.SaveOptions(s.store, options); err != nil {
		s.log.Error("save processing options", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save processing option")
		return
	}

	writeJSON(w, http.StatusOK, opt)
}

func (s *server) handleSuppliers(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Suppliers)
}

func (s *server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Templates)
}

// handleSetCustomerOverrides replaces a customer's tier assignment and pinned
// prices. An empty overrides list clears the pins but keeps the tier.
func (s *server) handleSetCustomerOverrides(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	var body struct {
		TierID    string                  `json:"tierId"`
		Overrides []catalog.PriceOverride `json:"overrides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	record := catalog.CustomerOverride{CustomerID: customerID, TierID: body.TierID, Overrides: body.Overrides}
	overrides := snap.Overrides
	replaced := false
	for i := range overrides {
		if overrides[i].CustomerID == customerID {
			overrides[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		overrides = append(overrides, record)
	}

	if err := catalog.SaveOverrides(s.store, overrides); err != nil {
		s.log.Error("save customer overrides", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save customer overrides")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *server) handlePricingTiers(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Tiers)
}

// handleCalculatePrice accepts the request as JSON (POST) or query
// parameters (GET) and returns the full breakdown.
func (s *server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req pricing.Request
	var err error
	if r.Method == http.MethodPost {
		err = json.NewDecoder(r.Body).Decode(&req)
	} else {
		req, err = parseCalculateQuery(r)
	}
	if err != nil {
		metrics.PriceCalculations.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	result, err := pricing.Calculate(snap, req)
	if err != nil {
		var lookupErr *pricing.LookupError
		var dimErr *pricing.DimensionError
		switch {
		case errors.As(err, &lookupErr):
			metrics.PriceCalculations.WithLabelValues("lookup_error").Inc()
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &dimErr):
			metrics.PriceCalculations.WithLabelValues("dimension_error").Inc()
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.log.Error("calculate price", "error", err)
			metrics.PriceCalculations.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, "price calculation failed")
		}
		return
	}

	metrics.PriceCalculations.WithLabelValues("ok").Inc()
	metrics.PriceWarnings.Add(float64(len(result.Warnings)))
	writeJSON(w, http.StatusOK, result)
}

func parseCalculateQuery(r *http.Request) (pricing.Request, error) {
	q := r.URL.Query()
	req := pricing.Request{
		GlassTypeID: q.Get("glassTypeId"),
		Toughened:   q.Get("toughened") == "true" || q.Get("toughened") == "1",
		Tier:        catalog.TierKey(q.Get("customerTier")),
		CustomerID:  q.Get("customerId"),
		TemplateID:  q.Get("templateId"),
	}

	var err error
	if req.ThicknessMM, err = parseFloatParam(q.Get("thicknessMm"), "thicknessMm"); err != nil {
		return req, err
	}
	if req.WidthMM, err = parseFloatParam(q.Get("widthMm"), "widthMm"); err != nil {
		return req, err
	}
	if req.HeightMM, err = parseFloatParam(q.Get("heightMm"), "heightMm"); err != nil {
		return req, err
	}
	qty, err := parseFloatParam(q.Get("quantity"), "quantity")
	if err != nil {
		return req, err
	}
	req.Quantity = int(qty)

	// Processing selections ride as repeated categoryId:optionId[:variation].
	for _, raw := range q["processing"] {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 2 {
			return req, errParam("processing", raw)
		}
		sel := pricing.ProcessingSelection{CategoryID: parts[0], OptionID: parts[1]}
		if len(parts) == 3 {
			sel.Variation = parts[2]
		}
		req.Selections = append(req.Selections, sel)
	}

	return req, nil
}

func parseFloatParam(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errParam(field, raw)
	}
	return value, nil
}

func errParam(field, raw string) error {
	return &paramError{field: field, raw: raw}
}

type paramError struct {
	field, raw string
}

func (e *paramError) Error() string {
	return "invalid " + e.field + " value " + strconv.Quote(e.raw)
}

// handleMarginConvert computes the missing side of the cost/price/margin
// triangle: pass cost plus either margin or price.
func (s *server) handleMarginConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cost, err := parseFloatParam(q.Get("cost"), "cost")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result struct {
		Cost          float64 `json:"cost"`
		Price         float64 `json:"price"`
		MarginPercent float64 `json:"marginPercent"`
	}
	result.Cost = cost

	switch {
	case q.Get("margin") != "":
		margin, err := parseFloatParam(q.Get("margin"), "margin")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		price, err := pricing.PriceFromMargin(cost, margin)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result.Price = price
		result.MarginPercent = margin

	case q.Get("price") != "":
		price, err := parseFloatParam(q.Get("price"), "price")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		margin, err := pricing.MarginFromPrice(cost, price)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result.Price = price
		result.MarginPercent = margin

	default:
		writeError(w, http.StatusBadRequest, "pass either margin or price")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleConfirmPattern(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Entries []sku.Entry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pattern, ok := sku.Confirm(body.Entries)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"pattern": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pattern": pattern})
}

// handleGenerateSKUs applies an accepted pattern to a variant's blank SKUs.
// Manually entered SKUs are left untouched, so re-posting is harmless.
func (s *server) handleGenerateSKUs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GlassTypeID string      `json:"glassTypeId"`
		VariantID   string      `json:"variantId"`
		Pattern     sku.Pattern `json:"pattern"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	types := snap.GlassTypes
	filled := 0
	var updated *catalog.ProductVariant
	for gi := range types {
		if types[gi].ID != body.GlassTypeID {
			continue
		}
		for vi := range types[gi].Variants {
			if types[gi].Variants[vi].ID != body.VariantID {
				continue
			}
			entries, n := sku.Fill(body.Pattern, types[gi].Variants[vi].Thicknesses)
			types[gi].Variants[vi].Thicknesses = entries
			filled = n
			updated = &types[gi].Variants[vi]
		}
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "variant not found")
		return
	}

	if err := catalog.SaveGlassTypes(s.store, types); err != nil {
		s.log.Error("save glass types", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save generated SKUs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"filled": filled, "variant": updated})
}

// handleQuoteFlowState evaluates the customer quote flow gates for the given
// in-progress form, so the UI can enable exactly the reachable steps.
func (s *server) handleQuoteFlowState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GlassTypeID       string          `json:"glassTypeId"`
		ToughenedSet      bool            `json:"toughenedSet"`
		Toughened         bool            `json:"toughened"`
		ThicknessMM       float64         `json:"thicknessMm"`
		WidthMM           float64         `json:"widthMm"`
		HeightMM          float64         `json:"heightMm"`
		Quantity          int             `json:"quantity"`
		TemplateTouched   bool            `json:"templateTouched"`
		TemplateID        string          `json:"templateId"`
		TouchedCategories map[string]bool `json:"touchedCategories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	form := workflow.QuoteForm{
		GlassTypeID:       body.GlassTypeID,
		ToughenedSet:      body.ToughenedSet,
		Toughened:         body.Toughened,
		ThicknessMM:       body.ThicknessMM,
		WidthMM:           body.WidthMM,
		HeightMM:          body.HeightMM,
		Quantity:          body.Quantity,
		TemplateTouched:   body.TemplateTouched,
		TemplateID:        body.TemplateID,
		TouchedCategories: body.TouchedCategories,
	}
	flow := workflow.NewQuoteFlow(snap, &form)

	type stepState struct {
		Step      workflow.Step `json:"step"`
		Reachable bool          `json:"reachable"`
	}
	type categoryState struct {
		CategoryID string `json:"categoryId"`
		Reachable  bool   `json:"reachable"`
	}

	steps := make([]stepState, 0)
	for _, step := range workflow.Steps() {
		steps = append(steps, stepState{Step: step, Reachable: flow.CanReach(step)})
	}
	categories := make([]categoryState, 0)
	for _, c := range snap.CategoriesInOrder() {
		categories = append(categories, categoryState{CategoryID: c.ID, Reachable: flow.CategoryReachable(c.ID)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"steps": steps, "processingCategories": categories})
}

// handleAdminWorkflowState reports which admin configuration steps are open
// given the current catalog.
func (s *server) handleAdminWorkflowState(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	glassFlow := workflow.NewGlassAdminFlow(snap, nil)
	edgework := workflow.NewProcessingAdminFlow(snap, workflow.TabEdgework)
	other := workflow.NewProcessingAdminFlow(snap, workflow.TabOther)

	writeJSON(w, http.StatusOK, map[string]any{
		"glass": map[string]bool{
			string(workflow.StepGlassConfigureTypes):  glassFlow.CanReach(workflow.StepGlassConfigureTypes),
			string(workflow.StepGlassCustomerPricing): glassFlow.CanReach(workflow.StepGlassCustomerPricing),
		},
		"edgework": map[string]bool{
			string(workflow.StepProcessingConfigure): edgework.CanReach(workflow.StepProcessingConfigure),
		},
		"other": map[string]bool{
			string(workflow.StepProcessingConfigure): other.CanReach(workflow.StepProcessingConfigure),
		},
	})
}

func (s *server) handleExportPriceList(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	f, err := export.PriceList(snap)
	if err != nil {
		s.log.Error("build price list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build price list")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="price-list.xlsx"`)
	if err := f.Write(w); err != nil {
		s.log.Error("write price list", "error", err)
	}
}

func (s *server) handleCatalogSync(w http.ResponseWriter, r *http.Request) {
	if s.remote == nil {
		writeError(w, http.StatusConflict, "no remote catalog configured")
		return
	}

	if err := s.remote.Sync(r.Context(), s.store); err != nil {
		s.log.Error("sync catalog", "error", err)
		writeError(w, http.StatusBadGateway, "catalog sync failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
