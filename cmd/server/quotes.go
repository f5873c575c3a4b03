package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/paneworks/glassquote/internal/pricing"
)

type quoteListItem struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"createdAt"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		s.log.Error("list quotes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}

	writeJSON(w, http.StatusOK, quotes)
}

// handleQuoteCreate prices the request, persists the quote with its full
// breakdown, and returns the result.
func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title   string          `json:"title"`
		Notes   string          `json:"notes"`
		Request pricing.Request `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	result, err := pricing.Calculate(snap, body.Request)
	if err != nil {
		var lookupErr *pricing.LookupError
		var dimErr *pricing.DimensionError
		switch {
		case errors.As(err, &lookupErr):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &dimErr):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.log.Error("calculate quote price", "error", err)
			writeError(w, http.StatusInternalServerError, "price calculation failed")
		}
		return
	}

	id, err := s.insertQuote(body.Title, body.Notes, body.Request, result)
	if err != nil {
		s.log.Error("insert quote", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "result": result})
}

func (s *server) insertQuote(title, notes string, req pricing.Request, result pricing.Result) (int64, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode quote request: %w", err)
	}
	breakdownJSON, err := json.Marshal(result.Lines)
	if err != nil {
		return 0, fmt.Errorf("encode quote breakdown: %w", err)
	}
	totalsJSON, err := json.Marshal(map[string]float64{
		"baseTotal":       result.BaseTotal,
		"processingTotal": result.ProcessingTotal,
		"templateCost":    result.TemplateCost,
		"total":           result.Total,
	})
	if err != nil {
		return 0, fmt.Errorf("encode quote totals: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO quotes (title, notes, customer_id, request_json, breakdown_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, title, notes, req.CustomerID, string(requestJSON), string(breakdownJSON), string(totalsJSON))
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read quote id: %w", err)
	}
	return id, nil
}

func (s *server) listQuotes(query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			totals_json
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &totalsJSON); err != nil {
			return nil, err
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotes, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	if total, ok := values["total"]; ok {
		return total
	}
	return 0
}
