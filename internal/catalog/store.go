package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Fixed logical keys of the configuration store.
const (
	KeyGlassCatalog         = "glass_catalog"
	KeyProcessingCategories = "processing_categories"
	KeyProcessingOptions    = "processing_options"
	KeyPricingTiers         = "pricing_tiers"
	KeyTemplates            = "glass_templates"
	KeySuppliers            = "suppliers"
	KeyCustomerOverrides    = "customer_overrides"
)

// Store is the key-value configuration store the catalog lives in. An absent
// key is a normal condition (empty catalog), never an error.
type Store interface {
	Get(key string) (json.RawMessage, bool, error)
	Set(key string, value json.RawMessage) error
}

// SQLStore keeps catalog values in the catalog_store table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database as a Store.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM catalog_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query catalog key %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

func (s *SQLStore) Set(key string, value json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO catalog_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("write catalog key %q: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and offline use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Get(key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func (m *MemoryStore) Set(key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	m.values[key] = cp
	return nil
}

// Load reads every catalog key and assembles a Snapshot. Absent keys load as
// empty collections. Thickness entries without tier prices get an all-unset
// TierPrices struct so later reads see a uniform shape.
func Load(store Store) (Snapshot, error) {
	var snap Snapshot

	if err := loadKey(store, KeyGlassCatalog, &snap.GlassTypes); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeyProcessingCategories, &snap.Categories); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeyProcessingOptions, &snap.Options); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeyPricingTiers, &snap.Tiers); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeyTemplates, &snap.Templates); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeySuppliers, &snap.Suppliers); err != nil {
		return Snapshot{}, err
	}
	if err := loadKey(store, KeyCustomerOverrides, &snap.Overrides); err != nil {
		return Snapshot{}, err
	}

	for gi := range snap.GlassTypes {
		for vi := range snap.GlassTypes[gi].Variants {
			ths := snap.GlassTypes[gi].Variants[vi].Thicknesses
			for ti := range ths {
				if ths[ti].TierPrices == nil {
					ths[ti].TierPrices = &TierPrices{}
				}
			}
		}
	}

	return snap, nil
}

func loadKey(store Store, key string, dst any) error {
	raw, ok, err := store.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode catalog key %q: %w", key, err)
	}
	return nil
}

// SaveGlassTypes writes the glass catalog back to the store.
func SaveGlassTypes(store Store, types []GlassType) error {
	return saveKey(store, KeyGlassCatalog, types)
}

// SaveOptions validates every pricing model, then writes the options list.
func SaveOptions(store Store, options []ProcessingOption) error {
	for _, opt := range options {
		if err := opt.Pricing.Validate(); err != nil {
			return fmt.Errorf("option %q: %w", opt.ID, err)
		}
	}
	return saveKey(store, KeyProcessingOptions, options)
}

// SaveCategories writes the processing categories list.
func SaveCategories(store Store, categories []ProcessingCategory) error {
	return saveKey(store, KeyProcessingCategories, categories)
}

// SaveTiers writes the pricing tier list.
func SaveTiers(store Store, tiers []PricingTier) error {
	return saveKey(store, KeyPricingTiers, tiers)
}

// SaveTemplates writes the glass template list.
func SaveTemplates(store Store, templates []GlassTemplate) error {
	return saveKey(store, KeyTemplates, templates)
}

// SaveSuppliers writes the supplier list.
func SaveSuppliers(store Store, suppliers []Supplier) error {
	return saveKey(store, KeySuppliers, suppliers)
}

// SaveOverrides writes the customer override list.
func SaveOverrides(store Store, overrides []CustomerOverride) error {
	return saveKey(store, KeyCustomerOverrides, overrides)
}

func saveKey(store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode catalog key %q: %w", key, err)
	}
	return store.Set(key, raw)
}
