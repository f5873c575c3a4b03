// Package workflow gates which configuration step is reachable in the admin
// catalog-builder flows and the customer quoting flow. Each flow is a small
// state machine with guarded transitions over a catalog snapshot plus
// in-progress form state; moving the cursor never mutates catalog data.
package workflow

import (
	"fmt"

	"github.com/paneworks/glassquote/internal/catalog"
)

// Step names one position in a flow.
type Step string

// Admin glass-authoring flow.
const (
	StepGlassOverview        Step = "glass_overview"
	StepGlassConfigureTypes  Step = "glass_configure_types"
	StepGlassCustomerPricing Step = "glass_customer_pricing"
)

// Admin processing flow (per tab).
const (
	StepProcessingOverview  Step = "processing_overview"
	StepProcessingConfigure Step = "processing_configure"
)

// Customer quoting flow, strictly linear.
const (
	StepQuoteGlassType   Step = "quote_glass_type"
	StepQuoteProductType Step = "quote_product_type"
	StepQuoteThickness   Step = "quote_thickness"
	StepQuoteDimensions  Step = "quote_dimensions"
	StepQuoteTemplate    Step = "quote_template"
	StepQuoteProcessing  Step = "quote_processing"
	StepQuoteFinalize    Step = "quote_finalize"
)

var quoteSteps = []Step{
	StepQuoteGlassType,
	StepQuoteProductType,
	StepQuoteThickness,
	StepQuoteDimensions,
	StepQuoteTemplate,
	StepQuoteProcessing,
	StepQuoteFinalize,
}

// GlassAdminFlow sequences Overview -> ConfigureTypes -> CustomerPricing.
type GlassAdminFlow struct {
	snap    catalog.Snapshot
	draft   *catalog.GlassType
	current Step
}

// NewGlassAdminFlow starts the flow on the overview step. draft may be nil
// when no type is being authored.
func NewGlassAdminFlow(snap catalog.Snapshot, draft *catalog.GlassType) *GlassAdminFlow {
	return &GlassAdminFlow{snap: snap, draft: draft, current: StepGlassOverview}
}

// Current returns the step cursor.
func (f *GlassAdminFlow) Current() Step { return f.current }

// CanReach reports whether a step's guard passes right now.
func (f *GlassAdminFlow) CanReach(step Step) bool {
	switch step {
	case StepGlassOverview:
		return true
	case StepGlassConfigureTypes:
		return f.draft != nil || f.snap.HasCompleteGlassType()
	case StepGlassCustomerPricing:
		return f.draftHasThickness()
	}
	return false
}

// Goto moves the cursor if the guard passes.
func (f *GlassAdminFlow) Goto(step Step) error {
	if !f.CanReach(step) {
		return fmt.Errorf("step %q is not reachable", step)
	}
	f.current = step
	return nil
}

func (f *GlassAdminFlow) draftHasThickness() bool {
	if f.draft == nil {
		return false
	}
	for _, v := range f.draft.Variants {
		if len(v.Thicknesses) > 0 {
			return true
		}
	}
	return false
}

// ProcessingTab selects which processing admin flow is gated.
type ProcessingTab string

const (
	TabEdgework ProcessingTab = "edgework"
	TabOther    ProcessingTab = "other"
)

// ProcessingAdminFlow sequences Overview -> ConfigureOptions for one tab.
type ProcessingAdminFlow struct {
	snap    catalog.Snapshot
	tab     ProcessingTab
	current Step
}

func NewProcessingAdminFlow(snap catalog.Snapshot, tab ProcessingTab) *ProcessingAdminFlow {
	return &ProcessingAdminFlow{snap: snap, tab: tab, current: StepProcessingOverview}
}

func (f *ProcessingAdminFlow) Current() Step { return f.current }

// CanReach gates ConfigureOptions: edgework needs at least one active
// thickness anywhere in the catalog, other processing needs a supplier.
func (f *ProcessingAdminFlow) CanReach(step Step) bool {
	switch step {
	case StepProcessingOverview:
		return true
	case StepProcessingConfigure:
		if f.tab == TabEdgework {
			return f.snap.HasActiveThickness()
		}
		return f.snap.HasActiveSupplier()
	}
	return false
}

func (f *ProcessingAdminFlow) Goto(step Step) error {
	if !f.CanReach(step) {
		return fmt.Errorf("step %q is not reachable", step)
	}
	f.current = step
	return nil
}

// QuoteForm is the customer's in-progress selection state. TouchedCategories
// records processing categories the customer has reviewed, whether or not an
// option was chosen ("none" still counts as touched).
type QuoteForm struct {
	GlassTypeID       string
	ToughenedSet      bool
	Toughened         bool
	ThicknessMM       float64
	WidthMM           float64
	HeightMM          float64
	Quantity          int
	TemplateTouched   bool
	TemplateID        string
	TouchedCategories map[string]bool
}

// QuoteFlow walks the strictly linear 7-step quoting sequence. Each step
// becomes reachable only once its immediate predecessor holds a valid,
// non-empty selection.
type QuoteFlow struct {
	snap    catalog.Snapshot
	form    *QuoteForm
	current Step
}

func NewQuoteFlow(snap catalog.Snapshot, form *QuoteForm) *QuoteFlow {
	return &QuoteFlow{snap: snap, form: form, current: StepQuoteGlassType}
}

func (f *QuoteFlow) Current() Step { return f.current }

// Steps returns the quote step sequence in order.
func Steps() []Step {
	out := make([]Step, len(quoteSteps))
	copy(out, quoteSteps)
	return out
}

// stepComplete reports whether the form satisfies one step.
func (f *QuoteFlow) stepComplete(step Step) bool {
	switch step {
	case StepQuoteGlassType:
		return f.form.GlassTypeID != ""
	case StepQuoteProductType:
		return f.form.ToughenedSet
	case StepQuoteThickness:
		return f.form.ThicknessMM > 0
	case StepQuoteDimensions:
		return f.form.Quantity > 0 && f.form.WidthMM > 0 && f.form.HeightMM > 0
	case StepQuoteTemplate:
		// Template is optional but must be reviewed; an empty TemplateID
		// after review means "no template".
		return f.form.TemplateTouched
	case StepQuoteProcessing:
		for _, c := range f.snap.CategoriesInOrder() {
			if !f.form.TouchedCategories[c.ID] {
				return false
			}
		}
		return true
	case StepQuoteFinalize:
		return false
	}
	return false
}

// CanReach reports whether every predecessor of step is complete.
func (f *QuoteFlow) CanReach(step Step) bool {
	for _, s := range quoteSteps {
		if s == step {
			return true
		}
		if !f.stepComplete(s) {
			return false
		}
	}
	return false
}

// Goto moves the cursor to step if it is reachable.
func (f *QuoteFlow) Goto(step Step) error {
	if !f.CanReach(step) {
		return fmt.Errorf("step %q is not reachable", step)
	}
	f.current = step
	return nil
}

// Advance moves the cursor to the next step in sequence.
func (f *QuoteFlow) Advance() error {
	for i, s := range quoteSteps {
		if s != f.current {
			continue
		}
		if i == len(quoteSteps)-1 {
			return fmt.Errorf("already at final step %q", f.current)
		}
		return f.Goto(quoteSteps[i+1])
	}
	return fmt.Errorf("unknown step %q", f.current)
}

// CategoryReachable sub-gates the processing chain: categories open in
// sequence order, each requiring the previous one to have been touched. This
// forces a linear review of every category without requiring a choice.
func (f *QuoteFlow) CategoryReachable(categoryID string) bool {
	previousTouched := true
	for _, c := range f.snap.CategoriesInOrder() {
		if c.ID == categoryID {
			return previousTouched
		}
		previousTouched = f.form.TouchedCategories[c.ID]
	}
	return false
}
