// Package form holds the product record under construction and keeps it
// consistent: taxonomy selections cascade, attribute lists are merged in as
// canonical encodings and submission is all-or-nothing.
package form

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/vitrinelab/vitrine/internal/attribute"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
	"github.com/vitrinelab/vitrine/internal/validation"
)

// Taxonomy is the lookup surface a session needs. *taxonomy.Resolver implements it.
type Taxonomy interface {
	Types() []domain.Option
	ClassificationsFor(typeValue string) []domain.Option
	CategoriesFor(classificationValue string) []domain.Option
	Node(level taxonomy.Level, value string) (taxonomy.Node, bool)
	Match(level taxonomy.Level, parent, text string) (taxonomy.Node, bool)
}

// Submitter persists a finished product.
type Submitter interface {
	CreateProduct(ctx context.Context, payload *domain.ProductPayload) (*domain.Product, error)
}

// Options are the select lists valid for the current selections.
type Options struct {
	Types           []domain.Option `json:"types"`
	Classifications []domain.Option `json:"classifications"`
	Categories      []domain.Option `json:"categories"`
}

// Session owns one ProductDraft and the three list editors feeding it.
//
// All methods are safe for concurrent use. Mutations are applied in call
// order; Submit holds the session for the duration of the backend call so no
// edit can slip between building the payload and resetting the draft.
type Session struct {
	mu        sync.Mutex
	taxonomy  Taxonomy
	validator *validation.Validator

	draft     domain.ProductDraft
	include   *attribute.AddOnEditor
	remove    *attribute.RemovalEditor
	datasheet *attribute.SpecEditor

	submitted int
}

// NewSession starts a session with an empty draft and one blank row per list.
func NewSession(tax Taxonomy, v *validation.Validator) *Session {
	if v == nil {
		v = validation.New()
	}
	s := &Session{
		taxonomy:  tax,
		validator: v,
		include:   attribute.NewAddOnEditor(),
		remove:    attribute.NewRemovalEditor(),
	}
	// Called from Add, which only runs with s.mu held.
	s.datasheet = attribute.NewSpecEditor(func() bool { return s.draft.IsMenu() })
	s.reset()
	return s
}

// reset must be called with s.mu held.
func (s *Session) reset() {
	s.draft = domain.NewProductDraft()
	s.include.Reset()
	s.remove.Reset()
	s.datasheet.Reset()
	s.include.Add()
	s.remove.Add()
	s.datasheet.Add()
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() domain.ProductDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submitted returns how many drafts this session has submitted.
func (s *Session) Submitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Options returns the option lists for the current selections.
func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options()
}

func (s *Session) options() Options {
	return Options{
		Types:           s.taxonomy.Types(),
		Classifications: s.taxonomy.ClassificationsFor(s.draft.ProductType),
		Categories:      s.taxonomy.CategoriesFor(s.draft.Classification),
	}
}

// SetType selects a product type. Classification and category are cleared in
// the same step and the classification options for the new type are returned.
// An empty value clears the type.
func (s *Session) SetType(value string) ([]domain.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = strings.TrimSpace(value)
	if value != "" {
		if _, ok := s.taxonomy.Node(taxonomy.LevelType, value); !ok {
			return nil, errors.ValidationWithDetails("unknown product type",
				map[string]string{"productType": value})
		}
	}
	s.selectType(value)
	return s.taxonomy.ClassificationsFor(value), nil
}

// SetClassification selects a classification under the current type and
// clears the category. It returns the category options for the new value.
func (s *Session) SetClassification(value string) ([]domain.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = strings.TrimSpace(value)
	if value != "" && !s.isChild(taxonomy.LevelClassification, s.draft.ProductType, value) {
		return nil, errors.ValidationWithDetails("classification does not belong to the selected type",
			map[string]string{"classification": value})
	}
	s.selectClassification(value)
	return s.taxonomy.CategoriesFor(value), nil
}

// SetCategory selects a category under the current classification.
func (s *Session) SetCategory(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = strings.TrimSpace(value)
	if value != "" && !s.isChild(taxonomy.LevelCategory, s.draft.Classification, value) {
		return errors.ValidationWithDetails("category does not belong to the selected classification",
			map[string]string{"category": value})
	}
	s.draft.Category = value
	return nil
}

// selectType and selectClassification are the only writers of the taxonomy
// selections, so the downstream clear always happens together with the change.
func (s *Session) selectType(value string) {
	s.draft.ProductType = value
	s.draft.Classification = ""
	s.draft.Category = ""
}

func (s *Session) selectClassification(value string) {
	s.draft.Classification = value
	s.draft.Category = ""
}

func (s *Session) isChild(level taxonomy.Level, parent, value string) bool {
	if parent == "" {
		return false
	}
	var siblings []domain.Option
	if level == taxonomy.LevelClassification {
		siblings = s.taxonomy.ClassificationsFor(parent)
	} else {
		siblings = s.taxonomy.CategoriesFor(parent)
	}
	return taxonomy.HasOption(siblings, value)
}

// Patch carries plain field updates. Nil fields are left alone.
type Patch struct {
	Title       *string               `json:"title,omitempty"`
	PartnerID   *string               `json:"idPartner,omitempty"`
	PrinterID   *string               `json:"idPrinter,omitempty"`
	Measure     *string               `json:"measure,omitempty"`
	Quantity    *string               `json:"quantity,omitempty"`
	Price       *string               `json:"price,omitempty"`
	Offer       *string               `json:"offer,omitempty"`
	Description *string               `json:"description,omitempty"`
	Image       *string               `json:"image,omitempty"`
	Status      *domain.ProductStatus `json:"status,omitempty"`
}

// Apply writes every non-nil field of p. An unknown status rejects the whole
// patch.
func (s *Session) Apply(p Patch) error {
	if p.Status != nil && !p.Status.Valid() {
		return errors.ValidationWithDetails("invalid status",
			map[string]string{"status": string(*p.Status)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.draft.Title, p.Title)
	set(&s.draft.PartnerID, p.PartnerID)
	set(&s.draft.PrinterID, p.PrinterID)
	set(&s.draft.Measure, p.Measure)
	set(&s.draft.Quantity, p.Quantity)
	set(&s.draft.Price, p.Price)
	set(&s.draft.Offer, p.Offer)
	set(&s.draft.Description, p.Description)
	set(&s.draft.Image, p.Image)
	if p.Status != nil {
		s.draft.Status = *p.Status
	}
	return nil
}

// SetTitle sets the product title.
func (s *Session) SetTitle(title string) {
	_ = s.Apply(Patch{Title: &title})
}

// SetCommercial sets the measure unit, quantity, price and offer together.
func (s *Session) SetCommercial(measure, quantity, price, offer string) {
	_ = s.Apply(Patch{Measure: &measure, Quantity: &quantity, Price: &price, Offer: &offer})
}

// SetDescription sets the free-text description.
func (s *Session) SetDescription(description string) {
	_ = s.Apply(Patch{Description: &description})
}

// SetPartner sets the partner identifier.
func (s *Session) SetPartner(id string) {
	_ = s.Apply(Patch{PartnerID: &id})
}

// SetPrinter sets the printer identifier.
func (s *Session) SetPrinter(id string) {
	_ = s.Apply(Patch{PrinterID: &id})
}

// SetImage sets the product image URL.
func (s *Session) SetImage(url string) {
	_ = s.Apply(Patch{Image: &url})
}

// SetStatus sets the product status.
func (s *Session) SetStatus(status domain.ProductStatus) error {
	return s.Apply(Patch{Status: &status})
}

// MergeAttributeEncoding stores enc as the canonical encoding of kind.
// No other field changes.
func (s *Session) MergeAttributeEncoding(kind domain.ListKind, enc *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merge(kind, enc)
}

func (s *Session) merge(kind domain.ListKind, enc *string) error {
	if enc != nil {
		v := *enc
		enc = &v
	}
	switch kind {
	case domain.ListInclude:
		s.draft.Include = enc
	case domain.ListRemove:
		s.draft.Remove = enc
	case domain.ListDatasheet:
		s.draft.Datasheet = enc
	default:
		return unknownList(kind)
	}
	return nil
}

// Submit validates the draft and hands the payload to submitter. Only a
// successful submission resets the session; on any failure the draft and
// the list editors are left exactly as they were.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.buildPayload()
	if err != nil {
		return nil, err
	}

	product, err := submitter.CreateProduct(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.submitted++
	s.reset()
	return product, nil
}

// Payload builds the submission body without submitting it.
func (s *Session) Payload() (*domain.ProductPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildPayload()
}

// ApplyAnalysis copies the analysis-controlled fields of p into the draft:
// title, type, classification, category, price, offer, description and
// status. Everything else, including the list editors, is kept.
//
// Classification and category come back as free text and are matched against
// the taxonomy under their parent; anything that does not resolve is left
// empty rather than stored as a dangling selection.
func (s *Session) ApplyAnalysis(p *domain.AnalyzedProduct) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Title = p.Title

	productType := strings.TrimSpace(p.ProductType)
	if n, ok := s.taxonomy.Match(taxonomy.LevelType, "", productType); ok {
		productType = n.Value
	}
	s.selectType(productType)

	if productType != "" {
		if n, ok := s.taxonomy.Match(taxonomy.LevelClassification, productType, p.OriginalClassification); ok {
			s.selectClassification(n.Value)
			if c, ok := s.taxonomy.Match(taxonomy.LevelCategory, n.Value, p.OriginalCategory); ok {
				s.draft.Category = c.Value
			}
		}
	}

	s.draft.Price = formatAmount(p.Price)
	s.draft.Offer = formatAmount(p.Offer)
	s.draft.Description = p.Description
	if p.Status.Valid() {
		s.draft.Status = p.Status
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unknownList(kind domain.ListKind) error {
	return errors.ValidationWithDetails("unknown list",
		map[string]string{"kind": string(kind)})
}

// Snapshot is a consistent view of the whole session.
type Snapshot struct {
	Draft     domain.ProductDraft `json:"draft"`
	Options   Options             `json:"options"`
	Lists     []ListView          `json:"lists"`
	Submitted int                 `json:"submitted"`
}

// Snapshot captures draft, options and lists under a single lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Draft:     s.draft,
		Options:   s.options(),
		Submitted: s.submitted,
	}
	for _, kind := range domain.ListKinds() {
		view, _ := s.list(kind)
		snap.Lists = append(snap.Lists, view)
	}
	return snap
}
