package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

type fakeSubmitter struct {
	err      error
	payloads []*domain.ProductPayload
}

func (f *fakeSubmitter) CreateProduct(_ context.Context, p *domain.ProductPayload) (*domain.Product, error) {
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Product{SKU: 42, Title: p.Title}, nil
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	resolver, err := taxonomy.NewDefaultResolver(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })
	return NewSession(resolver, nil)
}

// fillValid puts the session in a submittable state.
func fillValid(t *testing.T, s *Session) {
	t.Helper()
	_, err := s.SetType("menu")
	require.NoError(t, err)
	_, err = s.SetClassification("bebida")
	require.NoError(t, err)
	require.NoError(t, s.SetCategory("suco"))
	s.SetTitle("Suco de Laranja")
	s.SetPartner("1")
	s.SetCommercial("un", "1", "R$ 12,50", "10")
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestNewSession_StartsBlank(t *testing.T) {
	s := newTestSession(t)

	snap := s.Snapshot()
	assert.Equal(t, domain.NewProductDraft(), snap.Draft)
	assert.Empty(t, snap.Options.Classifications)
	assert.Empty(t, snap.Options.Categories)
	assert.Len(t, snap.Options.Types, 3)

	require.Len(t, snap.Lists, 3)
	for _, l := range snap.Lists {
		assert.Len(t, l.Rows, 1, l.Kind)
		assert.Nil(t, l.Committed)
		assert.Nil(t, l.Pending)
	}
	assert.Equal(t, "stock", snap.Lists[2].Rows[0].Shape)
}

func TestSetType_ClearsDownstream(t *testing.T) {
	tests := []struct {
		name    string
		newType string
	}{
		{"different type", "souvenir"},
		{"same type", "menu"},
		{"cleared", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			fillValid(t, s)

			opts, err := s.SetType(tt.newType)
			require.NoError(t, err)

			d := s.Draft()
			assert.Equal(t, tt.newType, d.ProductType)
			assert.Empty(t, d.Classification)
			assert.Empty(t, d.Category)
			assert.NotNil(t, opts)
			if tt.newType == "" {
				assert.Empty(t, opts)
			} else {
				assert.Len(t, opts, 3)
			}
		})
	}
}

func TestSetType_Unknown(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)

	_, err := s.SetType("furniture")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	d := s.Draft()
	assert.Equal(t, "menu", d.ProductType)
	assert.Equal(t, "suco", d.Category)
}

func TestSetClassification_ClearsCategory(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)

	cats, err := s.SetClassification("entrada")
	require.NoError(t, err)

	assert.Equal(t, []string{"salada", "sopa", "petisco"}, optionValues(cats))
	assert.Equal(t, "entrada", s.Draft().Classification)
	assert.Empty(t, s.Draft().Category)
}

func TestSetClassification_MustBelongToType(t *testing.T) {
	s := newTestSession(t)

	_, err := s.SetClassification("bebida")
	assert.Error(t, err, "no type selected")

	_, err = s.SetType("souvenir")
	require.NoError(t, err)
	_, err = s.SetClassification("bebida")
	assert.Error(t, err)
	assert.Empty(t, s.Draft().Classification)
}

func TestSetCategory_MustBelongToClassification(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)

	err := s.SetCategory("madeira")
	require.Error(t, err)
	assert.Equal(t, "suco", s.Draft().Category)

	require.NoError(t, s.SetCategory(""))
	assert.Empty(t, s.Draft().Category)
}

func TestApply_RejectsInvalidStatus(t *testing.T) {
	s := newTestSession(t)
	title := "Caneca Azul"
	bad := domain.ProductStatus("archived")

	err := s.Apply(Patch{Title: &title, Status: &bad})
	require.Error(t, err)
	assert.Empty(t, s.Draft().Title, "patch applied partially")

	require.NoError(t, s.SetStatus(domain.StatusReleased))
	assert.Equal(t, domain.StatusReleased, s.Draft().Status)
}

func TestMergeAttributeEncoding_TouchesOnlyItsField(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)
	before := s.Draft()

	enc := "cheese = 2.50"
	require.NoError(t, s.MergeAttributeEncoding(domain.ListInclude, &enc))

	after := s.Draft()
	require.NotNil(t, after.Include)
	assert.Equal(t, enc, *after.Include)

	after.Include = nil
	assert.Equal(t, before, after)

	assert.Error(t, s.MergeAttributeEncoding("extras", &enc))
}

func TestCommitList(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetRowField(domain.ListInclude, 0, "ingredient", "cheese"))
	require.NoError(t, s.SetRowField(domain.ListInclude, 0, "value", "2.50"))
	i, err := s.AddRow(domain.ListInclude)
	require.NoError(t, err)
	require.NoError(t, s.SetRowField(domain.ListInclude, i, "value", "1.00"))

	enc, err := s.CommitList(domain.ListInclude)
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Equal(t, "cheese = 2.50", *enc)
	assert.Equal(t, enc, s.Draft().Include)

	// Editing after commit leaves the merged value alone until the next commit.
	require.NoError(t, s.RemoveRow(domain.ListInclude, 0))
	view, err := s.List(domain.ListInclude)
	require.NoError(t, err)
	assert.Len(t, view.Rows, 1)
	assert.Nil(t, view.Pending)
	require.NotNil(t, view.Committed)
	assert.Equal(t, "cheese = 2.50", *view.Committed)

	enc, err = s.CommitList(domain.ListInclude)
	require.NoError(t, err)
	assert.Nil(t, enc)
	assert.Nil(t, s.Draft().Include)
}

func TestDatasheetRows_FollowTypeAtAdd(t *testing.T) {
	s := newTestSession(t)

	_, err := s.SetType("menu")
	require.NoError(t, err)
	i, err := s.AddRow(domain.ListDatasheet)
	require.NoError(t, err)

	require.NoError(t, s.SetRowField(domain.ListDatasheet, i, "kind", "flour"))
	require.NoError(t, s.SetRowField(domain.ListDatasheet, i, "quantity", "500"))
	require.NoError(t, s.SetRowField(domain.ListDatasheet, i, "unit", "g"))

	_, err = s.SetType("vestuario")
	require.NoError(t, err)

	view, err := s.List(domain.ListDatasheet)
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "stock", view.Rows[0].Shape)
	assert.Equal(t, "menu", view.Rows[1].Shape)

	enc, err := s.CommitList(domain.ListDatasheet)
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Equal(t, "flour = 500 g", *enc)
}

func TestSetRowField_Errors(t *testing.T) {
	s := newTestSession(t)

	err := s.SetRowField(domain.ListRemove, 0, "value", "x")
	assert.Error(t, err, "unknown field name")

	// The blank datasheet row is a stock row; kind is a menu field.
	err = s.SetRowField(domain.ListDatasheet, 0, "kind", "flour")
	assert.Error(t, err)

	assert.NoError(t, s.SetRowField(domain.ListRemove, 9, "ingredient", "x"), "out of range is silent")
	assert.NoError(t, s.RemoveRow(domain.ListRemove, 9))
	assert.Error(t, s.RemoveRow("extras", 0))

	_, err = s.AddRow("extras")
	assert.Error(t, err)
}

func TestSubmit_SuccessResets(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)
	require.NoError(t, s.SetRowField(domain.ListRemove, 0, "ingredient", "onion"))
	_, err := s.CommitList(domain.ListRemove)
	require.NoError(t, err)

	sub := &fakeSubmitter{}
	product, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.SKU)

	require.Len(t, sub.payloads, 1)
	p := sub.payloads[0]
	assert.Equal(t, "Suco de Laranja", p.Title)
	assert.Equal(t, "menu", p.ProductType)
	assert.Equal(t, 6, p.ClassificationID)
	assert.Equal(t, 16, p.CategoryID)
	assert.Equal(t, 1, p.PartnerID)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 10.0, p.Offer)
	require.NotNil(t, p.Remove)
	assert.Equal(t, "onion", *p.Remove)
	assert.Nil(t, p.Include)
	assert.Nil(t, p.Description)

	assert.Equal(t, domain.NewProductDraft(), s.Draft())
	assert.Equal(t, 1, s.Submitted())
	view, err := s.List(domain.ListRemove)
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	assert.Empty(t, view.Rows[0].Fields["ingredient"])
}

func TestSubmit_FailurePreservesDraft(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)
	require.NoError(t, s.SetRowField(domain.ListInclude, 0, "ingredient", "bacon"))
	before := s.Snapshot()

	sub := &fakeSubmitter{err: errors.Upstream("catalog unavailable")}
	_, err := s.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")

	assert.Equal(t, before, s.Snapshot())
	assert.Zero(t, s.Submitted())
}

func TestSubmit_ValidationFailureSkipsBackend(t *testing.T) {
	s := newTestSession(t)
	s.SetTitle("Mug")

	sub := &fakeSubmitter{}
	_, err := s.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Empty(t, sub.payloads)

	details := detailsOf(t, err)
	assert.Equal(t, "must be at least 6 characters", details["title"])
	assert.Contains(t, details, "idca")
	assert.Contains(t, details, "idcl")
	assert.Equal(t, "Mug", s.Draft().Title)
}

func TestSubmit_ParseProblems(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)
	s.SetPartner("um")
	s.SetCommercial("un", "muito", "doze", "")

	_, err := s.Payload()
	require.Error(t, err)

	details := detailsOf(t, err)
	assert.Contains(t, details, "idPartner")
	assert.Contains(t, details, "quantity")
	assert.Contains(t, details, "price")
	assert.NotContains(t, details, "offer")
}

func TestSubmit_DecimalQuantityAndNonFinitePrice(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)
	s.SetCommercial("kg", "0.75", "Inf", "NaN")

	sub := &fakeSubmitter{}
	_, err := s.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Empty(t, sub.payloads)

	details := detailsOf(t, err)
	assert.Equal(t, "must be an amount", details["price"])
	assert.Equal(t, "must be an amount", details["offer"])
	assert.NotContains(t, details, "quantity")

	s.SetCommercial("kg", "0.75", "R$ 12,50", "")
	p, err := s.Payload()
	require.NoError(t, err)
	require.NotNil(t, p.Quantity)
	assert.InDelta(t, 0.75, *p.Quantity, 1e-9)
}

func TestApplyAnalysis(t *testing.T) {
	s := newTestSession(t)
	s.SetPartner("3")
	s.SetImage("https://cdn.example.com/a.jpg")
	require.NoError(t, s.SetRowField(domain.ListRemove, 0, "ingredient", "ice"))

	s.ApplyAnalysis(&domain.AnalyzedProduct{
		Title:                  "Suco de Uva",
		ProductType:            "Menu",
		Price:                  9.9,
		Offer:                  8,
		Description:            "Suco natural",
		Status:                 domain.StatusPending,
		OriginalClassification: "Bebida",
		OriginalCategory:       "suco",
		AnalysisMethod:         domain.MethodAIVision,
	})

	d := s.Draft()
	assert.Equal(t, "Suco de Uva", d.Title)
	assert.Equal(t, "menu", d.ProductType)
	assert.Equal(t, "bebida", d.Classification)
	assert.Equal(t, "suco", d.Category)
	assert.Equal(t, "9.9", d.Price)
	assert.Equal(t, "8", d.Offer)
	assert.Equal(t, "Suco natural", d.Description)

	// Fields the analysis does not control survive.
	assert.Equal(t, "3", d.PartnerID)
	assert.Equal(t, "https://cdn.example.com/a.jpg", d.Image)
	view, err := s.List(domain.ListRemove)
	require.NoError(t, err)
	assert.Equal(t, "ice", view.Rows[0].Fields["ingredient"])
}

func TestApplyAnalysis_UnresolvedTaxonomyStaysEmpty(t *testing.T) {
	s := newTestSession(t)
	fillValid(t, s)

	s.ApplyAnalysis(&domain.AnalyzedProduct{
		Title:                  "Vaso Decorativo",
		ProductType:            "souvenir",
		OriginalClassification: "Decoração",
		OriginalCategory:       "Vasos",
	})

	d := s.Draft()
	assert.Equal(t, "souvenir", d.ProductType)
	assert.Empty(t, d.Classification)
	assert.Empty(t, d.Category)
	assert.Equal(t, domain.StatusPending, d.Status)

	s.ApplyAnalysis(nil)
	assert.Equal(t, "Vaso Decorativo", s.Draft().Title)
}

func optionValues(opts []domain.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
