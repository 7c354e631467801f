package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	product "github.com/amendez21/storefront-backend/internal/products"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
)

type recordingCatalog struct {
	lastList    *product.ListInput
	listResult  *product.ListResult
	dto         *product.ProductDTO
	suggestions []product.Suggestion
	err         error
}

func (s *recordingCatalog) List(_ context.Context, input product.ListInput) (*product.ListResult, error) {
	s.lastList = &input
	return s.listResult, s.err
}

func (s *recordingCatalog) GetByID(context.Context, uint) (*product.ProductDTO, error) {
	return s.dto, s.err
}

func (s *recordingCatalog) GetBySlug(context.Context, string) (*product.ProductDTO, error) {
	return s.dto, s.err
}

func (s *recordingCatalog) Suggestions(context.Context, string) ([]product.Suggestion, error) {
	return s.suggestions, s.err
}

func (s *recordingCatalog) Lookup(context.Context, uint) (*models.Product, error) {
	return nil, s.err
}

func TestProductListParsesQuery(t *testing.T) {
	catalog := &recordingCatalog{listResult: &product.ListResult{Products: []product.ProductDTO{}}}
	handler := ProductList(catalog, testLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/products?page=2&limit=10&category_id=3&min_price=5.50&in_stock=true&search=espresso&sort=Price&order=ASC", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	in := catalog.lastList
	if in == nil {
		t.Fatal("list never called")
	}
	if in.Page.Page != 2 || in.Page.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", in.Page)
	}
	if in.Filters.CategoryID == nil || *in.Filters.CategoryID != 3 {
		t.Fatalf("category filter not parsed: %+v", in.Filters)
	}
	if in.Filters.MinPrice == nil || in.Filters.MinPrice.String() != "5.5" {
		t.Fatalf("min price not parsed: %+v", in.Filters.MinPrice)
	}
	if in.Filters.InStock == nil || !*in.Filters.InStock {
		t.Fatalf("in_stock not parsed: %+v", in.Filters.InStock)
	}
	if in.Filters.Search != "espresso" {
		t.Fatalf("unexpected search %q", in.Filters.Search)
	}
	if in.Sort.Field != "price" || in.Sort.Direction != "asc" {
		t.Fatalf("sort not lowercased: %+v", in.Sort)
	}
}

func TestProductListRejectsBadLimit(t *testing.T) {
	handler := ProductList(&recordingCatalog{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=5000", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductDetailByID(t *testing.T) {
	catalog := &recordingCatalog{dto: &product.ProductDTO{ID: 42, Name: "Espresso Blend"}}
	handler := ProductDetail(catalog, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil)
	req = withURLParam(req, "productId", "42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data product.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != 42 {
		t.Fatalf("unexpected product id %d", envelope.Data.ID)
	}
}

func TestProductDetailBySlugNotFound(t *testing.T) {
	catalog := &recordingCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := ProductDetail(catalog, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/espresso-blend", nil)
	req = withURLParam(req, "productId", "espresso-blend")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestSearchSuggestionsEnvelope(t *testing.T) {
	catalog := &recordingCatalog{suggestions: []product.Suggestion{{ID: 1, Name: "Espresso Blend"}}}
	handler := SearchSuggestions(catalog, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/suggestions?q=esp", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Suggestions []product.Suggestion `json:"suggestions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Suggestions) != 1 || envelope.Data.Suggestions[0].Name != "Espresso Blend" {
		t.Fatalf("unexpected suggestions %+v", envelope.Data.Suggestions)
	}
}
