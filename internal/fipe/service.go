package fipe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// BrandsQuery selects the brand list of a category. An empty Category means Cars.
type BrandsQuery struct {
	Category string `json:"vehicleType"`
}

type ModelsQuery struct {
	Category  string `json:"vehicleType"`
	BrandCode string `json:"brandCode"`
}

type YearsQuery struct {
	Category  string `json:"vehicleType"`
	BrandCode string `json:"brandCode"`
	ModelCode string `json:"modelCode"`
}

type PriceQuery struct {
	Category  string `json:"vehicleType"`
	BrandCode string `json:"brandCode"`
	ModelCode string `json:"modelCode"`
	YearCode  string `json:"yearCode"`
}

// Service exposes the four lookups. Every method returns nil and makes no
// network call when its query is nil.
type Service struct {
	gateway *Gateway
	baseURL string
}

func NewService(gateway *Gateway, baseURL string) *Service {
	return &Service{gateway: gateway, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) ListBrands(ctx context.Context, q *BrandsQuery) (References, error) {
	if q == nil {
		return nil, nil
	}
	category, err := ParseCategory(q.Category)
	if err != nil {
		return nil, err
	}

	var brands References
	if err := s.gateway.FetchWithCache(ctx, cacheKey("brands", category), s.url(category, "marcas"), &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// ListModels drops the "anos" half of the upstream response; years are
// looked up per model through ListYears.
func (s *Service) ListModels(ctx context.Context, q *ModelsQuery) (References, error) {
	if q == nil {
		return nil, nil
	}
	category, err := ParseCategory(q.Category)
	if err != nil {
		return nil, err
	}
	if err := requireCodes(q.BrandCode); err != nil {
		return nil, err
	}
	if err := rejectSeparator(q.BrandCode); err != nil {
		return nil, err
	}

	var resp modelsResponse
	key := cacheKey("models", category, q.BrandCode)
	if err := s.gateway.FetchWithCache(ctx, key, s.url(category, "marcas", q.BrandCode, "modelos"), &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (s *Service) ListYears(ctx context.Context, q *YearsQuery) (References, error) {
	if q == nil {
		return nil, nil
	}
	category, err := ParseCategory(q.Category)
	if err != nil {
		return nil, err
	}
	if err := requireCodes(q.BrandCode, q.ModelCode); err != nil {
		return nil, err
	}
	if err := rejectSeparator(q.BrandCode, q.ModelCode); err != nil {
		return nil, err
	}

	var years References
	key := cacheKey("years", category, q.BrandCode, q.ModelCode)
	u := s.url(category, "marcas", q.BrandCode, "modelos", q.ModelCode, "anos")
	if err := s.gateway.FetchWithCache(ctx, key, u, &years); err != nil {
		return nil, err
	}
	return years, nil
}

func (s *Service) GetPrice(ctx context.Context, q *PriceQuery) (*PriceRecord, error) {
	if q == nil {
		return nil, nil
	}
	category, err := ParseCategory(q.Category)
	if err != nil {
		return nil, err
	}
	if err := requireCodes(q.BrandCode, q.ModelCode, q.YearCode); err != nil {
		return nil, err
	}
	if err := rejectSeparator(q.BrandCode, q.ModelCode); err != nil {
		return nil, err
	}

	var resp priceResponse
	key := cacheKey("price", category, q.BrandCode, q.ModelCode, q.YearCode)
	u := s.url(category, "marcas", q.BrandCode, "modelos", q.ModelCode, "anos", q.YearCode)
	if err := s.gateway.FetchWithCache(ctx, key, u, &resp); err != nil {
		return nil, err
	}
	return resp.record(), nil
}

const keySeparator = "-"

// cacheKey builds "prefix-category-code..." keys. Category always follows
// the prefix so two categories never share a key.
func cacheKey(prefix string, category Category, codes ...string) string {
	parts := append([]string{prefix, string(category)}, codes...)
	return strings.Join(parts, keySeparator)
}

func (s *Service) url(category Category, segments ...string) string {
	var b strings.Builder
	b.WriteString(s.baseURL)
	b.WriteString("/")
	b.WriteString(string(category))
	for _, seg := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

func requireCodes(codes ...string) error {
	for _, c := range codes {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: brand, model and year codes must not be empty", ErrInvalidRequest)
		}
	}
	return nil
}

// rejectSeparator keeps keys unambiguous. Only the last segment of a key may
// contain the separator, which is where year codes such as "2014-1" go.
func rejectSeparator(codes ...string) error {
	for _, c := range codes {
		if strings.Contains(c, keySeparator) {
			return fmt.Errorf("%w: brand and model codes must not contain %q", ErrInvalidRequest, keySeparator)
		}
	}
	return nil
}
