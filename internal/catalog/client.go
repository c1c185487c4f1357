// Package catalog binds the remote product catalog API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/cache"
	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/models"
)

// API paths.
const (
	FilterPath        = "/api/v2/products/filter"
	DetailsPath       = "/api/v2/products/"
	LegacyDetailsPath = "/api/products/"
)

// Breaker groups.
const (
	GroupFilter  = "filter"
	GroupDetails = "details"
)

// Doer performs catalog calls. *httpclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req httpclient.Request) ([]byte, error)
}

// FilterParams is the body of a filter request.
type FilterParams struct {
	Search      string   `json:"search,omitempty"`
	ProductCode string   `json:"product_code,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Material    string   `json:"material,omitempty"`
	Category    string   `json:"category,omitempty"`
	MinPrice    float64  `json:"min_price,omitempty"`
	MaxPrice    float64  `json:"max_price,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// Pagination describes one page of a filter response.
type Pagination struct {
	Page       int `json:"current_page"`
	PageSize   int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"last_page"`
}

// Page is one page of products.
type Page struct {
	Products   []*models.Candidate
	Pagination Pagination
}

// Config configures the catalog binding.
type Config struct {
	StorefrontURL   string
	PageSize        int
	PopularPageSize int
}

// Client is the catalog API binding.
type Client struct {
	doer   Doer
	cfg    Config
	logger *zap.Logger
}

// NewClient creates a catalog client on top of doer.
func NewClient(doer Doer, cfg Config, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.PopularPageSize <= 0 {
		cfg.PopularPageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{doer: doer, cfg: cfg, logger: logger}
}

// Filter searches the catalog. Search results are cached short-term.
func (c *Client) Filter(ctx context.Context, params FilterParams, lang string) (*Page, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = c.cfg.PageSize
	}
	strategy := cache.ShortTerm
	if params.Search == "" && params.ProductCode == "" {
		strategy = cache.LongTerm
	}
	body, err := c.doer.Do(ctx, httpclient.Request{
		Method:   http.MethodPost,
		Path:     FilterPath,
		Body:     params,
		Language: lang,
		Group:    GroupFilter,
		Cache:    strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	page, err := decodePage(body)
	if err != nil {
		return nil, &models.UpstreamError{Endpoint: FilterPath, Err: err}
	}
	return page, nil
}

// Popular returns the first page of the unfiltered catalog, cached long-term.
func (c *Client) Popular(ctx context.Context, lang string) ([]*models.Candidate, error) {
	page, err := c.Filter(ctx, FilterParams{Page: 1, PageSize: c.cfg.PopularPageSize}, lang)
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

// Details fetches one product, trying the versioned path first and the legacy path
// second. The error is returned only when both fail.
func (c *Client) Details(ctx context.Context, id, lang string) (*models.Candidate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty product id", models.ErrInvalidInput)
	}
	var errs []error
	for _, base := range []string{DetailsPath, LegacyDetailsPath} {
		path := base + url.PathEscape(id)
		body, err := c.doer.Do(ctx, httpclient.Request{
			Method:   http.MethodGet,
			Path:     path,
			Language: lang,
			Group:    GroupDetails,
			Cache:    cache.MediumTerm,
		})
		if err == nil {
			var p *models.Candidate
			p, err = decodeProduct(body)
			if err == nil {
				return p, nil
			}
			err = &models.UpstreamError{Endpoint: path, Err: err}
		}
		c.logger.Debug("product details failed", zap.String("path", path), zap.Error(err))
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("product %s details: %w", id, errors.Join(errs...))
}

// ProductURL returns the storefront link of a product.
func (c *Client) ProductURL(id string) string {
	return ProductURL(c.cfg.StorefrontURL, id)
}

// ProductURL joins a storefront base URL and a product id.
func ProductURL(storefront, id string) string {
	if storefront == "" {
		return ""
	}
	return strings.TrimRight(storefront, "/") + "/product/" + url.PathEscape(id)
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Products   json.RawMessage `json:"products"`
	Pagination *Pagination     `json:"pagination"`
	Meta       *Pagination     `json:"meta"`
}

// decodePage accepts {"data":{"products":[...],"pagination":{...}}}, {"data":[...]}
// and {"products":[...]}.
func decodePage(body []byte) (*Page, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode filter response: %w", err)
	}
	list, pag := env.Products, firstPagination(env.Pagination, env.Meta)
	if len(env.Data) > 0 {
		trimmed := bytes.TrimSpace(env.Data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			list = trimmed
		} else {
			var inner envelope
			if err := json.Unmarshal(trimmed, &inner); err != nil {
				return nil, fmt.Errorf("decode filter data: %w", err)
			}
			if len(inner.Products) > 0 {
				list = inner.Products
			}
			if p := firstPagination(inner.Pagination, inner.Meta); p != nil {
				pag = p
			}
		}
	}

	page := &Page{Products: []*models.Candidate{}}
	if pag != nil {
		page.Pagination = *pag
	}
	if len(list) == 0 {
		return page, nil
	}
	var raws []rawProduct
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range raws {
		if p, ok := raws[i].project(); ok {
			page.Products = append(page.Products, p)
		}
	}
	return page, nil
}

func firstPagination(ps ...*Pagination) *Pagination {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}

// decodeProduct accepts {"data":{...}} and a bare product object.
func decodeProduct(body []byte) (*models.Candidate, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	obj := body
	if len(env.Data) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		obj = env.Data
	}
	var raw rawProduct
	if err := json.Unmarshal(obj, &raw); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	p, ok := raw.project()
	if !ok {
		return nil, errors.New("product without id or name")
	}
	return p, nil
}
