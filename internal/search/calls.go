package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/souq/internal/catalog"
)

type filterResult struct {
	page *catalog.Page
	err  error
}

// filterCalls shares catalog filter calls between the strategies of one search.
// Each distinct request reaches the catalog at most once: concurrent callers join
// the call in flight and later callers get its stored result, errors included.
type filterCalls struct {
	catalog Catalog
	group   singleflight.Group

	mu   sync.Mutex
	done map[string]filterResult
}

func newFilterCalls(c Catalog) *filterCalls {
	return &filterCalls{catalog: c, done: make(map[string]filterResult)}
}

func (f *filterCalls) filter(ctx context.Context, params catalog.FilterParams, lang string) (*catalog.Page, error) {
	key := filterKey(params, lang)
	v, _, _ := f.group.Do(key, func() (interface{}, error) {
		f.mu.Lock()
		r, ok := f.done[key]
		f.mu.Unlock()
		if ok {
			return r, nil
		}
		page, err := f.catalog.Filter(ctx, params, lang)
		r = filterResult{page: page, err: err}
		f.mu.Lock()
		f.done[key] = r
		f.mu.Unlock()
		return r, nil
	})
	r := v.(filterResult)
	return r.page, r.err
}

// count returns how many distinct requests were sent.
func (f *filterCalls) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.done)
}

func filterKey(p catalog.FilterParams, lang string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%g|%g|%d|%d",
		lang, p.Search, p.ProductCode, strings.Join(p.Colors, ","), strings.Join(p.Sizes, ","),
		p.Material, p.Category, p.MinPrice, p.MaxPrice, p.Page, p.PageSize)
}
