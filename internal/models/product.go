// Package models defines core data structures for catalog products, queries, and search results.
package models

// Candidate is a catalog product projected into the fields the engine scores and renders.
// Candidates are never mutated after projection.
type Candidate struct {
	ID              string   `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	Price           float64  `json:"price" db:"price"`                   // final price after discount
	OriginalPrice   float64  `json:"original_price" db:"original_price"` // 0 when not discounted
	DiscountPercent float64  `json:"discount_percent" db:"discount_percent"`
	Rating          float64  `json:"rating" db:"rating"`
	ReviewCount     int      `json:"review_count" db:"review_count"`
	StockQuantity   int      `json:"stock_quantity" db:"stock_quantity"`
	IsBestSeller    bool     `json:"is_best_seller" db:"is_best_seller"`
	IsNewArrival    bool     `json:"is_new_arrival" db:"is_new_arrival"`
	IsFreeDelivery  bool     `json:"is_free_delivery" db:"is_free_delivery"`
	Colors          []string `json:"colors" db:"-"`
	Sizes           []string `json:"sizes" db:"-"`
	Category        string   `json:"category" db:"category"`
	Material        string   `json:"material,omitempty" db:"material"`
	Description     string   `json:"description" db:"description"`
	ImageURL        string   `json:"image_url,omitempty" db:"image_url"`
	StoreName       string   `json:"store_name,omitempty" db:"store_name"`
}

// HasDiscount reports whether the candidate is sold below its original price.
func (c *Candidate) HasDiscount() bool {
	return c.OriginalPrice > c.Price && c.Price > 0
}

// InStock reports whether at least one unit is available.
func (c *Candidate) InStock() bool {
	return c.StockQuantity > 0
}

// Text returns the name and description joined, the text facets are matched against.
func (c *Candidate) Text() string {
	if c.Description == "" {
		return c.Name
	}
	return c.Name + " " + c.Description
}

// ScoredCandidate wraps a Candidate with its score against one intent.
type ScoredCandidate struct {
	Candidate        *Candidate         `json:"candidate"`
	Score            float64            `json:"score"`
	MatchCount       float64            `json:"match_count"`
	CriticalMismatch bool               `json:"critical_mismatch"`
	Breakdown        map[string]float64 `json:"breakdown,omitempty"`
	Rank             int                `json:"rank"`
}
