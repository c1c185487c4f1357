package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/souq/internal/models"
)

// The catalog API is loose about JSON types: ids and prices arrive as numbers or
// strings, colors as strings or {"name": ...} objects. These types accept both.

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(data))
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable values are treated as missing rather than failing the whole page.
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.ToLower(string(bytes.TrimSpace(data))), `"`) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

type named struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Title string `json:"title"`
}

func (n named) String() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Value != "":
		return n.Value
	}
	return n.Title
}

// nameValue is a string or an object with a name.
type nameValue string

func (v *nameValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		var n named
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = nameValue(n.String())
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*v = nameValue(s)
	return nil
}

// nameList is an array of strings or named objects. Empty and duplicate names are dropped.
type nameList []string

func (l *nameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw []nameValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s := strings.TrimSpace(string(r))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	*l = out
	return nil
}

type rawProduct struct {
	ID              flexString `json:"id"`
	Name            string     `json:"name"`
	Title           string     `json:"title"`
	Price           flexFloat  `json:"price"`
	FinalPrice      flexFloat  `json:"final_price"`
	SalePrice       flexFloat  `json:"sale_price"`
	OriginalPrice   flexFloat  `json:"original_price"`
	DiscountPercent flexFloat  `json:"discount_percentage"`
	Rating          flexFloat  `json:"rating"`
	AverageRating   flexFloat  `json:"average_rating"`
	ReviewsCount    flexFloat  `json:"reviews_count"`
	StockQuantity   flexFloat  `json:"stock_quantity"`
	Quantity        flexFloat  `json:"quantity"`
	IsBestSeller    flexBool   `json:"is_best_seller"`
	IsNewArrival    flexBool   `json:"is_new_arrival"`
	IsFreeDelivery  flexBool   `json:"is_free_delivery"`
	Colors          nameList   `json:"colors"`
	Sizes           nameList   `json:"sizes"`
	Category        nameValue  `json:"category"`
	Material        nameValue  `json:"material"`
	Description     string     `json:"description"`
	Image           string     `json:"image"`
	ImageURL        string     `json:"image_url"`
	Store           nameValue  `json:"store"`
	StoreName       string     `json:"store_name"`
}

// project converts an API product to a Candidate. Products without an id or a name are
// dropped (ok == false).
func (r *rawProduct) project() (*models.Candidate, bool) {
	id := strings.TrimSpace(string(r.ID))
	name := strings.TrimSpace(firstNonEmpty(r.Name, r.Title))
	if id == "" || name == "" {
		return nil, false
	}

	price, original := float64(r.Price), float64(r.OriginalPrice)
	switch {
	case r.FinalPrice > 0:
		if price > float64(r.FinalPrice) && original == 0 {
			original = price
		}
		price = float64(r.FinalPrice)
	case r.SalePrice > 0 && float64(r.SalePrice) < price:
		if original == 0 {
			original = price
		}
		price = float64(r.SalePrice)
	}
	if original <= price {
		original = 0
	}
	discount := float64(r.DiscountPercent)
	if discount == 0 && original > 0 {
		discount = math.Round((original - price) / original * 100)
	}

	rating := float64(r.Rating)
	if rating == 0 {
		rating = float64(r.AverageRating)
	}
	stock := r.StockQuantity
	if stock == 0 {
		stock = r.Quantity
	}

	return &models.Candidate{
		ID:              id,
		Name:            name,
		Price:           price,
		OriginalPrice:   original,
		DiscountPercent: discount,
		Rating:          rating,
		ReviewCount:     int(r.ReviewsCount),
		StockQuantity:   int(stock),
		IsBestSeller:    bool(r.IsBestSeller),
		IsNewArrival:    bool(r.IsNewArrival),
		IsFreeDelivery:  bool(r.IsFreeDelivery),
		Colors:          []string(r.Colors),
		Sizes:           []string(r.Sizes),
		Category:        string(r.Category),
		Material:        string(r.Material),
		Description:     strings.TrimSpace(r.Description),
		ImageURL:        firstNonEmpty(r.ImageURL, r.Image),
		StoreName:       firstNonEmpty(r.StoreName, string(r.Store)),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
