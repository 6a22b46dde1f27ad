// Package review holds the customer-review entity and the pure
// aggregations (rating stats, filtered subsets) computed from cached
// review lists.
package review

import (
	"time"

	"github.com/streamlift/panel_core/internal/resource"
)

// Review is a customer review of one storefront product.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Pros       []string  `json:"pros,omitempty"`
	Cons       []string  `json:"cons,omitempty"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListKey addresses the cached review list for one product.
func ListKey(productID string) resource.Key {
	return resource.NewKey("reviews", productID)
}

// Stats is the aggregate rating summary shown above a review list.
// Histogram index 0 counts one-star reviews, index 4 five-star.
type Stats struct {
	Average   float64 `json:"average"`
	Histogram [5]int  `json:"histogram"`
	Total     int     `json:"total"`
}

// Aggregate computes the rating summary for a list of reviews. An empty
// list yields Average 0 and a zero histogram. Ratings outside 1..5 are
// counted in Total but skipped by the histogram. Average is the exact
// quotient; rounding for display is the renderer's concern.
func Aggregate(reviews []Review) Stats {
	var s Stats
	s.Total = len(reviews)
	if s.Total == 0 {
		return s
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		if r.Rating >= 1 && r.Rating <= 5 {
			s.Histogram[r.Rating-1]++
		}
	}
	s.Average = float64(sum) / float64(s.Total)
	return s
}

// Predicate selects a subset of reviews.
type Predicate func(Review) bool

// Verified keeps reviews from confirmed purchasers.
func Verified(r Review) bool { return r.Verified }

// FiveStar keeps top-rated reviews.
func FiveStar(r Review) bool { return r.Rating == 5 }

// Critical keeps reviews rated below four stars.
func Critical(r Review) bool { return r.Rating < 4 }

// Filter returns the reviews matching pred, in original order. The
// input slice is never mutated.
func Filter(reviews []Review, pred Predicate) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
