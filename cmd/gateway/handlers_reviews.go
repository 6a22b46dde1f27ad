package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamlift/panel_core/internal/domain/review"
	"github.com/streamlift/panel_core/internal/forms"
	"github.com/streamlift/panel_core/internal/resource"
	"github.com/streamlift/panel_core/internal/session"
)

// reviewCreate is the storefront review form payload.
type reviewCreate struct {
	Rating int      `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string   `json:"title" validate:"required,max=200"`
	Body   string   `json:"body" validate:"required,max=5000"`
	Pros   []string `json:"pros"`
	Cons   []string `json:"cons"`
}

var reviewSchema = forms.NewSchema[reviewCreate]()

func (s *server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productID"]

	entry, err := s.cache.Get(r.Context(), review.ListKey(productID))
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}

	reviews, _ := entry.Data.([]review.Review)
	stats := review.Aggregate(reviews)

	filtered := reviews
	switch r.URL.Query().Get("filter") {
	case "verified":
		filtered = review.Filter(reviews, review.Verified)
	case "five_star":
		filtered = review.Filter(reviews, review.FiveStar)
	case "critical":
		filtered = review.Filter(reviews, review.Critical)
	}

	payload := entryJSON(entry)
	payload.Data = filtered
	writeJSON(w, http.StatusOK, map[string]any{
		"entry": payload,
		"stats": stats,
	})
}

func (s *server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	user := session.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "you must be logged in to submit a review",
		})
		return
	}

	var in reviewCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.Pros = forms.CompactBlank(in.Pros)
	in.Cons = forms.CompactBlank(in.Cons)

	if errs := reviewSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	productID := mux.Vars(r)["productID"]
	body := map[string]any{
		"product_id":  productID,
		"author_id":   user.ID,
		"author_name": user.Name,
		"rating":      in.Rating,
		"title":       in.Title,
		"body":        in.Body,
		"pros":        in.Pros,
		"cons":        in.Cons,
	}

	req, err := s.executor.ExecuteWait(r.Context(), "POST /api/v1/reviews", body,
		[]resource.Key{review.ListKey(productID)})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     req.ID,
		"result": req.Result(),
	})
}
