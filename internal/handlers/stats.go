package handlers

import (
	"net/http"

	"github.com/ukydev/motorcheck/internal/models"
	"github.com/ukydev/motorcheck/internal/stats"
)

type statsResponse struct {
	Range   stats.Range    `json:"range"`
	Metrics stats.Metrics  `json:"metrics"`
	Series  []stats.Bucket `json:"series"`
}

// Stats returns spending and efficiency metrics for a range. A custom range
// without both bounds falls back to the current month.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	now := h.clock()
	q := r.URL.Query()

	var rng stats.Range
	name := q.Get("range")
	if name == "custom" && q.Get("from") != "" && q.Get("to") != "" {
		from, err := models.ParseDate(q.Get("from"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, err := models.ParseDate(q.Get("to"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if to.Before(from) {
			http.Error(w, "to must not be before from", http.StatusBadRequest)
			return
		}
		rng = stats.CustomRange(from, to)
	} else {
		if name == "custom" {
			name = "month"
		}
		var err error
		rng, err = stats.RangeFor(name, now)
		if err != nil {
			http.Error(w, "range must be 7d, month, year or custom", http.StatusBadRequest)
			return
		}
	}

	snap := h.store.Snapshot()
	writeJSON(w, http.StatusOK, statsResponse{
		Range:   rng,
		Metrics: stats.Compute(snap, rng),
		Series:  stats.Series(snap, rng, now),
	})
}
