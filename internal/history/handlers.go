package history

import (
	"fmt"
	"net/http"
	"time"

	"roomstatus/internal/api"
	"roomstatus/internal/tracking"
)

type Handlers struct {
	Tracking *tracking.Service
	Now      func() time.Time
}

// ListResponse carries the same columns the CSV export writes. Rows holds
// each item rendered exactly as its CSV line.
type ListResponse struct {
	Columns []string          `json:"columns"`
	Rows    [][]string        `json:"rows"`
	Items   []tracking.Record `json:"items"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	WriteList(w, r, h.Tracking, f)
}

// WriteList runs f and writes the JSON history listing.
func WriteList(w http.ResponseWriter, r *http.Request, svc *tracking.Service, f tracking.HistoryFilter) {
	items, err := svc.CollectHistory(r.Context(), f)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	rows := make([][]string, 0, len(items))
	for _, rec := range items {
		rows = append(rows, rec.Columns())
	}
	api.WriteJSON(w, http.StatusOK, ListResponse{
		Columns: tracking.HistoryColumns,
		Rows:    rows,
		Items:   items,
		Limit:   f.Limit,
		Offset:  f.Offset,
	})
}

func (h Handlers) Export(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	out := &csvResponse{ResponseWriter: w, filename: fmt.Sprintf("room-status-history-%s.csv", now().UTC().Format("20060102"))}

	n, err := h.Tracking.ExportHistory(r.Context(), out, f)
	if err != nil {
		if !out.started {
			api.WriteServiceError(w, r, err)
			return
		}
		// Headers are gone; the truncated file is all the client gets.
		api.Logger(r.Context()).Error("history export interrupted", "rows", n, "err", err)
		return
	}
	api.Logger(r.Context()).Info("history exported", "rows", n)
}

// csvResponse commits the CSV headers on the first write, leaving the
// response free for an error envelope until then.
type csvResponse struct {
	http.ResponseWriter
	filename string
	started  bool
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.started {
		c.started = true
		c.Header().Set("Content-Type", "text/csv; charset=utf-8")
		c.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.filename))
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(p)
}
