package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/unsplash-picker/internal/api/handlers"
	"github.com/donaldgifford/unsplash-picker/internal/picker"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// listingView is the JSON form of a listing.
type listingView struct {
	Source       string         `json:"source"`
	Query        string         `json:"query,omitempty"`
	CollectionID string         `json:"collection_id,omitempty"`
	State        string         `json:"state"`
	CurrentPage  int            `json:"current_page"`
	TotalPages   *int           `json:"total_pages,omitempty"`
	Exhausted    bool           `json:"exhausted"`
	EmptyState   string         `json:"empty_state"`
	Photos       []domain.Photo `json:"photos"`
}

func newListingView(st *picker.Status) listingView {
	v := listingView{
		Source:       st.Source.String(),
		Query:        st.Query,
		CollectionID: st.CollectionID,
		State:        st.State.String(),
		CurrentPage:  st.CurrentPage,
		Exhausted:    st.Exhausted,
		EmptyState:   string(st.EmptyState),
		Photos:       st.Photos,
	}
	if st.TotalKnown {
		total := st.TotalPages
		v.TotalPages = &total
	}
	if v.Photos == nil {
		v.Photos = []domain.Photo{}
	}
	return v
}

func printListing(out, status io.Writer, st *picker.Status) error {
	if len(st.Photos) == 0 {
		_, err := fmt.Fprintln(status, emptyMessage(st.EmptyState))
		return err
	}
	if err := printPhotoTable(out, st.Photos, 0); err != nil {
		return err
	}
	var total *int
	if st.TotalKnown {
		total = &st.TotalPages
	}
	_, err := fmt.Fprintln(status, pageSummary(st.CurrentPage, total, len(st.Photos), st.Exhausted))
	return err
}

// printRemoteStatus prints a status fetched from a running server. The
// photos are a window starting at offset.
func printRemoteStatus(out, status io.Writer, st *handlers.StatusBody, offset int) error {
	if st.Count == 0 {
		_, err := fmt.Fprintln(status, emptyMessage(picker.EmptyState(st.EmptyState)))
		return err
	}
	if err := printPhotoTable(out, st.Photos, offset); err != nil {
		return err
	}
	summary := pageSummary(st.CurrentPage, st.TotalPages, st.Count, st.Exhausted)
	if st.Fetching {
		summary += ", loading"
	}
	if len(st.Selected) > 0 {
		summary += fmt.Sprintf(", selected %v", st.Selected)
	}
	_, err := fmt.Fprintln(status, summary)
	return err
}

// printPhotoTable prints photos numbered from start.
func printPhotoTable(w io.Writer, photos []domain.Photo, start int) error {
	tw := newTabWriter(w)
	tw.writef("#\tID\tSIZE\tAUTHOR\tDESCRIPTION\n")
	for i := range photos {
		p := &photos[i]
		author := p.User.Name
		if author == "" {
			author = p.User.Username
		}
		tw.writef("%d\t%s\t%dx%d\t%s\t%s\n",
			start+i,
			p.ID,
			p.Width,
			p.Height,
			truncate(author, 24),
			truncate(p.Description, 40),
		)
	}
	return tw.finish()
}

func pageSummary(page int, totalPages *int, count int, exhausted bool) string {
	total := "?"
	if totalPages != nil {
		total = fmt.Sprintf("%d", *totalPages)
	}
	summary := fmt.Sprintf("page %d of %s, %d photos", page, total, count)
	if exhausted {
		summary += ", no more pages"
	}
	return summary
}

func emptyMessage(state picker.EmptyState) string {
	switch state {
	case picker.EmptyNoResults:
		return "no photos found"
	case picker.EmptyNoConnectivity:
		return "no internet connection"
	case picker.EmptyServerError:
		return "the server returned an error"
	default:
		return "no photos loaded"
	}
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
