// Package analytics summarises a user's progress log: sessions per module and
// score averages, latest values and trends per dimension.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/progress"
)

// AllUsers disables the user filter.
const AllUsers int64 = -1

type DimensionStats struct {
	Average float64        `json:"average"`
	Scored  int            `json:"scored"`
	Latest  feedback.Score `json:"latest"`
	// Trend is the last valid score minus the first one.
	Trend int `json:"trend"`
}

type Report struct {
	Date       string                                `json:"date,omitempty"`
	UserID     int64                                 `json:"user_id"`
	Sessions   int                                   `json:"sessions"`
	ByModule   map[string]int                        `json:"by_module"`
	ByKind     map[string]int                        `json:"by_kind"`
	Dimensions map[feedback.Dimension]DimensionStats `json:"dimensions"`
}

// Analyze builds a report over every entry of userID.
func Analyze(entries []progress.Entry, userID int64) *Report {
	return analyze(entries, userID, func(progress.Entry) bool { return true }, "")
}

// AnalyzeDaily limits the report to entries timestamped on day, in day's location.
func AnalyzeDaily(entries []progress.Entry, userID int64, day time.Time) *Report {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	inDay := func(e progress.Entry) bool {
		return !e.Timestamp.Before(start) && e.Timestamp.Before(end)
	}
	return analyze(entries, userID, inDay, start.Format("2006-01-02"))
}

// ActiveUsers lists, in ascending order, users with at least one entry on day.
func ActiveUsers(entries []progress.Entry, day time.Time) []int64 {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	seen := make(map[int64]bool)
	var out []int64
	for _, e := range entries {
		if e.UserID == 0 || e.Timestamp.Before(start) || !e.Timestamp.Before(end) || seen[e.UserID] {
			continue
		}
		seen[e.UserID] = true
		out = append(out, e.UserID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func analyze(entries []progress.Entry, userID int64, keep func(progress.Entry) bool, date string) *Report {
	r := &Report{
		Date:       date,
		UserID:     userID,
		ByModule:   make(map[string]int),
		ByKind:     make(map[string]int),
		Dimensions: make(map[feedback.Dimension]DimensionStats),
	}
	scores := make(map[feedback.Dimension][]int)

	for _, e := range entries {
		if userID != AllUsers && e.UserID != userID {
			continue
		}
		if !keep(e) {
			continue
		}
		r.Sessions++
		module := e.ModuleType
		if module == "" {
			module = "general"
		}
		r.ByModule[module]++
		if e.Kind != "" {
			r.ByKind[e.Kind]++
		}

		rec := feedback.Extract(e.FeedbackText)
		for _, d := range feedback.Dimensions {
			if s := rec.Score(d); s.Valid {
				scores[d] = append(scores[d], s.Value)
			}
		}
	}

	for _, d := range feedback.Dimensions {
		vals := scores[d]
		st := DimensionStats{Latest: feedback.NotAvailable()}
		if len(vals) > 0 {
			sum := 0
			for _, v := range vals {
				sum += v
			}
			st.Scored = len(vals)
			st.Average = float64(sum) / float64(len(vals))
			st.Latest = feedback.ScoreOf(vals[len(vals)-1])
			st.Trend = vals[len(vals)-1] - vals[0]
		}
		r.Dimensions[d] = st
	}
	return r
}

// Summary renders the report as a short plain-text digest.
func (r *Report) Summary() string {
	var b strings.Builder
	if r.Date != "" {
		fmt.Fprintf(&b, "Progress report for %s\n\n", r.Date)
	} else {
		b.WriteString("Progress report\n\n")
	}
	if r.Sessions == 0 {
		b.WriteString(progress.NoProgress)
		return b.String()
	}

	fmt.Fprintf(&b, "Sessions: %d\n", r.Sessions)
	modules := make([]string, 0, len(r.ByModule))
	for m := range r.ByModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	for _, m := range modules {
		fmt.Fprintf(&b, "- %s: %d\n", m, r.ByModule[m])
	}

	b.WriteString("\nScores:\n")
	for _, d := range feedback.Dimensions {
		st := r.Dimensions[d]
		if st.Scored == 0 {
			fmt.Fprintf(&b, "- %s: no scores yet\n", d.Title())
			continue
		}
		fmt.Fprintf(&b, "- %s: average %.1f / 10 over %d, latest %s", d.Title(), st.Average, st.Scored, st.Latest)
		if st.Scored > 1 {
			fmt.Fprintf(&b, ", trend %+d", st.Trend)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToJSON serialises the report for tools that want the raw numbers.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
