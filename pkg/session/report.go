package session

import (
	"fmt"
	"sort"
	"strings"

	"llmctx/pkg/combine"
)

// SampleSize bounds the skipped paths listed in a Report.
const SampleSize = 5

// Report summarizes one run.
type Report struct {
	Action            Action
	RunID             string
	Output            string // written file; empty for clipboard runs
	Backup            string // history copy taken before overwriting Output
	Files             int
	Bytes             int64
	Skipped           map[combine.SkipReason]int
	Sample            []string // at most SampleSize "path (reason)" entries
	ThresholdExceeded bool
	Truncated         bool
}

func newReport(action Action, runID string, res *combine.Result) *Report {
	r := &Report{
		Action:            action,
		RunID:             runID,
		Files:             len(res.Files),
		Bytes:             res.TotalBytes,
		Skipped:           res.SkipCounts(),
		ThresholdExceeded: res.ThresholdExceeded,
		Truncated:         res.Truncated,
	}
	for _, s := range res.Skipped {
		if len(r.Sample) == SampleSize {
			break
		}
		r.Sample = append(r.Sample, fmt.Sprintf("%s (%s)", s.Path, s.Reason))
	}
	return r
}

// SkippedTotal is the number of entries left out.
func (r *Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Summary renders the report as a single line.
func (r *Report) Summary() string {
	var b strings.Builder
	switch r.Action {
	case ActionClipboard:
		fmt.Fprintf(&b, "Copied %d files (%s) to clipboard", r.Files, FormatBytes(r.Bytes))
	default:
		fmt.Fprintf(&b, "Wrote %d files (%s) to %s", r.Files, FormatBytes(r.Bytes), r.Output)
	}

	if total := r.SkippedTotal(); total > 0 {
		reasons := make([]string, 0, len(r.Skipped))
		for reason := range r.Skipped {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		parts := make([]string, len(reasons))
		for i, reason := range reasons {
			parts[i] = fmt.Sprintf("%s: %d", reason, r.Skipped[combine.SkipReason(reason)])
		}
		fmt.Fprintf(&b, "; skipped %d (%s)", total, strings.Join(parts, ", "))
	}
	if r.Truncated {
		b.WriteString("; stopped at the hard limit")
	}
	return b.String()
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
