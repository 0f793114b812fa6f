package history

import (
	"fmt"
	"math"
	"time"
)

// TrendReport summarizes how the inventory moved across a snapshot
// series, oldest to newest.
type TrendReport struct {
	Label     string       `json:"label"`
	Since     time.Time    `json:"since"`
	Until     time.Time    `json:"until"`
	ScanCount int          `json:"scan_count"`
	Points    []TrendPoint `json:"points"`
}

// TrendPoint is one snapshot plus its deltas against the previous one.
type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Files         int64     `json:"files"`
	Lines         int64     `json:"lines"`
	Code          int64     `json:"code"`
	Comment       int64     `json:"comment"`
	Blank         int64     `json:"blank"`
	DeltaFiles    int64     `json:"delta_files"`
	DeltaLines    int64     `json:"delta_lines"`
	DeltaCode     int64     `json:"delta_code"`
	CodeGrowthPct float64   `json:"code_growth_pct"`
}

// BuildTrendReport expects snapshots ordered newest first, the way
// RecentSnapshots returns them, and reports oldest first.
func BuildTrendReport(label string, snapshots []Snapshot) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available for label %q", label)
	}

	ordered := make([]Snapshot, len(snapshots))
	for i, s := range snapshots {
		ordered[len(snapshots)-1-i] = s
	}

	points := make([]TrendPoint, 0, len(ordered))
	for i, current := range ordered {
		point := TrendPoint{
			Timestamp: current.Timestamp,
			Files:     current.Files,
			Lines:     current.Lines,
			Code:      current.Code,
			Comment:   current.Comment,
			Blank:     current.Blank,
		}
		if i > 0 {
			prev := ordered[i-1]
			point.DeltaFiles = current.Files - prev.Files
			point.DeltaLines = current.Lines - prev.Lines
			point.DeltaCode = current.Code - prev.Code
			if prev.Code > 0 {
				point.CodeGrowthPct = round2(float64(point.DeltaCode) / float64(prev.Code) * 100)
			}
		}
		points = append(points, point)
	}

	return TrendReport{
		Label:     label,
		Since:     ordered[0].Timestamp,
		Until:     ordered[len(ordered)-1].Timestamp,
		ScanCount: len(points),
		Points:    points,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
