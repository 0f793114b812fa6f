package history

import (
	"loclens/internal/analyzer"
)

// FromScanResult converts a finished scan into a storable snapshot.
func FromScanResult(result *analyzer.ScanResult) Snapshot {
	snapshot := Snapshot{
		Files:        result.Files,
		Lines:        result.Lines,
		Code:         result.Code,
		Comment:      result.Comment,
		Blank:        result.Blank,
		Shebang:      result.Shebang,
		Bytes:        result.Bytes,
		Unrecognized: result.Unrecognized,
		Skipped:      result.SkipCount(),
	}
	for name, stats := range result.Languages {
		snapshot.Languages = append(snapshot.Languages, LanguageSnapshot{
			Name:    name,
			Files:   stats.Files,
			Lines:   stats.Lines,
			Code:    stats.Code,
			Comment: stats.Comment,
			Blank:   stats.Blank,
			Shebang: stats.Shebang,
			Bytes:   stats.Bytes,
		})
	}
	return snapshot
}
