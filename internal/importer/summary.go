package importer

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Summary counts what an import run did.
type Summary struct {
	FilesSeen      int
	FilesProcessed int
	FilesFailed    int

	RowsRead          int
	Updated           int
	Branched          int
	Unchanged         int
	DryRun            int
	SkippedNotFound   int
	SkippedAmbiguous  int
	SkippedError      int
	RowErrors         int
	WritesUnavailable int

	PlannedIntents int

	// Lookups counts rows that reached the resolver; Unreachable counts those
	// whose lookup never produced an HTTP status.
	Lookups     int
	Unreachable int
}

// Skipped is the number of rows skipped after lookup.
func (s Summary) Skipped() int {
	return s.SkippedNotFound + s.SkippedAmbiguous + s.SkippedError
}

// Print writes the summary as an aligned two-column table.
func (s Summary) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		value int
	}{
		{"Files seen", s.FilesSeen},
		{"Files processed", s.FilesProcessed},
		{"Files failed", s.FilesFailed},
		{"Rows read", s.RowsRead},
		{"Updated in place", s.Updated},
		{"Branched and updated", s.Branched},
		{"Nothing to write", s.Unchanged},
		{"Dry run (not written)", s.DryRun},
		{"Skipped: not found", s.SkippedNotFound},
		{"Skipped: ambiguous", s.SkippedAmbiguous},
		{"Skipped: lookup error", s.SkippedError},
		{"Lookups without response", s.Unreachable},
		{"Row errors", s.RowErrors},
		{"Writes unavailable", s.WritesUnavailable},
		{"Planned property writes", s.PlannedIntents},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%d\n", r.label, r.value); err != nil {
			return err
		}
	}
	return tw.Flush()
}
