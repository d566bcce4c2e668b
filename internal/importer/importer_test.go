package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sunspark/MauroDataCollector/internal/catalog/catalogtest"
	"github.com/Sunspark/MauroDataCollector/internal/files/filesystem"
	"github.com/Sunspark/MauroDataCollector/internal/files/scanner"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

const (
	scenarioHeader = "db,table,field,description,owner.name\n"
	customerPath   = "dm:Sales|dc:Orders|de:CustomerId"
)

type fixture struct {
	fs      *filesystem.MemoryFileSystem
	catalog *catalogtest.Catalog
}

func newFixture() *fixture {
	return &fixture{fs: filesystem.NewMemoryFileSystem(), catalog: catalogtest.New()}
}

func (f *fixture) importer(opts Options) *Importer {
	return New(f.catalog, scanner.NewScannerWithFS(f.fs), f.fs, opts, nil)
}

func (f *fixture) run(t *testing.T, opts Options, sel mauro.InputSelection) Summary {
	t.Helper()
	summary, err := f.importer(opts).Run(context.Background(), sel)
	require.NoError(t, err)
	return summary
}

func TestRun_UpdatesDraftInPlace(t *testing.T) {
	f := newFixture()
	ref := f.catalog.AddDraft(customerPath)
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,CustomerId,Customer identifier,alice\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.RowsRead)
	assert.Equal(t, 2, summary.PlannedIntents)

	node, ok := f.catalog.Node(ref.ID)
	require.True(t, ok)
	assert.Equal(t, mauro.Text("Customer identifier"), node.Properties.Description)
	assert.Equal(t, "alice", node.Properties.Values["owner.name"])
	assert.Empty(t, f.catalog.CallsOf(catalogtest.OpBranch))
}

func TestRun_BranchesFinalisedNode(t *testing.T) {
	f := newFixture()
	ref := f.catalog.AddFinalised(customerPath)
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,CustomerId,Customer identifier,alice\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))
	assert.Equal(t, 1, summary.Branched)
	assert.Zero(t, summary.Updated)

	calls := f.catalog.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, catalogtest.OpResolve, calls[0].Op)
	assert.Equal(t, catalogtest.OpBranch, calls[1].Op)
	assert.Equal(t, catalogtest.OpUpdate, calls[2].Op)
	assert.NotEqual(t, ref.ID, calls[2].ID)
	for _, call := range calls {
		assert.Equal(t, customerPath, call.Path)
	}

	original, _ := f.catalog.Node(ref.ID)
	assert.Empty(t, original.Properties.Values)

	branches := f.catalog.Branches(ref.ID)
	require.Len(t, branches, 1)
	assert.Equal(t, "alice", branches[0].Properties.Values["owner.name"])
}

func TestRun_LookupFailuresSkipRowsAndContinue(t *testing.T) {
	f := newFixture()
	f.catalog.SetOutcome("dm:Sales|dc:Orders|de:Fuzzy", mauro.Ambiguous())
	f.catalog.SetOutcome("dm:Sales|dc:Orders|de:Down", mauro.TransportError(503, errors.New("unavailable")))
	ok := f.catalog.AddDraft(customerPath)
	f.fs.AddFile("/in/a.csv", scenarioHeader+
		"Sales,Orders,Missing,,x\n"+
		"Sales,Orders,Fuzzy,,x\n"+
		"Sales,Orders,Down,,x\n"+
		",Orders,NoDB,,x\n"+
		"Sales,Orders,CustomerId,,bob\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))

	assert.Equal(t, 5, summary.RowsRead)
	assert.Equal(t, 1, summary.SkippedNotFound)
	assert.Equal(t, 1, summary.SkippedAmbiguous)
	assert.Equal(t, 1, summary.SkippedError)
	assert.Equal(t, 1, summary.RowErrors)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 3, summary.Skipped())

	node, _ := f.catalog.Node(ok.ID)
	assert.Equal(t, "bob", node.Properties.Values["owner.name"])
	// empty description is skipped, not cleared
	assert.False(t, node.Properties.Description.Present)
}

func TestRun_CatalogNeverAnswered(t *testing.T) {
	f := newFixture()
	for _, p := range []string{"dm:Sales|dc:Orders|de:A", "dm:Sales|dc:Orders|de:B"} {
		f.catalog.SetOutcome(p, mauro.TransportError(0, errors.New("connection refused")))
	}
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,A,,x\nSales,Orders,B,,y\n")

	core, logs := observer.New(zapcore.ErrorLevel)
	im := New(f.catalog, scanner.NewScannerWithFS(f.fs), f.fs, Options{}, zap.New(core))

	summary, err := im.Run(context.Background(), mauro.SingleFile("/in/a.csv"))
	require.NoError(t, err, "lookup failures are per-row skips")
	assert.Equal(t, 1, logs.FilterMessageSnippet("Catalog never answered").Len())
	assert.Equal(t, mauro.ExitSuccess, mauro.ExitCodeForError(err))
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 2, summary.Lookups)
	assert.Equal(t, 2, summary.Unreachable)
	assert.Equal(t, 2, summary.SkippedError)
}

func TestRun_PartlyUnreachableIsNotFatal(t *testing.T) {
	f := newFixture()
	f.catalog.SetOutcome("dm:Sales|dc:Orders|de:A", mauro.TransportError(0, errors.New("timeout")))
	f.catalog.AddDraft("dm:Sales|dc:Orders|de:B")
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,A,,x\nSales,Orders,B,,y\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))
	assert.Equal(t, 1, summary.Unreachable)
	assert.Equal(t, 2, summary.Lookups)
	assert.Equal(t, 1, summary.Updated)
}

func TestRun_DuplicateHeaderFileRejectedBeforeRows(t *testing.T) {
	f := newFixture()
	f.catalog.AddDraft(customerPath)
	f.fs.AddFile("/in/a_bad.csv", "db,table,field,db\nSales,Orders,CustomerId,Sales\n")
	f.fs.AddFile("/in/b_good.csv", scenarioHeader+"Sales,Orders,CustomerId,Customer identifier,alice\n")

	summary := f.run(t, Options{}, mauro.Directory("/in", ".csv"))

	assert.Equal(t, 2, summary.FilesSeen)
	assert.Equal(t, 1, summary.FilesFailed)
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 1, summary.RowsRead)
	assert.Len(t, f.catalog.CallsOf(catalogtest.OpResolve), 1)
}

func TestImportFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    Options
		wantErr error
	}{
		{"duplicate header", "db,table,field,db\n", Options{}, mauro.ErrHeader},
		{"missing table", "db,field\nSales,Id\n", Options{}, mauro.ErrMissingRequiredField},
		{"missing field", "db,table\nSales,Orders\n", Options{}, mauro.ErrMissingRequiredField},
		{"empty file", "", Options{}, mauro.ErrFileStructure},
		{"no namespace", "db,table,field,steward\n", Options{}, mauro.ErrConfig},
		{"bad header segment", "db,table,field,owner.\n", Options{}, mauro.ErrHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.fs.AddFile("/in/a.csv", tt.content)

			var summary Summary
			err := f.importer(tt.opts).ImportFile(context.Background(), "/in/a.csv", &summary)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.catalog.Calls())
		})
	}
}

func TestImportFile_FieldCountMismatchAbortsFile(t *testing.T) {
	f := newFixture()
	f.catalog.AddDraft(customerPath)
	f.fs.AddFile("/in/a.csv", scenarioHeader+
		"Sales,Orders,CustomerId,,alice\n"+
		"Sales,Orders,CustomerId\n"+
		"Sales,Orders,CustomerId,,carol\n")

	var summary Summary
	err := f.importer(Options{}).ImportFile(context.Background(), "/in/a.csv", &summary)

	var countErr *mauro.FieldCountError
	require.True(t, errors.As(err, &countErr))
	assert.Equal(t, 2, countErr.Row)
	assert.Equal(t, 5, countErr.Want)
	assert.Equal(t, 1, summary.RowsRead)
	assert.Len(t, f.catalog.CallsOf(catalogtest.OpResolve), 1)
}

func TestRun_MissingDefaultNamespaceAbortsRun(t *testing.T) {
	f := newFixture()
	f.fs.AddFile("/in/a.csv", "db,table,field,steward\nSales,Orders,Id,x\n")
	f.fs.AddFile("/in/b.csv", scenarioHeader)

	summary, err := f.importer(Options{}).Run(context.Background(), mauro.Directory("/in", ""))
	assert.ErrorIs(t, err, mauro.ErrConfig)
	assert.Zero(t, summary.FilesProcessed)
}

func TestRun_DefaultNamespace(t *testing.T) {
	f := newFixture()
	ref := f.catalog.AddDraft(customerPath)
	f.fs.AddFile("/in/a.csv", "db,table,field,steward\nSales,Orders,CustomerId,dave\n")

	f.run(t, Options{DefaultNamespace: "temp"}, mauro.SingleFile("/in/a.csv"))

	node, _ := f.catalog.Node(ref.ID)
	assert.Equal(t, "dave", node.Properties.Values["temp.steward"])
}

func TestRun_DeleteOnNull(t *testing.T) {
	f := newFixture()
	ref := f.catalog.AddDraft(customerPath)
	require.NoError(t, f.catalog.UpdateNode(context.Background(), ref, []mauro.PropertyWriteIntent{{
		Key: mauro.PropertyKey{Namespace: []string{"owner"}, Name: "name"}, Value: mauro.Text("old"), Action: mauro.ActionSet,
	}}))
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,CustomerId,NULL,\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))
	assert.Equal(t, 1, summary.Unchanged)
	node, _ := f.catalog.Node(ref.ID)
	assert.Equal(t, "old", node.Properties.Values["owner.name"])

	f.run(t, Options{DeleteOnNull: true}, mauro.SingleFile("/in/a.csv"))
	node, _ = f.catalog.Node(ref.ID)
	assert.NotContains(t, node.Properties.Values, "owner.name")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	f := newFixture()
	f.catalog.AddDraft(customerPath)
	f.catalog.AddFinalised("dm:Sales|dc:Orders|de:Total")
	f.fs.AddFile("/in/a.csv", scenarioHeader+
		"Sales,Orders,CustomerId,Customer identifier,alice\n"+
		"Sales,Orders,Total,Order total,bob\n")

	summary := f.run(t, Options{DryRun: true}, mauro.SingleFile("/in/a.csv"))

	assert.Equal(t, 2, summary.DryRun)
	assert.Equal(t, 4, summary.PlannedIntents)
	assert.Empty(t, f.catalog.CallsOf(catalogtest.OpUpdate))
	assert.Empty(t, f.catalog.CallsOf(catalogtest.OpBranch))
}

func TestRun_WritesUnavailableIsNotFatal(t *testing.T) {
	f := newFixture()
	f.catalog.WritesUnavailable = true
	f.catalog.AddDraft(customerPath)
	f.catalog.AddFinalised("dm:Sales|dc:Orders|de:Total")
	f.fs.AddFile("/in/a.csv", scenarioHeader+
		"Sales,Orders,CustomerId,Customer identifier,alice\n"+
		"Sales,Orders,Total,Order total,bob\n")

	summary := f.run(t, Options{}, mauro.SingleFile("/in/a.csv"))

	assert.Equal(t, 2, summary.WritesUnavailable)
	assert.Equal(t, 1, summary.FilesProcessed)
	// the finalised row stops at the branch call
	assert.Len(t, f.catalog.CallsOf(catalogtest.OpBranch), 1)
	assert.Len(t, f.catalog.CallsOf(catalogtest.OpUpdate), 1)
}

func TestRun_ClassLevelAndOverrides(t *testing.T) {
	f := newFixture()
	ref := f.catalog.AddDraft("dm:Warehouse|dc:dbo|dc:Orders")
	f.fs.AddFile("/in/a.csv", "\ufeffdb , table,description\nSales,Orders,All orders\n")

	opts := Options{
		ClassLevel: true,
		Overrides: mauro.Hierarchy{
			DB:     mauro.Text("Warehouse"),
			Schema: mauro.Text("dbo"),
		},
	}
	summary := f.run(t, opts, mauro.SingleFile("/in/a.csv"))
	assert.Equal(t, 1, summary.Updated)

	node, _ := f.catalog.Node(ref.ID)
	assert.Equal(t, mauro.Text("All orders"), node.Properties.Description)

	// without class level the same file lacks the field column
	summary = f.run(t, Options{Overrides: opts.Overrides}, mauro.SingleFile("/in/a.csv"))
	assert.Equal(t, 1, summary.FilesFailed)
}

func TestRun_CancelledContext(t *testing.T) {
	f := newFixture()
	f.fs.AddFile("/in/a.csv", scenarioHeader+"Sales,Orders,CustomerId,,alice\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.importer(Options{}).Run(ctx, mauro.SingleFile("/in/a.csv"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.catalog.Calls())
}

func TestRun_EmptyDirectory(t *testing.T) {
	f := newFixture()
	f.fs.AddDir("/in")

	summary := f.run(t, Options{}, mauro.Directory("/in", ""))
	assert.Zero(t, summary.FilesSeen)
}

func TestSummary_Print(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary{FilesSeen: 2, Updated: 3, SkippedNotFound: 1}.Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "Files seen:")
	assert.Regexp(t, `Updated in place:\s+3`, out)
	assert.Regexp(t, `Skipped: not found:\s+1`, out)
	assert.Contains(t, out, "Lookups without response:")
}
