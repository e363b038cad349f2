package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagingfile "github.com/custodia-labs/lexrag/internal/adapters/driven/staging/file"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/fingerprint"
)

type ingestFixture struct {
	svc       *IngestService
	tracker   *memory.Tracker
	cache     *stagingfile.Cache
	converter *fakeConverter
	srcDir    string
}

func newIngestFixture(t *testing.T, files map[string]string) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		tracker:   memory.NewTracker(),
		cache:     stagingfile.New(filepath.Join(t.TempDir(), "cache")),
		converter: &fakeConverter{fail: map[string]error{}},
		srcDir:    writeFiles(t.TempDir(), files),
	}
	f.svc = NewIngestService(f.tracker, f.cache, f.converter, trimCleaner{},
		domain.DefaultAppSettings(t.TempDir()).Ingest, nil)
	return f
}

func (f *ingestFixture) with(tracker driven.IngestionTracker, cache driven.StagingCache) *IngestService {
	return NewIngestService(tracker, cache, f.converter, trimCleaner{}, f.svc.settings, nil)
}

func TestIngestService_Run_StagesAndRegisters(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.pdf": "# Agreement\nThe Seller shall deliver.\nBOILERPLATE",
	})

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Parsed)
	assert.Zero(t, report.Skipped)
	assert.Empty(t, report.Failures)

	fp, err := fingerprint.File(filepath.Join(f.srcDir, "a.pdf"))
	require.NoError(t, err)

	rec, err := f.tracker.Get(context.Background(), fp)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", rec.FileName)
	assert.Equal(t, domain.DefaultParseParams, rec.ParseParams)
	assert.Equal(t, f.cache.PathFor(fp), rec.CachePath)

	docs, err := f.cache.Read(context.Background(), rec.CachePath)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Agreement\nThe Seller shall deliver.", docs[0].Text)
	assert.Equal(t, "a.pdf", docs[0].Metadata.Source)
	assert.Equal(t, fp, docs[0].Metadata.Fingerprint)
	assert.Equal(t, 1, docs[0].Metadata.TotalPages)
	assert.Equal(t, "pdftotext_production_v1", docs[0].Metadata.Parser)
	assert.Nil(t, docs[0].Metadata.PageRange)
}

func TestIngestService_Run_SecondRunDoesNoWork(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.pdf": "alpha",
		"b.pdf": "beta",
	})

	_, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	require.Len(t, f.converter.calls, 2)

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Parsed)
	assert.Len(t, f.converter.calls, 2, "no conversions on an unchanged directory")

	n, err := f.tracker.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIngestService_Run_DuplicateContentParsedOnce(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.pdf":      "same contract",
		"a-copy.pdf": "same contract",
	})

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, f.converter.calls, 1)

	pending, err := f.cache.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestIngestService_Run_FiltersCandidates(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.PDF":         "upper case extension",
		"notes.txt":     "ignored",
		".hidden.pdf":   "ignored",
		"sub/inner.pdf": "not recursive",
	})

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, []string{"a.PDF"}, f.converter.calls)
}

func TestIngestService_Run_IsolatesFileFailures(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.pdf": "alpha",
		"b.pdf": "corrupt",
		"c.pdf": "BOILERPLATE",
		"d.pdf": "delta",
	})
	f.converter.fail["b.pdf"] = errBoom

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Parsed)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "b.pdf", filepath.Base(report.Failures[0].Path))
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrParse)
	assert.Equal(t, "c.pdf", filepath.Base(report.Failures[1].Path))
	assert.Contains(t, report.Failures[1].Err.Error(), "no text left")

	n, err := f.tracker.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "failed files are never registered")

	// A failed file is retried on the next run.
	delete(f.converter.fail, "b.pdf")
	report, err = f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 2, report.Skipped)
}

func TestIngestService_Run_TrackerFailureAborts(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha", "b.pdf": "beta"})
	svc := f.with(&failingTracker{IngestionTracker: f.tracker, failIsProcessed: true}, f.cache)

	report, err := svc.Run(context.Background(), f.srcDir, nil)
	require.ErrorIs(t, err, domain.ErrStorage)
	require.NotNil(t, report)
	assert.Empty(t, f.converter.calls)
}

func TestIngestService_Run_RegisterFailureAborts(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha", "b.pdf": "beta"})
	svc := f.with(&failingTracker{IngestionTracker: f.tracker, failRegister: true}, f.cache)

	_, err := svc.Run(context.Background(), f.srcDir, nil)
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Len(t, f.converter.calls, 1, "run stops at the first storage failure")
}

func TestIngestService_Run_StagingFailureNeverRegisters(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha"})
	svc := f.with(f.tracker, &failingCache{StagingCache: f.cache, failWrite: true})

	_, err := svc.Run(context.Background(), f.srcDir, nil)
	require.ErrorIs(t, err, domain.ErrStorage)

	n, err := f.tracker.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestService_Run_MissingDirectory(t *testing.T) {
	f := newIngestFixture(t, nil)

	_, err := f.svc.Run(context.Background(), filepath.Join(f.srcDir, "nope"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_Run_Progress(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha", "b.pdf": "beta"})

	var items []string
	_, err := f.svc.Run(context.Background(), f.srcDir, func(done, total int, item string) {
		assert.Equal(t, 2, total)
		assert.Equal(t, len(items)+1, done)
		items = append(items, item)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, items)
}

func TestIngestService_Run_Cancelled(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Run(ctx, f.srcDir, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.converter.calls)
}

func TestIngestService_PageRange(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha"})
	settings := f.svc.settings
	settings.PageRange = "2-5"
	svc := NewIngestService(f.tracker, f.cache, f.converter, trimCleaner{}, settings, nil)

	_, err := svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)

	require.Len(t, f.converter.opts, 1)
	assert.Equal(t, &domain.PageRange{First: 2, Last: 5}, f.converter.opts[0].PageRange)

	pending, err := f.cache.ListPending(context.Background())
	require.NoError(t, err)
	docs, err := f.cache.Read(context.Background(), pending[0])
	require.NoError(t, err)
	assert.Equal(t, &domain.PageRange{First: 2, Last: 5}, docs[0].Metadata.PageRange)
}

func TestIngestService_IngestFile(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha", "bad.pdf": "x"})
	f.converter.fail["bad.pdf"] = errBoom
	path := filepath.Join(f.srcDir, "a.pdf")

	skipped, err := f.svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, skipped)

	skipped, err = f.svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, skipped)

	_, err = f.svc.IngestFile(context.Background(), filepath.Join(f.srcDir, "bad.pdf"))
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = f.svc.IngestFile(context.Background(), filepath.Join(f.srcDir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestService_Accepts(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, nil, domain.IngestSettings{Extensions: []string{".pdf", ".PDFA"}}, nil)

	assert.True(t, svc.Accepts("/x/contract.pdf"))
	assert.True(t, svc.Accepts("contract.Pdf"))
	assert.True(t, svc.Accepts("contract.pdfa"))
	assert.False(t, svc.Accepts("contract.docx"))
	assert.False(t, svc.Accepts("pdf"))
}

func TestIngestService_Forget(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.pdf": "alpha"})

	_, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.Forget(context.Background()))

	n, err := f.tracker.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	report, err := f.svc.Run(context.Background(), f.srcDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Parsed, "source is staged again")
	assert.Len(t, f.converter.calls, 2)
}
