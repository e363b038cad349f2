package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// fakeSettings is an in-memory SettingsService.
type fakeSettings struct {
	settings    domain.AppSettings
	validateErr error
	sets        map[string]string
	embedding   domain.AIProvider
	llm         domain.AIProvider
}

func newFakeSettings(dataDir string) *fakeSettings {
	s := domain.DefaultAppSettings(dataDir)
	s.Paths.SourceDir = filepath.Join(dataDir, "contracts")
	return &fakeSettings{settings: s, sets: map[string]string{}}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(s *domain.AppSettings) error {
	f.settings = *s
	return nil
}

func (f *fakeSettings) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	f.sets[key] = value
	return nil
}

func (f *fakeSettings) Keys() []string {
	return []string{"index.batch_size", "llm.api_key"}
}

func (f *fakeSettings) SetEmbeddingProvider(p domain.AIProvider, model, _ string) error {
	f.embedding = p
	f.settings.Embedding.Model = model
	return nil
}

func (f *fakeSettings) SetLLMProvider(p domain.AIProvider, model, _ string) error {
	f.llm = p
	f.settings.LLM.Model = model
	return nil
}

func (f *fakeSettings) Validate() error                 { return f.validateErr }
func (f *fakeSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings("") }
func (f *fakeSettings) ValidateEmbeddingConfig() error  { return nil }
func (f *fakeSettings) ValidateLLMConfig() error        { return nil }

type fakeIngest struct {
	dir       string
	report    *domain.IngestReport
	err       error
	forgotten bool
}

func (f *fakeIngest) Run(_ context.Context, dir string, _ domain.ProgressFunc) (*domain.IngestReport, error) {
	f.dir = dir
	if f.report == nil {
		f.report = &domain.IngestReport{}
	}
	return f.report, f.err
}

func (f *fakeIngest) IngestFile(context.Context, string) (bool, error) { return false, nil }
func (f *fakeIngest) Accepts(path string) bool                          { return filepath.Ext(path) == ".pdf" }

func (f *fakeIngest) Forget(context.Context) error {
	f.forgotten = true
	return nil
}

type fakeIndex struct {
	mode   domain.IndexMode
	calls  int
	report *domain.IndexReport
	err    error
}

func (f *fakeIndex) Build(_ context.Context, mode domain.IndexMode, _ domain.ProgressFunc) (*domain.IndexReport, error) {
	f.mode = mode
	f.calls++
	if f.report == nil {
		f.report = &domain.IndexReport{}
	}
	f.report.Mode = mode
	return f.report, f.err
}

type fakeSearch struct {
	query   string
	opts    domain.SearchOptions
	results []domain.SearchResult
	err     error
}

func (f *fakeSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	f.query = query
	f.opts = opts
	return f.results, f.err
}

type fakeAnswer struct {
	question string
	answer   *domain.Answer
	err      error
}

func (f *fakeAnswer) Ask(_ context.Context, question string) (*domain.Answer, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	a := *f.answer
	a.Question = question
	return &a, nil
}

type fakeReset struct {
	called bool
	report *domain.ResetReport
	err    error
}

func (f *fakeReset) Reset(context.Context) (*domain.ResetReport, error) {
	f.called = true
	return f.report, f.err
}

type fakeStatus struct {
	status *domain.Status
	err    error
}

func (f *fakeStatus) Status(context.Context) (*domain.Status, error) {
	return f.status, f.err
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// fakeWiring hands out the fakes and records what commands required.
type fakeWiring struct {
	settings *fakeSettings
	app      *App
	req      Requirements
	built    bool
	closed   bool
	buildErr error
}

func (w *fakeWiring) Settings(Options) (driving.SettingsService, error) {
	return w.settings, nil
}

func (w *fakeWiring) Build(_ context.Context, _ *domain.AppSettings, req Requirements) (*App, error) {
	if w.buildErr != nil {
		return nil, w.buildErr
	}
	w.req = req
	w.built = true
	a := *w.app
	a.Closers = []io.Closer{closerFunc(func() error { w.closed = true; return nil })}
	return &a, nil
}

// testEnv is one isolated command line run.
type testEnv struct {
	wiring *fakeWiring
	ingest *fakeIngest
	index  *fakeIndex
	search *fakeSearch
	answer *fakeAnswer
	reset  *fakeReset
	status *fakeStatus
	out    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dataDir := t.TempDir()
	env := &testEnv{
		ingest: &fakeIngest{},
		index:  &fakeIndex{},
		search: &fakeSearch{},
		answer: &fakeAnswer{answer: &domain.Answer{}},
		reset:  &fakeReset{report: &domain.ResetReport{}},
		status: &fakeStatus{status: &domain.Status{}},
		out:    new(bytes.Buffer),
	}
	env.wiring = &fakeWiring{
		settings: newFakeSettings(dataDir),
		app: &App{
			Ingest: env.ingest,
			Index:  env.index,
			Search: env.search,
			Answer: env.answer,
			Reset:  env.reset,
			Status: env.status,
		},
	}

	resetFlags()
	prevProgress, prevTTY := progressEnabled, stdinIsTerminal
	progressEnabled = func() bool { return false }
	stdinIsTerminal = func() bool { return false }
	SetWiring(env.wiring)
	t.Cleanup(func() {
		resetFlags()
		progressEnabled, stdinIsTerminal = prevProgress, prevTTY
		SetWiring(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return env
}

// resetFlags restores flag variables, which persist across executions.
func resetFlags() {
	flagVerbose, flagNoColor = false, true
	flagDataDir, flagConfigDir = "", ""
	indexFull, runFull, resetYes = false, false, false
	searchLimit, searchSource, searchJSON = 0, "", false
	askJSON, statusJSON = false, false
}

// run executes the command line with args and returns the output.
func (e *testEnv) run(args ...string) (string, error) {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(input string, args ...string) (string, error) {
	e.out.Reset()
	rootCmd.SetOut(e.out)
	rootCmd.SetErr(e.out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return e.out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	return e.mustRunWithInput(t, "", args...)
}

func (e *testEnv) mustRunWithInput(t *testing.T, input string, args ...string) string {
	t.Helper()
	out, err := e.runWithInput(input, args...)
	require.NoError(t, err, out)
	return out
}

// resetFunc runs a hook instead of resetting.
type resetFunc func()

func (f resetFunc) Reset(context.Context) (*domain.ResetReport, error) {
	f()
	return &domain.ResetReport{}, nil
}
