package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/profilecards/internal/config"
	"github.com/dshills/profilecards/internal/patch"
	"github.com/dshills/profilecards/internal/schema"
)

const profilesFixture = `[
  {"id":1,"name":"Ada Lovelace","email":"ada@example.com","education":"University of London",
   "skills":[{"id":1,"name":"Go"},{"id":2,"name":"SQL"}],
   "projects":[{"id":1,"title":"Analytical Engine","description":"Notes on the engine","link":"https://example.com/engine"}]},
  {"id":2,"name":"Grace Hopper","email":"grace@example.com","education":null,
   "skills":[{"id":3,"name":"COBOL"},{"id":4,"name":"go"}],
   "projects":[]},
  {"id":3,"name":"Ken Thompson","email":"ken@example.com","education":"",
   "skills":[],
   "projects":[{"id":2,"title":"Unix"}]}
]`

// mockBackend serves a mutable body at /profiles.
type mockBackend struct {
	mu     sync.Mutex
	status int
	body   string
	hits   int
}

func (m *mockBackend) set(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status, m.body = status, body
}

// setupMockBackend starts a test server standing in for the profiles API.
func setupMockBackend(t *testing.T, status int, body string) (*httptest.Server, *mockBackend) {
	t.Helper()
	m := &mockBackend{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles" {
			http.NotFound(w, r)
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		w.Write([]byte(m.body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, m
}

// runRenderFlags returns renderFlags populated with safe defaults for testing.
func runRenderFlags(backend string) renderFlags {
	return renderFlags{
		sourceFlags: sourceFlags{
			backend:    backend,
			timeout:    5 * time.Second,
			layoutName: "standard",
		},
		format: "html",
	}
}

func asExitErr(err error, out **exitErr) bool {
	e, ok := err.(*exitErr)
	if ok {
		*out = e
	}
	return ok
}

func wantExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var ee *exitErr
	if !asExitErr(err, &ee) {
		t.Fatalf("expected exitErr, got %T: %v", err, err)
	}
	if ee.code != code {
		t.Errorf("exit code = %d, want %d (%s)", ee.code, code, ee.msg)
	}
}

// --- render ---

func TestRunRender_HTMLToStdout(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	var stdout, stderr bytes.Buffer

	if err := runRender(context.Background(), runRenderFlags(srv.URL), &stdout, &stderr); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	s := stdout.String()
	if !strings.Contains(s, `<div id="profiles-container">`) {
		t.Errorf("output missing container: %s", s)
	}
	if n := strings.Count(s, `class="profile-card"`); n != 3 {
		t.Errorf("expected 3 cards, got %d", n)
	}
	for _, want := range []string{
		"<h2>Ada Lovelace</h2>",
		"<p>Email: ada@example.com</p>",
		"<p>Education: University of London</p>",
		"<p>Skills: Go, SQL</p>",
		"<p>Projects: Analytical Engine</p>",
		"<p>Projects: N/A</p>",
		"<p>Skills: N/A</p>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Count(s, "<p>Education: N/A</p>") != 2 {
		t.Errorf("expected null and empty education to render N/A")
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestRunRender_JSONToFile(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := runRenderFlags(srv.URL)
	flags.format = "json"
	flags.out = filepath.Join(t.TempDir(), "out.json")

	if err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	data, err := os.ReadFile(flags.out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var out struct {
		ID    string        `json:"id"`
		Cards []schema.Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	if len(out.Cards) != 3 {
		t.Errorf("expected 3 cards, got %d", len(out.Cards))
	}
}

func TestRunRender_SkillFilter(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := runRenderFlags(srv.URL)
	flags.skill = "GO"
	var stdout bytes.Buffer

	if err := runRender(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	s := stdout.String()
	if n := strings.Count(s, `class="profile-card"`); n != 2 {
		t.Errorf("expected 2 cards with skill go, got %d", n)
	}
	if strings.Contains(s, "Ken Thompson") {
		t.Error("Ken has no Go skill and should be filtered out")
	}
}

func TestRunRender_Search(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := runRenderFlags(srv.URL)
	flags.search = "engine"
	flags.format = "md"
	var stdout bytes.Buffer

	if err := runRender(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	s := stdout.String()
	if !strings.Contains(s, "## Ada Lovelace") || strings.Contains(s, "Grace") {
		t.Errorf("unexpected search result: %s", s)
	}
}

func TestRunRender_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var stdout, stderr bytes.Buffer
	err := runRender(context.Background(), runRenderFlags(url), &stdout, &stderr)
	wantExitCode(t, err, exitFetch)
	if n := strings.Count(stderr.String(), "ERROR:"); n != 1 {
		t.Errorf("expected exactly 1 logged error, got %d: %q", n, stderr.String())
	}
	var ee *exitErr
	if asExitErr(err, &ee) && ee.msg != "" {
		t.Errorf("logged failure should not carry a message for main to reprint: %q", ee.msg)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be rendered on failure: %q", stdout.String())
	}
}

// errorLines counts stderr lines reporting a failure, from either the
// loader (ERROR:) or the command root (Error:).
func errorLines(stderr string) int {
	n := 0
	for _, line := range strings.Split(stderr, "\n") {
		if strings.HasPrefix(line, "ERROR:") || strings.HasPrefix(line, "Error:") {
			n++
		}
	}
	return n
}

// executeRoot runs the full command tree with args and returns the exit
// code and captured output.
func executeRoot(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	cfg := config.Config{BackendURL: "http://localhost:1", Timeout: 5 * time.Second, Addr: ":0", Layout: "standard"}
	var stdout, stderr bytes.Buffer
	root := newRootCmd(cfg, &stdout, &stderr)
	root.SetArgs(args)
	code := execute(context.Background(), root, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_RenderNetworkFailureReportedOnce(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	code, stdout, stderr := executeRoot(t, "render", "--backend", url)
	if code != exitFetch {
		t.Errorf("exit code = %d, want %d", code, exitFetch)
	}
	if n := errorLines(stderr); n != 1 {
		t.Errorf("expected exactly 1 error line, got %d: %q", n, stderr)
	}
	if stdout != "" {
		t.Errorf("nothing should be rendered on failure: %q", stdout)
	}
}

func TestExecute_RenderParseFailureReportedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("<html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := executeRoot(t, "render", "--backend", "file:"+path)
	if code != exitFetch {
		t.Errorf("exit code = %d, want %d", code, exitFetch)
	}
	if n := errorLines(stderr); n != 1 {
		t.Errorf("expected exactly 1 error line, got %d: %q", n, stderr)
	}
}

func TestExecute_RenderSuccess(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)

	code, stdout, stderr := executeRoot(t, "render", "--backend", srv.URL, "--format", "md")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %q", code, stderr)
	}
	if !strings.Contains(stdout, "## Grace Hopper") {
		t.Errorf("output missing card: %q", stdout)
	}
}

func TestExecute_UsageErrorPrinted(t *testing.T) {
	code, _, stderr := executeRoot(t, "render", "--format", "xml")
	if code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, "Error: invalid format") {
		t.Errorf("usage error not printed: %q", stderr)
	}
}

func TestExecute_TopSkillsFailureReportedOnce(t *testing.T) {
	code, _, stderr := executeRoot(t, "top-skills", "--backend", "file:/nonexistent/profiles.json")
	if code != exitFetch {
		t.Errorf("exit code = %d, want %d", code, exitFetch)
	}
	if n := errorLines(stderr); n != 1 {
		t.Errorf("expected exactly 1 error line, got %d: %q", n, stderr)
	}
}

func TestRunRender_InvalidJSONLeavesOutputUntouched(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, "<html>maintenance</html>")
	flags := runRenderFlags(srv.URL)
	flags.out = filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(flags.out, []byte("previous page"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer

	err := runRender(context.Background(), flags, &bytes.Buffer{}, &stderr)
	wantExitCode(t, err, exitFetch)
	if n := strings.Count(stderr.String(), "ERROR:"); n != 1 {
		t.Errorf("expected exactly 1 logged error, got %d: %q", n, stderr.String())
	}
	data, _ := os.ReadFile(flags.out)
	if string(data) != "previous page" {
		t.Errorf("output file modified after parse failure: %q", data)
	}
}

func TestRunRender_NonOKStatus(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusInternalServerError, profilesFixture)

	// Default: the status is ignored when the body parses.
	if err := runRender(context.Background(), runRenderFlags(srv.URL), &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("expected success without --strict-status, got %v", err)
	}

	flags := runRenderFlags(srv.URL)
	flags.strictStatus = true
	err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{})
	wantExitCode(t, err, exitFetch)
}

func TestRunRender_PatchOut(t *testing.T) {
	srv, backend := setupMockBackend(t, http.StatusOK, profilesFixture)
	tmp := t.TempDir()
	flags := runRenderFlags(srv.URL)
	flags.out = filepath.Join(tmp, "page.html")
	flags.patchOut = filepath.Join(tmp, "page.patch")

	if err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("first render: %v", err)
	}
	first, _ := os.ReadFile(flags.out)

	backend.set(http.StatusOK, `[{"name":"Linus","email":"linus@example.com","skills":[{"name":"C"}],"projects":[{"title":"Kernel"}]}]`)
	if err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("second render: %v", err)
	}
	second, _ := os.ReadFile(flags.out)
	if strings.Contains(string(second), "Ada Lovelace") {
		t.Error("stale card survived reload")
	}
	if n := strings.Count(string(second), `class="profile-card"`); n != 1 {
		t.Errorf("expected 1 card after reload, got %d", n)
	}

	diffText, err := os.ReadFile(flags.patchOut)
	if err != nil {
		t.Fatalf("reading patch: %v", err)
	}
	if !strings.Contains(string(diffText), "# patch for") {
		t.Errorf("patch missing header: %q", diffText)
	}
	applied, err := patch.Apply(string(first), string(diffText))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied != string(second) {
		t.Error("patch does not reproduce the new page")
	}
}

func TestRunRender_PatchOutRequiresOut(t *testing.T) {
	flags := runRenderFlags("http://localhost:1")
	flags.patchOut = "x.patch"
	err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{})
	wantExitCode(t, err, exitUsage)
}

func TestRunRender_FileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(profilesFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	flags := runRenderFlags("file:" + path)
	flags.layoutName = "detailed"
	var stdout bytes.Buffer

	if err := runRender(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if !strings.Contains(stdout.String(), "<p>Work: N/A</p>") {
		t.Errorf("detailed layout missing work line: %s", stdout.String())
	}
}

func TestRunRender_InvalidFlags(t *testing.T) {
	cases := map[string]func(*renderFlags){
		"format":  func(f *renderFlags) { f.format = "xml" },
		"layout":  func(f *renderFlags) { f.layoutName = "fancy" },
		"timeout": func(f *renderFlags) { f.timeout = 0 },
		"backend": func(f *renderFlags) { f.backend = "" },
		"scheme":  func(f *renderFlags) { f.backend = "ftp://example.com" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			flags := runRenderFlags("http://localhost:1")
			mutate(&flags)
			err := runRender(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{})
			wantExitCode(t, err, exitUsage)
		})
	}
}

func TestRunRender_VerboseLogsSteps(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := runRenderFlags(srv.URL)
	flags.verbose = true
	var stderr bytes.Buffer

	if err := runRender(context.Background(), flags, &bytes.Buffer{}, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr.String(), "INFO: Rendering 3 card(s)") {
		t.Errorf("verbose output missing render step: %q", stderr.String())
	}
}

// --- top-skills / projects ---

func queryTestFlags(backend string) queryFlags {
	return queryFlags{
		sourceFlags: sourceFlags{backend: backend, timeout: 5 * time.Second},
		limit:       10,
		format:      "json",
	}
}

func TestRunTopSkills_JSON(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	var stdout bytes.Buffer

	if err := runTopSkills(context.Background(), queryTestFlags(srv.URL), &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runTopSkills: %v", err)
	}
	var skills []schema.SkillCount
	if err := json.Unmarshal(stdout.Bytes(), &skills); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(skills) != 4 {
		t.Fatalf("expected 4 distinct skills, got %+v", skills)
	}
	if skills[0].Rank != 1 {
		t.Errorf("first rank = %d, want 1", skills[0].Rank)
	}
}

func TestRunTopSkills_TextLimit(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := queryTestFlags(srv.URL)
	flags.format = "text"
	flags.limit = 2
	var stdout bytes.Buffer

	if err := runTopSkills(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runTopSkills: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d: %q", len(lines), stdout.String())
	}
}

func TestRunTopSkills_NegativeLimit(t *testing.T) {
	flags := queryTestFlags("http://localhost:1")
	flags.limit = -1
	err := runTopSkills(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{})
	wantExitCode(t, err, exitUsage)
}

func TestRunProjects_BySkill(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := queryTestFlags(srv.URL)
	flags.skill = "sql"
	var stdout bytes.Buffer

	if err := runProjects(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runProjects: %v", err)
	}
	var projects []schema.ProjectRef
	if err := json.Unmarshal(stdout.Bytes(), &projects); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Analytical Engine" || projects[0].Owner != "Ada Lovelace" {
		t.Errorf("unexpected projects: %+v", projects)
	}
}

func TestRunProjects_NoMatchIsEmptyArray(t *testing.T) {
	srv, _ := setupMockBackend(t, http.StatusOK, profilesFixture)
	flags := queryTestFlags(srv.URL)
	flags.skill = "rust"
	var stdout bytes.Buffer

	if err := runProjects(context.Background(), flags, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout.String()) != "[]" {
		t.Errorf("expected empty array, got %q", stdout.String())
	}
}

func TestRunProjects_FetchFailureRedacted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	flags := queryTestFlags("http://user:hunter2@" + host)
	err := runProjects(context.Background(), flags, &bytes.Buffer{}, &bytes.Buffer{})
	wantExitCode(t, err, exitFetch)
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("credentials leaked into error: %v", err)
	}
}
