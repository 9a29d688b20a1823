package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const highlightText = "wow this is amazing lol"

type testEnv struct {
	configPath string
	backupDir  string
	clock      *clockwork.FakeClock
}

func newTestEnv(t *testing.T, extra map[string]any) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := map[string]any{
		"database_driver": "sqlite3",
		"database_path":   filepath.Join(dir, "highlights.db"),
		"backup_dir":      filepath.Join(dir, "backups"),
		"privacy_salt":    "cli-salt",
		"log_level":       "error",
	}
	for k, v := range extra {
		cfg[k] = v
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return &testEnv{
		configPath: path,
		backupDir:  cfg["backup_dir"].(string),
		clock:      clockwork.NewFakeClockAt(epoch),
	}
}

func (e *testEnv) execute(args ...string) (string, string, error) {
	cmd := NewRootCommand(App{Version: "test", Clock: e.clock})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeData(t *testing.T, out string, into any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output %q", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, into))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(App{Version: "1.2.3"})
	require.NotNil(t, cmd)
	assert.Equal(t, "archivist", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(App{})
	commands := [][]string{
		{"serve"}, {"analyze"}, {"consent", "set"}, {"consent", "status"}, {"consent", "reset"},
		{"points"}, {"leaderboard"}, {"report"}, {"export"}, {"backup"}, {"sweep"},
		{"forget"}, {"clear"}, {"diagnose"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(App{})

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand(App{})
	tests := []struct {
		path []string
		flag string
		def  string
	}{
		{[]string{"serve"}, "addr", ""},
		{[]string{"analyze"}, "reactions", "0"},
		{[]string{"analyze"}, "respect-consent", "false"},
		{[]string{"leaderboard"}, "limit", "10"},
		{[]string{"backup"}, "sink", "file"},
		{[]string{"clear"}, "yes", "false"},
	}

	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		f := sub.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, tt.def, f.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t, nil)
	_, _, err := env.execute("--format", "xml", "points", "u1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBadConfigFile(t *testing.T) {
	cmd := NewRootCommand(App{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.json"), "sweep"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyze_Text(t *testing.T) {
	env := newTestEnv(t, nil)

	out, _, err := env.execute("analyze", "--reactions", "10", "u1", "wow", "this", "is", "amazing", "lol")
	require.NoError(t, err)
	assert.Contains(t, out, "Keywords:        lol, amazing, wow\n")
	assert.Contains(t, out, "Reactions:       10\n")
	assert.Contains(t, out, "Status:          highlight\n")
}

func TestAnalyze_RespectConsent(t *testing.T) {
	env := newTestEnv(t, nil)

	out, _, err := env.execute("--format", "json", "analyze", "--respect-consent", "--reactions", "10", "u1", highlightText)
	require.NoError(t, err)

	var res struct {
		IsHighlight bool     `json:"is_highlight"`
		Keywords    []string `json:"keywords"`
	}
	decodeData(t, out, &res)
	assert.False(t, res.IsHighlight)
	assert.Empty(t, res.Keywords)
}

func TestConsentLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	state := func(args ...string) string {
		t.Helper()
		out, _, err := env.execute(append([]string{"--format", "json", "consent"}, args...)...)
		require.NoError(t, err)
		var res map[string]string
		decodeData(t, out, &res)
		return res["state"]
	}

	assert.Equal(t, "unset", state("status", "u1"))
	assert.Equal(t, "granted", state("set", "u1", "true"))
	assert.Equal(t, "denied", state("set", "u1", "false"))
	assert.Equal(t, "unset", state("reset", "u1"))
	assert.Equal(t, "unset", state("status", "u1"))

	_, _, err := env.execute("consent", "set", "u1", "maybe")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPointsAndLeaderboard_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	out, _, err := env.execute("points", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Points:             0\n")

	out, _, err = env.execute("leaderboard")
	require.NoError(t, err)
	assert.Equal(t, "No points awarded yet.\n", out)

	_, _, err = env.execute("leaderboard", "--limit", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReport_Markdown(t *testing.T) {
	env := newTestEnv(t, nil)

	_, _, err := env.execute("analyze", "--reactions", "10", "u1", highlightText)
	require.NoError(t, err)

	out, _, err := env.execute("report", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "# Weekly Highlights\n")
	assert.Contains(t, out, "**Period:** 2024-05-25 - 2024-06-01\n")
	assert.Contains(t, out, "**Total Highlights:** 1\n")
	assert.Contains(t, out, "**Content:** "+highlightText+"\n")

	_, _, err = env.execute("report", "yearly")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportBackupForgetClear(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, u := range []string{"u1", "u2"} {
		_, _, err := env.execute("analyze", "--reactions", "10", u, highlightText)
		require.NoError(t, err)
	}

	out, _, err := env.execute("export")
	require.NoError(t, err)
	var doc struct {
		Highlights []json.RawMessage `json:"highlights"`
		Version    int               `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Highlights, 2)
	assert.Equal(t, 1, doc.Version)

	out, _, err = env.execute("backup")
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up 2 highlights to "+env.backupDir)
	entries, err := os.ReadDir(env.backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, _, err = env.execute("backup", "--sink", "s3")
	require.Error(t, err)

	out, _, err = env.execute("forget", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 highlights, points and consent record\n", out)

	_, _, err = env.execute("clear")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err = env.execute("--format", "json", "clear", "--yes")
	require.NoError(t, err)
	var cleared map[string]int64
	decodeData(t, out, &cleared)
	assert.Equal(t, int64(1), cleared["highlights"])
}

func TestSweep(t *testing.T) {
	env := newTestEnv(t, map[string]any{"data_retention_days": 7})

	_, _, err := env.execute("analyze", "u1", highlightText)
	require.NoError(t, err)

	env.clock.Advance(8 * 24 * time.Hour)
	out, _, err := env.execute("sweep")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 highlights older than 7 days\n", out)
}

func TestDiagnose(t *testing.T) {
	env := newTestEnv(t, nil)

	out, _, err := env.execute("diagnose")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[FAIL] Configuration: Missing: DISCORD_TOKEN\n")
	assert.Contains(t, out, "[ok  ] Database Tables: Required tables exist.\n")

	healthy := newTestEnv(t, map[string]any{"discord_token": "token"})
	out, _, err = healthy.execute("--format", "json", "diagnose")
	require.NoError(t, err)
	var res diagnoseResult
	decodeData(t, out, &res)
	assert.True(t, res.Healthy)
	assert.Len(t, res.Checks, 5)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "inner")
}

func TestOutputFormatter(t *testing.T) {
	var out, errOut bytes.Buffer

	text := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut}
	require.NoError(t, text.Print(42, func(w io.Writer) { io.WriteString(w, "forty-two\n") }))
	text.Fail(errors.New("boom"))
	assert.Equal(t, "forty-two\n", out.String())
	assert.Equal(t, "Error: boom\n", errOut.String())

	out.Reset()
	js := &OutputFormatter{Format: "json", Writer: &out}
	js.Fail(errors.New("boom"))
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, out.String())
}
