package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/storyloom/internal/cli"
	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/internal/testutils"
	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, input string) (*cli.App, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = "file"
	cfg.DataDir = t.TempDir()
	out := &bytes.Buffer{}
	return &cli.App{
		Config: cfg,
		Logger: logging.NewNop(),
		In:     strings.NewReader(input),
		Out:    out,
		Err:    &bytes.Buffer{},
	}, out
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	dir := testutils.SceneDir(t)

	app, out := newApp(t, "")
	require.NoError(t, app.Validate(ctx, dir, false))
	assert.Contains(t, out.String(), "dead_end")
	assert.Contains(t, out.String(), "is valid!")

	err := app.Validate(ctx, dir, true)
	assert.ErrorIs(t, err, cli.ErrWarnings)

	file := filepath.Join(t.TempDir(), "dup.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"meta":{"start":"a"},"nodes":[{"id":"a"},{"id":"a"}]}`), 0o600))
	out.Reset()
	err = app.Validate(ctx, file, false)
	assert.ErrorIs(t, err, analysis.ErrInvalidGraph)
	assert.Contains(t, out.String(), "duplicate_id")

	assert.Error(t, app.Validate(ctx, filepath.Join(t.TempDir(), "missing.json"), false))
}

func TestAuthoringCommands(t *testing.T) {
	ctx := context.Background()
	dir := testutils.SceneDir(t)
	app, out := newApp(t, "")

	require.NoError(t, app.Graph(ctx, dir, false))
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), `start(("Gate<br/><small>start</small>"))`)

	out.Reset()
	require.NoError(t, app.Convert(ctx, dir, cli.ShapeRuntime, "yaml", ""))
	assert.Contains(t, out.String(), "start: start")
	assert.Contains(t, out.String(), "tower:")

	out.Reset()
	require.NoError(t, app.Convert(ctx, dir, cli.ShapeAuthoring, "json", ""))
	assert.Contains(t, out.String(), `"nodes": [`)

	assert.Error(t, app.Convert(ctx, dir, "weird", "json", ""))
	assert.Error(t, app.Convert(ctx, dir, cli.ShapeRuntime, "toml", ""))

	scenes := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, app.Convert(ctx, dir, cli.ShapeScenes, "", scenes))
	assert.FileExists(t, filepath.Join(scenes, "cellar.md"))
	assert.Error(t, app.Convert(ctx, dir, cli.ShapeScenes, "", ""))

	out.Reset()
	require.NoError(t, app.Extract(ctx, dir, []string{"cellar"}, "yaml"))
	assert.Contains(t, out.String(), "start: cellar")
	assert.Error(t, app.Extract(ctx, dir, nil, "yaml"))

	out.Reset()
	require.NoError(t, app.Path(ctx, dir, "", "tower"))
	assert.Contains(t, out.String(), "start -> tower")
	assert.Contains(t, out.String(), "choose 1 (Climb the tower)")

	out.Reset()
	require.NoError(t, app.Path(ctx, dir, "cellar", "tower"))
	assert.Contains(t, out.String(), "cellar -> start -> tower")

	assert.ErrorIs(t, app.Path(ctx, dir, "tower", "cellar"), analysis.ErrNoPath)
}

func TestPlayAndSlots(t *testing.T) {
	ctx := context.Background()
	dir := testutils.SceneDir(t)

	app, out := newApp(t, "2\nsave down here\nquit\n")
	require.NoError(t, app.Play(ctx, dir, cli.PlayOptions{Headless: true}))
	assert.Contains(t, out.String(), "## Gate")
	assert.Contains(t, out.String(), "## Cellar")
	assert.Contains(t, out.String(), "Bye!")

	// Progress is resumed on the next run with the same data dir.
	out.Reset()
	app.In = strings.NewReader("quit\n")
	require.NoError(t, app.Play(ctx, dir, cli.PlayOptions{Headless: true}))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out.String()), "## Cellar"), out.String())

	out.Reset()
	require.NoError(t, app.Graph(ctx, dir, true))
	assert.Contains(t, out.String(), "class cellar current;")

	out.Reset()
	require.NoError(t, app.ListSlots(ctx, dir))
	assert.Contains(t, out.String(), "down here")
	assert.Contains(t, out.String(), "Cellar")

	id := slotID(t, app, dir)
	out.Reset()
	require.NoError(t, app.RenameSlot(ctx, dir, id, "basement"))
	require.NoError(t, app.CopySlot(ctx, dir, id, "backup"))
	out.Reset()
	require.NoError(t, app.ListSlots(ctx, dir))
	assert.Contains(t, out.String(), "basement")
	assert.Contains(t, out.String(), "backup")

	require.NoError(t, app.DeleteSlot(ctx, dir, id))
	assert.ErrorIs(t, app.DeleteSlot(ctx, dir, id), domain.ErrSlotNotFound)

	// Fresh ignores saved progress.
	out.Reset()
	app.In = strings.NewReader("")
	require.NoError(t, app.Play(ctx, dir, cli.PlayOptions{Headless: true, Fresh: true}))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out.String()), "## Gate"), out.String())
}

func slotID(t *testing.T, app *cli.App, dir string) string {
	t.Helper()
	out := app.Out.(*bytes.Buffer)
	out.Reset()
	require.NoError(t, app.ListSlots(context.Background(), dir))
	var ids []string
	for _, line := range strings.Split(out.String(), "\n") {
		cells := strings.Split(line, "│")
		if len(cells) < 3 {
			continue
		}
		if id := strings.TrimSpace(cells[1]); id != "ID" {
			ids = append(ids, id)
		}
	}
	require.Len(t, ids, 1)
	return ids[0]
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	app, _ := newApp(t, "")
	app.Config.Backend = "memory"

	b, err := app.Config.OpenBackend(ctx)
	require.NoError(t, err)
	defer b.Close()

	h, err := app.Handler(ctx, testutils.SceneDir(t), b)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions/p1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nodeId":"start"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storyloom_node_visits_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSignalContext(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	assert.Nil(t, sc.Signal())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}

func TestInterruptibleReader(t *testing.T) {
	done := make(chan struct{})
	r := cli.NewInterruptibleReader(strings.NewReader("hello"), done)
	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	close(done)
	_, err = r.Read(buf)
	assert.EqualError(t, err, "interrupted")
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "door")
	app, out := newApp(t, "")

	require.NoError(t, app.Init(ctx, dir))
	assert.Contains(t, out.String(), "The Locked Door")
	assert.ErrorIs(t, app.Init(ctx, dir), cli.ErrNotEmpty)

	out.Reset()
	require.NoError(t, app.Validate(ctx, dir, false))
	assert.Contains(t, out.String(), "is valid!")

	// Search the desk, go back, open the door, unlock it.
	out.Reset()
	app.In = strings.NewReader("1\n1\n2\n1\n")
	require.NoError(t, app.Play(ctx, dir, cli.PlayOptions{Headless: true}))
	assert.Contains(t, out.String(), "## Garden")
	assert.Contains(t, out.String(), "-- The End --")
}
