package integration

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/windmill/integration_tests/internal/testutil"
)

func TestCompile_Pipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ws := testutil.NewWorkspace(t, "pipeline.wml")

	res := testutil.Run(t, ws.Dir, "compile", "pipeline.wml", "-o", "pipeline.star", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)

	src := ws.Read(t, "pipeline.star")
	assert.Contains(t, src, `load("airflow.operators.dummy_operator", "DummyOperator")`)
	assert.Contains(t, src, "nightly_pipeline = DAG(\n")
	assert.Contains(t, src, `    schedule_interval="0 3 * * *",`)
	assert.Contains(t, src, "    dagrun_timeout=timedelta(hours=2),")
	assert.Contains(t, src, "def enrich_python_callable_callable(**kwargs):\n")

	chains := []string{
		"start >> fetch >> parse >> enrich >> merge\n",
		"start >> split >> archive\n",
		"split >> merge\n",
	}
	last := -1
	for _, c := range chains {
		i := strings.Index(src, c)
		require.GreaterOrEqual(t, i, 0, "missing chain %q", c)
		assert.Greater(t, i, last, "chains are emitted in decomposition order")
		last = i
	}
}

func TestCompile_LineWidthFromEnvironment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ws := testutil.NewWorkspace(t, "pipeline.wml")

	cmd := exec.Command(testutil.BinaryPath(), "compile", "pipeline.wml", "--quiet")
	cmd.Dir = ws.Dir
	cmd.Env = append(os.Environ(), "WINDMILL_COMPILER_LINE_WIDTH=40")
	out, err := cmd.Output()
	require.NoError(t, err)

	assert.Contains(t, string(out), "(\n    start\n    >> fetch\n")
}

func TestRoundTrip_Pipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ws := testutil.NewWorkspace(t, "pipeline.wml")

	res := testutil.Run(t, ws.Dir, "compile", "pipeline.wml", "-o", "first.star", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	res = testutil.Run(t, ws.Dir, "decompile", "first.star", "-o", "first.wml", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	res = testutil.Run(t, ws.Dir, "compile", "first.wml", "-o", "second.star", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)

	body := func(src string) string {
		// The header names the source document, which differs between passes.
		lines := strings.Split(src, "\n")
		return strings.Join(lines[2:], "\n")
	}
	assert.Equal(t, body(ws.Read(t, "first.star")), body(ws.Read(t, "second.star")))
}

func TestGraph_Pipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ws := testutil.NewWorkspace(t, "pipeline.wml")

	res := testutil.Run(t, ws.Dir, "graph", "pipeline.wml", "--format", "dot", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, `label="Nightly Pipeline";`)
	assert.Contains(t, res.Stdout, `"split" -> "merge"`)

	res = testutil.Run(t, ws.Dir, "graph", "pipeline.wml", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "Chains: 3\n")
}

func TestCheck_MixedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ws := testutil.NewWorkspace(t, "pipeline.wml")

	res := testutil.Run(t, ws.Dir, "compile", "pipeline.wml", "-o", "pipeline.star", "--quiet")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	ws.Write(t, "empty.star", "x = 1\n")

	res = testutil.Run(t, ws.Dir, "check", "pipeline.wml", "pipeline.star", "empty.star", "--quiet")
	assert.NotEqual(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "7 tasks, 3 chains")
	assert.Contains(t, res.Stdout, "7 tasks, 7 links")
	assert.Contains(t, res.Stdout, "does not define a workflow")
	assert.Contains(t, res.Stderr, "1 of 3 files failed the check")
}
