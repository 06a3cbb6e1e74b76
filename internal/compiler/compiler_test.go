package compiler

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/params"
	"github.com/maxkimambo/windmill/internal/runtime"
	"github.com/maxkimambo/windmill/internal/workflow"
)

func newCompiler(t *testing.T, opts Options) (*Compiler, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return New(cat, opts), cat
}

func bashNode(id, taskID string, extra ...params.Spec) *document.Node {
	n := document.NewNode(id, "BashOperator", "airflow.operators.bash_operator")
	n.Properties.Parameters = append([]params.Spec{
		{ID: "task_id", Type: "str", Value: taskID, Required: true},
		{ID: "bash_command", Type: "str", Value: "echo " + id, Required: true},
	}, extra...)
	return n
}

func newDoc(dagParams ...params.Spec) *document.Document {
	doc := document.New("Flow")
	doc.DAG.Parameters = append([]params.Spec{
		{ID: "dag_id", Type: "str", Value: "flow", Required: true},
	}, dagParams...)
	return doc
}

var startDate = params.Spec{ID: "start_date", Type: "datetime", Value: "2020-05-20"}

func TestCompile_ValidDocument(t *testing.T) {
	c, cat := newCompiler(t, Options{})
	doc, err := document.ReadFile("testdata/valid.wml")
	require.NoError(t, err)

	src, err := c.Compile(doc)
	require.NoError(t, err)

	want, err := os.ReadFile("testdata/valid.star")
	require.NoError(t, err)
	assert.Equal(t, string(want), src)

	prog, err := runtime.Load("valid.star", []byte(src), cat)
	require.NoError(t, err)
	wf, err := prog.Workflow()
	require.NoError(t, err)
	assert.Equal(t, "ValidDag", wf.ID())
	require.Len(t, wf.Tasks(), 2)
	assert.Equal(t, "Task1", wf.Tasks()[1].ID())
	require.Len(t, wf.Tasks()[1].Downstream(), 1)
	assert.Equal(t, "Task2", wf.Tasks()[1].Downstream()[0].ID())
}

func TestCompile_MissingWorkflowIdentifier(t *testing.T) {
	c, _ := newCompiler(t, Options{})
	doc := document.New("Flow")
	doc.DAG.Parameters = []params.Spec{startDate}
	doc.AddNode(bashNode("a", "a"))

	_, err := c.Compile(doc)
	require.Error(t, err)
	assert.True(t, werrors.HasCode(err, werrors.CodeMissingParameter))
	assert.Equal(t, "workflow: 'dag_id' is a required parameter", err.Error())
}

func TestCompile_StartDate(t *testing.T) {
	c, _ := newCompiler(t, Options{})

	doc := newDoc()
	doc.AddNode(bashNode("a", "a"))
	doc.AddNode(bashNode("b", "b"))
	doc.AddLink("l1", "a", "b")
	_, err := c.Compile(doc)
	require.Error(t, err)
	assert.True(t, werrors.HasCode(err, werrors.CodeLoad))
	assert.Contains(t, err.Error(), "rendered workflow is invalid")
	assert.Contains(t, err.Error(), "missing the start_date parameter")

	doc = newDoc()
	doc.AddNode(bashNode("a", "a", startDate))
	doc.AddNode(bashNode("b", "b", startDate))
	doc.AddLink("l1", "a", "b")
	src, err := c.Compile(doc)
	require.NoError(t, err)
	assert.Contains(t, src, "a = BashOperator(\n"+
		"    task_id=\"a\",\n"+
		"    bash_command=\"echo a\",\n"+
		"    start_date=datetime(2020, 5, 20),\n"+
		"    dag=flow,\n"+
		")\n")

	doc = newDoc(startDate)
	doc.AddNode(bashNode("a", "a"))
	_, err = c.Compile(doc)
	assert.NoError(t, err)
}

func TestCompile_SkipLoad(t *testing.T) {
	c, _ := newCompiler(t, Options{SkipLoad: true})
	doc := newDoc()
	doc.AddNode(bashNode("a", "a"))

	src, err := c.Compile(doc)
	require.NoError(t, err)
	assert.Contains(t, src, "a = BashOperator(")
}

func TestCompile_CollidingIdentifiers(t *testing.T) {
	c, _ := newCompiler(t, Options{})
	doc := newDoc(startDate)
	doc.AddNode(bashNode("n1", "Load Data"))
	doc.AddNode(bashNode("n2", "load-data"))
	doc.AddNode(bashNode("n3", "Flow"))
	doc.AddLink("l1", "n1", "n2")
	doc.AddLink("l2", "n2", "n3")

	src, err := c.Compile(doc)
	require.NoError(t, err)
	assert.Contains(t, src, `load_data = BashOperator(task_id="Load Data"`)
	assert.Contains(t, src, `load_data_0 = BashOperator(task_id="load-data"`)
	assert.Contains(t, src, `flow_0 = BashOperator(task_id="Flow"`)
	assert.Contains(t, src, "load_data >> load_data_0 >> flow_0\n")
}

func TestCompile_ReservedWorkflowNames(t *testing.T) {
	c, _ := newCompiler(t, Options{})
	for _, dagID := range []string{"datetime", "pass", "load", "def"} {
		t.Run(dagID, func(t *testing.T) {
			doc := document.New("Flow")
			doc.DAG.Parameters = []params.Spec{
				{ID: "dag_id", Type: "str", Value: dagID, Required: true},
				startDate,
			}
			doc.AddNode(bashNode("a", "a"))

			src, err := c.Compile(doc)
			require.NoError(t, err)
			assert.Contains(t, src, dagID+"_0 = DAG(")
			assert.Contains(t, src, "dag="+dagID+"_0)")
		})
	}
}

func TestCompile_Callables(t *testing.T) {
	c, cat := newCompiler(t, Options{})
	doc := newDoc(startDate)
	n := document.NewNode("py", "PythonOperator", "")
	n.Properties.Parameters = []params.Spec{
		{ID: "task_id", Type: "str", Value: "Transform"},
		{ID: "python_callable", Type: "callable", Value: "rows = kwargs.get(\"rows\", [])\n\nreturn len(rows)"},
		{ID: "op_kwargs", Type: "dict", Value: map[string]any{"rows": []any{1, 2}}},
	}
	doc.AddNode(n)
	doc.AddNode(bashNode("a", "a"))
	doc.AddLink("l1", "a", "py")

	src, err := c.Compile(doc)
	require.NoError(t, err)
	assert.Contains(t, src, "def transform_python_callable_callable(**kwargs):\n"+
		"    rows = kwargs.get(\"rows\", [])\n\n    return len(rows)\n")
	assert.Contains(t, src, "python_callable=transform_python_callable_callable")
	assert.Contains(t, src, `load("airflow.operators.python_operator", "PythonOperator")`)

	prog, err := runtime.Load("flow.star", []byte(src), cat)
	require.NoError(t, err)
	wf, err := prog.Workflow()
	require.NoError(t, err)
	fn, ok := wf.Tasks()[0].Param("python_callable")
	require.True(t, ok)
	assert.Equal(t, params.Callable{Body: "rows = kwargs.get(\"rows\", [])\n\nreturn len(rows)"}, fn)
}

func TestCompile_UnlinkedTasksHaveNoChain(t *testing.T) {
	c, _ := newCompiler(t, Options{})
	doc := newDoc(startDate)
	doc.AddNode(bashNode("a", "a"))
	doc.AddNode(bashNode("b", "b"))

	src, err := c.Compile(doc)
	require.NoError(t, err)
	assert.NotContains(t, src, ">>")
	assert.True(t, strings.HasSuffix(src, "b = BashOperator(task_id=\"b\", bash_command=\"echo b\", dag=flow)\n"))
}

func TestCompile_ValidationFailuresComeFirst(t *testing.T) {
	c, _ := newCompiler(t, Options{})
	tests := []struct {
		name string
		doc  func() *document.Document
		code string
	}{
		{"unknown type", func() *document.Document {
			d := newDoc(startDate)
			d.AddNode(document.NewNode("x", "SparkOperator", ""))
			return d
		}, werrors.CodeUnknownType},
		{"dangling link", func() *document.Document {
			d := newDoc(startDate)
			d.AddNode(bashNode("a", "a"))
			d.AddLink("l1", "a", "ghost")
			return d
		}, werrors.CodeUnresolvedLink},
		{"cycle", func() *document.Document {
			d := newDoc(startDate)
			d.AddNode(bashNode("a", "a"))
			d.AddNode(bashNode("b", "b"))
			d.AddLink("l1", "a", "b")
			d.AddLink("l2", "b", "a")
			return d
		}, werrors.CodeCycle},
		{"duplicate task id", func() *document.Document {
			d := newDoc(startDate)
			d.AddNode(bashNode("a", "same"))
			d.AddNode(bashNode("b", "same"))
			return d
		}, werrors.CodeDuplicateIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.doc())
			require.Error(t, err)
			assert.True(t, werrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestProgramName(t *testing.T) {
	_, cat := newCompiler(t, Options{})
	doc := newDoc()
	doc.AddNode(bashNode("a", "a"))

	wf, err := workflow.FromDocument(doc, cat)
	require.NoError(t, err)
	assert.Equal(t, "Flow.star", ProgramName(wf))

	wf.Filename = "dags/nightly.wml"
	assert.Equal(t, "nightly.star", ProgramName(wf))

	wf.Filename = ""
	assert.Equal(t, "flow.star", ProgramName(wf))
}

func TestCodeBuilder_Wrapping(t *testing.T) {
	b := newCodeBuilder(20)
	b.assignCall("x", "F", []kwarg{{"a", "1"}})
	b.assignCall("long_name", "Factory", []kwarg{{"alpha", "1"}, {"beta", `"two"`}})
	b.blank()
	b.blank()
	b.chain([]string{"a", "b"})
	b.chain([]string{"first", "second", "third"})

	assert.Equal(t, `x = F(a=1)
long_name = Factory(
    alpha=1,
    beta="two",
)

a >> b
(
    first
    >> second
    >> third
)
`, b.String())
}

func TestCodeBuilder_Load(t *testing.T) {
	b := newCodeBuilder(DefaultLineWidth)
	b.load("airflow.models.dag", []string{"DAG"})
	b.def("f", "x = 1\n\nreturn x")
	assert.Equal(t, "load(\"airflow.models.dag\", \"DAG\")\ndef f(**kwargs):\n    x = 1\n\n    return x\n", b.String())
}
