package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/params"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func bashNode(id, taskID, command string) *document.Node {
	n := document.NewNode(id, "BashOperator", "airflow.operators.bash_operator")
	n.Properties.Parameters = []params.Spec{
		{ID: "bash_command", Type: "str", Value: command, Required: true},
		{ID: "task_id", Type: "str", Value: taskID, Required: true, InheritedFrom: "BaseOperator"},
		{ID: "retries", Type: "int", Value: float64(0), Default: 0, InheritedFrom: "BaseOperator"},
	}
	return n
}

func newDoc(dagID string) *document.Document {
	doc := document.New("Flow")
	doc.DAG.Parameters = []params.Spec{
		{ID: "dag_id", Type: "str", Value: dagID, Required: true},
		{ID: "start_date", Type: "datetime", Value: "2020-05-20"},
	}
	return doc
}

func TestDeriveIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ValidDag", "valid_dag"},
		{"Load Data", "load_data"},
		{"load-data", "load_data"},
		{"Hello, World!", "hello_world"},
		{"42 Extract", "_extract"},
		{"!!!", "task"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveIdentifier(tt.raw))
		})
	}
}

func taskWithID(raw string) *Task {
	set := params.NewSet()
	set.Put(&params.Parameter{ID: "task_id", Type: params.TypeString, Value: raw})
	return &Task{Identifier: "task_id", Params: set}
}

func TestResolveCollisions_Suffixes(t *testing.T) {
	tasks := []*Task{
		taskWithID("Load Data"),
		taskWithID("load-data"),
		taskWithID("Load_Data"),
		taskWithID("Valid Dag"),
		taskWithID("datetime"),
	}
	require.NoError(t, ResolveCollisions("valid_dag", tasks))

	var names []string
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"load_data", "load_data_0", "load_data_1", "valid_dag_0", "datetime_0"}, names)
}

func TestWorkflowIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Nightly Pipeline", "nightly_pipeline"},
		{"datetime", "datetime_0"},
		{"pass", "pass_0"},
		{"Load", "load_0"},
		{"def", "def_0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkflowIdentifier(tt.raw))
		})
	}
}

func TestFromDocument_ReservedWorkflowName(t *testing.T) {
	doc := newDoc("datetime")
	doc.AddNode(bashNode("n1", "datetime_0", "echo 1"))

	wf, err := FromDocument(doc, defaultCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, "datetime_0", wf.Name())
	assert.Equal(t, "datetime_0_0", wf.Tasks[0].Name)
}

func TestResolveCollisions_DuplicateRawIdentifier(t *testing.T) {
	err := ResolveCollisions("flow", []*Task{taskWithID("Extract"), taskWithID("Extract")})
	require.Error(t, err)
	assert.True(t, werrors.HasCode(err, werrors.CodeDuplicateIdentifier))
	assert.Equal(t, "duplicate task identifier 'Extract'", err.Error())
}

func TestFromDocument(t *testing.T) {
	doc := newDoc("ValidDag")
	doc.AddNode(bashNode("n1", "Extract", "echo extract"))
	doc.AddNode(bashNode("n2", "Load", "echo load"))
	doc.AddNode(bashNode("n3", "Report", "echo report"))
	doc.AddLink("l1", "n1", "n2")

	wf, err := FromDocument(doc, defaultCatalog(t))
	require.NoError(t, err)

	assert.Equal(t, "valid_dag", wf.Name())
	assert.Equal(t, "DAG", wf.TypeName)
	assert.Equal(t, []string{"dag_id", "start_date"}, wf.Params.IDs())
	require.Len(t, wf.Tasks, 3)

	extract := wf.Tasks[0]
	assert.Equal(t, "extract", extract.Name)
	assert.Equal(t, "n1", extract.NodeID)
	assert.Equal(t, []string{"bash_command", "task_id"}, extract.Params.IDs(), "default retries is dropped")

	assert.Equal(t, "load_0", wf.Tasks[1].Name, "load is a keyword")
	assert.Equal(t, [][]string{{"extract", "load_0"}}, wf.Links.Chains())
	assert.True(t, wf.Links.Graph.HasNode("report"))
}

func TestFromDocument_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *document.Document
		code  string
		msg   string
	}{
		{
			name: "missing workflow identifier",
			build: func() *document.Document {
				doc := newDoc("")
				doc.AddNode(bashNode("n1", "Extract", "echo 1"))
				return doc
			},
			code: werrors.CodeMissingParameter,
			msg:  "workflow: 'dag_id' is a required parameter",
		},
		{
			name: "workflow identifier absent from document",
			build: func() *document.Document {
				doc := document.New("Flow")
				return doc
			},
			code: werrors.CodeMissingParameter,
		},
		{
			name: "missing task identifier",
			build: func() *document.Document {
				doc := newDoc("Flow")
				doc.AddNode(bashNode("n1", "", "echo 1"))
				return doc
			},
			code: werrors.CodeMissingParameter,
			msg:  "node n1: 'task_id' is a required parameter",
		},
		{
			name: "unknown type",
			build: func() *document.Document {
				doc := newDoc("Flow")
				n := bashNode("n1", "Extract", "echo 1")
				n.Type = "SparkOperator"
				doc.AddNode(n)
				return doc
			},
			code: werrors.CodeUnknownType,
		},
		{
			name: "duplicate task identifier",
			build: func() *document.Document {
				doc := newDoc("Flow")
				doc.AddNode(bashNode("n1", "Extract", "echo 1"))
				doc.AddNode(bashNode("n2", "Extract", "echo 2"))
				return doc
			},
			code: werrors.CodeDuplicateIdentifier,
		},
		{
			name: "dangling link",
			build: func() *document.Document {
				doc := newDoc("Flow")
				doc.AddNode(bashNode("n1", "Extract", "echo 1"))
				doc.AddLink("l1", "n1", "ghost")
				return doc
			},
			code: werrors.CodeUnresolvedLink,
		},
		{
			name: "cycle",
			build: func() *document.Document {
				doc := newDoc("Flow")
				doc.AddNode(bashNode("n1", "Extract", "echo 1"))
				doc.AddNode(bashNode("n2", "Load", "echo 2"))
				doc.AddLink("l1", "n1", "n2")
				doc.AddLink("l2", "n2", "n1")
				return doc
			},
			code: werrors.CodeCycle,
			msg:  "graph is not a valid DAG",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDocument(tt.build(), defaultCatalog(t))
			require.Error(t, err)
			assert.True(t, werrors.HasCode(err, tt.code), "got %v", err)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, err.Error())
			}
		})
	}
}

func TestTask_CallableName(t *testing.T) {
	task := &Task{Name: "transform"}
	assert.Equal(t, "transform_python_callable_callable", task.CallableName("python_callable"))
	assert.Equal(t, "transform_response_check_callable", task.CallableName("responseCheck"))
}
