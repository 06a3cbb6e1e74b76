package catalog

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/maxkimambo/windmill/internal/errors"
)

func TestDefault_BuildsOnce(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Catalog, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := Default()
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestDefault_Contents(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BashOperator", "PythonOperator", "DummyOperator", "EmailOperator", "SimpleHttpOperator",
	}, c.Types())

	wf := c.Workflow()
	assert.Equal(t, "DAG", wf.Type)
	assert.Equal(t, "dag_id", wf.Identifier)
	dagID, ok := wf.Param("dag_id")
	require.True(t, ok)
	assert.True(t, dagID.Required)
}

func TestLookup_MergesInheritedParameters(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	bash, err := c.Lookup("BashOperator")
	require.NoError(t, err)
	assert.Equal(t, "airflow.operators.bash_operator", bash.Module)
	assert.Equal(t, "task_id", bash.Identifier)
	assert.Equal(t, []string{"start_date"}, bash.Requires)

	ids := bash.ParamIDs()
	assert.Equal(t, []string{"bash_command", "env", "xcom_push"}, ids[:3])
	assert.Contains(t, ids, "task_id")

	taskID, ok := bash.Param("task_id")
	require.True(t, ok)
	assert.Equal(t, "BaseOperator", taskID.InheritedFrom)
	own, _ := bash.Param("bash_command")
	assert.Empty(t, own.InheritedFrom)
}

func TestLookup_UnknownAndAbstract(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"SparkOperator", "BaseOperator"} {
		_, err := c.Lookup(name)
		require.Error(t, err, name)
		assert.True(t, werrors.HasCode(err, werrors.CodeUnknownType))
		assert.Equal(t, "unknown task type '"+name+"'", err.Error())
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	first, err := c.Lookup("BashOperator")
	require.NoError(t, err)
	first.Parameters[0].ID = "mutated"
	first.Module = "elsewhere"

	second, err := c.Lookup("BashOperator")
	require.NoError(t, err)
	assert.Equal(t, "bash_command", second.Parameters[0].ID)
	assert.Equal(t, "airflow.operators.bash_operator", second.Module)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing workflow",
			yaml: "types: []\n",
			want: "invalid catalog",
		},
		{
			name: "unknown parameter type",
			yaml: `
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str, required: true}
    - {id: ratio, type: complex}
`,
			want: "invalid catalog",
		},
		{
			name: "identifier not required",
			yaml: `
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str}
`,
			want: "must be a required parameter",
		},
		{
			name: "unknown base",
			yaml: `
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str, required: true}
types:
  - type: Step
    module: flows.steps
    identifier: name
    inherits: Missing
    parameters:
      - {id: name, type: str, required: true}
`,
			want: "inherits unknown type Missing",
		},
		{
			name: "type without identifier",
			yaml: `
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str, required: true}
types:
  - type: Step
    module: flows.steps
    parameters:
      - {id: name, type: str, required: true}
`,
			want: `Step identifier ""`,
		},
		{
			name: "bad default",
			yaml: `
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str, required: true}
    - {id: retries, type: int, default: lots}
`,
			want: "invalid catalog: Flow",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_InheritsIdentifier(t *testing.T) {
	c, err := Load(strings.NewReader(`
workflow:
  type: Flow
  module: flows
  identifier: name
  parameters:
    - {id: name, type: str, required: true}
types:
  - type: Base
    module: flows.base
    abstract: true
    identifier: step_id
    parameters:
      - {id: step_id, type: str, required: true}
  - type: Shell
    module: flows.shell
    inherits: Base
    parameters:
      - {id: command, type: str}
`))
	require.NoError(t, err)

	shell, err := c.Lookup("Shell")
	require.NoError(t, err)
	assert.Equal(t, "step_id", shell.Identifier)
	assert.Equal(t, []string{"command", "step_id"}, shell.ParamIDs())
}
