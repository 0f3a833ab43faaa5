package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/kubedo8/web-ui/cmd/util"
	"github.com/kubedo8/web-ui/internal/build"
)

const testSnapshot = `workspace:
  organizationId: org
  projectId: proj
organization:
  id: org
  code: ORG
project:
  id: proj
  code: PROJ
  organizationId: org
user:
  id: u1
  email: u1@example.com
collections:
- id: tasks
  name: Tasks
  attributes:
  - id: status
    name: Status
    constraint:
      type: Select
      config:
        options:
        - value: open
          displayValue: Open
        - value: done
          displayValue: Done
  permissions:
    users:
    - id: u1
      roles: [read]
- id: people
  name: People
  attributes:
  - id: name
    name: Name
  permissions:
    users:
    - id: u1
      roles: [read]
linkTypes:
- id: assignee
  name: Assignee
  collectionIds: [tasks, people]
documents:
- id: t1
  collectionId: tasks
  data: {status: open}
  creationDate: "2024-01-01T00:00:00Z"
- id: t2
  collectionId: tasks
  data: {status: done}
  creationDate: "2024-01-02T00:00:00Z"
- id: p1
  collectionId: people
  data: {name: Alice}
  creationDate: "2024-01-03T00:00:00Z"
linkInstances:
- id: l1
  linkTypeId: assignee
  documentIds: [t1, p1]
query:
  stems:
  - collectionId: tasks
`

const assigneeQuery = `{"stems": [{"collectionId": "tasks", "linkTypeIds": ["assignee"],
  "filters": [{"collectionId": "people", "attributeId": "name", "condition": "eq", "conditionValues": [{"value": "Alice"}]}]}]}`

const kanbanConfig = `version: "2"
stemsConfigs:
- stem:
    collectionId: tasks
  attribute:
    resourceIndex: 0
    attributeId: status
    resourceId: tasks
    resourceType: collection
columns:
- id: c1
  title: open
  width: 300
`

func execute(t *testing.T, command *cobra.Command, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(command)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func ids(result gjson.Result) []string {
	var out []string
	for _, item := range result.Array() {
		out = append(out, item.Get("id").String())
	}
	return out
}

func TestFilterCommand(t *testing.T) {
	util.PrepareTempConfigDir(t)
	snapshot := util.WriteTempFile(t, "snapshot.yaml", testSnapshot)

	t.Run("snapshot_query", func(t *testing.T) {
		out := execute(t, NewFilterCommand(), "filter", "--snapshot", snapshot)

		require.Equal(t, []string{"t1", "t2"}, ids(gjson.Get(out, "documents")))
		require.Equal(t, "Open", gjson.Get(out, "documents.0.values.status").String())
		require.Equal(t, "Done", gjson.Get(out, "documents.1.values.status").String())
	})

	t.Run("descending", func(t *testing.T) {
		out := execute(t, NewFilterCommand(), "filter", "--snapshot", snapshot, "--desc")

		require.Equal(t, []string{"t2", "t1"}, ids(gjson.Get(out, "documents")))
	})

	t.Run("query_file_with_chain_filter", func(t *testing.T) {
		query := util.WriteTempFile(t, "query.json", assigneeQuery)
		out := execute(t, NewFilterCommand(), "filter", "--snapshot", snapshot, "--query", query)

		require.Equal(t, []string{"t1"}, ids(gjson.Get(out, "documents")))
		require.Equal(t, []string{"p1"}, ids(gjson.Get(out, "linkedDocuments")))
		require.Equal(t, []string{"l1"}, ids(gjson.Get(out, "linkInstances")))
	})

	t.Run("unknown_view", func(t *testing.T) {
		rootCmd := NewRootCommand()
		rootCmd.AddCommand(NewFilterCommand())
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"filter", "--snapshot", snapshot, "--view", "missing"})
		require.ErrorContains(t, rootCmd.Execute(), "view 'missing' is not part of the snapshot")
	})
}

func TestReconcileKanbanCommand(t *testing.T) {
	util.PrepareTempConfigDir(t)
	snapshot := util.WriteTempFile(t, "snapshot.yaml", testSnapshot)
	persisted := util.WriteTempFile(t, "kanban.yaml", kanbanConfig)

	out := execute(t, NewReconcileKanbanCommand(), "reconcile-kanban", "--snapshot", snapshot, "--config", persisted)
	require.True(t, gjson.Get(out, "changed").Bool())
	require.Equal(t, "emitted", gjson.Get(out, "state").String())

	columns := gjson.Get(out, "config.columns").Array()
	require.Len(t, columns, 2)
	require.Equal(t, "c1", columns[0].Get("id").String())
	require.Equal(t, "open", columns[0].Get("title").String())
	require.Equal(t, "t1", columns[0].Get("resourcesOrder.0.id").String())
	require.Equal(t, "done", columns[1].Get("title").String())

	reconciled := util.WriteTempFile(t, "reconciled.json", gjson.Get(out, "config").Raw)
	out = execute(t, NewReconcileKanbanCommand(), "reconcile-kanban", "--snapshot", snapshot, "--config", reconciled)
	require.False(t, gjson.Get(out, "changed").Bool())
	require.Equal(t, "rebuilt", gjson.Get(out, "state").String())
}

func TestReadConfig(t *testing.T) {
	t.Run("defaults_without_config_file", func(t *testing.T) {
		util.PrepareTempConfigDir(t)
		command := NewFilterCommand()
		command.RunE = func(*cobra.Command, []string) error {
			cfg, err := ReadConfig()
			require.NoError(t, err)
			require.Equal(t, "info", cfg.Log.Level)
			require.True(t, cfg.PushChannel.Enabled)
			return nil
		}
		execute(t, command, "filter", "--snapshot", "unused")
	})

	t.Run("config_file_values_are_parsed", func(t *testing.T) {
		util.PrepareTempConfigFile(t, `log:
  level: none
cache:
  maxSelectors: 5
pushChannel:
  enabled: false
`)
		command := NewFilterCommand()
		command.RunE = func(*cobra.Command, []string) error {
			cfg, err := ReadConfig()
			require.NoError(t, err)
			require.Equal(t, "none", cfg.Log.Level)
			require.EqualValues(t, 5, cfg.Cache.MaxSelectors)
			require.False(t, cfg.PushChannel.Enabled)
			return nil
		}
		execute(t, command, "filter", "--snapshot", "unused")
	})

	t.Run("flags_override_config_file", func(t *testing.T) {
		util.PrepareTempConfigFile(t, "log:\n  level: none\n")
		command := NewFilterCommand()
		command.RunE = func(*cobra.Command, []string) error {
			require.Equal(t, "debug", viper.GetString("log.level"))
			return nil
		}
		execute(t, command, "filter", "--snapshot", "unused", "--log-level", "debug")
	})

	t.Run("invalid_config_is_rejected", func(t *testing.T) {
		util.PrepareTempConfigFile(t, "log:\n  format: xml\n")
		command := NewFilterCommand()
		command.RunE = func(*cobra.Command, []string) error {
			_, err := ReadConfig()
			return err
		}
		rootCmd := NewRootCommand()
		rootCmd.AddCommand(command)
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"filter", "--snapshot", "unused"})
		require.ErrorContains(t, rootCmd.Execute(), "'log.format'")
	})
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, NewVersionCommand(), "version")
	require.Contains(t, out, build.Version)
	require.Contains(t, out, build.Commit)
}
