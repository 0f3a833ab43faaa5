package cmd

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/perspective"
	"github.com/kubedo8/web-ui/pkg/workspace"
)

const configFlag = "config"

type reconcileOutput struct {
	Config  perspective.KanbanConfig `json:"config"`
	State   string                   `json:"state"`
	Changed bool                     `json:"changed"`
}

// NewReconcileKanbanCommand returns the command reconciling a persisted kanban config with a snapshot.
func NewReconcileKanbanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile-kanban",
		Short: "Reconcile a persisted kanban config with a snapshot",
		Long: `Reconcile a persisted kanban config with a snapshot.

The stem configs are paired with the stems of the query, stale attribute references are dropped
and the columns are rebuilt from the readable documents. The resulting config is printed together
with whether it differs from the persisted one.`,
		RunE: runReconcileKanban,
		Args: cobra.NoArgs,
	}

	flags := cmd.Flags()
	flags.String(snapshotFlag, "", "the YAML or JSON file holding the workspace snapshot")
	flags.String(configFlag, "", "the YAML or JSON file holding the persisted kanban config")
	flags.String(queryFlag, "", "the YAML or JSON file holding the query; the snapshot query is used when empty")
	_ = cmd.MarkFlagRequired(snapshotFlag)
	_ = cmd.MarkFlagRequired(configFlag)

	addConfigFlags(flags)
	cmd.PreRun = bindConfigFlagsFunc(flags)

	return cmd
}

func runReconcileKanban(cmd *cobra.Command, _ []string) error {
	cfg, err := ReadConfig()
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	snapshotPath, _ := flags.GetString(snapshotFlag)
	configPath, _ := flags.GetString(configFlag)
	queryPath, _ := flags.GetString(queryFlag)

	snapshot, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	q, err := snapshot.query(queryPath)
	if err != nil {
		return err
	}
	persisted := &perspective.KanbanConfig{}
	if err := readFile(configPath, persisted); err != nil {
		return err
	}

	selectors, err := newSelectors(snapshot, cfg, log)
	if err != nil {
		return err
	}
	defer selectors.Close()

	ctx := cmd.Context()
	data := selectors.SelectDocumentsAndLinks(ctx, q, workspace.SelectOptions{})

	// printing is the only emission, so a changed config always ends up emitted
	reconciler := perspective.NewKanbanReconciler(
		perspective.WithReconcilerLogger[perspective.KanbanConfig](log),
		perspective.WithEmitter[perspective.KanbanConfig](func(context.Context, perspective.KanbanConfig) error {
			return nil
		}),
	)
	result, err := reconciler.Run(ctx, persisted, perspective.Snapshot{
		Query:         q,
		Collections:   selectors.SelectCollectionsByQuery(q),
		LinkTypes:     selectors.SelectLinkTypesInQuery(q),
		Documents:     slices.Concat(data.Documents, data.LinkedDocuments),
		LinkInstances: data.LinkInstances,
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), reconcileOutput{
		Config:  result.Config,
		State:   result.State.String(),
		Changed: result.Changed,
	})
}
