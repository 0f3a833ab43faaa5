package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/pkg/config"
	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/filter"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/workspace"
)

const (
	snapshotFlag        = "snapshot"
	queryFlag           = "query"
	includeChildrenFlag = "include-children"
	descFlag            = "desc"
	viewFlag            = "view"
)

type entityOutput struct {
	ID         string            `json:"id"`
	ResourceID string            `json:"resourceId"`
	Values     map[string]string `json:"values,omitempty"`
}

type filterOutput struct {
	Documents       []entityOutput          `json:"documents"`
	LinkedDocuments []entityOutput          `json:"linkedDocuments,omitempty"`
	LinkInstances   []entityOutput          `json:"linkInstances"`
	IncompleteStems []filter.IncompleteStem `json:"incompleteStems,omitempty"`
}

// NewFilterCommand returns the command printing the documents and link instances of a query.
func NewFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter the documents and link instances of a snapshot by a query",
		Long: `Filter the documents and link instances of a snapshot by a query.

Only resources readable by the snapshot user are considered. The result is printed as JSON
with the formatted data values of every entity.`,
		RunE: runFilter,
		Args: cobra.NoArgs,
	}

	flags := cmd.Flags()
	flags.String(snapshotFlag, "", "the YAML or JSON file holding the workspace snapshot")
	flags.String(queryFlag, "", "the YAML or JSON file holding the query; the snapshot query is used when empty")
	flags.Bool(includeChildrenFlag, false, "include the descendants of matching documents")
	flags.Bool(descFlag, false, "sort the documents in descending order")
	flags.String(viewFlag, "", "the id of a snapshot view whose permissions are applied")
	_ = cmd.MarkFlagRequired(snapshotFlag)

	addConfigFlags(flags)
	cmd.PreRun = bindConfigFlagsFunc(flags)

	return cmd
}

func runFilter(cmd *cobra.Command, _ []string) error {
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
	queryPath, _ := flags.GetString(queryFlag)
	viewID, _ := flags.GetString(viewFlag)
	opts := workspace.SelectOptions{}
	opts.IncludeChildren, _ = flags.GetBool(includeChildrenFlag)
	opts.Desc, _ = flags.GetBool(descFlag)

	snapshot, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	q, err := snapshot.query(queryPath)
	if err != nil {
		return err
	}
	if viewID != "" {
		view, ok := findView(snapshot.Views, viewID)
		if !ok {
			return fmt.Errorf("view '%s' is not part of the snapshot", viewID)
		}
		opts.View = view
	}

	selectors, err := newSelectors(snapshot, cfg, log)
	if err != nil {
		return err
	}
	defer selectors.Close()

	result := selectors.SelectDocumentsAndLinks(cmd.Context(), q, opts)
	log.Debug("query filtered",
		zap.Int("documents", len(result.Documents)),
		zap.Int("linked_documents", len(result.LinkedDocuments)),
		zap.Int("link_instances", len(result.LinkInstances)))

	return writeJSON(cmd.OutOrStdout(), newFilterOutput(result))
}

func newSelectors(snapshot *snapshotFile, cfg *config.Config, log logger.Logger) (*workspace.Selectors, error) {
	cache := datacache.NewCache(
		datacache.WithLogger(log),
		datacache.WithMaxDocuments(cfg.Cache.MaxDocuments),
		datacache.WithMaxLinkInstances(cfg.Cache.MaxLinkInstances),
		datacache.WithTTL(cfg.Cache.TTL),
	)
	selectors, err := workspace.NewSelectors(snapshot.newStore(cfg, log),
		workspace.WithDataCache(cache),
		workspace.WithFilterEngine(filter.NewEngine(filter.WithLogger(log))),
		workspace.WithMaxSelectors(cfg.Cache.MaxSelectors),
		workspace.WithSelectorsLogger(log),
	)
	if err != nil {
		cache.Stop()
		return nil, err
	}
	return selectors, nil
}

func findView(views []model.View, id string) (*model.View, bool) {
	for i := range views {
		if views[i].ID == id {
			return &views[i], true
		}
	}
	return nil, false
}

func formatValues(values model.DataValues) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for attributeID, value := range values {
		if value == nil || value.IsEmpty() {
			continue
		}
		out[attributeID] = value.Format()
	}
	return out
}

func newFilterOutput(result filter.Result) filterOutput {
	out := filterOutput{
		Documents:       make([]entityOutput, 0, len(result.Documents)),
		LinkInstances:   make([]entityOutput, 0, len(result.LinkInstances)),
		IncompleteStems: result.IncompleteStems,
	}
	for _, doc := range result.Documents {
		out.Documents = append(out.Documents, entityOutput{ID: doc.ID, ResourceID: doc.CollectionID, Values: formatValues(doc.DataValues)})
	}
	for _, doc := range result.LinkedDocuments {
		out.LinkedDocuments = append(out.LinkedDocuments, entityOutput{ID: doc.ID, ResourceID: doc.CollectionID, Values: formatValues(doc.DataValues)})
	}
	for _, li := range result.LinkInstances {
		out.LinkInstances = append(out.LinkInstances, entityOutput{ID: li.ID, ResourceID: li.LinkTypeID, Values: formatValues(li.DataValues)})
	}
	sort.Slice(out.LinkInstances, func(i, j int) bool { return out.LinkInstances[i].ID < out.LinkInstances[j].ID })
	return out
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
