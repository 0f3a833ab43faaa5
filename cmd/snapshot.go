package cmd

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/kubedo8/web-ui/internal/featureflags"
	"github.com/kubedo8/web-ui/pkg/config"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/workspace"
)

// snapshotFile is the on-disk form of a workspace snapshot.
type snapshotFile struct {
	Workspace     model.Workspace      `json:"workspace"`
	Organization  *model.Organization  `json:"organization,omitempty"`
	Project       *model.Project       `json:"project,omitempty"`
	User          *model.User          `json:"user,omitempty"`
	Users         []model.User         `json:"users,omitempty"`
	Teams         []model.Team         `json:"teams,omitempty"`
	Collections   []model.Collection   `json:"collections,omitempty"`
	LinkTypes     []model.LinkType     `json:"linkTypes,omitempty"`
	Documents     []model.Document     `json:"documents,omitempty"`
	LinkInstances []model.LinkInstance `json:"linkInstances,omitempty"`
	Views         []model.View         `json:"views,omitempty"`
	// Query is used when a command gets no query of its own.
	Query *model.Query `json:"query,omitempty"`
	// PublicView marks a workspace opened through a public view.
	PublicView bool `json:"publicView,omitempty"`
}

// readFile decodes a YAML or JSON file into out.
func readFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode '%s': %w", path, err)
	}
	return nil
}

func readSnapshot(path string) (*snapshotFile, error) {
	snapshot := &snapshotFile{}
	if err := readFile(path, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// query returns the query stored in queryPath, the snapshot query otherwise.
func (f *snapshotFile) query(queryPath string) (*model.Query, error) {
	if queryPath == "" {
		if f.Query == nil {
			return &model.Query{}, nil
		}
		return f.Query, nil
	}
	q := &model.Query{}
	if err := readFile(queryPath, q); err != nil {
		return nil, err
	}
	return q, nil
}

// newStore loads the snapshot into a workspace store.
func (f *snapshotFile) newStore(cfg *config.Config, log logger.Logger) *workspace.Store {
	store := workspace.NewStore(f.Workspace,
		workspace.WithLogger(log),
		workspace.WithFeatureFlags(featureflags.NewDefaultClient(cfg.Flags())),
		workspace.WithPublicView(f.PublicView),
	)
	store.SetContext(f.Organization, f.Project, f.User, f.Teams)
	store.SetUsers(f.Users)
	for _, collection := range f.Collections {
		store.UpsertCollection(collection)
	}
	for _, linkType := range f.LinkTypes {
		store.UpsertLinkType(linkType)
	}
	for _, view := range f.Views {
		store.UpsertView(view)
	}
	store.ApplyFetch(model.DataQuery{}, f.Documents, f.LinkInstances)
	return store
}
