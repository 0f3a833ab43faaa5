//go:generate mockgen -source fetcher.go -destination ../../internal/mocks/mock_fetcher.go -package mocks Fetcher

package loader

import (
	"context"

	"github.com/kubedo8/web-ui/pkg/model"
)

// Fetcher is the remote collaborator holding the authoritative data.
type Fetcher interface {
	FetchDocuments(ctx context.Context, q model.DataQuery) ([]model.Document, error)
	FetchLinkInstances(ctx context.Context, q model.Query) ([]model.LinkInstance, error)

	CreateDocument(ctx context.Context, doc model.Document) (model.Document, error)
	PatchDocumentData(ctx context.Context, collectionID, documentID string, patch map[string]any) (model.Document, error)
	UpdateDocumentData(ctx context.Context, collectionID, documentID string, data map[string]any) (model.Document, error)

	CreateLinkInstance(ctx context.Context, li model.LinkInstance) (model.LinkInstance, error)
	PatchLinkInstanceData(ctx context.Context, linkTypeID, linkInstanceID string, patch map[string]any) (model.LinkInstance, error)
	UpdateLinkInstanceData(ctx context.Context, linkTypeID, linkInstanceID string, data map[string]any) (model.LinkInstance, error)
}
