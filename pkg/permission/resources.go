package permission

import (
	"slices"

	"github.com/kubedo8/web-ui/pkg/model"
)

type computeOptions struct {
	view              *model.View
	viewCollectionIDs []string
	viewLinkTypeIDs   []string
}

// ComputeOption customizes ComputeResourcesPermissions.
type ComputeOption func(*computeOptions)

// WithView adds the roles granted through view for the resources in its query scope.
func WithView(view *model.View, collectionIDs, linkTypeIDs []string) ComputeOption {
	return func(o *computeOptions) {
		o.view = view
		o.viewCollectionIDs = collectionIDs
		o.viewLinkTypeIDs = linkTypeIDs
	}
}

// ComputeResourcesPermissions builds the permission map used by the filter
// engine. A link type additionally receives every capability held on both of
// the collections it connects.
func ComputeResourcesPermissions(
	user *model.User,
	organization *model.Organization,
	project *model.Project,
	collections []model.Collection,
	linkTypes []model.LinkType,
	teams []model.Team,
	opts ...ComputeOption,
) model.ResourcesPermissions {
	o := computeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	result := model.ResourcesPermissions{
		Collections: make(map[string]model.AllowedPermissions, len(collections)),
		LinkTypes:   make(map[string]model.AllowedPermissions, len(linkTypes)),
	}
	for i := range collections {
		collection := &collections[i]
		inScope := slices.Contains(o.viewCollectionIDs, collection.ID)
		result.Collections[collection.ID] = ResolveWithView(user, organization, project, collection, teams, o.view, inScope)
	}

	for i := range linkTypes {
		linkType := &linkTypes[i]
		inScope := slices.Contains(o.viewLinkTypeIDs, linkType.ID)
		own := ResolveWithView(user, organization, project, linkType, teams, o.view, inScope)

		first, ok1 := result.Collections[linkType.CollectionIDs[0]]
		second, ok2 := result.Collections[linkType.CollectionIDs[1]]
		if ok1 && ok2 {
			own = own.Union(first.Intersect(second))
		}
		result.LinkTypes[linkType.ID] = own
	}
	return result
}
