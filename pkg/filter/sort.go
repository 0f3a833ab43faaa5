package filter

import (
	"slices"

	"github.com/kubedo8/web-ui/pkg/model"
)

// SortDocumentsByCreationDate sorts in place by creation date, oldest first
// unless desc is set. Documents created at the same instant keep their order.
func SortDocumentsByCreationDate(documents []model.Document, desc bool) {
	slices.SortStableFunc(documents, func(a, b model.Document) int {
		if desc {
			return b.CreationDate.Compare(a.CreationDate)
		}
		return a.CreationDate.Compare(b.CreationDate)
	})
}

// SortLinkInstances sorts in place by creation date, oldest first.
func SortLinkInstances(linkInstances []model.LinkInstance) {
	slices.SortStableFunc(linkInstances, func(a, b model.LinkInstance) int {
		return a.CreationDate.Compare(b.CreationDate)
	})
}

// IsLinkInstanceValid reports whether both documents of li exist and belong
// to the collections of linkType, in the same order.
func IsLinkInstanceValid(li *model.LinkInstance, linkType *model.LinkType, documents map[string]*model.Document) bool {
	if li == nil || linkType == nil || li.LinkTypeID != linkType.ID {
		return false
	}
	first, ok1 := documents[li.DocumentIDs[0]]
	second, ok2 := documents[li.DocumentIDs[1]]
	if !ok1 || !ok2 {
		return false
	}
	return first.CollectionID == linkType.CollectionIDs[0] && second.CollectionID == linkType.CollectionIDs[1]
}
