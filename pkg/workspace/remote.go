package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/internal/featureflags"
	"github.com/kubedo8/web-ui/pkg/model"
)

const (
	actionCreate = "create"
	actionUpdate = "update"
	actionRemove = "remove"
)

// ErrPushChannelDisabled is returned for remote events while the push
// channel feature flag is off.
var ErrPushChannelDisabled = errors.New("push channel is disabled")

var remoteEventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workspace_remote_event_total_count",
	Help: "The total number of push channel events by entity and outcome.",
}, []string{"entity", "outcome"})

// ApplyRemoteEvent folds one push channel event into the store. name is
// "<Entity>:<action>", for example "Document:update", and payload is the
// envelope {"organizationId", "projectId", "data"}. Events of another
// workspace are ignored.
func (s *Store) ApplyRemoteEvent(name string, payload []byte) error {
	entity, action, _ := strings.Cut(name, ":")

	if !s.flags.Boolean(featureflags.FlagPushChannel, false, map[string]any{"projectId": s.workspace.ProjectID}) {
		remoteEventCounter.WithLabelValues(entity, "disabled").Inc()
		return ErrPushChannelDisabled
	}

	if !gjson.ValidBytes(payload) {
		remoteEventCounter.WithLabelValues(entity, "invalid").Inc()
		return fmt.Errorf("%w: %s: malformed payload", ErrInvalidEvent, name)
	}
	envelope := gjson.ParseBytes(payload)
	if !s.IsCurrentWorkspace(envelope.Get("organizationId").String(), envelope.Get("projectId").String()) {
		remoteEventCounter.WithLabelValues(entity, "ignored").Inc()
		s.logger.Debug("remote event of another workspace ignored", zap.String("event", name))
		return nil
	}
	data := envelope.Get("data")
	if !data.Exists() {
		remoteEventCounter.WithLabelValues(entity, "invalid").Inc()
		return fmt.Errorf("%w: %s: missing data", ErrInvalidEvent, name)
	}

	var err error
	switch entity {
	case "Document":
		err = s.applyRemoteDocument(action, data)
	case "LinkInstance":
		err = s.applyRemoteLinkInstance(action, data)
	case "Collection":
		err = s.applyRemoteCollection(action, data)
	case "LinkType":
		err = s.applyRemoteLinkType(action, data)
	case "View":
		err = s.applyRemoteView(action, data)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	if err != nil {
		remoteEventCounter.WithLabelValues(entity, "invalid").Inc()
		s.logger.Warn("remote event not applied", zap.String("event", name), zap.Error(err))
		return err
	}
	remoteEventCounter.WithLabelValues(entity, "applied").Inc()
	return nil
}

func decode[T any](data gjson.Result) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(data.Raw), &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return v, nil
}

func unknownAction(entity, action string) error {
	return fmt.Errorf("%w: %s:%s", ErrUnknownEvent, entity, action)
}

func (s *Store) applyRemoteDocument(action string, data gjson.Result) error {
	switch action {
	case actionCreate, actionUpdate:
		doc, err := decode[model.Document](data)
		if err != nil {
			return err
		}
		if action == actionCreate && doc.CorrelationID != "" {
			if _, pending := s.Document(doc.CorrelationID); pending {
				s.CreateDocumentSucceeded(doc.CorrelationID, doc)
				return nil
			}
		}
		s.UpdateDocumentSucceeded(doc)
	case actionRemove:
		s.RemoveDocument(data.Get("id").String())
	default:
		return unknownAction("Document", action)
	}
	return nil
}

func (s *Store) applyRemoteLinkInstance(action string, data gjson.Result) error {
	switch action {
	case actionCreate, actionUpdate:
		li, err := decode[model.LinkInstance](data)
		if err != nil {
			return err
		}
		if action == actionCreate && li.CorrelationID != "" {
			s.CreateLinkInstanceSucceeded(li.CorrelationID, li)
			return nil
		}
		s.UpdateLinkInstanceSucceeded(li)
	case actionRemove:
		s.RemoveLinkInstance(data.Get("id").String())
	default:
		return unknownAction("LinkInstance", action)
	}
	return nil
}

func (s *Store) applyRemoteCollection(action string, data gjson.Result) error {
	switch action {
	case actionCreate, actionUpdate:
		collection, err := decode[model.Collection](data)
		if err != nil {
			return err
		}
		s.UpsertCollection(collection)
	case actionRemove:
		s.DeleteCollection(data.Get("id").String())
	default:
		return unknownAction("Collection", action)
	}
	return nil
}

func (s *Store) applyRemoteLinkType(action string, data gjson.Result) error {
	switch action {
	case actionCreate, actionUpdate:
		linkType, err := decode[model.LinkType](data)
		if err != nil {
			return err
		}
		s.UpsertLinkType(linkType)
	case actionRemove:
		s.DeleteLinkType(data.Get("id").String())
	default:
		return unknownAction("LinkType", action)
	}
	return nil
}

func (s *Store) applyRemoteView(action string, data gjson.Result) error {
	switch action {
	case actionCreate, actionUpdate:
		view, err := decode[model.View](data)
		if err != nil {
			return err
		}
		s.UpsertView(view)
	case actionRemove:
		s.DeleteView(data.Get("id").String())
	default:
		return unknownAction("View", action)
	}
	return nil
}
