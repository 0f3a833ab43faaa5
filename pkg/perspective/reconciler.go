package perspective

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
)

var tracer = otel.Tracer("pkg/perspective")

// ErrEmit is returned when a changed config could not be persisted.
var ErrEmit = errors.New("failed to emit perspective config")

// State is the stage a configuration reached during one Run.
type State int

const (
	StateUnvalidated State = iota
	StateReconciled
	StateRebuilt
	StateEmitted
)

func (s State) String() string {
	switch s {
	case StateUnvalidated:
		return "unvalidated"
	case StateReconciled:
		return "reconciled"
	case StateRebuilt:
		return "rebuilt"
	case StateEmitted:
		return "emitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is the query and data a configuration is reconciled against.
type Snapshot struct {
	Query         *model.Query
	Collections   []model.Collection
	LinkTypes     []model.LinkType
	Documents     []model.Document
	LinkInstances []model.LinkInstance
}

// Steps are the perspective specific parts of a Reconciler. Rebuild may be nil.
type Steps[C any] struct {
	Reconcile func(persisted *C, snapshot Snapshot) C
	Rebuild   func(config C, snapshot Snapshot) C
	Changed   func(persisted, current *C) bool
}

// Emitter persists a changed configuration.
type Emitter[C any] func(ctx context.Context, config C) error

type Result[C any] struct {
	Config  C
	State   State
	Changed bool
}

// Reconciler drives one perspective configuration from its persisted form to
// the form matching the current snapshot and hands it to the emitter only
// when it changed.
type Reconciler[C any] struct {
	name   string
	steps  Steps[C]
	emit   Emitter[C]
	logger logger.Logger
}

type ReconcilerOption[C any] func(*Reconciler[C])

func WithEmitter[C any](emit Emitter[C]) ReconcilerOption[C] {
	return func(r *Reconciler[C]) {
		r.emit = emit
	}
}

func WithReconcilerLogger[C any](l logger.Logger) ReconcilerOption[C] {
	return func(r *Reconciler[C]) {
		r.logger = l
	}
}

func NewReconciler[C any](name string, steps Steps[C], opts ...ReconcilerOption[C]) *Reconciler[C] {
	r := &Reconciler[C]{
		name:   name,
		steps:  steps,
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewKanbanReconciler(opts ...ReconcilerOption[KanbanConfig]) *Reconciler[KanbanConfig] {
	return NewReconciler("kanban", Steps[KanbanConfig]{
		Reconcile: func(persisted *KanbanConfig, s Snapshot) KanbanConfig {
			return ReconcileKanban(persisted, s.Query, s.Collections, s.LinkTypes)
		},
		Rebuild: func(config KanbanConfig, s Snapshot) KanbanConfig {
			return RebuildKanbanColumns(config, s.Documents, s.LinkInstances, s.Collections, s.LinkTypes)
		},
		Changed: IsKanbanConfigChanged,
	}, opts...)
}

func NewWorkflowReconciler(opts ...ReconcilerOption[WorkflowConfig]) *Reconciler[WorkflowConfig] {
	return NewReconciler("workflow", Steps[WorkflowConfig]{
		Reconcile: func(persisted *WorkflowConfig, s Snapshot) WorkflowConfig {
			return ReconcileWorkflow(persisted, s.Query, s.Collections, s.LinkTypes)
		},
		Changed: IsWorkflowConfigChanged,
	}, opts...)
}

// Run reconciles persisted against snapshot. The returned state is
// StateEmitted only if the config changed and the emitter accepted it.
func (r *Reconciler[C]) Run(ctx context.Context, persisted *C, snapshot Snapshot) (Result[C], error) {
	ctx, span := tracer.Start(ctx, "reconcile."+r.name)
	defer span.End()

	result := Result[C]{Config: r.steps.Reconcile(persisted, snapshot), State: StateReconciled}
	if r.steps.Rebuild != nil {
		result.Config = r.steps.Rebuild(result.Config, snapshot)
	}
	result.State = StateRebuilt

	result.Changed = r.steps.Changed(persisted, &result.Config)
	span.SetAttributes(attribute.Bool("changed", result.Changed))
	if !result.Changed || r.emit == nil {
		return result, nil
	}

	if err := r.emit(ctx, result.Config); err != nil {
		r.logger.WarnWithContext(ctx, "perspective config was not emitted", zap.String("perspective", r.name), zap.Error(err))
		return result, fmt.Errorf("%w: %s: %w", ErrEmit, r.name, err)
	}
	result.State = StateEmitted
	return result, nil
}
