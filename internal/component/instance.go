package component

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/setup"
	"github.com/specialistvlad/compositor/internal/slot"
	"github.com/specialistvlad/compositor/internal/strategy"
)

// State is the lifecycle position of an Instance.
type State int

const (
	Unscheduled State = iota
	Scheduled
	Initializing
	Initialized
	Destroyed
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	case Destroyed:
		return "destroyed"
	default:
		return "unscheduled"
	}
}

// ErrNotScheduled is returned by Initialize for an instance that is not
// waiting in a batch.
var ErrNotScheduled = errors.New("instance is not scheduled")

// Instance is one occurrence of a registered tag.
type Instance struct {
	id     uuid.UUID
	f      *Factory
	def    *registry.Definition
	host   *dom.Node
	logger *slog.Logger

	state    State
	strategy strategy.Strategy
	content  *strategy.Result
	setup    *setup.Result
	outer    reactive.Stack
	ctx      reactive.Stack
	cancel   func()
	err      error
	callers  []*dom.Node
}

// ID identifies the instance in logs.
func (i *Instance) ID() uuid.UUID { return i.id }

// Tag is the component's tag name.
func (i *Instance) Tag() string { return i.def.Tag }

// Definition is the definition the instance was created from.
func (i *Instance) Definition() *registry.Definition { return i.def }

// Host is the element the instance was created for. For unwrapped instances
// it is detached once initialized.
func (i *Instance) Host() *dom.Node { return i.host }

// Target is the element that represents the instance in the tree: the
// replacement element for unwrapped instances, the host otherwise.
func (i *Instance) Target() *dom.Node {
	if i.strategy != nil {
		return i.strategy.Target()
	}
	return i.host
}

// State returns the current lifecycle state.
func (i *Instance) State() State { return i.state }

// Initialized reports whether initialization completed.
func (i *Instance) Initialized() bool { return i.state == Initialized }

// Destroyed reports whether the instance was torn down or failed to
// initialize.
func (i *Instance) Destroyed() bool { return i.state == Destroyed }

// Err is the initialization failure, if any.
func (i *Instance) Err() error { return i.err }

// Unwrapped reports whether the host was replaced in the tree.
func (i *Instance) Unwrapped() bool {
	return i.strategy != nil && i.strategy.Mode() == registry.Unwrap && i.Target() != i.host
}

// StateObject exposes the reactive state returned by setup.
func (i *Instance) StateObject() *reactive.Object {
	if i.setup == nil {
		return nil
	}
	return i.setup.State
}

// Context is the full evaluation context of the instance's own content.
func (i *Instance) Context() reactive.Stack { return i.ctx }

// Outer is the context of the host's position, captured at initialization.
func (i *Instance) Outer() reactive.Stack { return i.outer }

// ContextFor returns the context content authored for this instance
// evaluates against: the full context for the scope target, and the host's
// outer context for caller content placed in the tag.
func (i *Instance) ContextFor(n *dom.Node) reactive.Stack {
	if i.content != nil && n == i.content.ScopeTarget {
		return i.ctx
	}
	return i.outer
}

// Schedule moves an unscheduled instance into a batch. It reports whether
// the state changed.
func (i *Instance) Schedule() bool {
	if i.state != Unscheduled {
		return false
	}
	i.state = Scheduled
	return true
}

// Unschedule drops the instance from its batch.
func (i *Instance) Unschedule() bool {
	if i.state != Scheduled {
		return false
	}
	i.state = Unscheduled
	return true
}

// Initialize renders the instance. A failure leaves the instance destroyed
// with the error recorded; the document is left as far as it got.
func (i *Instance) Initialize() (err error) {
	if i.state != Scheduled {
		return fmt.Errorf("%s: %w (state %s)", i.Tag(), ErrNotScheduled, i.state)
	}
	i.state = Initializing
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("initializing %s panicked: %v", i.Tag(), p)
		}
		if err != nil {
			i.err = err
			i.state = Destroyed
			i.release()
			i.logger.Error("Component initialization failed.", "error", err)
		}
	}()

	f := i.f
	i.outer = f.scopes.ContextOf(i.host)
	callers := i.host.Children()
	i.callers = callers

	i.strategy = strategy.New(i.logger, i.host, i.def, f.sheets())
	if i.content, err = i.strategy.Init(); err != nil {
		return err
	}
	if err = i.strategy.Mount(true); err != nil {
		return fmt.Errorf("failed to mount %s: %w", i.Tag(), err)
	}
	target := i.strategy.Target()
	if target != i.host {
		f.track(target, i)
	}

	i.setup, err = f.runner.Run(i.def.Program, setup.Env{
		Tag:    i.Tag(),
		Host:   i.host,
		Root:   i.content.ContentRoot,
		Target: target,
		Outer:  i.outer,
		Magics: f.magics,
	})
	if err != nil {
		return err
	}
	i.ctx = i.outer.Push(i.setup.State)

	if _, err = slot.Mark(f.scopes, i, callers, f.stop, false); err != nil {
		return err
	}
	marked := slot.Collect(callers, f.stop)
	if _, err = slot.Distribute(i.content.Slots, callers); err != nil {
		return fmt.Errorf("failed to distribute slots of %s: %w", i.Tag(), err)
	}
	if err = i.strategy.AppendContent(); err != nil {
		return fmt.Errorf("failed to append content of %s: %w", i.Tag(), err)
	}

	f.scopes.Attach(i.content.ScopeTarget, i.ctx)
	if i.Unwrapped() {
		if err = f.scopes.Mark(target, i, true); err != nil {
			return err
		}
	}
	if n := f.scopes.Rescope(marked, f.binder); n > 0 {
		i.logger.Debug("Caller content rescoped.", "nodes", n)
	}

	f.binder.InitTree(i.content.ContentRoot)
	if i.strategy.Mode() == registry.Isolated {
		f.binder.InitTree(i.host)
	}

	i.cancel = i.strategy.Cleanup(func() { f.removed(i) })
	i.state = Initialized
	f.metrics.RecordTransition(i.Tag(), "initialized")
	i.logger.Debug("Component initialized.", "mode", i.def.Mode.String())

	if hook := i.setup.Init; hook != nil {
		if _, herr := f.binder.Runtime().Call(hook, i.setup.State.Value()); herr != nil {
			i.logger.Warn("Component init hook failed.", "error", herr)
		}
	}
	return nil
}

// Destroy runs the destroy hook and releases everything the instance holds.
// It is a no-op for instances that never initialized or are already gone.
func (i *Instance) Destroy() {
	if i.state != Initialized {
		i.state = Destroyed
		return
	}
	if hook := i.setup.Destroy; hook != nil {
		if _, err := i.f.binder.Runtime().Call(hook, i.setup.State.Value()); err != nil {
			i.logger.Warn("Component destroy hook failed.", "error", err)
		}
	}
	i.state = Destroyed
	i.release()
	if !i.Unwrapped() && !i.host.IsConnected() {
		i.restoreHost()
	}
	i.f.metrics.RecordTransition(i.Tag(), "destroyed")
	i.logger.Debug("Component destroyed.")
}

// restoreHost puts the caller content back into the detached host and
// forgets the instance, so inserting the host again starts a fresh one.
func (i *Instance) restoreHost() {
	for _, c := range i.callers {
		c.Remove()
		i.f.binder.UnbindTree(c)
	}
	i.host.RemoveChildren()
	if shadow := i.host.Shadow(); shadow != nil {
		shadow.RemoveChildren()
	}
	for _, c := range i.callers {
		_ = i.host.AppendChild(c)
	}
	i.f.forget(i)
}

func (i *Instance) release() {
	f := i.f
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	if i.setup != nil {
		i.setup.Stop()
	}
	if i.content != nil {
		f.binder.UnbindTree(i.content.ContentRoot)
		f.scopes.Detach(i.content.ScopeTarget)
	}
	f.scopes.Marks().ForgetOwner(i)
	if i.strategy != nil && i.Target() != i.host {
		f.untrack(i.Target())
	}
}
