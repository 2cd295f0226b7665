package scheduler

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/compositor/internal/component"
	"github.com/specialistvlad/compositor/internal/metrics"
	"github.com/specialistvlad/compositor/internal/nodeid"
)

// DefaultScheduler owns the pending initialization batch of one document.
type DefaultScheduler struct {
	logger  *slog.Logger
	tasks   *Microtasks
	metrics *metrics.Collector

	pending  []*component.Instance
	queued   bool
	teardown map[*component.Instance]bool
}

// New returns a DefaultScheduler queueing its work on tasks. m may be nil.
func New(logger *slog.Logger, tasks *Microtasks, m *metrics.Collector) *DefaultScheduler {
	return &DefaultScheduler{
		logger:   logger,
		tasks:    tasks,
		metrics:  m,
		teardown: make(map[*component.Instance]bool),
	}
}

// Schedule queues inst for the next batch. Instances already scheduled,
// initialized or destroyed are ignored.
func (s *DefaultScheduler) Schedule(inst *component.Instance) {
	if !inst.Schedule() {
		return
	}
	s.pending = append(s.pending, inst)
	if !s.queued {
		s.queued = true
		s.tasks.QueueMicrotask(s.flush)
	}
}

// Disconnected handles inst leaving the tree. A scheduled instance is
// dropped from its batch; an initialized one is torn down at the next
// microtask unless it was reinserted by then.
func (s *DefaultScheduler) Disconnected(inst *component.Instance) {
	switch inst.State() {
	case component.Scheduled:
		inst.Unschedule()
		s.remove(inst)
	case component.Initialized:
		if s.teardown[inst] {
			return
		}
		s.teardown[inst] = true
		s.tasks.QueueMicrotask(func() {
			delete(s.teardown, inst)
			if inst.Target().IsConnected() {
				s.logger.Debug("Component reinserted; keeping state.", "tag", inst.Tag(), "instance", inst.ID().String())
				return
			}
			inst.Destroy()
		})
	}
}

// Pending returns the instances waiting for the next batch.
func (s *DefaultScheduler) Pending() []*component.Instance {
	out := make([]*component.Instance, len(s.pending))
	copy(out, s.pending)
	return out
}

func (s *DefaultScheduler) remove(inst *component.Instance) {
	for i, p := range s.pending {
		if p == inst {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

func (s *DefaultScheduler) flush() {
	s.queued = false
	batch := s.pending
	s.pending = nil

	live := batch[:0]
	for _, inst := range batch {
		if inst.State() != component.Scheduled {
			continue
		}
		if !inst.Host().IsConnected() {
			inst.Unschedule()
			continue
		}
		live = append(live, inst)
	}

	addrs := make(map[*component.Instance]*nodeid.Address, len(live))
	for _, inst := range live {
		addrs[inst] = inst.Host().Address()
	}
	sort.SliceStable(live, func(i, j int) bool {
		a, b := addrs[live[i]], addrs[live[j]]
		switch {
		case a.IsAncestorOf(b):
			return true
		case b.IsAncestorOf(a):
			return false
		}
		return nodeid.Compare(a, b) < 0
	})

	s.metrics.RecordBatch(len(live))
	s.logger.Debug("Initializing component batch.", "size", len(live), "roots", batchRoots(live, addrs))
	for _, inst := range live {
		if inst.State() != component.Scheduled {
			continue
		}
		if !inst.Host().IsConnected() {
			inst.Unschedule()
			continue
		}
		s.logger.Debug("Initializing component.", "tag", inst.Tag(), "address", addrs[inst].String(), "depth", addrs[inst].Depth())
		if err := s.initialize(inst); err != nil {
			s.logger.Warn("Skipping component that failed to initialize.", "tag", inst.Tag(), "instance", inst.ID().String(), "error", err)
		}
	}
}

// batchRoots counts the sorted instances not nested inside another instance
// of the same batch.
func batchRoots(sorted []*component.Instance, addrs map[*component.Instance]*nodeid.Address) int {
	roots := 0
	var last *nodeid.Address
	for _, inst := range sorted {
		addr := addrs[inst]
		if last != nil && last.IsAncestorOf(addr) {
			continue
		}
		roots++
		last = addr
	}
	return roots
}

func (s *DefaultScheduler) initialize(inst *component.Instance) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("initializing %s panicked: %v", inst.Tag(), p)
		}
	}()
	return inst.Initialize()
}
