// Package txn implements LatticeDB's transaction controller and staged
// write interpreter.
//
// Writes are modeled as an explicit enum of staged operations (Append,
// Close, AppendAndClose) rather than captured closures, which preserves
// undo correctness and allows serialization/inspection. Each StagedOp
// is itself a small pure interpreter over a store.Store: Apply performs
// the mutation, Undo reverses exactly that mutation. Outside a
// transaction the executor calls Apply directly; inside one, the
// executor hands the op to the Controller, which defers Apply until
// COMMIT and calls Undo on ROLLBACK.
package txn

import (
	"github.com/pkg/errors"

	"github.com/latticedb/latticedb/internal/store"
)

// StagedOp is one reversible mutation against a store.Store.
type StagedOp interface {
	Apply(s *store.Store)
	Undo(s *store.Store)
}

// AppendOp appends one or more fresh versions to a table's log.
type AppendOp struct {
	Table    string
	Versions []store.RowVersion

	applied  bool
	startIdx int
}

// Apply implements StagedOp.
func (a *AppendOp) Apply(s *store.Store) {
	if a.applied {
		return
	}
	log := s.Table(a.Table)
	a.startIdx = len(log.Versions)
	for _, v := range a.Versions {
		log.Append(v)
	}
	a.applied = true
}

// Undo implements StagedOp: truncates back to the pre-append length.
func (a *AppendOp) Undo(s *store.Store) {
	if !a.applied {
		return
	}
	log := s.Table(a.Table)
	log.Versions = log.Versions[:a.startIdx]
	a.applied = false
}

// CloseOp sets tx_to = TxN on the versions at Indices.
type CloseOp struct {
	Table   string
	Indices []int
	TxN     int64

	applied  bool
	prevTxTo []int64
}

// Apply implements StagedOp.
func (c *CloseOp) Apply(s *store.Store) {
	if c.applied {
		return
	}
	log := s.Table(c.Table)
	c.prevTxTo = make([]int64, len(c.Indices))
	for i, idx := range c.Indices {
		c.prevTxTo[i] = log.Versions[idx].TxTo
		log.Close(idx, c.TxN)
	}
	c.applied = true
}

// Undo implements StagedOp: restores each closed version's prior tx_to.
func (c *CloseOp) Undo(s *store.Store) {
	if !c.applied {
		return
	}
	log := s.Table(c.Table)
	for i, idx := range c.Indices {
		log.Versions[idx].TxTo = c.prevTxTo[i]
	}
	c.applied = false
}

// AppendAndCloseOp composes a close of the prior current version(s) with
// the append of their replacement(s) — the common INSERT-ON-CONFLICT and
// UPDATE shape. Close runs before Append so Close.Indices reference
// pre-append log positions; Undo reverses in the opposite order.
type AppendAndCloseOp struct {
	Close  *CloseOp
	Append *AppendOp
}

// NewAppendAndClose builds a combined op from its two halves.
func NewAppendAndClose(table string, closeIndices []int, txN int64, versions []store.RowVersion) *AppendAndCloseOp {
	return &AppendAndCloseOp{
		Close:  &CloseOp{Table: table, Indices: closeIndices, TxN: txN},
		Append: &AppendOp{Table: table, Versions: versions},
	}
}

// Apply implements StagedOp.
func (ac *AppendAndCloseOp) Apply(s *store.Store) {
	ac.Close.Apply(s)
	ac.Append.Apply(s)
}

// Undo implements StagedOp.
func (ac *AppendAndCloseOp) Undo(s *store.Store) {
	ac.Append.Undo(s)
	ac.Close.Undo(s)
}

// State is the transaction controller's current mode.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "IDLE"
}

// Controller implements the BEGIN/COMMIT/ROLLBACK state machine.
// It holds no reference to a particular store.Store — one is passed to
// Commit/Rollback — so a Controller is reusable across engines in tests.
type Controller struct {
	state  State
	staged []StagedOp
}

// New returns a Controller in the Idle state.
func New() *Controller {
	return &Controller{state: Idle}
}

// State reports the current state.
func (c *Controller) State() State { return c.state }

// InTransaction reports whether a BEGIN is currently open.
func (c *Controller) InTransaction() bool { return c.state == Active }

// Begin transitions Idle -> Active, clearing any staged list. BEGIN
// while already Active is a transaction error.
func (c *Controller) Begin() error {
	if c.state == Active {
		return errors.New("transaction already in progress")
	}
	c.state = Active
	c.staged = nil
	return nil
}

// Stage records op to be applied at COMMIT (or undone at ROLLBACK). The
// caller must have already verified InTransaction().
func (c *Controller) Stage(op StagedOp) {
	c.staged = append(c.staged, op)
}

// Commit applies every staged op in insertion order and returns to Idle.
// COMMIT while Idle is a transaction error.
func (c *Controller) Commit(s *store.Store) error {
	if c.state != Active {
		return errors.New("no transaction in progress")
	}
	for _, op := range c.staged {
		op.Apply(s)
	}
	c.staged = nil
	c.state = Idle
	return nil
}

// Rollback undoes every staged op in reverse insertion order and returns
// to Idle. ROLLBACK while Idle is a transaction error.
func (c *Controller) Rollback(s *store.Store) error {
	if c.state != Active {
		return errors.New("no transaction in progress")
	}
	for i := len(c.staged) - 1; i >= 0; i-- {
		c.staged[i].Undo(s)
	}
	c.staged = nil
	c.state = Idle
	return nil
}
