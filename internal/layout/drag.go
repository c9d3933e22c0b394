package layout

import (
	"fmt"
	"math"

	"github.com/evanschultz/dockyard/internal/domain"
)

// DragState reports whether a drag is in flight.
type DragState int

// DragIdle and DragDragging are the drag controller states.
const (
	DragIdle DragState = iota
	DragDragging
)

// String returns a human-readable state name.
func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

// DropTarget is a column and insertion index.
type DropTarget struct {
	Column int
	Index  int
}

// DragSession is the transient state of one drag gesture.
type DragSession struct {
	PanelID      domain.PanelID
	Source       DropTarget
	Origin       domain.Point
	Pointer      domain.Point
	Candidate    DropTarget
	HasCandidate bool

	armed bool
}

// DragResult describes a finished drag.
type DragResult struct {
	PanelID domain.PanelID
	From    DropTarget
	To      DropTarget
	Moved   bool
}

// DragOptions configures drop resolution.
type DragOptions struct {
	TieBreak TieBreak
	// Threshold is the Manhattan distance the pointer must travel before targets resolve.
	Threshold float64
	// OnCandidate runs whenever the candidate target changes.
	OnCandidate func(DragSession)
}

// DragController turns press, motion, and release into a single committed move.
// Nothing changes in the store until EndDrag.
type DragController struct {
	store   *Store
	frame   func() Frame
	opts    DragOptions
	session *DragSession
}

// NewDragController constructs a controller over store. frame supplies current geometry.
func NewDragController(store *Store, frame func() Frame, opts DragOptions) *DragController {
	if opts.TieBreak == "" {
		opts.TieBreak = TieLater
	}
	return &DragController{store: store, frame: frame, opts: opts}
}

// State returns the current drag state.
func (d *DragController) State() DragState {
	if d.session == nil {
		return DragIdle
	}
	return DragDragging
}

// Session returns a copy of the in-flight session.
func (d *DragController) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}

// BeginDrag starts a session for id. It reports false when a drag is already running or id is not placed.
func (d *DragController) BeginDrag(id domain.PanelID, pos domain.Point) bool {
	if d.session != nil {
		return false
	}
	col, idx, ok := d.store.Locate(id)
	if !ok {
		return false
	}
	src := DropTarget{Column: col, Index: idx}
	d.session = &DragSession{
		PanelID:      id,
		Source:       src,
		Origin:       pos,
		Pointer:      pos,
		Candidate:    src,
		HasCandidate: true,
		armed:        d.opts.Threshold <= 0,
	}
	return true
}

// PointerMoved updates the candidate target and reports whether it changed.
func (d *DragController) PointerMoved(pos domain.Point) bool {
	s := d.session
	if s == nil {
		return false
	}
	s.Pointer = pos
	if !s.armed && domain.ManhattanDistance(pos, s.Origin) >= d.opts.Threshold {
		s.armed = true
	}
	next, ok := s.Source, true
	if s.armed {
		var f Frame
		if d.frame != nil {
			f = d.frame()
		}
		next, ok = ResolveDropTarget(f, pos, s.PanelID, d.opts.TieBreak)
	}
	if ok == s.HasCandidate && next == s.Candidate {
		return false
	}
	s.Candidate, s.HasCandidate = next, ok
	if d.opts.OnCandidate != nil {
		d.opts.OnCandidate(*s)
	}
	return true
}

// EndDrag commits the candidate. Without a session it is a no-op.
func (d *DragController) EndDrag() (DragResult, error) {
	if d.session == nil {
		return DragResult{}, nil
	}
	s := *d.session
	d.session = nil
	res := DragResult{PanelID: s.PanelID, From: s.Source, To: s.Source}
	if !s.HasCandidate || s.Candidate == s.Source {
		return res, nil
	}
	res.To = s.Candidate
	if err := d.store.MovePanel(s.PanelID, s.Candidate.Column, s.Candidate.Index); err != nil {
		return res, fmt.Errorf("commit drag of %q: %w", s.PanelID, err)
	}
	res.Moved = true
	return res, nil
}

// Cancel discards the session and reports whether one existed.
func (d *DragController) Cancel() bool {
	had := d.session != nil
	d.session = nil
	return had
}

// ResolveDropTarget maps a pointer position to a column and insertion index.
// The column is the one holding pos.X, else the nearest by horizontal distance.
// The index counts panels (excluding dragged) whose midpoint lies above pos.Y.
func ResolveDropTarget(f Frame, pos domain.Point, dragged domain.PanelID, tie TieBreak) (DropTarget, bool) {
	if len(f.Columns) == 0 {
		return DropTarget{}, false
	}
	best, bestDist := 0, math.Inf(1)
	for idx, c := range f.Columns {
		dist := c.Bounds.DistanceX(pos.X)
		if dist < bestDist {
			best, bestDist = idx, dist
		}
		if dist == 0 {
			break
		}
	}
	col := f.Columns[best]
	insert := 0
	for _, pf := range col.Panels {
		if pf.ID == dragged {
			continue
		}
		mid := pf.Bounds.CenterY()
		if pos.Y > mid || (pos.Y == mid && tie != TieEarlier) {
			insert++
		}
	}
	return DropTarget{Column: col.Index, Index: insert}, true
}
