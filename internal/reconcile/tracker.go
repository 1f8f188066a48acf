package reconcile

import (
	"kanban/internal/database/models"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Outcome int

const (
	// Applied means the server state replaced the local one.
	Applied Outcome = iota
	// RolledBack means the request failed and the drag was taken off the board.
	RolledBack
	// Stale means a newer drag of the same entity superseded the request.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled back"
	default:
		return "stale"
	}
}

// Pending identifies one in-flight move request.
type Pending struct {
	ID  uuid.UUID
	Seq uint64
}

// Notice is a transient error to show the user after a rollback.
type Notice struct {
	Pending
	Err error
	At  time.Time
}

type inflight struct {
	ev DragResult
}

// Tracker owns the local board snapshot. Begin applies a drop optimistically;
// Resolve settles it. The visible board is always the last state the server
// confirmed with the live in-flight drags re-applied on top, so a rejected
// drag disappears no matter what else is pending. Responses for an entity
// that has been dragged again in the meantime only update the confirmed
// state; they never touch the visible board.
type Tracker struct {
	mu           sync.Mutex
	board        models.BoardAggregate
	confirmed    models.BoardAggregate
	confirmedSeq uint64
	seq          uint64
	latest       map[uuid.UUID]uint64
	inflight     map[uint64]inflight
	notices      []Notice
	now          func() time.Time
}

func NewTracker(board models.BoardAggregate) *Tracker {
	return &Tracker{
		board:     board.Clone(),
		confirmed: board.Clone(),
		latest:    make(map[uuid.UUID]uint64),
		inflight:  make(map[uint64]inflight),
		now:       time.Now,
	}
}

// Board returns a copy of the current local snapshot.
func (t *Tracker) Board() models.BoardAggregate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.board.Clone()
}

// Replace overwrites the confirmed snapshot, e.g. after a manual refetch,
// and re-applies any drags still in flight.
func (t *Tracker) Replace(board models.BoardAggregate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirmed = board.Clone()
	t.confirmedSeq = t.seq
	t.board = t.rebase()
}

// Begin applies ev to the local snapshot and returns the token to resolve
// once the server answers. On error the snapshot is unchanged.
func (t *Tracker) Begin(ev DragResult) (Pending, models.BoardAggregate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := Apply(t.board, ev)
	if err != nil {
		return Pending{}, models.BoardAggregate{}, err
	}
	t.seq++
	p := Pending{ID: ev.ID, Seq: t.seq}
	t.latest[ev.ID] = p.Seq
	t.inflight[p.Seq] = inflight{ev: ev}
	t.board = next
	return p, next.Clone(), nil
}

// Resolve settles p. A success folds into the confirmed snapshot: server
// (when non-nil) replaces it, otherwise the drag itself is applied to it.
// A failure records a notice. In both cases the visible board is rebuilt
// from the confirmed snapshot plus the drags still in flight, unless p was
// superseded by a newer drag of the same entity, which yields Stale.
func (t *Tracker) Resolve(p Pending, server *models.BoardAggregate, reqErr error) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.inflight[p.Seq]
	if !ok || entry.ev.ID != p.ID {
		return Stale
	}
	delete(t.inflight, p.Seq)
	current := t.latest[p.ID] == p.Seq
	if current {
		delete(t.latest, p.ID)
	}

	if reqErr == nil {
		switch {
		case server != nil && p.Seq > t.confirmedSeq:
			t.confirmed = server.Clone()
			t.confirmedSeq = p.Seq
		case server == nil:
			if next, err := Apply(t.confirmed, entry.ev); err == nil {
				t.confirmed = next
			}
		}
	}
	if !current {
		return Stale
	}

	t.board = t.rebase()
	if reqErr != nil {
		t.notices = append(t.notices, Notice{Pending: p, Err: reqErr, At: t.now()})
		return RolledBack
	}
	return Applied
}

// rebase re-applies the live in-flight drags, oldest first, onto a copy of
// the confirmed snapshot. Superseded drags are skipped, as are drags that no
// longer apply; their own responses will settle them.
func (t *Tracker) rebase() models.BoardAggregate {
	seqs := make([]uint64, 0, len(t.inflight))
	for seq, entry := range t.inflight {
		if t.latest[entry.ev.ID] == seq {
			seqs = append(seqs, seq)
		}
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	base := t.confirmed.Clone()
	for _, seq := range seqs {
		if next, err := Apply(base, t.inflight[seq].ev); err == nil {
			base = next
		}
	}
	return base
}

// InFlight reports how many moves are waiting for a response, superseded
// ones included.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// DrainNotices returns and clears the recorded rollback notices.
func (t *Tracker) DrainNotices() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	return out
}
