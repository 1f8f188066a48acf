package reconcile

import (
	"context"
	"kanban/internal/database/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// API is the part of the REST client a Mover needs.
type API interface {
	MoveTask(ctx context.Context, taskID, columnID uuid.UUID, index int) (*models.Task, error)
	MoveColumn(ctx context.Context, columnID uuid.UUID, index int) (*models.Column, error)
	Board(ctx context.Context, boardID uuid.UUID) (*models.BoardAggregate, error)
}

// Mover runs a drop end to end: optimistic apply, move request, refetch of
// the aggregate on success and rollback on failure.
type Mover struct {
	tracker *Tracker
	api     API
	log     *log.Logger
}

func NewMover(tracker *Tracker, api API, logger *log.Logger) *Mover {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Mover{tracker: tracker, api: api, log: logger}
}

func (m *Mover) Tracker() *Tracker { return m.tracker }

// Drop applies ev locally and sends it. The returned error is the request
// error, if any; the outcome says what happened to the local snapshot.
func (m *Mover) Drop(ctx context.Context, ev DragResult) (Outcome, error) {
	p, optimistic, err := m.tracker.Begin(ev)
	if err != nil {
		return RolledBack, err
	}

	switch ev.Kind {
	case ColumnDrag:
		_, err = m.api.MoveColumn(ctx, ev.ID, ev.Index)
	default:
		_, err = m.api.MoveTask(ctx, ev.ID, ev.ToColumn, ev.Index)
	}

	var server *models.BoardAggregate
	if err == nil {
		var fetchErr error
		server, fetchErr = m.api.Board(ctx, optimistic.ID)
		if fetchErr != nil {
			// The move went through; keep the optimistic view until the next load.
			m.log.WithError(fetchErr).WithField("board", optimistic.ID).Warn("refetch after move failed")
			server = nil
		}
	}

	outcome := m.tracker.Resolve(p, server, err)
	m.log.WithFields(log.Fields{
		"kind":    ev.Kind.String(),
		"id":      ev.ID,
		"index":   ev.Index,
		"seq":     p.Seq,
		"outcome": outcome.String(),
	}).Debug("drop resolved")
	return outcome, err
}
