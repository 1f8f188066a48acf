package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"kanban/internal/apperr"
	"kanban/internal/database"
	"kanban/internal/database/models"
	"kanban/internal/testutil"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB database.Service

func TestMain(m *testing.M) {
	ctx := context.Background()
	dsn, teardown, err := testutil.StartPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres unavailable, skipping integration tests: %v\n", err)
		os.Exit(m.Run())
	}
	testDB, err = database.New(ctx, dsn, 5)
	if err != nil {
		teardown()
		fmt.Fprintf(os.Stderr, "could not connect to postgres: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	testDB.Close()
	teardown()
	os.Exit(code)
}

func TestFormatTsQuery(t *testing.T) {
	assert.Equal(t, "bill:* & q3:*", formatTsQuery("  bill, q3!"))
	assert.Equal(t, "", formatTsQuery("!!! ..."))
	assert.Equal(t, "café:*", formatTsQuery("café"))
}

type seed struct {
	user  *models.User
	board *models.Board
	col   *models.Column
}

func seedBoard(t *testing.T) seed {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	ctx := context.Background()
	db := testDB.DB()

	s := seed{user: &models.User{Email: uuid.NewString() + "@example.com", Password: "hash"}}
	require.NoError(t, NewUserRepository(db).Create(ctx, s.user))
	s.board = &models.Board{Name: "Roadmap", OwnerID: s.user.ID}
	require.NoError(t, NewBoardRepository(db).Create(ctx, s.board))
	s.col = &models.Column{BoardID: s.board.ID, Title: "Todo", Order: 0}
	require.NoError(t, NewColumnRepository(db).Create(ctx, s.col))
	return s
}

func (s seed) task(t *testing.T, title string, order int) *models.Task {
	t.Helper()
	task := &models.Task{ColumnID: s.col.ID, BoardID: s.board.ID, Title: title, Order: order, AuthorID: s.user.ID}
	require.NoError(t, NewTaskRepository(testDB.DB()).Create(context.Background(), task))
	return task
}

func TestUserRepository(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	users := NewUserRepository(testDB.DB())

	got, err := users.GetByEmail(ctx, s.user.Email)
	require.NoError(t, err)
	assert.Equal(t, s.user.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	_, err = users.GetByID(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	err = users.Create(ctx, &models.User{Email: s.user.Email, Password: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
}

func TestBoardRepository_ListAndCount(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	boards := NewBoardRepository(testDB.DB())
	s.task(t, "one", 0)
	s.task(t, "two", 1)

	n, err := boards.Count(ctx, s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := boards.List(ctx, s.user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ColumnCount)
	assert.Equal(t, 2, items[0].TaskCount)

	items, err = boards.List(ctx, s.user.ID, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBoardRepository_RenameAndDelete(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	boards := NewBoardRepository(testDB.DB())

	s.board.Name = "Renamed"
	require.NoError(t, boards.Rename(ctx, s.board))
	got, err := boards.GetByID(ctx, s.board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, boards.Delete(ctx, s.board.ID))
	err = boards.Delete(ctx, s.board.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	_, err = NewColumnRepository(testDB.DB()).GetByID(ctx, s.col.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestTaskRepository_ListByColumnInPositionOrder(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	tasks := NewTaskRepository(testDB.DB())
	s.task(t, "c", 5)
	s.task(t, "a", 0)
	s.task(t, "b", 2)

	got, err := tasks.ListByColumn(ctx, s.col.ID)
	require.NoError(t, err)
	var titles []string
	for _, task := range got {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
	assert.Nil(t, got[0].Description)
}

func TestTaskRepository_DuplicatePositionRejectedAtCommit(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	t1 := s.task(t, "t1", 0)
	t2 := s.task(t, "t2", 1)

	// swapping positions passes through a duplicate inside the transaction
	err := testDB.WithTx(ctx, nil, func(tx *sql.Tx) error {
		tasks := NewTaskRepository(tx)
		if err := tasks.Place(ctx, t1.ID, s.col.ID, 1); err != nil {
			return err
		}
		return tasks.Place(ctx, t2.ID, s.col.ID, 0)
	})
	require.NoError(t, err)

	// leaving the duplicate in place fails the commit
	err = testDB.WithTx(ctx, nil, func(tx *sql.Tx) error {
		return NewTaskRepository(tx).Place(ctx, t1.ID, s.col.ID, 0)
	})
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)

	got, err := NewTaskRepository(testDB.DB()).GetByID(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Order)
}

func TestTaskRepository_ColumnMustBelongToBoard(t *testing.T) {
	s := seedBoard(t)
	other := seedBoard(t)
	ctx := context.Background()
	task := s.task(t, "t1", 0)

	err := NewTaskRepository(testDB.DB()).Place(ctx, task.ID, other.col.ID, 0)
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
}

func TestTaskRepository_UpdateFields(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	tasks := NewTaskRepository(testDB.DB())
	task := s.task(t, "draft", 0)

	desc := "details"
	task.Title = "final"
	task.Description = &desc
	task.Priority = models.PriorityLow
	require.NoError(t, tasks.Update(ctx, task))

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "details", *got.Description)
	assert.Equal(t, models.PriorityLow, got.Priority)

	task.ID = uuid.New()
	assert.True(t, apperr.Is(tasks.Update(ctx, task), apperr.CodeNotFound))
}

func TestColumnRepository_CountTasks(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	columns := NewColumnRepository(testDB.DB())
	empty := &models.Column{BoardID: s.board.ID, Title: "Done", Order: 1}
	require.NoError(t, columns.Create(ctx, empty))
	s.task(t, "t1", 0)

	counts, err := columns.CountTasks(ctx, s.board.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, s.col.ID, counts[0].ID)
	assert.Equal(t, 1, counts[0].TaskCount)
	assert.Equal(t, 0, counts[1].TaskCount)
}

func TestCommentRepository(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	comments := NewCommentRepository(testDB.DB())
	task := s.task(t, "t1", 0)

	c := &models.Comment{TaskID: task.ID, AuthorID: s.user.ID, Body: "hello"}
	require.NoError(t, comments.Create(ctx, c))
	got, err := comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)

	list, err := comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, NewTaskRepository(testDB.DB()).Delete(ctx, task.ID))
	_, err = comments.GetByID(ctx, c.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestSearchRepository(t *testing.T) {
	s := seedBoard(t)
	ctx := context.Background()
	s.task(t, "Prepare quarterly report", 0)
	s.task(t, "Unrelated", 1)

	found, err := NewSearchRepository(testDB.DB()).SearchTasks(ctx, "quart", s.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Prepare quarterly report", found[0].Title)

	found, err = NewSearchRepository(testDB.DB()).SearchTasks(ctx, "quart", uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
