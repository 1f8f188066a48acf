package cli

import (
	"bytes"
	"context"
	"kanban/internal/database/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBoard(t *testing.T) {
	col := models.Column{ID: uuid.New(), Title: "Todo"}
	empty := models.Column{ID: uuid.New(), Title: "Done", Order: 1}
	b := &models.BoardAggregate{
		Board: models.Board{ID: uuid.New(), Name: "Roadmap"},
		Columns: []models.ColumnWithTasks{
			{Column: col, Tasks: []models.Task{{ID: uuid.New(), Title: "Write docs", Priority: models.PriorityHigh}}},
			{Column: empty, Tasks: []models.Task{}},
		},
	}

	var out bytes.Buffer
	printBoard(&out, b)
	assert.Contains(t, out.String(), "Roadmap")
	assert.Contains(t, out.String(), "[0] Todo")
	assert.Contains(t, out.String(), "0. Write docs [high]")
	assert.Contains(t, out.String(), "(empty)")
}

func newTestCommand() *cobra.Command {
	parent := &cobra.Command{Use: "board"}
	apiFlags(parent)
	child := &cobra.Command{Use: "show", RunE: func(*cobra.Command, []string) error { return nil }}
	parent.AddCommand(child)
	return child
}

func TestNewAPIClient_RequiresCredentials(t *testing.T) {
	t.Setenv("KANBAN_TOKEN", "")
	t.Setenv("KANBAN_EMAIL", "")
	t.Setenv("KANBAN_PASSWORD", "")
	cmd := newTestCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	_, err := newAPIClient(context.Background(), cmd)
	assert.Error(t, err)
}

func TestNewAPIClient_TokenFromEnv(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv("KANBAN_API", srv.URL)
	t.Setenv("KANBAN_TOKEN", "abc")
	cmd := newTestCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	c, err := newAPIClient(context.Background(), cmd)
	require.NoError(t, err)
	require.NoError(t, c.DeleteTask(context.Background(), uuid.New()))
	assert.Equal(t, "Bearer abc", gotAuth)
}
