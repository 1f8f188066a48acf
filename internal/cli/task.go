package cli

import (
	"fmt"
	"kanban/internal/reconcile"
	"os"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	moveBoard   string
	moveVerbose bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Move tasks through the REST API",
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <task-id> <column-id> <index>",
	Short: "Move a task to a column at a zero-based index",
	Long: `Move a task the way a drag-and-drop does: the board is loaded, the move is
applied locally, sent to the server, and the board is refetched on success or
restored on failure. The resulting board is printed.

Examples:
  kanban task move <task> <column> 0 --board <board>`,
	Args: cobra.ExactArgs(3),
	RunE: runTaskMove,
}

func init() {
	apiFlags(taskCmd)
	taskMoveCmd.Flags().StringVar(&moveBoard, "board", "", "board the task is on (required)")
	taskMoveCmd.Flags().BoolVarP(&moveVerbose, "verbose", "v", false, "log the reconciliation steps")
	_ = taskMoveCmd.MarkFlagRequired("board")
	taskCmd.AddCommand(taskMoveCmd)
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	taskID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	columnID, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid column id: %w", err)
	}
	index, err := strconv.Atoi(args[2])
	if err != nil || index < 0 {
		return fmt.Errorf("index must be a non-negative integer")
	}
	boardID, err := uuid.Parse(moveBoard)
	if err != nil {
		return fmt.Errorf("invalid board id: %w", err)
	}

	ctx := cmd.Context()
	c, err := newAPIClient(ctx, cmd)
	if err != nil {
		return err
	}
	board, err := c.Board(ctx, boardID)
	if err != nil {
		return err
	}

	logger := log.New()
	logger.SetOutput(os.Stderr)
	if moveVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	mover := reconcile.NewMover(reconcile.NewTracker(*board), c, logger)

	outcome, moveErr := mover.Drop(ctx, reconcile.MoveTask(taskID, columnID, index))
	final := mover.Tracker().Board()
	printBoard(cmd.OutOrStdout(), &final)
	fmt.Fprintf(cmd.OutOrStdout(), "\nmove %s\n", outcome)
	return moveErr
}
