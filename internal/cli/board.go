package cli

import (
	"fmt"
	"io"
	"kanban/internal/database/models"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var boardCounts bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Inspect boards through the REST API",
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		page, err := c.ListBoards(cmd.Context(), 1, 100)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLUMNS\tTASKS")
		for _, b := range page.Boards {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", b.ID, b.Name, b.ColumnCount, b.TaskCount)
		}
		return w.Flush()
	},
}

var boardShowCmd = &cobra.Command{
	Use:   "show <board-id>",
	Short: "Print a board with its columns and tasks in order",
	Long: `Print a board with its columns and tasks in visual order.

Examples:
  kanban board show 7f1c... --email ada@example.com --password secret
  KANBAN_TOKEN=... kanban board show 7f1c... --counts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid board id: %w", err)
		}
		c, err := newAPIClient(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if boardCounts {
			sum, err := c.BoardSummary(cmd.Context(), boardID)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		}
		agg, err := c.Board(cmd.Context(), boardID)
		if err != nil {
			return err
		}
		printBoard(cmd.OutOrStdout(), agg)
		return nil
	},
}

func init() {
	apiFlags(boardCmd)
	boardShowCmd.Flags().BoolVar(&boardCounts, "counts", false, "only print task counts per column")
	boardCmd.AddCommand(boardListCmd, boardShowCmd)
}

func printBoard(w io.Writer, b *models.BoardAggregate) {
	fmt.Fprintf(w, "%s (%s)\n", b.Name, b.ID)
	for _, col := range b.Columns {
		fmt.Fprintf(w, "\n[%d] %s (%s)\n", col.Order, col.Title, col.ID)
		if len(col.Tasks) == 0 {
			fmt.Fprintln(w, "    (empty)")
		}
		for _, t := range col.Tasks {
			fmt.Fprintf(w, "    %d. %s [%s] %s\n", t.Order, t.Title, t.Priority, t.ID)
		}
	}
}

func printSummary(w io.Writer, s *models.BoardSummary) {
	fmt.Fprintf(w, "%s (%s)\n", s.Name, s.ID)
	for _, col := range s.Columns {
		fmt.Fprintf(w, "  [%d] %-24s %d tasks\n", col.Order, col.Title, col.TaskCount)
	}
}
