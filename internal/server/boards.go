package server

import (
	"kanban/internal/apperr"
	"kanban/internal/database/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) listBoards(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page := dto.Page{}
	if err := c.QueryParser(&page); err != nil {
		return apperr.Validation("invalid query", apperr.Detail{Field: "page", Message: err.Error()})
	}
	boards, err := s.boards.ListBoards(c.Context(), userID, page)
	if err != nil {
		return err
	}
	return c.JSON(boards)
}

func (s *FiberServer) createBoard(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	req := dto.CreateBoard{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	board, err := s.boards.CreateBoard(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"board": board})
}

// getBoard returns the full aggregate, or the counts-only summary with ?view=counts.
func (s *FiberServer) getBoard(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	boardID, err := paramID(c, "boardId")
	if err != nil {
		return err
	}
	switch c.Query("view") {
	case "", "full":
		agg, err := s.boards.LoadBoard(c.Context(), userID, boardID)
		if err != nil {
			return err
		}
		return c.JSON(dto.BoardResponse{Board: agg})
	case "counts":
		sum, err := s.boards.LoadBoardSummary(c.Context(), userID, boardID)
		if err != nil {
			return err
		}
		return c.JSON(dto.BoardSummaryResponse{Board: sum})
	default:
		return apperr.Validation("validation failed", apperr.Detail{Field: "view", Message: "must be full or counts"})
	}
}

func (s *FiberServer) renameBoard(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	boardID, err := paramID(c, "boardId")
	if err != nil {
		return err
	}
	req := dto.UpdateBoard{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	board, err := s.boards.RenameBoard(c.Context(), userID, boardID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"board": board})
}

func (s *FiberServer) deleteBoard(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	boardID, err := paramID(c, "boardId")
	if err != nil {
		return err
	}
	if err := s.boards.DeleteBoard(c.Context(), userID, boardID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) createColumn(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	boardID, err := paramID(c, "boardId")
	if err != nil {
		return err
	}
	req := dto.CreateColumn{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	column, err := s.boards.CreateColumn(c.Context(), userID, boardID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"column": column})
}

func (s *FiberServer) updateColumn(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	columnID, err := paramID(c, "columnId")
	if err != nil {
		return err
	}
	req := dto.UpdateColumn{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	column, err := s.boards.UpdateColumn(c.Context(), userID, columnID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"column": column})
}

func (s *FiberServer) deleteColumn(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	columnID, err := paramID(c, "columnId")
	if err != nil {
		return err
	}
	if err := s.boards.DeleteColumn(c.Context(), userID, columnID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
