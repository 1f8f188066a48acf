package server

import (
	"kanban/internal/database/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) createTask(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	columnID, err := paramID(c, "columnId")
	if err != nil {
		return err
	}
	req := dto.CreateTask{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	task, err := s.boards.CreateTask(c.Context(), userID, columnID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task})
}

// updateTask edits and/or moves a task. A body with columnId or order is a
// move; order is the target zero-based index in the destination column.
func (s *FiberServer) updateTask(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}
	req := dto.UpdateTask{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	task, err := s.boards.UpdateTask(c.Context(), userID, taskID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": task})
}

func (s *FiberServer) deleteTask(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}
	if err := s.boards.DeleteTask(c.Context(), userID, taskID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) listComments(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}
	comments, err := s.boards.ListComments(c.Context(), userID, taskID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (s *FiberServer) createComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}
	req := dto.CreateComment{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	comment, err := s.boards.AddComment(c.Context(), userID, taskID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

func (s *FiberServer) deleteComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	if err := s.boards.DeleteComment(c.Context(), userID, taskID, commentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
