package server

import (
	"fmt"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/utils"
	"runtime"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Post("/login", s.login)
	s.App.Post("/register", s.registerUser)
	s.App.Get("/health", s.healthHandler)
	// endpoint to monitor memory
	s.App.Get("/memory", func(c *fiber.Ctx) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		memoryInfo := fmt.Sprintf("Alloc = %v MiB, TotalAlloc = %v MiB, Sys = %v MiB, NumGC = %v",
			bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
		return c.SendString(memoryInfo)
	})

	s.App.Use(jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: s.secret},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperr.Unauthorized("missing or invalid token")
		},
	}))

	s.App.Get("/me", s.me)
	s.App.Get("/search", s.searchTasks)

	s.App.Get("/boards", s.listBoards)
	s.App.Post("/boards", s.createBoard)
	s.App.Get("/boards/:boardId", s.getBoard)
	s.App.Patch("/boards/:boardId", s.renameBoard)
	s.App.Delete("/boards/:boardId", s.deleteBoard)

	s.App.Post("/boards/:boardId/columns", s.createColumn)
	s.App.Patch("/columns/:columnId", s.updateColumn)
	s.App.Delete("/columns/:columnId", s.deleteColumn)

	s.App.Post("/columns/:columnId/tasks", s.createTask)
	s.App.Patch("/tasks/:taskId", s.updateTask)
	s.App.Delete("/tasks/:taskId", s.deleteTask)

	s.App.Get("/tasks/:taskId/comments", s.listComments)
	s.App.Post("/tasks/:taskId/comments", s.createComment)
	s.App.Delete("/tasks/:taskId/comments/:commentId", s.deleteComment)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	stats := s.db.Health()
	if stats["status"] != "up" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(stats)
	}
	return c.JSON(stats)
}

// currentUser returns the subject of the token verified by the jwt middleware.
func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	token, _ := c.Locals("user").(*jwt.Token)
	id, err := utils.UserIDFromToken(token)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("invalid token subject")
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id", apperr.Detail{Field: name, Message: "must be a uuid"})
	}
	return id, nil
}

func (s *FiberServer) login(c *fiber.Ctx) error {
	credentials := dto.LoginCredentials{}
	if err := c.BodyParser(&credentials); err != nil {
		return badBody(err)
	}
	user, session, err := s.accounts.Login(c.Context(), credentials)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{User: user, Session: *session})
}

func (s *FiberServer) registerUser(c *fiber.Ctx) error {
	req := dto.RegisterRequest{}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	user, session, err := s.accounts.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{User: user, Session: *session})
}

func (s *FiberServer) me(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := s.accounts.Me(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

func (s *FiberServer) searchTasks(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	q := c.Query("q")
	if q == "" {
		return apperr.Validation("validation failed", apperr.Detail{Field: "q", Message: "is required"})
	}
	tasks, err := s.boards.SearchTasks(c.Context(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}
