package server

import (
	"context"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Boards is the board, column, task and comment service behind the routes.
type Boards interface {
	ListBoards(ctx context.Context, userID uuid.UUID, page dto.Page) (*dto.BoardPage, error)
	CreateBoard(ctx context.Context, userID uuid.UUID, req dto.CreateBoard) (*models.Board, error)
	LoadBoard(ctx context.Context, userID, boardID uuid.UUID) (*models.BoardAggregate, error)
	LoadBoardSummary(ctx context.Context, userID, boardID uuid.UUID) (*models.BoardSummary, error)
	RenameBoard(ctx context.Context, userID, boardID uuid.UUID, req dto.UpdateBoard) (*models.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error

	CreateColumn(ctx context.Context, userID, boardID uuid.UUID, req dto.CreateColumn) (*models.Column, error)
	UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, req dto.UpdateColumn) (*models.Column, error)
	DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error

	CreateTask(ctx context.Context, userID, columnID uuid.UUID, req dto.CreateTask) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTask) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	ListComments(ctx context.Context, userID, taskID uuid.UUID) ([]models.Comment, error)
	AddComment(ctx context.Context, userID, taskID uuid.UUID, req dto.CreateComment) (*models.Comment, error)
	DeleteComment(ctx context.Context, userID, taskID, commentID uuid.UUID) error

	SearchTasks(ctx context.Context, userID uuid.UUID, query string) ([]models.Task, error)
}

type Accounts interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, *dto.Session, error)
	Login(ctx context.Context, req dto.LoginCredentials) (*models.User, *dto.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type HealthChecker interface {
	Health() map[string]string
}

type Options struct {
	AllowOrigins string
	JWTSecret    []byte
	Logger       *log.Logger
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

type FiberServer struct {
	*fiber.App

	boards   Boards
	accounts Accounts
	db       HealthChecker
	secret   []byte
	log      *log.Logger
}

func New(boards Boards, accounts Accounts, db HealthChecker, opts Options) *FiberServer {
	logr := opts.Logger
	if logr == nil {
		logr = log.StandardLogger()
	}
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "kanban",
			AppName:      "kanban",
			JSONEncoder:  sonic.Marshal,
			JSONDecoder:  sonic.Unmarshal,
			ErrorHandler: errorHandler(logr),
		}),
		boards:   boards,
		accounts: accounts,
		db:       db,
		secret:   opts.JWTSecret,
		log:      logr,
	}
	server.App.Use(recover.New())
	server.App.Use(requestid.New())
	server.App.Use(favicon.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		MaxAge:       3600,
	}))
	if opts.AccessLog {
		server.App.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	server.App.Use(pprof.New())
	return server
}
