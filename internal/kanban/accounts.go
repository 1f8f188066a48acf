package kanban

import (
	"context"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"kanban/internal/database/repositories"
	"kanban/internal/utils"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Accounts registers users and issues session tokens.
type Accounts struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *log.Logger
}

func NewAccounts(users repositories.UserRepository, secret []byte, ttl time.Duration, logger *log.Logger) *Accounts {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Accounts{users: users, secret: secret, ttl: ttl, now: time.Now, log: logger}
}

// Register creates the user and signs them in.
func (a *Accounts) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, *dto.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashed,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	session, err := a.issue(user)
	if err != nil {
		return nil, nil, err
	}
	a.log.WithField("user", user.ID).Info("user registered")
	return user, session, nil
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (a *Accounts) Login(ctx context.Context, req dto.LoginCredentials) (*models.User, *dto.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	user, err := a.users.GetByEmail(ctx, req.Email)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, nil, apperr.Unauthorized("invalid email or password")
	}
	session, err := a.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Me returns the user behind a verified token subject.
func (a *Accounts) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return a.users.GetByID(ctx, userID)
}

func (a *Accounts) issue(user *models.User) (*dto.Session, error) {
	token, expiresAt, err := utils.IssueToken(a.secret, user.ID, user.Email, a.ttl, a.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &dto.Session{Token: token, ExpiresAt: expiresAt}, nil
}
