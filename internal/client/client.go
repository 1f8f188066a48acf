// Package client is a typed client for the kanban REST API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       apperr.Code
	Message    string
	Details    []apperr.Detail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	session dto.Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSession starts the client with a previously issued session.
func WithSession(s dto.Session) Option {
	return func(c *Client) { c.session = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session; it is empty before login.
func (c *Client) Session() dto.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(s dto.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status, Code: apperr.FromStatus(status), Message: http.StatusText(status)}
	var env dto.ErrorEnvelope
	if err := sonic.Unmarshal(raw, &env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return apiErr
}

// Login exchanges credentials for a session and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/login", dto.LoginCredentials{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.setSession(out.Session)
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	c.setSession(out.Session)
	return &out, nil
}

func (c *Client) ListBoards(ctx context.Context, page, pageSize int) (*dto.BoardPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := "/boards"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out dto.BoardPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBoard(ctx context.Context, name string) (*models.Board, error) {
	var out struct {
		Board *models.Board `json:"board"`
	}
	if err := c.do(ctx, http.MethodPost, "/boards", dto.CreateBoard{Name: name}, &out); err != nil {
		return nil, err
	}
	return out.Board, nil
}

// Board fetches the full aggregate.
func (c *Client) Board(ctx context.Context, boardID uuid.UUID) (*models.BoardAggregate, error) {
	var out dto.BoardResponse
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Board, nil
}

func (c *Client) BoardSummary(ctx context.Context, boardID uuid.UUID) (*models.BoardSummary, error) {
	var out dto.BoardSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID.String()+"?view=counts", nil, &out); err != nil {
		return nil, err
	}
	return out.Board, nil
}

func (c *Client) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+boardID.String(), nil, nil)
}

func (c *Client) CreateColumn(ctx context.Context, boardID uuid.UUID, title string) (*models.Column, error) {
	var out struct {
		Column *models.Column `json:"column"`
	}
	path := "/boards/" + boardID.String() + "/columns"
	if err := c.do(ctx, http.MethodPost, path, dto.CreateColumn{Title: title}, &out); err != nil {
		return nil, err
	}
	return out.Column, nil
}

// MoveColumn moves a column to the zero-based index among its board's columns.
func (c *Client) MoveColumn(ctx context.Context, columnID uuid.UUID, index int) (*models.Column, error) {
	var out struct {
		Column *models.Column `json:"column"`
	}
	if err := c.do(ctx, http.MethodPatch, "/columns/"+columnID.String(), dto.UpdateColumn{Order: &index}, &out); err != nil {
		return nil, err
	}
	return out.Column, nil
}

func (c *Client) DeleteColumn(ctx context.Context, columnID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/columns/"+columnID.String(), nil, nil)
}

func (c *Client) CreateTask(ctx context.Context, columnID uuid.UUID, req dto.CreateTask) (*models.Task, error) {
	var out struct {
		Task *models.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/columns/"+columnID.String()+"/tasks", req, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, taskID uuid.UUID, req dto.UpdateTask) (*models.Task, error) {
	var out struct {
		Task *models.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+taskID.String(), req, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// MoveTask moves a task to columnID at the zero-based index.
func (c *Client) MoveTask(ctx context.Context, taskID, columnID uuid.UUID, index int) (*models.Task, error) {
	return c.UpdateTask(ctx, taskID, dto.UpdateTask{ColumnID: &columnID, Order: &index})
}

func (c *Client) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+taskID.String(), nil, nil)
}

func (c *Client) Comments(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error) {
	var out struct {
		Comments []models.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID.String()+"/comments", nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *Client) AddComment(ctx context.Context, taskID uuid.UUID, body string) (*models.Comment, error) {
	var out struct {
		Comment *models.Comment `json:"comment"`
	}
	path := "/tasks/" + taskID.String() + "/comments"
	if err := c.do(ctx, http.MethodPost, path, dto.CreateComment{Body: body}, &out); err != nil {
		return nil, err
	}
	return out.Comment, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]models.Task, error) {
	var out struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}
