package client

import (
	"context"
	"errors"
	"io"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"
	"kanban/internal/database/models"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	buf, err := sonic.Marshal(v)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func TestLoginStoresSession(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var creds dto.LoginCredentials
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		writeJSON(t, w, http.StatusOK, dto.AuthResponse{
			User:    &models.User{ID: uuid.New(), Email: creds.Email},
			Session: dto.Session{Token: "tok", ExpiresAt: exp},
		})
	})
	mux.HandleFunc("/boards", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(t, w, http.StatusOK, dto.BoardPage{Boards: []models.BoardListItem{}, Page: 2, PageSize: 20, TotalPages: 2})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL + "/")
	auth, err := c.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "tok", auth.Token)
	assert.True(t, exp.Equal(c.Session().ExpiresAt))

	page, err := c.ListBoards(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestErrorEnvelopeDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, dto.ErrorEnvelope{Error: dto.ErrorBody{
			Code:    apperr.CodeForbidden,
			Message: "target column belongs to another board",
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithSession(dto.Session{Token: "tok"}))
	_, err := c.MoveTask(context.Background(), uuid.New(), uuid.New(), 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, apperr.CodeForbidden, apiErr.Code)
	assert.Equal(t, "target column belongs to another board", apiErr.Message)
}

func TestErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Board(context.Background(), uuid.New())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperr.CodeInternal, apiErr.Code)
}

func TestMoveTaskSendsColumnAndOrder(t *testing.T) {
	taskID, columnID := uuid.New(), uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/tasks/"+taskID.String(), r.URL.Path)
		var req dto.UpdateTask
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &req))
		require.NotNil(t, req.ColumnID)
		require.NotNil(t, req.Order)
		assert.Equal(t, columnID, *req.ColumnID)
		assert.Equal(t, 3, *req.Order)
		assert.Nil(t, req.Title)
		writeJSON(t, w, http.StatusOK, map[string]any{"task": models.Task{ID: taskID, ColumnID: columnID, Order: 3}})
	}))
	defer srv.Close()

	task, err := New(srv.URL).MoveTask(context.Background(), taskID, columnID, 3)
	require.NoError(t, err)
	assert.Equal(t, columnID, task.ColumnID)
	assert.Equal(t, 3, task.Order)
}

func TestDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).DeleteTask(context.Background(), uuid.New()))
}
