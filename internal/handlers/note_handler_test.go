package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// --- mock note service ---

type mockNoteService struct {
	createNoteFn   func(userID uint, in services.NoteInput) (*models.Note, error)
	getUserNotesFn func(userID uint, page pagination.PageRequest, filter services.NoteFilter) (*pagination.PageResponse[models.Note], error)
	getNoteByIDFn  func(userID, noteID uint) (*models.Note, error)
	updateNoteFn   func(userID, noteID uint, in services.NoteInput) (*models.Note, error)
	deleteNoteFn   func(userID, noteID uint) error
}

func (m *mockNoteService) CreateNote(userID uint, in services.NoteInput) (*models.Note, error) {
	if m.createNoteFn != nil {
		return m.createNoteFn(userID, in)
	}
	return &models.Note{}, nil
}

func (m *mockNoteService) GetUserNotes(userID uint, page pagination.PageRequest, filter services.NoteFilter) (*pagination.PageResponse[models.Note], error) {
	if m.getUserNotesFn != nil {
		return m.getUserNotesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Note{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockNoteService) GetNoteByID(userID, noteID uint) (*models.Note, error) {
	if m.getNoteByIDFn != nil {
		return m.getNoteByIDFn(userID, noteID)
	}
	return &models.Note{}, nil
}

func (m *mockNoteService) UpdateNote(userID, noteID uint, in services.NoteInput) (*models.Note, error) {
	if m.updateNoteFn != nil {
		return m.updateNoteFn(userID, noteID, in)
	}
	return &models.Note{}, nil
}

func (m *mockNoteService) DeleteNote(userID, noteID uint) error {
	if m.deleteNoteFn != nil {
		return m.deleteNoteFn(userID, noteID)
	}
	return nil
}

var _ services.NoteServicer = (*mockNoteService)(nil)

func setupNoteRouter(handler *NoteHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/notes", handler.CreateNote)
	auth.GET("/notes", handler.GetUserNotes)
	auth.GET("/notes/:id", handler.GetNoteByID)
	auth.PUT("/notes/:id", handler.UpdateNote)
	auth.DELETE("/notes/:id", handler.DeleteNote)
	return r
}

func TestNoteHandler_CreateNote(t *testing.T) {
	t.Run("returns 201 with note", func(t *testing.T) {
		noteSvc := &mockNoteService{
			createNoteFn: func(userID uint, in services.NoteInput) (*models.Note, error) {
				note := &models.Note{Base: models.Base{ID: 1}, UserID: userID, Title: in.Title}
				note.SetTags(in.Tags)
				return note, nil
			},
		}
		handler := NewNoteHandler(noteSvc)
		r := setupNoteRouter(handler)

		rec := doRequest(r, "POST", "/notes",
			`{"title":"Plano de 2025","content":"Aumentar aporte mensal","tags":["planejamento","investimentos"]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		note := result["note"].(map[string]interface{})
		if note["title"] != "Plano de 2025" {
			t.Errorf("expected title, got %v", note["title"])
		}
		tags, ok := note["tags"].([]interface{})
		if !ok || len(tags) != 2 || tags[0] != "planejamento" || tags[1] != "investimentos" {
			t.Errorf("expected submitted tags in response, got %v", note["tags"])
		}
	})

	t.Run("returns empty tags array for untagged note", func(t *testing.T) {
		handler := NewNoteHandler(&mockNoteService{})
		r := setupNoteRouter(handler)

		rec := doRequest(r, "POST", "/notes", `{"title":"Sem tags"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		note := parseJSON(t, rec)["note"].(map[string]interface{})
		if tags, ok := note["tags"].([]interface{}); !ok || len(tags) != 0 {
			t.Errorf("expected empty tags array, got %v", note["tags"])
		}
	})

	t.Run("returns 400 without title", func(t *testing.T) {
		handler := NewNoteHandler(&mockNoteService{})
		r := setupNoteRouter(handler)

		rec := doRequest(r, "POST", "/notes", `{"content":"sem título"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed related month", func(t *testing.T) {
		handler := NewNoteHandler(&mockNoteService{})
		r := setupNoteRouter(handler)

		rec := doRequest(r, "POST", "/notes", `{"title":"x","related_month":"maio/2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when linked goal is foreign", func(t *testing.T) {
		noteSvc := &mockNoteService{
			createNoteFn: func(_ uint, _ services.NoteInput) (*models.Note, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		handler := NewNoteHandler(noteSvc)
		r := setupNoteRouter(handler)

		rec := doRequest(r, "POST", "/notes", `{"title":"x","related_goal_id":42}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestNoteHandler_GetUserNotes(t *testing.T) {
	t.Run("captures filters from query", func(t *testing.T) {
		var gotFilter services.NoteFilter
		noteSvc := &mockNoteService{
			getUserNotesFn: func(_ uint, _ pagination.PageRequest, filter services.NoteFilter) (*pagination.PageResponse[models.Note], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Note{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewNoteHandler(noteSvc)
		r := setupNoteRouter(handler)

		rec := doRequest(r, "GET", "/notes?tag=planejamento&favorite=true&month=2024-05", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Tag == nil || *gotFilter.Tag != "planejamento" {
			t.Errorf("expected tag filter, got %v", gotFilter.Tag)
		}
		if gotFilter.Favorite == nil || !*gotFilter.Favorite {
			t.Errorf("expected favorite filter, got %v", gotFilter.Favorite)
		}
		if gotFilter.Month == nil || *gotFilter.Month != "2024-05" {
			t.Errorf("expected month filter, got %v", gotFilter.Month)
		}
	})

	t.Run("returns 400 on bad favorite flag", func(t *testing.T) {
		handler := NewNoteHandler(&mockNoteService{})
		r := setupNoteRouter(handler)

		rec := doRequest(r, "GET", "/notes?favorite=sim", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNoteHandler_UpdateNote(t *testing.T) {
	t.Run("replaces the note content", func(t *testing.T) {
		noteSvc := &mockNoteService{
			updateNoteFn: func(_, noteID uint, in services.NoteInput) (*models.Note, error) {
				note := &models.Note{Base: models.Base{ID: noteID}, Title: in.Title, IsFavorite: in.IsFavorite}
				note.SetTags(in.Tags)
				return note, nil
			},
		}
		handler := NewNoteHandler(noteSvc)
		r := setupNoteRouter(handler)

		rec := doRequest(r, "PUT", "/notes/1",
			`{"title":"Plano revisado","is_favorite":true,"tags":["metas"]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		note := result["note"].(map[string]interface{})
		if note["is_favorite"] != true {
			t.Errorf("expected favorite note, got %v", note["is_favorite"])
		}
		if tags, ok := note["tags"].([]interface{}); !ok || len(tags) != 1 || tags[0] != "metas" {
			t.Errorf("expected replaced tags in response, got %v", note["tags"])
		}
	})

	t.Run("returns 404 for unknown note", func(t *testing.T) {
		noteSvc := &mockNoteService{
			updateNoteFn: func(_, _ uint, _ services.NoteInput) (*models.Note, error) {
				return nil, apperrors.ErrNoteNotFound
			},
		}
		handler := NewNoteHandler(noteSvc)
		r := setupNoteRouter(handler)

		rec := doRequest(r, "PUT", "/notes/99", `{"title":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOTE_NOT_FOUND")
	})
}

func TestNoteHandler_DeleteNote(t *testing.T) {
	handler := NewNoteHandler(&mockNoteService{})
	r := setupNoteRouter(handler)

	rec := doRequest(r, "DELETE", "/notes/1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
