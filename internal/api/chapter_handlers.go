package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleListChapters returns a book's chapters in publication order.
func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.chapterService.ListByBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, chapters, s.logger)
}

// handleCreateChapter adds a chapter to the caller's book.
func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	var req service.CreateChapterRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	chapter, err := s.chapterService.Create(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, chapter, s.logger)
}

// handleGetChapter returns a chapter with its comments.
func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	detail, err := s.chapterService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, detail, s.logger)
}

// handleUpdateChapter edits a chapter's title or body.
func (s *Server) handleUpdateChapter(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateChapterRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	chapter, err := s.chapterService.Update(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, chapter, s.logger)
}

// handleDeleteChapter removes a chapter and its likes and comments.
func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	if err := s.chapterService.Delete(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleLikeChapter marks the chapter as liked by the caller.
func (s *Server) handleLikeChapter(w http.ResponseWriter, r *http.Request) {
	if err := s.socialService.LikeChapter(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleUnlikeChapter removes the caller's like from the chapter.
func (s *Server) handleUnlikeChapter(w http.ResponseWriter, r *http.Request) {
	if err := s.socialService.UnlikeChapter(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleCommentOnChapter posts a comment on a chapter.
func (s *Server) handleCommentOnChapter(w http.ResponseWriter, r *http.Request) {
	var req service.ChapterCommentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	comment, err := s.socialService.CommentOnChapter(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, comment, s.logger)
}
