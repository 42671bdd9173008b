package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleListBooks returns all books, newest first.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.List(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

// handleGetBook returns a book with its comments.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	detail, err := s.bookService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, detail, s.logger)
}

// handleCreateBook publishes a new book authored by the caller.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.Create(r.Context(), currentUser(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, book, s.logger)
}

// handleUpdateBook edits a book's title or description.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateBookRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.Update(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book and everything attached to it.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.bookService.Delete(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleCompleteBook marks a book as finished.
func (s *Server) handleCompleteBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.bookService.Complete(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleSetBookCover accepts a raw image body and sets it as the cover.
func (s *Server) handleSetBookCover(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.SetCover(r.Context(), currentUser(r.Context()).Handle, chi.URLParam(r, "id"), data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleFavouriteBook adds the book to the caller's favourites.
func (s *Server) handleFavouriteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.socialService.FavouriteBook(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleUnfavouriteBook removes the book from the caller's favourites.
func (s *Server) handleUnfavouriteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.socialService.UnfavouriteBook(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// handleCommentOnBook posts a rated review comment on a book.
func (s *Server) handleCommentOnBook(w http.ResponseWriter, r *http.Request) {
	var req service.BookCommentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	comment, err := s.socialService.CommentOnBook(r.Context(), currentUser(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, comment, s.logger)
}
