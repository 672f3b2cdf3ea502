package server

import (
	"net/http"

	"github.com/jonwraymond/textops/diff"
)

// RenderRequest is the body of the render, extract and invalidate routes.
type RenderRequest struct {
	Scope string `json:"scope"`
	Text  string `json:"text"`
}

// DiffRequest is the body of the diff routes. Scope is used by revision diffs.
type DiffRequest struct {
	Scope string `json:"scope,omitempty"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// DiffResponse is returned by /v1/diff.
type DiffResponse struct {
	HTML  string       `json:"html"`
	Edits []diff.Edit  `json:"edits"`
	Stats diff.Summary `json:"stats"`
}

// RevisionDiffResponse is returned by /v1/revisions/diff.
type RevisionDiffResponse struct {
	HTML  string       `json:"html"`
	Stats diff.Summary `json:"stats"`
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) error {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	res, err := s.memo.GetOrCompute(r.Context(), req.Scope, req.Text)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) error {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	res, err := s.memo.Extract(r.Context(), req.Scope, req.Text)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (s *Server) invalidate(w http.ResponseWriter, r *http.Request) error {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if err := s.memo.Invalidate(r.Context(), req.Scope, req.Text); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) diff(w http.ResponseWriter, r *http.Request) error {
	var req DiffRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	edits := diff.DiffOptions(req.Old, req.New, s.diffOpts)
	if edits == nil {
		edits = []diff.Edit{}
	}
	writeJSON(w, http.StatusOK, DiffResponse{
		HTML:  diff.Render(edits, diff.HTMLEscape),
		Edits: edits,
		Stats: diff.Stats(edits),
	})
	return nil
}

func (s *Server) revisionDiff(w http.ResponseWriter, r *http.Request) error {
	var req DiffRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	oldOut, err := s.memo.Render(ctx, req.Scope, req.Old)
	if err != nil {
		return err
	}
	newOut, err := s.memo.Render(ctx, req.Scope, req.New)
	if err != nil {
		return err
	}

	edits := diff.DiffOptions(oldOut, newOut, s.diffOpts)
	writeJSON(w, http.StatusOK, RevisionDiffResponse{
		HTML:  diff.Render(edits, diff.HTMLEscape),
		Stats: diff.Stats(edits),
	})
	return nil
}
