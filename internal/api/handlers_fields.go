package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/slidedit/internal/record"
	"github.com/dgallion1/slidedit/internal/schema"
)

const exportFilename = "fields_export.json"

func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handlePutFields(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var partial map[string]string
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		jsonError(w, "expected a JSON object of string fields: "+err.Error(), http.StatusBadRequest)
		return
	}
	ignored := s.editor.SetFields(partial)
	if ignored == nil {
		ignored = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ignored": ignored,
		"state":   s.editor.Snapshot(),
	})
}

type translateRequest struct {
	Target string `json:"target"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	target := schema.ParseLang(req.Target)
	if !target.Valid() {
		jsonError(w, "target must be sl or en", http.StatusBadRequest)
		return
	}
	if err := s.editor.Translate(r.Context(), target); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.editor.Clear()
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := s.editor.Import(r.Body); err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, record.ErrInvalidRecord) {
			status = http.StatusInternalServerError
		}
		jsonError(w, "import failed: "+err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	if err := s.editor.Export(w); err != nil {
		s.log.Error("export failed", "error", err)
	}
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Save(r.Context()); err != nil {
		// Saving is best effort; report it without failing the request.
		writeJSON(w, http.StatusOK, map[string]any{"saved": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

func (s *Server) handleLoadState(w http.ResponseWriter, r *http.Request) {
	found := s.editor.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"found": found,
		"state": s.editor.Snapshot(),
	})
}
