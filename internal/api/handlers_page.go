package api

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dgallion1/slidedit/internal/editor"
	"github.com/dgallion1/slidedit/internal/record"
	"github.com/dgallion1/slidedit/internal/richtext"
	"github.com/dgallion1/slidedit/internal/schema"
)

const downloadFilename = "edited_slide.html"

type formField struct {
	Name      string
	Label     string
	Value     string
	MultiLine bool
}

type pageView struct {
	State      editor.Snapshot
	Title      formField
	LeftLabel  formField
	RightLabel formField
	Left       []formField
	Right      []formField
	Extra      []formField
	Target     string
	Message    string
	Error      string
	Guide      template.HTML
}

func (s *Server) buildPageView(snap editor.Snapshot, msg, errMsg string) pageView {
	sch := s.editor.Schema()
	field := func(name, label string) formField {
		return formField{
			Name:      name,
			Label:     label,
			Value:     snap.Fields[name],
			MultiLine: sch.MultiLine(name),
		}
	}

	v := pageView{
		State:      snap,
		Title:      field(schema.FieldTitle, "Title"),
		LeftLabel:  field(schema.FieldLeftLabel, "Left label"),
		RightLabel: field(schema.FieldRightLabel, "Right label"),
		Message:    msg,
		Error:      errMsg,
		Guide:      s.guide,
		Target:     string(schema.LangEN),
	}
	if snap.LabelLang == schema.LangEN {
		v.Target = string(schema.LangSL)
	}
	for i, topic := range schema.Topics {
		v.Left = append(v.Left, field(schema.SectionField(schema.Left, topic), "Left: "+snap.Labels.Left[i]))
		v.Right = append(v.Right, field(schema.SectionField(schema.Right, topic), "Right: "+snap.Labels.Right[i]))
	}
	if sch.Has(schema.FieldUserNotes) {
		v.Extra = append(v.Extra, field(schema.FieldUserNotes, snap.Labels.Notes))
	}
	if sch.Has(schema.FieldPageNumber) {
		v.Extra = append(v.Extra,
			field(schema.FieldPageNumber, "Page number"),
			field(schema.FieldFooterSummary, "Footer summary"),
		)
	}
	return v
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := s.buildPageView(s.editor.Snapshot(), q.Get("msg"), q.Get("err"))

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, view); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// handleForm applies the submitted field values, then runs the chosen action.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "invalid form: "+err.Error())
		return
	}

	action := r.PostForm.Get("action")
	if action != "clear" && action != "load" {
		partial := make(map[string]string)
		for _, name := range s.editor.Schema().Fields() {
			if vals, ok := r.PostForm[name]; ok && len(vals) > 0 {
				partial[name] = richtext.NormalizeNewlines(vals[0])
			}
		}
		s.editor.SetFields(partial)
	}

	switch action {
	case "", "apply":
		redirectMsg(w, r, "Preview updated")
	case "translate":
		target := schema.ParseLang(r.PostForm.Get("target"))
		if !target.Valid() {
			redirectErr(w, r, "choose sl or en")
			return
		}
		if err := s.editor.Translate(r.Context(), target); err != nil {
			redirectErr(w, r, err.Error())
			return
		}
		if !s.editor.Snapshot().CanTranslate {
			redirectMsg(w, r, "No translation service configured; headings switched to "+string(target))
			return
		}
		redirectMsg(w, r, "Translated to "+string(target))
	case "clear":
		s.editor.Clear()
		redirectMsg(w, r, "All fields cleared")
	case "save":
		if err := s.editor.Save(r.Context()); err != nil {
			redirectErr(w, r, "save failed: "+err.Error())
			return
		}
		redirectMsg(w, r, "Saved")
	case "load":
		if !s.editor.Load(r.Context()) {
			redirectErr(w, r, "no saved state")
			return
		}
		redirectMsg(w, r, "Saved state loaded")
	default:
		redirectErr(w, r, "unknown action "+action)
	}
}

func (s *Server) handlePageUpload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUpload(w, r, "file")
	if err != nil {
		redirectErr(w, r, err.Error())
		return
	}
	res, err := s.editor.Upload(data, filename)
	if err != nil {
		redirectErr(w, r, err.Error())
		return
	}
	if !res.Changed {
		redirectMsg(w, r, "Same file, edits kept")
		return
	}
	redirectMsg(w, r, "Loaded "+filename)
}

func (s *Server) handlePageImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		redirectErr(w, r, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("record")
	if err != nil {
		redirectErr(w, r, "record is required")
		return
	}
	defer file.Close()

	if err := s.editor.Import(file); err != nil {
		if !errors.Is(err, record.ErrInvalidRecord) {
			s.log.Error("import failed", "error", err)
		}
		redirectErr(w, r, "import failed: "+err.Error())
		return
	}
	redirectMsg(w, r, "Fields imported")
}

// handlePreview serves the edited slide for the preview frame. The sandbox
// policy keeps scripts in an uploaded slide from running in the editor origin.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.writeSlide(w, "")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.writeSlide(w, downloadFilename)
}

func (s *Server) writeSlide(w http.ResponseWriter, attachment string) {
	var buf bytes.Buffer
	if err := s.editor.Render(&buf); err != nil {
		s.log.Error("render slide", "error", err)
		http.Error(w, "failed to render slide", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "sandbox")
	if attachment != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+attachment+`"`)
	}
	buf.WriteTo(w)
}

func redirectMsg(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectErr(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?err="+url.QueryEscape(msg), http.StatusSeeOther)
}
