package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/abhisek/examforge/internal/apierr"
	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/pipeline"
	"github.com/abhisek/examforge/internal/qcm"
)

const maxJSONBody = 4 << 20

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, nil)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Ready != nil {
		if err := s.Ready(r.Context()); err != nil {
			s.log.Warn("not ready", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "UNAVAILABLE"})
			return
		}
	}
	writeOK(w, nil)
}

// POST /api/extract-text
func (s *Server) extractText(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, s.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	ex, err := s.pipeline.NewSession(pipeline.SessionOptions{}).Extract(r.Context(), data)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeOK(w, map[string]any{
		"cleanedText": ex.CleanedText,
		"pageCount":   ex.PageCount,
		"textLength":  ex.TextLength,
	})
}

type generateRequest struct {
	// Email is required when credits are on.
	Email       string            `json:"email"`
	CleanedText string            `json:"cleanedText"`
	Difficulty  string            `json:"difficulty"`
	Options     qcm.AnswerOptions `json:"options"`
}

// POST /api/generate-qcm
func (s *Server) generateQCM(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	difficulty, err := qcm.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	sess := s.pipeline.NewSession(pipeline.SessionOptions{})
	set, left, err := sess.GenerateFor(r.Context(), req.Email, pipeline.NewExtraction(req.CleanedText),
		pipeline.GenerateOptions{Difficulty: difficulty, Options: req.Options})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	body := map[string]any{"data": set}
	if left >= 0 {
		body["creditsLeft"] = left
	}
	writeOK(w, body)
}

type generatePDFRequest struct {
	Questions []qcm.RawItem `json:"questions"`
}

// POST /api/generate-pdf
func (s *Server) generatePDF(w http.ResponseWriter, r *http.Request) {
	var req generatePDFRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	questions, err := pipeline.QuestionsFromRaw(req.Questions)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	sess := s.pipeline.NewSession(pipeline.SessionOptions{})
	docs, err := sess.Render(r.Context(), qcm.ExamSet{Questions: questions})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	body := map[string]any{
		"examId":         sess.ExamID(),
		"examHtml":       docs.ExamHTML,
		"correctionHtml": docs.CorrectionHTML,
		"files":          nil,
		"message":        "PDF generation is disabled; HTML documents returned",
	}
	art, err := sess.Print(r.Context(), docs)
	switch {
	case errors.Is(err, pipeline.ErrPrintDisabled):
	case err != nil:
		writeError(w, r, s.log, err)
		return
	default:
		body["files"] = downloadLinks(art.ExamID)
		body["message"] = "PDF files generated"
	}
	writeOK(w, body)
}

// GET /api/download/{examID}/{type}
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")
	kind := chi.URLParam(r, "type")

	rc, err := s.pipeline.OpenArtifact(r.Context(), examID, kind)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+"-"+examID+".pdf"))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("download interrupted", "exam_id", examID, "error", err)
	}
}

// POST /api/exams
func (s *Server) createExam(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, s.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	difficulty, err := qcm.ParseDifficulty(r.FormValue("difficulty"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	allowNone, _ := strconv.ParseBool(r.FormValue("allowNoCorrect"))
	opts, err := qcm.ParseAnswerMode(r.FormValue("mode"), allowNone)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	sess := s.pipeline.NewSession(pipeline.SessionOptions{})
	res, err := sess.Run(r.Context(), r.FormValue("email"), data,
		pipeline.GenerateOptions{Difficulty: difficulty, Options: opts})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	body := map[string]any{
		"examId":         res.ExamID,
		"questions":      res.Set.Questions,
		"examHtml":       res.Documents.ExamHTML,
		"correctionHtml": res.Documents.CorrectionHTML,
		"files":          nil,
	}
	if res.Artifacts != nil {
		body["files"] = downloadLinks(res.ExamID)
	}
	if res.CreditsLeft >= 0 {
		body["creditsLeft"] = res.CreditsLeft
	}
	writeOK(w, body)
}

// GET /api/credits/{email}
func (s *Server) creditBalance(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, r, s.log, apierr.NotFound(apierr.CodeNotFound, "credits are disabled"))
		return
	}
	email, err := credits.NormalizeEmail(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	balance, err := s.ledger.Balance(r.Context(), email)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeOK(w, map[string]any{"email": email, "credits": balance})
}

type packView struct {
	credits.Pack
	PerExam float64 `json:"perExam"`
}

// GET /api/packs
func (s *Server) listPacks(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeOK(w, map[string]any{"packs": []packView{}})
		return
	}
	packs := lo.Map(s.catalog.List(), func(p credits.Pack, _ int) packView {
		return packView{Pack: p, PerExam: p.PerExam()}
	})
	writeOK(w, map[string]any{"packs": packs})
}

// GET /api/checkout/{pack}
func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pack")
	if s.catalog == nil {
		writeError(w, r, s.log, apierr.NotFound(apierr.CodeNotFound, "no packs on sale"))
		return
	}
	pack, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, r, s.log, apierr.NotFound(apierr.CodeNotFound, fmt.Sprintf("unknown pack %q", id)))
		return
	}
	s.log.Info("checkout", "pack", pack.ID)
	http.Redirect(w, r, pack.PaymentURL, http.StatusFound)
}

func downloadLinks(examID string) map[string]string {
	return map[string]string{
		pipeline.ArtifactExam:       "/api/download/" + examID + "/" + pipeline.ArtifactExam,
		pipeline.ArtifactCorrection: "/api/download/" + examID + "/" + pipeline.ArtifactCorrection,
	}
}
