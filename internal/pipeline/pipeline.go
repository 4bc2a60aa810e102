// Package pipeline runs a lesson PDF through extraction, generation,
// rendering and printing as explicit session stages.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/examforge/internal/apierr"
	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/logger"
	"github.com/abhisek/examforge/internal/pdfrender"
	"github.com/abhisek/examforge/internal/pdftext"
	"github.com/abhisek/examforge/internal/qcm"
	"github.com/abhisek/examforge/internal/render"
	"github.com/abhisek/examforge/internal/storage"
	"github.com/abhisek/examforge/internal/textclean"
)

// ErrPrintDisabled is returned by Print when no renderer is configured.
var ErrPrintDisabled = pdfrender.ErrDisabled

// DefaultMaxUploadBytes caps lesson uploads.
const DefaultMaxUploadBytes = 20 << 20

// Artifact kinds accepted by OpenArtifact.
const (
	ArtifactExam       = "qcm"
	ArtifactCorrection = "correction"
)

// Pipeline holds the collaborators shared by every session.
type Pipeline struct {
	Extractor pdftext.Extractor
	Generator qcm.Generator
	// Renderer prints HTML to PDF. Nil disables printing.
	Renderer pdfrender.Renderer
	// Blobs stores printed PDFs. Required when Renderer is set.
	Blobs storage.BlobStore
	// Ledger gates Run and GenerateFor. Nil runs ungated.
	Ledger credits.Ledger
	Log    *logger.Logger

	MaxUploadBytes int64
	// CreditsPerExam is consumed by every successful Run. Zero means one.
	CreditsPerExam int64
}

// SessionOptions configures a new session.
type SessionOptions struct {
	// ExamID names the session's artifacts. Empty draws a new UUID.
	ExamID string
}

// Session is one exam being built. Each stage consumes only the output of
// the stage before it.
type Session struct {
	p      *Pipeline
	examID string
	log    *logger.Logger
}

// NewSession starts a session.
func (p *Pipeline) NewSession(opts SessionOptions) *Session {
	id := opts.ExamID
	if id == "" {
		id = uuid.NewString()
	}
	log := p.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Session{p: p, examID: id, log: log.With("exam_id", id)}
}

// ExamID is the identifier artifacts are stored under.
func (s *Session) ExamID() string { return s.examID }

// Extraction is the cleaned text of a lesson.
type Extraction struct {
	CleanedText string `json:"cleanedText"`
	PageCount   int    `json:"pageCount"`
	TextLength  int    `json:"textLength"`
}

// NewExtraction wraps text that was cleaned elsewhere, e.g. posted back by
// a client between stages.
func NewExtraction(cleaned string) Extraction {
	return Extraction{CleanedText: cleaned, TextLength: utf8.RuneCountInString(cleaned)}
}

// Extract reads the lesson text out of pdf and cleans it.
func (s *Session) Extract(ctx context.Context, pdf []byte) (Extraction, error) {
	limit := s.p.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	switch {
	case len(pdf) == 0:
		return Extraction{}, apierr.Input(apierr.CodeInputInvalid, "empty file")
	case int64(len(pdf)) > limit:
		return Extraction{}, apierr.Input(apierr.CodeInputInvalid,
			fmt.Sprintf("file exceeds %d MB", limit>>20))
	case !pdftext.IsPDF(pdf):
		return Extraction{}, apierr.Input(apierr.CodeInputInvalid, "file is not a PDF")
	}

	start := time.Now()
	res, err := s.p.Extractor.Extract(ctx, pdf)
	if err != nil {
		s.log.Warn("extraction failed", "extractor", s.p.Extractor.Name(), "error", err)
		return Extraction{}, fmt.Errorf("extract text: %w", err)
	}

	cleaned := textclean.Clean(res.Text)
	if cleaned == "" {
		return Extraction{}, fmt.Errorf("extract text: %w", pdftext.ErrEmptyOrUnreadable)
	}
	out := Extraction{
		CleanedText: cleaned,
		PageCount:   res.PageCount,
		TextLength:  utf8.RuneCountInString(cleaned),
	}
	s.log.Info("text extracted",
		"extractor", s.p.Extractor.Name(),
		"pages", out.PageCount,
		"raw_chars", utf8.RuneCountInString(res.Text),
		"clean_chars", out.TextLength,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// GenerateOptions are the exam settings chosen by the user.
type GenerateOptions struct {
	Difficulty qcm.Difficulty
	Options    qcm.AnswerOptions
}

// Generate produces the exam set for an extraction.
func (s *Session) Generate(ctx context.Context, ex Extraction, opts GenerateOptions) (qcm.ExamSet, error) {
	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = qcm.DifficultyMedium
	}

	start := time.Now()
	set, err := s.p.Generator.Generate(ctx, qcm.GenerateInput{
		Text:       ex.CleanedText,
		Difficulty: difficulty,
		Options:    opts.Options,
	})
	if err != nil {
		var short *qcm.ShortBatchError
		if errors.As(err, &short) {
			s.log.Warn("short batch", "produced", short.Produced, "target", short.Target)
		}
		return qcm.ExamSet{}, err
	}

	s.log.Info("questions generated",
		"questions", len(set.Questions),
		"received", set.Received,
		"duplicates", set.Duplicates,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return set, nil
}

// Render builds the exam and correction HTML documents.
func (s *Session) Render(ctx context.Context, set qcm.ExamSet) (render.Documents, error) {
	if err := ctx.Err(); err != nil {
		return render.Documents{}, err
	}
	if len(set.Questions) == 0 {
		return render.Documents{}, apierr.Input(apierr.CodeInputInvalid, "no questions to render")
	}
	docs, err := render.Render(set.Questions)
	if err != nil {
		return render.Documents{}, fmt.Errorf("render documents: %w", err)
	}
	return docs, nil
}

// Artifacts are the blob keys of a session's printed PDFs.
type Artifacts struct {
	ExamID        string `json:"examId"`
	QCMKey        string `json:"qcmKey"`
	CorrectionKey string `json:"correctionKey"`
}

// ArtifactKey is the blob key of an exam's document of the given kind.
func ArtifactKey(examID, kind string) string {
	return examID + "/" + kind + ".pdf"
}

// Print renders both documents to PDF and stores them.
func (s *Session) Print(ctx context.Context, docs render.Documents) (Artifacts, error) {
	if s.p.Renderer == nil {
		return Artifacts{}, ErrPrintDisabled
	}
	if s.p.Blobs == nil {
		return Artifacts{}, fmt.Errorf("print: no blob store configured")
	}

	start := time.Now()
	pdfs, err := pdfrender.RenderAll(ctx, s.p.Renderer, docs.ExamHTML, docs.CorrectionHTML)
	if err != nil {
		return Artifacts{}, err
	}

	art := Artifacts{
		ExamID:        s.examID,
		QCMKey:        ArtifactKey(s.examID, ArtifactExam),
		CorrectionKey: ArtifactKey(s.examID, ArtifactCorrection),
	}
	for i, key := range []string{art.QCMKey, art.CorrectionKey} {
		if _, err := s.p.Blobs.Put(ctx, key, bytes.NewReader(pdfs[i])); err != nil {
			return Artifacts{}, fmt.Errorf("store %s: %w", key, err)
		}
	}
	s.log.Info("documents printed",
		"exam_bytes", len(pdfs[0]),
		"correction_bytes", len(pdfs[1]),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return art, nil
}

// Result is the outcome of a full run.
type Result struct {
	ExamID    string
	Set       qcm.ExamSet
	Documents render.Documents
	// Artifacts is nil when printing is disabled.
	Artifacts *Artifacts
	// CreditsLeft is -1 for ungated runs.
	CreditsLeft int64
}

// Run executes every stage for email's upload. The caller must hold at
// least one credit; one is consumed only once the documents are rendered.
func (s *Session) Run(ctx context.Context, email string, pdf []byte, opts GenerateOptions) (*Result, error) {
	email, err := s.reserve(ctx, email)
	if err != nil {
		return nil, err
	}

	ex, err := s.Extract(ctx, pdf)
	if err != nil {
		return nil, err
	}
	set, err := s.Generate(ctx, ex, opts)
	if err != nil {
		return nil, err
	}
	docs, err := s.Render(ctx, set)
	if err != nil {
		return nil, err
	}

	res := &Result{ExamID: s.examID, Set: set, Documents: docs, CreditsLeft: -1}
	art, err := s.Print(ctx, docs)
	switch {
	case errors.Is(err, ErrPrintDisabled):
		s.log.Debug("printing disabled")
	case err != nil:
		return nil, err
	default:
		res.Artifacts = &art
	}

	if res.CreditsLeft, err = s.charge(ctx, email); err != nil {
		return nil, err
	}
	return res, nil
}

// GenerateFor is Generate behind the credit gate: email must hold enough
// credits and one exam's worth is consumed once the batch is accepted.
// CreditsLeft is -1 when the pipeline runs ungated.
func (s *Session) GenerateFor(ctx context.Context, email string, ex Extraction, opts GenerateOptions) (qcm.ExamSet, int64, error) {
	email, err := s.reserve(ctx, email)
	if err != nil {
		return qcm.ExamSet{}, 0, err
	}
	set, err := s.Generate(ctx, ex, opts)
	if err != nil {
		return qcm.ExamSet{}, 0, err
	}
	left, err := s.charge(ctx, email)
	if err != nil {
		return qcm.ExamSet{}, 0, err
	}
	return set, left, nil
}

// reserve normalizes email and checks its balance covers one exam. It is a
// no-op without a ledger.
func (s *Session) reserve(ctx context.Context, email string) (string, error) {
	ledger := s.p.Ledger
	if ledger == nil {
		return email, nil
	}
	normalized, err := credits.NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	balance, err := ledger.Balance(ctx, normalized)
	if err != nil {
		return "", err
	}
	if balance < s.cost() {
		s.log.Info("run refused", "email", normalized, "credits", balance)
		return "", fmt.Errorf("run exam: %w", credits.ErrInsufficientCredits)
	}
	return normalized, nil
}

// charge consumes one exam's worth of credits, referenced by the exam id.
func (s *Session) charge(ctx context.Context, email string) (int64, error) {
	ledger := s.p.Ledger
	if ledger == nil {
		return -1, nil
	}
	left, err := ledger.Consume(ctx, email, s.cost(), s.examID)
	if err != nil {
		return 0, fmt.Errorf("consume credit: %w", err)
	}
	s.log.Info("credit consumed", "email", email, "credits_left", left)
	return left, nil
}

func (s *Session) cost() int64 {
	if s.p.CreditsPerExam > 0 {
		return s.p.CreditsPerExam
	}
	return 1
}

// OpenArtifact opens a stored PDF. kind is ArtifactExam or ArtifactCorrection.
func (p *Pipeline) OpenArtifact(ctx context.Context, examID, kind string) (io.ReadCloser, error) {
	if kind != ArtifactExam && kind != ArtifactCorrection {
		return nil, apierr.Input(apierr.CodeTypeInvalid, "type must be qcm or correction")
	}
	if _, err := uuid.Parse(examID); err != nil {
		return nil, apierr.NotFound(apierr.CodeFileNotFound, "file not found")
	}
	if p.Blobs == nil {
		return nil, apierr.NotFound(apierr.CodeFileNotFound, "file not found")
	}
	rc, err := p.Blobs.Get(ctx, ArtifactKey(examID, kind))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound(apierr.CodeFileNotFound, "file not found")
	}
	return rc, err
}

// QuestionsFromRaw re-validates client-supplied questions. Every item must
// normalize; the first rejection fails the whole list.
func QuestionsFromRaw(raws []qcm.RawItem) ([]qcm.Question, error) {
	if len(raws) == 0 {
		return nil, apierr.Input(apierr.CodeInputInvalid, "questions must be a non-empty list")
	}
	out := make([]qcm.Question, 0, len(raws))
	for i, raw := range raws {
		q, rej := qcm.Normalize(raw)
		if rej != nil {
			return nil, apierr.Input(apierr.CodeInputInvalid, fmt.Sprintf("question %d: %s", i+1, rej.Error()))
		}
		out = append(out, q)
	}
	return out, nil
}
