package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/pdfrender"
	"github.com/abhisek/examforge/internal/pipeline"
	"github.com/abhisek/examforge/internal/qcm"
	"github.com/abhisek/examforge/internal/storage"
)

var generateCmd = &cobra.Command{
	Use:   "generate <lesson.pdf>",
	Short: "Generate an exam and its correction from a lesson PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		difficultyFlag, _ := cmd.Flags().GetString("difficulty")
		mode, _ := cmd.Flags().GetString("mode")
		noNone, _ := cmd.Flags().GetBool("no-none")
		outDir, _ := cmd.Flags().GetString("out")
		seed, _ := cmd.Flags().GetUint64("seed")
		printPDF, _ := cmd.Flags().GetBool("pdf")

		difficulty, err := qcm.ParseDifficulty(difficultyFlag)
		if err != nil {
			return err
		}
		answers, err := qcm.ParseAnswerMode(mode, !noNone)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read lesson: %w", err)
		}

		rt, err := buildRuntime(cmd, buildOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		qcmCfg := rt.cfg.QCM
		qcmCfg.Seed = seed
		rt.pipeline.Generator = qcm.New(rt.provider, qcmCfg)

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if printPDF {
			blobs, err := storage.NewFSStore(outDir)
			if err != nil {
				return err
			}
			rt.pipeline.Blobs = blobs
			if rt.pipeline.Renderer == nil {
				rt.pipeline.Renderer = pdfrender.NewChromium(rt.cfg.Print.Chromium, rt.cfg.Print.Timeout)
			}
		} else {
			rt.pipeline.Renderer = nil
		}

		res, err := rt.pipeline.NewSession(pipeline.SessionOptions{}).
			Run(cmd.Context(), "", data, pipeline.GenerateOptions{Difficulty: difficulty, Options: answers})
		if err != nil {
			return err
		}

		questions, err := json.MarshalIndent(res.Set, "", "  ")
		if err != nil {
			return err
		}
		files := map[string][]byte{
			"exam.html":       []byte(res.Documents.ExamHTML),
			"correction.html": []byte(res.Documents.CorrectionHTML),
			"questions.json":  questions,
		}
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(outDir, name), body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Exam %s: %d questions (%d received, %d duplicates)\n",
			res.ExamID, len(res.Set.Questions), res.Set.Received, res.Set.Duplicates)
		fmt.Fprintf(out, "  %s\n  %s\n", filepath.Join(outDir, "exam.html"), filepath.Join(outDir, "correction.html"))
		if res.Artifacts != nil {
			fmt.Fprintf(out, "  %s\n  %s\n",
				filepath.Join(outDir, filepath.FromSlash(res.Artifacts.QCMKey)),
				filepath.Join(outDir, filepath.FromSlash(res.Artifacts.CorrectionKey)))
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("difficulty", "d", "medium", "Exam difficulty: easy, medium or hard")
	generateCmd.Flags().StringP("mode", "m", "single", "Answer mode: single, multiple or mixed")
	generateCmd.Flags().Bool("no-none", false, "Never allow questions without a correct answer")
	generateCmd.Flags().StringP("out", "o", ".", "Output directory")
	generateCmd.Flags().Uint64("seed", 0, "Fix the answer shuffle (0 draws a fresh seed)")
	generateCmd.Flags().Bool("pdf", false, "Also print both documents to PDF")
}
