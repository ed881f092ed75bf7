package interviews

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/analysis"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/prompts"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/services/generation"
)

const (
	dialogueMaxTokens = 3000
	xmlMaxTokens      = 4000
	analysisMaxTokens = 4000
)

// Service runs the interview pipeline for one stakeholder category:
// simulate the dialogue, format it as XML, and analyze the transcript.
type Service struct {
	interviews repositories.InterviewRepository
	analyses   repositories.AnalysisRepository
	gen        *generation.Service

	// scripts maps a category key to its parsed interview script. A
	// category with a script gets the scripted prompt, others the
	// freeform one.
	scripts map[string]string

	logger *zap.Logger
}

// NewService creates a new interview service
func NewService(
	interviewRepo repositories.InterviewRepository,
	analysisRepo repositories.AnalysisRepository,
	gen *generation.Service,
	scripts map[string]string,
	logger *zap.Logger,
) *Service {
	if scripts == nil {
		scripts = map[string]string{}
	}
	return &Service{
		interviews: interviewRepo,
		analyses:   analysisRepo,
		gen:        gen,
		scripts:    scripts,
		logger:     logger,
	}
}

// pairing couples an interview row with the personas on both sides of it
type pairing struct {
	interview   *models.Interview
	interviewer *models.Persona
	interviewee *models.Persona
}

// Conduct simulates all interviews for a category. Interviewers rotate
// round-robin over the interviewee list. Each interview is persisted
// as it progresses; a degraded generation completes the interview with
// placeholder content instead of failing it. Cancellation aborts the
// batch and returns an error; rows already persisted keep their state.
func (s *Service) Conduct(
	ctx context.Context,
	run *models.StudyRun,
	category string,
	interviewers []*models.Persona,
	interviewees []*models.Persona,
	opts generation.BatchOptions,
) ([]*models.Interview, error) {
	if len(interviewers) == 0 {
		return nil, fmt.Errorf("category %s: no interviewers", category)
	}
	if len(interviewees) == 0 {
		return nil, fmt.Errorf("category %s: no interviewees", category)
	}

	pairings := make([]*pairing, 0, len(interviewees))
	reqs := make([]*generation.Request, 0, len(interviewees))

	for i, interviewee := range interviewees {
		interviewer := interviewers[i%len(interviewers)]

		iv := models.NewInterview(run.ID, interviewer.ID, interviewee.ID, category, run.Provider, run.Model)
		if err := s.interviews.Create(ctx, iv); err != nil {
			return nil, err
		}
		iv.MarkAsProcessing()
		if err := s.interviews.Update(ctx, iv); err != nil {
			return nil, err
		}

		pairings = append(pairings, &pairing{
			interview:   iv,
			interviewer: interviewer,
			interviewee: interviewee,
		})
		reqs = append(reqs, &generation.Request{
			Model:     run.Model,
			Prompt:    s.dialoguePrompt(category, interviewer, interviewee),
			MaxTokens: dialogueMaxTokens,
		})
	}

	s.logger.Info("conducting interviews",
		zap.String("category", category),
		zap.Int("count", len(reqs)),
		zap.String("model", run.Model))

	results, err := s.gen.GenerateBatch(ctx, reqs, opts)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	for i, res := range results {
		p := pairings[i]
		p.interview.MarkAsCompleted(res.Text, "", res.Degraded, int(res.Latency.Milliseconds()))
		if res.Degraded {
			s.logger.Warn("interview degraded",
				zap.String("interview_id", p.interview.ID.String()),
				zap.String("interviewee", p.interviewee.Name),
				zap.String("error_kind", res.ErrKind))
		}
	}

	if err := s.formatXML(ctx, run, pairings, opts); err != nil {
		return nil, err
	}

	interviews := make([]*models.Interview, len(pairings))
	for i, p := range pairings {
		if err := s.interviews.Update(ctx, p.interview); err != nil {
			return nil, err
		}
		interviews[i] = p.interview
	}

	return interviews, nil
}

// formatXML converts completed transcripts into the archival XML shape.
// Degraded dialogues are skipped; there is nothing real to format. A
// degraded formatting call leaves XMLFormatted empty rather than
// storing a placeholder inside markup.
func (s *Service) formatXML(ctx context.Context, run *models.StudyRun, pairings []*pairing, opts generation.BatchOptions) error {
	var targets []*pairing
	var reqs []*generation.Request

	for _, p := range pairings {
		if p.interview.Degraded {
			continue
		}
		targets = append(targets, p)
		reqs = append(reqs, &generation.Request{
			Model: run.Model,
			Prompt: prompts.Render(prompts.XMLFormatting, map[string]string{
				"interview_id":     p.interview.ID.String(),
				"interviewer_name": p.interviewer.Name,
				"interviewer_role": personaRole(p.interviewer),
				"interviewee_name": p.interviewee.Name,
				"interviewee_role": personaRole(p.interviewee),
				"interview_text":   p.interview.RawTranscript,
			}),
			MaxTokens: xmlMaxTokens,
		})
	}

	if len(reqs) == 0 {
		return nil
	}

	results, err := s.gen.GenerateBatch(ctx, reqs, opts)
	if err != nil {
		return err
	}

	for i, res := range results {
		if res.Degraded {
			s.logger.Warn("xml formatting degraded, keeping raw transcript only",
				zap.String("interview_id", targets[i].interview.ID.String()),
				zap.String("error_kind", res.ErrKind))
			continue
		}
		targets[i].interview.XMLFormatted = res.Text
	}

	return nil
}

// Analyze produces a structured analysis per interview. Degraded
// interviews get a placeholder analysis so downstream counts line up
// one analysis per interview.
func (s *Service) Analyze(
	ctx context.Context,
	run *models.StudyRun,
	pairs []AnalysisInput,
	opts generation.BatchOptions,
) ([]*models.Analysis, error) {
	var targets []AnalysisInput
	var reqs []*generation.Request

	analyses := make(map[string]*models.Analysis, len(pairs))

	for _, in := range pairs {
		if in.Interview.Degraded {
			analyses[in.Interview.ID.String()] = models.NewPlaceholderAnalysis(
				in.Interview.ID, in.Interview.RawTranscript)
			continue
		}
		targets = append(targets, in)
		reqs = append(reqs, &generation.Request{
			Model: run.Model,
			Prompt: prompts.Render(prompts.InterviewAnalysis, map[string]string{
				"interviewer_name": in.InterviewerName,
				"interviewee_name": in.IntervieweeName,
				"category":         in.Interview.Category,
				"interview_text":   in.Interview.RawTranscript,
			}),
			MaxTokens: analysisMaxTokens,
		})
	}

	if len(reqs) > 0 {
		s.logger.Info("analyzing interviews",
			zap.Int("count", len(reqs)),
			zap.String("model", run.Model))

		results, err := s.gen.GenerateBatch(ctx, reqs, opts)
		if err != nil {
			return nil, err
		}

		for i, res := range results {
			iv := targets[i].Interview
			if res.Degraded {
				analyses[iv.ID.String()] = models.NewPlaceholderAnalysis(iv.ID, res.Text)
				continue
			}
			a := models.NewAnalysis(iv.ID, res.Text)
			sections := analysis.Split(res.Text)
			a.KeyPoints = sections.KeyPoints
			a.NotableQuotes = sections.NotableQuotes
			a.AIAttitudes = sections.AIAttitudes
			a.RQ1Insights = sections.RQ1Insights
			a.RQ2Insights = sections.RQ2Insights
			a.RQ3Insights = sections.RQ3Insights
			a.RQ4Insights = sections.RQ4Insights
			a.Contradictions = sections.Contradictions
			a.AuthenticityAssessment = sections.AuthenticityAssessment
			analyses[iv.ID.String()] = a
		}
	}

	out := make([]*models.Analysis, 0, len(pairs))
	for _, in := range pairs {
		a := analyses[in.Interview.ID.String()]
		if err := s.analyses.Create(ctx, a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

// AnalysisInput names the participants alongside the interview so the
// analysis prompt can reference them.
type AnalysisInput struct {
	Interview       *models.Interview
	InterviewerName string
	IntervieweeName string
}

// dialoguePrompt picks the scripted prompt when the category has a
// parsed script, the freeform prompt otherwise.
func (s *Service) dialoguePrompt(category string, interviewer, interviewee *models.Persona) string {
	vars := map[string]string{
		"interviewer_name": interviewer.Name,
		"interviewer_role": personaRole(interviewer),
		"interviewee_name": interviewee.Name,
		"interviewee_role": personaRole(interviewee),
		"category":         category,
	}

	if script, ok := s.scripts[category]; ok && script != "" {
		vars["script"] = script
		return prompts.Render(prompts.ScriptedInterviewGeneration, vars)
	}
	return prompts.Render(prompts.InterviewGeneration, vars)
}

// personaRole prefers the one-line position, falling back to the full
// background for generated personas that lack one.
func personaRole(p *models.Persona) string {
	if p.Position != "" {
		return p.Position
	}
	return p.Background
}
