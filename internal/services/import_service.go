package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"backoffice-service/internal/config"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/schema"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Subjects of the administrator notifications
const (
	SubjectImportError  = "Import Error"
	SubjectImportErrors = "Import Errors Occurred"
)

// MessageImportSucceeded is returned when a run finishes without errors
const MessageImportSucceeded = "Import completed successfully without errors."

// EmailDispatcher queues an e-mail for asynchronous delivery
type EmailDispatcher interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) (string, error)
}

// ImportSummary is the outcome of one import run
type ImportSummary struct {
	RunID    uuid.UUID `json:"runId"`
	FilePath string    `json:"filePath"`
	Message  string    `json:"message"`
	Created  int       `json:"created"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Errors   []string  `json:"errors,omitempty"`
	Fatal    bool      `json:"fatal"`
}

type recordOutcome int

const (
	outcomeCreated recordOutcome = iota
	outcomeSkipped
)

// ImportService loads an import document into the store
type ImportService struct {
	registry *schema.Registry
	store    repository.EntityRepositoryInterface
	runs     repository.ImportRunRepositoryInterface
	resolver *ForeignKeyResolver
	policy   *DuplicatePolicy
	mailer   EmailDispatcher
	cfg      config.ImportConfig
	fallback map[string]bool
	logger   *logrus.Entry
}

// NewImportService creates a new importer. runs may be nil when run history is not kept.
func NewImportService(
	registry *schema.Registry,
	store repository.EntityRepositoryInterface,
	runs repository.ImportRunRepositoryInterface,
	mailer EmailDispatcher,
	cfg config.ImportConfig,
	logger *logrus.Entry,
) *ImportService {
	fallback := make(map[string]bool, len(cfg.UniqueFallbackKinds))
	for _, kind := range cfg.UniqueFallbackKinds {
		fallback[strings.ToLower(kind)] = true
	}

	return &ImportService{
		registry: registry,
		store:    store,
		runs:     runs,
		resolver: NewForeignKeyResolver(registry, store, logger),
		policy:   NewDuplicatePolicy(store, logger),
		mailer:   mailer,
		cfg:      cfg,
		fallback: fallback,
		logger:   logger,
	}
}

// DefaultPath is the configured import file
func (s *ImportService) DefaultPath() string {
	return s.cfg.FilePath
}

// ImportFrom imports the document at path. Only an unreadable or malformed
// document stops the run; every other failure is collected in the summary
// and mailed to the administrator.
func (s *ImportService) ImportFrom(ctx context.Context, path string) *ImportSummary {
	if path == "" {
		path = s.cfg.FilePath
	}
	summary := &ImportSummary{FilePath: path}
	run := s.startRun(ctx, path)
	if run != nil {
		summary.RunID = run.ID
	}

	doc, err := schema.ReadDocumentFile(path)
	if err != nil {
		msg := fmt.Sprintf("failed to read file %s: %v", path, err)
		s.logger.WithField("path", path).Error(msg)
		s.notify(ctx, SubjectImportError, msg)

		summary.Message = msg
		summary.Fatal = true
		s.finishRun(ctx, run, summary, models.ImportRunFailed)
		return summary
	}

	s.logger.WithFields(logrus.Fields{
		"path":     path,
		"sections": len(doc.Sections),
		"records":  doc.RecordCount(),
	}).Info("Import started")

	report := &ImportReport{}
	for _, section := range doc.Sections {
		sc, err := s.registry.Lookup(section.Kind)
		if err != nil {
			line := fmt.Sprintf("model %q not found: %v", section.Kind, err)
			s.logger.WithField("known_kinds", s.registry.Kinds()).Error(line)
			report.Add(ReportEntry{Kind: section.Kind, Reason: err.Error(), Line: line})
			continue
		}

		for _, raw := range section.Records {
			outcome, rec, err := s.importRecord(ctx, sc, raw)
			if err != nil {
				snapshot := string(raw)
				if rec != nil {
					snapshot = rec.String()
				}
				line := fmt.Sprintf("failed to import record for model %q: %s. Error: %v", section.Kind, snapshot, err)
				s.logger.Error(line)
				report.Add(ReportEntry{Kind: section.Kind, Record: snapshot, Reason: err.Error(), Line: line})
				summary.Failed++
				continue
			}
			if outcome == outcomeSkipped {
				summary.Skipped++
			} else {
				summary.Created++
			}
		}
	}

	status := models.ImportRunCompleted
	if report.Len() > 0 {
		text := report.Text()
		s.notify(ctx, SubjectImportErrors, text)
		s.writeReport(report, summary.RunID)

		summary.Errors = report.Lines()
		summary.Message = "Import completed with errors:\n" + text
		status = models.ImportRunCompletedWithErrors
	} else {
		summary.Message = MessageImportSucceeded
	}

	s.logger.WithFields(logrus.Fields{
		"path":    path,
		"created": summary.Created,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info(summary.Message)

	s.finishRun(ctx, run, summary, status)
	return summary
}

// importRecord persists one record. rec is the record as far as it got
// through the pipeline, for the error report.
func (s *ImportService) importRecord(ctx context.Context, sc *schema.Schema, raw json.RawMessage) (outcome recordOutcome, rec schema.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	rec, err = schema.ParseRecord(raw)
	if err != nil {
		return outcome, nil, err
	}
	delete(rec, "id")

	skip, err := s.policy.ShouldSkip(ctx, sc, StageBeforeResolve, rec)
	if err != nil {
		return outcome, rec, err
	}
	if skip {
		return outcomeSkipped, rec, nil
	}

	rec = s.resolver.Resolve(ctx, sc, rec)

	skip, err = s.policy.ShouldSkip(ctx, sc, StageAfterResolve, rec)
	if err != nil {
		return outcome, rec, err
	}
	if skip {
		return outcomeSkipped, rec, nil
	}

	entity, err := sc.Build(rec)
	if err != nil {
		return outcome, rec, err
	}

	if err := s.store.Create(ctx, entity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && s.fallback[strings.ToLower(sc.Kind)] {
			s.logger.WithFields(logrus.Fields{
				"kind":   sc.Kind,
				"record": rec.String(),
			}).Info("Record already exists (unique constraint), skipping")
			return outcomeSkipped, rec, nil
		}
		return outcome, rec, err
	}
	return outcomeCreated, rec, nil
}

func (s *ImportService) notify(ctx context.Context, subject, body string) {
	if s.mailer == nil {
		return
	}
	if _, err := s.mailer.EnqueueEmail(ctx, s.cfg.AdminEmail, subject, body); err != nil {
		s.logger.WithError(err).WithField("subject", subject).Error("Failed to enqueue administrator email")
	}
}

func (s *ImportService) writeReport(report *ImportReport, runID uuid.UUID) {
	if s.cfg.ReportPath == "" {
		return
	}
	path := s.cfg.ReportPath
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		name := "import-errors.xlsx"
		if runID != uuid.Nil {
			name = fmt.Sprintf("import-errors-%s.xlsx", runID)
		}
		path = filepath.Join(path, name)
	}
	if err := report.WriteXLSX(path); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("Failed to write import error report")
		return
	}
	s.logger.WithField("path", path).Info("Import error report written")
}

func (s *ImportService) startRun(ctx context.Context, path string) *models.ImportRun {
	if s.runs == nil {
		return nil
	}
	run := &models.ImportRun{
		FilePath:  path,
		Status:    models.ImportRunRunning,
		StartedAt: time.Now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.WithError(err).Warn("Failed to record import run")
		return nil
	}
	return run
}

func (s *ImportService) finishRun(ctx context.Context, run *models.ImportRun, summary *ImportSummary, status models.ImportRunStatus) {
	if run == nil {
		return
	}
	finished := time.Now()
	run.Status = status
	run.CreatedCount = summary.Created
	run.SkippedCount = summary.Skipped
	run.FailedCount = summary.Failed
	run.Message = summary.Message
	run.FinishedAt = &finished
	if len(summary.Errors) > 0 {
		if data, err := json.Marshal(summary.Errors); err == nil {
			run.Errors = datatypes.JSON(data)
		}
	}
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to update import run")
	}
}
