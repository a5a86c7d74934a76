package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TaskQueue is the task client surface used by the handlers
type TaskQueue interface {
	EnqueueImport(ctx context.Context, filePath string) (string, error)
	EnqueueEmail(ctx context.Context, to, subject, body string) (string, error)
	Result(ctx context.Context, id string) (*models.TaskResult, error)
}

// ErrPathOutsideImportDir is returned for import files outside the import directory
var ErrPathOutsideImportDir = errors.New("filePath must be inside the import directory")

// TaskHandler triggers background tasks and reports on them
type TaskHandler struct {
	tasks     TaskQueue
	runs      repository.ImportRunRepositoryInterface
	importDir string
	logger    *logrus.Entry
}

// NewTaskHandler creates a new TaskHandler. Import files requested over the
// API must live under importDir.
func NewTaskHandler(tasks TaskQueue, runs repository.ImportRunRepositoryInterface, importDir string, logger *logrus.Entry) *TaskHandler {
	if abs, err := filepath.Abs(importDir); err == nil {
		importDir = abs
	}
	return &TaskHandler{tasks: tasks, runs: runs, importDir: importDir, logger: logger}
}

// resolveImportPath maps a requested file to an absolute path under the
// import directory. Relative paths are taken relative to it.
func (h *TaskHandler) resolveImportPath(requested string) (string, error) {
	if requested == "" {
		return "", nil
	}
	path := requested
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.importDir, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(h.importDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideImportDir
	}
	return path, nil
}

// StartImportRequest is the body of POST /imports
type StartImportRequest struct {
	FilePath string `json:"filePath"`
}

// SendEmailRequest is the body of POST /emails
type SendEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body"`
}

// StartImport queues an import of the configured or the given file
func (h *TaskHandler) StartImport(c *gin.Context) {
	var req StartImportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	path, err := h.resolveImportPath(req.FilePath)
	if err != nil {
		h.logger.WithField("file_path", req.FilePath).Warn("Rejected import outside the import directory")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID, err := h.tasks.EnqueueImport(c.Request.Context(), path)
	if err != nil {
		h.logger.WithError(err).Error("Failed to enqueue import")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue import"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"taskId": taskID,
		"status": models.TaskPending,
	})
}

// ListImports returns the most recent import runs
func (h *TaskHandler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list import runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  runs,
		"count": len(runs),
	})
}

// GetImport returns one import run
func (h *TaskHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import run id"})
		return
	}

	run, err := h.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "import run not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get import run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// SendEmail queues an e-mail
func (h *TaskHandler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID, err := h.tasks.EnqueueEmail(c.Request.Context(), req.To, req.Subject, req.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to enqueue email")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue email"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"taskId": taskID,
		"status": models.TaskPending,
	})
}

// GetTask returns the state of a task
func (h *TaskHandler) GetTask(c *gin.Context) {
	result, err := h.tasks.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get task result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, result)
}
