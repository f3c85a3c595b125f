package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/report"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.config.Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *Server) categoriesBody() gin.H {
	set := s.session.Categories()
	return gin.H{
		"categories": set.Labels(),
		"sentinel":   set.Sentinel(),
		"assignable": set.Assignable(),
	}
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.categoriesBody())
}

type categoriesRequest struct {
	Categories []string `json:"categories"`
}

func (s *Server) replaceCategories(c *gin.Context) {
	var req categoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetCategories(c.Request.Context(), req.Categories); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.categoriesBody())
}

func (s *Server) listRules(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"rules": s.session.Rules()})
}

type ruleRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

func (s *Server) upsertRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.session.UpsertRule(c.Request.Context(), req.Keyword, req.Category)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved": saved,
		"rules": s.session.Rules(),
	})
}

type rulesRequest struct {
	Rules []model.Rule `json:"rules"`
}

func (s *Server) replaceRules(c *gin.Context) {
	var req rulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.ReplaceRules(c.Request.Context(), req.Rules); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": s.session.Rules()})
}

func (s *Server) deleteRule(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		badRequest(c, errors.New("keyword is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.session.DeleteRule(c.Request.Context(), keyword)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"rules":   s.session.Rules(),
	})
}

func (s *Server) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, fmt.Errorf("expected multipart form: %w", err))
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		badRequest(c, errors.New("no files uploaded"))
		return
	}

	files, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := s.loader.LoadAll(c.Request.Context(), files)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":   err.Error(),
			"skipped": result.Skipped,
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	suggestion, err := s.session.Stage(result.Table)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":            suggestion.Columns,
		"description_column": suggestion.Description,
		"amount_column":      suggestion.Amount,
		"rows":               suggestion.Rows,
		"skipped":            result.Skipped,
	})
}

func openUploads(headers []*multipart.FileHeader) ([]ingest.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, ingest.File{Reader: f, Name: fh.Filename})
	}
	return files, closeAll, nil
}

type analyzeRequest struct {
	DescriptionColumn string `json:"description_column" binding:"required"`
	AmountColumn      string `json:"amount_column" binding:"required"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.session.Analyze(c.Request.Context(), req.DescriptionColumn, req.AmountColumn)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": rows,
		"summary":      s.session.Summary(),
	})
}

func (s *Server) listTransactions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.session.Rows()
	if c.Query("unclassified") == "true" {
		rows = s.session.Unclassified()
	}
	if rows == nil {
		rows = []model.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

func (s *Server) setTransactionCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.session.SetRowCategory(c.Request.Context(), c.Param("id"), req.Category)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": row})
}

type reclassifyRequest struct {
	Force bool `json:"force"`
}

func (s *Server) reclassify(c *gin.Context) {
	var req reclassifyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.session.Reclassify(c.Request.Context(), req.Force)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"changed": changed,
		"summary": s.session.Summary(),
	})
}

func (s *Server) summary(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.session.Summary()
	body := gin.H{
		"summary": summary,
		"visible": summary.Visible(),
	}
	if summary.UnclassifiedCount > 0 {
		body["warning"] = fmt.Sprintf("%d unclassified transactions (%d)",
			summary.UnclassifiedCount, summary.UnclassifiedAmount)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) downloadReport(c *gin.Context) {
	lang := c.DefaultQuery("lang", s.config.Language)

	s.mu.Lock()
	doc, err := report.Build(s.session.Rows(), s.session.Summary(), lang)
	s.mu.Unlock()
	if err != nil {
		badRequest(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, doc); err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(doc.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type resetRequest struct {
	All bool `json:"all"`
}

func (s *Server) reset(c *gin.Context) {
	var req resetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Reset(c.Request.Context(), req.All); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true, "all": req.All})
}
