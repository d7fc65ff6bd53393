package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/oakwood-commons/treepick/internal/export"
	"github.com/oakwood-commons/treepick/internal/session"
	"github.com/oakwood-commons/treepick/pkg/loader"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

// uploadFields are the multipart field names accepted for a document.
var uploadFields = []string{"file", "prefab"}

type response struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Session  string `json:"session,omitempty"`
	Nodes    int    `json:"nodes,omitempty"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

func failure(msg string) response { return response{Success: false, Error: msg} }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": settings.VersionInformation.BuildVersion,
	})
}

func (s *Server) handleParse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	fh, err := uploadedFile(c)
	if err != nil {
		c.JSON(uploadStatus(err), failure(err.Error()))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		c.JSON(uploadStatus(err), failure(err.Error()))
		return
	}
	s.metrics.uploadBytes.Observe(float64(len(data)))

	doc, err := loader.Load(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, failure(fmt.Sprintf("parsing %s: %v", fh.Filename, err)))
		return
	}
	sess, err := session.New(doc, settings.Source{Kind: settings.SourceHTTP, Path: fh.Filename}, s.opts.Session, s.log)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, failure(err.Error()))
		return
	}
	stats := sess.Stats()
	s.metrics.nodes.Observe(float64(stats.Nodes))
	c.JSON(http.StatusOK, response{
		Success:  true,
		Filename: fh.Filename,
		Session:  sess.ID(),
		Nodes:    stats.Nodes,
		Data:     doc,
	})
}

func uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	var firstErr error
	for _, field := range uploadFields {
		fh, err := c.FormFile(field)
		if err == nil {
			return fh, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, err
		}
	}
	if errors.Is(firstErr, http.ErrMissingFile) {
		return nil, errors.New("no file received")
	}
	return nil, firstErr
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func uploadStatus(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// exportRequest carries a document and what to pick from it. Document is
// either any JSON value or a JSON string holding source text in any format
// the loader understands.
type exportRequest struct {
	Document           json.RawMessage `json:"document" binding:"required"`
	Select             []string        `json:"select"`
	JSONPath           []string        `json:"jsonpath"`
	Search             string          `json:"search"`
	Expression         bool            `json:"expression"`
	SelectMatched      bool            `json:"select_matched"`
	MatchKey           *bool           `json:"match_key"`
	MatchValue         *bool           `json:"match_value"`
	AutoSelectChildren *bool           `json:"auto_select_children"`
	Format             string          `json:"format" binding:"omitempty,oneof=json yaml yml tree"`
}

func (r exportRequest) source() []byte {
	var text string
	if err := json.Unmarshal(r.Document, &text); err == nil {
		return []byte(text)
	}
	return r.Document
}

func (r exportRequest) sessionOptions(base session.Options) session.Options {
	if r.MatchKey != nil {
		base.Search.MatchKey = *r.MatchKey
	}
	if r.MatchValue != nil {
		base.Search.MatchValue = *r.MatchValue
	}
	if r.AutoSelectChildren != nil {
		base.AutoSelectChildren = *r.AutoSelectChildren
	}
	return base
}

var contentTypes = map[session.Format]string{
	session.FormatJSON: "application/json; charset=utf-8",
	session.FormatYAML: "application/yaml; charset=utf-8",
	session.FormatTree: "text/plain; charset=utf-8",
}

func (s *Server) handleExport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(uploadStatus(err), failure(err.Error()))
		return
	}
	format, err := session.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}
	fail := func(code int, err error) {
		s.metrics.exports.WithLabelValues(string(format), "error").Inc()
		c.JSON(code, failure(err.Error()))
	}

	data := req.source()
	s.metrics.uploadBytes.Observe(float64(len(data)))
	doc, err := loader.Load(data)
	if err != nil {
		fail(http.StatusUnprocessableEntity, fmt.Errorf("parsing document: %w", err))
		return
	}
	sess, err := session.New(doc, settings.Source{Kind: settings.SourceHTTP}, req.sessionOptions(s.opts.Session), s.log)
	if err != nil {
		fail(http.StatusUnprocessableEntity, err)
		return
	}
	pick := session.Pick{
		Search:        req.Search,
		Expression:    req.Expression,
		SelectMatched: req.SelectMatched,
		Paths:         req.Select,
		JSONPath:      req.JSONPath,
	}
	if err := sess.Apply(pick); err != nil {
		fail(http.StatusBadRequest, err)
		return
	}
	out, err := sess.Render(format)
	if errors.Is(err, export.ErrNothingSelected) {
		s.metrics.exports.WithLabelValues(string(format), "empty").Inc()
		c.JSON(http.StatusUnprocessableEntity, failure(err.Error()))
		return
	}
	if err != nil {
		fail(http.StatusInternalServerError, err)
		return
	}
	s.metrics.exports.WithLabelValues(string(format), "ok").Inc()
	if format == session.FormatJSON {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.ExportFileName))
	}
	c.Data(http.StatusOK, contentTypes[format], out)
}
