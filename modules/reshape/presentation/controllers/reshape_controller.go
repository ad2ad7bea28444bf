package controllers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-reshape/modules/reshape/presentation/viewmodels"
	"github.com/iota-uz/org-reshape/modules/reshape/services"
	"github.com/iota-uz/org-reshape/pkg/application"
	"github.com/iota-uz/org-reshape/pkg/httpapi"
	"github.com/iota-uz/org-reshape/pkg/middleware"
	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

const uploadField = "file"

type ReshapeController struct {
	basePath      string
	service       *services.ReshapeService
	logger        *logrus.Logger
	maxUploadSize int64
	previewRows   int
}

func NewReshapeController(
	service *services.ReshapeService,
	logger *logrus.Logger,
	maxUploadSize int64,
	previewRows int,
) application.Controller {
	return &ReshapeController{
		basePath:      "/api/reshape",
		service:       service,
		logger:        logger,
		maxUploadSize: maxUploadSize,
		previewRows:   previewRows,
	}
}

func (c *ReshapeController) Key() string {
	return c.basePath
}

func (c *ReshapeController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.Download).Methods(http.MethodPost)
	router.HandleFunc("/preview", c.Preview).Methods(http.MethodPost)
}

// Preview returns the head of the uploaded table and of the reshaped one.
func (c *ReshapeController) Preview(w http.ResponseWriter, r *http.Request) {
	res, name, ok := c.process(w, r)
	if !ok {
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.ReshapePreview{
		File:   name,
		Stats:  res.Stats,
		Input:  viewmodels.NewTablePreview(res.Input, c.previewRows),
		Output: viewmodels.NewTablePreview(res.Output, c.previewRows),
	})
}

// Download returns the reshaped table as a CSV attachment.
func (c *ReshapeController) Download(w http.ResponseWriter, r *http.Request) {
	res, _, ok := c.process(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, res.Output); err != nil {
		c.writeError(w, r, err)
		return
	}
	httpapi.SetAttachment(w, "text/csv; charset=utf-8", services.ProcessedFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (c *ReshapeController) process(w http.ResponseWriter, r *http.Request) (*services.Result, string, bool) {
	file, header, err := c.openUpload(w, r)
	if err != nil {
		c.writeError(w, r, err)
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	res, err := c.service.Process(r.Context(), header.Filename, file)
	if err != nil {
		c.writeError(w, r, err)
		return nil, "", false
	}
	return res, header.Filename, true
}

type uploadError struct {
	status int
	code   string
	err    error
}

func (e *uploadError) Error() string { return e.err.Error() }

func (c *ReshapeController) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	tooLargeErr := &uploadError{status: http.StatusRequestEntityTooLarge, code: httpapi.CodeUploadTooLarge, err: errors.New("uploaded file is too large")}
	if r.ContentLength > c.maxUploadSize {
		return nil, nil, tooLargeErr
	}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadSize)
	if err := r.ParseMultipartForm(c.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, tooLargeErr
		}
		return nil, nil, &uploadError{status: http.StatusBadRequest, code: httpapi.CodeInvalidUpload, err: errors.New("expected a multipart upload")}
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, nil, &uploadError{status: http.StatusBadRequest, code: httpapi.CodeInvalidUpload, err: errors.New("missing file field")}
	}
	return file, header, nil
}

func (c *ReshapeController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.UseRequestID(r.Context())

	var ue *uploadError
	if errors.As(err, &ue) {
		_ = httpapi.WriteError(w, ue.status, requestID, ue.code, ue.Error(), nil)
		return
	}
	var se *reshape.SchemaError
	if errors.As(err, &se) {
		meta := map[string]string{"kind": se.Kind.String()}
		if se.Column != "" {
			meta["column"] = se.Column
		}
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, requestID, httpapi.CodeSchemaMismatch, reshape.UserMessage(err), meta)
		return
	}
	var ie *tabular.IOError
	if errors.As(err, &ie) {
		_ = httpapi.WriteError(w, http.StatusBadRequest, requestID, httpapi.CodeUnreadableFile, reshape.UserMessage(err), nil)
		return
	}
	middleware.UseLogger(r.Context(), c.logger).WithError(err).Error("reshape request failed")
	_ = httpapi.WriteError(w, http.StatusInternalServerError, requestID, httpapi.CodeInternal, reshape.UserMessage(err), nil)
}
