package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"msku-service/internal/config"
	"msku-service/internal/fileio"
	"msku-service/internal/middleware"
	"msku-service/internal/resolve/catalog"
	"msku-service/internal/resolve/engine"
	"msku-service/internal/resolve/ingest"
	"msku-service/internal/resolve/model"
)

const (
	maxUploadFiles = 10
	maxBulkItems   = 10000
)

type Handler struct {
	cat      *catalog.Catalog
	cfg      config.Config
	log      zerolog.Logger
	validate *validator.Validate
}

func New(cat *catalog.Catalog, cfg config.Config, logger zerolog.Logger) *Handler {
	return &Handler{cat: cat, cfg: cfg, log: logger, validate: validator.New()}
}

type mappingRequest struct {
	SKU         string `json:"sku" validate:"required"`
	MSKU        string `json:"msku" validate:"required"`
	Marketplace string `json:"marketplace" validate:"required"`
}

type bulkRequest struct {
	Items []model.BulkItem `json:"items" validate:"required,max=10000"`
}

func (h *Handler) logger(r *http.Request) *zerolog.Logger {
	l := h.log.With().Str("rid", middleware.GetRequestID(r)).Logger()
	return &l
}

func (h *Handler) decodeMapping(w http.ResponseWriter, r *http.Request) (mappingRequest, bool) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	trim(&req.SKU, &req.MSKU, &req.Marketplace)
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return req, false
	}
	return req, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.cat.List(r.Context())
	if err != nil {
		h.logger(r).Error().Err(err).Msg("list mappings")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": recs})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.cat.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": rec})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMapping(w, r)
	if !ok {
		return
	}
	rec, err := h.cat.Create(r.Context(), req.SKU, req.MSKU, req.Marketplace)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			h.logger(r).Error().Err(err).Msg("create mapping")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "data": rec})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMapping(w, r)
	if !ok {
		return
	}
	rec, err := h.cat.Update(r.Context(), chi.URLParam(r, "id"), req.SKU, req.MSKU, req.Marketplace)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			h.logger(r).Error().Err(err).Msg("update mapping")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": rec})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cat.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			h.logger(r).Error().Err(err).Msg("delete mapping")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Mapping deleted successfully"})
}

// Resolve: GET /api/resolve?sku=&marketplace=
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sku, marketplace := q.Get("sku"), q.Get("marketplace")

	m, err := h.cat.GetMsku(sku, marketplace)
	if err != nil {
		status := statusOf(err)
		body := envelope{"success": false, "message": engine.Message(err)}
		if status == http.StatusNotFound {
			body["suggestions"] = h.cat.Suggest(sku)
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"msku":       m.MSKU,
		"matchType":  m.MatchType,
		"confidence": m.Confidence,
		"pattern":    m.Pattern,
	})
}

func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badBody(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("items must be a list of at most %d entries", maxBulkItems))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "report": h.cat.Bulk(req.Items)})
}

func (h *Handler) Patterns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": h.cat.Patterns()})
}

type fileResult struct {
	FileName string            `json:"fileName"`
	FileType fileio.FileType   `json:"fileType"`
	Success  bool              `json:"success"`
	RowCount int               `json:"rowCount"`
	Error    string            `json:"error,omitempty"`
	Report   *model.BulkReport `json:"report,omitempty"`
}

// Upload parses each file, extracts {sku, marketplace} candidates and
// resolves them. A broken file is reported, the rest still go through.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.logger(r)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, badBody(err))
		return
	}
	files := r.MultipartForm.File["files"]
	switch {
	case len(files) == 0:
		writeMessage(w, http.StatusBadRequest, "No files uploaded")
		return
	case len(files) > maxUploadFiles:
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("At most %d files per upload", maxUploadFiles))
		return
	}

	headerRow := atoi(r.FormValue("header_row"), 1)
	marketplace := r.FormValue("marketplace")
	if marketplace == "" {
		marketplace = h.cfg.DefaultMarketplace
	}

	cols := ingest.Columns{SKU: r.FormValue("sku_column"), Marketplace: r.FormValue("marketplace_column")}

	results := make([]fileResult, 0, len(files))
	for _, fh := range files {
		res := h.processUpload(fh, headerRow, cols, marketplace)
		if !res.Success {
			log.Warn().Str("file", fh.Filename).Str("error", res.Error).Msg("upload: file rejected")
		}
		results = append(results, res)
	}

	log.Info().Int("files", len(files)).Dur("elapsed", time.Since(start)).Msg("upload processed")
	writeJSON(w, http.StatusOK, envelope{"success": true, "files": results})
}

func (h *Handler) processUpload(fh *multipart.FileHeader, headerRow int, cols ingest.Columns, marketplace string) fileResult {
	ft := fileio.DetectType(fh.Filename, fh.Header.Get("Content-Type"))
	res := fileResult{FileName: fh.Filename, FileType: ft}
	if ft == fileio.TypeUnknown {
		res.Error = fmt.Sprintf("Unsupported file type: %s", fh.Filename)
		return res
	}

	rows, err := readUpload(fh, headerRow, ft)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	report := h.cat.Bulk(ingest.CandidatesWith(rows, cols, marketplace))
	res.Success = true
	res.RowCount = len(rows)
	res.Report = &report
	return res
}

// Sales: multipart "file" with order lines -> resolved lines + summary.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, badBody(err))
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	ft := fileio.DetectType(fh.Filename, fh.Header.Get("Content-Type"))
	if ft != fileio.TypeCSV && ft != fileio.TypeExcel {
		writeMessage(w, http.StatusBadRequest, "Unsupported file type")
		return
	}
	rows, err := readUpload(fh, atoi(r.FormValue("header_row"), 1), ft)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rep := ingest.Sales(rows, h.cat)
	h.logger(r).Info().
		Int("orders", rep.Summary.TotalOrders).
		Int("unmapped", rep.Summary.UnmappedSKUs).
		Msg("sales processed")
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": rep.Rows, "summary": rep.Summary})
}

func readUpload(fh *multipart.FileHeader, headerRow int, ft fileio.FileType) ([]map[string]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileio.ReadAnyMaps(f, readerName(fh.Filename, ft), headerRow)
}

func badBody(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return err
	}
	return engine.Errorf(engine.ErrInvalidArgument, "invalid request body: %v", err)
}
