// Package handler exposes the dataset endpoints: upload, inspection and
// archive loading.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/archive"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/common"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset/parser"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/storage"
)

const maxUploadBytes = 32 << 20 // 32 MiB

// DatasetHandler serves the dataset endpoints.
type DatasetHandler struct {
	state   *session.State
	uploads storage.Storage
	archive *archive.Store
	logger  *slog.Logger
}

// NewDatasetHandler constructs a new handler.
func NewDatasetHandler(state *session.State, uploads storage.Storage, arch *archive.Store, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{state: state, uploads: uploads, archive: arch, logger: logger}
}

type datasetInfo struct {
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload parses a multipart spreadsheet upload and makes it the active
// dataset. The raw file is kept in upload storage; a parse failure leaves the
// previous dataset in place.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	table, err := parser.Parse(header.Filename, bytes.NewReader(data))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "could not parse file: "+err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if _, err := h.uploads.Upload(r.Context(), header.Filename, contentType, bytes.NewReader(data)); err != nil {
		// The dataset is already parsed; losing the raw copy is not fatal.
		h.logger.Warn("failed to keep raw upload", slog.Any("error", err))
	}

	h.state.SetDataset(header.Filename, table)
	h.logger.Info("dataset uploaded",
		slog.String("name", header.Filename),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()),
	)

	common.RespondJSON(w, http.StatusCreated, h.info())
}

// Current returns metadata about the active dataset.
func (h *DatasetHandler) Current(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Dataset()
	if err != nil {
		common.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, datasetInfo{
		Name:       snap.Name,
		Rows:       snap.Table.NumRows(),
		Columns:    snap.Table.ColumnNames(),
		UploadedAt: snap.UploadedAt,
	})
}

// Summary returns the structural digest of the active dataset.
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Dataset()
	if err != nil {
		common.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"summary": dataset.Summarize(snap.Table),
	})
}

// LoadArchive makes the archived sales records the active dataset.
func (h *DatasetHandler) LoadArchive(w http.ResponseWriter, r *http.Request) {
	table, err := h.archive.Fetch(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, "failed to load archive: "+err.Error())
		return
	}
	if table.NumRows() == 0 {
		common.RespondError(w, http.StatusNotFound, "sales archive is empty")
		return
	}

	h.state.SetDataset("sales archive", table)
	common.RespondJSON(w, http.StatusOK, h.info())
}

// ListUploads returns metadata for every stored raw upload.
func (h *DatasetHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	files, err := h.uploads.List(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, "failed to list uploads: "+err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"uploads": files})
}

// DownloadUpload streams a stored raw upload back to the client.
func (h *DatasetHandler) DownloadUpload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid upload id")
		return
	}

	file, info, err := h.uploads.Download(r.Context(), id)
	if err != nil {
		common.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	defer file.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("failed to stream upload", slog.Any("error", err))
	}
}

// DeleteUpload removes a stored raw upload and its metadata.
func (h *DatasetHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid upload id")
		return
	}
	if err := h.uploads.Delete(r.Context(), id); err != nil {
		common.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *DatasetHandler) info() datasetInfo {
	snap, err := h.state.Dataset()
	if err != nil && errors.Is(err, session.ErrNoDataset) {
		return datasetInfo{}
	}
	return datasetInfo{
		Name:       snap.Name,
		Rows:       snap.Table.NumRows(),
		Columns:    snap.Table.ColumnNames(),
		UploadedAt: snap.UploadedAt,
	}
}
