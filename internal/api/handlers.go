package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ytget/downbad/internal/download"
)

const logPrefixAPI = "[API]"

// FolderOpener opens a folder in the system file manager
type FolderOpener func(path string) error

// Handler serves the control API over a download tracker
type Handler struct {
	downloads  download.Downloader
	openFolder FolderOpener
}

// NewHandler creates a handler. A nil opener makes the open route fail.
func NewHandler(d download.Downloader, opener FolderOpener) *Handler {
	return &Handler{
		downloads:  d,
		openFolder: opener,
	}
}

// submitRequest is the body of POST /api/downloads and /api/downloads/playlist
type submitRequest struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
	Video  bool   `json:"video"`
	Audio  bool   `json:"audio"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) GetDownloads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.downloads.List())
}

func (h *Handler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Printf("%s StartDownload: Invalid JSON: %v", logPrefixAPI, err)
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	rec, err := h.downloads.Submit(request.URL, request.Folder, request.Video, request.Audio)
	if err != nil {
		writeSubmitError(w, "StartDownload", err)
		return
	}

	log.Printf("%s StartDownload: Download added with ID: %s", logPrefixAPI, rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) StartPlaylistDownload(w http.ResponseWriter, r *http.Request) {
	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Printf("%s StartPlaylistDownload: Invalid JSON: %v", logPrefixAPI, err)
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	records, err := h.downloads.SubmitPlaylist(r.Context(), request.URL, request.Folder, request.Video, request.Audio)
	if err != nil {
		writeSubmitError(w, "StartPlaylistDownload", err)
		return
	}

	log.Printf("%s StartPlaylistDownload: %d downloads added", logPrefixAPI, len(records))
	writeJSON(w, http.StatusCreated, records)
}

func (h *Handler) GetDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := h.downloads.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errorResponse{Error: download.ErrRecordNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.downloads.Cancel(id); err != nil {
		if errors.Is(err, download.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("%s CancelDownload: %v", logPrefixAPI, err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	rec, ok := h.downloads.Get(id)
	if !ok {
		// Removed concurrently
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) DeleteDownload(w http.ResponseWriter, r *http.Request) {
	h.downloads.Remove(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OpenFolder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := h.downloads.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errorResponse{Error: download.ErrRecordNotFound.Error()})
		return
	}

	if h.openFolder == nil {
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "folder opener not available"})
		return
	}

	if err := h.openFolder(rec.Folder); err != nil {
		log.Printf("%s OpenFolder: Failed to open %s: %v", logPrefixAPI, rec.Folder, err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeSubmitError(w http.ResponseWriter, op string, err error) {
	var vErr *download.ValidationError
	if errors.As(err, &vErr) {
		log.Printf("%s %s: %v", logPrefixAPI, op, err)
		writeError(w, http.StatusBadRequest, errorResponse{Error: vErr.Error(), Field: vErr.Field})
		return
	}

	log.Printf("%s %s: Failed to add download: %v", logPrefixAPI, op, err)
	writeError(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("%s Failed to encode response: %v", logPrefixAPI, err)
	}
}
