package file

import (
	"errors"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/radif/filegateway/internal/response"
	"github.com/radif/filegateway/internal/staging"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Handler holds HTTP handlers for the upload and download endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new file Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stages a single multipart file under uploads/{folderName} and relays it to the bucket under its original name. Re-uploading a name overwrites the stored object.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		plain
//	@Param			folderName	query		string	true	"Staging folder"
//	@Param			file		formData	file	true	"File to upload"
//	@Success		200			{string}	string	"File uploaded successfully"
//	@Failure		400			{string}	string	"No file uploaded"
//	@Failure		500			{string}	string	"Server error"
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	folder, err := staging.CleanSegment(r.URL.Query().Get("folderName"))
	if err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid folder name")
		return
	}

	part, err := filePart(r)
	if err != nil {
		response.Text(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer part.Close()

	filename, err := staging.CleanFilename(part.FileName())
	if err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u, err := h.svc.Upload(r.Context(), UploadRequest{
		Folder:      folder,
		Filename:    filename,
		ContentType: contentType,
		Body:        part,
	})
	if err != nil {
		log.Printf("rid=%s upload folder=%q file=%q: %v", chiMiddleware.GetReqID(r.Context()), folder, filename, err)
		response.Text(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.Printf("rid=%s uploaded %q (%d bytes) via %s", chiMiddleware.GetReqID(r.Context()), u.ObjectKey, u.SizeBytes, u.StagedName)
	response.Text(w, http.StatusOK, "File uploaded successfully")
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Streams the stored object back as an attachment.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			filename	path		string	true	"Object name"
//	@Success		200			{file}		binary
//	@Failure		400			{string}	string	"Invalid file name"
//	@Failure		404			{string}	string	"File not found"
//	@Failure		500			{string}	string	"Server error"
//	@Security		BearerAuth
//	@Router			/download/{filename} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	filename, err := filenameParam(r)
	if err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	info, body, err := h.svc.Download(r.Context(), filename)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.Text(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("rid=%s download %q: %v", chiMiddleware.GetReqID(r.Context()), filename, err)
		response.Text(w, http.StatusInternalServerError, "Server error")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	// Headers are already sent; a broken stream can only be logged.
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("rid=%s download %q: stream: %v", chiMiddleware.GetReqID(r.Context()), filename, err)
	}
}

// Recent godoc
//
//	@Summary		List recent uploads
//	@Description	Returns the most recent uploads recorded in the ledger. Only available when DATABASE_URL is set.
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of entries (default 50, max 500)"
//	@Success		200		{object}	response.Envelope{data=[]Upload}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Security		BearerAuth
//	@Router			/uploads [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	uploads, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrLedgerDisabled) {
			response.NotFound(w, "upload ledger disabled")
			return
		}
		log.Printf("rid=%s list uploads: %v", chiMiddleware.GetReqID(r.Context()), err)
		response.InternalError(w)
		return
	}
	if uploads == nil {
		uploads = []Upload{}
	}
	response.OK(w, uploads)
}

// filenameParam returns the decoded {filename} segment. chi matches on RawPath when
// the client escaped reserved characters, leaving the parameter encoded.
func filenameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(name)
		if err != nil {
			return "", staging.ErrInvalidName
		}
		name = decoded
	}
	return staging.CleanSegment(name)
}

// filePart advances the multipart body to the part named "file". Other parts are skipped.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrNoFile
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF or a malformed body: either way there is no file to take.
			return nil, ErrNoFile
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}
