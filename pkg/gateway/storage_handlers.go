package gateway

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/httputil"
	"github.com/montybasquiart/sihiri-build/pkg/logging"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

// StorageUploadRequest is the JSON alternative to a multipart upload
type StorageUploadRequest struct {
	Name string `json:"name,omitempty"`
	Data string `json:"data"` // Base64 encoded
}

// StorageUploadResponse represents the response from uploading content
type StorageUploadResponse struct {
	Cid  string `json:"cid"`
	URI  string `json:"uri"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// StoragePinRequest represents a request to pin a CID
type StoragePinRequest struct {
	Cid  string `json:"cid"`
	Name string `json:"name,omitempty"`
}

// MetadataRequest carries the fields of a metadata document to assemble
type MetadataRequest struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Image         string               `json:"image"`
	AnimationURL  string               `json:"animation_url,omitempty"`
	MediaType     metadata.MediaType   `json:"media_type"`
	Attributes    []metadata.Attribute `json:"attributes,omitempty"`
	Creator       string               `json:"creator"`
	License       string               `json:"license,omitempty"`
	MediaSpecific map[string]any       `json:"media_specific,omitempty"`
	Components    []metadata.Component `json:"components,omitempty"`
}

// MetadataResponse reports where an assembled document was stored
type MetadataResponse struct {
	Cid      string                `json:"cid"`
	URI      string                `json:"uri"`
	URL      string                `json:"url"`
	Metadata *metadata.NFTMetadata `json:"metadata"`
}

// storageUploadHandler handles POST /v1/storage/upload with either a
// multipart "file" field or a JSON body carrying base64 data.
func (g *Gateway) storageUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, g.cfg.MaxUploadSize+4096)

	var (
		data []byte
		name string
		err  error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			httputil.WriteErr(w, r, errors.NewValidationError("file", "failed to parse multipart form: "+err.Error()))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.WriteErr(w, r, errors.NewValidationError("file", "is required"))
			return
		}
		defer file.Close()

		name = header.Filename
		data, err = readAllLimited(file, g.cfg.MaxUploadSize)
		if err != nil {
			httputil.WriteErr(w, r, err)
			return
		}
	} else {
		var req StorageUploadRequest
		if err := httputil.DecodeJSONStrict(r, &req); err != nil {
			httputil.WriteErr(w, r, err)
			return
		}
		if !httputil.RequireNotEmpty(w, r, req.Data, "data") {
			return
		}
		data, err = httputil.DecodeBase64(req.Data)
		if err != nil {
			httputil.WriteErr(w, r, errors.NewValidationError("data", "is not valid base64"))
			return
		}
		if int64(len(data)) > g.cfg.MaxUploadSize {
			httputil.WriteErr(w, r, errors.NewValidationError("data", "exceeds the upload size limit"))
			return
		}
		name = req.Name
	}

	if name == "" {
		name = uuid.NewString()
	}

	id, err := g.deps.Storage.PutNamed(r.Context(), name, data)
	if err != nil {
		g.logger.ComponentError(logging.ComponentGateway, "failed to store upload", zap.Error(err))
		httputil.WriteErr(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StorageUploadResponse{
		Cid:  id.String(),
		URI:  id.URI(),
		URL:  g.deps.Storage.ResolveURL(id.String()),
		Name: name,
		Size: len(data),
	})
}

// storageMetadataHandler handles POST /v1/storage/metadata
func (g *Gateway) storageMetadataHandler(w http.ResponseWriter, r *http.Request) {
	var req MetadataRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	doc, err := g.assembler.Assemble(metadata.Fields{
		Name:          req.Name,
		Description:   req.Description,
		ImageCID:      req.Image,
		AnimationCID:  req.AnimationURL,
		MediaType:     req.MediaType,
		Attributes:    req.Attributes,
		Creator:       req.Creator,
		License:       req.License,
		MediaSpecific: req.MediaSpecific,
		Components:    req.Components,
	})
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	id, err := g.deps.Storage.PutJSON(r.Context(), doc)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, MetadataResponse{
		Cid:      id.String(),
		URI:      id.URI(),
		URL:      g.deps.Storage.ResolveURL(id.String()),
		Metadata: doc,
	})
}

// storagePinHandler handles POST /v1/storage/pin
func (g *Gateway) storagePinHandler(w http.ResponseWriter, r *http.Request) {
	var req StoragePinRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	id, err := storage.ParseCID(req.Cid)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	resp, err := g.deps.Storage.Pin(r.Context(), id.String(), req.Name)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// storageGetHandler handles GET /v1/storage/{cid} by fetching through the
// configured gateway.
func (g *Gateway) storageGetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := g.cidParam(w, r)
	if !ok {
		return
	}

	data, err := g.deps.Storage.Fetch(r.Context(), id.String())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// storageUnpinHandler handles DELETE /v1/storage/{cid}
func (g *Gateway) storageUnpinHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := g.cidParam(w, r)
	if !ok {
		return
	}
	if err := g.deps.Storage.Unpin(r.Context(), id.String()); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "cid": id.String()})
}

// storageURLHandler handles GET /v1/storage/{cid}/url. No existence check is
// made.
func (g *Gateway) storageURLHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := g.cidParam(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"cid": id.String(),
		"uri": id.URI(),
		"url": g.deps.Storage.ResolveURL(id.String()),
	})
}

// storageAvailableHandler handles GET /v1/storage/{cid}/available
func (g *Gateway) storageAvailableHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := g.cidParam(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"cid":       id.String(),
		"available": g.deps.Storage.IsAvailable(r.Context(), id.String()),
	})
}

// storageStatusHandler handles GET /v1/storage/{cid}/status
func (g *Gateway) storageStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := g.cidParam(w, r)
	if !ok {
		return
	}
	status, err := g.deps.Storage.PinStatus(r.Context(), id.String())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (g *Gateway) cidParam(w http.ResponseWriter, r *http.Request) (storage.CID, bool) {
	id, err := storage.ParseCID(chi.URLParam(r, "cid"))
	if err != nil {
		httputil.WriteErr(w, r, err)
		return "", false
	}
	return id, true
}
