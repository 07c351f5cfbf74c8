package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/karina-jasmin/quran-collate/pkg/kit"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/source"
	"github.com/karina-jasmin/quran-collate/pkg/transform"
)

// maxSegmentBody bounds the JSON body of a segment request.
const maxSegmentBody = 64 * 1024

// NewRouter returns an http.Handler with all transformation API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	logged := func(name string, e kit.Endpoint) kit.Endpoint {
		return kit.Logging(svc.logger, name)(e)
	}
	h := &handler{
		transform:  logged("transform", svc.transformEndpoint()),
		segment:    logged("segment", svc.segmentEndpoint()),
		listTables: svc.listTablesEndpoint(),
		listRuns:   svc.listRunsEndpoint(),
		getRun:     svc.getRunEndpoint(),
		svc:        svc,
	}

	mux.HandleFunc("POST /v1/transform/plain", h.handleTransform(transform.ModePlain))
	mux.HandleFunc("POST /v1/transform/tei", h.handleTransform(transform.ModeFull))
	mux.HandleFunc("POST /v1/segment", h.handleSegment)
	mux.HandleFunc("GET /v1/tables", h.handleListTables)
	mux.HandleFunc("GET /v1/runs", h.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", h.handleGetRun)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(kit.RequestID(kit.AccessLog(svc.logger)(mux)))
}

type handler struct {
	transform  kit.Endpoint
	segment    kit.Endpoint
	listTables kit.Endpoint
	listRuns   kit.Endpoint
	getRun     kit.Endpoint
	svc        *Service
}

// --- transform ---

// httpTransformRequest is the JSON form of a transform request. A body of
// any other content type is the transcription itself, with the options in
// the query string.
type httpTransformRequest struct {
	Input  string `json:"input"`
	Name   string `json:"name,omitempty"`
	Tables string `json:"tables,omitempty"`
	Vowels *bool  `json:"vowels,omitempty"`
}

func (h *handler) handleTransform(mode transform.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, source.MaxSize)
		req := &transformReq{Mode: mode, Vowels: true}

		if isJSON(r) {
			var body httpTransformRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			req.Input, req.Name, req.Tables = []byte(body.Input), body.Name, body.Tables
			if body.Vowels != nil {
				req.Vowels = *body.Vowels
			}
		} else {
			data, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, "transcription too large")
				return
			}
			q := r.URL.Query()
			req.Input, req.Name, req.Tables = data, q.Get("name"), q.Get("tables")
			if v := q.Get("vowels"); v != "" {
				b, err := strconv.ParseBool(v)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid vowels parameter")
					return
				}
				req.Vowels = b
			}
		}

		resp, err := h.transform(r.Context(), req)
		if err != nil {
			writeEndpointError(w, err)
			return
		}
		out := resp.(transformResponse)
		if r.URL.Query().Get("format") == "raw" {
			writeRaw(w, mode, out)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeRaw(w http.ResponseWriter, mode transform.Mode, out transformResponse) {
	ct := "text/plain; charset=utf-8"
	if mode == transform.ModeFull {
		ct = "application/xml; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	if out.RunID != "" {
		w.Header().Set("X-Run-ID", out.RunID)
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out.Output)
}

// --- segment ---

type httpSegmentRequest struct {
	Tables    string `json:"tables,omitempty"`
	Ordinal   string `json:"n"`
	Text      string `json:"text"`
	Uncertain bool   `json:"uncertain,omitempty"`
}

func (h *handler) handleSegment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSegmentBody)
	var body httpSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.segment(r.Context(), &segmentReq{
		Tables: body.Tables,
		Word:   segment.Word{Ordinal: body.Ordinal, Text: body.Text, Uncertain: body.Uncertain},
	})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- tables ---

func (h *handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listTables(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- runs ---

func (h *handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	resp, err := h.listRuns(r.Context(), &runsReq{Limit: limit})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status string `json:"status"`
	Tables int    `json:"tables"`
	Ledger bool   `json:"ledger"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Tables: h.svc.reg.SetCount(),
		Ledger: h.svc.ledger != nil,
	})
}

// --- helpers ---

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeEndpointError(w http.ResponseWriter, err error) {
	code, body := describeError(err)
	writeJSON(w, code, body)
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+kit.RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", kit.RequestIDHeader+", X-Run-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
