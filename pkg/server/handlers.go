package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hicluster/pkg/buildinfo"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/render/nodelink"
	"github.com/matzehuels/hicluster/pkg/source"
	"github.com/matzehuels/hicluster/pkg/store"
)

type errorResponse struct {
	Code  hcerrors.Code `json:"code"`
	Error string        `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := hcerrors.HTTPStatus(err)
	if ctxErr := r.Context().Err(); ctxErr != nil && status == http.StatusInternalServerError {
		status = http.StatusGatewayTimeout
	}
	code := hcerrors.GetCode(err)
	if code == "" {
		code = hcerrors.ErrCodeInternal
	}
	msg := hcerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if code == hcerrors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

type chromosomeInfo struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	BinSize     int64   `json:"bin_size"`
	Normalized  bool    `json:"normalized"`
	Bins        int     `json:"bins,omitempty"`
	MaskedBins  int     `json:"masked_bins,omitempty"`
	DefinedFrac float64 `json:"defined_fraction,omitempty"`
}

func (s *Server) handleChromosomes(w http.ResponseWriter, _ *http.Request) {
	sess := s.cfg.Runner.Session
	chroms := sess.Chromosomes()
	out := make([]chromosomeInfo, 0, len(chroms))
	for _, c := range chroms {
		info := chromosomeInfo{Name: c, Label: source.ColumnLabel(c), BinSize: sess.BinSize()}
		if st, ok := sess.Stats(c); ok {
			info.Normalized = true
			info.Bins, info.MaskedBins, info.DefinedFrac = st.Bins, st.MaskedBins, st.DefinedFrac
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type scoreResponse struct {
	Chromosome string   `json:"chromosome"`
	Pos1       int64    `json:"pos1"`
	Pos2       int64    `json:"pos2"`
	Defined    bool     `json:"defined"`
	Score      *float64 `json:"score"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chrom := q.Get("chrom")
	if err := hcerrors.ValidateChromosomeName(chrom); err != nil {
		s.writeError(w, r, err)
		return
	}
	pos1, err1 := parsePosition(q.Get("pos1"))
	pos2, err2 := parsePosition(q.Get("pos2"))
	if err := firstError(err1, err2); err != nil {
		s.writeError(w, r, err)
		return
	}

	v, ok, err := s.cfg.Runner.Session.Score(r.Context(), chrom, pos1, pos2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := scoreResponse{Chromosome: source.NormalizeChromName(chrom), Pos1: pos1, Pos2: pos2, Defined: ok}
	if ok {
		resp.Score = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

type detectRequest struct {
	Samples     []string `json:"samples"`
	Chromosomes []string `json:"chromosomes"`
	// SizeThreshold of zero requests an uncapped search.
	SizeThreshold *int   `json:"size_threshold"`
	MinDistance   *int64 `json:"min_distance"`
	Refresh       bool   `json:"refresh"`
}

// maxDetectBody bounds the size of a detect request body.
const maxDetectBody = 1 << 20

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if r.ContentLength != 0 {
		body := http.MaxBytesReader(w, r.Body, maxDetectBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, r, hcerrors.New(hcerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
				return
			}
			s.writeError(w, r, hcerrors.Wrap(hcerrors.ErrCodeInvalidInput, err, "invalid request body"))
			return
		}
	}
	opts := s.cfg.Defaults
	if len(req.Samples) > 0 {
		opts.Samples = req.Samples
	}
	if len(req.Chromosomes) > 0 {
		opts.Chromosomes = req.Chromosomes
	}
	if req.SizeThreshold != nil {
		opts.SizeThreshold = *req.SizeThreshold
		opts.Uncapped = *req.SizeThreshold == 0
	}
	if req.MinDistance != nil {
		opts.MinDistance = *req.MinDistance
	}
	opts.Refresh = opts.Refresh || req.Refresh

	res, err := s.cfg.Runner.Detect(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Store.SaveRun(r.Context(), res); err != nil {
		s.writeError(w, r, fmt.Errorf("save run: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Store.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSampleClusters(w http.ResponseWriter, r *http.Request) {
	sample := chi.URLParam(r, "sample")
	if err := hcerrors.ValidateSampleID(sample); err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.cfg.Store.SampleClusters(r.Context(), sample)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []store.StoredRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sample, chrom := chi.URLParam(r, "sample"), chi.URLParam(r, "chrom")
	opts := s.cfg.Defaults
	if t := r.URL.Query().Get("size_threshold"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			s.writeError(w, r, hcerrors.New(hcerrors.ErrCodeInvalidInput, "invalid size_threshold %q", t))
			return
		}
		opts.SizeThreshold, opts.Uncapped = n, n == 0
	}

	u, err := s.cfg.Runner.Analyze(r.Context(), sample, chrom, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dot := nodelink.ToDOT(u.Graph, u.Vertices, u.Solve.Vertices, nodelink.Options{
		Title:    sample + " " + u.Chromosome,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, r, hcerrors.New(hcerrors.ErrCodeUnsupported, "unsupported graph format %q", format))
	}
}

func parsePosition(s string) (int64, error) {
	if s == "" {
		return 0, hcerrors.New(hcerrors.ErrCodeInvalidInput, "missing position")
	}
	p, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, hcerrors.New(hcerrors.ErrCodeInvalidInput, "invalid position %q", s)
	}
	return p, hcerrors.ValidatePosition(p)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
