package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/buildinfo"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/cost"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// AdaptRequest adapts Template, or the corpus template named TemplateName,
// to Circuit.
type AdaptRequest struct {
	Template     *graph.Graph     `json:"template,omitempty"`
	TemplateName string           `json:"template_name,omitempty"`
	Circuit      *graph.Graph     `json:"circuit"`
	Costs        json.RawMessage  `json:"costs,omitempty"`
	Options      pipeline.Options `json:"options"`
}

// RankRequest ranks the corpus, or one collection of it, against Circuit.
type RankRequest struct {
	Circuit    *graph.Graph     `json:"circuit"`
	Collection string           `json:"collection,omitempty"`
	Costs      json.RawMessage  `json:"costs,omitempty"`
	Options    pipeline.Options `json:"options"`
}

// RankResponse lists the ranked templates, best first.
type RankResponse struct {
	Matches  []corpus.Match `json:"matches"`
	CacheHit bool           `json:"cache_hit"`
}

// PairRequest names two graphs, for /v1/distance and /v1/diff.
type PairRequest struct {
	From    *graph.Graph     `json:"from"`
	To      *graph.Graph     `json:"to"`
	Costs   json.RawMessage  `json:"costs,omitempty"`
	Options pipeline.Options `json:"options"`
}

// DistanceResponse is the heuristic distance between two graphs.
type DistanceResponse struct {
	Distance adapt.Distance `json:"distance"`
	CacheHit bool           `json:"cache_hit"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleAdapt(w http.ResponseWriter, r *http.Request) {
	var req AdaptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	circuit, err := toGraph("circuit", req.Circuit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var template *bpc.Graph
	switch {
	case req.Template != nil && req.TemplateName != "":
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "template and template_name are mutually exclusive"))
		return
	case req.TemplateName != "":
		if s.cfg.Corpus == nil {
			s.writeError(w, r, errNoCorpus)
			return
		}
		t, err := s.cfg.Corpus.Get(r.Context(), req.TemplateName)
		if err != nil {
			s.writeError(w, r, pipeline.Classify("load template", err))
			return
		}
		template = t.Graph
	default:
		if template, err = toGraph("template", req.Template); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	opts, err := requestOptions(req.Options, req.Costs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cfg.Runner.Adapt(r.Context(), template, circuit, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	circuit, err := toGraph("circuit", req.Circuit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	src, err := s.source(req.Collection)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := requestOptions(req.Options, req.Costs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, hit, err := s.cfg.Runner.Rank(r.Context(), circuit, src, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RankResponse{Matches: matches, CacheHit: hit})
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	from, to, opts, err := s.decodePair(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, hit, err := s.cfg.Runner.Distance(r.Context(), from, to, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DistanceResponse{Distance: d, CacheHit: hit})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	from, to, opts, err := s.decodePair(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cfg.Runner.Diff(r.Context(), from, to, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Corpus == nil {
		s.writeError(w, r, errNoCorpus)
		return
	}
	names, err := s.cfg.Corpus.Names(r.Context())
	if err != nil {
		s.writeError(w, r, pipeline.Classify("list templates", err))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"templates": names})
}

func (s *Server) handleTemplateGet(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Corpus == nil {
		s.writeError(w, r, errNoCorpus)
		return
	}
	name := chi.URLParam(r, "name")
	if err := errs.ValidateTemplateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.cfg.Corpus.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, pipeline.Classify("load template", err))
		return
	}
	data := graph.FromBPC(t.Graph)
	data.Name = t.Name
	writeJSON(w, http.StatusOK, data)
}

// =============================================================================
// Helpers
// =============================================================================

var errNoCorpus = errs.New(errs.ErrCodeInvalidInput, "server has no template corpus")

// source returns the corpus, or the named collection below CorpusRoot.
func (s *Server) source(collection string) (corpus.Source, error) {
	if collection == "" {
		if s.cfg.Corpus == nil {
			return nil, errNoCorpus
		}
		return s.cfg.Corpus, nil
	}
	if s.cfg.CorpusRoot == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "server does not serve collections")
	}
	if err := errs.ValidatePath(collection); err != nil {
		return nil, err
	}
	src, err := corpus.NewDirSource(filepath.Join(s.cfg.CorpusRoot, collection))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "collection %q", collection)
	}
	return src, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", maxErr.Limit)
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func (s *Server) decodePair(w http.ResponseWriter, r *http.Request) (from, to *bpc.Graph, opts pipeline.Options, err error) {
	var req PairRequest
	if err = s.decode(w, r, &req); err != nil {
		return
	}
	if from, err = toGraph("from", req.From); err != nil {
		return
	}
	if to, err = toGraph("to", req.To); err != nil {
		return
	}
	opts, err = requestOptions(req.Options, req.Costs)
	return
}

func toGraph(field string, g *graph.Graph) (*bpc.Graph, error) {
	if g == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s is required", field)
	}
	out, err := graph.ToBPC(*g)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "%s", field)
	}
	return out, nil
}

// requestOptions applies an optional cost config on top of the defaults.
// Keys missing from raw keep their default prices.
func requestOptions(opts pipeline.Options, raw json.RawMessage) (pipeline.Options, error) {
	if len(raw) == 0 {
		return opts, nil
	}
	cfg := cost.Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return opts, errs.Wrap(errs.ErrCodeInvalidCostConfig, err, "costs")
	}
	opts.Costs = cfg
	return opts, nil
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "route", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: errs.UserMessage(err)}})
}
