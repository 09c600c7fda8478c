package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/choropleth-cli/internal/binding"
	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/KaramelBytes/choropleth-cli/internal/regions"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
)

var (
	errNotFound   = eris.New("not found")
	errBadRequest = eris.New("bad request")
)

// BindRequest carries a table as delimited text and the map either as SVG
// markup or as an explicit candidate list.
type BindRequest struct {
	Table        string    `json:"table"`
	TableName    string    `json:"tableName,omitempty"`
	Delimiter    string    `json:"delimiter,omitempty"`
	Geometry     string    `json:"geometry,omitempty"`
	Candidates   []string  `json:"candidates,omitempty"`
	RegionColumn string    `json:"regionColumn,omitempty"`
	ValueColumn  string    `json:"valueColumn,omitempty"`
	Scheme       string    `json:"scheme,omitempty"`
	Method       string    `json:"method,omitempty"`
	Buckets      int       `json:"buckets,omitempty"`
	Breaks       []float64 `json:"breaks,omitempty"`
}

// BindResponse is returned by bind and the session endpoints.
type BindResponse struct {
	SessionID  string                  `json:"sessionId,omitempty"`
	Validation *table.ValidationResult `json:"validation,omitempty"`
	Result     *binding.Result         `json:"result,omitempty"`
}

// SessionUpdate changes selected inputs of a session. Absent fields keep
// their value.
type SessionUpdate struct {
	RegionColumn *string   `json:"regionColumn,omitempty"`
	ValueColumn  *string   `json:"valueColumn,omitempty"`
	Scheme       *string   `json:"scheme,omitempty"`
	Method       *string   `json:"method,omitempty"`
	Buckets      *int      `json:"buckets,omitempty"`
	Breaks       []float64 `json:"breaks,omitempty"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	limit := s.cfg.MaxUploadBytes*2 + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return eris.Wrap(table.ErrFileTooLarge, "request body")
		}
		if errors.Is(err, io.EOF) {
			return eris.Wrap(errBadRequest, "empty request body")
		}
		return eris.Wrapf(errBadRequest, "decode request: %v", err)
	}
	return nil
}

func (s *Server) listSchemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.schemes.All())
}

func (s *Server) getScheme(w http.ResponseWriter, r *http.Request) {
	sc, err := s.schemes.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, eris.Wrap(errNotFound, err.Error()))
		return
	}
	n := s.cfg.DefaultBuckets
	if q := r.URL.Query().Get("buckets"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			writeError(w, eris.Wrapf(errBadRequest, "buckets must be a positive integer, got %q", q))
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scheme":   sc,
		"scale":    colorscale.Scale(sc, n),
		"gradient": colorscale.GradientStops(sc),
	})
}

func (s *Server) listMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classify.Methods())
}

func (s *Server) regionOptions() regions.Options {
	opt := regions.DefaultOptions()
	if len(s.cfg.Regions.ReservedPrefixes) > 0 {
		opt.ReservedPrefixes = s.cfg.Regions.ReservedPrefixes
	}
	return opt
}

func (s *Server) extractRegions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Geometry string `json:"geometry"`
	}
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"regions": regions.ExtractSVG(req.Geometry, s.regionOptions()),
	})
}

func (s *Server) matchNames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names      []string `json:"names"`
		Candidates []string `json:"candidates"`
		Geometry   string   `json:"geometry"`
	}
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	candidates := req.Candidates
	if len(candidates) == 0 && req.Geometry != "" {
		candidates = regions.ExtractSVG(req.Geometry, s.regionOptions())
	}
	res, err := match.New(candidates, s.cfg.Match).MatchAll(r.Context(), req.Names)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// input turns a request into binding input. A table that fails validation
// yields a nil input and the validation result.
func (s *Server) input(req BindRequest) (*binding.Input, *table.ValidationResult, error) {
	opt := table.DefaultOptions()
	opt.MaxBytes = s.cfg.MaxUploadBytes
	switch req.Delimiter {
	case "":
	case "tab", "\t":
		opt.Delimiter = '\t'
	default:
		runes := []rune(req.Delimiter)
		if len(runes) != 1 {
			return nil, nil, eris.Wrapf(errBadRequest, "unsupported delimiter %q", req.Delimiter)
		}
		opt.Delimiter = runes[0]
	}
	name := req.TableName
	if name == "" {
		name = "upload.csv"
	}
	t, vr, err := table.Parse(name, []byte(req.Table), opt)
	if err != nil {
		return nil, nil, err
	}
	if !vr.IsValid {
		return nil, &vr, nil
	}

	candidates := req.Candidates
	if len(candidates) == 0 {
		candidates = regions.ExtractSVG(req.Geometry, s.regionOptions())
	}
	regionCol, valueCol := req.RegionColumn, req.ValueColumn
	if regionCol == "" || valueCol == "" {
		gr, gv := t.GuessColumns()
		if regionCol == "" {
			regionCol = gr
		}
		if valueCol == "" {
			valueCol = gv
		}
	}
	schemeID := req.Scheme
	if schemeID == "" {
		schemeID = s.cfg.DefaultScheme
	}
	sc, err := s.schemes.Lookup(schemeID)
	if err != nil {
		return nil, &vr, err
	}
	method, err := s.method(req.Method, req.Breaks)
	if err != nil {
		return nil, &vr, err
	}
	buckets := req.Buckets
	if buckets == 0 {
		buckets = s.cfg.DefaultBuckets
	}
	return &binding.Input{
		Table:        t,
		Candidates:   candidates,
		RegionColumn: regionCol,
		ValueColumn:  valueCol,
		Scheme:       sc,
		Method:       method,
		Buckets:      buckets,
		ManualBreaks: req.Breaks,
		Match:        s.cfg.Match,
	}, &vr, nil
}

func (s *Server) method(id string, breaks []float64) (classify.Method, error) {
	if id == "" {
		id = s.cfg.DefaultMethod
		if len(breaks) > 0 {
			id = string(classify.Manual)
		}
	}
	return classify.ParseMethod(id)
}

func (s *Server) bind(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, vr, err := s.input(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if in == nil {
		writeJSON(w, http.StatusUnprocessableEntity, BindResponse{Validation: vr})
		return
	}
	res, err := binding.Bind(r.Context(), *in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BindResponse{Validation: vr, Result: res})
}

func (s *Server) session(r *http.Request) (*binding.Session, error) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, eris.Wrapf(errNotFound, "session %q", id)
	}
	return sess, nil
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, vr, err := s.input(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if in == nil {
		writeJSON(w, http.StatusUnprocessableEntity, BindResponse{Validation: vr})
		return
	}
	sess := binding.NewSession(*in)
	res, err := sess.Recompute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, BindResponse{SessionID: sess.ID, Validation: vr, Result: res})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BindResponse{SessionID: sess.ID, Result: sess.Result()})
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var up SessionUpdate
	if err := s.decode(w, r, &up); err != nil {
		writeError(w, err)
		return
	}

	var sc *colorscale.Scheme
	if up.Scheme != nil {
		v, err := s.schemes.Lookup(*up.Scheme)
		if err != nil {
			writeError(w, err)
			return
		}
		sc = &v
	}
	var m *classify.Method
	if up.Method != nil || len(up.Breaks) > 0 {
		id := ""
		if up.Method != nil {
			id = *up.Method
		}
		v, err := s.method(id, up.Breaks)
		if err != nil {
			writeError(w, err)
			return
		}
		m = &v
	}

	sess.Update(func(in *binding.Input) {
		if up.RegionColumn != nil {
			in.RegionColumn = *up.RegionColumn
		}
		if up.ValueColumn != nil {
			in.ValueColumn = *up.ValueColumn
		}
		if sc != nil {
			in.Scheme = *sc
		}
		if m != nil {
			in.Method = *m
		}
		if up.Buckets != nil {
			in.Buckets = *up.Buckets
		}
		if len(up.Breaks) > 0 {
			in.ManualBreaks = up.Breaks
		}
	})
	res, err := sess.Recompute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BindResponse{SessionID: sess.ID, Result: res})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, eris.Wrapf(errNotFound, "session %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res := sess.Result()
	if res == nil {
		writeError(w, eris.Wrap(errNotFound, "session has no result"))
		return
	}
	b, err := table.EncodeCSV(res.Augment(sess.Input().Table))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="choropleth-export.csv"`)
	_, _ = w.Write(b)
}
