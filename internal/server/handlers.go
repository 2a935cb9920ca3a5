package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/graphscope/pkg/buildinfo"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// Default container size of a session created without one.
const (
	defaultWidth  = 1280
	defaultHeight = 720
)

type createRequest struct {
	Graph  *graph.Graph `json:"graph"`
	Width  float64      `json:"width,omitempty"`
	Height float64      `json:"height,omitempty"`
	// Layout overrides the configured layout provider.
	Layout string `json:"layout,omitempty"`
}

type viewportRequest struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Animated bool     `json:"animated,omitempty"`
}

type fitRequest struct {
	Animated bool `json:"animated,omitempty"`
}

type zoomRequest struct {
	Nodes []string `json:"nodes"`
}

type pointerRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Click bool    `json:"click,omitempty"`
}

// Snapshot is the settled state of a session.
type Snapshot struct {
	ID       string          `json:"id"`
	Layout   string          `json:"layout"`
	Nodes    int             `json:"nodes"`
	Links    int             `json:"links"`
	Size     geom.Size       `json:"size"`
	View     events.View     `json:"view"`
	Elements events.Elements `json:"elements"`
	Focus    events.Target   `json:"focus"`
}

func snapshot(id string, sc *scene.Scene) Snapshot {
	t := sc.Viewport().State()
	el, _ := sc.Density().Last()
	return Snapshot{
		ID:       id,
		Layout:   sc.LayoutName(),
		Nodes:    len(sc.NodeIDs()),
		Links:    len(sc.LinkIDs()),
		Size:     sc.Viewport().Size(),
		View:     events.View{X: t.X, Y: t.Y, Scale: t.Scale},
		Elements: el,
		Focus:    sc.HitTest().Focus(),
	}
}

// settle steps the scene until the layout has converged and the view has
// settled.
func settle(sc *scene.Scene) error {
	ok, err := sc.Converge(maxFrames)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeInternal, "scene did not settle within %d frames", maxFrames)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Graph == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request needs a graph"))
		return
	}
	if req.Width == 0 {
		req.Width = defaultWidth
	}
	if req.Height == 0 {
		req.Height = defaultHeight
	}
	if req.Width < 0 || req.Height < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "container size cannot be negative"))
		return
	}

	opts, err := scene.OptionsFromConfig(s.cfg, scene.FixedSize{W: req.Width, H: req.Height}, s.registry, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Layout != "" {
		opts.Layout = req.Layout
	}
	sc, err := scene.New(opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.start(r, sc, req.Graph); err != nil {
		sc.Destroy()
		s.writeError(w, r, err)
		return
	}
	sess, err := s.store.Add(sc)
	if err != nil {
		sc.Destroy()
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "layout", opts.Layout, "nodes", len(sc.NodeIDs()))
	writeJSON(w, http.StatusCreated, snapshot(sess.ID, sc))
}

func (s *Server) start(r *http.Request, sc *scene.Scene, g *graph.Graph) error {
	if err := sc.Load(r.Context(), g); err != nil {
		return err
	}
	if err := sc.Run(false); err != nil {
		return err
	}
	return settle(sc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q not found", id))
		return
	}
	s.logger.Info("session closed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// sessionHandler handles a request against a locked scene and returns the
// response body.
type sessionHandler func(r *http.Request, sess *Session, sc *scene.Scene) (any, error)

// withSession resolves {id}, locks its scene for the duration of h and
// writes the result.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := uuid.Parse(id); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q not found", id))
			return
		}
		sess, ok := s.store.Get(id)
		if !ok {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q not found", id))
			return
		}
		var body any
		live, err := sess.Do(func(sc *scene.Scene) error {
			var err error
			body, err = h(r, sess, sc)
			return err
		})
		if !live {
			s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q closed", id))
			return
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func (s *Server) handleSnapshot(_ *http.Request, sess *Session, sc *scene.Scene) (any, error) {
	return snapshot(sess.ID, sc), nil
}

func (s *Server) handleElements(_ *http.Request, _ *Session, sc *scene.Scene) (any, error) {
	el, ok := sc.Density().Last()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotLoaded, "visible set not computed yet")
	}
	return el, nil
}

func (s *Server) handleLabels(_ *http.Request, _ *Session, sc *scene.Scene) (any, error) {
	// Let running fades finish so the response shows resting opacities.
	for range maxFrames {
		if !sc.Labels().Fading() {
			break
		}
		if err := sc.Tick(scene.FrameInterval); err != nil {
			return nil, err
		}
	}
	labels := sc.Labels().Visible()
	if labels == nil {
		labels = []scene.Label{}
	}
	return labels, nil
}

func (s *Server) handleGraph(_ *http.Request, _ *Session, sc *scene.Scene) (any, error) {
	return sc.Graph(), nil
}

func (s *Server) handleViewport(r *http.Request, sess *Session, sc *scene.Scene) (any, error) {
	var req viewportRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	var translate *geom.Point
	if req.X != nil || req.Y != nil {
		p := sc.Viewport().State().Translate()
		if req.X != nil {
			p.X = *req.X
		}
		if req.Y != nil {
			p.Y = *req.Y
		}
		translate = &p
	}
	if req.Scale != nil && *req.Scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	if err := sc.Viewport().Transform(translate, req.Scale, req.Animated); err != nil {
		return nil, err
	}
	if err := settle(sc); err != nil {
		return nil, err
	}
	return snapshot(sess.ID, sc), nil
}

func (s *Server) handleFit(r *http.Request, sess *Session, sc *scene.Scene) (any, error) {
	var req fitRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := sc.Fit(req.Animated); err != nil {
		return nil, err
	}
	if err := settle(sc); err != nil {
		return nil, err
	}
	return snapshot(sess.ID, sc), nil
}

func (s *Server) handleZoom(r *http.Request, sess *Session, sc *scene.Scene) (any, error) {
	var req zoomRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if len(req.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "zoom needs at least one node")
	}
	if err := sc.Viewport().ZoomNodes(req.Nodes); err != nil {
		return nil, err
	}
	if err := settle(sc); err != nil {
		return nil, err
	}
	return snapshot(sess.ID, sc), nil
}

type pointerResponse struct {
	Focus   events.Target `json:"focus"`
	Clicked bool          `json:"clicked,omitempty"`
	Graph   geom.Point    `json:"graph"`
}

func (s *Server) handlePointer(r *http.Request, _ *Session, sc *scene.Scene) (any, error) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	p := geom.Pt(req.X, req.Y)
	resp := pointerResponse{Graph: sc.Viewport().ToGraph(p)}
	if req.Click {
		f, err := sc.HitTest().Click(p)
		if err != nil {
			return nil, err
		}
		resp.Focus, resp.Clicked = f, !f.IsZero()
		return resp, nil
	}
	resp.Focus = sc.HitTest().Sample(p)
	return resp, nil
}
