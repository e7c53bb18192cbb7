// Package playground serves the interpreter over HTTP.
//
//	POST /run      body is the program text
//	GET  /healthz  liveness probe
//
// /run answers with JSON:
//
//	{
//	  "result": "7",
//	  "env": {"x": "3"},
//	  "diagnostics": [{"severity": "warning", "kind": "semantic", "line": 2, "message": "..."}],
//	  "iterations": 0,
//	  "cached": false
//	}
//
// Numbers are rendered as strings so that Inf and NaN survive the trip.
// result is null when no expression statement ran. A program stopped by an
// error diagnostic gets status 422 with the same body shape.
package playground

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/hassan/tinyscript/internal/config"
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/optimizer"
	"github.com/hassan/tinyscript/internal/parser"
	"github.com/hassan/tinyscript/internal/semantic"
)

// Response is the body of a /run answer.
type Response struct {
	Result      *string           `json:"result"`
	Env         map[string]string `json:"env"`
	Diagnostics []Diagnostic      `json:"diagnostics"`
	Iterations  int               `json:"iterations"`
	Cached      bool              `json:"cached"`
}

// Diagnostic is the wire form of a diag.Diagnostic.
type Diagnostic struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Line     int    `json:"line,omitempty"`
	Lexeme   string `json:"lexeme,omitempty"`
	Message  string `json:"message"`
}

func toWire(d *diag.Diagnostic) Diagnostic {
	return Diagnostic{
		Severity: d.Severity.String(),
		Kind:     d.Kind.String(),
		Line:     d.Line,
		Lexeme:   d.Lexeme,
		Message:  d.Message,
	}
}

// Server runs submitted programs with one fixed configuration.
type Server struct {
	cfg    *config.Config
	logger *log.Logger
	cache  *cache
	srv    *fasthttp.Server
}

// New returns a Server for cfg, which must have been validated. A nil
// logger means log.Default.
func New(cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		cache:  newCache(cfg.Playground.CacheSize),
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "tinyscript-playground",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: cfg.Playground.MaxBodyBytes,
	}
	return s
}

// ListenAndServe serves on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Starting playground on %q", s.cfg.Playground.Addr)
	return s.srv.ListenAndServe(s.cfg.Playground.Addr)
}

// Serve serves requests from ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown stops the server and waits for open requests to finish.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// Handler routes a single request.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		ctx.Success("text/plain", []byte("ok"))
	case "/run":
		if !ctx.IsPost() {
			ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}
		s.handleRun(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleRun(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	if len(body) > s.cfg.Playground.MaxBodyBytes {
		ctx.Error(fmt.Sprintf("program exceeds %d bytes", s.cfg.Playground.MaxBodyBytes),
			fasthttp.StatusRequestEntityTooLarge)
		return
	}

	resp, status, err := s.run(body)
	if err != nil {
		s.logger.Printf("playground: %v", err)
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	buf, err := json.Marshal(resp)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(buf)
}

// run compiles src, or fetches it from the cache, and evaluates it.
func (s *Server) run(src []byte) (*Response, int, error) {
	key := Digest(src)
	prog, cached := s.cache.get(key)
	if !cached {
		var err error
		prog, err = s.compile(string(src))
		if err != nil {
			return nil, 0, err
		}
		s.cache.put(key, prog)
	}

	resp := &Response{
		Env:         map[string]string{},
		Diagnostics: make([]Diagnostic, 0, len(prog.diags)),
		Cached:      cached,
	}
	for _, d := range prog.diags {
		resp.Diagnostics = append(resp.Diagnostics, toWire(d))
	}
	if prog.root == nil {
		return resp, fasthttp.StatusUnprocessableEntity, nil
	}

	ev := evaluator.New(nil, s.cfg.EvaluatorOptions()...)
	runErr := ev.Run(prog.root)

	for name, v := range ev.Env().Snapshot() {
		resp.Env[name] = evaluator.FormatNumber(v)
	}
	resp.Iterations = ev.Iterations()
	if v, ok := ev.Result(); ok {
		text := evaluator.FormatNumber(v)
		resp.Result = &text
	}
	if runErr != nil {
		d, ok := diag.As(runErr)
		if !ok {
			return nil, 0, runErr
		}
		resp.Diagnostics = append(resp.Diagnostics, toWire(d))
		return resp, fasthttp.StatusUnprocessableEntity, nil
	}
	return resp, fasthttp.StatusOK, nil
}

// compile runs every phase short of evaluation. Diagnostics stop the
// pipeline by leaving root nil; only internal failures return an error.
func (s *Server) compile(src string) (*compiled, error) {
	tokens, diags := lexer.Tokenize(src)
	if diags.HasErrors() {
		return &compiled{diags: diags.Drain()}, nil
	}

	root, err := parser.Parse(tokens)
	if err != nil {
		d, ok := diag.As(err)
		if !ok {
			return nil, err
		}
		diags.Report(d)
		return &compiled{diags: diags.Drain()}, nil
	}

	if s.cfg.Analyze {
		diags.Merge(semantic.Analyze(root))
	}
	if s.cfg.WarningsAsErrors {
		diags.PromoteWarnings()
	}
	if diags.HasErrors() {
		return &compiled{diags: diags.Drain()}, nil
	}

	if s.cfg.Optimize {
		if _, err := optimizer.Optimize(root, s.cfg.OptimizeRounds); err != nil {
			return nil, err
		}
	}
	return &compiled{root: root, diags: diags.Drain()}, nil
}
