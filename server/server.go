package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"astarviz/server/cell_views"
	"astarviz/server/fastview"
	"astarviz/server/root_view"
	"astarviz/session"

	"github.com/gorilla/mux"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves a single page and its websocket, plus the REST endpoints the
// page calls to edit the grid and drive searches. The ele-update channel has a
// single consumer, so one browser tab at a time receives live updates; a new
// tab gets the current grid when the index is rendered.
type Server struct {
	addr     string
	ctx      context.Context
	session  *session.Session
	rootView *root_view.RootView
	router   *mux.Router
	logger   *log.Logger
}

// NewServer initializes all of the views and routes and returns a server. Runs
// started through the server live until ctx is done.
func NewServer(
	ctx context.Context,
	addr string,
	sess *session.Session,
	logger *log.Logger,
) (*Server, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[server] ", log.LstdFlags)
	}

	rootView, err := root_view.NewRootView(ctx, sess.Frames())
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	server := &Server{
		addr:     addr,
		ctx:      ctx,
		session:  sess,
		rootView: rootView,
		logger:   logger,
	}
	server.router = server.routes()
	return server, nil
}

func (server *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/grid", server.getGrid).Methods(http.MethodGet)
	api.HandleFunc("/cells/{row:[0-9]+}/{col:[0-9]+}", server.paintCell).Methods(http.MethodPost)
	api.HandleFunc("/cells/{row:[0-9]+}/{col:[0-9]+}", server.eraseCell).Methods(http.MethodDelete)
	api.HandleFunc("/search", server.startSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/cancel", server.cancelSearch).Methods(http.MethodPost)
	api.HandleFunc("/clear", server.clearGrid).Methods(http.MethodPost)
	return router
}

// Handler returns the server's routes.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until the server's context is done, then shuts down.
func (server *Server) Serve() error {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.router,
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.Printf("listening on %s", server.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-server.ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveWebsocket publishes view updates to the client via websocket.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		server.logger.Println(err)
		return
	}

	if err := cli.Sync(); err != nil {
		server.logger.Println("websocket:", err)
	}
}

// Serve the index.html main page, rendered from the current frame.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	board := cell_views.Convert(server.session.Frame())
	if err := renderTemplate(w, server.rootView, board); err != nil {
		server.logger.Println("render index:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

func (server *Server) getGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.session.Frame())
}

// cellVars parses the row and col route vars.
func cellVars(r *http.Request) (row, col int, err error) {
	vars := mux.Vars(r)
	if row, err = strconv.Atoi(vars["row"]); err != nil {
		return
	}
	col, err = strconv.Atoi(vars["col"])
	return
}

func (server *Server) paintCell(w http.ResponseWriter, r *http.Request) {
	row, col, err := cellVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := server.session.Paint(row, col)
	if err != nil {
		server.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}

func (server *Server) eraseCell(w http.ResponseWriter, r *http.Request) {
	row, col, err := cellVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.session.Erase(row, col); err != nil {
		server.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) startSearch(w http.ResponseWriter, r *http.Request) {
	// The run outlives the request, so it is bound to the server's context.
	if err := server.session.Start(server.ctx); err != nil {
		server.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (server *Server) cancelSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": server.session.Cancel()})
}

func (server *Server) clearGrid(w http.ResponseWriter, r *http.Request) {
	if err := server.session.Clear(); err != nil {
		server.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps session errors onto http statuses.
func (server *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSearchRunning):
		status = http.StatusConflict
	case errors.Is(err, session.ErrMissingEndpoints):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrOutOfRange):
		status = http.StatusNotFound
	default:
		server.logger.Println(err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
