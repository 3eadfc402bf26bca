package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/game"
	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

const (
	URI_WS         = "/play"
	URI_MAZE       = "/maze"
	URI_MAZE_TEXT  = "/maze/text"
	URI_REACHABLE  = "/players/:index/reachable"
	URI_OBSERVE    = "/players/:index/observe"
	URI_RESET      = "/reset"
	URI_RESULTS    = "/results"
	URI_HEALTH     = "/health"
	defaultResults = 20
)

// Machine is the part of game.Machine the API serves.
type Machine interface {
	Snapshot() model.Snapshot
	Grid() *model.Grid
	ReachablePositions(i int) []model.Position
	Subscription(i int) (game.Request, bool)
	Handle(ev game.Event) error
}

type ResultStore interface {
	Recent(ctx context.Context, limit int) ([]model.GameResult, error)
}

type API struct {
	Machine Machine
	Hub     *Hub
	Results ResultStore // Optional
	log     *log.Entry
}

func NewAPI(m Machine, hub *Hub, results ResultStore) *API {
	return &API{
		Machine: m,
		Hub:     hub,
		Results: results,
		log:     log.WithField("component", "api"),
	}
}

func (a *API) Routes() *way.Router {
	router := way.NewRouter()
	if a.Hub != nil {
		router.HandleFunc("GET", URI_WS, a.Hub.HandleHTTPCall())
	}
	router.HandleFunc("GET", URI_MAZE, a.handleMaze())
	router.HandleFunc("GET", URI_MAZE_TEXT, a.handleMazeText())
	router.HandleFunc("GET", URI_REACHABLE, a.handleReachable())
	router.HandleFunc("POST", URI_OBSERVE, a.handleObserve())
	router.HandleFunc("POST", URI_RESET, a.handleReset())
	router.HandleFunc("GET", URI_RESULTS, a.handleResults())
	router.HandleFunc("GET", URI_HEALTH, a.handleHealth())
	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Warnf("respond %v", err)
	}
}

func (a *API) fail(w http.ResponseWriter, status int, err error) {
	a.respond(w, status, errorResponse{Error: err.Error()})
}

func (a *API) handleMaze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, HTTP_SUCCESS, a.Machine.Snapshot())
	}
}

func (a *API) handleMazeText() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid := a.Machine.Grid()
		if grid == nil {
			a.fail(w, HTTP_NOT_FOUND, errors.New("no maze generated"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(HTTP_SUCCESS)
		w.Write([]byte(model.FormatGrid(grid)))
	}
}

func playerIndex(r *http.Request) (int, error) {
	return strconv.Atoi(way.Param(r.Context(), "index"))
}

func (a *API) handleReachable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := playerIndex(r)
		if err != nil {
			a.fail(w, HTTP_BAD_REQUEST, err)
			return
		}
		positions := a.Machine.ReachablePositions(i)
		if positions == nil {
			positions = []model.Position{}
		}
		a.respond(w, HTTP_SUCCESS, positions)
	}
}

type observeRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// handleObserve reports a token position by hand, for boards without a
// camera.
func (a *API) handleObserve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := playerIndex(r)
		if err != nil {
			a.fail(w, HTTP_BAD_REQUEST, err)
			return
		}
		var req observeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.fail(w, HTTP_BAD_REQUEST, err)
			return
		}
		sub, ok := a.Machine.Subscription(i)
		if !ok {
			a.fail(w, HTTP_CONFLICT, game.ErrStaleObservation)
			return
		}
		pos := model.Position{X: req.X, Y: req.Y}
		var ev game.Event = game.ObjectFound{Subscriber: sub.Subscriber, Position: pos}
		if sub.Kind == game.Moved {
			ev = game.ObjectMoved{Subscriber: sub.Subscriber, Position: pos, From: sub.From}
		}
		err = a.Machine.Handle(ev)
		switch {
		case err == nil:
			a.respond(w, HTTP_SUCCESS, a.Machine.Snapshot())
		case errors.Is(err, game.ErrInvalidMove):
			a.fail(w, HTTP_UNPROCESSABLE, err)
		case errors.Is(err, game.ErrStaleObservation):
			a.fail(w, HTTP_CONFLICT, err)
		default:
			a.fail(w, HTTP_BAD_REQUEST, err)
		}
	}
}

func (a *API) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.Machine.Handle(game.Reset{}); err != nil {
			status := HTTP_SERVER_ERR
			if errors.Is(err, maze.ErrConfiguration) {
				status = http.StatusInternalServerError
			}
			a.fail(w, status, err)
			return
		}
		a.respond(w, HTTP_SUCCESS, a.Machine.Snapshot())
	}
}

func (a *API) handleResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Results == nil {
			a.respond(w, HTTP_SUCCESS, []model.GameResult{})
			return
		}
		limit := defaultResults
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				a.fail(w, HTTP_BAD_REQUEST, errors.New("limit must be a positive number"))
				return
			}
			limit = n
		}
		results, err := a.Results.Recent(r.Context(), limit)
		if err != nil {
			a.fail(w, HTTP_SERVER_ERR, err)
			return
		}
		if results == nil {
			results = []model.GameResult{}
		}
		a.respond(w, HTTP_SUCCESS, results)
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
}

func (a *API) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := a.Machine.Snapshot()
		a.respond(w, HTTP_SUCCESS, healthResponse{Status: "ok", Phase: s.Phase.Name(), Generation: s.Generation})
	}
}
