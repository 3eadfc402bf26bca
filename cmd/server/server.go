package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/config"
	"github.com/zucenko/tablemaze/game"
	"github.com/zucenko/tablemaze/server"
	"github.com/zucenko/tablemaze/storage"
)

type Server struct {
	router  *way.Router
	Machine *game.Machine
	Hub     *server.Hub
	Store   *storage.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := Server{Hub: server.NewHub(server.DefaultMaxViewers)}
	if cfg.DBPath != "" {
		if s.Store, err = storage.Open(cfg.DBPath); err != nil {
			log.Fatalf("storage: %v", err)
		}
		defer s.Store.Close()
	}

	gc := cfg.Game()
	gc.Renderer = s.Hub
	var tracker *server.Tracker
	if cfg.TrackerURL == "" {
		log.Printf("TRACKER_URL not set, observations only via %s", server.URI_OBSERVE)
		gc.Tracker = game.NewRecordingTracker()
	} else {
		tracker = server.NewTracker(server.TrackerConfig{
			URL:    cfg.TrackerURL,
			Width:  cfg.Maze.Width,
			Height: cfg.Maze.Height,
			OnConnect: func() {
				s.Machine.Post(game.Reset{})
			},
		}, func(ev game.Event) bool {
			return s.Machine.Post(ev)
		})
		gc.Tracker = tracker
	}

	if s.Machine, err = game.NewMachine(gc); err != nil {
		log.Fatalf("machine: %v", err)
	}
	s.Machine.OnChange(func(c game.Change) {
		log.Debugf("%s player %d", c.Kind.Name(), c.Player)
		if c.Kind != game.ChangeGameWon || c.Result == nil || s.Store == nil {
			return
		}
		if err := s.Store.Record(context.Background(), *c.Result); err != nil {
			log.Errorf("record game: %v", err)
		}
	})

	go s.Hub.Loop(ctx)
	go s.Machine.Run(ctx)
	if tracker != nil {
		go tracker.Run(ctx)
	} else if err := s.Machine.NewGame(); err != nil {
		log.Fatalf("new game: %v", err)
	}

	s.routes()
	log.Printf("Listening on port %s", cfg.Port)
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, s.router))
}
