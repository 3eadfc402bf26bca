package server

import (
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/model"
)

const feedRetryDelay = 2 * time.Second

// Feed is the renderer side of the Hub: it keeps a websocket to URI_WS open
// and hands every decoded snapshot to Snapshots, dropping the oldest one
// when the reader lags.
type Feed struct {
	URL       string
	Dialer    *websocket.Dialer
	Snapshots chan model.Snapshot
	log       *log.Entry
}

func NewFeed(url string) *Feed {
	return &Feed{
		URL:       url,
		Dialer:    websocket.DefaultDialer,
		Snapshots: make(chan model.Snapshot, 1),
		log:       log.WithField("component", "feed"),
	}
}

// Run reads snapshots until ctx is done, reconnecting after errors.
func (f *Feed) Run(ctx context.Context) {
	for {
		if err := f.read(ctx); err != nil {
			f.log.Warnf("Feed.Run %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(feedRetryDelay):
		}
	}
}

func (f *Feed) read(ctx context.Context) error {
	conn, _, err := f.Dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.URL, err)
	}
	defer conn.Close()
	f.log.Infof("Feed connected to %s", f.URL)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		messageType, r, err := conn.NextReader()
		if err != nil {
			return err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		var s model.Snapshot
		if err := gob.NewDecoder(r).Decode(&s); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		f.offer(s)
	}
}

func (f *Feed) offer(s model.Snapshot) {
	for {
		select {
		case f.Snapshots <- s:
			return
		default:
		}
		select {
		case <-f.Snapshots:
			f.log.Debug("Feed.Snapshots FULL, dropping older snapshot")
		default:
		}
	}
}
