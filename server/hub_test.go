package server

import (
	"context"
	"encoding/gob"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/tablemaze/model"
)

func readSnapshot(t *testing.T, conn *websocket.Conn) model.Snapshot {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, r, err := conn.NextReader()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, messageType)
	var s model.Snapshot
	require.NoError(t, gob.NewDecoder(r).Decode(&s))
	return s
}

func startHub(t *testing.T, maxViewers int) (*Hub, string) {
	hub := NewHub(maxViewers)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Loop(ctx)
	srv := httptest.NewServer(hub.HandleHTTPCall())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubSendsLastAndNextSnapshots(t *testing.T) {
	hub, url := startHub(t, 2)

	hub.Redraw(model.Snapshot{Generation: 1, Phase: model.PhasePlacement, Width: 8, Height: 8})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readSnapshot(t, conn)
	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, model.PhasePlacement, first.Phase)

	hub.Redraw(model.Snapshot{
		Generation: 1,
		Phase:      model.PhasePlaying,
		Players:    []model.PlayerView{{Index: 0, State: model.Turn, Position: model.Position{X: 4, Y: 1}}},
	})
	second := readSnapshot(t, conn)
	assert.Equal(t, model.PhasePlaying, second.Phase)
	require.Len(t, second.Players, 1)
	assert.Equal(t, model.Turn, second.Players[0].State)
	assert.Equal(t, model.Position{X: 4, Y: 1}, second.Players[0].Position)
}

func TestHubRefusesViewersOverLimit(t *testing.T) {
	hub, url := startHub(t, 1)
	hub.Redraw(model.Snapshot{Generation: 3})

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	readSnapshot(t, first)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = second.NextReader()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "%v", err)
}

func TestResponseCodeToHttp(t *testing.T) {
	assert.Equal(t, HTTP_SUCCESS, FEED_READY.ToHttp())
	assert.Equal(t, HTTP_CONFLICT, FEED_FULL.ToHttp())
	assert.Equal(t, "PLAY", VS_PLAY.Name())
}

func TestFeedReceivesSnapshots(t *testing.T) {
	hub, url := startHub(t, 2)
	hub.Redraw(model.Snapshot{Generation: 7, Width: 8, Height: 8})

	feed := NewFeed(url)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	select {
	case s := <-feed.Snapshots:
		assert.Equal(t, uint64(7), s.Generation)
		assert.Equal(t, 8, s.Width)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot from feed")
	}
}

func TestFeedKeepsNewestSnapshot(t *testing.T) {
	feed := NewFeed("ws://unused")
	feed.offer(model.Snapshot{Generation: 1})
	feed.offer(model.Snapshot{Generation: 2})
	s := <-feed.Snapshots
	assert.Equal(t, uint64(2), s.Generation)
}
