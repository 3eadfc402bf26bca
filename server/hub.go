package server

import (
	"context"
	"encoding/gob"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/model"
)

const (
	DefaultMaxViewers = 8
	hubTimeout        = 200 * time.Millisecond
)

// Hub fans snapshots out to connected renderers. Every snapshot is one gob
// encoded binary websocket message.
type Hub struct {
	Viewers         []*Viewer
	ConnectRequests chan ViewerConnectRequest
	Snapshots       chan model.Snapshot
	Errors          chan int
	Upgrader        *websocket.Upgrader
	MaxViewers      int

	last   *model.Snapshot
	nextId int
	log    *log.Entry
}

func NewHub(maxViewers int) *Hub {
	if maxViewers <= 0 {
		maxViewers = DefaultMaxViewers
	}
	return &Hub{
		Viewers:         make([]*Viewer, 0),
		ConnectRequests: make(chan ViewerConnectRequest),
		Snapshots:       make(chan model.Snapshot, 4),
		Errors:          make(chan int, maxViewers),
		Upgrader:        &websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		MaxViewers:      maxViewers,
		log:             log.WithField("component", "hub"),
	}
}

// Redraw queues a snapshot for every viewer.
func (h *Hub) Redraw(s model.Snapshot) {
	select {
	case h.Snapshots <- s:
	case <-time.After(hubTimeout):
		h.log.Warnf("Hub.Redraw generation %d TIMEOUTED", s.Generation)
	}
}

func (h *Hub) HandleHTTPCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.log.Printf("HandleHTTPCall - connection received")
		con, err := h.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Printf("HandleHTTPCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		awaiting := make(chan ViewerAwaiting, 1)
		closed := make(chan struct{})
		select {
		case h.ConnectRequests <- ViewerConnectRequest{Con: con, Awaiting: awaiting, Closed: closed}:
		case <-time.After(hubTimeout):
			h.log.Warn("HandleHTTPCall ConnectRequests TIMEOUTED")
			closeWith(con, websocket.CloseTryAgainLater, "busy")
			return
		}

		var va ViewerAwaiting
		select {
		case va = <-awaiting:
		case <-time.After(hubTimeout):
			h.log.Warn("HandleHTTPCall ViewerAwaiting TIMEOUTED")
			closeWith(con, websocket.CloseTryAgainLater, "busy")
			return
		}
		if va.ResponseCode != FEED_READY {
			h.log.Infof("HandleHTTPCall refused code:%d http:%d", va.ResponseCode, va.ResponseCode.ToHttp())
			closeWith(con, websocket.CloseTryAgainLater, "feed full")
			return
		}

		h.log.Infof("HandleHTTPCall viewer %d waits for close", va.Viewer.Id)
		<-closed
	}
}

func closeWith(con *websocket.Conn, code int, text string) {
	con.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func (h *Hub) Loop(ctx context.Context) {
	h.log.Printf("Hub.Loop starting")
	for {
		select {
		case <-ctx.Done():
			for _, v := range h.Viewers {
				v.State = VS_ERR
				close(v.Closed)
			}
			h.Viewers = nil
			h.log.Printf("Hub.Loop stopped")
			return
		case req := <-h.ConnectRequests:
			if len(h.Viewers) >= h.MaxViewers {
				req.Awaiting <- ViewerAwaiting{ResponseCode: FEED_FULL}
				continue
			}
			v := h.addViewer(req.Con, req.Closed)
			req.Awaiting <- ViewerAwaiting{ResponseCode: FEED_READY, Viewer: v}
			if h.last != nil {
				v.MessagesToSend <- *h.last
			}
		case s := <-h.Snapshots:
			h.last = &s
			for _, v := range h.Viewers {
				select {
				case v.MessagesToSend <- s:
				default:
					h.log.Warnf("Hub.Loop viewer %d MessagesToSend FULL", v.Id)
				}
			}
		case id := <-h.Errors:
			h.removeViewer(id)
		}
	}
}

func (h *Hub) addViewer(conn *websocket.Conn, closed chan struct{}) *Viewer {
	h.nextId++
	v := &Viewer{
		State:          VS_NEW,
		Id:             h.nextId,
		Conn:           conn,
		Closed:         closed,
		MessagesToSend: make(chan model.Snapshot, 10),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	go v.LoopChannelRead(h.Errors)
	go v.LoopChannelWrite(h.Errors)
	v.State = VS_PLAY
	h.Viewers = append(h.Viewers, v)
	h.log.Infof("Hub.addViewer %d, %d connected", v.Id, len(h.Viewers))
	return v
}

func (h *Hub) removeViewer(id int) {
	for i, v := range h.Viewers {
		if v.Id != id {
			continue
		}
		v.State = VS_ERR
		close(v.Closed)
		h.Viewers = append(h.Viewers[:i], h.Viewers[i+1:]...)
		h.log.Infof("Hub.removeViewer %d, %d connected", id, len(h.Viewers))
		return
	}
}

// LoopChannelRead only watches for the socket going away; renderers do not
// talk back.
func (v *Viewer) LoopChannelRead(errs chan<- int) {
	for {
		if _, _, err := v.Conn.NextReader(); err != nil {
			log.Debugf("Viewer.LoopChannelRead %d ended %v", v.Id, err)
			break
		}
	}
	select {
	case errs <- v.Id:
	case <-v.Closed:
	}
}

// this function only consumes. no worries about full buffer stuck
func (v *Viewer) LoopChannelWrite(errs chan<- int) {
loop:
	for {
		select {
		case <-v.Closed:
			break loop
		case mes := <-v.MessagesToSend:
			w, err := v.Conn.NextWriter(websocket.BinaryMessage)
			if err != nil {
				log.Warnf("Viewer.LoopChannelWrite cant get writer %v", err)
				v.fail(errs)
				break loop
			}
			if err := gob.NewEncoder(w).Encode(mes); err != nil {
				log.Warnf("Viewer.LoopChannelWrite cant encode %v", err)
				v.fail(errs)
				break loop
			}
			if err := w.Close(); err != nil {
				log.Warnf("Viewer.LoopChannelWrite cant flush %v", err)
				v.fail(errs)
				break loop
			}
			v.DebugOutMessages++
		}
	}
}

func (v *Viewer) fail(errs chan<- int) {
	select {
	case errs <- v.Id:
	case <-v.Closed:
	}
}
