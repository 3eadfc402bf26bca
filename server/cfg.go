package server

import (
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/zucenko/tablemaze/model"
)

const HTTP_SUCCESS = 200
const HTTP_BAD_REQUEST = 400
const HTTP_NOT_FOUND = 404
const HTTP_TIMEOUT = 408
const HTTP_CONFLICT = 409
const HTTP_UNPROCESSABLE = 422
const HTTP_SERVER_ERR = 503

type ResponseCode int

const (
	FEED_READY ResponseCode = iota
	FEED_FULL
	FEED_CLOSED
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case FEED_READY:
		return HTTP_SUCCESS
	case FEED_FULL:
		return HTTP_CONFLICT
	case FEED_CLOSED:
		return HTTP_SERVER_ERR
	default:
		panic(h)
	}
}

type ViewerState int

const (
	VS_NEW ViewerState = iota + 1
	VS_PLAY
	VS_ERR
)

func (vs ViewerState) Name() string {
	switch vs {
	case VS_NEW:
		return "NEW"
	case VS_PLAY:
		return "PLAY"
	case VS_ERR:
		return "ERR"
	default:
		return fmt.Sprintf("n/a:%d", vs)
	}
}

type ViewerConnectRequest struct {
	Con      *websocket.Conn
	Awaiting chan ViewerAwaiting
	Closed   chan struct{}
}

type ViewerAwaiting struct {
	ResponseCode ResponseCode
	Viewer       *Viewer
}

// Viewer is a renderer connected to the snapshot feed.
type Viewer struct {
	State  ViewerState
	Id     int
	Conn   *websocket.Conn
	Closed chan struct{}

	MessagesToSend   chan model.Snapshot
	DebugOutMessages int
}
