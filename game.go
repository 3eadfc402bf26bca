// Command tablemaze is the projector: it draws the maze, the players and
// their reachable cells onto the table from the snapshots the server feeds.
package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zucenko/tablemaze/config"
	"github.com/zucenko/tablemaze/model"
	"github.com/zucenko/tablemaze/server"
)

const (
	screenWidth  = 1280
	screenHeight = 860
	statusHeight = 60
	fadeSeconds  = 1.2
	pulseSeconds = 0.4
	frameSeconds = float32(1) / 60
)

func HexToF32(u uint32) GameColor {
	b := float64(0xff&u) / 255
	g := float64(0xff&(u>>8)) / 255
	r := float64(0xff&(u>>16)) / 255
	return GameColor{r, g, b}
}

type GameColor struct {
	r, g, b float64
}

func (c GameColor) RGBA(alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(c.r * alpha * 255),
		G: uint8(c.g * alpha * 255),
		B: uint8(c.b * alpha * 255),
		A: uint8(alpha * 255),
	}
}

var (
	COLOR_FLOOR    = HexToF32(0x202020)
	COLOR_BORDER   = HexToF32(0x050505)
	COLOR_WALL     = HexToF32(0xdddddd)
	COLOR_TREASURE = HexToF32(0xedbc1e)
)

var PLAYER_COLORS = []GameColor{
	HexToF32(0xfa3636),
	HexToF32(0x0abd38),
	HexToF32(0x34fbf6),
	HexToF32(0xcb18dd),
}

type Game struct {
	Snapshot *model.Snapshot
	Feed     *server.Feed
	Tweens   map[*gween.Tween]Action
	Frame    *Nine
	alpha    float64 // maze layer fade
	showAll  bool    // reachable sets of idle players too

	treasureScale float64
}

var Font font.Face

func init() {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatal(err)
	}
	const dpi = 72
	Font = truetype.NewFace(tt, &truetype.Options{
		Size:    28,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

func NewGame(feed *server.Feed) (*Game, error) {
	frame, err := NewNine(24, 8)
	if err != nil {
		return nil, err
	}
	return &Game{
		Feed:   feed,
		Tweens: make(map[*gween.Tween]Action),
		Frame:  frame,
		alpha:  1,

		treasureScale: 1,
	}, nil
}

// receive takes the newest snapshot, fading the maze in when a new
// generation arrives.
func (g *Game) receive() {
	select {
	case s := <-g.Feed.Snapshots:
		if g.Snapshot == nil || g.Snapshot.Generation != s.Generation {
			g.fadeIn()
		} else if s.Phase == model.PhaseWon && g.Snapshot.Phase != model.PhaseWon {
			g.pulse(3)
		}
		g.Snapshot = &s
	default:
	}
}

func (g *Game) fadeIn() {
	t := gween.New(0, 1, fadeSeconds, ease.OutQuad)
	a := Action{onChange: func(v float32) { g.alpha = float64(v) }}
	a.addOnFinish(func() { g.alpha = 1 })
	g.alpha = 0
	g.Tweens[t] = a
}

func (g *Game) updateTweens() {
	for t, a := range g.Tweens {
		curr, finished := t.Update(frameSeconds)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			for _, next := range a.nexts {
				next(g)
			}
			delete(g.Tweens, t)
		}
	}
}

// cellSize fits the board into the area above the status line.
func (g *Game) cellSize() float64 {
	s := g.Snapshot
	w := float64(screenWidth) / float64(s.Width)
	h := float64(screenHeight-statusHeight) / float64(s.Height)
	if w < h {
		return w
	}
	return h
}

func (g *Game) update(screen *ebiten.Image) error {
	g.receive()
	g.updateTweens()

	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.showAll = !g.showAll
	}

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	if err := screen.Fill(color.Black); err != nil {
		log.Printf("%v", err)
	}
	if g.Snapshot == nil {
		ebitenutil.DebugPrintAt(screen, "waiting for "+g.Feed.URL, 10, 10)
		return nil
	}

	g.drawBoard(screen)
	g.drawStatus(screen)
	return nil
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	s := g.Snapshot
	size := g.cellSize()
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			fx, fy := float64(x)*size, float64(y)*size
			c := COLOR_FLOOR
			if s.TileAt(x, y, nil) == model.BlackTileIndex {
				c = COLOR_BORDER
			}
			ebitenutil.DrawRect(screen, fx, fy, size, size, c.RGBA(g.alpha))
		}
	}

	for _, p := range s.Players {
		if p.State == model.Disabled {
			continue
		}
		if p.State == model.Idle && !g.showAll && s.Phase == model.PhasePlaying {
			continue
		}
		c := PLAYER_COLORS[p.Index%len(PLAYER_COLORS)].RGBA(0.35 * g.alpha)
		for _, r := range p.Reachable {
			ebitenutil.DrawRect(screen, float64(r.X)*size, float64(r.Y)*size, size, size, c)
		}
	}

	g.drawWalls(screen, size)

	t := s.Treasure
	ts := 0.4 * size * g.treasureScale
	tx, ty := (float64(t.X)+0.5)*size-ts/2, (float64(t.Y)+0.5)*size-ts/2
	ebitenutil.DrawRect(screen, tx, ty, ts, ts, COLOR_TREASURE.RGBA(g.alpha))

	for _, p := range s.Players {
		if p.State == model.Disabled {
			continue
		}
		pos := p.Position
		if s.Phase == model.PhasePlacement && p.State == model.InitialPlacement {
			pos = p.Anchor
		}
		c := PLAYER_COLORS[p.Index%len(PLAYER_COLORS)]
		ebitenutil.DrawRect(screen, (float64(pos.X)+0.2)*size, (float64(pos.Y)+0.2)*size, 0.6*size, 0.6*size, c.RGBA(1))
		if p.Index == s.Current && p.State == model.Turn {
			g.Frame.SetColor(c)
			g.Frame.SetPosition(int(float64(pos.X)*size), int(float64(pos.Y)*size))
			g.Frame.SetSize(int(size), int(size))
			g.Frame.Draw(screen)
		}
	}
}

func (g *Game) drawWalls(screen *ebiten.Image, size float64) {
	s := g.Snapshot
	thick := size / 10
	c := COLOR_WALL.RGBA(g.alpha)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			m := s.WallAt(x, y)
			if m.Has(model.WallBorder) {
				continue
			}
			fx, fy := float64(x)*size, float64(y)*size
			if m.Has(model.WallUp) {
				ebitenutil.DrawRect(screen, fx, fy, size, thick, c)
			}
			if m.Has(model.WallDown) {
				ebitenutil.DrawRect(screen, fx, fy+size-thick, size, thick, c)
			}
			if m.Has(model.WallLeft) {
				ebitenutil.DrawRect(screen, fx, fy, thick, size, c)
			}
			if m.Has(model.WallRight) {
				ebitenutil.DrawRect(screen, fx+size-thick, fy, thick, size, c)
			}
		}
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	s := g.Snapshot
	status := s.Phase.Name()
	switch s.Phase {
	case model.PhasePlaying:
		status = fmt.Sprintf("PLAYER %d", s.Current+1)
	case model.PhaseWon:
		status = fmt.Sprintf("PLAYER %d WINS", s.Winner+1)
	}
	text.Draw(screen, status, Font, 10, screenHeight-20, color.White)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("generation %d", s.Generation), screenWidth-140, screenHeight-20)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	feed := server.NewFeed(cfg.FeedURL)
	go feed.Run(context.Background())

	theGame, err := NewGame(feed)
	if err != nil {
		log.Fatal(err)
	}
	if err := ebiten.Run(theGame.update, screenWidth, screenHeight, 1, "Table Maze"); err != nil {
		log.Fatal(err)
	}
}
