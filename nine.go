package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten"
)

// Nine draws a rounded frame stretched over any rectangle: corners keep
// their size, edges and centre are scaled.
type Nine struct {
	image   *ebiten.Image
	edges   [4]int // source slice edges, same for both axes
	Scale   float64
	color   GameColor
	alpha   float64
	targetX [4]float64
	targetY [4]float64
	x, y    int
}

// NewNine renders a side x side ring whose corners are corner pixels.
func NewNine(side, corner int) (*Nine, error) {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	thick := float64(corner) / 2
	for py := 0; py < side; py++ {
		for px := 0; px < side; px++ {
			d := edgeDistance(float64(px)+.5, float64(py)+.5, float64(side), float64(corner))
			if d >= 0 && d < thick {
				img.Set(px, py, color.White)
			}
		}
	}
	eimg, err := ebiten.NewImageFromImage(img, ebiten.FilterDefault)
	if err != nil {
		return nil, err
	}
	return &Nine{
		image: eimg,
		edges: [4]int{0, corner, side - corner, side},
		Scale: .5,
		color: GameColor{1, 1, 1},
		alpha: 1,
	}, nil
}

// edgeDistance is how far (px,py) lies inside a square with rounded
// corners, negative outside.
func edgeDistance(px, py, side, radius float64) float64 {
	cx := math.Max(radius, math.Min(side-radius, px))
	cy := math.Max(radius, math.Min(side-radius, py))
	if cx != px && cy != py {
		return radius - math.Hypot(px-cx, py-cy)
	}
	return math.Min(math.Min(px, side-px), math.Min(py, side-py))
}

func (n *Nine) SetColor(c GameColor) {
	n.color = c
}

func (n *Nine) SetPosition(x, y int) {
	n.x = x
	n.y = y
}

func (n *Nine) SetSize(width, height int) {
	corner := n.Scale * float64(n.edges[1]-n.edges[0])
	n.targetX = [4]float64{float64(n.x), float64(n.x) + corner, float64(n.x+width) - corner, float64(n.x + width)}
	n.targetY = [4]float64{float64(n.y), float64(n.y) + corner, float64(n.y+height) - corner, float64(n.y + height)}
}

func (n *Nine) Draw(screen *ebiten.Image) {
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			src := image.Rect(n.edges[i], n.edges[j], n.edges[i+1], n.edges[j+1])
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(
				(n.targetX[i+1]-n.targetX[i])/float64(src.Dx()),
				(n.targetY[j+1]-n.targetY[j])/float64(src.Dy()))
			op.GeoM.Translate(n.targetX[i], n.targetY[j])
			op.ColorM.Scale(n.color.r, n.color.g, n.color.b, n.alpha)
			screen.DrawImage(n.image.SubImage(src).(*ebiten.Image), op)
		}
	}
}
