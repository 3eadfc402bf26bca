package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action hooks a running tween into the game: onChange receives every
// value, onFinish runs once, nexts queue follow-up tweens.
type Action struct {
	nexts    []func(g *Game)
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	a.onFinish = append(a.onFinish, f)
}

// then starts t with action once the owner of a has finished.
func (a *Action) then(t *gween.Tween, action Action) {
	a.nexts = append(a.nexts, func(g *Game) {
		g.Tweens[t] = action
	})
}

// pulse grows and shrinks the treasure marker n times.
func (g *Game) pulse(n int) {
	set := func(v float32) { g.treasureScale = float64(v) }
	var first Action
	var firstTween *gween.Tween
	for i := 0; i < n; i++ {
		shrink := Action{onChange: set}
		if firstTween != nil {
			shrink.then(firstTween, first)
		}
		grow := Action{onChange: set}
		grow.then(gween.New(2, 1, pulseSeconds, ease.InQuad), shrink)
		first, firstTween = grow, gween.New(1, 2, pulseSeconds, ease.OutQuad)
	}
	if firstTween != nil {
		g.Tweens[firstTween] = first
	}
}
