// Command mazegen generates mazes and shows them in the terminal together
// with the cells each start position can reach.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/config"
	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	mc := cfg.Maze
	flag.IntVar(&mc.Width, "w", mc.Width, "board width in cells")
	flag.IntVar(&mc.Height, "h", mc.Height, "board height in cells")
	flag.IntVar(&mc.Granularity, "g", mc.Granularity, "corridor granularity")
	flag.IntVar(&mc.Players, "players", mc.Players, "number of players")
	flag.Int64Var(&mc.Seed, "seed", mc.Seed, "random seed, 0 for time based")
	reach := flag.Int("reach", cfg.PlacementReach, "reach shown around each start")
	ascii := flag.Bool("ascii", false, "print the maze as text and exit")
	flag.Parse()

	gen, err := maze.NewGenerator(mc)
	if err != nil {
		log.Fatalf("maze: %v", err)
	}
	res, err := gen.Generate()
	if err != nil {
		log.Fatalf("maze: %v", err)
	}

	if *ascii {
		fmt.Print(model.FormatGrid(res.Grid))
		fmt.Printf("treasure %v, starts %v, attempts %d\n", res.Treasure, res.Starts, res.Attempts)
		return
	}

	if err := run(gen, res, *reach); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(gen *maze.Generator, res *maze.Result, reach int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := newView(res, reach)
	for {
		screen.Clear()
		v.draw(screen)
		status := fmt.Sprintf(" reach %d  attempts %d  [r]egenerate [+/-] reach [q]uit", v.reach, v.res.Attempts)
		for i, ch := range status {
			screen.SetContent(i, 2*res.Grid.Height()+1, ch, nil, tcell.StyleDefault)
		}
		screen.Show()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			switch ev.Rune() {
			case 'q':
				return nil
			case 'r':
				next, err := gen.Generate()
				if err != nil {
					return err
				}
				v = newView(next, v.reach)
			case '+':
				v.setReach(v.reach + 1)
			case '-':
				v.setReach(v.reach - 1)
			}
		}
	}
}
