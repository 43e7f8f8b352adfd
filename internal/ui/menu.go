package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dryfly-scientist/Hydro-Map/internal/delivery"
	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
)

// Pipeline is what the menu drives.
type Pipeline interface {
	RunBatch(ctx context.Context) (*delivery.BatchReport, error)
	EvaluateClick(ctx context.Context, c tnri.Click) (*tnri.Summary, error)
	ExportBufferStats() ([]nri.BufferStat, []string, error)
	ListWatersheds() ([]watershed.Watershed, error)
}

type Menu struct {
	Pipeline  Pipeline
	Serve     func(ctx context.Context) error
	Discharge float64

	console
}

func NewMenu(p Pipeline, serve func(ctx context.Context) error, discharge float64, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		Pipeline:  p,
		Serve:     serve,
		Discharge: discharge,
		console:   console{in: bufio.NewReader(in), out: out},
	}
}

type menuOption struct {
	title   string
	handler func(ctx context.Context)
}

// Show displays the main menu and handles user input until the user exits,
// input ends or ctx is cancelled.
func (m *Menu) Show(ctx context.Context) {
	menuOptions := []menuOption{
		{"Build the Nitrogen Retention Index for the study region", m.BuildNRI},
		{"Evaluate the TNRI at a map location", m.EvaluateClick},
		{"Export riparian buffer statistics", m.ExportBufferStats},
		{"View the list of available watersheds", m.ListWatersheds},
		{"Serve click evaluation over HTTP", m.StartServer},
		{"Exit the application", nil},
	}

	for ctx.Err() == nil {
		fmt.Fprintln(m.out, ColorBlue+"==================="+ColorReset)
		for i, opt := range menuOptions {
			fmt.Fprintf(m.out, "%s%d. %s%s\n", ColorBlue, i+1, opt.title, ColorReset)
		}

		choice, err := m.ReadInt(ColorBlue+"Please enter your choice:"+ColorReset+"\n", 1, len(menuOptions))
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			m.PrintError(err.Error())
			continue
		}

		opt := menuOptions[choice-1]
		if opt.handler == nil {
			fmt.Fprintln(m.out, "Exiting...")
			return
		}
		opt.handler(ctx)
	}
}
