package main

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// progressView shows one progress bar per clustering task on stderr.
type progressView struct {
	mu      sync.Mutex
	task    string
	bar     *pterm.ProgressbarPrinter
	current int
}

func (p *progressView) update(task string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if task != p.task {
		p.stopLocked()
		bar, err := pterm.DefaultProgressbar.
			WithTotal(100).
			WithTitle(task).
			WithWriter(os.Stderr).
			Start()
		if err != nil {
			return
		}
		p.task, p.bar, p.current = task, bar, 0
	}
	if p.bar != nil && percent > p.current {
		p.bar.Add(percent - p.current)
		p.current = percent
	}
}

func (p *progressView) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *progressView) stopLocked() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
