package main

import (
	"fmt"
	"sync"
	"time"
)

// printer serializes output lines and, on a terminal, keeps a status line
// at the bottom that is redrawn in place.
type printer struct {
	live   bool
	mu     sync.Mutex
	status string
}

func newPrinter(live bool) *printer {
	return &printer{live: live}
}

// Println prints a line above the status line.
func (p *printer) Println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live && p.status != "" {
		fmt.Print("\r\033[K")
	}
	fmt.Println(line)
	if p.live && p.status != "" {
		fmt.Print(p.status)
	}
}

// Follow redraws the status line from render until the returned function
// is called. It does nothing when stdout is not a terminal.
func (p *printer) Follow(render func() string) (stop func()) {
	if !p.live {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.mu.Lock()
				p.status = render()
				fmt.Print("\r\033[K" + p.status)
				p.mu.Unlock()
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		p.mu.Lock()
		if p.status != "" {
			fmt.Print("\r\033[K")
			p.status = ""
		}
		p.mu.Unlock()
	}
}
