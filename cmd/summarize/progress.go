package main

import (
	"io"
	"sync"

	"github.com/gosuri/uiprogress"

	"textdigest/internal/domain/entity"
	"textdigest/internal/usecase/digest"
)

// progressObserver renders a bar advancing once per summarized document.
type progressObserver struct {
	progress *uiprogress.Progress

	mu  sync.Mutex
	bar *uiprogress.Bar
}

var _ digest.Observer = (*progressObserver)(nil)

func newProgressObserver(w io.Writer) *progressObserver {
	p := uiprogress.New()
	p.Out = w
	return &progressObserver{progress: p}
}

// DocumentsFound adds the bar and starts rendering.
func (o *progressObserver) DocumentsFound(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bar = o.progress.AddBar(n).AppendCompleted().PrependElapsed()
	o.progress.Start()
}

func (o *progressObserver) DocumentDone(d entity.Digest) {
	o.mu.Lock()
	bar := o.bar
	o.mu.Unlock()
	if bar != nil {
		bar.Incr()
	}
}

// Stop stops rendering. It is a no-op when no bar was added.
func (o *progressObserver) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bar != nil {
		o.progress.Stop()
	}
}
