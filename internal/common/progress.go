package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Progress holds atomic counters for pipeline telemetry.
type Progress struct {
	rowsProcessed atomic.Uint64
	bytesRead     atomic.Uint64
	filesComplete atomic.Uint64

	// Internal state for reporter
	running   atomic.Bool
	stopCh    chan struct{}
	silent    bool
	lastRows  uint64
	lastBytes uint64
	lastTime  time.Time
}

// NewProgress creates a new Progress instance.
func NewProgress() *Progress {
	return &Progress{
		stopCh: make(chan struct{}),
	}
}

// AddRows increments the processed row counter.
func (p *Progress) AddRows(count uint64) {
	p.rowsProcessed.Add(count)
}

// AddBytes increments the bytes read counter.
func (p *Progress) AddBytes(count uint64) {
	p.bytesRead.Add(count)
}

// AddFile increments the completed file counter.
func (p *Progress) AddFile() {
	p.filesComplete.Add(1)
}

// TotalRows reads the processed row counter.
func (p *Progress) TotalRows() uint64 {
	return p.rowsProcessed.Load()
}

// TotalBytes reads the bytes read counter.
func (p *Progress) TotalBytes() uint64 {
	return p.bytesRead.Load()
}

// FilesComplete reads the completed file counter.
func (p *Progress) FilesComplete() uint64 {
	return p.filesComplete.Load()
}

// SetSilent enables or disables silent mode.
func (p *Progress) SetSilent(silent bool) {
	p.silent = silent
}

// StartReporter starts a background goroutine that prints throughput
// once per second. Newline-based output avoids interleaving with
// log.Printf statements.
func (p *Progress) StartReporter() {
	if p.running.Load() {
		return // Already running
	}

	p.running.Store(true)
	p.lastTime = time.Now()
	p.lastRows = 0
	p.lastBytes = 0

	go p.reporterLoop()
}

// StopReporter stops the background reporter goroutine.
func (p *Progress) StopReporter() {
	if !p.running.Load() {
		return
	}

	p.running.Store(false)
	close(p.stopCh)
}

func (p *Progress) reporterLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.printStatus()
		}
	}
}

func (p *Progress) printStatus() {
	if p.silent {
		return
	}

	now := time.Now()
	elapsed := now.Sub(p.lastTime).Seconds()
	if elapsed < 0.001 {
		return
	}

	currentRows := p.TotalRows()
	currentBytes := p.TotalBytes()

	deltaRows := currentRows - p.lastRows
	deltaBytes := currentBytes - p.lastBytes

	mibPerSec := (float64(deltaBytes) / (1024 * 1024)) / elapsed
	krps := (float64(deltaRows) / 1000) / elapsed

	fmt.Printf("[Progress] Throughput: %.2f MiB/s | Parse: %.1f Krows/s | Files: %d | Total: %d rows\n",
		mibPerSec,
		krps,
		p.FilesComplete(),
		currentRows,
	)

	p.lastRows = currentRows
	p.lastBytes = currentBytes
	p.lastTime = now
}
