package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/sketchfmt/internal/parser"
	"github.com/dgallion1/sketchfmt/internal/source"
)

// Worker processes a single file job.
type Worker struct {
	log   *slog.Logger
	stats *ParseStats
	opts  []parser.Option

	pdfFallback        bool
	maxConcurrentParse int
}

func NewWorker(log *slog.Logger, stats *ParseStats, opts []parser.Option, pdfFallback bool, maxParse int) *Worker {
	if maxParse <= 0 {
		maxParse = 1
	}
	return &Worker{
		log:                log,
		stats:              stats,
		opts:               opts,
		pdfFallback:        pdfFallback,
		maxConcurrentParse: maxParse,
	}
}

// Process extracts the sources in a job's file and decodes each of them.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	defer job.releaseFileData()

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := source.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if pe, ok := ex.(*source.PDFExtractor); ok {
		pe.FallbackPdftotext = w.pdfFallback
	}

	sources, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetTotalSources(len(sources))
	log.Info("extracted sources", "sources", len(sources))

	if len(sources) == 0 {
		log.Warn("no sketch sources found")
		job.AddError("no sketch sources found")
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 2: Decode with bounded concurrency. Identical sources are decoded once.
	job.SetStatus(StatusParsing, "parsing")
	results := make([]Result, len(sources))
	firstByKey := make(map[string]int, len(sources))
	done := make(chan int, len(sources))
	sem := make(chan struct{}, w.maxConcurrentParse)
	dispatched := 0

	for i, src := range sources {
		hash := ContentHashHex([]byte(src.Text))
		results[i] = Result{Name: src.Name, Format: src.Format, ContentHash: hash}
		key := string(src.Format) + ":" + hash
		if _, dup := firstByKey[key]; dup {
			continue
		}
		firstByKey[key] = i
		if ctx.Err() != nil {
			results[i].Error = ctx.Err().Error()
			continue
		}

		sem <- struct{}{}
		dispatched++
		go func(i int, src source.Source) {
			defer func() { <-sem }()
			w.decode(src, &results[i])
			done <- i
		}(i, src)
	}
	for range dispatched {
		<-done
	}

	for i := range results {
		key := string(results[i].Format) + ":" + results[i].ContentHash
		if first := firstByKey[key]; first != i {
			name := results[i].Name
			results[i] = results[first]
			results[i].Name = name
		}
		if results[i].Error != "" {
			log.Warn("decode failed", "source", results[i].Name, "error", results[i].Error)
			job.AddError(fmt.Sprintf("%s: %s", results[i].Name, results[i].Error))
		}
		job.AddResult(results[i])
	}

	snap := job.Snapshot()
	log.Info("decode complete", "parsed", snap.Progress.SourcesParsed, "failed", snap.Progress.SourcesFailed)

	switch {
	case snap.Progress.SourcesFailed == 0:
		job.SetStatus(StatusCompleted, "done")
	case snap.Progress.SourcesParsed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "parsing")
	}
}

// decode runs the decoder matching src.Format and fills r.
func (w *Worker) decode(src source.Source, r *Result) {
	start := time.Now()
	var err error
	switch src.Format {
	case source.FormatRaw:
		r.Raw, err = parser.DecodeRaw(src.Text)
	default:
		r.Sketch, err = parser.Parse(src.Text, w.opts...)
	}
	if w.stats != nil {
		w.stats.Record(src.Format, time.Since(start), err)
	}
	if err != nil {
		r.Error = err.Error()
	}
}
