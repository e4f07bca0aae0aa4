package downloads

import (
	"fmt"
	"strings"
	"sync"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
	"grabarr/internal/progress"
)

// pipeline turns classified subprocess output into session record updates.
// consumeLine and consumeFileStats run on different goroutines; the internal
// mutex guards the smoothing state, the session guards its own record.
type pipeline struct {
	sess       *Session
	classifier *progress.Classifier

	mu       sync.Mutex
	dlSpeed  *progress.Smoother
	dlEta    *progress.Smoother
	mergeX   *progress.Smoother
	mergeEta *progress.Smoother
}

func newPipeline(sess *Session) *pipeline {
	return &pipeline{
		sess:       sess,
		classifier: progress.NewClassifier(),
		dlSpeed:    progress.NewSmoother(consts.DownloadBlend),
		dlEta:      progress.NewSmoother(consts.DownloadBlend),
		mergeX:     progress.NewSmoother(consts.MergeBlend),
		mergeEta:   progress.NewSmoother(consts.MergeBlend),
	}
}

func (p *pipeline) lastError() string {
	return p.classifier.LastError()
}

func (p *pipeline) consumeLine(line string) {
	upd, ok := p.classifier.Classify(line)
	if !ok {
		logging.L.Trace().Str("line", line).Msg("unclassified output line")
		return
	}

	switch upd.Kind {
	case progress.KindDownload:
		p.applyDownload(upd)
	case progress.KindParallel:
		// Parallel downloader fields pass through verbatim, the backend
		// already aggregates across connections.
		p.sess.Update(func(r *models.ProgressRecord) {
			r.Phase = models.PhaseDownloading
			r.Percent = upd.Percent
			r.Downloaded = upd.Downloaded
			r.Total = upd.Total
			r.Speed = upd.Speed
			r.Eta = upd.Eta
		})
	case progress.KindMuxerStart:
		p.sess.Update(func(r *models.ProgressRecord) {
			r.Phase = models.PhaseMerging
			r.Percent = 100
			r.Downloaded = "Merging"
			r.Total = "Processing..."
			r.Speed = "-"
			r.Eta = "..."
		})
	case progress.KindMuxer:
		p.applyMerge(progress.ParseClock(upd.OutTime), upd.OutTime, upd.SpeedX, upd.FPS)
	}
}

// consumeFileStats applies one side-channel progress file sample.
func (p *pipeline) consumeFileStats(st progress.FileStats) {
	p.applyMerge(st.Seconds, st.OutTime, st.SpeedX, st.FPS)
}

// applyDownload smooths the jittery speed and ETA readings of standard
// progress lines before display.
func (p *pipeline) applyDownload(upd progress.Update) {
	p.mu.Lock()
	speed := upd.Speed
	if val, unit, ok := splitRate(upd.Speed); ok {
		speed = fmt.Sprintf("%.2f%s", p.dlSpeed.Sample(val), unit)
	}
	eta := upd.Eta
	if upd.EtaSeconds > 0 {
		eta = progress.FormatClock(p.dlEta.Sample(float64(upd.EtaSeconds)))
	}
	p.mu.Unlock()

	p.sess.Update(func(r *models.ProgressRecord) {
		r.Phase = models.PhaseDownloading
		r.Percent = upd.Percent
		r.Downloaded = upd.Downloaded
		r.Total = upd.Total
		r.Speed = speed
		r.Eta = eta
	})
}

// applyMerge maps muxer timing onto the record: percent is relative to the
// known media duration, ETA extrapolates from the smoothed speed multiplier.
func (p *pipeline) applyMerge(seconds int, outTime, speedX, fps string) {
	duration := p.sess.Duration

	p.mu.Lock()
	multiplier := p.mergeX.Value()
	if v := progress.SpeedMultiplier(speedX); v > 0 {
		multiplier = p.mergeX.Sample(v)
	}

	percent := 100.0
	eta := "Merging..."
	if duration > 0 {
		percent = float64(seconds) / duration * 100
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
		if multiplier > 0 {
			remaining := (duration - float64(seconds)) / multiplier
			if remaining < 0 {
				remaining = 0
			}
			eta = progress.FormatClock(p.mergeEta.Sample(remaining))
		}
	}
	p.mu.Unlock()

	clock, _, _ := strings.Cut(outTime, ".")
	p.sess.Update(func(r *models.ProgressRecord) {
		r.Phase = models.PhaseMerging
		r.Percent = percent
		r.Downloaded = "Merging"
		r.Total = fmt.Sprintf("%s @ %s", clock, speedX)
		r.Speed = fps + " fps"
		r.Eta = eta
		r.MergedSeconds = seconds
	})
}
