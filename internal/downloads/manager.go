package downloads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"grabarr/internal/domain/command"
	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
	"grabarr/internal/progress"
)

// ErrCancelled marks a download terminated by user cancellation, distinct
// from subprocess failure.
var ErrCancelled = errors.New("download cancelled")

// HistoryRecorder persists finished sessions. Implementations must tolerate
// concurrent calls.
type HistoryRecorder interface {
	Record(ctx context.Context, e models.HistoryEntry) error
}

// CookieProber reports whether browser cookies exist for a URL's domain.
type CookieProber interface {
	HasCookies(ctx context.Context, rawURL string) bool
}

// Config holds the manager's construction parameters.
type Config struct {
	TempDir      string
	YtdlpPath    string
	CookieSource string          // browser name, "" disables cookie sourcing
	Cookies      CookieProber    // nil skips the availability probe
	History      HistoryRecorder // nil disables history recording
}

// Manager coordinates start, cancel and completion for download sessions.
type Manager struct {
	store *Store
	cfg   Config
}

// NewManager returns a manager with an injected session store.
func NewManager(store *Store, cfg Config) *Manager {
	if cfg.YtdlpPath == "" {
		cfg.YtdlpPath = command.YTDLP
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Manager{store: store, cfg: cfg}
}

// StartResult hands off the produced file once the subprocess exits cleanly.
type StartResult struct {
	FilePath string
	Ext      string
}

// Start spawns the download subprocess for req and blocks until it exits,
// mutating the session's progress record throughout. On clean exit the
// session is left in the streaming phase for the delivery stage; on error or
// cancellation the session is torn down before returning.
func (m *Manager) Start(ctx context.Context, req models.DownloadRequest) (*StartResult, error) {
	ytdlp, err := exec.LookPath(m.cfg.YtdlpPath)
	if err != nil {
		return nil, fmt.Errorf("downloader binary not found: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ext := outputExt(req.Format)
	sess := newSession(req.DownloadID, req, cancel)
	sess.OutputPath = filepath.Join(m.cfg.TempDir, req.DownloadID+"."+ext)
	sess.ProgressPath = filepath.Join(m.cfg.TempDir,
		consts.ProgressFilePrefix+req.DownloadID+consts.ProgressFileSuffix)

	// A duplicate id must not orphan the prior subprocess: cancel it
	// before taking over the table slot.
	if prior := m.store.Put(sess); prior != nil {
		logging.L.Warn().Str("id", sess.ID).Msg("duplicate download id, cancelling prior session")
		prior.Cancel()
	}

	reader := progress.NewFileReader(sess.ProgressPath)
	if err := reader.Init(); err != nil {
		logging.L.Warn().Err(err).Str("id", sess.ID).Msg("failed to create progress file")
	}

	pipe := newPipeline(sess)

	// Cleanup must run on every exit path, including launch failure and
	// cancellation. When a replacement session has taken over the id, the
	// temp files belong to it now and must survive this teardown.
	succeeded := false
	defer func() {
		if !succeeded {
			m.store.Delete(sess)
			if _, taken := m.store.Get(sess.ID); taken {
				return
			}
		}
		reader.Remove()
		if !succeeded {
			sweepArtifacts(m.cfg.TempDir, sess.ID)
		}
	}()

	cmd := exec.CommandContext(sctx, ytdlp, buildArgs(sess, m.cookieSource(ctx, req.URL))...)
	cmd.Env = append(os.Environ(), command.PythonNoBufEnv)

	// Children (the muxer) live in the session's process group so
	// cancellation kills the whole tree, hard. Partially written output is
	// not a valid deliverable, so there is no graceful-terminate step.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = consts.ProcessWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, m.fail(ctx, sess, fmt.Errorf("stdout pipe error: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, m.fail(ctx, sess, fmt.Errorf("stderr pipe error: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return nil, m.fail(ctx, sess, fmt.Errorf("failed to start downloader: %w", err))
	}

	logging.L.Info().
		Str("id", sess.ID).
		Str("url", sess.URL).
		Str("quality", sess.Quality).
		Str("format", sess.Format).
		Int("pid", cmd.Process.Pid).
		Msg("download started")

	sess.Update(func(r *models.ProgressRecord) { r.Phase = models.PhaseDownloading })

	// stdout and stderr interleave by arrival; each line is self-describing
	// and idempotently updates the shared record, so no merge rule is needed.
	lineChan := make(chan string, 100)
	var wg sync.WaitGroup
	for _, pipeReader := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Split(progress.ScanLines)
			for scanner.Scan() {
				select {
				case lineChan <- scanner.Text():
				case <-sctx.Done():
					return
				}
			}
		}(pipeReader)
	}

	parserDone := make(chan struct{})
	go func() {
		defer close(parserDone)
		for line := range lineChan {
			pipe.consumeLine(line)
		}
	}()

	// Side-channel poll races the line parser to update the same record;
	// last write wins, both report monotonically increasing progress.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		reader.Run(sctx, pipe.consumeFileStats)
	}()

	// Pipe reads must finish before Wait closes them.
	wg.Wait()
	close(lineChan)
	<-parserDone

	waitErr := cmd.Wait()
	ctxErr := sctx.Err()
	cancel()
	<-readerDone

	if sess.userCancelled() || (waitErr != nil && ctxErr != nil) {
		sess.Update(func(r *models.ProgressRecord) { r.Phase = models.PhaseCancelled })
		m.record(ctx, sess, models.PhaseCancelled, 0)
		logging.L.Info().Str("id", sess.ID).Msg("download cancelled")
		return nil, ErrCancelled
	}

	if waitErr != nil {
		diag := pipe.lastError()
		if diag == "" {
			diag = "unknown error"
		}
		err := fmt.Errorf("downloader failed (%v): %s", waitErr, diag)
		return nil, m.fail(ctx, sess, err)
	}

	info, statErr := os.Stat(sess.OutputPath)
	if statErr != nil {
		return nil, m.fail(ctx, sess, fmt.Errorf("no output file produced: %w", statErr))
	}

	succeeded = true
	sess.Update(func(r *models.ProgressRecord) {
		r.Phase = models.PhaseStreaming
		r.Percent = 100
		if r.Total != "" && r.Total != "0MB" {
			r.Downloaded = r.Total
		} else {
			r.Downloaded = "Complete"
		}
		r.Eta = "00:00"
	})

	logging.L.Info().
		Str("id", sess.ID).
		Str("path", sess.OutputPath).
		Int64("bytes", info.Size()).
		Msg("download complete, ready to stream")

	return &StartResult{FilePath: sess.OutputPath, Ext: ext}, nil
}

// Cancel triggers the session's cancellation token, force-terminating the
// subprocess, and removes the session entry. Returns false for unknown ids.
func (m *Manager) Cancel(id string) bool {
	sess, ok := m.store.Get(id)
	if !ok {
		return false
	}
	sess.markCancelled()
	sess.Cancel()
	m.store.Delete(sess)
	return true
}

// Progress returns the current progress record for id.
func (m *Manager) Progress(id string) (models.ProgressRecord, bool) {
	sess, ok := m.store.Get(id)
	if !ok {
		return models.ProgressRecord{}, false
	}
	return sess.Snapshot(), true
}

// Finish tears down a successfully delivered session: removes the table
// entry, sweeps leftover artifacts and records history.
func (m *Manager) Finish(ctx context.Context, id string, fileSize int64) {
	sess, ok := m.store.Get(id)
	if !ok {
		return
	}
	sess.Update(func(r *models.ProgressRecord) { r.Phase = models.PhaseComplete })
	m.record(ctx, sess, models.PhaseComplete, fileSize)
	m.store.Delete(sess)
	sweepArtifacts(m.cfg.TempDir, id)
}

// fail moves the session to the error phase with the diagnostic message and
// records it. Returns err for the caller to propagate.
func (m *Manager) fail(ctx context.Context, sess *Session, err error) error {
	sess.Update(func(r *models.ProgressRecord) {
		r.Phase = models.PhaseError
		r.Error = err.Error()
	})
	m.record(ctx, sess, models.PhaseError, 0)
	logging.L.Error().Err(err).Str("id", sess.ID).Msg("download failed")
	return err
}

// record persists one terminal session to history, best effort.
func (m *Manager) record(ctx context.Context, sess *Session, phase models.DownloadPhase, size int64) {
	if m.cfg.History == nil {
		return
	}
	rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), consts.DatabaseTimeout)
	defer rcancel()

	entry := models.HistoryEntry{
		DownloadID: sess.ID,
		URL:        sess.URL,
		Title:      sess.Title,
		Format:     sess.Format,
		Quality:    sess.Quality,
		Status:     phase.String(),
		FileSize:   size,
	}
	if err := m.cfg.History.Record(rctx, entry); err != nil {
		logging.L.Warn().Err(err).Str("id", sess.ID).Msg("failed to record download history")
	}
}

// cookieSource returns the configured browser cookie source when the probe
// confirms cookies exist for the URL's domain.
func (m *Manager) cookieSource(ctx context.Context, rawURL string) string {
	if m.cfg.CookieSource == "" {
		return ""
	}
	if m.cfg.Cookies != nil && !m.cfg.Cookies.HasCookies(ctx, rawURL) {
		logging.L.Debug().Str("url", rawURL).Msg("no browser cookies for domain, skipping cookie source")
		return ""
	}
	return m.cfg.CookieSource
}
