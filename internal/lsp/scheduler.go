package lsp

import (
	"errors"
	"fmt"
	"time"

	"prosecheck/internal/annotation"
	"prosecheck/internal/check"
	"prosecheck/internal/config"
	"prosecheck/internal/languagetool"
)

// touch records new text for doc and restarts its debounce timer.
func (s *Server) touch(doc *document) {
	s.stamp++
	doc.stamp = s.stamp
	s.arm(doc)
}

func (s *Server) arm(doc *document) {
	if doc.timer != nil {
		doc.timer.Stop()
	}
	doc.timerSeq++
	uri, seq := doc.uri, doc.timerSeq
	doc.timer = time.AfterFunc(s.debounce, func() {
		s.post(debounceEvent{uri: uri, seq: seq})
	})
}

func (s *Server) onDebounce(ev debounceEvent) {
	doc := s.docs[ev.uri]
	if doc == nil || ev.seq != doc.timerSeq {
		return
	}
	doc.timer = nil
	s.request(doc)
}

// request checks doc now, or as soon as the engine and the document's
// previous check allow.
func (s *Server) request(doc *document) {
	switch {
	case !s.ready:
		doc.pending = true
	case doc.checking != 0:
		doc.dirty = true
	default:
		s.start(doc)
	}
}

func (s *Server) start(doc *document) {
	doc.pending = false
	doc.dirty = false
	doc.checking = doc.stamp

	ctx := s.ctx
	checker := s.checker
	uri, text, stamp, version := doc.uri, doc.text, doc.stamp, doc.version
	s.log.Debug("check started", "uri", uri, "version", version, "stamp", stamp)
	s.tasks.Go(func() error {
		diags, err := checker.Check(ctx, text)
		s.post(checkResult{uri: uri, stamp: stamp, version: version, diags: diags, err: err})
		return nil
	})
}

func (s *Server) onCheckResult(r checkResult) error {
	doc := s.docs[r.uri]
	// One check runs per document, so a stamp other than the in-flight one
	// belongs to a closed or reopened document.
	if doc == nil || doc.checking != r.stamp {
		s.log.Debug("discarding stale result", "uri", r.uri, "stamp", r.stamp)
		return nil
	}
	doc.checking = 0

	var err error
	switch {
	case r.err != nil:
		err = s.reportCheckError(doc, r.err)
	default:
		s.engineWarned = false
		doc.applied = r.stamp
		doc.diags = r.diags
		s.log.Debug("publishing diagnostics", "uri", r.uri, "version", r.version, "count", len(r.diags))
		err = s.publish(doc, r.version, r.diags)
	}

	if doc.dirty {
		s.request(doc)
	}
	return err
}

// reportCheckError logs a failed check. The last published diagnostics stay
// in place. Engine outages are surfaced to the user once per outage.
func (s *Server) reportCheckError(doc *document, err error) error {
	var (
		reqErr      *languagetool.RequestError
		unavailable *languagetool.UnavailableError
		unsupported *annotation.UnsupportedError
	)
	switch {
	case errors.As(err, &reqErr):
		s.log.Error("check rejected", "uri", doc.uri, "status", reqErr.Status, "err", err)
	case errors.As(err, &unsupported):
		s.log.Warn("document not checked", "uri", doc.uri, "err", err)
	case errors.As(err, &unavailable),
		errors.Is(err, languagetool.ErrNotReady),
		errors.Is(err, languagetool.ErrNotFound):
		s.log.Error("engine unavailable", "uri", doc.uri, "err", err)
		if !s.engineWarned {
			s.engineWarned = true
			return s.showMessage(messageWarning, fmt.Sprintf("prosecheck: LanguageTool is unavailable: %v", err))
		}
	default:
		s.log.Error("check failed", "uri", doc.uri, "err", err)
	}
	return nil
}

func (s *Server) onReady() {
	s.ready = true
	s.log.Info("engine ready")
	for _, doc := range s.docs {
		if doc.pending {
			s.request(doc)
		}
	}
}

func (s *Server) onEngineError(err error) error {
	s.log.Error("engine failed to start", "err", err)
	msg := fmt.Sprintf("prosecheck: LanguageTool could not be started: %v", err)
	if errors.Is(err, languagetool.ErrNotFound) {
		msg = "prosecheck: LanguageTool was not found. Install it or set engine.url to a running server."
	}
	s.engineWarned = true
	return s.showMessage(messageError, msg)
}

func (s *Server) onConfig(cfg *config.Config) {
	s.checker = s.checker.WithOptions(check.OptionsFromConfig(cfg.Check))
	if d := cfg.Debounce(); d > 0 {
		s.debounce = d
	}
	s.log.Info("configuration applied", "path", cfg.Path)
	s.recheckAll()
}

func (s *Server) recheckAll() {
	for _, doc := range s.docs {
		s.request(doc)
	}
}
