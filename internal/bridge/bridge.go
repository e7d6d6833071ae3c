// Package bridge forwards "open this file" requests coming from the operating system to
// the UI layer. Only existing PDF files are forwarded; everything else is dropped.
package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Coubiac/signstamp/internal/logger"
)

// EventOpenPdf is the notification emitted for every accepted candidate.
const EventOpenPdf = "open-pdf"

// OpenPdfEvent is the payload of EventOpenPdf.
type OpenPdfEvent struct {
	Path string `json:"path"`
}

// Notifier delivers a one-way event to the UI layer.
// events.Hub implements this interface.
type Notifier interface {
	Emit(name string, payload any) error
}

// Bridge filters candidate paths and notifies the UI about the ones that pass.
type Bridge struct {
	notifier Notifier
}

// New creates a bridge that emits through notifier.
func New(notifier Notifier) (*Bridge, error) {
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	return &Bridge{notifier: notifier}, nil
}

// IsPDFPath reports whether path has a "pdf" extension, ignoring case.
// A file named ".pdf" has no extension.
func IsPDFPath(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return false
	}
	return strings.EqualFold(ext, ".pdf")
}

// Dispatch forwards path when it is an existing PDF file and reports whether an event was
// emitted successfully. Delivery failures are logged and never retried.
func (b *Bridge) Dispatch(candidate string) bool {
	log := logger.WithComponent("bridge")

	if !IsPDFPath(candidate) {
		log.Debugf("dropping %q: not a pdf", candidate)
		return false
	}
	if _, err := os.Stat(candidate); err != nil {
		log.Debugf("dropping %q: %v", candidate, err)
		return false
	}

	path := candidate
	if abs, err := filepath.Abs(candidate); err == nil {
		path = abs
	}

	if err := b.notifier.Emit(EventOpenPdf, OpenPdfEvent{Path: path}); err != nil {
		log.Warnf("emit %s failed for %s: %v", EventOpenPdf, path, err)
		return false
	}
	log.Infof("requested UI to open %s", path)
	return true
}

// DispatchAll dispatches every candidate in order and returns how many were forwarded.
func (b *Bridge) DispatchAll(candidates []string) int {
	forwarded := 0
	for _, c := range candidates {
		if b.Dispatch(c) {
			forwarded++
		}
	}
	return forwarded
}
