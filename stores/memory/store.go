package memory

import (
	"context"
	"sync"

	"widget-canvas/core"

	"github.com/sirupsen/logrus"
)

// memStore keeps the encoded canvas and the raw image bytes, so callers get the
// same copies and errors they would get from a file-backed store.
type memStore struct {
	mu     sync.RWMutex
	canvas []byte
	image  []byte
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{}
}

func (s *memStore) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	data, err := core.EncodeCanvas(doc)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode canvas")
		return err
	}

	s.mu.Lock()
	s.canvas = data
	s.mu.Unlock()

	logrus.WithField("data_length", len(data)).Info("Canvas saved successfully")
	return nil
}

func (s *memStore) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	s.mu.RLock()
	data := s.canvas
	s.mu.RUnlock()

	if data == nil {
		logrus.Info("No canvas saved, returning default canvas")
		return core.DefaultDocument(), nil
	}
	return core.DecodeCanvas(data)
}

func (s *memStore) SaveHeaderImage(ctx context.Context, dataURL string) error {
	data, err := core.ParseDataURL(dataURL)
	if err != nil {
		logrus.WithError(err).Warn("Rejected header image")
		return err
	}

	if data == nil {
		data = []byte{}
	}

	s.mu.Lock()
	s.image = data
	s.mu.Unlock()

	logrus.WithField("data_length", len(data)).Info("Header image saved successfully")
	return nil
}

func (s *memStore) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.image == nil {
		return "", false, nil
	}
	return core.EncodePNGDataURL(s.image), true, nil
}

func (s *memStore) DeleteHeaderImage(ctx context.Context) error {
	s.mu.Lock()
	s.image = nil
	s.mu.Unlock()
	return nil
}
