package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"widget-canvas/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	CanvasFileName      = "canvas_state.json"
	HeaderImageFileName = "header_image"
)

type fsStore struct {
	basePath string

	// One lock per file: saves of the same file serialize, the two files stay independent.
	canvasMu sync.Mutex
	imageMu  sync.Mutex
}

// NewStore creates a store rooted at the app-local-data directory basePath.
// NewStore itself touches nothing on disk. The directory is created by the
// first save, or by Watch.
func NewStore(basePath string) *fsStore {
	return &fsStore{basePath: basePath}
}

func (s *fsStore) canvasPath() string {
	return filepath.Join(s.basePath, CanvasFileName)
}

func (s *fsStore) imagePath() string {
	return filepath.Join(s.basePath, HeaderImageFileName)
}

// CanvasStore implementation
func (s *fsStore) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	filePath := s.canvasPath()
	log := logrus.WithField("file_path", filePath)

	data, err := core.EncodeCanvas(doc)
	if err != nil {
		log.WithError(err).Error("Failed to encode canvas")
		return err
	}

	s.canvasMu.Lock()
	defer s.canvasMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		log.WithError(err).Error("Failed to create app directory")
		return core.IOError("Failed to create app directory", err)
	}

	if err := writeFileAtomic(filePath, data); err != nil {
		log.WithError(err).Error("Failed to write canvas file")
		return core.IOError("Failed to write canvas data", err)
	}

	log.WithFields(logrus.Fields{
		"widgets":     len(doc.Widgets),
		"data_length": len(data),
	}).Info("Canvas saved successfully")
	return nil
}

func (s *fsStore) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	filePath := s.canvasPath()
	log := logrus.WithField("file_path", filePath)

	s.canvasMu.Lock()
	data, err := os.ReadFile(filePath)
	s.canvasMu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Canvas file does not exist, returning default canvas")
			return core.DefaultDocument(), nil
		}
		log.WithError(err).Error("Failed to read canvas file")
		return nil, core.IOError("Failed to read canvas data", err)
	}

	doc, err := core.DecodeCanvas(data)
	if err != nil {
		log.WithError(err).Error("Failed to decode canvas file")
		return nil, err
	}

	log.WithField("widgets", len(doc.Widgets)).Info("Canvas loaded successfully")
	return doc, nil
}

// HeaderImageStore implementation
func (s *fsStore) SaveHeaderImage(ctx context.Context, dataURL string) error {
	filePath := s.imagePath()
	log := logrus.WithField("file_path", filePath)

	// Parse before touching the disk so a bad payload leaves the stored image intact.
	data, err := core.ParseDataURL(dataURL)
	if err != nil {
		log.WithError(err).Warn("Rejected header image")
		return err
	}

	s.imageMu.Lock()
	defer s.imageMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		log.WithError(err).Error("Failed to create app directory")
		return core.IOError("Failed to create app directory", err)
	}

	if err := writeFileAtomic(filePath, data); err != nil {
		log.WithError(err).Error("Failed to write header image")
		return core.IOError("Failed to write header image", err)
	}

	log.WithField("data_length", len(data)).Info("Header image saved successfully")
	return nil
}

func (s *fsStore) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	filePath := s.imagePath()
	log := logrus.WithField("file_path", filePath)

	s.imageMu.Lock()
	data, err := os.ReadFile(filePath)
	s.imageMu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("No header image stored")
			return "", false, nil
		}
		log.WithError(err).Error("Failed to read header image")
		return "", false, core.IOError("Failed to read header image", err)
	}

	log.WithField("data_length", len(data)).Info("Header image loaded successfully")
	return core.EncodePNGDataURL(data), true, nil
}

func (s *fsStore) DeleteHeaderImage(ctx context.Context) error {
	filePath := s.imagePath()
	log := logrus.WithField("file_path", filePath)

	s.imageMu.Lock()
	defer s.imageMu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("Header image not found for deletion, considered successful")
			return nil
		}
		log.WithError(err).Error("Failed to delete header image")
		return core.IOError("Failed to delete header image", err)
	}

	log.Info("Header image deleted successfully")
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so readers
// see either the old contents or the new ones, never a truncated file.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+ulid.Make().String()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
