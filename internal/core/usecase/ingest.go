package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// IngestSourceUseCase accepts new study materials: the raw payload is stored,
// metadata recorded, and a queue event published for the processing pipeline.
// The collection is created on first ingestion into a new name.
type IngestSourceUseCase struct {
	repo    ports.SourceRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	store   ports.ChunkStore
}

func NewIngestSourceUseCase(
	repo ports.SourceRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	store ports.ChunkStore,
) *IngestSourceUseCase {
	return &IngestSourceUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		store:   store,
	}
}

func (uc *IngestSourceUseCase) IngestFile(
	ctx context.Context,
	collection, filename string,
	kind domain.SourceKind,
	body io.Reader,
) (*domain.Source, error) {
	if kind != domain.SourcePDF && kind != domain.SourcePlainText {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest file", fmt.Errorf("unsupported source kind %q", kind))
	}
	if err := uc.ensureCollection(collection); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save source payload: %w", err)
	}

	src := uc.newSource(id, collection, filename, kind, storageKey)
	return uc.registerAndPublish(ctx, src)
}

func (uc *IngestSourceUseCase) IngestYouTube(
	ctx context.Context,
	collection, videoURL string,
) (*domain.Source, error) {
	videoID, err := ParseYouTubeVideoID(videoURL)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest youtube", err)
	}
	if err := uc.ensureCollection(collection); err != nil {
		return nil, err
	}

	// Transcript download happens in the worker; only the video id is kept.
	src := uc.newSource(uuid.NewString(), collection, videoID, domain.SourceYouTube, "")
	return uc.registerAndPublish(ctx, src)
}

func (uc *IngestSourceUseCase) ensureCollection(collection string) error {
	if err := validateCollectionName(collection); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "ingest", err)
	}
	if uc.store.Exists(collection) {
		return nil
	}
	return uc.store.Create(collection)
}

func (uc *IngestSourceUseCase) newSource(
	id, collection, name string,
	kind domain.SourceKind,
	storageKey string,
) *domain.Source {
	now := time.Now().UTC()
	return &domain.Source{
		ID:          id,
		Collection:  collection,
		Name:        name,
		Kind:        kind,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (uc *IngestSourceUseCase) registerAndPublish(ctx context.Context, src *domain.Source) (*domain.Source, error) {
	if err := uc.repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source metadata: %w", err)
	}
	if err := uc.queue.PublishSourceIngested(ctx, src.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return src, nil
}

func validateCollectionName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("collection name is required")
	}
	if len(name) > 128 {
		return errors.New("collection name exceeds 128 characters")
	}
	return nil
}

// ParseYouTubeVideoID extracts the video id from watch, share, shorts and
// embed URL shapes, or accepts a bare video id.
func ParseYouTubeVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("video url is required")
	}
	if !strings.Contains(raw, "/") && !strings.Contains(raw, "?") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); id != "" {
					return id, nil
				}
			}
		}
	}
	return "", fmt.Errorf("unrecognized youtube url: %s", raw)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "source.bin"
	}
	return base
}
