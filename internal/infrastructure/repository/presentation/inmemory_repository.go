package presentation

import (
	"github.com/google/uuid"

	domain "deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/infrastructure/repository/memstore"
)

// NewInMemoryRepository backs the presentation repository with the generic
// in-memory store.
func NewInMemoryRepository() domain.Repository {
	return memstore.New[uuid.UUID, *domain.Presentation]()
}

// NewInMemorySnapshotRepository backs the snapshot repository with the
// generic in-memory store.
func NewInMemorySnapshotRepository() domain.SnapshotRepository {
	return memstore.New[uuid.UUID, *domain.PresentationWithSlides]()
}
