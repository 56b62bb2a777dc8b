package presentation

import "github.com/google/uuid"

// Repository exposes keyed access to live Presentation aggregates. The
// default implementation is the in-memory store; a durable store can be
// swapped in without touching the orchestrator.
type Repository interface {
	Create(p *Presentation) *Presentation
	Get(id uuid.UUID) (*Presentation, bool)
	Update(p *Presentation) *Presentation
	Delete(id uuid.UUID) bool
	ListAll() []*Presentation
}

// SnapshotRepository stores frozen PresentationWithSlides aggregates.
type SnapshotRepository interface {
	Create(p *PresentationWithSlides) *PresentationWithSlides
	Get(id uuid.UUID) (*PresentationWithSlides, bool)
	Update(p *PresentationWithSlides) *PresentationWithSlides
	Delete(id uuid.UUID) bool
	ListAll() []*PresentationWithSlides
}
