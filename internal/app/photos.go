package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ayusman/yuletide/internal/store"
)

// AddPhoto persists p (assigning an ID when empty) and queues it to join
// the scene on the next render tick. Photos are only ever appended.
func (a *App) AddPhoto(p *store.Photo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if a.store != nil {
		if err := a.store.Photos().Create(p); err != nil {
			return fmt.Errorf("save photo: %w", err)
		}
	}

	a.pendingMu.Lock()
	a.pending = append(a.pending, p.ID)
	a.pendingMu.Unlock()

	a.journal.Success(fmt.Sprintf("Photo %q added.", displayName(p)))
	return nil
}

func displayName(p *store.Photo) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// SetHover marks a photo as hovered. Hover enlarges photos while scattered.
func (a *App) SetHover(id string, hovered bool) error {
	if !a.engine.SetHover(id, hovered) {
		return fmt.Errorf("%w: %s", ErrUnknownPhoto, id)
	}
	return nil
}
