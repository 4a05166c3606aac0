// Package board holds the employer review board: applications grouped into
// status columns, with optimistic drag-and-drop reclassification backed by a
// single status update against the record store.
package board

import (
	"fmt"
	"log"
	"sync"

	"clutchjobs/models"
)

// Store is the slice of the record store the board needs.
type Store interface {
	ListForEmployer(companyID string) ([]models.Application, error)
	UpdateStatus(id, status string) error
}

type Column struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Applications []models.Application `json:"applications"`
}

type Board struct {
	store     Store
	companyID string

	mu           sync.Mutex
	applications []models.Application
}

func New(store Store, companyID string) *Board {
	return &Board{store: store, companyID: companyID}
}

// Load replaces the board contents from the record store.
func (b *Board) Load() error {
	apps, err := b.store.ListForEmployer(b.companyID)
	if err != nil {
		return fmt.Errorf("loading applications: %v", err)
	}
	b.mu.Lock()
	b.applications = apps
	b.mu.Unlock()
	return nil
}

// Columns groups the applications into the fixed status columns, in board
// order, preserving load order within each column.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	columns := make([]Column, 0, len(models.ApplicationStatuses))
	for _, status := range models.ApplicationStatuses {
		column := Column{ID: status, Title: status, Applications: []models.Application{}}
		for _, app := range b.applications {
			if app.Status == status {
				column.Applications = append(column.Applications, app)
			}
		}
		columns = append(columns, column)
	}
	return columns
}

// Move reclassifies one application card into a target column. Local state
// updates optimistically and exactly one status update is issued; if that
// update fails, a full reload restores the pre-drag column assignment.
func (b *Board) Move(applicationID, targetColumn string) error {
	if !models.ValidStatus(targetColumn) {
		return fmt.Errorf("unknown column: %s", targetColumn)
	}

	b.mu.Lock()
	var app *models.Application
	for i := range b.applications {
		if b.applications[i].ID == applicationID {
			app = &b.applications[i]
			break
		}
	}
	if app == nil {
		b.mu.Unlock()
		return fmt.Errorf("application not found: %s", applicationID)
	}
	if app.Status == targetColumn {
		b.mu.Unlock()
		return nil
	}
	app.Status = targetColumn
	b.mu.Unlock()

	if err := b.store.UpdateStatus(applicationID, targetColumn); err != nil {
		log.Printf("board: status update failed, reloading: %v", err)
		if reloadErr := b.Load(); reloadErr != nil {
			log.Printf("board: reload after failed update also failed: %v", reloadErr)
		}
		return fmt.Errorf("updating application status: %v", err)
	}
	return nil
}
