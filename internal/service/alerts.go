package service

import (
	"context"
	"errors"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	"github.com/MAKAMOUL/prophoneplus/pkg/uid"
)

// AlertService derives low-stock alerts from the current product set.
// Alerts are derived data, never independently authored: the deriver runs
// after every data refresh and keeps at most one active alert per product.
type AlertService struct {
	store *repository.Store
}

// NewAlertService creates a new alert service.
func NewAlertService(store *repository.Store) *AlertService {
	return &AlertService{store: store}
}

// RefreshAlerts recomputes low-stock alerts for every non-deleted product
// at or below its minimum stock. Idempotent: repeated calls with unchanged
// stock change nothing. Stock recovering above minStock does not dismiss
// the alert; dismissal is the only path to clearing visibility.
func (s *AlertService) RefreshAlerts(ctx context.Context) error {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}

	for _, p := range products {
		if !p.IsLowStock() {
			continue
		}

		existing, err := s.store.GetAlertByProduct(ctx, p.ID)
		if errors.Is(err, repository.ErrNotFound) {
			alert := model.Alert{
				ID:              uid.New(),
				ProductID:       p.ID,
				ProductName:     p.Name,
				CurrentQuantity: p.Quantity,
				MinStock:        p.MinStock,
				CreatedAt:       time.Now(),
			}
			if err := s.store.InsertAlert(ctx, alert); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if existing.Dismissed {
			// Re-breach after dismissal revives the alert with a fresh
			// quantity snapshot.
			if err := s.store.ReviveAlert(ctx, existing.ID, p.Quantity, p.MinStock); err != nil {
				return err
			}
			continue
		}

		if existing.CurrentQuantity != p.Quantity {
			if err := s.store.UpdateAlertQuantity(ctx, existing.ID, p.Quantity); err != nil {
				return err
			}
		}
	}

	return nil
}

// DismissAlert marks one alert dismissed, removing it from the active view.
func (s *AlertService) DismissAlert(ctx context.Context, id string) error {
	return s.store.DismissAlert(ctx, id)
}

// ActiveAlerts returns all non-dismissed alerts.
func (s *AlertService) ActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.store.ListActiveAlerts(ctx)
}
