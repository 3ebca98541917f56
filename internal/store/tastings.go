package store

import (
	"context"
	"fmt"

	"flavorlab/models"
)

// SaveTasting records an evaluation of one formulation version.
func (s *Store) SaveTasting(ctx context.Context, session *models.TastingSession) error {
	if session == nil {
		return fmt.Errorf("%w: tasting session is nil", ErrValidation)
	}
	if err := Validate(session); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := requireRow(db, &models.Formulation{}, session.FormulationID, "formulation"); err != nil {
		return err
	}
	if session.TastedAt.IsZero() {
		session.TastedAt = s.now()
	}
	if err := db.Create(session).Error; err != nil {
		session.ID = 0
		return fmt.Errorf("create tasting session: %w", err)
	}
	return nil
}

func (s *Store) ListTastings(ctx context.Context, formulationID uint) ([]models.TastingSession, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var sessions []models.TastingSession
	if err := db.Where("formulation_id = ?", formulationID).
		Order("tasted_at desc, id desc").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list tastings for formulation %d: %w", formulationID, err)
	}
	return sessions, nil
}

// AverageOverall returns the mean overall score and the number of sessions
// for a formulation version.
func (s *Store) AverageOverall(ctx context.Context, formulationID uint) (float64, int, error) {
	sessions, err := s.ListTastings(ctx, formulationID)
	if err != nil {
		return 0, 0, err
	}
	if len(sessions) == 0 {
		return 0, 0, nil
	}
	total := 0
	for _, session := range sessions {
		total += session.OverallScore
	}
	return float64(total) / float64(len(sessions)), len(sessions), nil
}
