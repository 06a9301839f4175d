package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// EvaluationService defines the interface for evaluation criteria operations
type EvaluationService interface {
	// ValidateWeight checks that proposedWeight fits the section's remaining
	// weight budget, ignoring excludingCriterionID (zero for none).
	ValidateWeight(ctx context.Context, sectionID int64, proposedWeight int, excludingCriterionID int64) error
	ListCriteria(ctx context.Context, sectionID int64) ([]models.EvaluationCriterion, error)
	CreateCriterion(ctx context.Context, sectionID int64, name string, weight int) (*models.EvaluationCriterion, error)
	UpdateCriterion(ctx context.Context, id int64, name string, weight int) (*models.EvaluationCriterion, error)
	DeleteCriterion(ctx context.Context, id int64) error
}

type evaluationServiceImpl struct {
	tx      repositories.TxManager
	options EngineOptions
	logger  zerolog.Logger
}

// NewEvaluationService creates a new EvaluationService
func NewEvaluationService(tx repositories.TxManager, options EngineOptions, logger zerolog.Logger) EvaluationService {
	return &evaluationServiceImpl{
		tx:      tx,
		options: options.withDefaults(),
		logger:  logger.With().Str("component", "evaluation").Logger(),
	}
}

func (s *evaluationServiceImpl) checkWeight(ctx context.Context, store repositories.Store, sectionID int64, weight int, excludingID int64) error {
	criteria, err := store.FindActiveCriteriaBySection(ctx, sectionID)
	if err != nil {
		return err
	}
	return rules.ValidateWeight(criteria, weight, excludingID, s.options.MaxCriteriaWeight)
}

// ValidateWeight runs the weight check without changing anything
func (s *evaluationServiceImpl) ValidateWeight(ctx context.Context, sectionID int64, proposedWeight int, excludingCriterionID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		section, err := store.FindSectionByID(ctx, sectionID)
		if err != nil {
			return err
		}
		if err := requireActive(section.IsActive(), apperrors.ErrSectionNotFound); err != nil {
			return err
		}
		return s.checkWeight(ctx, store, sectionID, proposedWeight, excludingCriterionID)
	})
}

// ListCriteria lists the active criteria of a section
func (s *evaluationServiceImpl) ListCriteria(ctx context.Context, sectionID int64) ([]models.EvaluationCriterion, error) {
	var criteria []models.EvaluationCriterion
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		section, err := store.FindSectionByID(ctx, sectionID)
		if err != nil {
			return err
		}
		if err := requireActive(section.IsActive(), apperrors.ErrSectionNotFound); err != nil {
			return err
		}
		criteria, err = store.FindActiveCriteriaBySection(ctx, sectionID)
		return err
	})
	return criteria, err
}

// CreateCriterion adds a weighted criterion to a section
func (s *evaluationServiceImpl) CreateCriterion(ctx context.Context, sectionID int64, name string, weight int) (*models.EvaluationCriterion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrValidationFailed, "criterion name is required")
	}

	criterion := &models.EvaluationCriterion{
		SectionID: sectionID,
		Name:      name,
		Weight:    weight,
		Status:    models.StatusActive,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		// The section row lock serializes weight edits of one section.
		if _, err := lockActiveSection(ctx, store, sectionID); err != nil {
			return err
		}
		if err := s.checkWeight(ctx, store, sectionID, weight, 0); err != nil {
			return err
		}
		return store.PersistCriterion(ctx, criterion)
	})
	logOutcome(s.logger, "create_criterion", err)
	if err != nil {
		return nil, err
	}
	return criterion, nil
}

// UpdateCriterion renames or reweights a criterion
func (s *evaluationServiceImpl) UpdateCriterion(ctx context.Context, id int64, name string, weight int) (*models.EvaluationCriterion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrValidationFailed, "criterion name is required")
	}

	var criterion *models.EvaluationCriterion
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		c, err := store.FindCriterionByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(c.IsActive(), apperrors.ErrCriterionNotFound); err != nil {
			return err
		}
		if _, err := lockActiveSection(ctx, store, c.SectionID); err != nil {
			return err
		}
		if err := s.checkWeight(ctx, store, c.SectionID, weight, c.ID); err != nil {
			return err
		}
		c.Name = name
		c.Weight = weight
		if err := store.PersistCriterion(ctx, c); err != nil {
			return err
		}
		criterion = c
		return nil
	})
	logOutcome(s.logger, "update_criterion", err)
	if err != nil {
		return nil, err
	}
	return criterion, nil
}

// DeleteCriterion soft-deletes a criterion no grade refers to
func (s *evaluationServiceImpl) DeleteCriterion(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		c, err := store.FindCriterionByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(c.IsActive(), apperrors.ErrCriterionNotFound); err != nil {
			return err
		}
		graded, err := store.CountGradesByCriterion(ctx, id)
		if err != nil {
			return err
		}
		if graded > 0 {
			return apperrors.New(apperrors.ErrInUse, "criterion %d has %d grades", id, graded)
		}
		c.Status = models.StatusDeleted
		return store.PersistCriterion(ctx, c)
	})
	logOutcome(s.logger, "delete_criterion", err)
	return err
}
