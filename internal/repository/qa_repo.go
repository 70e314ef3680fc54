package repository

import (
	"context"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QARepository interface {
	CreateRound(ctx context.Context, round *model.QATestingRound) error
	FindRoundByID(ctx context.Context, id uuid.UUID) (*model.QATestingRound, error)
	ListRoundsForEntry(ctx context.Context, entryID uuid.UUID) ([]model.QATestingRound, error)
	MaxRoundNumber(ctx context.Context, entryID uuid.UUID) (int, error)
	UpdateRound(ctx context.Context, round *model.QATestingRound) error
	CreateBug(ctx context.Context, bug *model.QABug) error
	ListBugsForRound(ctx context.Context, roundID uuid.UUID) ([]model.QABug, error)
}

type qaRepository struct {
	db *gorm.DB
}

func NewQARepository(db *gorm.DB) QARepository {
	return &qaRepository{db: db}
}

func (r *qaRepository) CreateRound(ctx context.Context, round *model.QATestingRound) error {
	return GetDB(ctx, r.db).Create(round).Error
}

func (r *qaRepository) FindRoundByID(ctx context.Context, id uuid.UUID) (*model.QATestingRound, error) {
	var round model.QATestingRound
	if err := GetDB(ctx, r.db).Preload("Tester").First(&round, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *qaRepository) ListRoundsForEntry(ctx context.Context, entryID uuid.UUID) ([]model.QATestingRound, error) {
	var rounds []model.QATestingRound
	if err := GetDB(ctx, r.db).Where("history_entry_id = ?", entryID).
		Order("round_number asc").Find(&rounds).Error; err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *qaRepository) MaxRoundNumber(ctx context.Context, entryID uuid.UUID) (int, error) {
	var max *int
	if err := GetDB(ctx, r.db).Model(&model.QATestingRound{}).
		Where("history_entry_id = ?", entryID).
		Select("max(round_number)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *qaRepository) UpdateRound(ctx context.Context, round *model.QATestingRound) error {
	return GetDB(ctx, r.db).Save(round).Error
}

func (r *qaRepository) CreateBug(ctx context.Context, bug *model.QABug) error {
	return GetDB(ctx, r.db).Create(bug).Error
}

func (r *qaRepository) ListBugsForRound(ctx context.Context, roundID uuid.UUID) ([]model.QABug, error) {
	var bugs []model.QABug
	if err := GetDB(ctx, r.db).Where("qa_round_id = ?", roundID).
		Order("created_at asc").Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}
