package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/dto"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
)

type TransactionService interface {
	Create(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter model.TransactionFilter) ([]dto.TransactionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionService struct {
	repo repository.TransactionRepository
}

func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

func (s *transactionService) Create(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	view, err := s.repo.CreateWithItems(ctx, req.Model())
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("transaction_id", view.ID.String()).
		Str("cashier_id", view.CashierID.String()).
		Int("items", len(view.Items)).
		Msg("transaction created")
	resp := dto.NewTransactionResponse(view)
	return &resp, nil
}

func (s *transactionService) List(ctx context.Context, filter model.TransactionFilter) ([]dto.TransactionResponse, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TransactionResponse, len(views))
	for i := range views {
		resp[i] = dto.NewTransactionResponse(&views[i])
	}
	return resp, nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	view, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperr.NotFoundf("transaction %s not found", id)
	}
	resp := dto.NewTransactionResponse(view)
	return &resp, nil
}

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	view, err := s.repo.Update(ctx, id, req.Patch())
	if err != nil {
		return nil, err
	}
	resp := dto.NewTransactionResponse(view)
	return &resp, nil
}

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFoundf("transaction %s not found", id)
	}
	log.Info().Str("transaction_id", id.String()).Msg("transaction deleted")
	return nil
}
