package domain

import (
	"context"

	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/repository"
)

type Repository = repository.Repository[Item]

type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Code        string  `json:"code" validate:"omitempty,max=128"`
	Description *string `json:"description"`
}

type UpdateItemRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

type ListItemRequest struct {
	Search string
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	List(context.Context, ListItemRequest) ([]Item, error)
	GetByID(ctx context.Context, id string) (Item, error)
	Update(context.Context, UpdateItemRequest) (Item, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID    = apperror.Validation("id", "invalid_id")
	ErrInvalidCode  = apperror.Validation("code", "invalid_code")
	ErrNotFound     = apperror.New(apperror.KindNotFound, "item_not_found")
	ErrAccessDenied = apperror.New(apperror.KindAccessDenied, "item_access_denied")
	ErrCodeTaken    = apperror.New(apperror.KindConflict, "item_code_taken")
)
