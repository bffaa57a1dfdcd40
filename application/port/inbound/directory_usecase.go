package inbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// Create holder
type CreateHolderRequest struct {
	CompanyID string `json:"-"`

	Kind     string `json:"kind" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Document string `json:"document,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type HolderResponse struct {
	Holder *domain.Holder `json:"holder"`
}

type ListHoldersResponse struct {
	Holders []*domain.Holder `json:"holders"`
}

// DirectoryUseCase manages transfer destinations (depots, technicians,
// clients). It carries no lifecycle logic.
type DirectoryUseCase interface {
	CreateHolder(ctx context.Context, req CreateHolderRequest) (*HolderResponse, error)
	GetHolder(ctx context.Context, companyID, id string) (*HolderResponse, error)
	ListHolders(ctx context.Context, companyID string, kind *domain.HolderKind) (*ListHoldersResponse, error)
}
