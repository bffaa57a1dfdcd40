package usecase

import (
	"context"
	"strings"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
	"github.com/google/uuid"
)

// DirectoryUseCase maintains the transfer-destination directory.
type DirectoryUseCase struct {
	holders outbound.HolderRepository
	logger  outbound.Logger
}

func NewDirectoryUseCase(holders outbound.HolderRepository, log outbound.Logger) *DirectoryUseCase {
	return &DirectoryUseCase{holders: holders, logger: log}
}

func (uc *DirectoryUseCase) CreateHolder(ctx context.Context, req inbound.CreateHolderRequest) (*inbound.HolderResponse, error) {
	kind := domain.HolderKind(req.Kind)
	switch kind {
	case domain.HolderDepot, domain.HolderTechnician, domain.HolderClient:
	default:
		return nil, domain.NewValidationError("kind", "must be depot, technician or client")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	holder := &domain.Holder{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		Kind:      kind,
		Name:      name,
		Document:  req.Document,
		Email:     req.Email,
		Phone:     req.Phone,
		Active:    true,
	}
	if err := uc.holders.Create(ctx, holder); err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "holder created", map[string]interface{}{
		"holder_id": holder.ID,
		"kind":      string(holder.Kind),
	})
	return &inbound.HolderResponse{Holder: holder}, nil
}

func (uc *DirectoryUseCase) GetHolder(ctx context.Context, companyID, id string) (*inbound.HolderResponse, error) {
	holder, err := uc.holders.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return &inbound.HolderResponse{Holder: holder}, nil
}

func (uc *DirectoryUseCase) ListHolders(ctx context.Context, companyID string, kind *domain.HolderKind) (*inbound.ListHoldersResponse, error) {
	holders, err := uc.holders.FindAll(ctx, companyID, kind)
	if err != nil {
		return nil, err
	}
	return &inbound.ListHoldersResponse{Holders: holders}, nil
}
