package lookup

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ListLookupsUseCase struct {
	lookupRepo lookup.Repository
	catalog    *platform.Catalog
	logger     logger.Logger
}

func NewListLookupsUseCase(lr lookup.Repository, catalog *platform.Catalog, log logger.Logger) *ListLookupsUseCase {
	return &ListLookupsUseCase{lookupRepo: lr, catalog: catalog, logger: log}
}

type ListLookupsInput struct {
	Handle   string
	Platform string
	Page     int
	Limit    int
}

type ListLookupsOutput struct {
	Lookups []*lookup.Lookup
}

func (uc *ListLookupsUseCase) Execute(ctx context.Context, input ListLookupsInput) (*ListLookupsOutput, error) {
	filter := lookup.Filter{Handle: input.Handle}

	if input.Platform != "" {
		p, err := uc.catalog.Parse(input.Platform)
		if err != nil {
			return nil, apperror.NewInvalidInput("unknown platform filter", err)
		}
		filter.Platform = p.ID
	}

	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	filter.Limit = input.Limit
	filter.Offset = (input.Page - 1) * input.Limit

	lookups, err := uc.lookupRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list lookups", err, zap.String("handle", input.Handle))
		return nil, err
	}
	return &ListLookupsOutput{Lookups: lookups}, nil
}
