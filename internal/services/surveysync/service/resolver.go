package service

import (
	"context"

	"surveysync/internal/services/surveysync/domain"
)

// ReferenceResolver maps external reference ids to internal ids; it never writes
type ReferenceResolver struct{}

// Resolve looks up one reference; an empty externalID is a miss without a query
func (ReferenceResolver) Resolve(ctx context.Context, repo domain.StorageRepo, dim domain.Dimension, externalID string) (domain.RefID, error) {
	if externalID == "" {
		return domain.RefID{}, nil
	}
	return repo.ResolveRef(ctx, dim, externalID)
}

// ResolveAll resolves the company, location and customer of rec
func (r ReferenceResolver) ResolveAll(ctx context.Context, repo domain.StorageRepo, rec domain.SurveyRecord) (domain.Refs, error) {
	var (
		refs domain.Refs
		err  error
	)
	if refs.Company, err = r.Resolve(ctx, repo, domain.DimensionCompany, rec.CompanyExternalID); err != nil {
		return domain.Refs{}, err
	}
	if refs.Location, err = r.Resolve(ctx, repo, domain.DimensionLocation, rec.LocationExternalID); err != nil {
		return domain.Refs{}, err
	}
	if refs.Customer, err = r.Resolve(ctx, repo, domain.DimensionCustomer, rec.CustomerExternalID); err != nil {
		return domain.Refs{}, err
	}
	return refs, nil
}
