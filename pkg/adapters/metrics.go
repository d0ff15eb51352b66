package adapters

import (
	"github.com/de-tools/claim-audit/pkg/models/api"
	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/models/store"
)

func MapComparisonRowDomainToApi(r domain.ComparisonRow) api.ComparisonRow {
	return api.ComparisonRow{
		Metric:         r.Metric,
		CurrentValue:   r.Current,
		OldValue:       r.Previous,
		AbsoluteChange: r.AbsoluteChange,
		PercentChange:  r.PercentChange,
	}
}

func MapComparisonDomainToApi(rows []domain.ComparisonRow) []api.ComparisonRow {
	res := make([]api.ComparisonRow, 0, len(rows))
	for _, r := range rows {
		res = append(res, MapComparisonRowDomainToApi(r))
	}
	return res
}

func MapMetricsStoreToApi(info *store.RunInfo, scalars map[string]float64) api.Metrics {
	res := api.Metrics{
		Scalars: map[string]float64{},
	}
	if info != nil {
		res.GeneratedAt = info.CreatedAt
		res.SemanticStatus = info.SemanticStatus
		res.SemanticError = info.SemanticError
	}
	for k, v := range scalars {
		res.Scalars[k] = v
	}
	return res
}

func MapTableStoreToApi(t *store.Table) api.Table {
	return api.Table{
		Name:    t.Name,
		Columns: t.Columns,
		Rows:    t.Rows,
	}
}
