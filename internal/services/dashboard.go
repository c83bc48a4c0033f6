package services

import (
	"context"
	"time"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// DashboardSummary is the rollup returned by the dashboard. The my_*
// fields are only set for agents.
type DashboardSummary struct {
	TotalProperties          int64            `json:"total_properties"`
	PropertiesByStatus       map[string]int64 `json:"properties_by_status"`
	TotalClients             int64            `json:"total_clients"`
	TotalContracts           int64            `json:"total_contracts"`
	ContractsByType          map[string]int64 `json:"contracts_by_type"`
	VisitsCompletedThisMonth int64            `json:"visits_completed_this_month"`

	MyProperties      *int64 `json:"my_properties,omitempty"`
	MyClients         *int64 `json:"my_clients,omitempty"`
	MyContracts       *int64 `json:"my_contracts,omitempty"`
	MyVisitsPending   *int64 `json:"my_visits_pending,omitempty"`
	MyVisitsCompleted *int64 `json:"my_visits_completed,omitempty"`
}

type bucket struct {
	Name  string
	Total int64
}

// Summary aggregates the rows visible to req
func Summary(ctx context.Context, db *gorm.DB, req policy.Requester) (*DashboardSummary, error) {
	if err := policy.CanAccess(req, policy.Dashboard, policy.Read); err != nil {
		return nil, err
	}

	tagged := db.WithContext(ctx).Clauses(hints.CommentBefore("select", "dashboard"))
	scoped := func(model interface{}, res policy.Resource) *gorm.DB {
		return tagged.Session(&gorm.Session{}).Model(model).Scopes(policy.Scope(req, res))
	}

	summary := &DashboardSummary{}
	var err error

	if err = scoped(&models.Property{}, policy.Property).Count(&summary.TotalProperties).Error; err != nil {
		return nil, err
	}
	if summary.PropertiesByStatus, err = countBy(scoped(&models.Property{}, policy.Property), "properties.status"); err != nil {
		return nil, err
	}
	if err = scoped(&models.Client{}, policy.Client).Count(&summary.TotalClients).Error; err != nil {
		return nil, err
	}
	if err = scoped(&models.Contract{}, policy.Contract).Count(&summary.TotalContracts).Error; err != nil {
		return nil, err
	}
	if summary.ContractsByType, err = countBy(scoped(&models.Contract{}, policy.Contract), "contracts.type"); err != nil {
		return nil, err
	}

	now := Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err = scoped(&models.Visit{}, policy.Visit).
		Where("visits.status = ? AND visits.date >= ? AND visits.date <= ?", models.VisitCompleted, firstOfMonth, now).
		Count(&summary.VisitsCompletedThisMonth).Error; err != nil {
		return nil, err
	}

	if req.Role == policy.Agent {
		var pending, completed int64
		if err = scoped(&models.Visit{}, policy.Visit).
			Where("visits.status = ?", models.VisitScheduled).Count(&pending).Error; err != nil {
			return nil, err
		}
		if err = scoped(&models.Visit{}, policy.Visit).
			Where("visits.status = ?", models.VisitCompleted).Count(&completed).Error; err != nil {
			return nil, err
		}
		properties, clients, contracts := summary.TotalProperties, summary.TotalClients, summary.TotalContracts
		summary.MyProperties = &properties
		summary.MyClients = &clients
		summary.MyContracts = &contracts
		summary.MyVisitsPending = &pending
		summary.MyVisitsCompleted = &completed
	}

	return summary, nil
}

// countBy groups q by column and counts each group.
func countBy(q *gorm.DB, column string) (map[string]int64, error) {
	var rows []bucket
	if err := q.Select(column + " AS name, COUNT(*) AS total").
		Group(column).
		Order(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Total
	}
	return out, nil
}
