// Package budget 汇总行程开销：目的地价格 + 活动价格对比预算。
package budget

import (
	"sort"

	"github.com/alexarts74/trip-indo/pkg/models"

	"github.com/shopspring/decimal"
)

// Item 预算榜单条目
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind"` // "destination" or "activity"
	Price float64 `json:"price"`
}

// Summary 行程预算汇总
type Summary struct {
	Budget           float64 `json:"budget"`
	BudgetDefined    bool    `json:"budget_defined"`
	DestinationTotal float64 `json:"destination_total"`
	ActivityTotal    float64 `json:"activity_total"`
	Total            float64 `json:"total"`
	Remaining        float64 `json:"remaining"`
	UsagePercent     float64 `json:"usage_percent"`
	OverBudget       bool    `json:"over_budget"`
	DestinationCount int     `json:"destination_count"`
	TopItems         []Item  `json:"top_items"`
}

const topItemCount = 5

// Compute 计算预算汇总。
// 金额累加走decimal，避免float误差；usage保留一位小数。
// 预算为0视为未设置：usage记0，不做除法。
func Compute(budgetAmount float64, destinations []models.Destination, activities []models.Activity) Summary {
	destTotal := decimal.Zero
	for _, d := range destinations {
		destTotal = destTotal.Add(decimal.NewFromFloat(d.Price))
	}

	actTotal := decimal.Zero
	for _, a := range activities {
		actTotal = actTotal.Add(decimal.NewFromFloat(a.Price))
	}

	total := destTotal.Add(actTotal)
	budget := decimal.NewFromFloat(budgetAmount)
	remaining := budget.Sub(total)

	summary := Summary{
		Budget:           budgetAmount,
		BudgetDefined:    budget.IsPositive(),
		DestinationTotal: destTotal.InexactFloat64(),
		ActivityTotal:    actTotal.InexactFloat64(),
		Total:            total.InexactFloat64(),
		Remaining:        remaining.InexactFloat64(),
		OverBudget:       budget.IsPositive() && total.GreaterThan(budget),
		DestinationCount: len(destinations),
		TopItems:         topItems(destinations, activities),
	}

	if summary.BudgetDefined {
		summary.UsagePercent = total.
			Div(budget).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			InexactFloat64()
	}

	return summary
}

// topItems 目的地在前、活动在后拼成一张榜，稳定排序取前五。
// 同价条目保持目的地先于活动的原始顺序。
func topItems(destinations []models.Destination, activities []models.Activity) []Item {
	items := make([]Item, 0, len(destinations)+len(activities))
	for _, d := range destinations {
		items = append(items, Item{ID: d.ID, Name: d.Name, Kind: "destination", Price: d.Price})
	}
	for _, a := range activities {
		items = append(items, Item{ID: a.ID, Name: a.Name, Kind: "activity", Price: a.Price})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price > items[j].Price
	})

	if len(items) > topItemCount {
		items = items[:topItemCount]
	}
	return items
}
