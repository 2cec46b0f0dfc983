package recommend

import (
	"sort"
	"strings"

	"github.com/kilianp07/standwait/core/model"
)

// Rank orders stands by ascending wait. Stands with equal waits keep their
// input order.
func Rank(stands []StandStatus) []StandStatus {
	out := append([]StandStatus(nil), stands...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WaitMinutes < out[j].WaitMinutes
	})
	return out
}

// CategorySupport sums historical quantity per location and lower-cased category.
func CategorySupport(sales []model.ItemSale) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, s := range sales {
		m, ok := out[s.Location]
		if !ok {
			m = make(map[string]int)
			out[s.Location] = m
		}
		m[strings.ToLower(s.Category)] += s.Quantity
	}
	return out
}

// FilterByCategory keeps the stands whose historical quantity for category
// exceeds threshold. Order is preserved.
func FilterByCategory(stands []StandStatus, sales []model.ItemSale, category string, threshold int) []StandStatus {
	support := CategorySupport(sales)
	cat := strings.ToLower(strings.TrimSpace(category))
	out := make([]StandStatus, 0, len(stands))
	for _, s := range stands {
		if support[s.Name][cat] > threshold {
			out = append(out, s)
		}
	}
	return out
}

// servedCategories lists, in sorted order, the categories a stand sells above
// threshold, using the spelling of the first matching sale.
func servedCategories(sales []model.ItemSale, threshold int) map[string][]string {
	support := CategorySupport(sales)
	names := make(map[string]map[string]string)
	for _, s := range sales {
		if names[s.Location] == nil {
			names[s.Location] = make(map[string]string)
		}
		key := strings.ToLower(s.Category)
		if _, ok := names[s.Location][key]; !ok {
			names[s.Location][key] = s.Category
		}
	}
	out := make(map[string][]string)
	for loc, cats := range support {
		for key, qty := range cats {
			if qty > threshold {
				out[loc] = append(out[loc], names[loc][key])
			}
		}
		sort.Strings(out[loc])
	}
	return out
}

// topItems returns up to n best-selling items per location.
func topItems(sales []model.ItemSale, n int) map[string][]string {
	byLoc := make(map[string][]model.ItemSale)
	for _, s := range sales {
		byLoc[s.Location] = append(byLoc[s.Location], s)
	}
	out := make(map[string][]string, len(byLoc))
	for loc, list := range byLoc {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Quantity != list[j].Quantity {
				return list[i].Quantity > list[j].Quantity
			}
			return list[i].Item < list[j].Item
		})
		for i := 0; i < len(list) && i < n; i++ {
			out[loc] = append(out[loc], list[i].Item)
		}
	}
	return out
}
