package entitlementhandler

// Политика начисления: размер отпуска — ступенчатая функция стажа.
type policyStep struct {
	minYears int
	days     int
}

var entitlementPolicy = []policyStep{
	{minYears: 20, days: 25},
	{minYears: 10, days: 20},
	{minYears: 5, days: 15},
	{minYears: 0, days: 12},
}

// EntitledDaysForTenure возвращает размер отпуска для полного стажа в годах.
func EntitledDaysForTenure(years int) int {
	for _, step := range entitlementPolicy {
		if years >= step.minYears {
			return step.days
		}
	}
	return 0
}
