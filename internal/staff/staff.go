// Package staff содержит реестр сотрудников точки.
package staff

import "strings"

// Member описывает сотрудника: официанта или менеджера.
type Member struct {
	ID       string
	Name     string
	BranchID string
	Manager  bool
}

// Roster хранит реестр сотрудников с поиском по идентификатору.
type Roster struct {
	byID map[string]Member
}

// NewRoster создаёт реестр из списка сотрудников.
func NewRoster(members []Member) *Roster {
	byID := make(map[string]Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return &Roster{byID: byID}
}

// DefaultRoster возвращает штатный реестр точки.
func DefaultRoster() *Roster {
	return NewRoster([]Member{
		{ID: "STF001", Name: "Ramesh Kumar", BranchID: "satara"},
		{ID: "STF002", Name: "Priya Singh", BranchID: "satara"},
		{ID: "STF003", Name: "Amit Patel", BranchID: "karad"},
		{ID: "MGR01", Name: "Suresh Gupta", Manager: true},
		{ID: "MGR02", Name: "Anjali Sharma", Manager: true},
	})
}

// Find ищет сотрудника по идентификатору без учёта регистра.
func (r *Roster) Find(id string) (Member, bool) {
	m, ok := r.byID[strings.ToUpper(id)]
	return m, ok
}
