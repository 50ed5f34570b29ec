package hierarchyhandler

import (
	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	employeestore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee/store"
)

// Обход графа руководителей. Граф обязан быть ациклическим, но случайный
// цикл в данных не должен ни зациклить обход, ни уронить операцию: цикл
// логируется как ошибка целостности, затронутая ветка исключается.
type Provider interface {
	IsAncestor(managerID, employeeID string) (bool, error)
	TransitiveSubordinates(managerID string) (map[string]struct{}, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		employeeStore: employeestore.NewInstance(db.DB),
	}
}

type impl struct {
	employeeStore employeestore.Provider
}

// снимок рёбер на время одного вызова: граф может меняться между вызовами,
// поэтому кешировать его глобально нельзя
type graph struct {
	parent   map[string]string
	children map[string][]string
}

func (i impl) snapshot() (graph, error) {
	list, err := i.employeeStore.List()
	if err != nil {
		return graph{}, err
	}
	g := graph{
		parent:   make(map[string]string, len(list)),
		children: make(map[string][]string),
	}
	for _, emp := range list {
		if emp.SupervisorID == nil || *emp.SupervisorID == "" {
			continue
		}
		g.parent[emp.ID] = *emp.SupervisorID
		g.children[*emp.SupervisorID] = append(g.children[*emp.SupervisorID], emp.ID)
	}
	return g, nil
}

func (i impl) IsAncestor(managerID, employeeID string) (bool, error) {
	if managerID == "" || employeeID == "" || managerID == employeeID {
		return false, nil
	}
	g, err := i.snapshot()
	if err != nil {
		return false, err
	}
	visited := map[string]struct{}{employeeID: {}}
	current := employeeID
	for {
		parent, ok := g.parent[current]
		if !ok {
			return false, nil
		}
		if parent == managerID {
			return true, nil
		}
		if _, seen := visited[parent]; seen {
			i.logCycle(parent)
			return false, nil
		}
		visited[parent] = struct{}{}
		current = parent
	}
}

func (i impl) TransitiveSubordinates(managerID string) (map[string]struct{}, error) {
	g, err := i.snapshot()
	if err != nil {
		return nil, err
	}
	result := map[string]struct{}{}
	visited := map[string]struct{}{managerID: {}}
	queue := append([]string{}, g.children[managerID]...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			i.logCycle(current)
			continue
		}
		visited[current] = struct{}{}
		result[current] = struct{}{}
		queue = append(queue, g.children[current]...)
	}
	return result, nil
}

func (i impl) logCycle(employeeID string) {
	log.
		WithField("employee_id", employeeID).
		Error("обнаружен цикл в графе руководителей, ветка исключена из обхода")
}
