package hierarchyhandler

import (
	"testing"

	"github.com/stretchr/testify/require"

	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type fakeEmployeeStore struct {
	employees []dbmodels.Employee
}

func (s *fakeEmployeeStore) Create(rec dbmodels.Employee) (string, error) { return rec.ID, nil }

func (s *fakeEmployeeStore) GetByID(id string) (*dbmodels.Employee, error) {
	for _, rec := range s.employees {
		if rec.ID == id {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeEmployeeStore) Update(id string, updMap map[string]interface{}) error { return nil }

func (s *fakeEmployeeStore) Deactivate(id string) error { return nil }

func (s *fakeEmployeeStore) List() ([]dbmodels.Employee, error) {
	return s.employees, nil
}

func employee(id string, supervisorID string) dbmodels.Employee {
	rec := dbmodels.Employee{BaseModel: dbmodels.BaseModel{ID: id}, IsActive: true}
	if supervisorID != "" {
		rec.SupervisorID = &supervisorID
	}
	return rec
}

// ceo -> (dir1, dir2), dir1 -> (mgr1), mgr1 -> (emp1, emp2)
func newTestHandler() impl {
	return impl{employeeStore: &fakeEmployeeStore{employees: []dbmodels.Employee{
		employee("ceo", ""),
		employee("dir1", "ceo"),
		employee("dir2", "ceo"),
		employee("mgr1", "dir1"),
		employee("emp1", "mgr1"),
		employee("emp2", "mgr1"),
	}}}
}

func TestIsAncestor(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		name     string
		manager  string
		employee string
		expected bool
	}{
		{"прямой руководитель", "mgr1", "emp1", true},
		{"транзитивный руководитель", "ceo", "emp1", true},
		{"руководитель через уровень", "dir1", "emp2", true},
		{"чужая ветка", "dir2", "emp1", false},
		{"обратное направление", "emp1", "mgr1", false},
		{"сам себе", "emp1", "emp1", false},
		{"неизвестный сотрудник", "mgr1", "ghost", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.IsAncestor(tc.manager, tc.employee)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestTransitiveSubordinates(t *testing.T) {
	h := newTestHandler()

	got, err := h.TransitiveSubordinates("dir1")
	require.NoError(t, err)
	require.Equal(t, map[string]struct{}{
		"mgr1": {},
		"emp1": {},
		"emp2": {},
	}, got)

	got, err = h.TransitiveSubordinates("emp1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCycleSafety(t *testing.T) {
	// испорченные данные: a -> b -> c -> a, отдельно здоровый x -> a
	h := impl{employeeStore: &fakeEmployeeStore{employees: []dbmodels.Employee{
		employee("a", "c"),
		employee("b", "a"),
		employee("c", "b"),
		employee("x", "a"),
	}}}

	t.Run("подъём по циклу завершается", func(t *testing.T) {
		got, err := h.IsAncestor("ghost", "x")
		require.NoError(t, err)
		require.False(t, got)
	})

	t.Run("обход вниз не зацикливается", func(t *testing.T) {
		got, err := h.TransitiveSubordinates("a")
		require.NoError(t, err)
		// b достижим из a, x тоже; цикл исключает повторное посещение a
		require.Contains(t, got, "b")
		require.Contains(t, got, "x")
		require.NotContains(t, got, "a")
	})

	t.Run("руководитель внутри цикла находится", func(t *testing.T) {
		got, err := h.IsAncestor("a", "x")
		require.NoError(t, err)
		require.True(t, got)
	})
}
