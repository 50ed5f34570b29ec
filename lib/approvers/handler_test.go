package approvershandler

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type fakeApproverStore struct {
	records []dbmodels.DesignatedApprover
	seq     int
}

func (s *fakeApproverStore) Appoint(employeeID string) (string, error) {
	s.seq++
	rec := dbmodels.DesignatedApprover{
		BaseModel:   dbmodels.BaseModel{ID: fmt.Sprintf("appr-%d", s.seq)},
		EmployeeID:  employeeID,
		AppointedAt: time.Now(),
		IsActive:    true,
	}
	s.records = append(s.records, rec)
	return rec.ID, nil
}

func (s *fakeApproverStore) Revoke(employeeID string) error {
	for idx := range s.records {
		if s.records[idx].EmployeeID == employeeID {
			s.records[idx].IsActive = false
		}
	}
	return nil
}

func (s *fakeApproverStore) ListActive() ([]dbmodels.DesignatedApprover, error) {
	list := []dbmodels.DesignatedApprover{}
	for _, rec := range s.records {
		if rec.IsActive {
			list = append(list, rec)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AppointedAt.Before(list[j].AppointedAt)
	})
	return list, nil
}

func newTestHandler(t *testing.T, panelSize int) (impl, *fakeApproverStore) {
	t.Helper()
	conf := new(config.Configuration)
	conf.Workflow.PanelSize = panelSize
	config.Conf = conf
	store := &fakeApproverStore{}
	return impl{store: store}, store
}

func appoint(t *testing.T, store *fakeApproverStore, employeeID string, appointedAt time.Time) {
	t.Helper()
	_, err := store.Appoint(employeeID)
	require.NoError(t, err)
	store.records[len(store.records)-1].AppointedAt = appointedAt
}

func TestSelectPanel(t *testing.T) {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("самые давние назначения первыми", func(t *testing.T) {
		h, store := newTestHandler(t, 3)
		appoint(t, store, "late", base.AddDate(0, 6, 0))
		appoint(t, store, "first", base)
		appoint(t, store, "mid", base.AddDate(0, 2, 0))
		appoint(t, store, "extra", base.AddDate(1, 0, 0))

		panel, err := h.SelectPanel(models.RequestKindVacation)
		require.NoError(t, err)
		require.Equal(t, []string{"first", "mid", "late"}, panel)
	})

	t.Run("неполная панель", func(t *testing.T) {
		h, store := newTestHandler(t, 3)
		appoint(t, store, "a", base)
		appoint(t, store, "b", base.AddDate(0, 1, 0))

		panel, err := h.SelectPanel(models.RequestKindLeave)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, panel)
	})

	t.Run("пустой реестр", func(t *testing.T) {
		h, _ := newTestHandler(t, 3)
		_, err := h.SelectPanel(models.RequestKindVacation)
		require.ErrorIs(t, err, errs.ErrNoPanel)
	})

	t.Run("отозванные не попадают в панель", func(t *testing.T) {
		h, store := newTestHandler(t, 2)
		appoint(t, store, "a", base)
		appoint(t, store, "b", base.AddDate(0, 1, 0))
		appoint(t, store, "c", base.AddDate(0, 2, 0))
		require.NoError(t, h.Revoke("a"))

		panel, err := h.SelectPanel(models.RequestKindVacation)
		require.NoError(t, err)
		require.Equal(t, []string{"b", "c"}, panel)
	})

	t.Run("повторное назначение возвращает в реестр", func(t *testing.T) {
		h, store := newTestHandler(t, 3)
		appoint(t, store, "a", base)
		require.NoError(t, h.Revoke("a"))
		require.NoError(t, h.Appoint("a"))

		panel, err := h.SelectPanel(models.RequestKindVacation)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, panel)
	})
}
