package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/control"
)

func TestControlDevice_Published(t *testing.T) {
	f := newFixture(t)
	dev := f.createLamp(t, f.alice)

	w := f.do(t, f.alice, http.MethodPost, fmt.Sprintf("/api/v1/devices/%d/on", dev.ID), nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusAccepted, w.Body.String())
	}

	out := decode[control.Outcome](t, w)
	if out.State != control.StatePublished || out.CommandID == "" {
		t.Errorf("outcome = %+v, want published with command id", out)
	}

	want := fmt.Sprintf("switchboard/users/%d/devices/%d/on", f.alice, dev.ID)
	if got := f.broker.published(); len(got) != 1 || got[0] != want {
		t.Errorf("published = %v, want [%s]", got, want)
	}
}

func TestControlDevice_NotOwned(t *testing.T) {
	f := newFixture(t)
	dev := f.createLamp(t, f.alice)

	assertDeviceNotFound(t, f.do(t, f.bob, http.MethodPost, fmt.Sprintf("/api/v1/devices/%d/on", dev.ID), nil))
	assertDeviceNotFound(t, f.do(t, f.bob, http.MethodPost, "/api/v1/devices/9999/on", nil))

	if got := f.broker.published(); len(got) != 0 {
		t.Errorf("published = %v, want nothing", got)
	}
}

func TestControlDevice_InvalidActionNeverPublishes(t *testing.T) {
	f := newFixture(t)
	dev := f.createLamp(t, f.alice)

	for _, action := range []string{"ON", "on1", "turn-on"} {
		w := f.do(t, f.alice, http.MethodPost, fmt.Sprintf("/api/v1/devices/%d/%s", dev.ID, action), nil)
		if w.Code == http.StatusAccepted {
			t.Errorf("action %q: status = %d, want rejection", action, w.Code)
		}
	}

	if got := f.broker.published(); len(got) != 0 {
		t.Errorf("published = %v, want nothing", got)
	}
}

func TestControlDevice_BrokerFailure(t *testing.T) {
	f := newFixture(t)
	dev := f.createLamp(t, f.alice)
	f.broker.err = errors.New("connection lost")

	w := f.do(t, f.alice, http.MethodPost, fmt.Sprintf("/api/v1/devices/%d/off", dev.ID), nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusBadGateway, w.Body.String())
	}
	if e := decode[Error](t, w); e.Code != ErrCodeBadGateway {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeBadGateway)
	}
}

// ─── Audit ─────────────────────────────────────────────────────────

func TestListAudit_OnlyCallerEntries(t *testing.T) {
	f := newFixture(t)
	repo := audit.NewSQLiteRepository(f.db.DB)
	ctx := context.Background()

	for _, e := range []audit.Entry{
		{Action: audit.ActionCreate, EntityType: audit.EntityDevice, EntityID: "1", UserID: strconv.FormatInt(f.alice, 10), Source: audit.SourceAPI},
		{Action: audit.ActionControl, EntityType: audit.EntityDevice, EntityID: "1", UserID: strconv.FormatInt(f.alice, 10), Source: audit.SourceAPI},
		{Action: audit.ActionCreate, EntityType: audit.EntityDevice, EntityID: "2", UserID: strconv.FormatInt(f.bob, 10), Source: audit.SourceAPI},
	} {
		if err := repo.Create(ctx, &e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	w := f.do(t, f.alice, http.MethodGet, "/api/v1/audit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	result := decode[audit.ListResult](t, w)
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
	for _, e := range result.Entries {
		if e.UserID != strconv.FormatInt(f.alice, 10) {
			t.Errorf("entry for user %s leaked to alice", e.UserID)
		}
	}

	w = f.do(t, f.alice, http.MethodGet, "/api/v1/audit?action=control", nil)
	if result := decode[audit.ListResult](t, w); result.Total != 1 {
		t.Errorf("filtered total = %d, want 1", result.Total)
	}

	if w := f.do(t, f.alice, http.MethodGet, "/api/v1/audit?limit=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
