package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

func (f *fakeClients) AwardPoints(_ context.Context, id uint64, points uint64) error {
	for email, c := range f.byEmail {
		if c.ID == id {
			c.Points += points
			f.byEmail[email] = c
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestAwardPoints(t *testing.T) {
	clients := newFakeClients()
	clients.byEmail["c@x.com"] = model.Client{ID: 5, Email: "c@x.com", Points: 10, Actif: true}
	h := NewAdminHandler(clients)

	rec, out := doOffer(t, h.AwardPoints, http.MethodPost, `{"points":30}`,
		1, model.RoleAdmin, idParam(5))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if pts := out["points"].(float64); pts != 40 {
		t.Errorf("points = %v, want 40", pts)
	}
}

func TestAwardPointsUnknownClient(t *testing.T) {
	h := NewAdminHandler(newFakeClients())
	rec, _ := doOffer(t, h.AwardPoints, http.MethodPost, `{"points":30}`,
		1, model.RoleAdmin, idParam(99))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAwardPointsRejectsNonPositive(t *testing.T) {
	clients := newFakeClients()
	clients.byEmail["c@x.com"] = model.Client{ID: 5, Email: "c@x.com", Points: 10, Actif: true}
	h := NewAdminHandler(clients)

	for _, body := range []string{`{"points":0}`, `{"points":-5}`} {
		rec, _ := doOffer(t, h.AwardPoints, http.MethodPost, body, 1, model.RoleAdmin, idParam(5))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if c := clients.byEmail["c@x.com"]; c.Points != 10 {
		t.Errorf("balance changed to %d on rejected request", c.Points)
	}
}
