package merge

import (
	"testing"

	"github.com/devprompt93/clean-scan/internal/models"
)

func TestToiletsLocalWins(t *testing.T) {
	remote := []models.Toilet{
		{ID: "t1", Name: "Station Rd", Status: models.StatusPending},
		{ID: "t2", Name: "Main St", Status: models.StatusCompleted},
	}
	local := []models.Toilet{
		{ID: "t1", Name: "Station Rd", Status: models.StatusFlagged},
	}

	merged := Toilets(remote, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 records, got %d", len(merged))
	}
	if merged[0].Status != models.StatusFlagged {
		t.Fatalf("expected local override for t1, got status %q", merged[0].Status)
	}
	if merged[1].ID != "t2" || merged[1].Status != models.StatusCompleted {
		t.Fatalf("expected untouched remote t2, got %+v", merged[1])
	}
}

func TestToiletsWholeRecordPrecedence(t *testing.T) {
	remote := []models.Toilet{
		{ID: "t1", Name: "Station Rd", Area: "Khayelitsha", TrackerInstalled: true},
	}
	local := []models.Toilet{
		{ID: "t1", Name: "Station Road"},
	}

	merged := Toilets(remote, local)
	// No field-level merge: remote-only fields must not leak through.
	if merged[0].Area != "" || merged[0].TrackerInstalled {
		t.Fatalf("expected whole-record replacement, got %+v", merged[0])
	}
}

func TestToiletsLocalAdditionsAppend(t *testing.T) {
	remote := []models.Toilet{{ID: "t1"}, {ID: "t2"}}
	local := []models.Toilet{{ID: "local_9"}, {ID: "t2", Name: "edited"}}

	merged := Toilets(remote, local)
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}
	if merged[0].ID != "t1" || merged[1].ID != "t2" || merged[2].ID != "local_9" {
		t.Fatalf("unexpected order: %v %v %v", merged[0].ID, merged[1].ID, merged[2].ID)
	}
	if merged[1].Name != "edited" {
		t.Fatalf("expected edited t2 in place, got %+v", merged[1])
	}
}

func TestUsersKeyByEmailThenID(t *testing.T) {
	remote := []models.User{
		{ID: "u1", Email: "thandi@example.com", Name: "Thandi"},
		{ID: "u2", Name: "Sipho"},
	}
	local := []models.User{
		{ID: "local_3", Email: "thandi@example.com", Name: "Thandi M"},
		{ID: "u2", Name: "Sipho N"},
	}

	merged := Users(remote, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 users, got %d", len(merged))
	}
	if merged[0].Name != "Thandi M" {
		t.Fatalf("expected email-keyed override, got %+v", merged[0])
	}
	if merged[1].Name != "Sipho N" {
		t.Fatalf("expected id-keyed override, got %+v", merged[1])
	}
}

func TestRecordsEmptyInputs(t *testing.T) {
	if got := Toilets(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d", len(got))
	}
	local := []models.Toilet{{ID: "local_1"}}
	if got := Toilets(nil, local); len(got) != 1 || got[0].ID != "local_1" {
		t.Fatalf("expected local passthrough, got %+v", got)
	}
}
