package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
)

func TestAdminRepositoryLookups(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewAdminRepository(db)

	admin := &models.Admin{Username: "pricing", PasswordHash: "hash"}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	found, err := repo.GetByUsername(" pricing ")
	if err != nil {
		t.Fatalf("get by username failed: %v", err)
	}
	if found == nil || found.ID != admin.ID {
		t.Fatalf("admin want %d got %+v", admin.ID, found)
	}
	for _, name := range []string{"", "   ", "nobody"} {
		missing, err := repo.GetByUsername(name)
		if err != nil || missing != nil {
			t.Fatalf("username %q want nil got %+v err=%v", name, missing, err)
		}
	}
	if missing, err := repo.GetByID(0); err != nil || missing != nil {
		t.Fatalf("id 0 want nil got %+v err=%v", missing, err)
	}

	now := time.Now()
	found.LastLoginAt = &now
	if err := repo.Update(found); err != nil {
		t.Fatalf("update admin failed: %v", err)
	}
	reloaded, err := repo.GetByID(admin.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if reloaded == nil || reloaded.LastLoginAt == nil {
		t.Fatalf("last_login_at should be stored: %+v", reloaded)
	}
}
