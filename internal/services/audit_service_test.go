package services

import (
	"context"
	"testing"

	"moneylens/internal/models"
	"moneylens/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("stores_the_change_set", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewAuditService(db)

		svc.Log(t.Context(), user.ID, "CREATE_TRANSACTION", "transaction", "tx-1", "10.0.0.1",
			map[string]interface{}{"type": models.TransactionTypeSpend, "amount": amount("12.5")})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected an audit row: %v", err)
		}
		if entry.Action != "CREATE_TRANSACTION" || entry.ResourceID != "tx-1" || entry.IPAddress != "10.0.0.1" {
			t.Errorf("unexpected entry %+v", entry)
		}
		if entry.Changes != `{"amount":12.5,"type":"spend"}` {
			t.Errorf("unexpected changes %s", entry.Changes)
		}
	})

	t.Run("survives_a_cancelled_request", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewAuditService(db)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		svc.Log(ctx, user.ID, "DELETE_TAG", "tag", "tag-1", "", nil)

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected an audit row: %v", err)
		}
		if entry.Changes != "{}" {
			t.Errorf("expected empty change set, got %q", entry.Changes)
		}
	})

	t.Run("drops_events_without_a_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log(t.Context(), "", "DELETE_TAG", "tag", "tag-1", "", nil)

		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no audit rows, got %d", count)
		}
	})

	t.Run("unencodable_changes_store_an_empty_set", func(t *testing.T) {
		got, err := encodeChanges(map[string]interface{}{"bad": make(chan int)})
		if err == nil || got != "{}" {
			t.Errorf("expected {} and an error, got %q %v", got, err)
		}
	})
}
