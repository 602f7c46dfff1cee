package models

import (
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func TestTransactionSchema_TagsColumn(t *testing.T) {
	s, err := schema.Parse(&Transaction{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse transaction schema: %v", err)
	}
	field := s.LookUpField("Tags")
	if field == nil {
		t.Fatal("expected a Tags field")
	}
	if field.DataType != "json" {
		t.Errorf("expected data type json, got %q", field.DataType)
	}
}

func TestTransactionSchema_MigratesAndRoundTrips(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_schema?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	if err := db.AutoMigrate(&Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rows := []Transaction{
		{UserID: "u1", Type: TransactionTypeSpend, Date: NewDate(2024, 3, 1), Tags: StringList{"food", "work"}},
		{UserID: "u1", Type: TransactionTypeEarn, Date: NewDate(2024, 3, 2)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var got []Transaction
	if err := db.Order("date asc").Find(&got).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if !got[0].Tags.Contains("work") || len(got[0].Tags) != 2 {
		t.Errorf("unexpected tags %v", got[0].Tags)
	}
	if got[1].Tags != nil {
		t.Errorf("expected NULL tags to scan as nil, got %v", got[1].Tags)
	}
}
