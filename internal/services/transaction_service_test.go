package services

import (
	"testing"

	"github.com/shopspring/decimal"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
	"moneylens/internal/optional"
	"moneylens/internal/testutil"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amountPtr(s string) *decimal.Decimal {
	return models.AmountOf(amount(s))
}

func typePtr(t models.TransactionType) *models.TransactionType {
	return &t
}

func datePtr(s string) *models.Date {
	d := models.MustParseDate(s)
	return &d
}

func TestCreateTransaction(t *testing.T) {
	t.Run("spend_fixes_type_and_stores_nulls", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{
			Date:   models.MustParseDate("2024-03-05"),
			Amount: amountPtr("12.50"),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected an id")
		}
		if tx.Type != models.TransactionTypeSpend {
			t.Errorf("expected type spend, got %s", tx.Type)
		}
		if tx.Category != nil || tx.BankAccount != nil || tx.Notes != nil || tx.Tags != nil {
			t.Errorf("expected optional fields to be nil, got %+v", tx)
		}

		stored, err := svc.GetTransactionByID(t.Context(), user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if !stored.Amount.Equal(amount("12.5")) {
			t.Errorf("expected amount 12.5, got %s", stored.Amount)
		}
		if stored.Date.String() != "2024-03-05" {
			t.Errorf("expected date 2024-03-05, got %s", stored.Date)
		}
	})

	t.Run("earn_and_save", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		input := models.TransactionInput{Date: models.MustParseDate("2024-03-05"), Amount: amountPtr("100")}

		earn, err := svc.CreateEarn(t.Context(), user.ID, input)
		testutil.AssertNoError(t, err)
		save, err := svc.CreateSave(t.Context(), user.ID, input)
		testutil.AssertNoError(t, err)

		if earn.Type != models.TransactionTypeEarn || save.Type != models.TransactionTypeSave {
			t.Errorf("expected earn and save, got %s and %s", earn.Type, save.Type)
		}
	})

	t.Run("links_existing_references", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategoryNamed(t, db, user.ID, models.TransactionTypeSpend, "Food")
		account := testutil.CreateTestBankAccount(t, db, user.ID, "Monzo")

		tx, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{
			Date:        models.MustParseDate("2024-03-05"),
			Amount:      amountPtr("9.99"),
			Category:    testutil.Str("  Food "),
			BankAccount: testutil.Str("Monzo"),
			Tags:        []string{" lunch ", "", "work"},
			Notes:       testutil.Str(""),
		})
		testutil.AssertNoError(t, err)

		if tx.Category == nil || *tx.Category != "Food" {
			t.Errorf("expected trimmed category Food, got %v", tx.Category)
		}
		if tx.CategoryID == nil || *tx.CategoryID != category.ID {
			t.Errorf("expected category_id %s, got %v", category.ID, tx.CategoryID)
		}
		if tx.BankAccountID == nil || *tx.BankAccountID != account.ID {
			t.Errorf("expected bank_account_id %s, got %v", account.ID, tx.BankAccountID)
		}
		if len(tx.Tags) != 2 || tx.Tags[0] != "lunch" || tx.Tags[1] != "work" {
			t.Errorf("expected tags [lunch work], got %v", tx.Tags)
		}
		if tx.Notes != nil {
			t.Errorf("expected blank notes to be nil, got %q", *tx.Notes)
		}
	})

	t.Run("category_of_other_type_is_not_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryNamed(t, db, user.ID, models.TransactionTypeEarn, "Bonus")

		tx, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{
			Date:     models.MustParseDate("2024-03-05"),
			Amount:   amountPtr("1"),
			Category: testutil.Str("Bonus"),
		})
		testutil.AssertNoError(t, err)
		if tx.CategoryID != nil {
			t.Errorf("expected no category_id, got %s", *tx.CategoryID)
		}
	})

	t.Run("empty_user_is_unauthorized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		_, err := svc.CreateSpend(t.Context(), "", models.TransactionInput{Date: models.MustParseDate("2024-03-05")})
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{
			Date:   models.MustParseDate("2024-03-05"),
			Amount: amountPtr("-1"),
		})
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("missing_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{Amount: amountPtr("1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{Date: models.MustParseDate("2024-03-01")})
		testutil.AssertAppErrorIs(t, err, apperrors.ErrInvalidInput)
		if err.Error() != "amount is required" {
			t.Errorf("unexpected message %q", err.Error())
		}

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected nothing stored, got %d", count)
		}
	})

	t.Run("explicit_zero_amount_is_kept", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateSpend(t.Context(), user.ID, models.TransactionInput{
			Date:   models.MustParseDate("2024-03-01"),
			Amount: amountPtr("0"),
		})
		testutil.AssertNoError(t, err)
		if !tx.Amount.IsZero() {
			t.Errorf("expected zero amount, got %s", tx.Amount)
		}
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("filters_are_a_conjunction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransactionWith(t, db, &models.Transaction{
			UserID: user.ID, Type: models.TransactionTypeSpend, Amount: amount("5"),
			Date: models.MustParseDate("2024-03-01"), Category: testutil.Str("Food"),
		})
		testutil.CreateTestTransactionWith(t, db, &models.Transaction{
			UserID: user.ID, Type: models.TransactionTypeSpend, Amount: amount("6"),
			Date: models.MustParseDate("2024-03-31"), Category: testutil.Str("Rent"),
		})
		testutil.CreateTestTransactionWith(t, db, &models.Transaction{
			UserID: user.ID, Type: models.TransactionTypeEarn, Amount: amount("7"),
			Date: models.MustParseDate("2024-03-15"), Category: testutil.Str("Food"),
		})
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "8", "2024-04-01")

		got, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{
			From:     datePtr("2024-03-01"),
			To:       datePtr("2024-03-31"),
			Type:     typePtr(models.TransactionTypeSpend),
			Category: testutil.Str("Food"),
		})
		testutil.AssertNoError(t, err)

		if len(got) != 1 || !got[0].Amount.Equal(amount("5")) {
			t.Fatalf("expected the single March Food spend, got %+v", got)
		}
	})

	t.Run("date_range_is_inclusive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "1", "2024-03-01")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "2", "2024-03-31")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "3", "2024-02-29")

		got, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{
			From: datePtr("2024-03-01"),
			To:   datePtr("2024-03-31"),
		})
		testutil.AssertNoError(t, err)
		if len(got) != 2 {
			t.Errorf("expected 2 transactions, got %d", len(got))
		}
	})

	t.Run("tags_any_and_tags_all", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		ab := testutil.CreateTestTransactionWith(t, db, &models.Transaction{UserID: user.ID, Amount: amount("1"), Tags: models.StringList{"a", "b"}})
		b := testutil.CreateTestTransactionWith(t, db, &models.Transaction{UserID: user.ID, Amount: amount("2"), Tags: models.StringList{"b"}})
		testutil.CreateTestTransactionWith(t, db, &models.Transaction{UserID: user.ID, Amount: amount("3")})

		anyMatch, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{TagsAny: []string{"b", "z"}})
		testutil.AssertNoError(t, err)
		if !sameIDs(anyMatch, ab.ID, b.ID) {
			t.Errorf("tags_any: expected %s and %s, got %+v", ab.ID, b.ID, anyMatch)
		}

		allMatch, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{TagsAll: []string{"a", "b"}})
		testutil.AssertNoError(t, err)
		if !sameIDs(allMatch, ab.ID) {
			t.Errorf("tags_all: expected only %s, got %+v", ab.ID, allMatch)
		}

		none, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{TagsAll: []string{"a", "z"}})
		testutil.AssertNoError(t, err)
		if len(none) != 0 {
			t.Errorf("tags_all with a missing tag: expected nothing, got %d", len(none))
		}

		all, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{TagsAny: []string{}})
		testutil.AssertNoError(t, err)
		if len(all) != 3 {
			t.Errorf("empty tags_any must not filter, got %d rows", len(all))
		}
	})

	t.Run("default_order_is_date_desc", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "1", "2024-01-01")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "2", "2024-03-01")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "3", "2024-02-01")

		got, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{})
		testutil.AssertNoError(t, err)
		want := []string{"2024-03-01", "2024-02-01", "2024-01-01"}
		for i, tx := range got {
			if tx.Date.String() != want[i] {
				t.Errorf("row %d: expected %s, got %s", i, want[i], tx.Date)
			}
		}
	})

	t.Run("order_by_amount_ascending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "30", "2024-01-01")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10", "2024-01-02")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "20", "2024-01-03")

		got, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{OrderBy: "amount"})
		testutil.AssertNoError(t, err)
		if len(got) != 3 || !got[0].Amount.Equal(amount("10")) || !got[2].Amount.Equal(amount("30")) {
			t.Errorf("expected ascending amounts, got %+v", got)
		}
	})

	t.Run("unknown_order_column", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{OrderBy: "user_id; DROP TABLE users"})
		testutil.AssertAppError(t, err, "INVALID_ORDER_BY")
	})

	t.Run("offset_without_limit_pages_by_20", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 45; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "1", "2024-01-15")
		}

		page, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{Offset: 20})
		testutil.AssertNoError(t, err)
		if len(page) != 20 {
			t.Errorf("expected 20 rows, got %d", len(page))
		}

		limited, err := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{Limit: 5})
		testutil.AssertNoError(t, err)
		if len(limited) != 5 {
			t.Errorf("expected 5 rows, got %d", len(limited))
		}
	})

	t.Run("users_are_isolated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, alice.ID, models.TransactionTypeSpend, "1", "2024-01-15")

		got, err := svc.ListTransactions(t.Context(), bob.ID, models.TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(got) != 0 {
			t.Errorf("expected bob to see nothing, got %d rows", len(got))
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("amount_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		original := testutil.CreateTestTransactionWith(t, db, &models.Transaction{
			UserID: user.ID, Amount: amount("10"), Category: testutil.Str("Food"),
			Tags: models.StringList{"x"}, Notes: testutil.Str("lunch"),
		})

		updated, err := svc.UpdateTransaction(t.Context(), user.ID, original.ID, models.TransactionChanges{
			Amount: optional.Of(amount("12.25")),
		})
		testutil.AssertNoError(t, err)

		if !updated.Amount.Equal(amount("12.25")) {
			t.Errorf("expected amount 12.25, got %s", updated.Amount)
		}
		if updated.Category == nil || *updated.Category != "Food" {
			t.Errorf("expected category to be kept, got %v", updated.Category)
		}
		if updated.Notes == nil || *updated.Notes != "lunch" {
			t.Errorf("expected notes to be kept, got %v", updated.Notes)
		}
		if len(updated.Tags) != 1 || updated.Tags[0] != "x" {
			t.Errorf("expected tags to be kept, got %v", updated.Tags)
		}
		if updated.Date.String() != original.Date.String() || updated.Type != original.Type {
			t.Error("expected date and type to be kept")
		}
	})

	t.Run("null_and_empty_clear_nullable_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		original := testutil.CreateTestTransactionWith(t, db, &models.Transaction{
			UserID: user.ID, Amount: amount("10"), Category: testutil.Str("Food"),
			Tags: models.StringList{"x"}, Notes: testutil.Str("lunch"),
		})

		updated, err := svc.UpdateTransaction(t.Context(), user.ID, original.ID, models.TransactionChanges{
			Category: optional.Null[string](),
			Notes:    optional.Of(""),
			Tags:     optional.Of([]string{}),
		})
		testutil.AssertNoError(t, err)

		if updated.Category != nil || updated.Notes != nil || updated.Tags != nil {
			t.Errorf("expected cleared fields, got category=%v notes=%v tags=%v", updated.Category, updated.Notes, updated.Tags)
		}
	})

	t.Run("category_change_relinks_reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		rent := testutil.CreateTestCategoryNamed(t, db, user.ID, models.TransactionTypeSpend, "Rent")
		original := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10", "2024-01-15")

		updated, err := svc.UpdateTransaction(t.Context(), user.ID, original.ID, models.TransactionChanges{
			Category: optional.Of("Rent"),
		})
		testutil.AssertNoError(t, err)
		if updated.CategoryID == nil || *updated.CategoryID != rent.ID {
			t.Errorf("expected category_id %s, got %v", rent.ID, updated.CategoryID)
		}
	})

	t.Run("null_required_field", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		original := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10", "2024-01-15")

		_, err := svc.UpdateTransaction(t.Context(), user.ID, original.ID, models.TransactionChanges{
			Amount: optional.Null[decimal.Decimal](),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.UpdateTransaction(t.Context(), user.ID, original.ID, models.TransactionChanges{
			Type: optional.Of(models.TransactionType("gift")),
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("other_users_row_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		original := testutil.CreateTestTransaction(t, db, alice.ID, models.TransactionTypeSpend, "10", "2024-01-15")

		_, err := svc.UpdateTransaction(t.Context(), bob.ID, original.ID, models.TransactionChanges{
			Amount: optional.Of(amount("1")),
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransactions(t *testing.T) {
	t.Run("missing_id_succeeds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteTransaction(t.Context(), user.ID, "0192d7a8-0000-7000-8000-000000000000")
		testutil.AssertNoError(t, err)
	})

	t.Run("delete_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10", "2024-01-15")

		testutil.AssertNoError(t, svc.DeleteTransaction(t.Context(), user.ID, tx.ID))
		_, err := svc.GetTransactionByID(t.Context(), user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("empty_set_is_a_no_op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10", "2024-01-15")

		n, err := svc.DeleteTransactions(t.Context(), user.ID, nil)
		testutil.AssertNoError(t, err)
		if n != 0 {
			t.Errorf("expected 0 deleted, got %d", n)
		}
		remaining, _ := svc.ListTransactions(t.Context(), user.ID, models.TransactionFilter{})
		if len(remaining) != 1 {
			t.Errorf("expected 1 remaining, got %d", len(remaining))
		}
	})

	t.Run("counts_only_own_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		a1 := testutil.CreateTestTransaction(t, db, alice.ID, models.TransactionTypeSpend, "1", "2024-01-15")
		a2 := testutil.CreateTestTransaction(t, db, alice.ID, models.TransactionTypeSpend, "2", "2024-01-15")
		b1 := testutil.CreateTestTransaction(t, db, bob.ID, models.TransactionTypeSpend, "3", "2024-01-15")

		n, err := svc.DeleteTransactions(t.Context(), alice.ID, []string{a1.ID, a2.ID, b1.ID, a1.ID})
		testutil.AssertNoError(t, err)
		if n != 2 {
			t.Errorf("expected 2 deleted, got %d", n)
		}
		if _, err := svc.GetTransactionByID(t.Context(), bob.ID, b1.ID); err != nil {
			t.Errorf("expected bob's row to survive: %v", err)
		}
	})
}

func TestSumTransactionsAmount(t *testing.T) {
	t.Run("no_rows_is_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		sum, err := svc.SumTransactionsAmount(t.Context(), user.ID, models.TransactionFilter{})
		testutil.AssertNoError(t, err)
		if !sum.IsZero() {
			t.Errorf("expected 0, got %s", sum)
		}
	})

	t.Run("uses_filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "10.50", "2024-01-10")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSpend, "20.25", "2024-01-20")
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeEarn, "1000", "2024-01-20")

		sum, err := svc.SumTransactionsAmount(t.Context(), user.ID, models.TransactionFilter{
			Type:  typePtr(models.TransactionTypeSpend),
			Limit: 1,
		})
		testutil.AssertNoError(t, err)
		if !sum.Equal(amount("30.75")) {
			t.Errorf("expected 30.75, got %s", sum)
		}
	})
}

// sameIDs reports whether got holds exactly the given ids, in any order.
func sameIDs(got []models.Transaction, ids ...string) bool {
	if len(got) != len(ids) {
		return false
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for _, tx := range got {
		if !want[tx.ID] {
			return false
		}
	}
	return true
}
