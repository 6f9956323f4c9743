package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// fakeReader serves canned entries and records the filter it was asked for
type fakeReader struct {
	entries    []model.Transaction
	total      int
	account    *model.Account
	lastFilter store.EntryFilter
}

func (f *fakeReader) QueryEntries(ctx context.Context, filter store.EntryFilter) ([]model.Transaction, int, error) {
	f.lastFilter = filter
	return f.entries, f.total, nil
}

func (f *fakeReader) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, model.ErrAccountNotFound
	}
	return f.account, nil
}

func TestListEntries_PaginationDefaults(t *testing.T) {
	reader := &fakeReader{total: 0}
	facade := New(reader)

	page, err := facade.ListEntries(context.Background(), Filter{OwnerID: uuid.New()})
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}

	if page.Pagination.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Pagination.Page)
	}
	if page.Pagination.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", page.Pagination.PageSize)
	}
	if reader.lastFilter.Limit != 10 || reader.lastFilter.Offset != 0 {
		t.Errorf("store filter = limit %d offset %d, want limit 10 offset 0",
			reader.lastFilter.Limit, reader.lastFilter.Offset)
	}
	if page.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}

func TestListEntries_PaginationMath(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		total      int
		wantLimit  int
		wantOffset int
		wantPages  int
	}{
		{name: "second page", page: 2, pageSize: 25, total: 60, wantLimit: 25, wantOffset: 25, wantPages: 3},
		{name: "oversized page size falls back", page: 1, pageSize: 500, total: 60, wantLimit: 10, wantOffset: 0, wantPages: 6},
		{name: "negative page falls back", page: -3, pageSize: 20, total: 5, wantLimit: 20, wantOffset: 0, wantPages: 1},
		{name: "exact multiple", page: 1, pageSize: 20, total: 40, wantLimit: 20, wantOffset: 0, wantPages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{total: tt.total}
			facade := New(reader)

			page, err := facade.ListEntries(context.Background(), Filter{
				OwnerID:  uuid.New(),
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			if err != nil {
				t.Fatalf("ListEntries() error = %v", err)
			}

			if reader.lastFilter.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", reader.lastFilter.Limit, tt.wantLimit)
			}
			if reader.lastFilter.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", reader.lastFilter.Offset, tt.wantOffset)
			}
			if page.Pagination.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", page.Pagination.Pages, tt.wantPages)
			}
			if page.Pagination.Total != tt.total {
				t.Errorf("Total = %d, want %d", page.Pagination.Total, tt.total)
			}
		})
	}
}

func TestAccountStatement_EnforcesOwnership(t *testing.T) {
	ownerID := uuid.New()
	accountID := uuid.New()
	reader := &fakeReader{
		account: &model.Account{ID: accountID, OwnerID: ownerID},
	}
	facade := New(reader)

	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()

	_, err := facade.AccountStatement(context.Background(), uuid.New(), accountID, start, end)
	if !errors.Is(err, model.ErrForbidden) {
		t.Errorf("AccountStatement() with foreign owner error = %v, want ErrForbidden", err)
	}

	statement, err := facade.AccountStatement(context.Background(), ownerID, accountID, start, end)
	if err != nil {
		t.Fatalf("AccountStatement() error = %v", err)
	}

	if statement.Account.ID != accountID {
		t.Errorf("Account.ID = %v, want %v", statement.Account.ID, accountID)
	}
	if statement.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
	if reader.lastFilter.AccountID == nil || *reader.lastFilter.AccountID != accountID {
		t.Error("store filter should be scoped to the requested account")
	}
}

func TestAccountStatement_UnknownAccount(t *testing.T) {
	facade := New(&fakeReader{})

	_, err := facade.AccountStatement(context.Background(), uuid.New(), uuid.New(), time.Now().AddDate(0, -1, 0), time.Now())
	if !errors.Is(err, model.ErrAccountNotFound) {
		t.Errorf("AccountStatement() error = %v, want ErrAccountNotFound", err)
	}
}
