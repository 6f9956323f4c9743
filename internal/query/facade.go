// Package query is the read-only reporting façade over the ledger. It
// never mutates account or ledger state; statement rendering and history
// views consume its output.
package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// Reader is the slice of the store the façade reads from
type Reader interface {
	QueryEntries(ctx context.Context, filter store.EntryFilter) ([]model.Transaction, int, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

// Facade answers filtered, paginated ledger queries
type Facade struct {
	reader Reader
}

// New creates a Facade
func New(reader Reader) *Facade {
	return &Facade{reader: reader}
}

// Filter narrows a history query
type Filter struct {
	OwnerID   uuid.UUID
	AccountID *uuid.UUID
	Type      *model.TransactionType
	Status    *model.TransactionStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// Pagination describes the page that was returned
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// Page is one page of ledger entries, newest first
type Page struct {
	Entries    []model.Transaction `json:"transactions"`
	Pagination Pagination          `json:"pagination"`
}

// ListEntries returns matching entries sorted newest-first with page
// metadata
func (f *Facade) ListEntries(ctx context.Context, filter Filter) (*Page, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	entries, total, err := f.reader.QueryEntries(ctx, store.EntryFilter{
		OwnerID:   filter.OwnerID,
		AccountID: filter.AccountID,
		Type:      filter.Type,
		Status:    filter.Status,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []model.Transaction{}
	}

	return &Page{
		Entries: entries,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			Pages:    (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// Statement bundles an account snapshot with its entries for a date range.
// The document renderer consumes this as-is.
type Statement struct {
	Account   *model.Account      `json:"account"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	Entries   []model.Transaction `json:"transactions"`
}

// AccountStatement builds the statement input for one account over a date
// range, enforcing ownership
func (f *Facade) AccountStatement(ctx context.Context, ownerID, accountID uuid.UUID, start, end time.Time) (*Statement, error) {
	account, err := f.reader.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, model.ErrForbidden
	}

	entries, _, err := f.reader.QueryEntries(ctx, store.EntryFilter{
		OwnerID:   ownerID,
		AccountID: &accountID,
		StartDate: &start,
		EndDate:   &end,
		Limit:     1000,
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Transaction{}
	}

	return &Statement{
		Account:   account,
		StartDate: start,
		EndDate:   end,
		Entries:   entries,
	}, nil
}
