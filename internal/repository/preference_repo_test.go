package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordedExec struct {
	sql  string
	args []any
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, value := range r.values {
		switch target := dest[i].(type) {
		case *string:
			*target = value.(string)
		case **string:
			if value == nil {
				*target = nil
			} else {
				s := value.(string)
				*target = &s
			}
		case *time.Time:
			*target = value.(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type fakeDB struct {
	execs   []recordedExec
	row     fakeRow
	execErr error
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, recordedExec{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), db.execErr
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return db.row
}

func TestGetByDeviceIDScansRow(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"dev-1", "MEM-1", nil, "light", created, created}}}

	prefs, err := NewPreferenceRepository(db).GetByDeviceID(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("GetByDeviceID returned error: %v", err)
	}
	if prefs.DeviceID != "dev-1" || prefs.Theme != "light" {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
	if prefs.MembershipToken == nil || *prefs.MembershipToken != "MEM-1" {
		t.Fatalf("expected token MEM-1, got %v", prefs.MembershipToken)
	}
	if prefs.LastLoginID != nil {
		t.Fatalf("expected no last login, got %v", *prefs.LastLoginID)
	}
}

func TestGetByDeviceIDMissingRow(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}

	_, err := NewPreferenceRepository(db).GetByDeviceID(context.Background(), "dev-1")
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestSettersUpsert(t *testing.T) {
	db := &fakeDB{}
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	token := "MEM-1"

	if err := repo.SetMembershipToken(ctx, "dev-1", &token); err != nil {
		t.Fatalf("SetMembershipToken returned error: %v", err)
	}
	if err := repo.SetMembershipToken(ctx, "dev-1", nil); err != nil {
		t.Fatalf("SetMembershipToken(nil) returned error: %v", err)
	}
	if err := repo.SetLastLoginID(ctx, "dev-1", "MEM-1"); err != nil {
		t.Fatalf("SetLastLoginID returned error: %v", err)
	}
	if err := repo.SetTheme(ctx, "dev-1", "dark"); err != nil {
		t.Fatalf("SetTheme returned error: %v", err)
	}

	columns := []string{"membership_token", "membership_token", "last_login_id", "theme"}
	if len(db.execs) != len(columns) {
		t.Fatalf("expected %d statements, got %d", len(columns), len(db.execs))
	}
	for i, exec := range db.execs {
		if !strings.Contains(exec.sql, "ON CONFLICT (device_id) DO UPDATE") {
			t.Fatalf("statement %d is not an upsert: %s", i, exec.sql)
		}
		if !strings.Contains(exec.sql, "SET "+columns[i]+" = EXCLUDED."+columns[i]) {
			t.Fatalf("statement %d does not update %s: %s", i, columns[i], exec.sql)
		}
		if exec.args[0] != "dev-1" {
			t.Fatalf("statement %d bound device %v", i, exec.args[0])
		}
	}
	if got, ok := db.execs[1].args[1].(*string); !ok || got != nil {
		t.Fatalf("expected nil token to clear the column, got %v", db.execs[1].args[1])
	}
}

func TestSetThemePropagatesError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection reset")}

	if err := NewPreferenceRepository(db).SetTheme(context.Background(), "dev-1", "dark"); err == nil {
		t.Fatal("expected error")
	}
}
