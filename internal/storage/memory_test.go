package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemory_DatasetSnapshotLatestWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	first := DatasetSnapshot{Kind: "urdb", RowCount: 10, Payload: []byte("one"), FetchedAt: time.Now().Add(-time.Hour)}
	second := DatasetSnapshot{Kind: "urdb", RowCount: 12, Payload: []byte("two")}

	if err := m.SaveDatasetSnapshot(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveDatasetSnapshot(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := m.GetDatasetSnapshot(ctx, "urdb")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || string(got.Payload) != "two" {
		t.Fatalf("expected latest snapshot, got %+v", got)
	}
	if got.FetchedAt.IsZero() {
		t.Errorf("FetchedAt should default to now on save")
	}

	missing, err := m.GetDatasetSnapshot(ctx, "zipmap")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing kind, got %+v err=%v", missing, err)
	}
}

func TestMemory_ListDatasetSnapshotsOmitsPayload(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.SaveDatasetSnapshot(ctx, DatasetSnapshot{Kind: "urdb", Payload: []byte("big")})
	list, err := m.ListDatasetSnapshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Payload != nil {
		t.Fatalf("listing must be metadata only, got %+v", list)
	}
}

func TestMemory_UsersAndTokens(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := User{ID: "u1", Username: "admin", PasswordHash: "x", Role: "admin"}
	if err := m.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := m.GetUserByUsername(ctx, "admin")
	if err != nil || got == nil || got.ID != "u1" {
		t.Fatalf("get user: %+v err=%v", got, err)
	}
	if missing, _ := m.GetUserByUsername(ctx, "nobody"); missing != nil {
		t.Fatalf("expected nil for unknown user")
	}

	tok := Token{ID: "t1", UserID: "u1", TokenHash: "hash", Role: "admin"}
	if err := m.CreateToken(ctx, tok); err != nil {
		t.Fatalf("create token: %v", err)
	}
	gotTok, err := m.GetTokenByHash(ctx, "hash")
	if err != nil || gotTok == nil || gotTok.ID != "t1" {
		t.Fatalf("get token: %+v err=%v", gotTok, err)
	}
	if err := m.UpdateTokenLastUsed(ctx, "t1"); err != nil {
		t.Fatalf("update last used: %v", err)
	}
	gotTok, _ = m.GetTokenByHash(ctx, "hash")
	if gotTok.LastUsedAt == nil {
		t.Errorf("LastUsedAt not updated")
	}
}

func TestMemory_AdvisoryLock(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.AcquireAdvisoryLock(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed: ok=%v err=%v", ok, err)
	}
	ok, _ = m.AcquireAdvisoryLock(ctx, 42)
	if ok {
		t.Fatalf("second acquire should fail while held")
	}
	ok, _ = m.ReleaseAdvisoryLock(ctx, 42)
	if !ok {
		t.Fatalf("release should succeed")
	}
	ok, _ = m.AcquireAdvisoryLock(ctx, 42)
	if !ok {
		t.Fatalf("re-acquire after release should succeed")
	}
}

func TestMemory_CasbinRules(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	r := CasbinRule{PType: "p", V0: "admin", V1: "*", V2: "*"}
	if err := m.AddCasbinRule(ctx, r); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	rules, err := m.LoadCasbinRules(ctx)
	if err != nil || len(rules) != 1 {
		t.Fatalf("load rules: %v %v", rules, err)
	}
	if err := m.RemoveCasbinRule(ctx, r); err != nil {
		t.Fatalf("remove rule: %v", err)
	}
	rules, _ = m.LoadCasbinRules(ctx)
	if len(rules) != 0 {
		t.Fatalf("rule not removed: %v", rules)
	}
}
