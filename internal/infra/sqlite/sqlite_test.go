package sqlite

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addUser(t *testing.T, db *DB, email string) domain.User {
	t.Helper()
	u, err := db.CreateUser(domain.NewUser(email, "User "+email, "hash", time.Now()))
	if err != nil {
		t.Fatalf("CreateUser(%s) error: %v", email, err)
	}
	return u
}

func addLesson(t *testing.T, db *DB, id string) {
	t.Helper()
	if err := db.UpsertCourse(domain.Course{ID: "c1", Level: domain.LevelBeginner, Title: "C1"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertModule(domain.CourseModule{ID: "m1", CourseID: "c1", Title: "M1"}, 1); err != nil {
		t.Fatal(err)
	}
	err := db.CreateLesson(domain.Lesson{ID: id, ModuleID: "m1", Title: id, Type: domain.LessonVocabulary, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("CreateLesson(%s) error: %v", id, err)
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestCreateUser_Duplicate(t *testing.T) {
	db := testDB(t)
	addUser(t, db, "dup@x.com")

	_, err := db.CreateUser(domain.NewUser("dup@x.com", "Again", "hash", time.Now()))
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	db := testDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	created, err := db.CreateUser(domain.NewUser("rt@x.com", "RT", "hash", now))
	if err != nil {
		t.Fatal(err)
	}

	lost := now.Add(time.Hour)
	created.Streak = 9
	created.OldStreak = 4
	created.StreakFreezes = 1
	created.LastStreakLostAt = &lost
	created.Coins = 77
	created.IsPro = true
	if err := db.UpdateUserState(created); err != nil {
		t.Fatal(err)
	}

	got, err := db.UserByID(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Streak != 9 || got.OldStreak != 4 || got.StreakFreezes != 1 || got.Coins != 77 || !got.IsPro {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.LastStreakLostAt == nil || !got.LastStreakLostAt.Equal(lost) {
		t.Errorf("LastStreakLostAt = %v, want %v", got.LastStreakLostAt, lost)
	}
	if got.LastRepairUsedAt != nil {
		t.Errorf("LastRepairUsedAt = %v, want nil", got.LastRepairUsedAt)
	}
}

func TestUpdateUserState_Missing(t *testing.T) {
	db := testDB(t)
	u := domain.NewUser("ghost@x.com", "Ghost", "hash", time.Now())
	u.ID = 404

	if err := db.UpdateUserState(u); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestLeaderboard_OrderAndLimit(t *testing.T) {
	db := testDB(t)

	for i, xp := range []int{50, 300, 120} {
		u := addUser(t, db, string(rune('a'+i))+"@x.com")
		u.XP = xp
		if err := db.UpdateUserState(u); err != nil {
			t.Fatal(err)
		}
	}

	top, err := db.Leaderboard(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].XP != 300 || top[1].XP != 120 {
		t.Errorf("order = %d, %d, want 300, 120", top[0].XP, top[1].XP)
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "del@x.com")
	addLesson(t, db, "l1")

	rec := domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: 90, CompletedAt: time.Now()}
	if err := db.ApplyLessonResult(u, rec); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertAdvice(domain.TutorAdvice{UserID: u.ID, Text: "note", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteUser(u.ID); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if _, err := db.UserByID(u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("user still present after delete: %v", err)
	}
	progress, err := db.ProgressForUser(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(progress) != 0 {
		t.Errorf("progress rows survived delete: %v", progress)
	}
	if _, found, err := db.LatestAdvice(u.ID); err != nil || found {
		t.Errorf("advice survived delete: found=%v err=%v", found, err)
	}
}

// ─── Progress ledger ────────────────────────────────────────────────────────

func TestApplyLessonResult_KeepsBestScore(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "best@x.com")
	addLesson(t, db, "l1")
	now := time.Now()

	if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: 70, CompletedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: 50, CompletedAt: now.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}

	rec, found, err := db.ProgressFor(u.ID, "l1")
	if err != nil || !found {
		t.Fatalf("ProgressFor: found=%v err=%v", found, err)
	}
	if rec.Score != 70 {
		t.Errorf("score = %d, lower attempt must not overwrite", rec.Score)
	}

	if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: 95, CompletedAt: now.Add(2 * time.Minute)}); err != nil {
		t.Fatal(err)
	}
	rec, _, err = db.ProgressFor(u.ID, "l1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Score != 95 {
		t.Errorf("score = %d, higher attempt must overwrite", rec.Score)
	}
}

func TestApplyLessonResult_OneRowPerLesson(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "one@x.com")
	addLesson(t, db, "l1")
	now := time.Now()

	for _, score := range []int{60, 80, 40} {
		if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: score, CompletedAt: now}); err != nil {
			t.Fatal(err)
		}
	}
	progress, err := db.ProgressForUser(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(progress) != 1 {
		t.Errorf("rows = %d, want exactly one per (user, lesson)", len(progress))
	}
}

func TestCompletedCountIn(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "count@x.com")
	addLesson(t, db, "l1")
	now := time.Now()

	lessons := []domain.Lesson{
		{ID: "l2", ModuleID: "m1", Title: "l2", Type: domain.LessonVocabulary, CreatedAt: now},
		{ID: "l3", ModuleID: "m1", Title: "l3", Type: domain.LessonVocabulary, CreatedAt: now},
	}
	for _, l := range lessons {
		if err := db.CreateLesson(l); err != nil {
			t.Fatal(err)
		}
	}

	// l1 above threshold, l2 below, l3 untouched.
	if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l1", Score: 85, CompletedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := db.ApplyLessonResult(u, domain.ProgressRecord{UserID: u.ID, LessonID: "l2", Score: 60, CompletedAt: now}); err != nil {
		t.Fatal(err)
	}

	n, err := db.CompletedCountIn(u.ID, []string{"l1", "l2", "l3"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CompletedCountIn = %d, want 1", n)
	}

	n, err = db.CompletedCountIn(u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CompletedCountIn(nil) = %d, want 0", n)
	}
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func TestUpsertLesson_RefreshesContent(t *testing.T) {
	db := testDB(t)
	addLesson(t, db, "l0")
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	l := domain.Lesson{
		ID: "seeded", ModuleID: "m1", Title: "First",
		Type: domain.LessonVocabulary, Content: json.RawMessage(`{"v":1}`), CreatedAt: created,
	}
	if err := db.UpsertLesson(l); err != nil {
		t.Fatal(err)
	}

	l.Title = "Second"
	l.Content = json.RawMessage(`{"v":2}`)
	l.CreatedAt = created.Add(time.Hour)
	if err := db.UpsertLesson(l); err != nil {
		t.Fatal(err)
	}

	got, err := db.LessonByID("seeded")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Second" || string(got.Content) != `{"v":2}` {
		t.Errorf("upsert did not refresh: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, re-seed must keep the original stamp", got.CreatedAt)
	}
}

func TestLessonIDsForLevel(t *testing.T) {
	db := testDB(t)
	addLesson(t, db, "l1")

	ids, err := db.LessonIDsForLevel(domain.LevelBeginner)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "l1" {
		t.Errorf("ids = %v, want [l1]", ids)
	}

	ids, err = db.LessonIDsForLevel(domain.LevelAdvanced)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("ids for level without course = %v, want empty", ids)
	}
}

// ─── Wallet ─────────────────────────────────────────────────────────────────

func TestWalletEntries_NewestFirst(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "wallet@x.com")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, amount := range []int{10, 20, 30} {
		_, err := db.InsertWalletEntry(domain.WalletEntry{
			UserID: u.ID, Kind: domain.WalletEarn, Amount: amount,
			Reason: "test", Balance: amount, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.WalletEntries(u.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Amount != 30 || entries[1].Amount != 20 {
		t.Errorf("order = %d, %d, want newest first", entries[0].Amount, entries[1].Amount)
	}
}

// ─── Advice ─────────────────────────────────────────────────────────────────

func TestLatestAdvice(t *testing.T) {
	db := testDB(t)
	u := addUser(t, db, "adv@x.com")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, found, err := db.LatestAdvice(u.ID); err != nil || found {
		t.Fatalf("empty table: found=%v err=%v", found, err)
	}

	if _, err := db.InsertAdvice(domain.TutorAdvice{UserID: u.ID, Text: "older", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertAdvice(domain.TutorAdvice{UserID: u.ID, Text: "newer", Fallback: true, CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}

	a, found, err := db.LatestAdvice(u.ID)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if a.Text != "newer" || !a.Fallback {
		t.Errorf("LatestAdvice = %+v, want the newer fallback note", a)
	}
}
