package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

func richUser(t *testing.T, db *sqlite.DB, now time.Time, coins int) domain.User {
	t.Helper()
	u := testUser(t, db, now)
	u.Coins = coins
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}
	return u
}

// ─── Purchases ──────────────────────────────────────────────────────────────

func TestPurchase_Heart(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 100)
	u.Hearts = 3
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Purchase(u.ID, ItemHeart, now)
	if err != nil {
		t.Fatalf("Purchase() error: %v", err)
	}
	if res.Cost != domain.PriceHeart {
		t.Errorf("Cost = %d, want %d", res.Cost, domain.PriceHeart)
	}
	if res.User.Hearts != 4 {
		t.Errorf("Hearts = %d, want 4", res.User.Hearts)
	}
	if res.User.Coins != 50 {
		t.Errorf("Coins = %d, want 50", res.User.Coins)
	}
}

func TestPurchase_HeartAtCap(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 100)
	if _, err := svc.Purchase(u.ID, ItemHeart, now); !errors.Is(err, domain.ErrHeartsFull) {
		t.Errorf("err = %v, want ErrHeartsFull", err)
	}

	// Gate failure happens before the coin check or any charge.
	after, _ := db.UserByID(u.ID)
	if after.Coins != 100 {
		t.Errorf("Coins = %d, failed purchase must not charge", after.Coins)
	}
}

func TestPurchase_FreezeCap(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 500)
	if _, err := svc.Purchase(u.ID, ItemFreeze, now); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Purchase(u.ID, ItemFreeze, now); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Purchase(u.ID, ItemFreeze, now); !errors.Is(err, domain.ErrFreezesFull) {
		t.Errorf("err = %v, want ErrFreezesFull at two freezes", err)
	}
}

func TestPurchase_InsufficientCoins(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 10)
	u.Hearts = 1
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Purchase(u.ID, ItemHeart, now); !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Errorf("err = %v, want ErrInsufficientCoins", err)
	}
}

func TestPurchase_UnknownItem(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 1000)
	if _, err := svc.Purchase(u.ID, ShopItem("banana"), now); !errors.Is(err, domain.ErrUnknownItem) {
		t.Errorf("err = %v, want ErrUnknownItem", err)
	}
}

// ─── Streak repair ──────────────────────────────────────────────────────────

// breakStreak ages the user past their freezes so the streak snapshot is
// taken, then returns the loss time.
func breakStreak(t *testing.T, db *sqlite.DB, svc *Service, u domain.User, streak int, created time.Time) time.Time {
	t.Helper()
	rec, err := db.UserByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	rec.Streak = streak
	rec.LastStreakUpdate = created
	if err := db.UpdateUserState(rec); err != nil {
		t.Fatal(err)
	}
	lossTime := created.Add(5 * 24 * time.Hour)
	if _, _, err := svc.Touch(u.ID, lossTime); err != nil {
		t.Fatal(err)
	}
	return lossTime
}

func TestPurchase_RepairRestoresStreak(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, created, 500)
	lossTime := breakStreak(t, db, svc, u, 12, created)

	res, err := svc.Purchase(u.ID, ItemRepair, lossTime.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Purchase(repair) error: %v", err)
	}
	if res.User.Streak != 12 {
		t.Errorf("Streak = %d, want restored 12", res.User.Streak)
	}
	if res.User.OldStreak != 0 || res.User.LastStreakLostAt != nil {
		t.Error("repair must clear the loss snapshot")
	}
	if res.User.LastRepairUsedAt == nil {
		t.Error("repair must stamp LastRepairUsedAt")
	}
	if res.User.Coins != 500-domain.PriceRepair {
		t.Errorf("Coins = %d, want %d", res.User.Coins, 500-domain.PriceRepair)
	}
}

func TestPurchase_RepairNothingLost(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 500)
	if _, err := svc.Purchase(u.ID, ItemRepair, now); !errors.Is(err, domain.ErrNothingToRepair) {
		t.Errorf("err = %v, want ErrNothingToRepair", err)
	}
}

func TestPurchase_RepairWindowExpired(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, created, 500)
	lossTime := breakStreak(t, db, svc, u, 8, created)

	late := lossTime.Add(domain.RepairWindow + time.Hour)
	if _, err := svc.Purchase(u.ID, ItemRepair, late); !errors.Is(err, domain.ErrRepairExpired) {
		t.Errorf("err = %v, want ErrRepairExpired", err)
	}
}

func TestPurchase_RepairCooldown(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, created, 1000)
	lossTime := breakStreak(t, db, svc, u, 6, created)
	repairTime := lossTime.Add(time.Hour)
	if _, err := svc.Purchase(u.ID, ItemRepair, repairTime); err != nil {
		t.Fatal(err)
	}

	// Break again shortly after and try a second repair inside the
	// cooldown.
	secondLoss := breakStreak(t, db, svc, u, 4, repairTime.Add(24*time.Hour))
	if _, err := svc.Purchase(u.ID, ItemRepair, secondLoss.Add(time.Hour)); !errors.Is(err, domain.ErrRepairOnCooldown) {
		t.Errorf("err = %v, want ErrRepairOnCooldown", err)
	}
}

// ─── Pro & hearts ───────────────────────────────────────────────────────────

func TestUpgradePro(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, domain.PricePro)
	got, err := svc.UpgradePro(u.ID)
	if err != nil {
		t.Fatalf("UpgradePro() error: %v", err)
	}
	if !got.IsPro || got.Coins != 0 {
		t.Errorf("got isPro=%v coins=%d, want true/0", got.IsPro, got.Coins)
	}

	if _, err := svc.UpgradePro(u.ID); !errors.Is(err, domain.ErrAlreadyPro) {
		t.Errorf("second upgrade err = %v, want ErrAlreadyPro", err)
	}
}

func TestUpgradePro_InsufficientCoins(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, domain.PricePro-1)
	if _, err := svc.UpgradePro(u.ID); !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Errorf("err = %v, want ErrInsufficientCoins", err)
	}
}

func TestLoseHeart(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := testUser(t, db, now)
	got, err := svc.LoseHeart(u.ID)
	if err != nil {
		t.Fatalf("LoseHeart() error: %v", err)
	}
	if got.Hearts != domain.MaxHearts-1 {
		t.Errorf("Hearts = %d, want %d", got.Hearts, domain.MaxHearts-1)
	}
}

func TestLoseHeart_ProBypass(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := testUser(t, db, now)
	u.IsPro = true
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}

	got, err := svc.LoseHeart(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hearts != domain.MaxHearts {
		t.Errorf("Hearts = %d, Pro must never lose hearts", got.Hearts)
	}
}

func TestLoseHeart_AtZero(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := testUser(t, db, now)
	u.Hearts = 0
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LoseHeart(u.ID); !errors.Is(err, domain.ErrNoHeartsLeft) {
		t.Errorf("err = %v, want ErrNoHeartsLeft", err)
	}
}

func TestPurchase_WritesSpendLedger(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u := richUser(t, db, now, 100)
	u.Hearts = 1
	if err := db.UpdateUserState(u); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Purchase(u.ID, ItemHeart, now); err != nil {
		t.Fatal(err)
	}

	entries, err := svc.Ledger().History(u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].Kind != domain.WalletSpend || entries[0].Amount != domain.PriceHeart || entries[0].Balance != 50 {
		t.Errorf("entry = %+v, want spend of %d leaving 50", entries[0], domain.PriceHeart)
	}
}
