package progression

import (
	"time"

	"github.com/lingvolab/lingvo/internal/app/economy"
	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/metrics"
)

// ShopItem identifies a priced action.
type ShopItem string

const (
	ItemHeart  ShopItem = "heart"
	ItemFreeze ShopItem = "freeze"
	ItemRepair ShopItem = "repair"
)

// ShopPurchaseResult reports what a purchase cost and the state after it.
type ShopPurchaseResult struct {
	Item ShopItem    `json:"item"`
	Cost int         `json:"cost"`
	User domain.User `json:"user"`
}

// Purchase applies one priced shop action. Every precondition — item
// validity, the item's own gate, the coin balance — is checked before the
// first write, and the whole effect lands in a single state update.
// Runs under the same per-user lock as the rest of the engine, so shop
// actions are atomic relative to logins and lesson completions.
func (s *Service) Purchase(userID int64, item ShopItem, now time.Time) (ShopPurchaseResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return ShopPurchaseResult{}, err
	}

	var cost int
	apply := func() {}

	switch item {
	case ItemHeart:
		cost = domain.PriceHeart
		if u.Hearts >= domain.MaxHearts {
			return ShopPurchaseResult{}, domain.ErrHeartsFull
		}
		apply = func() { u.Hearts++ }

	case ItemFreeze:
		cost = domain.PriceFreeze
		if u.StreakFreezes >= domain.MaxFreezes {
			return ShopPurchaseResult{}, domain.ErrFreezesFull
		}
		apply = func() { u.StreakFreezes++ }

	case ItemRepair:
		cost = domain.PriceRepair
		if err := repairEligible(u, now); err != nil {
			return ShopPurchaseResult{}, err
		}
		apply = func() {
			u.Streak = u.OldStreak
			u.LastStreakUpdate = now
			repairAt := now
			u.LastRepairUsedAt = &repairAt
			u.LastStreakLostAt = nil
			u.OldStreak = 0
		}

	default:
		return ShopPurchaseResult{}, domain.ErrUnknownItem
	}

	if u.Coins < cost {
		return ShopPurchaseResult{}, domain.ErrInsufficientCoins
	}

	u.Coins -= cost
	apply()

	if err := s.db.UpdateUserState(u); err != nil {
		return ShopPurchaseResult{}, err
	}
	economy.Note(s.ledger.RecordSpend(userID, cost, "shop: "+string(item), u.Coins, now))
	metrics.ShopPurchases.WithLabelValues(string(item)).Inc()
	return ShopPurchaseResult{Item: item, Cost: cost, User: u}, nil
}

// repairEligible checks the repair preconditions in order, each with its
// own distinct failure.
func repairEligible(u domain.User, now time.Time) error {
	if u.LastStreakLostAt == nil {
		return domain.ErrNothingToRepair
	}
	if now.Sub(*u.LastStreakLostAt) > domain.RepairWindow {
		return domain.ErrRepairExpired
	}
	if u.LastRepairUsedAt != nil && now.Sub(*u.LastRepairUsedAt) < domain.RepairCooldown {
		return domain.ErrRepairOnCooldown
	}
	return nil
}

// UpgradePro converts the account to Pro for a flat coin price. One-way.
func (s *Service) UpgradePro(userID int64) (domain.User, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsPro {
		return domain.User{}, domain.ErrAlreadyPro
	}
	if u.Coins < domain.PricePro {
		return domain.User{}, domain.ErrInsufficientCoins
	}

	u.Coins -= domain.PricePro
	u.IsPro = true

	if err := s.db.UpdateUserState(u); err != nil {
		return domain.User{}, err
	}
	economy.Note(s.ledger.RecordSpend(userID, domain.PricePro, economy.ReasonProUpgrade, u.Coins, time.Now()))
	return u, nil
}

// LoseHeart spends one heart on a wrong practice answer. Pro accounts
// never lose hearts; everyone bottoms out with a distinct error at zero.
func (s *Service) LoseHeart(userID int64) (domain.User, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsPro {
		return u, nil
	}
	if u.Hearts <= 0 {
		return domain.User{}, domain.ErrNoHeartsLeft
	}

	u.Hearts--
	if err := s.db.UpdateUserState(u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
