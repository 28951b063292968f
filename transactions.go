package main

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type txState int

const (
	txIdle txState = iota
	txStarted
	txCommitted
	txRolledBack
)

func (s txState) String() string {
	switch s {
	case txIdle:
		return "idle"
	case txStarted:
		return "started"
	case txCommitted:
		return "committed"
	case txRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// txUnit is one named atomic unit of work. Steps are only legal while the
// unit is started; the first failing step rolls the whole unit back, and a
// finished unit accepts nothing further.
type txUnit struct {
	name  string
	tx    *sqlx.Tx
	state txState
}

func (conn dbConnection) beginUnit(name string) (*txUnit, error) {
	tx, err := conn.db.Beginx()
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &txUnit{name: name, tx: tx, state: txStarted}, nil
}

func (u *txUnit) step(desc string, fn func(tx *sqlx.Tx) error) error {
	if u.state != txStarted {
		return errors.Errorf("transaction %q is %s, cannot run step %q", u.name, u.state, desc)
	}
	if err := fn(u.tx); err != nil {
		u.rollback()
		return transactionError{Unit: u.name, Step: desc, Cause: mapStoreError(err)}
	}
	return nil
}

func (u *txUnit) commit() error {
	if u.state != txStarted {
		return errors.Errorf("transaction %q is %s, cannot commit", u.name, u.state)
	}
	if err := u.tx.Commit(); err != nil {
		u.state = txRolledBack
		return transactionError{Unit: u.name, Step: "commit", Cause: mapStoreError(err)}
	}
	u.state = txCommitted
	return nil
}

// rollback is safe to defer; it does nothing once the unit has finished.
func (u *txUnit) rollback() {
	if u.state != txStarted {
		return
	}
	if err := u.tx.Rollback(); err != nil {
		logrus.WithError(err).WithField("unit", u.name).Warn("rollback failed")
	}
	u.state = txRolledBack
}

// runTrade moves a weapon from the seller's stock to the buyer's: the buyer
// is debited, the seller credited, the weapon re-stocked and the trade
// recorded in the ledger. All of it happens or none of it does; an
// overdrawn buyer trips the gold >= 0 check and undoes everything.
func (conn dbConnection) runTrade(weaponID, sellerName, buyerName string, price int) error {
	if price <= 0 {
		return usageErrorf("price must be positive, got %d", price)
	}
	if sellerName == buyerName {
		return usageErrorf("seller and buyer must differ")
	}

	unit, err := conn.beginUnit("trade")
	if err != nil {
		return err
	}
	defer unit.rollback()

	var (
		seller, buyer merchant
		w             weapon
	)
	if err := unit.step("resolve parties", func(tx *sqlx.Tx) error {
		if err := tx.Get(&seller, "SELECT id, name, hold, gold FROM merchant WHERE name=$1 FOR UPDATE", sellerName); err != nil {
			return errors.Wrapf(err, "seller %q", sellerName)
		}
		if err := tx.Get(&buyer, "SELECT id, name, hold, gold FROM merchant WHERE name=$1 FOR UPDATE", buyerName); err != nil {
			return errors.Wrapf(err, "buyer %q", buyerName)
		}
		if err := tx.Get(&w, "SELECT id, name, type_name, material_name, merchant_id FROM weapon WHERE id=$1 FOR UPDATE", weaponID); err != nil {
			return errors.Wrapf(err, "weapon %q", weaponID)
		}
		if w.MerchantID == nil || *w.MerchantID != seller.ID {
			return errors.Errorf("weapon %q is not stocked by %s", weaponID, sellerName)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := unit.step("debit buyer", func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE merchant SET gold = gold - $1 WHERE id = $2", price, buyer.ID)
		return err
	}); err != nil {
		return err
	}

	if err := unit.step("credit seller", func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE merchant SET gold = gold + $1 WHERE id = $2", price, seller.ID)
		return err
	}); err != nil {
		return err
	}

	if err := unit.step("hand over weapon", func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE weapon SET merchant_id = $1 WHERE id = $2", buyer.ID, weaponID)
		return err
	}); err != nil {
		return err
	}

	if err := unit.step("record trade", func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO trade_ledger(id, weapon_id, seller_id, buyer_id, price) VALUES ($1, $2, $3, $4, $5)",
			uuid.New().String(), weaponID, seller.ID, buyer.ID, price,
		)
		return err
	}); err != nil {
		return err
	}

	return unit.commit()
}

// runEnchant registers an enchantment (updating its effect text if it is
// already known) and binds it to the weapon in the same unit.
func (conn dbConnection) runEnchant(weaponID, name, effect string, charge int) error {
	if charge < 0 {
		return usageErrorf("charge must not be negative, got %d", charge)
	}

	unit, err := conn.beginUnit("enchant")
	if err != nil {
		return err
	}
	defer unit.rollback()

	if err := unit.step("register enchantment", func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO enchantment(name, effect) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET effect = EXCLUDED.effect",
			name, effect,
		)
		return err
	}); err != nil {
		return err
	}

	if err := unit.step("bind to weapon", func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO weapon_enchantment(weapon_id, enchantment_name, charge) VALUES ($1, $2, $3)",
			weaponID, name, charge,
		)
		return err
	}); err != nil {
		return err
	}

	return unit.commit()
}
