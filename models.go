package main

import "time"

type weaponType struct {
	Name       string   `db:"name"`
	Handedness string   `db:"handedness"`
	Speed      *float64 `db:"speed"`
	Stagger    float64  `db:"stagger"`
	Reach      *float64 `db:"reach"`
}

type material struct {
	Name      string   `db:"name"`
	Weight    float64  `db:"weight"`
	Damage    int      `db:"damage"`
	Value     int      `db:"value"`
	DrawSpeed *float64 `db:"draw_speed"`
	// Forgeability sub-parts: both set, or neither (raw materials like iron
	// need no smithing perk).
	ForgeLevel *int    `db:"forge_level"`
	ForgePerk  *string `db:"forge_perk"`
}

type merchant struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Hold string `db:"hold"`
	Gold int    `db:"gold"`
}

type weapon struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	TypeName     string  `db:"type_name"`
	MaterialName string  `db:"material_name"`
	MerchantID   *string `db:"merchant_id"`
}

type enchantment struct {
	Name   string `db:"name"`
	Effect string `db:"effect"`
}

type weaponEnchantment struct {
	WeaponID        string `db:"weapon_id"`
	EnchantmentName string `db:"enchantment_name"`
	Charge          int    `db:"charge"`
}

type tradeRecord struct {
	ID       string    `db:"id"`
	WeaponID string    `db:"weapon_id"`
	SellerID string    `db:"seller_id"`
	BuyerID  string    `db:"buyer_id"`
	Price    int       `db:"price"`
	TradedAt time.Time `db:"traded_at"`
}
