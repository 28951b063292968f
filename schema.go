package main

const schema = `
CREATE TABLE weapon_type (
    name TEXT PRIMARY KEY,
    handedness TEXT NOT NULL CHECK (handedness IN ('one-handed', 'two-handed', 'archery')),
    speed NUMERIC(4,2) CHECK (speed > 0),
    stagger NUMERIC(4,2) NOT NULL CHECK (stagger >= 0),
    reach NUMERIC(4,2) CHECK (reach > 0)
);

CREATE TABLE material (
    name TEXT PRIMARY KEY,
    weight NUMERIC(5,2) NOT NULL CHECK (weight > 0),
    damage INT NOT NULL CHECK (damage > 0),
    value INT NOT NULL CHECK (value > 0),
    draw_speed NUMERIC(5,4) CHECK (draw_speed > 0),
    -- Forgeability is stored as its two sub-parts. Either the material needs
    -- a smithing perk at some level, or it needs neither.
    forge_level INT CHECK (forge_level > 0),
    forge_perk TEXT,
    CHECK ((forge_level IS NULL) = (forge_perk IS NULL))
);

CREATE TABLE merchant (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    hold TEXT NOT NULL,
    gold INT NOT NULL DEFAULT 0 CHECK (gold >= 0)
);

-- A weapon cannot exist without a type and a material, so both references
-- are NOT NULL. One type (or material) serves many weapons, never the
-- other way around.
CREATE TABLE weapon (
    id TEXT PRIMARY KEY CHECK (id ~ '^[0-9a-f]{8}$'),
    name TEXT NOT NULL,
    type_name TEXT NOT NULL REFERENCES weapon_type(name) ON DELETE RESTRICT,
    material_name TEXT NOT NULL REFERENCES material(name) ON DELETE RESTRICT,
    merchant_id UUID REFERENCES merchant(id) ON DELETE RESTRICT
);

CREATE TABLE enchantment (
    name TEXT PRIMARY KEY,
    effect TEXT NOT NULL
);

-- A weapon holds any number of enchantments. Bindings die with the weapon,
-- but an enchantment known to any weapon cannot be dropped.
CREATE TABLE weapon_enchantment (
    weapon_id TEXT NOT NULL REFERENCES weapon(id) ON DELETE CASCADE,
    enchantment_name TEXT NOT NULL REFERENCES enchantment(name) ON DELETE RESTRICT,
    charge INT NOT NULL DEFAULT 0 CHECK (charge >= 0),
    PRIMARY KEY (weapon_id, enchantment_name)
);

CREATE TABLE trade_ledger (
    id UUID PRIMARY KEY,
    weapon_id TEXT NOT NULL REFERENCES weapon(id) ON DELETE RESTRICT,
    seller_id UUID NOT NULL REFERENCES merchant(id) ON DELETE RESTRICT,
    buyer_id UUID NOT NULL REFERENCES merchant(id) ON DELETE RESTRICT,
    price INT NOT NULL CHECK (price > 0),
    traded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (seller_id <> buyer_id)
);

CREATE INDEX idx_weapon_merchant ON weapon(merchant_id);
CREATE INDEX idx_ledger_weapon ON trade_ledger(weapon_id);
`

const teardown = `
DROP TABLE IF EXISTS trade_ledger;
DROP TABLE IF EXISTS weapon_enchantment;
DROP TABLE IF EXISTS enchantment;
DROP TABLE IF EXISTS weapon;
DROP TABLE IF EXISTS merchant;
DROP TABLE IF EXISTS material;
DROP TABLE IF EXISTS weapon_type;
`

// Sample stock. Weapon IDs are the game's form IDs; merchant IDs are fixed
// so scripted runs can refer to them.
const seedData = `
INSERT INTO weapon_type(name, handedness, speed, stagger, reach) VALUES
    ('sword', 'one-handed', 1, 0.75, 1),
    ('war axe', 'one-handed', 0.9, 0.85, 1),
    ('mace', 'one-handed', 0.8, 1, 1),
    ('dagger', 'one-handed', 1.3, 0, 0.7),
    ('greatsword', 'two-handed', 0.7, 1.1, 1.3),
    ('battleaxe', 'two-handed', 0.7, 1.15, 1.3),
    ('warhammer', 'two-handed', 0.6, 1.25, 1.3),
    ('bow', 'archery', NULL, 0, NULL);

INSERT INTO material(name, weight, damage, value, draw_speed, forge_level, forge_perk) VALUES
    ('iron', 9, 7, 25, NULL, NULL, NULL),
    ('steel', 10, 8, 45, NULL, 2, 'Steel Smithing'),
    ('orcish', 11, 9, 75, 0.8125, 6, 'Orcish Smithing'),
    ('dwarven', 12, 10, 150, 0.75, 12, 'Dwarven Smithing'),
    ('elven', 13, 11, 235, 0.6875, 19, 'Elven Smithing'),
    ('glass', 14, 12, 410, 0.625, 27, 'Glass Smithing'),
    ('ebony', 15, 13, 720, 0.5625, 36, 'Ebony Smithing'),
    ('daedric', 16, 14, 1250, 0.5, 46, 'Daedric Smithing');

INSERT INTO merchant(id, name, hold, gold) VALUES
    ('5a1f0f3e-0000-4000-8000-000000000001', 'Adrianne Avenicci', 'Whiterun', 1200),
    ('5a1f0f3e-0000-4000-8000-000000000002', 'Eorlund Gray-Mane', 'Whiterun', 2400),
    ('5a1f0f3e-0000-4000-8000-000000000003', 'Alvor', 'Riverwood', 500);

INSERT INTO weapon(id, name, type_name, material_name, merchant_id) VALUES
    ('00012eb7', 'Iron Sword', 'sword', 'iron', '5a1f0f3e-0000-4000-8000-000000000003'),
    ('0001397e', 'Iron Dagger', 'dagger', 'iron', '5a1f0f3e-0000-4000-8000-000000000003'),
    ('00013989', 'Steel Sword', 'sword', 'steel', '5a1f0f3e-0000-4000-8000-000000000001'),
    ('00013987', 'Steel Greatsword', 'greatsword', 'steel', '5a1f0f3e-0000-4000-8000-000000000001'),
    ('0001398d', 'Orcish Bow', 'bow', 'orcish', '5a1f0f3e-0000-4000-8000-000000000001'),
    ('00013996', 'Dwarven Dagger', 'dagger', 'dwarven', '5a1f0f3e-0000-4000-8000-000000000002'),
    ('0001399f', 'Elven Greatsword', 'greatsword', 'elven', '5a1f0f3e-0000-4000-8000-000000000002'),
    ('000139a5', 'Glass Bow', 'bow', 'glass', '5a1f0f3e-0000-4000-8000-000000000002'),
    ('000139b2', 'Ebony Warhammer', 'warhammer', 'ebony', NULL),
    ('000139b6', 'Daedric Dagger', 'dagger', 'daedric', NULL);

INSERT INTO enchantment(name, effect) VALUES
    ('Frost Damage', 'drains health and stamina'),
    ('Fiery Soul Trap', 'burns the target and traps its soul'),
    ('Absorb Health', 'transfers health from the target'),
    ('Banish', 'sends summoned daedra back to Oblivion');

INSERT INTO weapon_enchantment(weapon_id, enchantment_name, charge) VALUES
    ('000139b6', 'Absorb Health', 500),
    ('000139b6', 'Fiery Soul Trap', 300),
    ('000139a5', 'Frost Damage', 800),
    ('0001399f', 'Banish', 250);
`

// setupSchema refuses to run against a store that already holds the schema.
// The caller must run teardown first; partial re-creation is never attempted.
func (conn dbConnection) setupSchema(seed bool) error {
	var exists bool
	if err := conn.db.Get(&exists, "SELECT to_regclass('weapon') IS NOT NULL"); err != nil {
		return mapStoreError(err)
	}
	if exists {
		return schemaErrorf("schema already present; run teardown-schema first")
	}

	if _, err := conn.db.Exec(schema); err != nil {
		return mapStoreError(err)
	}
	if seed {
		if _, err := conn.db.Exec(seedData); err != nil {
			return mapStoreError(err)
		}
	}
	return nil
}

func (conn dbConnection) teardownSchema() error {
	if _, err := conn.db.Exec(teardown); err != nil {
		return mapStoreError(err)
	}
	return nil
}
