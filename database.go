package main

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type dbConnection struct {
	db *sqlx.DB
}

func createDatabaseConnection() (dbConnection, error) {
	connString := fmt.Sprintf(
		"host=%s user=%s dbname=%s password=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_SSLMODE", "disable"),
	)
	db, err := sqlx.Connect("postgres", connString)
	if err != nil {
		return dbConnection{}, errors.Wrap(err, "connect to store")
	}
	logrus.WithFields(logrus.Fields{
		"host":   envOr("DB_HOST", "localhost"),
		"dbname": os.Getenv("DB_NAME"),
	}).Debug("store connection established")

	return dbConnection{db: db}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// entityDef describes one CLI-addressable table: which columns a caller may
// set and which must be present on insert. The identifier column is immutable
// once the row exists.
type entityDef struct {
	table    string
	idCol    string
	columns  []string
	required []string
}

var entities = map[string]entityDef{
	"weapon": {
		table:    "weapon",
		idCol:    "id",
		columns:  []string{"id", "name", "type_name", "material_name", "merchant_id"},
		required: []string{"id", "name", "type_name", "material_name"},
	},
	"weapon-type": {
		table:    "weapon_type",
		idCol:    "name",
		columns:  []string{"name", "handedness", "speed", "stagger", "reach"},
		required: []string{"name", "handedness", "stagger"},
	},
	"material": {
		table:    "material",
		idCol:    "name",
		columns:  []string{"name", "weight", "damage", "value", "draw_speed", "forge_level", "forge_perk"},
		required: []string{"name", "weight", "damage", "value"},
	},
	"enchantment": {
		table:    "enchantment",
		idCol:    "name",
		columns:  []string{"name", "effect"},
		required: []string{"name", "effect"},
	},
	"merchant": {
		table:    "merchant",
		idCol:    "id",
		columns:  []string{"id", "name", "hold", "gold"},
		required: []string{"name", "hold"},
	},
}

func entityNames() []string {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateFields checks the supplied columns against the entity definition.
// forInsert additionally demands every required column; updates instead
// forbid touching the identifier.
func validateFields(def entityDef, entity string, fields map[string]string, forInsert bool) error {
	allowed := make(map[string]bool, len(def.columns))
	for _, c := range def.columns {
		allowed[c] = true
	}
	for k := range fields {
		if !allowed[k] {
			return usageErrorf("unknown column %q for %s (have: %s)", k, entity, strings.Join(def.columns, ", "))
		}
	}
	if forInsert {
		for _, c := range def.required {
			if _, ok := fields[c]; !ok {
				return usageErrorf("%s requires column %q", entity, c)
			}
		}
		return nil
	}
	if _, ok := fields[def.idCol]; ok {
		return usageErrorf("%s identifier %q cannot be changed", entity, def.idCol)
	}
	if len(fields) == 0 {
		return usageErrorf("update needs at least one column=value pair")
	}
	return nil
}

func (conn dbConnection) insert(entity string, fields map[string]string) error {
	def, ok := entities[entity]
	if !ok {
		return usageErrorf("unknown entity %q (have: %s)", entity, strings.Join(entityNames(), ", "))
	}
	if err := validateFields(def, entity, fields, true); err != nil {
		return err
	}

	args := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		args[k] = v
	}
	// Merchants get their identifier minted here; everything else brings
	// its own (weapon form IDs, natural-key names).
	if entity == "merchant" {
		if _, ok := fields["id"]; !ok {
			args["id"] = uuid.New().String()
		}
	}

	cols := make([]string, 0, len(args))
	for _, c := range def.columns {
		if _, ok := args[c]; ok {
			cols = append(cols, c)
		}
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s)",
		def.table, strings.Join(cols, ", "), strings.Join(cols, ", :"),
	)
	if _, err := conn.db.NamedExec(query, args); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (conn dbConnection) update(entity, id string, fields map[string]string) error {
	def, ok := entities[entity]
	if !ok {
		return usageErrorf("unknown entity %q (have: %s)", entity, strings.Join(entityNames(), ", "))
	}
	if err := validateFields(def, entity, fields, false); err != nil {
		return err
	}

	args := make(map[string]interface{}, len(fields)+1)
	sets := make([]string, 0, len(fields))
	for _, c := range def.columns {
		if v, ok := fields[c]; ok {
			args[c] = v
			sets = append(sets, fmt.Sprintf("%s = :%s", c, c))
		}
	}
	args["target_id"] = id

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = :target_id",
		def.table, strings.Join(sets, ", "), def.idCol,
	)
	res, err := conn.db.NamedExec(query, args)
	if err != nil {
		return mapStoreError(err)
	}
	return requireRow(res, entity, id)
}

func (conn dbConnection) deleteRow(entity, id string) error {
	def, ok := entities[entity]
	if !ok {
		return usageErrorf("unknown entity %q (have: %s)", entity, strings.Join(entityNames(), ", "))
	}
	res, err := conn.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = $1", def.table, def.idCol), id)
	if err != nil {
		return mapStoreError(err)
	}
	return requireRow(res, entity, id)
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapStoreError(err)
	}
	if n == 0 {
		return integrityErrorf("no %s with identifier %q", entity, id)
	}
	return nil
}

func (conn dbConnection) getWeapon(id string) (weapon, error) {
	var w weapon
	if err := conn.db.Get(&w, "SELECT id, name, type_name, material_name, merchant_id FROM weapon WHERE id=$1", id); err != nil {
		return weapon{}, mapStoreError(err)
	}
	return w, nil
}

func (conn dbConnection) getMerchantByName(name string) (merchant, error) {
	var m merchant
	if err := conn.db.Get(&m, "SELECT id, name, hold, gold FROM merchant WHERE name=$1", name); err != nil {
		return merchant{}, mapStoreError(err)
	}
	return m, nil
}

func (conn dbConnection) getWeaponType(name string) (weaponType, error) {
	var t weaponType
	if err := conn.db.Get(&t, "SELECT name, handedness, speed, stagger, reach FROM weapon_type WHERE name=$1", name); err != nil {
		return weaponType{}, mapStoreError(err)
	}
	return t, nil
}

func (conn dbConnection) getMaterial(name string) (material, error) {
	var m material
	if err := conn.db.Get(&m, "SELECT name, weight, damage, value, draw_speed, forge_level, forge_perk FROM material WHERE name=$1", name); err != nil {
		return material{}, mapStoreError(err)
	}
	return m, nil
}

func (conn dbConnection) getEnchantment(name string) (enchantment, error) {
	var e enchantment
	if err := conn.db.Get(&e, "SELECT name, effect FROM enchantment WHERE name=$1", name); err != nil {
		return enchantment{}, mapStoreError(err)
	}
	return e, nil
}

func (conn dbConnection) weaponEnchantments(weaponID string) ([]weaponEnchantment, error) {
	var bindings []weaponEnchantment
	err := conn.db.Select(&bindings,
		"SELECT weapon_id, enchantment_name, charge FROM weapon_enchantment WHERE weapon_id=$1 ORDER BY enchantment_name", weaponID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return bindings, nil
}

func (conn dbConnection) tradeHistory(weaponID string) ([]tradeRecord, error) {
	var trades []tradeRecord
	err := conn.db.Select(&trades,
		"SELECT id, weapon_id, seller_id, buyer_id, price, traded_at FROM trade_ledger WHERE weapon_id=$1 ORDER BY traded_at, id", weaponID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return trades, nil
}
