package main

import (
	"fmt"
	"strings"
	"time"
)

// catalogQuery is one read-only entry of the fixed query catalog. argNames
// doubles as usage text and placeholder count.
type catalogQuery struct {
	name     string
	summary  string
	argNames []string
	sql      string
}

var queryCatalog = []catalogQuery{
	{
		name:    "arsenal",
		summary: "every weapon with its type, material and enchantments",
		sql: `
SELECT w.id, w.name, t.handedness, w.type_name, w.material_name, m.damage, m.value,
       COALESCE(string_agg(e.enchantment_name, ', ' ORDER BY e.enchantment_name), '') AS enchantments
FROM weapon w
JOIN weapon_type t ON t.name = w.type_name
JOIN material m ON m.name = w.material_name
LEFT JOIN weapon_enchantment e ON e.weapon_id = w.id
GROUP BY w.id, w.name, t.handedness, w.type_name, w.material_name, m.damage, m.value
ORDER BY w.name`,
	},
	{
		name:     "enchant-census",
		summary:  "weapons carrying at least N enchantments, with total charge",
		argNames: []string{"min-enchantments"},
		sql: `
SELECT w.id, w.name, COUNT(e.enchantment_name) AS enchantments, COALESCE(SUM(e.charge), 0) AS total_charge
FROM weapon w
LEFT JOIN weapon_enchantment e ON e.weapon_id = w.id
GROUP BY w.id, w.name
HAVING COUNT(e.enchantment_name) >= $1
ORDER BY COUNT(e.enchantment_name) DESC, w.name`,
	},
	{
		name:     "forgeable",
		summary:  "materials forgeable at or below a smithing level, with weapon counts",
		argNames: []string{"smith-level"},
		sql: `
SELECT m.name, m.forge_level, m.forge_perk, COUNT(w.id) AS weapons
FROM material m
LEFT JOIN weapon w ON w.material_name = m.name
WHERE m.forge_level IS NULL OR m.forge_level <= $1
GROUP BY m.name, m.forge_level, m.forge_perk
ORDER BY COALESCE(m.forge_level, 0), m.name`,
	},
	{
		name:     "inventory",
		summary:  "a merchant's stocked weapons, priciest first",
		argNames: []string{"merchant-name"},
		sql: `
SELECT w.id, w.name, w.type_name, w.material_name, m.value
FROM weapon w
JOIN merchant mc ON mc.id = w.merchant_id
JOIN material m ON m.name = w.material_name
WHERE mc.name = $1
ORDER BY m.value DESC, w.name`,
	},
	{
		name:    "type-report",
		summary: "stock breadth, average damage and top value per weapon type",
		sql: `
SELECT t.name, t.handedness, COUNT(w.id) AS weapons,
       COALESCE(ROUND(AVG(m.damage), 1), 0) AS avg_damage,
       COALESCE(MAX(m.value), 0) AS top_value
FROM weapon_type t
LEFT JOIN weapon w ON w.type_name = t.name
LEFT JOIN material m ON m.name = w.material_name
GROUP BY t.name, t.handedness
ORDER BY t.name`,
	},
	{
		name:    "ledger",
		summary: "every recorded trade, oldest first",
		sql: `
SELECT l.traded_at, w.name AS weapon, s.name AS seller, b.name AS buyer, l.price
FROM trade_ledger l
JOIN weapon w ON w.id = l.weapon_id
JOIN merchant s ON s.id = l.seller_id
JOIN merchant b ON b.id = l.buyer_id
ORDER BY l.traded_at, l.id`,
	},
}

func findQuery(name string) (catalogQuery, bool) {
	for _, q := range queryCatalog {
		if q.name == name {
			return q, true
		}
	}
	return catalogQuery{}, false
}

func queryUsage() string {
	var b strings.Builder
	for _, q := range queryCatalog {
		b.WriteString("  ")
		b.WriteString(q.name)
		for _, a := range q.argNames {
			b.WriteString(" <" + a + ">")
		}
		b.WriteString(" — " + q.summary + "\n")
	}
	return b.String()
}

// runQuery executes a catalog entry and renders every row as strings, in the
// order the statement imposes. An empty result is a valid result.
func (conn dbConnection) runQuery(q catalogQuery, args []string) ([]string, [][]string, error) {
	if len(args) != len(q.argNames) {
		return nil, nil, usageErrorf("query %q takes %d argument(s): %s", q.name, len(q.argNames), strings.Join(q.argNames, ", "))
	}
	queryArgs := make([]interface{}, len(args))
	for i, a := range args {
		queryArgs[i] = a
	}

	rows, err := conn.db.Queryx(q.sql, queryArgs...)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, mapStoreError(err)
	}

	var out [][]string
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, nil, mapStoreError(err)
		}
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = formatCell(cell)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapStoreError(err)
	}
	return cols, out, nil
}

func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(c)
	case time.Time:
		return c.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", c)
	}
}
