package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "weapon-vault",
	Short:         "Skyrim weapon catalog over PostgreSQL",
	Long:          "weapon-vault keeps the weaponry of Skyrim in a relational store:\nweapons, their types and materials, enchantments and merchant stock.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedFlag bool

var setupSchemaCmd = &cobra.Command{
	Use:   "setup-schema",
	Short: "Create all tables (fails if the schema already exists)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		if err := conn.setupSchema(seedFlag); err != nil {
			return err
		}
		fmt.Println("schema created")
		return nil
	},
}

var teardownSchemaCmd = &cobra.Command{
	Use:   "teardown-schema",
	Short: "Drop all tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		if err := conn.teardownSchema(); err != nil {
			return err
		}
		fmt.Println("schema dropped")
		return nil
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <entity> <column=value>...",
	Short: "Insert a row",
	Args:  needArgs(2, "insert <entity> <column=value>..."),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[1:])
		if err != nil {
			return err
		}
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		if err := conn.insert(args[0], fields); err != nil {
			return err
		}
		fmt.Printf("inserted %s\n", args[0])
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <entity> <id> <column=value>...",
	Short: "Update a row (the identifier itself is immutable)",
	Args:  needArgs(3, "update <entity> <id> <column=value>..."),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[2:])
		if err != nil {
			return err
		}
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		if err := conn.update(args[0], args[1], fields); err != nil {
			return err
		}
		fmt.Printf("updated %s %s\n", args[0], args[1])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>",
	Short: "Delete a row (referencing rows may block the delete)",
	Args:  needArgs(2, "delete <entity> <id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		if err := conn.deleteRow(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted %s %s\n", args[0], args[1])
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <name> [args]",
	Short: "Run a catalog query",
	Long:  "Available queries:\n" + queryUsage(),
	Args:  needArgs(1, "query <name> [args]"),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := findQuery(args[0])
		if !ok {
			return usageErrorf("unknown query %q; available:\n%s", args[0], queryUsage())
		}
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		cols, rows, err := conn.runQuery(q, args[1:])
		if err != nil {
			return err
		}
		printTable(cols, rows)
		return nil
	},
}

var transactionCmd = &cobra.Command{
	Use:   "transaction <name> <args>",
	Short: "Run a named multi-step unit atomically",
	Long: "Available transactions:\n" +
		"  trade <weapon-id> <seller> <buyer> <price> — sell a weapon between merchants\n" +
		"  enchant <weapon-id> <enchantment> <effect> [charge] — enchant a weapon\n",
	Args: needArgs(1, "transaction <name> <args>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := createDatabaseConnection()
		if err != nil {
			return err
		}
		switch name, rest := args[0], args[1:]; name {
		case "trade":
			if len(rest) != 4 {
				return usageErrorf("usage: transaction trade <weapon-id> <seller> <buyer> <price>")
			}
			price, err := strconv.Atoi(rest[3])
			if err != nil {
				return usageErrorf("price must be an integer, got %q", rest[3])
			}
			if err := conn.runTrade(rest[0], rest[1], rest[2], price); err != nil {
				return err
			}
			fmt.Printf("traded %s from %s to %s for %d gold\n", rest[0], rest[1], rest[2], price)
		case "enchant":
			if len(rest) < 3 || len(rest) > 4 {
				return usageErrorf("usage: transaction enchant <weapon-id> <enchantment> <effect> [charge]")
			}
			charge := 0
			if len(rest) == 4 {
				charge, err = strconv.Atoi(rest[3])
				if err != nil {
					return usageErrorf("charge must be an integer, got %q", rest[3])
				}
			}
			if err := conn.runEnchant(rest[0], rest[1], rest[2], charge); err != nil {
				return err
			}
			fmt.Printf("enchanted %s with %s\n", rest[0], rest[1])
		default:
			return usageErrorf("unknown transaction %q (have: trade, enchant)", name)
		}
		return nil
	},
}

func init() {
	setupSchemaCmd.Flags().BoolVar(&seedFlag, "seed", false, "load the sample stock after creating the schema")
	rootCmd.AddCommand(setupSchemaCmd, teardownSchemaCmd, insertCmd, updateCmd, deleteCmd, queryCmd, transactionCmd)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})
}

func needArgs(min int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min {
			return usageErrorf("usage: %s %s", cmd.Root().Name(), usage)
		}
		return nil
	}
}

// parseFields turns column=value arguments into a field map. Values may
// contain '='; only the first one splits.
func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, usageErrorf("expected column=value, got %q", arg)
		}
		if _, dup := fields[col]; dup {
			return nil, usageErrorf("column %q given twice", col)
		}
		fields[col] = val
	}
	return fields, nil
}

func printTable(cols []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	fmt.Printf("(%d row(s))\n", len(rows))
}
