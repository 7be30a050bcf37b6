package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aita/heapdb/db"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var createCmd = &cobra.Command{
	Use:   "create [file name] [type:name]...",
	Short: "Create an empty heap file and its schema",
	Long: `Create an empty heap file and its schema.

Fields are given in order as type:name, for example
  heapdb create people.dat int:id string:name`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := parseFields(args[1:])
		if err != nil {
			return err
		}
		return withLogger(func(log *zap.Logger) error {
			hf, err := db.CreateTable(args[0], desc, db.NewMemCatalog(), db.WithLogger(log))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (table %d): %s\n", hf.Path(), hf.ID(), desc)
			return nil
		})
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert [file name] [value]...",
	Short: "Insert a tuple into a heap file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(hf *db.HeapFile) error {
			desc, err := hf.TupleDesc()
			if err != nil {
				return err
			}
			t, err := db.ParseTuple(desc, args[1:])
			if err != nil {
				return err
			}
			if _, err := hf.AddTuple(t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d:%d\n", t.PageID(), t.SlotID())
			return nil
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select [file name]",
	Short: "Print every tuple of a heap file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(hf *db.HeapFile) error {
			tuples, err := hf.AllTuples()
			if err != nil {
				return err
			}
			for _, t := range tuples {
				fmt.Fprintf(cmd.OutOrStdout(), "%d:%d\t%s\n", t.PageID(), t.SlotID(), t)
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [file name] [page] [slot]",
	Short: "Delete the tuple stored in a slot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "page %q", args[1])
		}
		slotID, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.Wrapf(err, "slot %q", args[2])
		}
		return withTable(args[0], func(hf *db.HeapFile) error {
			desc, err := hf.TupleDesc()
			if err != nil {
				return err
			}
			t := db.NewTuple(desc)
			t.SetLocation(pageID, slotID)
			return hf.DeleteTuple(t)
		})
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file name]",
	Short: "Show page occupancy of a heap file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTable(args[0], func(hf *db.HeapFile) error {
			desc, err := hf.TupleDesc()
			if err != nil {
				return err
			}
			numPages, err := hf.NumPages()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table %d: %s\n", hf.ID(), desc)
			fmt.Fprintf(out, "tuple size %d, %d slots per page, %d pages\n",
				desc.Size(), db.NumSlotsFor(desc), numPages)
			for id := 0; id < numPages; id++ {
				page, err := hf.ReadPage(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "page %d: %d/%d used\n",
					id, page.NumSlots()-page.NumEmptySlots(), page.NumSlots())
			}
			return nil
		})
	},
}

func parseFields(defs []string) (*db.TupleDesc, error) {
	types := make([]db.FieldType, len(defs))
	names := make([]string, len(defs))
	for i, def := range defs {
		parts := strings.SplitN(def, ":", 2)
		ft, err := db.ParseFieldType(parts[0])
		if err != nil {
			return nil, err
		}
		types[i] = ft
		if len(parts) == 2 {
			names[i] = parts[1]
		}
	}
	return db.NewTupleDesc(types, names)
}

func withLogger(fn func(*zap.Logger) error) error {
	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	return multierr.Append(fn(log), closeLog())
}

func withTable(path string, fn func(*db.HeapFile) error) error {
	return withLogger(func(log *zap.Logger) error {
		hf, err := db.OpenTable(path, db.NewMemCatalog(), db.WithLogger(log))
		if err != nil {
			return err
		}
		if err := fn(hf); err != nil {
			return errors.WithMessage(err, path)
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(inspectCmd)
}
