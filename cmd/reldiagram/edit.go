package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tordrt/reldiagram"
	"github.com/tordrt/reldiagram/internal/diagram"
	"github.com/tordrt/reldiagram/internal/edit"
	"github.com/tordrt/reldiagram/internal/schema"
)

var force bool

var connectCmd = &cobra.Command{
	Use:   "connect SOURCE TARGET",
	Short: "Add a relationship from SOURCE to TARGET (schema.table.column each)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := parseConnection(args[0], args[1])
		if err != nil {
			return err
		}
		return runEdit(cmd, func(e *edit.Editor) (edit.Result, error) {
			g := e.StartConnect()
			defer func() { _ = g.End() }()
			return g.Complete(conn)
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect SOURCE TARGET",
	Short: "Remove the relationship from SOURCE to TARGET",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := parseConnection(args[0], args[1])
		if err != nil {
			return err
		}
		return runEdit(cmd, func(e *edit.Editor) (edit.Result, error) {
			edge, err := findEdge(e.Schemas(), conn)
			if err != nil {
				return edit.Result{}, err
			}
			return e.Delete(edge)
		})
	},
}

var retargetCmd = &cobra.Command{
	Use:   "retarget SOURCE TARGET NEW_SOURCE NEW_TARGET",
	Short: "Move the relationship from SOURCE to TARGET onto NEW_SOURCE and NEW_TARGET",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseConnection(args[0], args[1])
		if err != nil {
			return err
		}
		to, err := parseConnection(args[2], args[3])
		if err != nil {
			return err
		}
		return runEdit(cmd, func(e *edit.Editor) (edit.Result, error) {
			edge, err := findEdge(e.Schemas(), from)
			if err != nil {
				return edit.Result{}, err
			}
			g := e.StartRetarget()
			if err := g.Update(to); err != nil {
				return edit.Result{}, err
			}
			return g.End(edge)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{disconnectCmd, retargetCmd} {
		cmd.Flags().BoolVar(&force, "force", false, "Remove relationships enforced by a database constraint")
	}
}

func parseConnection(source, target string) (edit.Connection, error) {
	s, err := schema.ParseColumnRef(source)
	if err != nil {
		return edit.Connection{}, err
	}
	t, err := schema.ParseColumnRef(target)
	if err != nil {
		return edit.Connection{}, err
	}
	return edit.Connection{Source: s, Target: t}, nil
}

func findEdge(schemas []schema.Schema, conn edit.Connection) (diagram.Edge, error) {
	id := diagram.EdgeID(conn.Source, conn.Target)
	for _, e := range diagram.Edges(schemas) {
		if e.ID == id {
			return e, nil
		}
	}
	return diagram.Edge{}, fmt.Errorf("no relationship from %s to %s", conn.Source, conn.Target)
}

// editHandlers logs every editor notification
func editHandlers(log *slog.Logger) edit.Handlers {
	return edit.Handlers{
		OnSchemasChange: func(schemas []schema.Schema) {
			log.Debug("schemas changed", slog.Int("schemas", len(schemas)))
		},
		OnCreateForeignKey: func(fk schema.SpecifiedForeignKey) {
			log.Info("foreign key created", slog.String("local", fk.Local().ID()), slog.String("foreign", fk.Foreign().ID()))
		},
		OnDeleteForeignKey: func(fk schema.SpecifiedForeignKey) {
			log.Info("foreign key deleted", slog.String("local", fk.Local().ID()), slog.String("foreign", fk.Foreign().ID()))
		},
		OnAttemptToRecreateExistingRelationship: func(fk schema.SpecifiedForeignKey) {
			log.Warn("relationship already exists", slog.String("local", fk.Local().ID()), slog.String("foreign", fk.Foreign().ID()))
		},
		OnAttemptToConnectColumnToItself: func(column schema.ColumnRef) {
			log.Warn("cannot connect a column to itself", slog.String("column", column.ID()))
		},
		OnAttemptToDeleteConstrainedRelationship: func(fk schema.SpecifiedForeignKey) {
			log.Warn("relationship is enforced by a constraint", slog.String("local", fk.Local().ID()), slog.String("foreign", fk.Foreign().ID()))
		},
	}
}

// runEdit applies one gesture to the current schemas and writes the result.
// Edits read from a schema file are saved back to it unless --output is set.
func runEdit(cmd *cobra.Command, gesture func(e *edit.Editor) (edit.Result, error)) error {
	schemas, err := readSchemas(cmd.Context())
	if err != nil {
		return err
	}

	res, err := gesture(edit.NewEditor(schemas, editHandlers(logger)))
	if err != nil {
		return err
	}
	if res.Outcome == edit.OutcomeRejected {
		return res.Violation
	}
	if errors.Is(res.Violation, edit.ErrConstrainedDeletion) && !force {
		return fmt.Errorf("%w (use --force to remove it anyway)", res.Violation)
	}

	if outputFile == "" && schemaFile != "" {
		return reldiagram.SaveSchemas(schemaFile, res.Schemas)
	}
	return writeOutput(func(w io.Writer) error { return schema.Encode(w, res.Schemas) })
}
