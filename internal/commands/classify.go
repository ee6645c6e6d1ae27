package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsift-dev/finsift/internal/auditlog"
	"github.com/finsift-dev/finsift/internal/patterns"
)

func newClassifyCommand(verbose *bool) *cobra.Command {
	var override bool

	cmd := &cobra.Command{
		Use:   "classify --override <txn-hash-prefix> <category>[/<subcategory>]",
		Short: "Manually reclassify a stored transaction",
		Long: `Classify records a manual category override for one transaction,
identified by a unique prefix of its hash. The override is authoritative
(confidence 1.0), is written to the audit log, and feeds the pattern store
so similar transactions classify the same way in the future.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !override {
				return fmt.Errorf("refusing to modify stored data without --override")
			}
			app, err := loadApp(*verbose)
			if err != nil {
				return err
			}
			defer app.Close()
			return runOverride(cmd, app, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&override, "override", false, "record a manual category override")
	return cmd
}

func runOverride(cmd *cobra.Command, app *app, hashPrefix, target string) error {
	category, subcategory, _ := strings.Cut(target, "/")
	if category == "" {
		return fmt.Errorf("empty category")
	}

	rec, err := app.store.FindTransactionByHashPrefix(hashPrefix)
	if err != nil {
		return err
	}

	catID, err := app.store.GetOrCreateCategory(category)
	if err != nil {
		return err
	}
	var subID int64
	if subcategory != "" {
		if subID, err = app.store.GetOrCreateSubcategory(catID, subcategory); err != nil {
			return err
		}
	}

	// Manual overrides are authoritative.
	const confidence = 1.0
	if err := app.store.UpdateTransactionCategory(rec.Hash, catID, subID, confidence); err != nil {
		return err
	}

	learner := patterns.NewLearner(app.store)
	if err := learner.ExtractAndLearn(rec.Description, rec.Action, catID, subID, confidence); err != nil {
		app.log.Warn().Err(err).Msg("pattern learning failed, override still recorded")
	}

	entry := auditlog.Entry{
		Timestamp: time.Now().UTC(),
		Source:    "override",
		Action:    "reclassify",
		Details:   fmt.Sprintf("%s -> %s", rec.Action, target),
		TxnHash:   rec.Hash,
	}
	if err := auditlog.Append(app.auditPath(), []auditlog.Entry{entry}); err != nil {
		app.log.Warn().Err(err).Msg("audit log write failed")
	}

	cmd.Printf("reclassified %s as %s\n", rec.Hash[:12], target)
	return nil
}
