package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"phetools/internal/core"
	"phetools/internal/infra/persistence/memory"
	"phetools/internal/observe"
	"phetools/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <table>",
	Short: "validate a template table without persisting anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadOntology()
		if err != nil {
			return err
		}
		table, err := readTable(args[0])
		if err != nil {
			return err
		}
		svc, err := newService(memory.NewStore(), index)
		if err != nil {
			return err
		}
		result, _, err := svc.ImportTable(cmd.Context(), args[0], table)
		if err != nil {
			return err
		}
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Accepted() {
			return fmt.Errorf("table rejected with %d defects", len(result.Errors))
		}
		return nil
	},
}

var importName string

var importCmd = &cobra.Command{
	Use:   "import <table>",
	Short: "validate a table and persist the accepted cohort",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadOntology()
		if err != nil {
			return err
		}
		table, err := readTable(args[0])
		if err != nil {
			return err
		}
		store, err := core.OpenCohortStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		svc, err := newService(store, index, core.WithMetrics(observe.NewExpvarRecorder("phetools")))
		if err != nil {
			return err
		}
		name := importName
		if name == "" {
			name = args[0]
		}
		result, cohort, err := svc.ImportTable(cmd.Context(), name, table)
		if err != nil {
			return err
		}
		if !result.Accepted() {
			if err := printJSON(result.Errors); err != nil {
				return err
			}
			return fmt.Errorf("table rejected with %d defects", len(result.Errors))
		}
		logger.Info("cohort stored", zap.String("import_id", cohort.ImportID))
		fmt.Println(cohort.ImportID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <import-id>",
	Short: "write a stored cohort to the configured blob store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := core.OpenCohortStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		blobs, err := core.OpenBlobStore(cmd.Context())
		if err != nil {
			return err
		}
		infos, err := core.ExportCohort(cmd.Context(), store, blobs, args[0])
		if err != nil {
			return err
		}
		logger.Info("cohort exported",
			zap.String("import_id", args[0]),
			zap.Int("blobs", len(infos)),
			zap.String("driver", string(blobs.Driver())))
		return printJSON(infos)
	},
}

var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "inspect stored cohorts",
}

var cohortsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list stored cohorts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := core.OpenCohortStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		cohorts, err := store.ListCohorts(cmd.Context())
		if err != nil {
			return err
		}
		type row struct {
			ImportID string `json:"import_id"`
			Name     string `json:"name,omitempty"`
			Records  int    `json:"records"`
		}
		rows := make([]row, 0, len(cohorts))
		for _, c := range cohorts {
			rows = append(rows, row{ImportID: c.ImportID, Name: c.Name, Records: len(c.Records)})
		}
		return printJSON(rows)
	},
}

var cohortsDeleteCmd = &cobra.Command{
	Use:   "delete <import-id>",
	Short: "delete a stored cohort",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := core.OpenCohortStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		ok, err := store.DeleteCohort(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no cohort stored under %s", args[0])
		}
		return nil
	},
}

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "inspect the loaded ontology release",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadOntology()
		if err != nil {
			return err
		}
		return printJSON(struct {
			Version string `json:"version"`
			Terms   int    `json:"terms"`
		}{index.Version(), index.Len()})
	},
}

var arrangeCmd = &cobra.Command{
	Use:   "arrange <term-id>...",
	Short: "order HPO terms in hierarchy depth-first order for template columns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadOntology()
		if err != nil {
			return err
		}
		ids := make([]domain.TermID, 0, len(args))
		for _, raw := range args {
			id, err := domain.ParseTermID(raw)
			if err != nil {
				return fmt.Errorf("term %q: %w", raw, err)
			}
			ids = append(ids, id)
		}
		for _, id := range index.ArrangeTerms(ids) {
			label := ""
			if term, ok := index.Resolve(id); ok {
				label = term.Label
			}
			fmt.Printf("%s\t%s\n", id, label)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "cohort name (default: table path)")
	cohortsCmd.AddCommand(cohortsListCmd, cohortsDeleteCmd)
}
