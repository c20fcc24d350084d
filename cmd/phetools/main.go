// Command phetools validates tabular phenotype templates against the HPO
// and turns accepted tables into stored, exportable subject records.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phetools/internal/core"
	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

var (
	logger  *zap.Logger
	verbose bool

	ontologyPath string
	schemaPath   string
	curator      string
)

var rootCmd = &cobra.Command{
	Use:   "phetools",
	Short: "phenotype template validation and record building",
	Long: `phetools converts curated phenotype tables into validated subject
records. A table is accepted only when every cell parses, every HPO
reference resolves, and no assertion contradicts the ontology; a rejected
table reports every defect with its row and column.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ontologyPath, "ontology", "", "HPO release file (.obo or .json)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "template schema YAML (default: built-in mendelian)")
	rootCmd.PersistentFlags().StringVar(&curator, "curator", "", "curator identity stamped into record metadata")

	rootCmd.AddCommand(validateCmd, importCmd, exportCmd, cohortsCmd, ontologyCmd, arrangeCmd)
}

func loadOntology() (*ontology.Index, error) {
	if ontologyPath == "" {
		return nil, fmt.Errorf("--ontology is required")
	}
	f, err := os.Open(ontologyPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if isOboPath(ontologyPath) {
		return ontology.ReadOBO(f)
	}
	return ontology.ReadJSON(f)
}

func isOboPath(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".obo"
}

func loadSchema() (*domain.TemplateSchema, error) {
	if schemaPath == "" {
		return domain.MendelianSchema(), nil
	}
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	return domain.ParseSchema(data)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newService(store domain.CohortStore, index *ontology.Index, opts ...core.Option) (*core.Service, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	opts = append(opts, core.WithLogger(logger))
	return core.NewService(schema, index, store, curator, opts...), nil
}
