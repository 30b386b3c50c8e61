package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/config"
)

var (
	schemaOutput string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate server configuration",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate a JSON schema for the server configuration",
	Long: `Generate a JSON schema for ServerConfig, suitable for IDE
autocompletion or external validation of a server.yaml file.`,
	RunE: runSchema,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the server configuration file",
	RunE:  runValidate,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "output file (default: stdout)")
	configCmd.AddCommand(schemaCmd)
	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.ServerConfig{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "godfs server configuration"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}
		fmt.Printf("JSON schema written to %s\n", schemaOutput)
		return nil
	}

	fmt.Println(string(schemaJSON))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServerConfig(GetConfigFile())
	if err != nil {
		return err
	}

	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath("server")
	}

	fmt.Printf("Configuration file: %s\n", path)
	fmt.Println("Validation: OK")
	fmt.Printf("  Listen address:     %s\n", cfg.ListenAddr)
	fmt.Printf("  Mount path:         %s\n", cfg.MountPath)
	fmt.Printf("  Chunk size:         %d\n", cfg.ChunkSize)
	fmt.Printf("  Async threads:      %d\n", cfg.NumAsyncThreads)
	fmt.Printf("  Log level:          %s\n", cfg.Logging.Level)
	return nil
}
