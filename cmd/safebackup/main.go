package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/KaleiDev/safe-backup-CYB225/internal/app"
	"github.com/KaleiDev/safe-backup-CYB225/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when no config
// file exists yet. The tool is usable without ever running `config init`.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfgPath := defaults["config_path"]
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return config.NewConfig(defaults["base_dir"]), nil
	}

	cfg, err := config.ReadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp loads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string, args []string) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, backupDirFlag, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var backupDirFlag string

var rootCmd = &cobra.Command{
	Use:   "safebackup",
	Short: "Versioned single-file backup tool",
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Backup a file into the backup directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Backup(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("BACKED UP: id=%s size=%dB sha256=%s\n", rec.ID, rec.Size, rec.Checksum)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list PATH",
	Short: "List backups for a given original file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List", args)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.List(args[0])
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Printf("No backups found for %s\n", args[0])
			return nil
		}

		for _, rec := range records {
			fmt.Printf("id=%s size=%dB sha256=%s created=%s\n",
				rec.ID,
				rec.Size,
				rec.Checksum,
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore PATH",
	Short: "Restore the latest (or a specific) backup of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		dest, _ := cmd.Flags().GetString("to")

		a, err := newApp("Restore", args)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Restore(args[0], id, dest)
		if err != nil {
			return err
		}

		fmt.Printf("RESTORED: %s\n", out)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a specific backup by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm(fmt.Sprintf("Delete backup %s? [y/N] ", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("Delete", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Delete(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("DELETED: %s\n", rec.ID)
		return nil
	},
}

// view command
var viewCmd = &cobra.Command{
	Use:   "view PATH",
	Short: "View the contents of a file or one of its backups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		a, err := newApp("View", args)
		if err != nil {
			return err
		}
		defer a.Close()

		r, path, err := a.View(args[0], id)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Printf("--- BEGIN CONTENTS (%s) ---\n", path)
		if _, err := io.Copy(os.Stdout, r); err != nil {
			return fmt.Errorf("reading contents: %w", err)
		}
		fmt.Println("--- END CONTENTS ---")
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded backup operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History", args)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, e := range entries {
			duration := ""
			if e.FinishedAt != nil {
				duration = e.FinishedAt.Sub(e.StartedAt).String()
			}
			fmt.Printf("#%d  %-8s  %s  %-8s  %s  %s\n",
				e.ID,
				e.Operation,
				e.StartedAt.Format("2006-01-02 15:04:05"),
				e.Status,
				e.Parameters,
				duration,
			)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Backup Dir: %s\n", cfg.BackupDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Backup Dir: %s\n", cfg.BackupDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Audit:      %s (%s)\n", cfg.Audit.Type, cfg.Audit.DataDir)
		return nil
	},
}

// confirm prompts on stdin. Non-interactive callers must pass --yes; reading
// a confirmation from a pipe would silently consume its data.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to delete without confirmation; pass --yes")
	}

	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backupDirFlag, "backup-dir", "", "Backup directory (default: from config, or ./backups)")

	restoreCmd.Flags().String("id", "", "Backup ID to restore (otherwise latest is used)")
	restoreCmd.Flags().String("to", "", "Destination path override (must stay within the source directory)")

	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	viewCmd.Flags().String("id", "", "Backup ID to view instead of the original file")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
