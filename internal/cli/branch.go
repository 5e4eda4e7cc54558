package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/kutil/logging"

	"godotime/internal/vcs"
)

var strategyFlag string

var branchCmd = &cobra.Command{
	Use:   "branch [dir]",
	Short: "Resolve the active git branch for a directory",
	Long: "Runs the branch resolver standalone, useful for checking what a " +
		"heartbeat from the given directory would be tagged with.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBranch,
}

func init() {
	branchCmd.Flags().StringVar(&strategyFlag, "strategy", "", "Resolution strategy: git, dotgit or none (default: from config)")
	RootCmd.AddCommand(branchCmd)
}

func runBranch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategy := cfg.BranchStrategy
	if strategyFlag != "" {
		strategy = strategyFlag
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}

	logging.Configure(0, nil)
	resolver, err := vcs.NewResolver(vcs.Strategy(strategy), logging.GetLogger("godotime.vcs"))
	if err != nil {
		return err
	}

	branch, ok := resolver.Resolve(dir)
	if !ok {
		fmt.Println("(no branch)")
		return nil
	}
	fmt.Println(branch)
	return nil
}
