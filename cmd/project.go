package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ola/llm"
	"ola/project"
	"ola/prompt"
	"ola/store"
	"ola/streamers/cli"
)

var (
	projectName      string
	projectRef       string
	projectForce     bool
	projectFile      string
	projectGoal      string
	projectGoalID    string
	projectContext   string
	projectContextID string
	projectFileID    string

	projectRunGoals      string
	projectRunFormat     string
	projectRunWarnings   string
	projectRunClipboard  bool
	projectRunNoThinking bool
)

const timeLayout = "2006-01-02 15:04:05"

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management commands",
	Long: `Projects keep goals, context snippets and files together so they are sent
along with every prompt run in the project. Data lives in ~/.ola/data/projects.

Commands that take --project fall back to the active project, then to the
default project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListCmd.RunE(cmd, args)
	},
}

// pickProject returns the named project, or asks which one to act on.
func pickProject(cmd *cobra.Command, m *project.Manager, ref, action string) (*project.Project, error) {
	if ref != "" {
		return m.Find(ref)
	}
	projects, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects available. Create one first with 'ola project create --name <name>'")
	}
	active, _ := m.Active()
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
		if p.ID == active {
			names[i] += " (active)"
		}
	}
	choice, err := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).Choose("Select project to "+action, names, names[0])
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		if n == choice {
			return projects[i], nil
		}
	}
	return nil, fmt.Errorf("invalid selection: %s", choice)
}

func newProjectManager() (*project.Manager, error) {
	m, err := project.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize project manager: %w", err)
	}
	return m, nil
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		projects, err := m.List()
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found. Create one with 'ola project create --name <name>'")
			return nil
		}

		active, _ := m.Active()
		activeStyle := color.New(color.FgGreen, color.Bold)
		dim := color.New(color.Faint)

		fmt.Fprintln(out, "Projects:")
		for _, p := range projects {
			line := fmt.Sprintf("%s - %s (%d files, %d goals, %d contexts)", p.ID, p.Name, len(p.Files), len(p.Goals), len(p.Contexts))
			if p.ID == active {
				fmt.Fprintln(out, activeStyle.Sprint("* "+line))
			} else {
				fmt.Fprintln(out, "  "+line)
			}
			fmt.Fprintln(out, dim.Sprintf("    Updated: %s", p.UpdatedAt.Local().Format(timeLayout)))
		}
		if active != "" {
			fmt.Fprintln(out, color.GreenString("\nActive project: %s", active))
		}
		return nil
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ask := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		fmt.Fprintln(out, "🚀 Welcome to Ola Project Creation!")

		name := projectName
		if name == "" {
			if name, err = ask.Ask("Project name", ""); err != nil {
				return err
			}
		}
		if _, err := m.Find(name); err == nil {
			return fmt.Errorf("a project named '%s' already exists. Please choose a different name", name)
		} else if !errors.Is(err, project.ErrNotFound) {
			return err
		}

		p, err := m.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		cli.Success(out, "Created project '%s' with ID: %s", p.Name, p.ID)

		active, _ := m.Active()
		setActive := active == ""
		if !setActive {
			answer, err := ask.Ask(fmt.Sprintf("Set '%s' as active project? (y/n)", p.Name), "y")
			setActive = err == nil && strings.HasPrefix(strings.ToLower(answer), "y")
		}
		if setActive {
			if err := m.SetActive(p.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set as active project: %v\n", err)
			} else {
				fmt.Fprintln(out, "   Set as active project")
			}
		}
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := pickProject(cmd, m, projectRef, "delete")
		if err != nil {
			return err
		}

		if !projectForce {
			answer, err := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).
				Ask(fmt.Sprintf("Delete project '%s' and all its files? (y/n)", p.Name), "n")
			if err != nil || !strings.HasPrefix(strings.ToLower(answer), "y") {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
		}

		if err := m.Delete(p.ID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		cli.Success(cmd.OutOrStdout(), "Deleted project '%s'", p.Name)
		return nil
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Rename a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := pickProject(cmd, m, projectRef, "edit")
		if err != nil {
			return err
		}
		name := projectName
		if name == "" {
			if name, err = cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).Ask("New project name", p.Name); err != nil {
				return err
			}
		}
		p, err = m.Edit(p.ID, name)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		cli.Success(cmd.OutOrStdout(), "Updated project '%s'", p.Name)
		return nil
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := pickProject(cmd, m, projectRef, "activate")
		if err != nil {
			return err
		}
		if err := m.SetActive(p.ID); err != nil {
			return err
		}
		cli.Success(cmd.OutOrStdout(), "Set '%s' as active project", p.Name)
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show project details",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Project Details:")
		fmt.Fprintln(out, cli.KeyValue([][2]string{
			{"  Name", p.Name},
			{"  ID", p.ID},
			{"  Created", p.CreatedAt.Local().Format(timeLayout)},
			{"  Updated", p.UpdatedAt.Local().Format(timeLayout)},
		}))

		fmt.Fprintf(out, "\nGoals (%d):\n", len(p.Goals))
		for _, g := range p.SortedGoals() {
			fmt.Fprintf(out, "  %d. %s (ID: %s)\n", g.Order, g.Text, g.ID)
		}
		fmt.Fprintf(out, "\nContexts (%d):\n", len(p.Contexts))
		for _, c := range p.SortedContexts() {
			fmt.Fprintf(out, "  %d. %s (ID: %s)\n", c.Order, c.Text, c.ID)
		}
		fmt.Fprintf(out, "\nFiles (%d):\n", len(p.Files))
		for _, f := range p.Files {
			fmt.Fprintf(out, "  %s - %s (%d bytes)\n", f.Filename, f.ID, f.Size)
		}
		return nil
	},
}

var projectUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a file to a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(projectFile)
		if err != nil {
			return fmt.Errorf("failed to read file '%s': %w", projectFile, err)
		}
		f, err := m.UploadFile(p, filepath.Base(projectFile), content)
		if err != nil {
			return fmt.Errorf("failed to upload file: %w", err)
		}
		cli.Success(cmd.OutOrStdout(), "Uploaded file '%s' to project '%s'", f.Filename, p.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "   File ID: %s\n", f.ID)
		return nil
	},
}

var projectFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files in a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(p.Files) == 0 {
			fmt.Fprintf(out, "No files in project '%s'\n", p.Name)
			return nil
		}
		fmt.Fprintf(out, "Files in project '%s':\n", p.Name)
		for _, f := range p.Files {
			fmt.Fprintf(out, "  %s\n", f.Filename)
			fmt.Fprintf(out, "    ID: %s  Size: %d bytes  Type: %s  Uploaded: %s\n",
				f.ID, f.Size, f.MimeType, f.UploadedAt.Local().Format(timeLayout))
		}
		return nil
	},
}

var projectAddGoalCmd = &cobra.Command{
	Use:   "add-goal",
	Short: "Add a goal to a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		g, err := m.AddGoal(p, projectGoal)
		if err != nil {
			return fmt.Errorf("failed to add goal: %w", err)
		}
		cli.Success(cmd.OutOrStdout(), "Added goal to project '%s'", p.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "   Goal ID: %s\n", g.ID)
		return nil
	},
}

var projectRemoveGoalCmd = &cobra.Command{
	Use:   "remove-goal",
	Short: "Remove a goal from a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		if err := m.RemoveGoal(p, projectGoalID); err != nil {
			return err
		}
		cli.Success(cmd.OutOrStdout(), "Removed goal from project '%s'", p.Name)
		return nil
	},
}

var projectAddContextCmd = &cobra.Command{
	Use:   "add-context",
	Short: "Add context to a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		c, err := m.AddContext(p, projectContext)
		if err != nil {
			return fmt.Errorf("failed to add context: %w", err)
		}
		cli.Success(cmd.OutOrStdout(), "Added context to project '%s'", p.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "   Context ID: %s\n", c.ID)
		return nil
	},
}

var projectRemoveContextCmd = &cobra.Command{
	Use:   "remove-context",
	Short: "Remove context from a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		if err := m.RemoveContext(p, projectContextID); err != nil {
			return err
		}
		cli.Success(cmd.OutOrStdout(), "Removed context from project '%s'", p.Name)
		return nil
	},
}

var projectRemoveFileCmd = &cobra.Command{
	Use:   "remove-file",
	Short: "Remove a file from a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		if err := m.DeleteFile(p, projectFileID); err != nil {
			return err
		}
		cli.Success(cmd.OutOrStdout(), "Removed file from project '%s'", p.Name)
		return nil
	},
}

var projectRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a prompt with project context",
	Long: `Run a structured prompt with the project's goals, contexts and files as
context. Without --goals the project's own goals are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		m, err := newProjectManager()
		if err != nil {
			return err
		}
		p, err := m.Resolve(projectRef)
		if err != nil {
			return err
		}
		bundle, err := m.Bundle(p)
		if err != nil {
			return err
		}

		goals := projectRunGoals
		if goals == "" {
			goals = project.Goals(p)
		}
		if goals == "" {
			return fmt.Errorf("project '%s' has no goals; pass --goals or add one with 'ola project add-goal'", p.Name)
		}

		env, err := loadEnvironment("")
		if err != nil {
			return err
		}
		provider, err := env.newProvider(ctx)
		if err != nil {
			return err
		}
		defer llm.Close(provider)

		noThinking := projectRunNoThinking || env.settings.Defaults.NoThinking
		handler, closeLog, err := env.newHandler(cmd, env.settings.Defaults.Quiet, noThinking && cli.IsTerminal(cmd.OutOrStdout()), store.Entry{Command: "project run"})
		if err != nil {
			return err
		}
		defer closeLog()

		fmt.Fprintf(cmd.ErrOrStderr(), "Using project: %s\n", p.Name)
		runner := &prompt.Runner{
			Provider:  provider,
			Model:     env.model,
			Template:  env.settings.PromptTemplate,
			Hints:     hints(),
			Handler:   handler,
			Clipboard: copyToClipboard(projectRunClipboard || env.settings.Defaults.Clipboard),
			Status:    cmd.ErrOrStderr(),
			Logger:    logger.Named("prompt").With("project", p.ID),
		}
		_, err = runner.Structured(ctx, prompt.Request{
			Goals:        goals,
			ReturnFormat: env.settings.ReturnFormat(projectRunFormat),
			Warnings:     projectRunWarnings,
			Context:      bundle,
			NoThinking:   noThinking,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectDeleteCmd, projectEditCmd,
		projectSetCmd, projectShowCmd, projectUploadCmd, projectFilesCmd,
		projectAddGoalCmd, projectRemoveGoalCmd, projectAddContextCmd, projectRemoveContextCmd,
		projectRemoveFileCmd, projectRunCmd)

	projectCreateCmd.Flags().StringVarP(&projectName, "name", "n", "", "Project name")

	for _, c := range []*cobra.Command{projectDeleteCmd, projectEditCmd, projectSetCmd, projectShowCmd,
		projectUploadCmd, projectFilesCmd, projectAddGoalCmd, projectRemoveGoalCmd,
		projectAddContextCmd, projectRemoveContextCmd, projectRemoveFileCmd, projectRunCmd} {
		c.Flags().StringVarP(&projectRef, "project", "p", "", "Project name or ID")
	}

	projectDeleteCmd.Flags().BoolVarP(&projectForce, "force", "f", false, "Delete without confirmation")
	projectEditCmd.Flags().StringVarP(&projectName, "name", "n", "", "New project name")

	projectUploadCmd.Flags().StringVarP(&projectFile, "file", "f", "", "File path to upload")
	projectUploadCmd.MarkFlagRequired("file")

	projectAddGoalCmd.Flags().StringVarP(&projectGoal, "goal", "g", "", "Goal text")
	projectAddGoalCmd.MarkFlagRequired("goal")
	projectRemoveGoalCmd.Flags().StringVar(&projectGoalID, "goal-id", "", "Goal ID to remove")
	projectRemoveGoalCmd.MarkFlagRequired("goal-id")

	projectAddContextCmd.Flags().StringVarP(&projectContext, "context", "c", "", "Context text")
	projectAddContextCmd.MarkFlagRequired("context")
	projectRemoveContextCmd.Flags().StringVar(&projectContextID, "context-id", "", "Context ID to remove")
	projectRemoveContextCmd.MarkFlagRequired("context-id")

	projectRemoveFileCmd.Flags().StringVar(&projectFileID, "file-id", "", "File ID to remove")
	projectRemoveFileCmd.MarkFlagRequired("file-id")

	projectRunCmd.Flags().StringVarP(&projectRunGoals, "goals", "g", "", "Goals (default: the project's goals)")
	projectRunCmd.Flags().StringVarP(&projectRunFormat, "format", "f", "", "Return format")
	projectRunCmd.Flags().StringVarP(&projectRunWarnings, "warnings", "w", "", "Warnings")
	projectRunCmd.Flags().BoolVarP(&projectRunClipboard, "clipboard", "c", false, "Copy the answer to the clipboard")
	projectRunCmd.Flags().BoolVarP(&projectRunNoThinking, "no-thinking", "t", false, "Hide <think> blocks from the answer")
}
