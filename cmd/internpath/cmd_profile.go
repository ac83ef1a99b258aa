package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"internpath/internal/api"
)

var (
	profileYear     int
	profileSemester int
	profileCollege  string
	profileCourse   string
	profileSkills   []string
	profileProjects []string
)

// profileCmd manages the academic profile used for recommendations.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit the profile used for recommendations",
}

var profileGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileGet,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create your profile",
	Long: `Creates the profile recommendations are computed from.

Example:
  internpath profile create --year 3 --semester 5 --college "IIT Delhi" \
    --course "B.Tech CSE" --skills python,sql,react --projects "chat app"`,
	Args: cobra.NoArgs,
	RunE: runProfileCreate,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change fields of your profile; unset flags keep their value",
	Args:  cobra.NoArgs,
	RunE:  runProfileUpdate,
}

func init() {
	for _, c := range []*cobra.Command{profileCreateCmd, profileUpdateCmd} {
		c.Flags().IntVar(&profileYear, "year", 0, "Year of study")
		c.Flags().IntVar(&profileSemester, "semester", 0, "Current semester")
		c.Flags().StringVar(&profileCollege, "college", "", "College")
		c.Flags().StringVar(&profileCourse, "course", "", "Course")
		c.Flags().StringSliceVar(&profileSkills, "skills", nil, "Comma-separated skills")
		c.Flags().StringSliceVar(&profileProjects, "projects", nil, "Comma-separated projects")
	}
	_ = profileCreateCmd.MarkFlagRequired("skills")
	profileCmd.AddCommand(profileGetCmd, profileCreateCmd, profileUpdateCmd)
}

func runProfileGet(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := newClient(store).GetProfile(ctx)
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "No profile yet. Create one with internpath profile create.")
			return nil
		}
		return err
	}
	printProfile(cmd.OutOrStdout(), p)
	return nil
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := newClient(store).CreateProfile(ctx, applyProfileFlags(cmd, api.Profile{}))
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), p)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	client := newClient(store)
	ctx, cancel := commandContext(cmd)
	defer cancel()

	current, err := client.GetProfile(ctx)
	if err != nil {
		return err
	}
	p, err := client.UpdateProfile(ctx, applyProfileFlags(cmd, *current))
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), p)
	return nil
}

// applyProfileFlags copies only the flags the user set onto p.
func applyProfileFlags(cmd *cobra.Command, p api.Profile) api.Profile {
	flags := cmd.Flags()
	if flags.Changed("year") {
		p.Year = profileYear
	}
	if flags.Changed("semester") {
		p.Semester = profileSemester
	}
	if flags.Changed("college") {
		p.College = profileCollege
	}
	if flags.Changed("course") {
		p.Course = profileCourse
	}
	if flags.Changed("skills") {
		p.Skills = trimAll(profileSkills)
	}
	if flags.Changed("projects") {
		p.Projects = trimAll(profileProjects)
	}
	return p
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func printProfile(w io.Writer, p *api.Profile) {
	fmt.Fprintf(w, "College:  %s\n", p.College)
	fmt.Fprintf(w, "Course:   %s\n", p.Course)
	fmt.Fprintf(w, "Year:     %d (semester %d)\n", p.Year, p.Semester)
	fmt.Fprintf(w, "Skills:   %s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(w, "Projects: %s\n", strings.Join(p.Projects, ", "))
}
