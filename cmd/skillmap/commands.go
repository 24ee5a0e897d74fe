package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/config"
	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/logging"
	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/skillapi"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func userPath(userID, rest string) string {
	return "/api/users/" + url.PathEscape(userID) + rest
}

// --- classify ---

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify an activity description with the local keyword tables",
	Long: `Classify an activity description offline, without a running server.

Examples:
  skillmap classify "bugün ekip ile park temizledik"
  skillmap classify --type eğitim "çocuklara sunum yaptım"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		typ, _ := cmd.Flags().GetString("type")
		catalogPath, _ := cmd.Flags().GetString("catalog")

		cat, err := loadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		if typ != "" {
			if _, ok := cat.ActivityType(typ); !ok {
				return fmt.Errorf("unknown activity type %q; expected one of: %s", typ, strings.Join(cat.TypeNames(), ", "))
			}
		}

		ex := extract.New(nil, cat, 0)
		cats := ex.Extract(cmd.Context(), text, typ)
		scores := ex.Scores(cats, text)
		for _, c := range cats {
			outf(cmd, "%s  %s  %.2f\n", colorize(colorBold, c.Label()), colorize(colorCyan, string(c)), scores[c])
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("type", "", "activity type whose default skills are merged in")
	classifyCmd.Flags().String("catalog", "", "catalog YAML file (default: embedded catalog)")
}

// --- login ---

type authResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a bearer token",
	Long: `Log in and print a bearer token on stdout.

Example:
  export SKILLMAP_TOKEN=$(skillmap login --email ayse@example.com --password ...)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		admin, _ := cmd.Flags().GetBool("admin")
		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/api/auth/login"
		if admin {
			path = "/api/auth/admin/login"
		}
		resp, err := client.post(cmd.Context(), path, map[string]string{"email": email, "password": password})
		if err != nil {
			return err
		}
		var res authResult
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}

		printSuccess("Logged in as %s (%s), token valid for %s", res.User.Name, res.User.Role, time.Duration(res.ExpiresIn)*time.Second)
		outf(cmd, "%s\n", res.Token)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	loginCmd.Flags().Bool("admin", false, "use the admin login")
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the volunteering assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}
		userID, err := client.me(cmd.Context())
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), userPath(userID, "/chat"), map[string]string{"message": strings.Join(args, " ")})
		if err != nil {
			return err
		}
		var reply struct {
			Response string `json:"response"`
			Intent   string `json:"intent"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}
		outf(cmd, "%s\n", reply.Response)
		return nil
	},
}

// --- analysis ---

type analysisResult struct {
	TotalActivities int                    `json:"total_activities"`
	TotalSkills     int                    `json:"total_skills"`
	SkillCounts     map[string]int         `json:"skill_counts"`
	SkillLevels     map[string]skill.Level `json:"skill_levels"`
	MissingSkills   []string               `json:"missing_skills"`
	Recommendations []struct {
		Label    string `json:"label"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
	} `json:"recommendations"`
	Milestones []struct {
		Name     string `json:"name"`
		Achieved bool   `json:"achieved"`
		Target   int    `json:"target"`
		Current  int    `json:"current"`
	} `json:"milestones"`
	Progress   int    `json:"progress_percentage"`
	Motivation string `json:"motivation_message"`
}

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Show your learning analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}
		userID, err := client.me(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), userPath(userID, "/learning-analysis"))
		if err != nil {
			return err
		}

		if asJSON {
			var raw any
			if err := decodeJSON(resp, &raw); err != nil {
				return err
			}
			return printJSON(cmd, raw)
		}

		var a analysisResult
		if err := decodeJSON(resp, &a); err != nil {
			return err
		}
		printAnalysis(cmd, a)
		return nil
	},
}

func printAnalysis(cmd *cobra.Command, a analysisResult) {
	outf(cmd, "%s %d activities, %d skills, %d%% of milestones\n",
		colorize(colorBold, "Progress:"), a.TotalActivities, a.TotalSkills, a.Progress)
	for _, c := range skill.All() {
		n, ok := a.SkillCounts[string(c)]
		if !ok {
			continue
		}
		lvl := a.SkillLevels[string(c)]
		outf(cmd, "  %-18s %2d  %s\n", c.Label(), n, colorize(levelColor(lvl), lvl.Label()))
	}
	if len(a.MissingSkills) > 0 {
		labels := make([]string, 0, len(a.MissingSkills))
		for _, m := range a.MissingSkills {
			if c, ok := skill.Parse(m); ok {
				labels = append(labels, c.Label())
			}
		}
		outf(cmd, "%s %s\n", colorize(colorBold, "Missing:"), strings.Join(labels, ", "))
	}
	for _, r := range a.Recommendations {
		outf(cmd, "  %s %s: %s\n", colorize(priorityColor(r.Priority), "["+r.Priority+"]"), r.Label, r.Message)
	}
	for _, m := range a.Milestones {
		mark := colorize(colorRed, "✗")
		if m.Achieved {
			mark = colorize(colorGreen, "✓")
		}
		outf(cmd, "  %s %s (%d/%d)\n", mark, m.Name, m.Current, m.Target)
	}
	if a.Motivation != "" {
		outf(cmd, "%s\n", a.Motivation)
	}
}

func init() {
	analysisCmd.Flags().Bool("json", false, "print the raw analysis as JSON")
}

// --- activity ---

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Record and list volunteering activities",
}

var activityAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an activity",
	Long: `Record an activity. Skills are assigned from the description and type.

Example:
  skillmap activity add --title "Park temizliği" --type çevre --duration 120 \
    --description "ekip ile sahil temizledik"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		typ, _ := cmd.Flags().GetString("type")
		duration, _ := cmd.Flags().GetInt("duration")
		date, _ := cmd.Flags().GetString("date")
		description, _ := cmd.Flags().GetString("description")
		if title == "" || typ == "" || duration < 1 {
			return fmt.Errorf("--title, --type and a positive --duration are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}
		userID, err := client.me(cmd.Context())
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), userPath(userID, "/activities"), map[string]any{
			"title":       title,
			"type":        typ,
			"duration":    duration,
			"date":        date,
			"description": description,
		})
		if err != nil {
			return err
		}
		var res struct {
			Activity struct {
				ID string `json:"id"`
			} `json:"activity"`
			Skills []string `json:"skills"`
		}
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}
		printSuccess("Recorded activity %s", res.Activity.ID)
		outf(cmd, "%s\n", strings.Join(res.Skills, ", "))
		return nil
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your activities, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}
		userID, err := client.me(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), userPath(userID, "/activities"))
		if err != nil {
			return err
		}

		var acts []struct {
			Title    string           `json:"title"`
			Type     string           `json:"type"`
			Date     time.Time        `json:"date"`
			Duration int              `json:"duration"`
			Skills   []skill.Category `json:"skills"`
		}
		if err := decodeJSON(resp, &acts); err != nil {
			return err
		}
		if len(acts) == 0 {
			outf(cmd, "No activities found.\n")
			return nil
		}
		for _, a := range acts {
			outf(cmd, "%s  %-10s %4d dk  %s  %s\n",
				colorize(colorCyan, a.Date.Format(time.DateOnly)),
				a.Type, a.Duration, a.Title,
				strings.Join(skill.Labels(a.Skills), ", "))
		}
		return nil
	},
}

func init() {
	activityAddCmd.Flags().String("title", "", "activity title")
	activityAddCmd.Flags().String("type", "", "activity type, e.g. eğitim or çevre")
	activityAddCmd.Flags().Int("duration", 0, "duration in minutes")
	activityAddCmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	activityAddCmd.Flags().String("description", "", "what you did; skills are extracted from it")
	activityCmd.AddCommand(activityAddCmd)
	activityCmd.AddCommand(activityListCmd)
}

// --- admin ---

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer accounts and view platform statistics",
}

var adminCreateFirstCmd = &cobra.Command{
	Use:   "create-first",
	Short: "Create the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if name == "" || email == "" || password == "" {
			return fmt.Errorf("--name, --email and --password are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/api/auth/admin/create-first", map[string]string{
			"name": name, "email": email, "password": password,
		})
		if err != nil {
			return err
		}
		var res authResult
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}
		printSuccess("Created admin %s", res.User.Email)
		outf(cmd, "%s\n", res.Token)
		return nil
	},
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the admin dashboard as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/api/admin/dashboard")
		if err != nil {
			return err
		}
		var d any
		if err := decodeJSON(resp, &d); err != nil {
			return err
		}
		return printJSON(cmd, d)
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.requireToken(); err != nil {
			return err
		}

		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("limit", fmt.Sprint(limit))
		if search != "" {
			q.Set("search", search)
		}
		resp, err := client.get(cmd.Context(), "/api/admin/users?"+q.Encode())
		if err != nil {
			return err
		}

		var p struct {
			Users []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"users"`
			Total int `json:"total"`
			Page  int `json:"page"`
			Limit int `json:"limit"`
		}
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		for _, u := range p.Users {
			outf(cmd, "%s  %-6s %s <%s>\n", colorize(colorCyan, u.ID), u.Role, u.Name, u.Email)
		}
		outf(cmd, "page %d, %d of %d users\n", p.Page, len(p.Users), p.Total)
		return nil
	},
}

func init() {
	adminCreateFirstCmd.Flags().String("name", "", "admin name")
	adminCreateFirstCmd.Flags().String("email", "", "admin email")
	adminCreateFirstCmd.Flags().String("password", "", "admin password")
	adminUsersCmd.Flags().Int("page", 1, "page number, starting at 1")
	adminUsersCmd.Flags().Int("limit", 10, "users per page (max 100)")
	adminUsersCmd.Flags().String("search", "", "filter by name or email")
	adminCmd.AddCommand(adminCreateFirstCmd, adminDashboardCmd, adminUsersCmd)
}

// --- skillapi ---

var skillAPICmd = &cobra.Command{
	Use:   "skillapi",
	Short: "Run the text classification service",
}

var skillAPIServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /analyze from the local keyword tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		level, _ := cmd.Flags().GetString("log-level")
		catalogPath, _ := cmd.Flags().GetString("catalog")

		logCloser := logging.Setup(config.LogConfig{Level: level})
		defer logCloser.Close()

		cat, err := loadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           skillapi.NewHandler(classifier.New(cat.SkillTable())),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serveUntilDone(ctx, srv)
	},
}

func init() {
	skillAPIServeCmd.Flags().String("addr", ":5001", "listen address")
	skillAPIServeCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	skillAPIServeCmd.Flags().String("catalog", "", "catalog YAML file (default: embedded catalog)")
	skillAPICmd.AddCommand(skillAPIServeCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			outf(cmd, "  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, colorize(colorCyan, "("+k.EnvVar+")"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value in the config file. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s in %s", key, value, config.FilePath())
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd)
}
