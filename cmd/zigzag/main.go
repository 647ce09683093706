package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcbops/gotest-zigzag/internal/config"
	"github.com/rcbops/gotest-zigzag/internal/host"
	"github.com/rcbops/gotest-zigzag/internal/man"
	"github.com/rcbops/gotest-zigzag/internal/messages"
	"github.com/rcbops/gotest-zigzag/internal/options"
	"github.com/rcbops/gotest-zigzag/internal/plugin"
	"github.com/rcbops/gotest-zigzag/internal/receiver"
	"github.com/rcbops/gotest-zigzag/internal/upload"
)

var (
	// version is set at build time via ldflags: -ldflags "-X main.version=X.Y.Z"
	version = "dev"
)

// exitError carries a process exit status that is not a command error
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zigzag",
		Short: "Record go test results with qTest metadata and upload them",
		Long: `zigzag - run go tests, record qTest metadata on every test and upload the
JUnit report to qTest.

Run 'zigzag man quickstart' to get started.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [packages]",
		Short: "Run tests",
		Long: `Run the tests of the given packages (default ./...) one at a time,
write the JUnit report and upload it when --zigzag and --qtest-project-id
are both set.`,
		RunE: runTests,
	}

	options.RegisterFlags(runCmd.Flags())
	runCmd.Flags().String("settings", options.DefaultSettingsFile, "Settings file holding option defaults")
	runCmd.Flags().String("junitxml", "", "Write a JUnit XML report to this path")
	runCmd.Flags().String("suite-name", "zigzag", "Testsuite name in the JUnit report")
	runCmd.Flags().String("marks", host.DefaultMarksFile, "Marks file")
	runCmd.Flags().String("log-dir", "", "Write a session log to <dir>/zigzag.log")
	runCmd.Flags().StringSlice("go-flags", nil, "Extra flags passed to go test (e.g. -race,-tags=e2e)")

	rootCmd.AddCommand(runCmd)

	// Upload command
	uploadCmd := &cobra.Command{
		Use:   "upload <junit.xml>",
		Short: "Upload an existing JUnit report",
		Long: `Upload an existing JUnit report to qTest. The API token is read from
` + upload.TokenEnv + `.`,
		Args: cobra.ExactArgs(1),
		RunE: uploadReport,
	}

	uploadCmd.Flags().String(options.QTestProjectID, "", "qTest project id")
	uploadCmd.Flags().String(options.QTestURL, "", "qTest base URL (default $"+upload.URLEnv+")")
	uploadCmd.Flags().String(options.QTestTestCycle, "", "qTest test cycle id")
	uploadCmd.Flags().String("job-id-path", upload.DefaultJobIDPath, "JSONPath of the job id in the response")
	_ = uploadCmd.MarkFlagRequired(options.QTestProjectID)

	rootCmd.AddCommand(uploadCmd)

	// Validate-config command
	validateCmd := &cobra.Command{
		Use:   "validate-config [path]",
		Short: "Validate a config file",
		Long:  `Validate a config file against the schema. Without a path the built-in default is checked.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateConfig,
	}
	rootCmd.AddCommand(validateCmd)

	// Receiver command
	receiverCmd := &cobra.Command{
		Use:   "receiver",
		Short: "Start a local qTest auto-test-logs receiver",
		Long:  `Start a local stand-in for the qTest auto-test-logs endpoint.`,
		RunE:  runReceiver,
	}

	receiverCmd.Flags().IntP("port", "p", 8080, "Server port")
	receiverCmd.Flags().String("token", "", "Only accept this bearer token")

	rootCmd.AddCommand(receiverCmd)

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zigzag version %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Man command
	manCmd := &cobra.Command{
		Use:   "man [topic]",
		Short: "View documentation for zigzag",
		Long: `View documentation for zigzag.

Examples:
  zigzag man --list           List all topics
  zigzag man quickstart       View quickstart guide
  zigzag man --raw marks      Output raw markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMan,
	}
	manCmd.Flags().Bool("list", false, "List available topics")
	manCmd.Flags().Bool("raw", false, "Output raw markdown without formatting")
	rootCmd.AddCommand(manCmd)

	return rootCmd
}

func runTests(cmd *cobra.Command, args []string) error {
	settingsPath, _ := cmd.Flags().GetString("settings")
	junitPath, _ := cmd.Flags().GetString("junitxml")
	suiteName, _ := cmd.Flags().GetString("suite-name")
	marksPath, _ := cmd.Flags().GetString("marks")
	logDir, _ := cmd.Flags().GetString("log-dir")
	goFlags, _ := cmd.Flags().GetStringSlice("go-flags")

	// Default files may be absent; explicitly named ones may not
	settings, err := options.LoadSettings(settingsPath, cmd.Flags().Changed("settings"))
	if err != nil {
		return err
	}
	marks, err := host.LoadMarks(marksPath, cmd.Flags().Changed("marks"))
	if err != nil {
		return err
	}

	var runLog *host.RunLog
	if logDir != "" {
		runLog, err = host.NewRunLog(logDir)
		if err != nil {
			return fmt.Errorf("failed to create log: %w", err)
		}
		defer runLog.Close()
	}

	var report *host.JUnitReport
	if junitPath != "" {
		report = host.NewJUnitReport(junitPath, suiteName)
	}

	pkgs := args
	if len(pkgs) == 0 {
		pkgs = []string{"./..."}
	}

	term := host.NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr())
	hooks := plugin.New(plugin.Deps{
		Options:  options.NewResolver(cmd.Flags(), settings),
		Messages: messages.NewBuffer(),
		Warner:   term,
		Exiter:   term,
	})

	session := &host.Session{
		ID:       uuid.NewString(),
		Tool:     &host.ExecGoTool{Flags: goFlags},
		Hooks:    hooks,
		Terminal: term,
		Packages: pkgs,
		Marks:    marks,
		Report:   report,
		Log:      runLog,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := session.Run(ctx)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func uploadReport(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString(options.QTestProjectID)
	baseURL, _ := cmd.Flags().GetString(options.QTestURL)
	testCycle, _ := cmd.Flags().GetString(options.QTestTestCycle)
	jobIDPath, _ := cmd.Flags().GetString("job-id-path")

	if baseURL == "" {
		baseURL = os.Getenv(upload.URLEnv)
	}

	token, ok := os.LookupEnv(upload.TokenEnv)
	if !ok {
		return fmt.Errorf("%s is not set in the environment", upload.TokenEnv)
	}

	req := upload.Request{
		ReportPath: args[0],
		Token:      upload.ValidateToken(token),
		ProjectID:  projectID,
		TestCycle:  testCycle,
	}
	client := upload.NewClient(baseURL, upload.WithJobIDPath(jobIDPath))

	out := upload.Attempt(cmd.Context(), client, req)
	for _, msg := range out.Messages() {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	if !out.Succeeded() {
		return &exitError{code: 1}
	}
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		code := config.ExitCode
		var le *config.LoadError
		if errors.As(err, &le) {
			code = le.ExitCode()
		}
		return &exitError{code: code}
	}

	if path == "" {
		path = config.DefaultConfigName
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config file '%s' is valid\n", path)
	for _, name := range cfg.VariableNames() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (default %q)\n", name, cfg.EnvironmentVariables[name])
	}
	return nil
}

func runReceiver(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	token, _ := cmd.Flags().GetString("token")

	server := receiver.NewServer(port, token)
	return server.Run()
}

func runMan(cmd *cobra.Command, args []string) error {
	listTopics, _ := cmd.Flags().GetBool("list")
	raw, _ := cmd.Flags().GetBool("raw")
	renderer := man.NewRenderer(cmd.OutOrStdout())

	if listTopics || len(args) == 0 {
		renderer.RenderList()
		return nil
	}

	topic := args[0]
	page := man.GetPage(topic)
	if page == nil {
		renderer.RenderNotFound(topic)
		return &exitError{code: 1}
	}

	if raw {
		content, err := page.GetContent()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	return renderer.RenderPage(page)
}
