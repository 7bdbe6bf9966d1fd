package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fdkevin0/htmltree"
	"github.com/fdkevin0/htmltree/internal/configsource"
	"github.com/spf13/cobra"
)

var (
	// 全局配置
	config *htmltree.Config

	// 命令行参数
	flagConfigFile string
	flagDebug      bool
	flagCacheDir   string
	flagNoCache    bool
	flagTimeout    int
	flagUserAgent  string
	flagMaxRetries int
	flagRetryDelay int
	flagHeaders    map[string]string
	flagParseMode  string
	flagSelector   string
	flagXPath      string
	flagMaxDepth   int
	flagFormat     string
	flagOutputFile string
	flagOffline    bool
	flagInitFile   string
	flagInitForce  bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "htmltree [input.html|URL]",
	Short: "Print the tag structure of an HTML document as a tree",
	Long: `htmltree reads an HTML document from a URL or a local file and prints
its element nesting and attributes as a directory-style tree.

Text and comments are skipped; only elements are shown. Markdown files
(.md, .markdown) are converted to HTML first.`,
	Example: `  # Render a local file
  htmltree index.html

  # Render a page
  htmltree https://example.com

  # Only the navigation, at most three levels deep
  htmltree https://example.com --select=nav --max-depth=3

  # Structured output
  htmltree index.html --format=toml --output=tree.toml

  # Re-render a previously fetched page without network access
  htmltree https://example.com --offline`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		htmltree.InitLogger(flagDebug)
	},
}

// configCmd 配置命令
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

// configInitCmd 初始化配置命令
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Example: `  htmltree config init
  htmltree config init --file=$HOME/.config/htmltree/config.toml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// cacheCmd 缓存命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the page cache used by --offline",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached pages",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached pages",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	// 初始化默认配置
	config = htmltree.NewDefaultConfig()

	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file path (TOML)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", config.CacheDir, "Page cache directory")

	rootCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not store fetched pages")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", int(config.HTTPTimeout.Seconds()), "HTTP request timeout (seconds)")
	rootCmd.Flags().StringVar(&flagUserAgent, "user-agent", config.HTTPUserAgent, "HTTP User-Agent")
	rootCmd.Flags().IntVar(&flagMaxRetries, "max-retries", config.HTTPMaxRetries, "Retries after a failed request")
	rootCmd.Flags().IntVar(&flagRetryDelay, "retry-delay", int(config.HTTPRetryDelay.Seconds()), "Delay between retries (seconds)")
	rootCmd.Flags().StringToStringVar(&flagHeaders, "header", nil, "Extra request header, key=value (repeatable)")
	rootCmd.Flags().StringVar(&flagParseMode, "parse-mode", config.ParseMode, "Parser: literal (markup as written) or html5 (normalized)")
	rootCmd.Flags().StringVar(&flagSelector, "select", "", "Render each element matching this CSS selector")
	rootCmd.Flags().StringVar(&flagXPath, "xpath", "", "Render each element matching this XPath expression")
	rootCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "Maximum depth below each root (0 = unlimited)")
	rootCmd.Flags().StringVar(&flagFormat, "format", config.Format, "Output format: text or toml")
	rootCmd.Flags().StringVarP(&flagOutputFile, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.Flags().BoolVar(&flagOffline, "offline", false, "Render a URL from the page cache only")

	rootCmd.MarkFlagsMutuallyExclusive("select", "xpath")
	rootCmd.MarkFlagsMutuallyExclusive("offline", "no-cache")

	configInitCmd.Flags().StringVar(&flagInitFile, "file", configsource.DefaultConfigPath(), "Destination path")
	configInitCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing file")

	rootCmd.AddCommand(configCmd, cacheCmd)
	configCmd.AddCommand(configInitCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
}

// Execute 执行命令行程序
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// runTree renders the input as a tree.
func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := buildRuntimeConfig(cmd, args)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	if cfg.Debug {
		htmltree.InitLogger(true)
	}
	slog.Debug("Configuration loaded", "config_file", cfg.ConfigFile, "input", cfg.Input)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var store *htmltree.PageStore
	if cfg.App.CacheEnableCache {
		store = htmltree.NewPageStore(cfg.App.CacheDir)
	}
	loader := htmltree.NewLoader(
		htmltree.NewHTTPFetcher(cfg.App.HTTPOptions()),
		store,
		htmltree.LoaderOptions{Offline: cfg.Offline, EnableCache: cfg.App.CacheEnableCache},
	)

	source, err := loader.Load(ctx, cfg.Input)
	if err != nil {
		return err
	}

	parser := htmltree.NewHTMLParser(cfg.App.ParseMode)
	if err := parser.LoadFromReader(bytes.NewReader(source.Body)); err != nil {
		return err
	}
	roots, err := parser.Roots(cfg.App.Selector, cfg.App.XPath)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		slog.Info("Nothing to render", "input", source.Name)
		return nil
	}

	exporter := htmltree.NewExporter(cfg.App.Format, &htmltree.RenderOptions{MaxDepth: cfg.App.MaxDepth})
	export := func(w io.Writer) error {
		return exporter.Export(w, source.Name, roots)
	}
	if cfg.OutputFile == "" {
		return export(cmd.OutOrStdout())
	}

	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return htmltree.NewIOError("failed to create output directory", err)
		}
	}
	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return htmltree.NewIOError("failed to create output file", err)
	}
	return writeAndClose(file, export)
}

// writeAndClose runs write against wc and always closes it. A close error
// is reported when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return htmltree.NewIOError("failed to write output file", err)
	}
	return nil
}

// fileConfig is the on-disk layout written by `config init`. Durations are
// whole seconds.
type fileConfig struct {
	Timeout     int               `toml:"timeout"`
	UserAgent   string            `toml:"user_agent"`
	MaxRetries  int               `toml:"max_retries"`
	RetryDelay  int               `toml:"retry_delay"`
	ParseMode   string            `toml:"parse_mode"`
	MaxDepth    int               `toml:"max_depth"`
	Format      string            `toml:"format"`
	EnableCache bool              `toml:"enable_cache"`
	CacheDir    string            `toml:"cache_dir"`
	Header      map[string]string `toml:"header"`
}

func newFileConfig(c *htmltree.Config) fileConfig {
	return fileConfig{
		Timeout:     int(c.HTTPTimeout / time.Second),
		UserAgent:   c.HTTPUserAgent,
		MaxRetries:  c.HTTPMaxRetries,
		RetryDelay:  int(c.HTTPRetryDelay / time.Second),
		ParseMode:   c.ParseMode,
		MaxDepth:    c.MaxDepth,
		Format:      c.Format,
		EnableCache: c.CacheEnableCache,
		CacheDir:    c.CacheDir,
		Header:      c.HTTPCustomHeaders,
	}
}

// runConfigInit writes the default configuration.
func runConfigInit(cmd *cobra.Command, args []string) error {
	path := flagInitFile
	if path == "" {
		path = configsource.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !flagInitForce {
		return htmltree.NewValidationError(fmt.Sprintf("%s already exists (use --force to overwrite)", path))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return htmltree.NewIOError("failed to create config directory", err)
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(newFileConfig(htmltree.NewDefaultConfig())); err != nil {
		return htmltree.NewConfigError("failed to encode default config", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return htmltree.NewIOError("failed to write config file", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Default config written to %s\n", path)
	return nil
}

func cacheStore(cmd *cobra.Command) (*htmltree.PageStore, error) {
	cfg, err := decodeRuntimeConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	if cfg.App.CacheDir == "" {
		return nil, htmltree.NewValidationError("cache-dir must not be empty")
	}
	return htmltree.NewPageStore(cfg.App.CacheDir), nil
}

// runCacheList prints one line per cached page.
func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}
	pages, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(pages) == 0 {
		fmt.Fprintf(out, "No cached pages in %s\n", store.RootDir())
		return nil
	}
	for _, page := range pages {
		fmt.Fprintf(out, "%s\t%d\t%s\n", page.FetchedAt.Format(time.DateTime), page.StatusCode, page.URL)
	}
	return nil
}

// runCacheClear removes all cached pages.
func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", store.RootDir())
	return nil
}
